// Package docs 手工维护的 OpenAPI 文档，接口变更时与 handler 上的 swag 注释同步修改
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/segment_frame": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "提交单帧分割任务",
                "parameters": [
                    {"description": "单帧分割请求", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SegmentFrameRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.QueuedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/segment_frames": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "提交多帧分割任务",
                "parameters": [
                    {"description": "多帧分割请求", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SegmentFramesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.QueuedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/analyze_video": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "提交视频分析任务",
                "parameters": [
                    {"description": "视频分析请求", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AnalyzeVideoRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.QueuedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/analyze_image": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "提交图片分析任务",
                "parameters": [
                    {"description": "图片分析请求", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AnalyzeImageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.QueuedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/task_status/{task_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "查询任务状态",
                "parameters": [
                    {"type": "string", "description": "任务 ID", "name": "task_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/task.View"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/scan_folder": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Frames"],
                "summary": "扫描帧目录",
                "parameters": [
                    {"description": "扫描请求", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ScanFolderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ScanFolderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/frame_image": {
            "get": {
                "produces": ["image/jpeg"],
                "tags": ["Frames"],
                "summary": "读取帧图像",
                "parameters": [
                    {"type": "string", "description": "帧目录（绝对路径）", "name": "folder_path", "in": "query", "required": true},
                    {"type": "string", "description": "文件名", "name": "filename", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/queue/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Queues"],
                "summary": "查询队列状态",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.QueueStatsResponse"}}
                }
            }
        },
        "/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["History"],
                "summary": "查询执行历史",
                "parameters": [
                    {"type": "string", "description": "done 或 error", "name": "status", "in": "query"},
                    {"type": "string", "description": "任务类型", "name": "kind", "in": "query"},
                    {"type": "integer", "description": "返回条数（1-200，默认 50）", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HistoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness 检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/healthcheck.CheckResult"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness 检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/healthcheck.CheckResult"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/healthcheck.CheckResult"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "Queue is full, try again later."}}
        },
        "dto.QueuedResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "queued"},
                "task_id": {"type": "string", "example": "550e8400-e29b-41d4-a716-446655440000"}
            }
        },
        "dto.SegmentFrameRequest": {
            "type": "object",
            "required": ["video_path", "filename", "frame_idx", "obj_ids", "bboxes"],
            "properties": {
                "video_path": {"type": "string"},
                "filename": {"type": "string"},
                "frame_idx": {"type": "integer"},
                "obj_ids": {"type": "array", "items": {"type": "integer"}},
                "bboxes": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}},
                "conf_threshold": {"type": "number"}
            }
        },
        "dto.SegmentFramesRequest": {
            "type": "object",
            "required": ["video_path", "frame_indices", "obj_ids_list", "bboxes_list"],
            "properties": {
                "video_path": {"type": "string"},
                "filename": {"type": "string"},
                "filenames": {"type": "array", "items": {"type": "string"}},
                "frame_indices": {"type": "array", "items": {"type": "integer"}},
                "obj_ids_list": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}},
                "bboxes_list": {"type": "array", "items": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}}},
                "conf_threshold": {"type": "number"}
            }
        },
        "dto.AnalyzeVideoRequest": {
            "type": "object",
            "required": ["video_dir", "user_prompt"],
            "properties": {
                "video_dir": {"type": "string"},
                "user_prompt": {"type": "string"},
                "original_fps": {"type": "number", "example": 12.5},
                "target_fps": {"type": "number", "example": 2},
                "frames_needed": {"type": "integer", "example": 100}
            }
        },
        "dto.AnalyzeImageRequest": {
            "type": "object",
            "required": ["base64_images", "user_prompt"],
            "properties": {
                "base64_images": {"type": "array", "items": {"type": "string"}},
                "user_prompt": {"type": "string"}
            }
        },
        "dto.ScanFolderRequest": {
            "type": "object",
            "required": ["folder_path"],
            "properties": {"folder_path": {"type": "string"}}
        },
        "dto.ScanFolderResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "folder_path": {"type": "string"},
                "frame_count": {"type": "integer"},
                "frames": {"type": "array", "items": {"$ref": "#/definitions/frames.Frame"}}
            }
        },
        "frames.Frame": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "filename": {"type": "string"},
                "file_path": {"type": "string"},
                "relative_path": {"type": "string"}
            }
        },
        "dto.QueueStatsResponse": {
            "type": "object",
            "properties": {
                "depth": {"type": "integer"},
                "capacity": {"type": "integer"},
                "closed": {"type": "boolean"},
                "worker_alive": {"type": "boolean"},
                "worker_busy": {"type": "boolean"},
                "records": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "dto.HistoryResponse": {
            "type": "object",
            "properties": {
                "items": {},
                "count": {"type": "integer"}
            }
        },
        "task.View": {
            "type": "object",
            "properties": {
                "task_id": {"type": "string"},
                "status": {"type": "string", "enum": ["queued", "processing", "done", "error"]},
                "kind": {"type": "string"},
                "frames": {"type": "object", "additionalProperties": {"type": "string"}},
                "result": {},
                "error_detail": {"type": "string"},
                "created_at": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"}
            }
        },
        "healthcheck.CheckResult": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "version": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Vision-TaskHub API",
	Description:      "GPU 推理任务排队与状态查询 API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

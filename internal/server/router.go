package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/azhengyongqin/vision-taskhub/docs"
	"github.com/azhengyongqin/vision-taskhub/internal/healthcheck"
	"github.com/azhengyongqin/vision-taskhub/internal/logger"
	"github.com/azhengyongqin/vision-taskhub/internal/middleware"
	"github.com/azhengyongqin/vision-taskhub/internal/server/dto"
	"github.com/azhengyongqin/vision-taskhub/internal/server/handler"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// DefaultMaxPayloadBytes 默认请求体上限（base64 图片较大）
const DefaultMaxPayloadBytes = 32 * 1024 * 1024

type Deps struct {
	Gateway *task.Gateway
	Store   *task.Store
	Queue   *task.Queue
	Worker  *task.Worker

	// Frames 目录扫描（可带 Redis 缓存）
	Frames handler.FolderScanner

	// 可选：配置 Postgres 后提供执行历史查询
	History handler.HistoryLister

	// HealthChecker 健康检查器
	HealthChecker *healthcheck.HealthChecker

	MaxPayloadBytes int64
}

// NewRouter 提供 Gin HTTP API
// @title Vision-TaskHub API
// @version 1.0.0
// @description GPU 推理任务排队与状态查询 API
// @BasePath /
// @schemes http https
func NewRouter(deps Deps) http.Handler {
	if err := dto.RegisterValidators(); err != nil {
		logger.L.Error().Err(err).Msg("注册自定义校验规则失败")
	}

	maxPayload := deps.MaxPayloadBytes
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayloadBytes
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// 全局中间件
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.PayloadSizeLimit(maxPayload))
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 创建各个 handler 实例
	healthHandler := handler.NewHealthHandler(deps.HealthChecker)
	taskHandler := handler.NewTaskHandler(deps.Gateway, deps.Store)
	frameHandler := handler.NewFrameHandler(deps.Frames)
	queueHandler := handler.NewQueueHandler(deps.Store, deps.Queue, deps.Worker)

	historyHandler := handler.NewHistoryHandler(deps.History)

	// 健康检查路由
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Prometheus metrics 端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 业务路由挂在根路径（兼容现有前端和轮询脚本），同时镜像到 /api/v1
	register := func(g gin.IRoutes) {
		g.POST("/segment_frame", taskHandler.SegmentFrame)
		g.POST("/segment_frames", taskHandler.SegmentFrames)
		g.POST("/analyze_video", taskHandler.AnalyzeVideo)
		g.POST("/analyze_image", taskHandler.AnalyzeImage)
		g.GET("/task_status/:task_id", middleware.ValidateTaskIDParam(), taskHandler.GetTaskStatus)

		g.POST("/scan_folder", frameHandler.ScanFolder)
		g.GET("/frame_image", frameHandler.FrameImage)

		g.GET("/queue/stats", queueHandler.GetQueueStats)
		g.GET("/history", historyHandler.ListHistory)
	}
	register(r)
	register(r.Group("/api/v1"))

	return r
}

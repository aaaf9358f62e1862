package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	// L 全局 logger
	L = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init 初始化日志器
func Init(production bool) error {
	return InitWithWriter(os.Stdout, production)
}

// InitWithWriter 初始化日志器并指定输出（测试时可传入 buffer）
func InitWithWriter(out io.Writer, production bool) error {
	zerolog.TimeFieldFormat = time.RFC3339

	if production {
		// 生产环境：JSON 格式输出
		L = zerolog.New(out).
			With().
			Timestamp().
			Caller().
			Logger()
	} else {
		// 开发环境：控制台友好格式
		output := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			FieldsOrder: []string{
				"request_id",
				"task_id",
				"kind",
				"status",
				"method",
				"path",
				"duration(ms)",
				"client_ip",
				"errors",
			},
		}
		L = zerolog.New(output).
			With().
			Timestamp().
			Caller().
			Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return nil
}

// SetLevel 设置日志级别
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// WithRequestID 添加 request_id
func WithRequestID(requestID string) zerolog.Logger {
	return L.With().Str("request_id", requestID).Logger()
}

// WithTaskID 添加 task_id
func WithTaskID(taskID string) zerolog.Logger {
	return L.With().Str("task_id", taskID).Logger()
}

// WithComponent 添加 component
func WithComponent(component string) zerolog.Logger {
	return L.With().Str("component", component).Logger()
}

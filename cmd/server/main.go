package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/azhengyongqin/vision-taskhub/internal/config"
	"github.com/azhengyongqin/vision-taskhub/internal/logger"
	"github.com/azhengyongqin/vision-taskhub/internal/metrics"
	httpserver "github.com/azhengyongqin/vision-taskhub/internal/server"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// 说明：
// - 单进程：Gin(HTTP) 负责准入和查询，唯一的 worker goroutine 串行调用 GPU 推理服务。
// - 任务状态只在内存中，重启即丢失；Postgres 仅做执行历史审计。

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.L.Fatal().Err(err).Msg("加载配置失败")
	}

	if err := logger.Init(cfg.Log.Production); err != nil {
		logger.L.Fatal().Err(err).Msg("初始化日志失败")
	}
	logger.SetLevel(cfg.Log.Level)

	// 验证配置
	if err := cfg.Validate(); err != nil {
		logger.L.Fatal().Err(err).Msg("配置验证失败")
	}

	logger.L.Info().
		Str("http", cfg.HTTP.Addr).
		Int("queue_capacity", cfg.Queue.Capacity).
		Str("sam2", cfg.SAM2.URL).
		Str("vlm_backend", cfg.VLM.Backend).
		Str("vlm_model", cfg.VLM.Model).
		Msg("服务启动")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		logger.L.Fatal().Err(err).Msg("初始化服务失败")
	}
	defer app.Close()

	metrics.SetQueueCapacity(app.queue.Cap())

	// worker 不跟随信号退出：先关闭队列，再等它把已接收的任务跑完
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	app.worker.Start(workerCtx)

	janitor := task.NewJanitor(app.store, cfg.Queue.Retention, cfg.Queue.JanitorInterval)
	go janitor.Run(ctx)

	httpSrv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpserver.NewRouter(httpserver.Deps{
			Gateway:         app.gateway,
			Store:           app.store,
			Queue:           app.queue,
			Worker:          app.worker,
			Frames:          app.scanner,
			History:         app.historyLister(),
			HealthChecker:   app.health,
			MaxPayloadBytes: cfg.HTTP.MaxPayloadBytes,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.L.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP 服务监听")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error().Err(err).Msg("HTTP 服务错误")
			stop()
		}
	}()

	<-ctx.Done()
	logger.L.Info().Msg("收到退出信号，开始优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// 1. 停止接收 HTTP 请求
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.L.Warn().Err(err).Msg("HTTP 服务关闭超时")
	}

	// 2. 关闭队列，worker 执行完剩余任务后退出
	app.queue.Close()
	select {
	case <-app.worker.Done():
		logger.L.Info().Msg("worker 已退出")
	case <-shutdownCtx.Done():
		logger.L.Warn().
			Int("queued", app.queue.Len()).
			Bool("busy", app.worker.Busy()).
			Msg("等待 worker 超时，放弃剩余任务")
		cancelWorker()
	}

	logger.L.Info().Msg("服务已优雅关闭")
}

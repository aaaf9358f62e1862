package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/azhengyongqin/vision-taskhub/internal/cache"
	"github.com/azhengyongqin/vision-taskhub/internal/config"
	"github.com/azhengyongqin/vision-taskhub/internal/executor"
	"github.com/azhengyongqin/vision-taskhub/internal/frames"
	"github.com/azhengyongqin/vision-taskhub/internal/healthcheck"
	"github.com/azhengyongqin/vision-taskhub/internal/history"
	"github.com/azhengyongqin/vision-taskhub/internal/inference/sam2"
	"github.com/azhengyongqin/vision-taskhub/internal/inference/vlm"
	"github.com/azhengyongqin/vision-taskhub/internal/logger"
	"github.com/azhengyongqin/vision-taskhub/internal/segmentation"
	"github.com/azhengyongqin/vision-taskhub/internal/server/handler"
	"github.com/azhengyongqin/vision-taskhub/internal/storage/postgres"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
	"github.com/azhengyongqin/vision-taskhub/internal/vision"
)

// app 进程内的全部组件
type app struct {
	store   *task.Store
	queue   *task.Queue
	gateway *task.Gateway
	worker  *task.Worker
	scanner *frames.Scanner
	health  *healthcheck.HealthChecker

	redis    *cache.RedisCache
	db       *postgres.DB
	recorder *history.Recorder
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		store: task.NewStore(),
		queue: task.NewQueue(cfg.Queue.Capacity),
	}
	a.gateway = task.NewGateway(a.store, a.queue)

	model, err := newModel(ctx, cfg.VLM)
	if err != nil {
		return nil, err
	}
	dispatcher := executor.NewDispatcher(
		segmentation.NewService(sam2.NewClient(cfg.SAM2.URL, cfg.SAM2.Timeout)),
		vision.NewService(model),
	)

	// 可选：Postgres 执行历史
	if cfg.Postgres.DSN != "" {
		if err := postgres.MigrateDSN(ctx, cfg.Postgres.DSN); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.db, err = postgres.NewDB(ctx, cfg.Postgres.DSN, postgres.DBConfig{
			MaxOpenConns:    int(cfg.DBPool.MaxConns),
			MaxIdleConns:    int(cfg.DBPool.MinConns),
			ConnMaxLifetime: cfg.DBPool.MaxConnLifetime,
			ConnMaxIdleTime: cfg.DBPool.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		a.recorder = history.NewRecorder(a.db.DB)
		logger.L.Info().Str("dsn", postgres.RedactDSN(cfg.Postgres.DSN)).Msg("执行历史已启用（PostgreSQL）")
	}

	var opts []task.WorkerOption
	if a.recorder != nil {
		opts = append(opts,
			task.WithOutcomeRecorder(a.recorder),
			task.WithRecordTimeout(cfg.Postgres.WriteTimeout),
		)
	}
	a.worker = task.NewWorker(a.store, a.queue, dispatcher, opts...)

	// 可选：Redis 目录扫描缓存，连不上时降级为直接扫描
	var scanCache frames.Cache
	if cfg.Redis.Addr != "" {
		a.redis, err = cache.NewRedisCache(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.L.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis 不可用，目录扫描不使用缓存")
		} else {
			scanCache = a.redis
		}
	}
	a.scanner = frames.NewScanner(scanCache, cfg.Redis.ScanTTL)

	a.health = healthcheck.NewHealthChecker(2*time.Second).
		Register("queue", func(context.Context) error {
			if a.queue.Closed() {
				return task.ErrQueueClosed
			}
			return nil
		}).
		Register("worker", func(context.Context) error {
			if !a.worker.Alive() {
				return errors.New("worker is not running")
			}
			return nil
		})
	if a.redis != nil {
		a.health.RegisterPinger("redis", a.redis)
	}
	if a.db != nil {
		a.health.RegisterPinger("postgres", a.db)
	}

	return a, nil
}

// newModel 按配置选择视觉语言模型后端
func newModel(ctx context.Context, cfg config.VLMConfig) (vlm.Model, error) {
	sampling := vlm.Sampling{
		Temperature:       cfg.Sampling.Temperature,
		TopP:              cfg.Sampling.TopP,
		TopK:              cfg.Sampling.TopK,
		MaxTokens:         cfg.Sampling.MaxTokens,
		Seed:              cfg.Sampling.Seed,
		PresencePenalty:   cfg.Sampling.PresencePenalty,
		RepetitionPenalty: cfg.Sampling.RepetitionPenalty,
	}

	switch cfg.Backend {
	case config.BackendGemini:
		m, err := vlm.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.Model, sampling)
		if err != nil {
			return nil, fmt.Errorf("init gemini model: %w", err)
		}
		return m, nil
	default:
		return vlm.NewChatModel(cfg.BaseURL, cfg.Model, cfg.APIKey, sampling, cfg.Timeout), nil
	}
}

// historyLister 未启用时返回 nil 接口（避免带类型的 nil）
func (a *app) historyLister() handler.HistoryLister {
	if a.recorder == nil {
		return nil
	}
	return a.recorder
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.L.Warn().Err(err).Msg("关闭 Redis 连接失败")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.L.Warn().Err(err).Msg("关闭数据库连接失败")
		}
	}
}

package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/azhengyongqin/vision-taskhub/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// gooseLogger 把 goose 的输出转到 zerolog
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.L.Info().Str("component", "migrate").Msgf(format, v...)
}

// Fatalf 不退出进程，错误由调用方返回
func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.L.Error().Str("component", "migrate").Msgf(format, v...)
}

// Migrate 执行内嵌的 goose 迁移
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// MigrateDSN 用 database/sql 连接执行迁移后关闭连接
func MigrateDSN(ctx context.Context, dsn string) error {
	db, err := openStdlib(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return Migrate(ctx, db)
}

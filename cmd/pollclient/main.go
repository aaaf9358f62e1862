package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/azhengyongqin/vision-taskhub/sdk"
)

// 视频分析轮询客户端：提交 analyze_video 任务，轮询到终态后把检测结果写入文件
func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := loadEnvFile(&log); err != nil {
		log.Warn().Err(err).Msg("无法加载 .env 文件，将使用环境变量或默认值")
	}

	baseURL := pflag.String("base-url", envOr("BASE_URL", "http://127.0.0.1:8000"), "服务地址")
	videoDir := pflag.String("video-dir", os.Getenv("VIDEO_DIR"), "帧目录（绝对路径）")
	prompt := pflag.String("prompt", "", "用户提示词")
	originalFPS := pflag.Float64("original-fps", 0, "原始帧率（0 使用服务端默认值）")
	targetFPS := pflag.Float64("target-fps", 0, "目标帧率（0 使用服务端默认值）")
	frames := pflag.Int("frames", 0, "最多采样帧数（0 使用服务端默认值）")
	interval := pflag.Duration("interval", 2*time.Second, "轮询间隔")
	timeout := pflag.Duration("timeout", 30*time.Minute, "整体超时")
	output := pflag.String("output", "detection_results.json", "结果输出文件")
	pflag.Parse()

	if *videoDir == "" || *prompt == "" {
		log.Fatal().Msg("--video-dir 和 --prompt 不能为空")
	}
	dir, err := filepath.Abs(*videoDir)
	if err != nil {
		log.Fatal().Err(err).Msg("解析帧目录失败")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := sdk.NewClient(*baseURL)
	req := sdk.AnalyzeVideoRequest{
		VideoDir:     dir,
		UserPrompt:   *prompt,
		OriginalFPS:  *originalFPS,
		TargetFPS:    *targetFPS,
		FramesNeeded: *frames,
	}

	retry := sdk.DefaultSubmitRetryConfig()
	retry.OnRetry = func(attempt int, err error) {
		log.Warn().Int("attempt", attempt).Err(err).Msg("队列已满，稍后重试")
	}
	queued, err := sdk.SubmitWithRetry(ctx, func(ctx context.Context) (*sdk.QueuedResponse, error) {
		return client.SubmitAnalyzeVideo(ctx, req)
	}, retry)
	if err != nil {
		log.Fatal().Err(err).Msg("提交任务失败")
	}
	log.Info().Str("task_id", queued.TaskID).Str("video_dir", dir).Msg("任务已提交")

	st, err := client.WaitForTask(ctx, queued.TaskID, *interval)
	if err != nil {
		if errors.Is(err, sdk.ErrTaskFailed) && st != nil {
			log.Fatal().Str("task_id", queued.TaskID).Str("detail", st.ErrorDetail).Msg("任务执行失败")
		}
		log.Fatal().Err(err).Str("task_id", queued.TaskID).Msg("等待任务失败")
	}

	var result sdk.VideoResult
	if err := st.UnmarshalResult(&result); err != nil {
		log.Fatal().Err(err).Msg("解析任务结果失败")
	}

	data, err := json.MarshalIndent(result.Results, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("序列化检测结果失败")
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatal().Err(err).Str("output", *output).Msg("写入结果文件失败")
	}

	log.Info().
		Str("task_id", queued.TaskID).
		Int("frames", result.FrameCount).
		Int("detections", result.DetectionCount).
		Str("output", *output).
		Msg("任务完成")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadEnvFile 依次在当前目录及上级目录查找 .env
func loadEnvFile(log *zerolog.Logger) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	possiblePaths := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("已加载环境变量文件")
		return nil
	}
	return nil
}

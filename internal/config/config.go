package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	HTTP     HTTPConfig
	Log      LogConfig
	Queue    QueueConfig
	SAM2     SAM2Config
	VLM      VLMConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	DBPool   DBPoolConfig
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr            string
	MaxPayloadBytes int64
	ShutdownTimeout time.Duration
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string
	Production bool
}

// QueueConfig 任务队列与记录保留配置
type QueueConfig struct {
	Capacity        int
	Retention       time.Duration // 0 表示永久保留终态记录
	JanitorInterval time.Duration
}

// SAM2Config 分割推理服务配置
type SAM2Config struct {
	URL     string
	Timeout time.Duration
}

// VLMConfig 视觉语言模型配置
type VLMConfig struct {
	Backend      string // openai | gemini
	BaseURL      string
	Model        string
	APIKey       string
	GeminiAPIKey string
	Timeout      time.Duration
	Sampling     SamplingConfig
}

// SamplingConfig 采样参数
type SamplingConfig struct {
	Temperature       float64
	TopP              float64
	TopK              int
	MaxTokens         int
	Seed              int
	PresencePenalty   float64
	RepetitionPenalty float64
}

// RedisConfig Redis 配置（可选，用于目录扫描缓存）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	ScanTTL  time.Duration
}

// PostgresConfig PostgreSQL 配置（可选，用于执行历史）
type PostgresConfig struct {
	DSN          string
	WriteTimeout time.Duration // 单次执行历史写入超时
}

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Load 加载配置
func Load() (*Config, error) {
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")

	// 允许从环境变量读取（优先级最高）
	v.AutomaticEnv()

	// 读取配置文件（如果存在）
	_ = v.ReadInConfig() // 忽略错误，因为可能只使用环境变量

	cfg := &Config{}

	// HTTP 配置
	cfg.HTTP.Addr = v.GetString("HTTP_ADDR")
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8000"
	}
	cfg.HTTP.MaxPayloadBytes = v.GetInt64("MAX_PAYLOAD_BYTES")
	if cfg.HTTP.MaxPayloadBytes == 0 {
		cfg.HTTP.MaxPayloadBytes = 32 * 1024 * 1024
	}
	cfg.HTTP.ShutdownTimeout = v.GetDuration("SHUTDOWN_TIMEOUT")
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}

	// 日志配置
	cfg.Log.Level = strings.ToLower(v.GetString("LOG_LEVEL"))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Production = v.GetBool("LOG_PRODUCTION")

	// 队列配置
	cfg.Queue.Capacity = v.GetInt("QUEUE_CAPACITY")
	if cfg.Queue.Capacity == 0 {
		cfg.Queue.Capacity = 5
	}
	cfg.Queue.Retention = time.Hour
	if v.IsSet("TASK_RETENTION") {
		cfg.Queue.Retention = v.GetDuration("TASK_RETENTION")
	}
	cfg.Queue.JanitorInterval = v.GetDuration("JANITOR_INTERVAL")
	if cfg.Queue.JanitorInterval == 0 {
		cfg.Queue.JanitorInterval = time.Minute
	}

	// SAM2 配置
	cfg.SAM2.URL = strings.TrimRight(v.GetString("SAM2_URL"), "/")
	if cfg.SAM2.URL == "" {
		cfg.SAM2.URL = "http://127.0.0.1:9000"
	}
	cfg.SAM2.Timeout = v.GetDuration("SAM2_TIMEOUT")
	if cfg.SAM2.Timeout == 0 {
		cfg.SAM2.Timeout = 5 * time.Minute
	}

	// VLM 配置
	cfg.VLM.Backend = strings.ToLower(v.GetString("VLM_BACKEND"))
	if cfg.VLM.Backend == "" {
		cfg.VLM.Backend = BackendOpenAI
	}
	cfg.VLM.BaseURL = strings.TrimRight(v.GetString("VLM_BASE_URL"), "/")
	if cfg.VLM.BaseURL == "" {
		cfg.VLM.BaseURL = "http://127.0.0.1:8001/v1"
	}
	cfg.VLM.Model = v.GetString("VLM_MODEL")
	if cfg.VLM.Model == "" {
		cfg.VLM.Model = "Qwen/Qwen3-VL-8B-Instruct"
	}
	cfg.VLM.APIKey = v.GetString("VLM_API_KEY")
	cfg.VLM.GeminiAPIKey = v.GetString("GEMINI_API_KEY")
	cfg.VLM.Timeout = v.GetDuration("VLM_TIMEOUT")
	if cfg.VLM.Timeout == 0 {
		cfg.VLM.Timeout = 10 * time.Minute
	}
	cfg.VLM.Sampling = loadSampling(v)

	// Redis 配置
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.ScanTTL = v.GetDuration("SCAN_CACHE_TTL")
	if cfg.Redis.ScanTTL == 0 {
		cfg.Redis.ScanTTL = 30 * time.Second
	}

	// PostgreSQL 配置
	cfg.Postgres.DSN = v.GetString("POSTGRES_DSN")
	cfg.Postgres.WriteTimeout = v.GetDuration("HISTORY_WRITE_TIMEOUT")
	if cfg.Postgres.WriteTimeout == 0 {
		cfg.Postgres.WriteTimeout = 3 * time.Second
	}

	// 数据库连接池配置
	cfg.DBPool.MaxConns = int32(v.GetInt("DB_MAX_CONNS"))
	if cfg.DBPool.MaxConns == 0 {
		cfg.DBPool.MaxConns = 5
	}
	cfg.DBPool.MinConns = int32(v.GetInt("DB_MIN_CONNS"))
	if cfg.DBPool.MinConns == 0 {
		cfg.DBPool.MinConns = 1
	}
	cfg.DBPool.MaxConnLifetime = v.GetDuration("DB_MAX_CONN_LIFETIME")
	if cfg.DBPool.MaxConnLifetime == 0 {
		cfg.DBPool.MaxConnLifetime = 30 * time.Minute
	}
	cfg.DBPool.MaxConnIdleTime = v.GetDuration("DB_MAX_CONN_IDLE_TIME")
	if cfg.DBPool.MaxConnIdleTime == 0 {
		cfg.DBPool.MaxConnIdleTime = 5 * time.Minute
	}

	return cfg, nil
}

func loadSampling(v *viper.Viper) SamplingConfig {
	s := SamplingConfig{
		Temperature:       0.7,
		TopP:              0.8,
		TopK:              20,
		MaxTokens:         2048,
		Seed:              3407,
		PresencePenalty:   1.5,
		RepetitionPenalty: 1.0,
	}
	if v.IsSet("VLM_TEMPERATURE") {
		s.Temperature = v.GetFloat64("VLM_TEMPERATURE")
	}
	if v.IsSet("VLM_TOP_P") {
		s.TopP = v.GetFloat64("VLM_TOP_P")
	}
	if v.IsSet("VLM_TOP_K") {
		s.TopK = v.GetInt("VLM_TOP_K")
	}
	if v.IsSet("VLM_MAX_TOKENS") {
		s.MaxTokens = v.GetInt("VLM_MAX_TOKENS")
	}
	if v.IsSet("VLM_SEED") {
		s.Seed = v.GetInt("VLM_SEED")
	}
	if v.IsSet("VLM_PRESENCE_PENALTY") {
		s.PresencePenalty = v.GetFloat64("VLM_PRESENCE_PENALTY")
	}
	if v.IsSet("VLM_REPETITION_PENALTY") {
		s.RepetitionPenalty = v.GetFloat64("VLM_REPETITION_PENALTY")
	}
	return s
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Queue.Capacity < 1 {
		return fmt.Errorf("QUEUE_CAPACITY must be >= 1 (got %d)", c.Queue.Capacity)
	}
	if c.Queue.Retention < 0 {
		return fmt.Errorf("TASK_RETENTION must not be negative")
	}
	if c.SAM2.URL == "" {
		return fmt.Errorf("SAM2_URL is required")
	}
	switch c.VLM.Backend {
	case BackendOpenAI:
		if c.VLM.BaseURL == "" {
			return fmt.Errorf("VLM_BASE_URL is required for the openai backend")
		}
	case BackendGemini:
		if c.VLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
		}
	default:
		return fmt.Errorf("unknown VLM_BACKEND %q (want openai or gemini)", c.VLM.Backend)
	}
	if c.VLM.Model == "" {
		return fmt.Errorf("VLM_MODEL is required")
	}
	if c.HTTP.MaxPayloadBytes <= 0 {
		return fmt.Errorf("MAX_PAYLOAD_BYTES must be > 0")
	}
	return nil
}

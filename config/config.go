package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	LLM        LLMConfig        `mapstructure:"llm"`
	DocAI      DocAIConfig      `mapstructure:"docai"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Planner    PlannerConfig    `mapstructure:"planner"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	BaseURL        string     `mapstructure:"base_url"`
	BodyLimitBytes int64      `mapstructure:"body_limit_bytes"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
	LogLevel        string `mapstructure:"log_level"`          // silent | error | warn | info
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（每用户锁 + 限流）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 外部身份令牌校验配置
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`        // 为空时只输出到 stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // 单个文件上限
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// LLMConfig 文本生成服务（Azure OpenAI chat completions）
type LLMConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	Deployment  string        `mapstructure:"deployment"`
	APIVersion  string        `mapstructure:"api_version"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DocAIConfig 文档分析服务（OCR Read / Layout）
type DocAIConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	APIKey        string        `mapstructure:"api_key"`
	ReadVersion   string        `mapstructure:"read_version"`
	LayoutVersion string        `mapstructure:"layout_version"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	MaxBackoff    time.Duration `mapstructure:"max_backoff"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// ClassifierConfig 零样本问题分类器，Endpoint 为空时不启用
type ClassifierConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	APIKey    string        `mapstructure:"api_key"`
	Threshold float64       `mapstructure:"threshold"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PlannerConfig 计划生成与对账配置
type PlannerConfig struct {
	MinTopicsPerSlot    int           `mapstructure:"min_topics_per_slot"`
	MinQuestionsPerSlot int           `mapstructure:"min_questions_per_slot"`
	SchemaPolicy        string        `mapstructure:"schema_policy"` // reject | warn
	Timezone            string        `mapstructure:"timezone"`      // 判定"今天"的时区
	LockTTL             time.Duration `mapstructure:"lock_ttl"`
}

// Location 解析 Timezone，无效时回退 UTC
func (c *PlannerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RateLimitConfig 计划生成限流
type RateLimitConfig struct {
	GenerateLimit  int           `mapstructure:"generate_limit"`
	GenerateWindow time.Duration `mapstructure:"generate_window"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("LEARNPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit_bytes", 20<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "learnpath")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.deployment", "")
	v.SetDefault("llm.api_version", "2024-02-15-preview")
	v.SetDefault("llm.max_tokens", 4000)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("docai.endpoint", "")
	v.SetDefault("docai.api_key", "")
	v.SetDefault("docai.read_version", "v4.0")
	v.SetDefault("docai.layout_version", "2023-07-31")
	v.SetDefault("docai.poll_interval", "1s")
	v.SetDefault("docai.max_attempts", 10)
	v.SetDefault("docai.max_backoff", "16s")
	v.SetDefault("docai.timeout", "30s")

	v.SetDefault("classifier.endpoint", "")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.threshold", 0.7)
	v.SetDefault("classifier.timeout", "20s")

	v.SetDefault("planner.min_topics_per_slot", 2)
	v.SetDefault("planner.min_questions_per_slot", 5)
	v.SetDefault("planner.schema_policy", "reject")
	v.SetDefault("planner.timezone", "UTC")
	v.SetDefault("planner.lock_ttl", "3m")

	v.SetDefault("rate_limit.generate_limit", 5)
	v.SetDefault("rate_limit.generate_window", "1m")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Planner.SchemaPolicy {
	case "reject", "warn":
	default:
		return fmt.Errorf("配置校验失败: planner.schema_policy 只能是 reject 或 warn，实际为 %q", c.Planner.SchemaPolicy)
	}
	if c.Planner.MinTopicsPerSlot <= 0 || c.Planner.MinQuestionsPerSlot <= 0 {
		return fmt.Errorf("配置校验失败: planner 的最少主题/问题数必须大于 0")
	}
	if c.DocAI.MaxAttempts <= 0 {
		return fmt.Errorf("配置校验失败: docai.max_attempts 必须大于 0")
	}
	if c.RateLimit.GenerateLimit <= 0 || c.RateLimit.GenerateWindow <= 0 {
		return fmt.Errorf("配置校验失败: rate_limit 配置必须为正数")
	}
	// 锁 TTL 需覆盖一次完整的 LLM 调用
	if c.Planner.LockTTL <= c.LLM.Timeout {
		return fmt.Errorf("配置校验失败: planner.lock_ttl (%s) 必须大于 llm.timeout (%s)", c.Planner.LockTTL, c.LLM.Timeout)
	}
	if _, err := time.LoadLocation(c.Planner.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: planner.timezone 无效: %w", err)
	}
	return nil
}

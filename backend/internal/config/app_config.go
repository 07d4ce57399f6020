package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	defaultPort          = "8000"
	defaultJWTSecret     = "employee-portal-dev-secret"
	defaultAccessTTL     = 30 * time.Minute
	defaultRefreshTTL    = 7 * 24 * time.Hour
	defaultSQLitePath    = "data/employee_portal.db"
	defaultMySQLPort     = 3306
	defaultMySQLDatabase = "employee_portal"
	defaultMySQLParams   = "charset=utf8mb4&parseTime=true&loc=Local"
	defaultOpenAIModel   = "gpt-4o"
	defaultDeepSeekModel = "deepseek-chat"
	defaultAITimeout     = 15 * time.Second
	defaultCORSOrigins   = "http://localhost:3000,http://127.0.0.1:3000"
	defaultAdminEmail    = "admin@zenx.com"
	defaultAdminPassword = "admin123"
	defaultAdminName     = "Admin User"
	defaultServiceName   = "employee-portal"
)

// AppConfig 汇总服务启动需要的全部配置，全部来自环境变量（可由 .env 文件提供）。
type AppConfig struct {
	Server   ServerConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Content  ContentConfig
	Seed     SeedConfig
	Tracing  TracingConfig
	Runtime  RuntimeFlags
}

// ServerConfig HTTP 监听与跨域配置。
type ServerConfig struct {
	Port            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	AuthRateLimit   int           // 每个 IP 在 AuthRateWindow 内可调用登录/注册的次数，0 表示不限
	AuthRateWindow  time.Duration
}

// AuthConfig JWT 签名与令牌有效期。
type AuthConfig struct {
	JWTSecret      string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	UsingDevSecret bool
}

// DatabaseConfig 选择 sqlite 或 mysql 驱动。
type DatabaseConfig struct {
	Driver     string
	SQLitePath string
	MySQL      MySQLConfig
}

// MySQLConfig 描述 MySQL 连接参数。
type MySQLConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Params   string
}

// RedisConfig 为空 Endpoint 时表示不启用 Redis。
type RedisConfig struct {
	Endpoint string
	Password string
	DB       int
}

// Enabled 判断是否配置了 Redis。
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// AIConfig 文本生成服务配置。
type AIConfig struct {
	Provider   string        // openai / deepseek / volcengine / none
	APIKey     string        // 平台 API Key，为空时自动降级为规则兜底
	BaseURL    string        // 可选，自定义兼容 OpenAI 协议的地址
	Model      string        // 调用的模型名
	Timeout    time.Duration // 单次调用超时，超时即视为失败走兜底
	DailyQuota int           // 每位用户每个功能每日可调用次数，0 表示不限
}

// ContentConfig 外部内容文件，留空时使用内置默认数据。
type ContentConfig struct {
	StoryFile         string
	CourseCatalogFile string
}

// SeedConfig 启动时确保存在的管理员账号。
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// TracingConfig OpenTelemetry 资源属性，是否启用由 OTEL_ENABLED 决定。
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Version     string
}

// Load 读取环境变量并校验，非法取值以错误形式返回。
func Load() (AppConfig, error) {
	LoadEnvFiles()

	var errs []error
	r := envReader{errs: &errs}

	cfg := AppConfig{
		Server: ServerConfig{
			Port:            r.str("SERVER_PORT", defaultPort),
			CORSOrigins:     splitList(r.str("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)),
			ShutdownTimeout: r.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AuthRateLimit:   r.integer("AUTH_RATE_LIMIT", 20),
			AuthRateWindow:  r.duration("AUTH_RATE_WINDOW", time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:  r.str("JWT_SECRET", ""),
			AccessTTL:  r.duration("JWT_ACCESS_TTL", defaultAccessTTL),
			RefreshTTL: r.duration("JWT_REFRESH_TTL", defaultRefreshTTL),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(r.str("DB_DRIVER", DriverSQLite)),
			SQLitePath: normalisePath(r.str("SQLITE_PATH", defaultSQLitePath)),
			MySQL: MySQLConfig{
				Host:     r.str("MYSQL_HOST", ""),
				Port:     r.integer("MYSQL_PORT", defaultMySQLPort),
				Username: r.str("MYSQL_USERNAME", ""),
				Password: os.Getenv("MYSQL_PASSWORD"),
				Database: r.str("MYSQL_DATABASE", defaultMySQLDatabase),
				Params:   r.str("MYSQL_PARAMS", defaultMySQLParams),
			},
		},
		Redis: RedisConfig{
			Endpoint: r.str("REDIS_ENDPOINT", ""),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       r.integer("REDIS_DB", 0),
		},
		AI: AIConfig{
			Provider:   strings.ToLower(r.str("AI_PROVIDER", "openai")),
			APIKey:     r.str("AI_API_KEY", os.Getenv("OPENAI_API_KEY")),
			BaseURL:    r.str("AI_BASE_URL", ""),
			Model:      r.str("AI_MODEL", ""),
			Timeout:    r.duration("AI_TIMEOUT", defaultAITimeout),
			DailyQuota: r.integer("AI_DAILY_QUOTA", 0),
		},
		Content: ContentConfig{
			StoryFile:         r.str("WELLBEING_STORY_FILE", ""),
			CourseCatalogFile: r.str("COURSE_CATALOG_FILE", ""),
		},
		Seed: SeedConfig{
			AdminEmail:    r.str("ADMIN_EMAIL", defaultAdminEmail),
			AdminPassword: r.str("ADMIN_PASSWORD", defaultAdminPassword),
			AdminName:     r.str("ADMIN_NAME", defaultAdminName),
		},
		Tracing: TracingConfig{
			Enabled:     r.boolean("OTEL_ENABLED", false),
			ServiceName: r.str("OTEL_SERVICE_NAME", defaultServiceName),
			Environment: r.str("APP_ENV", "development"),
			Version:     r.str("APP_VERSION", "dev"),
		},
		Runtime: LoadRuntimeFlags(),
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = defaultJWTSecret
		cfg.Auth.UsingDevSecret = true
	}

	// 本地模式固定使用 SQLite，避免依赖外部数据库。
	if cfg.Runtime.IsLocal() {
		cfg.Database.Driver = DriverSQLite
	}

	switch cfg.Database.Driver {
	case DriverSQLite:
		if cfg.Database.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH must not be empty"))
		}
	case DriverMySQL:
		if cfg.Database.MySQL.Host == "" || cfg.Database.MySQL.Username == "" {
			errs = append(errs, errors.New("MYSQL_HOST and MYSQL_USERNAME are required when DB_DRIVER=mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver))
	}

	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.Model == "" {
			cfg.AI.Model = defaultOpenAIModel
		}
	case "deepseek":
		if cfg.AI.Model == "" {
			cfg.AI.Model = defaultDeepSeekModel
		}
	case "volcengine":
		// 方舟按接入点 ID 调用，没有通用默认值。
		if cfg.AI.Model == "" {
			errs = append(errs, errors.New("AI_MODEL (endpoint id) is required when AI_PROVIDER=volcengine"))
		}
	case "none":
	default:
		errs = append(errs, fmt.Errorf("unsupported AI_PROVIDER %q", cfg.AI.Provider))
	}
	if cfg.AI.DailyQuota < 0 {
		errs = append(errs, errors.New("AI_DAILY_QUOTA must be >= 0"))
	}
	if cfg.Server.AuthRateLimit < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT must be >= 0"))
	}
	if cfg.AI.Timeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// envReader 逐项读取环境变量，解析失败时记录错误并回退到默认值。
type envReader struct {
	errs *[]error
}

func (r envReader) str(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func (r envReader) integer(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return val
}

func (r envReader) boolean(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return val
}

// duration 同时接受 Go duration 字符串（15s）与纯数字秒数。
func (r envReader) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return val
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

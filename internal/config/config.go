package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	AdminAuth   AdminAuthConfig   `mapstructure:"admin_auth"`
	UserSession UserSessionConfig `mapstructure:"user_session"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Queue       QueueConfig       `mapstructure:"queue"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Security    SecurityConfig    `mapstructure:"security"`
	Email       EmailConfig       `mapstructure:"email"`
	Otp         OtpConfig         `mapstructure:"otp"`
	Checkout    CheckoutConfig    `mapstructure:"checkout"`
	Cart        CartConfig        `mapstructure:"cart"`
	Order       OrderConfig       `mapstructure:"order"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Captcha     CaptchaConfig     `mapstructure:"captcha"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   string `mapstructure:"port"`
	Mode                   string `mapstructure:"mode"` // debug / release
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds     int    `mapstructure:"idle_timeout_seconds"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// ShutdownTimeout 优雅停机等待时间
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return secondsOr(c.ShutdownTimeoutSeconds, 10)
}

func secondsOr(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

// IsRelease 是否为生产模式
func (c ServerConfig) IsRelease() bool {
	return strings.EqualFold(strings.TrimSpace(c.Mode), "release")
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		Level:      c.Level,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// AdminAuthConfig 管理员共享口令与会话配置
type AdminAuthConfig struct {
	Secret      string `mapstructure:"secret"`      // 明文口令，仅开发环境使用
	SecretHash  string `mapstructure:"secret_hash"` // bcrypt 哈希，优先于明文
	JWTSecret   string `mapstructure:"jwt_secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
	CookieName  string `mapstructure:"cookie_name"`
}

// SessionTTL 管理员会话有效期
func (c AdminAuthConfig) SessionTTL() time.Duration {
	return time.Duration(positiveOr(c.ExpireHours, 24)) * time.Hour
}

// UserSessionConfig 顾客手机号会话配置
type UserSessionConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"`
	ExpireDays int    `mapstructure:"expire_days"`
	CookieName string `mapstructure:"cookie_name"`
}

// SessionTTL 顾客会话有效期
func (c UserSessionConfig) SessionTTL() time.Duration {
	return time.Duration(positiveOr(c.ExpireDays, 30)) * 24 * time.Hour
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit     RateLimitConfig `mapstructure:"login_rate_limit"`
	PhoneRateLimit     RateLimitConfig `mapstructure:"phone_rate_limit"`
	OtpRateLimit       RateLimitConfig `mapstructure:"otp_rate_limit"`
	// 提交验证码（独立校验与结账确认）按 IP 计数
	OtpVerifyRateLimit RateLimitConfig `mapstructure:"otp_verify_rate_limit"`
}

// RateLimitConfig 固定窗口限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// EmailConfig 邮件服务配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	UseTLS   bool   `mapstructure:"use_tls"`
	UseSSL   bool   `mapstructure:"use_ssl"`
}

// OtpConfig 下单邮箱验证码配置
type OtpConfig struct {
	TTLMinutes            int `mapstructure:"ttl_minutes"`
	ResendIntervalSeconds int `mapstructure:"resend_interval_seconds"`
	MaxAttempts           int `mapstructure:"max_attempts"` // 0 表示不限制
	PurgeAfterHours       int `mapstructure:"purge_after_hours"`
}

// TTL 验证码有效期
func (c OtpConfig) TTL() time.Duration {
	return time.Duration(positiveOr(c.TTLMinutes, 10)) * time.Minute
}

// ResendInterval 重发最小间隔
func (c OtpConfig) ResendInterval() time.Duration {
	if c.ResendIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ResendIntervalSeconds) * time.Second
}

// CheckoutConfig 结账会话配置
type CheckoutConfig struct {
	SessionTTLHours      int `mapstructure:"session_ttl_hours"`
	PurgeIntervalMinutes int `mapstructure:"purge_interval_minutes"`
}

// SessionTTL 结账会话有效期
func (c CheckoutConfig) SessionTTL() time.Duration {
	return time.Duration(positiveOr(c.SessionTTLHours, 2)) * time.Hour
}

// PurgeInterval 过期会话与验证码的清理周期
func (c CheckoutConfig) PurgeInterval() time.Duration {
	return time.Duration(positiveOr(c.PurgeIntervalMinutes, 15)) * time.Minute
}

// CartConfig 购物车存储配置
type CartConfig struct {
	Storage  string `mapstructure:"storage"` // redis / file / memory
	FileDir  string `mapstructure:"file_dir"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

// TTL 购物车保留时长
func (c CartConfig) TTL() time.Duration {
	return time.Duration(positiveOr(c.TTLHours, 72)) * time.Hour
}

// OrderConfig 订单配置
type OrderConfig struct {
	StatusPolicy         string `mapstructure:"status_policy"` // permissive / linear
	DefaultPaymentMethod string `mapstructure:"default_payment_method"`
	ListCacheSeconds     int    `mapstructure:"list_cache_seconds"`
}

// NotifyConfig 通知配置
type NotifyConfig struct {
	OrderPlacedEmail bool `mapstructure:"order_placed_email"`
	OrderStatusEmail bool `mapstructure:"order_status_email"`
}

// CaptchaConfig 图片验证码配置
type CaptchaConfig struct {
	AdminLogin bool               `mapstructure:"admin_login"`
	Image      CaptchaImageConfig `mapstructure:"image"`
}

// CaptchaImageConfig 图片验证码参数
type CaptchaImageConfig struct {
	Length        int `mapstructure:"length"`
	Width         int `mapstructure:"width"`
	Height        int `mapstructure:"height"`
	NoiseCount    int `mapstructure:"noise_count"`
	ShowLine      int `mapstructure:"show_line"`
	ExpireSeconds int `mapstructure:"expire_seconds"`
	MaxStore      int `mapstructure:"max_store"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

const (
	defaultAdminJWTSecret = "admin-change-me-in-production"
	defaultUserJWTSecret  = "user-change-me-in-production"
	minJWTSecretLength    = 32
)

// ErrWeakSecret 生产模式下使用了默认或过短的签名密钥
var ErrWeakSecret = errors.New("weak jwt secret in release mode")

// Load 从 config.yml 加载配置
func Load() *Config {
	cfg, err := LoadFrom(viper.GetViper(), "")
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

// LoadFrom 使用给定 viper 实例加载配置，file 非空时只读取该文件
func LoadFrom(v *viper.Viper, file string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./")
		v.AddConfigPath("../") // 从 cmd/server 运行
		v.AddConfigPath("./etc")
	}
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> SERVER_PORT

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验生产环境必需的安全配置
func (c *Config) Validate() error {
	if c == nil || !c.Server.IsRelease() {
		return nil
	}
	if weakSecret(c.AdminAuth.JWTSecret, defaultAdminJWTSecret) {
		return fmt.Errorf("%w: admin_auth.jwt_secret", ErrWeakSecret)
	}
	if weakSecret(c.UserSession.JWTSecret, defaultUserJWTSecret) {
		return fmt.Errorf("%w: user_session.jwt_secret", ErrWeakSecret)
	}
	if strings.TrimSpace(c.AdminAuth.Secret) == "" && strings.TrimSpace(c.AdminAuth.SecretHash) == "" {
		return errors.New("admin_auth.secret or admin_auth.secret_hash is required in release mode")
	}
	return nil
}

func weakSecret(secret, fallback string) bool {
	secret = strings.TrimSpace(secret)
	return secret == "" || secret == fallback || len(secret) < minJWTSecretLength
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "cafe.log")
	v.SetDefault("log.level", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/monu-chai.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)

	v.SetDefault("admin_auth.secret", "")
	v.SetDefault("admin_auth.secret_hash", "")
	v.SetDefault("admin_auth.jwt_secret", defaultAdminJWTSecret)
	v.SetDefault("admin_auth.expire_hours", 24)
	v.SetDefault("admin_auth.cookie_name", "admin_session")

	v.SetDefault("user_session.jwt_secret", defaultUserJWTSecret)
	v.SetDefault("user_session.expire_days", 30)
	v.SetDefault("user_session.cookie_name", "session_phone")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "monuchai")

	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Authorization",
		"Accept-Language",
		"X-Request-ID",
		"X-Cart-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("security.login_rate_limit.window_seconds", 60)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.phone_rate_limit.window_seconds", 60)
	v.SetDefault("security.phone_rate_limit.max_attempts", 5)
	v.SetDefault("security.otp_rate_limit.window_seconds", 60)
	v.SetDefault("security.otp_rate_limit.max_attempts", 5)
	v.SetDefault("security.otp_verify_rate_limit.window_seconds", 300)
	v.SetDefault("security.otp_verify_rate_limit.max_attempts", 10)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "Monu Chai")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)

	v.SetDefault("otp.ttl_minutes", 10)
	v.SetDefault("otp.resend_interval_seconds", 30)
	v.SetDefault("otp.max_attempts", 0)
	v.SetDefault("otp.purge_after_hours", 24)

	v.SetDefault("checkout.session_ttl_hours", 2)
	v.SetDefault("checkout.purge_interval_minutes", 15)

	v.SetDefault("cart.storage", "redis")
	v.SetDefault("cart.file_dir", "./db/carts")
	v.SetDefault("cart.ttl_hours", 72)

	v.SetDefault("order.status_policy", "permissive")
	v.SetDefault("order.default_payment_method", "COD")
	v.SetDefault("order.list_cache_seconds", 15)

	v.SetDefault("notify.order_placed_email", true)
	v.SetDefault("notify.order_status_email", false)

	v.SetDefault("captcha.admin_login", false)
	v.SetDefault("captcha.image.length", 5)
	v.SetDefault("captcha.image.width", 240)
	v.SetDefault("captcha.image.height", 80)
	v.SetDefault("captcha.image.noise_count", 2)
	v.SetDefault("captcha.image.show_line", 2)
	v.SetDefault("captcha.image.expire_seconds", 300)
	v.SetDefault("captcha.image.max_store", 10240)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/openlaunch/open-launch/utils"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	JWT        JWTConfig        `json:"jwt"`
	Email      EmailConfig      `json:"email"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Cache      CacheConfig      `json:"cache"`
	Deployment DeploymentConfig `json:"deployment"`
	Stripe     StripeConfig     `json:"stripe"`
	Captcha    CaptchaConfig    `json:"captcha"`
	Discord    DiscordConfig    `json:"discord"`
	Cron       CronConfig       `json:"cron"`
}

type DatabaseConfig struct {
	// URL takes precedence over the individual fields when set
	URL             string        `json:"-"`
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"-"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryLog    bool          `json:"slow_query_log"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
}

// DSN returns the connection string handed to the postgres driver
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	ProxyHeader       string        `json:"proxy_header"`
	EnableCompression bool          `json:"enable_compression"`
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins []string `json:"allowed_origins"`
	CORSMaxAge     int      `json:"cors_max_age"`

	// Rate Limiting, requests per minute
	AuthRateLimit   int `json:"auth_rate_limit"`
	GlobalRateLimit int `json:"global_rate_limit"`
}

type JWTConfig struct {
	SecretKey       string        `json:"-"`
	PrivateKey      string        `json:"-"`
	PublicKey       string        `json:"public_key"`
	UseRSAKeys      bool          `json:"use_rsa_keys"`
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
	Issuer          string        `json:"issuer"`
	Audience        string        `json:"audience"`
}

type EmailConfig struct {
	// Provider is "resend" or "mock"
	Provider     string `json:"provider"`
	ResendAPIKey string `json:"-"`
	From         string `json:"from"`
}

type LoggingConfig struct {
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	Enabled       bool   `json:"enabled"`
	RedisURL      string `json:"-"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`
	RedisPrefix   string `json:"redis_prefix"`
}

type DeploymentConfig struct {
	AppURL      string `json:"app_url"`
	SiteName    string `json:"site_name"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

type StripeConfig struct {
	SecretKey string `json:"-"`
}

type CaptchaConfig struct {
	Enabled bool          `json:"enabled"`
	TTL     time.Duration `json:"ttl"`
	Padding int           `json:"padding"`
	ImgSize int           `json:"img_size"`
}

type DiscordConfig struct {
	WebhookURL          string `json:"-"`
	LaunchNotifications bool   `json:"launch_notifications"`
}

type CronConfig struct {
	Enabled         bool          `json:"enabled"`
	Schedule        string        `json:"schedule"`
	Timezone        string        `json:"timezone"`
	PaymentWindow   time.Duration `json:"payment_window"`
	SendConcurrency int           `json:"send_concurrency"`
	RunTimeout      time.Duration `json:"run_timeout"`
	Secret          string        `json:"-"`
	APIKey          string        `json:"-"`
	TrustHeader     string        `json:"trust_header"`
	AllowInsecure   bool          `json:"allow_insecure"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			URL:             getEnvString("DATABASE_URL", ""),
			Host:            getEnvString("DB_HOST", ""),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", ""),
			User:            getEnvString("DB_USER", ""),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryLog:    getEnvBool("DB_SLOW_QUERY_LOG", true),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 1*time.Second),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Minute),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 1024*1024),
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", "X-Real-IP"),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
		},
		Security: SecurityConfig{
			AllowedOrigins:  getEnvStringSlice("CORS_ALLOWED_ORIGINS", nil),
			CORSMaxAge:      getEnvInt("CORS_MAX_AGE", utils.CORSMaxAge),
			AuthRateLimit:   getEnvInt("AUTH_RATE_LIMIT", 20),
			GlobalRateLimit: getEnvInt("GLOBAL_RATE_LIMIT", 600),
		},
		JWT: JWTConfig{
			SecretKey:       getEnvString("JWT_SECRET_KEY", ""),
			PrivateKey:      getEnvString("JWT_PRIVATE_KEY", ""),
			PublicKey:       getEnvString("JWT_PUBLIC_KEY", ""),
			UseRSAKeys:      getEnvBool("JWT_USE_RSA_KEYS", false),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", utils.AccessTokenTTL),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", utils.RefreshTokenTTL),
			Issuer:          getEnvString("JWT_ISSUER", "open-launch"),
			Audience:        getEnvString("JWT_AUDIENCE", "open-launch-api"),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getEnvString("EMAIL_PROVIDER", "resend")),
			ResendAPIKey: getEnvString("RESEND_API_KEY", ""),
			From:         getEnvString("EMAIL_FROM", "Open Launch <noreply@open-launch.com>"),
		},
		Logging: LoggingConfig{
			FilePath:   getEnvString("LOG_FILE", "logs/open-launch.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 7),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled:       getEnvBool("CACHE_ENABLED", true),
			RedisURL:      getEnvString("REDIS_URL", ""),
			RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnvString("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			RedisPrefix:   getEnvString("REDIS_PREFIX", "open-launch"),
		},
		Deployment: DeploymentConfig{
			AppURL:      strings.TrimRight(getEnvString("APP_URL", ""), "/"),
			SiteName:    getEnvString("SITE_NAME", utils.DefaultSiteName),
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("APP_VERSION", "dev"),
		},
		Stripe: StripeConfig{
			SecretKey: getEnvString("STRIPE_SECRET_KEY", ""),
		},
		Captcha: CaptchaConfig{
			Enabled: getEnvBool("CAPTCHA_ENABLED", false),
			TTL:     getEnvDuration("CAPTCHA_TTL", 2*time.Minute),
			Padding: getEnvInt("CAPTCHA_PADDING", 8),
			ImgSize: getEnvInt("CAPTCHA_IMG_SIZE", 220),
		},
		Discord: DiscordConfig{
			WebhookURL:          getEnvString("DISCORD_WEBHOOK_URL", ""),
			LaunchNotifications: getEnvBool("DISCORD_LAUNCH_NOTIFICATIONS", true),
		},
		Cron: CronConfig{
			Enabled:         getEnvBool("CRON_ENABLED", false),
			Schedule:        getEnvString("CRON_SCHEDULE", "5 0 * * *"),
			Timezone:        getEnvString("CRON_TIMEZONE", "UTC"),
			PaymentWindow:   getEnvDuration("CRON_PAYMENT_WINDOW", utils.DefaultPaymentWindow),
			SendConcurrency: getEnvInt("CRON_SEND_CONCURRENCY", 1),
			RunTimeout:      getEnvDuration("CRON_RUN_TIMEOUT", 15*time.Minute),
			Secret:          getEnvString("CRON_SECRET", ""),
			APIKey:          getEnvString("CRON_API_KEY", ""),
			TrustHeader:     getEnvString("CRON_TRUST_HEADER", "X-Vercel-Cron-Secret"),
			AllowInsecure:   getEnvBool("CRON_ALLOW_INSECURE", false),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errs []string

	if cfg.Database.URL == "" {
		if cfg.Database.Host == "" {
			errs = append(errs, "DATABASE_URL or DB_HOST is required")
		}
		if cfg.Database.Name == "" {
			errs = append(errs, "DATABASE_URL or DB_NAME is required")
		}
		if cfg.Database.User == "" {
			errs = append(errs, "DATABASE_URL or DB_USER is required")
		}
	}

	if cfg.JWT.UseRSAKeys {
		if cfg.JWT.PrivateKey == "" || cfg.JWT.PublicKey == "" {
			errs = append(errs, "JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required when JWT_USE_RSA_KEYS=true")
		}
	} else if cfg.JWT.SecretKey == "" {
		errs = append(errs, "JWT_SECRET_KEY is required")
	} else if len(cfg.JWT.SecretKey) < 32 {
		errs = append(errs, "JWT_SECRET_KEY must be at least 32 characters long")
	}

	if cfg.Deployment.AppURL == "" {
		errs = append(errs, "APP_URL is required")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}

	if cfg.Cron.Secret == "" && cfg.Cron.APIKey == "" && !cfg.Cron.AllowInsecure {
		errs = append(errs, "CRON_SECRET or CRON_API_KEY is required (set CRON_ALLOW_INSECURE=true to disable)")
	}
	if cfg.Cron.SendConcurrency < 1 {
		errs = append(errs, "CRON_SEND_CONCURRENCY must be at least 1")
	}
	if cfg.Cron.PaymentWindow <= 0 {
		errs = append(errs, "CRON_PAYMENT_WINDOW must be positive")
	}
	if _, err := time.LoadLocation(cfg.Cron.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("CRON_TIMEZONE %q is not a valid IANA zone", cfg.Cron.Timezone))
	}

	if cfg.Email.Provider != "resend" && cfg.Email.Provider != "mock" {
		errs = append(errs, "EMAIL_PROVIDER must be resend or mock")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// loadEnvFile reads .env (or ENV_FILE) without overriding variables already set.
// A missing file is not an error.
func loadEnvFile() error {
	path := getEnvString("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

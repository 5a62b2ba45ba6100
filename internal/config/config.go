package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAppEnv             = "dev"
	defaultHTTPAddr           = ":8080"
	defaultDatabaseURL        = "rentalmarket.db"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultJWTAccessTTL       = "24h"
	defaultLogLevel           = "info"
	defaultLogFormat          = "text"
	defaultStorageDriver      = "local"
	defaultStorageLocalDir    = "./uploads"
	defaultStoragePublicBase  = "/static/uploads"
	defaultLockTTL            = "5s"
	defaultLockWait           = "3s"
	defaultWebhookSecret      = "change-me-webhook-secret"
	defaultWebhookTolerance   = "5m"
	defaultMaxRequestsPerUser = 5
	defaultExpiringSoonWindow = "48h"
	defaultEscalationSpec     = "0 */5 * * * *"
	defaultCleanupSpec        = "0 30 3 * * *"
	defaultRetention          = "2160h"
)

// Config is the runtime configuration shared by all commands.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Payment   PaymentConfig   `yaml:"payment"`
	Booking   BookingConfig   `yaml:"booking"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	CORS      CORSConfig      `yaml:"cors"`
}

type AppConfig struct {
	Env      string `yaml:"env"`
	HTTPAddr string `yaml:"http_addr"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	JWTAccessTTL time.Duration `yaml:"jwt_access_ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig selects the blob backend used for condition photos.
type StorageConfig struct {
	Driver             string `yaml:"driver"`
	LocalDir           string `yaml:"local_dir"`
	PublicBaseURL      string `yaml:"public_base_url"`
	GCSBucket          string `yaml:"gcs_bucket"`
	GCSCredentialsFile string `yaml:"gcs_credentials_file"`
}

// RedisConfig is optional. An empty Addr disables distributed locking.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
	LockWait time.Duration `yaml:"lock_wait"`
}

type PaymentConfig struct {
	WebhookSecret      string        `yaml:"webhook_secret"`
	SignatureTolerance time.Duration `yaml:"signature_tolerance"`
}

type BookingConfig struct {
	DefaultMaxRequestsPerUser int           `yaml:"default_max_requests_per_user"`
	ExpiringSoonWindow        time.Duration `yaml:"expiring_soon_window"`
}

type SchedulerConfig struct {
	EscalationSpec        string        `yaml:"escalation_spec"`
	NotificationCleanup   string        `yaml:"notification_cleanup_spec"`
	NotificationRetention time.Duration `yaml:"notification_retention"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads the optional YAML file at path, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideWithEnv(cfg *Config) error {
	cfg.App.Env = strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", cfg.App.Env)))
	cfg.App.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", cfg.App.HTTPAddr))
	cfg.Database.URL = strings.TrimSpace(getEnv("DATABASE_URL", cfg.Database.URL))
	cfg.Auth.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", cfg.Auth.JWTSecret))
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.Storage.Driver))
	cfg.Storage.LocalDir = getEnv("STORAGE_LOCAL_DIR", cfg.Storage.LocalDir)
	cfg.Storage.PublicBaseURL = getEnv("STORAGE_PUBLIC_BASE_URL", cfg.Storage.PublicBaseURL)
	cfg.Storage.GCSBucket = getEnv("GCS_BUCKET", cfg.Storage.GCSBucket)
	cfg.Storage.GCSCredentialsFile = getEnv("GCS_CREDENTIALS_FILE", cfg.Storage.GCSCredentialsFile)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Payment.WebhookSecret = strings.TrimSpace(getEnv("PAYMENT_WEBHOOK_SECRET", cfg.Payment.WebhookSecret))
	cfg.Scheduler.EscalationSpec = getEnv("ESCALATION_SPEC", cfg.Scheduler.EscalationSpec)
	cfg.Scheduler.NotificationCleanup = getEnv("NOTIFICATION_CLEANUP_SPEC", cfg.Scheduler.NotificationCleanup)

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	var err error
	if cfg.Auth.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", cfg.Auth.JWTAccessTTL, defaultJWTAccessTTL); err != nil {
		return err
	}
	if cfg.Redis.LockTTL, err = parseDurationEnv("REDIS_LOCK_TTL", cfg.Redis.LockTTL, defaultLockTTL); err != nil {
		return err
	}
	if cfg.Redis.LockWait, err = parseDurationEnv("REDIS_LOCK_WAIT", cfg.Redis.LockWait, defaultLockWait); err != nil {
		return err
	}
	if cfg.Payment.SignatureTolerance, err = parseDurationEnv("PAYMENT_SIGNATURE_TOLERANCE", cfg.Payment.SignatureTolerance, defaultWebhookTolerance); err != nil {
		return err
	}
	if cfg.Booking.ExpiringSoonWindow, err = parseDurationEnv("EXPIRING_SOON_WINDOW", cfg.Booking.ExpiringSoonWindow, defaultExpiringSoonWindow); err != nil {
		return err
	}
	if cfg.Scheduler.NotificationRetention, err = parseDurationEnv("NOTIFICATION_RETENTION", cfg.Scheduler.NotificationRetention, defaultRetention); err != nil {
		return err
	}
	if cfg.Redis.DB, err = parseIntEnv("REDIS_DB", cfg.Redis.DB); err != nil {
		return err
	}
	if cfg.Booking.DefaultMaxRequestsPerUser, err = parseIntEnv("MAX_REQUESTS_PER_USER", cfg.Booking.DefaultMaxRequestsPerUser); err != nil {
		return err
	}
	return nil
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.App.Env, defaultAppEnv)
	setDefault(&cfg.App.HTTPAddr, defaultHTTPAddr)
	setDefault(&cfg.Database.URL, defaultDatabaseURL)
	setDefault(&cfg.Auth.JWTSecret, defaultJWTSecret)
	setDefault(&cfg.Log.Level, defaultLogLevel)
	setDefault(&cfg.Log.Format, defaultLogFormat)
	setDefault(&cfg.Storage.Driver, defaultStorageDriver)
	setDefault(&cfg.Storage.LocalDir, defaultStorageLocalDir)
	setDefault(&cfg.Storage.PublicBaseURL, defaultStoragePublicBase)
	setDefault(&cfg.Payment.WebhookSecret, defaultWebhookSecret)
	setDefault(&cfg.Scheduler.EscalationSpec, defaultEscalationSpec)
	setDefault(&cfg.Scheduler.NotificationCleanup, defaultCleanupSpec)
	if cfg.Booking.DefaultMaxRequestsPerUser == 0 {
		cfg.Booking.DefaultMaxRequestsPerUser = defaultMaxRequestsPerUser
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Auth.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.Redis.LockTTL <= 0 {
		return fmt.Errorf("REDIS_LOCK_TTL must be > 0")
	}
	if cfg.Redis.LockWait < 0 {
		return fmt.Errorf("REDIS_LOCK_WAIT must be >= 0")
	}
	if cfg.Payment.SignatureTolerance <= 0 {
		return fmt.Errorf("PAYMENT_SIGNATURE_TOLERANCE must be > 0")
	}
	if cfg.Booking.ExpiringSoonWindow <= 0 {
		return fmt.Errorf("EXPIRING_SOON_WINDOW must be > 0")
	}
	if cfg.Booking.DefaultMaxRequestsPerUser <= 0 {
		return fmt.Errorf("MAX_REQUESTS_PER_USER must be > 0")
	}

	switch cfg.Storage.Driver {
	case "local":
		if strings.TrimSpace(cfg.Storage.LocalDir) == "" {
			return fmt.Errorf("STORAGE_LOCAL_DIR must not be empty")
		}
	case "gcs":
		if strings.TrimSpace(cfg.Storage.GCSBucket) == "" {
			return fmt.Errorf("GCS_BUCKET must be set when STORAGE_DRIVER=gcs")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, gcs")
	}

	format := strings.ToLower(cfg.Log.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("LOG_FORMAT must be one of: text, json")
	}

	if IsProdLike(cfg.App.Env) {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.Payment.WebhookSecret, defaultWebhookSecret) {
			return fmt.Errorf("in prod/release PAYMENT_WEBHOOK_SECRET must be set and not default")
		}
	}

	return nil
}

// IsProdLike reports whether env names a production deployment.
func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func setDefault(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}

func parseDurationEnv(name string, current time.Duration, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		if current != 0 {
			return current, nil
		}
		value = fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name string, current int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return current, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

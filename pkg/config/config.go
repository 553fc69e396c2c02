package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Image storage backends.
const (
	ImageStorageNone  = ""
	ImageStorageCloud = "cloud"
	ImageStorageLocal = "local"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Sentry     SentryConfig
	Images     ImageConfig
	Export     ExportConfig
	Complaints ComplaintConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs dashboard and analytics caching.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SentryConfig enables crash reporting when DSN is set.
type SentryConfig struct {
	DSN string
}

// ImageConfig selects where complaint photos are stored.
type ImageConfig struct {
	Storage      string
	MaxSizeBytes int64

	CloudURL     string
	CloudKey     string
	CloudSecret  string
	CloudFolder  string
	CloudTimeout time.Duration

	LocalDir     string
	LocalBaseURL string
}

// ExportConfig tunes CSV/PDF exports.
type ExportConfig struct {
	PDFMaxRows int
}

// ComplaintConfig holds workflow tunables.
type ComplaintConfig struct {
	RewardMin int
	RewardMax int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 7*24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}
	if cfg.Env == EnvProduction && cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required in production")
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Sentry = SentryConfig{DSN: v.GetString("SENTRY_DSN")}

	maxImage := v.GetInt64("MAX_IMAGE_SIZE")
	if maxImage <= 0 {
		maxImage = 5 * 1024 * 1024
	}
	cfg.Images = ImageConfig{
		Storage:      strings.ToLower(strings.TrimSpace(v.GetString("IMAGE_STORAGE"))),
		MaxSizeBytes: maxImage,
		CloudURL:     v.GetString("CLOUD_STORAGE_URL"),
		CloudKey:     v.GetString("CLOUD_STORAGE_KEY"),
		CloudSecret:  v.GetString("CLOUD_STORAGE_SECRET"),
		CloudFolder:  v.GetString("CLOUD_STORAGE_FOLDER"),
		CloudTimeout: parseDuration(v.GetString("CLOUD_STORAGE_TIMEOUT"), 30*time.Second),
		LocalDir:     v.GetString("LOCAL_STORAGE_DIR"),
		LocalBaseURL: v.GetString("LOCAL_STORAGE_BASE_URL"),
	}

	cfg.Export = ExportConfig{PDFMaxRows: v.GetInt("EXPORT_PDF_MAX_ROWS")}
	if cfg.Export.PDFMaxRows <= 0 {
		cfg.Export.PDFMaxRows = 100
	}

	cfg.Complaints = ComplaintConfig{
		RewardMin: v.GetInt("REWARD_MIN"),
		RewardMax: v.GetInt("REWARD_MAX"),
	}
	if cfg.Complaints.RewardMin < 0 || cfg.Complaints.RewardMax < cfg.Complaints.RewardMin || cfg.Complaints.RewardMax > 1000 {
		cfg.Complaints.RewardMin, cfg.Complaints.RewardMax = 5, 15
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "civic_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "civic-complaint-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SENTRY_DSN", "")

	v.SetDefault("IMAGE_STORAGE", "")
	v.SetDefault("MAX_IMAGE_SIZE", 5*1024*1024)
	v.SetDefault("CLOUD_STORAGE_URL", "")
	v.SetDefault("CLOUD_STORAGE_KEY", "")
	v.SetDefault("CLOUD_STORAGE_SECRET", "")
	v.SetDefault("CLOUD_STORAGE_FOLDER", "civic-complaints")
	v.SetDefault("CLOUD_STORAGE_TIMEOUT", "30s")
	v.SetDefault("LOCAL_STORAGE_DIR", "./uploads")
	v.SetDefault("LOCAL_STORAGE_BASE_URL", "/uploads")

	v.SetDefault("EXPORT_PDF_MAX_ROWS", 100)
	v.SetDefault("REWARD_MIN", 5)
	v.SetDefault("REWARD_MAX", 15)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

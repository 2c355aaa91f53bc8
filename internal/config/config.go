package config

import (
	"log"
	"os"
	"strings"
	"time"

	"tourmate-backend/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config is everything the API reads from the environment.
type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DSN      string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	StorageDriver string
	MediaRoot     string
	MediaURL      string
	MaxUploadMB   int64
	Minio         MinioConfig
	Firebase      FirebaseConfig

	Redis RedisConfig
	Log   utils.LogConfig

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	PublicBase string
}

type FirebaseConfig struct {
	CredentialsFile string
	Bucket          string
}

// RedisConfig is optional. An empty Addr keeps the token blacklist in the database.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "release"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DSN:      getEnv("DB_DSN", "tourmate.db"),

		JWTSecret:       getEnv("JWT_SECRET", "tourmate-dev-secret"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 60*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		StorageDriver: getEnv("STORAGE_DRIVER", "local"),
		MediaRoot:     getEnv("MEDIA_ROOT", "media"),
		MediaURL:      getEnv("MEDIA_URL", "/media/"),
		MaxUploadMB:   cast.ToInt64(getEnv("MAX_UPLOAD_MB", "10")),
		Minio: MinioConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", ""),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:  getEnv("MINIO_SECRET_KEY", ""),
			Bucket:     getEnv("MINIO_BUCKET", "tourmate"),
			UseSSL:     cast.ToBool(getEnv("MINIO_USE_SSL", "false")),
			PublicBase: getEnv("MINIO_PUBLIC_BASE", ""),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS", ""),
			Bucket:          getEnv("FIREBASE_BUCKET", ""),
		},

		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       cast.ToInt(getEnv("REDIS_DB", "0")),
		},
		Log: utils.LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Filename:   getEnv("LOG_FILENAME", ""),
			MaxSize:    cast.ToInt(getEnv("LOG_MAX_SIZE", "100")),
			MaxAge:     cast.ToInt(getEnv("LOG_MAX_AGE", "30")),
			MaxBackups: cast.ToInt(getEnv("LOG_MAX_BACKUPS", "5")),
		},

		RateLimitRPS:   cast.ToFloat64(getEnv("RATE_LIMIT_RPS", "5")),
		RateLimitBurst: cast.ToInt(getEnv("RATE_LIMIT_BURST", "10")),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

// getDuration accepts Go durations ("90m") or a plain number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := cast.ToInt64E(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: invalid duration in %s, using %s", key, fallback)
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

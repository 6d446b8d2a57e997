package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinioConfig holds the object storage settings used when UPLOAD_BACKEND=minio.
type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string
}

// RateLimitConfig configures the edge filter's fixed-window limiter.
type RateLimitConfig struct {
	Backend string // "memory" or "redis"
	Window  time.Duration
	Max     int
	MaxKeys int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers      []string
	ContactTopic string
}

type LogConfig struct {
	Level       string
	Development bool
	File        string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
}

// AppConfig is the full process configuration, read once at startup.
type AppConfig struct {
	HTTPAddr      string
	DatabaseURL   string
	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	UploadBackend string // "local" or "minio"
	UploadDir     string
	Minio         MinioConfig

	RateLimit RateLimitConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Log       LogConfig

	CORSAllowedOrigins   []string
	StrictOriginCheck    bool
	SecureCookies        bool
	ExposeInternalErrors bool
	AdminUIDir           string
	MigrateOnStart       bool
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL (or POSTGRES_URL) must be set")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET must be set")
)

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}
}

// Load reads the configuration from the environment. It fails when a value
// without a usable default is missing.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:      ":" + getEnv("SERVER_PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", os.Getenv("POSTGRES_URL")),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		UploadBackend: strings.ToLower(getEnv("UPLOAD_BACKEND", "local")),
		UploadDir:     getEnv("UPLOAD_DIR", "public"),
		Minio: MinioConfig{
			Endpoint:        os.Getenv("MINIO_ENDPOINT"),
			AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("MINIO_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("MINIO_BUCKET_NAME"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			PublicURL:       strings.TrimRight(os.Getenv("MINIO_PUBLIC_URL"), "/"),
		},

		RateLimit: RateLimitConfig{
			Backend: strings.ToLower(getEnv("RATE_LIMIT_BACKEND", "memory")),
			Window:  getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			Max:     getInt("RATE_LIMIT_MAX", 100),
			MaxKeys: getInt("RATE_LIMIT_MAX_KEYS", 10000),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASS"),
			DB:       getInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:      getList("KAFKA_BROKERS"),
			ContactTopic: getEnv("KAFKA_CONTACT_TOPIC", "contact-messages"),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getBool("LOG_DEVELOPMENT", false),
			File:        os.Getenv("LOG_FILE"),
			MaxSizeMB:   getInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups:  getInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays:  getInt("LOG_MAX_AGE_DAYS", 30),
		},

		CORSAllowedOrigins:   getList("CORS_ALLOWED_ORIGINS"),
		StrictOriginCheck:    getBool("STRICT_ORIGIN_CHECK", true),
		SecureCookies:        getBool("COOKIE_SECURE", false),
		ExposeInternalErrors: getBool("EXPOSE_INTERNAL_ERRORS", true),
		AdminUIDir:           os.Getenv("ADMIN_UI_DIR"),
		MigrateOnStart:       getBool("MIGRATE_ON_START", true),
	}

	if cfg.DatabaseURL == "" {
		return cfg, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return cfg, ErrMissingJWTSecret
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("WARNING: ADMIN_EMAIL or ADMIN_PASSWORD not set, no admin account will be seeded.")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARNING: %s is not a valid integer ('%s'), using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARNING: %s is not a valid boolean ('%s'), using %t", key, v, fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARNING: %s is not a valid duration ('%s'), using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

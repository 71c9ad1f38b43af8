package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Seed      SeedConfig
	CORS      CORSConfig
	Redis     RedisConfig
	S3        S3Config
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port         string
	GinMode      string
	Environment  string
	LogLevel     string
	LogFormat    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	SQLitePath   string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// AdminConfig holds the credentials of the account provisioned on first start.
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

type SeedConfig struct {
	FixturePath string // empty means the embedded initial_data.json
	OnStart     bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type SchedulerConfig struct {
	OrphanReportSchedule string // cron spec, empty disables the job
}

const DefaultAdminPassword = "admin123"

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			GinMode:      getEnv("GIN_MODE", "debug"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			LogLevel:     getEnv("LOG_LEVEL", ""),
			LogFormat:    getEnv("LOG_FORMAT", "console"),
			ReadTimeout:  parseDuration(getEnv("SERVER_READ_TIMEOUT", "15s"), 15*time.Second),
			WriteTimeout: parseDuration(getEnv("SERVER_WRITE_TIMEOUT", "15s"), 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "stories"),
			Password:     getEnv("DB_PASSWORD", "stories"),
			DBName:       getEnv("DB_NAME", "stories"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "db.sqlite3"),
			MaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", "10"), 10),
			MaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", "100"), 100),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "change-me-in-production"),
			AccessTokenExpiry: parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "12h"), 12*time.Hour),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password: getEnv("ADMIN_PASSWORD", DefaultAdminPassword),
		},
		Seed: SeedConfig{
			FixturePath: getEnv("SEED_FIXTURE", ""),
			OnStart:     parseBool(getEnv("SEED_ON_START", "true"), true),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false"), false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "eu-central-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Scheduler: SchedulerConfig{
			OrphanReportSchedule: getEnv("ORPHAN_REPORT_SCHEDULE", "0 3 * * *"),
		},
	}

	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", config.Database.Driver)
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns host:port of the Redis server.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Configured reports whether image uploads can be presigned.
func (c *S3Config) Configured() bool {
	return c.Bucket != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Printf("Invalid boolean %s, using default %t", s, fallback)
		return fallback
	}
	return b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverCSV      = "csv"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"

	CredentialsDriverJSON     = "json"
	CredentialsDriverPostgres = "postgres"

	ExportDriverFS = "fs"
	ExportDriverS3 = "s3"
)

type Config struct {
	ServerPort  string
	ServerHost  string
	Environment string

	DataDir           string
	StorageDriver     string
	SQLitePath        string
	DatabaseURL       string
	CredentialsDriver string
	CredentialsFile   string

	JWTSecret      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	RedisURL               string
	RateLimitEnabled       bool
	RateLimitAttempts      int
	RateLimitWindow        time.Duration
	RateLimitBlockDuration time.Duration

	LogLevel  string
	LogFormat string

	// CORS configuration
	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	ExportDriver string
	ExportDir    string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3PathStyle  bool

	MetricsEnabled bool
}

var (
	ErrMissingDatabaseURL       = errors.New("DATABASE_URL is required for the postgres drivers")
	ErrMissingJWTSecret         = errors.New("JWT_SECRET is required")
	ErrInvalidTokenTTL          = errors.New("invalid token TTL format")
	ErrInvalidStorageDriver     = errors.New("STORAGE_DRIVER must be csv, sqlite or postgres")
	ErrInvalidCredentialsDriver = errors.New("CREDENTIALS_DRIVER must be json or postgres")
	ErrInvalidExportDriver      = errors.New("EXPORT_DRIVER must be fs or s3")
	ErrMissingS3Bucket          = errors.New("S3_BUCKET is required when EXPORT_DRIVER=s3")
)

// Load reads the configuration of the HTTP server.
func Load() (*Config, error) {
	cfg, err := LoadTooling()
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

// LoadTooling reads the same settings as Load without requiring the token
// secret, for the command line tools that never serve requests.
func LoadTooling() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnvOrDefault("DATA_DIR", "data")
	cfg := &Config{
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", "localhost"),
		Environment: getEnvOrDefault("ENV", "development"),

		DataDir:           dataDir,
		StorageDriver:     strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", StorageDriverCSV)),
		SQLitePath:        getEnvOrDefault("SQLITE_PATH", filepath.Join(dataDir, "kpi.db")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		CredentialsDriver: strings.ToLower(getEnvOrDefault("CREDENTIALS_DRIVER", CredentialsDriverJSON)),
		CredentialsFile:   getEnvOrDefault("CREDENTIALS_FILE", filepath.Join(dataDir, "users_db.json")),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		BcryptCost: getEnvOrDefaultInt("BCRYPT_COST", 0),

		RedisURL:          getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled:  getEnvOrDefaultBool("RATE_LIMIT_ENABLED", false),
		RateLimitAttempts: getEnvOrDefaultInt("RATE_LIMIT_ATTEMPTS", 5),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),

		ExportDriver: strings.ToLower(getEnvOrDefault("EXPORT_DRIVER", ExportDriverFS)),
		ExportDir:    getEnvOrDefault("EXPORT_DIR", filepath.Join(dataDir, "exports")),
		S3Bucket:     os.Getenv("S3_BUCKET"),
		S3Region:     getEnvOrDefault("S3_REGION", "eu-west-3"),
		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
		S3PathStyle:  getEnvOrDefaultBool("S3_PATH_STYLE", false),

		MetricsEnabled: getEnvOrDefaultBool("METRICS_ENABLED", true),
	}

	switch cfg.StorageDriver {
	case StorageDriverCSV, StorageDriverSQLite:
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrMissingDatabaseURL
		}
	default:
		return nil, ErrInvalidStorageDriver
	}

	switch cfg.CredentialsDriver {
	case CredentialsDriverJSON:
	case CredentialsDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrMissingDatabaseURL
		}
	default:
		return nil, ErrInvalidCredentialsDriver
	}

	switch cfg.ExportDriver {
	case ExportDriverFS:
	case ExportDriverS3:
		if cfg.S3Bucket == "" {
			return nil, ErrMissingS3Bucket
		}
	default:
		return nil, ErrInvalidExportDriver
	}

	accessTokenTTL, err := parseTokenTTL(getEnvOrDefault("JWT_ACCESS_TOKEN_TTL", "28800"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.AccessTokenTTL = accessTokenTTL

	window, err := parseTokenTTL(getEnvOrDefault("RATE_LIMIT_WINDOW", "900"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.RateLimitWindow = window

	blockDuration, err := parseTokenTTL(getEnvOrDefault("RATE_LIMIT_BLOCK_DURATION", "1800"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.RateLimitBlockDuration = blockDuration

	return cfg, nil
}

// Address is the listen address of the HTTP server.
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// parseTokenTTL accepts a number of seconds or a Go duration string.
func parseTokenTTL(value string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}

func parseAllowedOrigins(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}

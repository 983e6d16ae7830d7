package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration from environment variables
type Config struct {
	// Application
	AppPort string

	// Database
	DBDriver     string // mysql or sqlite3
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBPath       string // sqlite3 only
	DBInitSchema bool
	DBSeed       bool

	// Auth
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// Product cache
	CacheBackend  string // memory or redis
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Audit trail, disabled when MongoURI is empty
	MongoURI             string
	MongoDatabase        string
	MongoAuditCollection string

	// Logging
	LogLevel    string
	LogEncoding string

	// OpenTelemetry
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPProtocol  string
	OTELExporterOTLPHeaders   string // For SigNoz Cloud: signoz-ingestion-key=<key>
	OTELExporterOTLPInsecure  bool   // true for http://, false for https://
	OTELServiceName           string
	OTELServiceVersion        string
	OTELDeploymentEnvironment string
	OTELResourceAttributes    string
}

var defaults = map[string]any{
	"APP_PORT": "8080",

	"DB_DRIVER":      "mysql",
	"DB_HOST":        "localhost",
	"DB_PORT":        "3306",
	"DB_USER":        "root",
	"DB_PASSWORD":    "password",
	"DB_NAME":        "storefront",
	"DB_PATH":        "storefront.db",
	"DB_INIT_SCHEMA": true,
	"DB_SEED":        false,

	"JWT_SECRET": "change-me-in-production",
	"JWT_ISSUER": "storefront-go-app",
	"JWT_TTL":    "24h",

	"CACHE_BACKEND":  "memory",
	"CACHE_TTL":      "5m",
	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"MONGO_URI":              "",
	"MONGO_DATABASE":         "storefront",
	"MONGO_AUDIT_COLLECTION": "audit_logs",

	"LOG_LEVEL":    "info",
	"LOG_ENCODING": "json",

	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4318",
	"OTEL_EXPORTER_OTLP_PROTOCOL": "http/protobuf",
	"OTEL_EXPORTER_OTLP_HEADERS":  "",
	"OTEL_EXPORTER_OTLP_INSECURE": true, // Default true for local dev
	"OTEL_SERVICE_NAME":           "storefront-go-app",
	"OTEL_SERVICE_VERSION":        "1.0.0",
	"OTEL_DEPLOYMENT_ENVIRONMENT": "development",
	"OTEL_RESOURCE_ATTRIBUTES":    "",
}

// LoadConfig loads configuration from .env file and environment variables with defaults.
// The returned error only reports a .env file that exists but cannot be parsed.
func LoadConfig() (*Config, error) {
	var loadErr error
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		loadErr = fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return FromViper(v), loadErr
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort: v.GetString("APP_PORT"),

		DBDriver:     v.GetString("DB_DRIVER"),
		DBHost:       v.GetString("DB_HOST"),
		DBPort:       v.GetString("DB_PORT"),
		DBUser:       v.GetString("DB_USER"),
		DBPassword:   v.GetString("DB_PASSWORD"),
		DBName:       v.GetString("DB_NAME"),
		DBPath:       v.GetString("DB_PATH"),
		DBInitSchema: v.GetBool("DB_INIT_SCHEMA"),
		DBSeed:       v.GetBool("DB_SEED"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTIssuer: v.GetString("JWT_ISSUER"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		CacheBackend:  v.GetString("CACHE_BACKEND"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		MongoURI:             v.GetString("MONGO_URI"),
		MongoDatabase:        v.GetString("MONGO_DATABASE"),
		MongoAuditCollection: v.GetString("MONGO_AUDIT_COLLECTION"),

		LogLevel:    v.GetString("LOG_LEVEL"),
		LogEncoding: v.GetString("LOG_ENCODING"),

		OTELExporterOTLPEndpoint:  v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELExporterOTLPProtocol:  v.GetString("OTEL_EXPORTER_OTLP_PROTOCOL"),
		OTELExporterOTLPHeaders:   v.GetString("OTEL_EXPORTER_OTLP_HEADERS"),
		OTELExporterOTLPInsecure:  v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		OTELServiceName:           v.GetString("OTEL_SERVICE_NAME"),
		OTELServiceVersion:        v.GetString("OTEL_SERVICE_VERSION"),
		OTELDeploymentEnvironment: v.GetString("OTEL_DEPLOYMENT_ENVIRONMENT"),
		OTELResourceAttributes:    v.GetString("OTEL_RESOURCE_ATTRIBUTES"),
	}
}

// GetDSN returns the DSN string for the configured driver. MySQL reports
// matched rather than changed rows so RowsAffected can detect missing rows.
func (c *Config) GetDSN() string {
	if c.DBDriver == "sqlite3" {
		return SQLiteDSN(c.DBPath)
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4&loc=UTC&clientFoundRows=true"
}

// SQLiteDSN returns a sqlite3 DSN with foreign keys on and write-locking transactions.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

// GetAppPortInt returns the application port as an integer
func (c *Config) GetAppPortInt() int {
	port, err := strconv.Atoi(c.AppPort)
	if err != nil {
		return 8080
	}
	return port
}

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	JWTKey                string
	IdentityIntrospectURL string
	AdminRole             string

	TimezoneOffsetHours int
	CertValidityUnit    string
	EnforceCatalogPrice bool

	Notifier           string
	SendGridAPIKey     string
	EmailSender        string
	EmailSenderName    string
	CertificateBaseURL string
	KafkaBrokers       []string
	KafkaTopic         string

	RedisAddr     string
	ReconcileCron string

	UploadDir     string
	UploadBaseURL string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "edutrack"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTKey:                getEnv("JWT_SECRET_KEY", "defaultSecret"),
		IdentityIntrospectURL: getEnv("IDENTITY_INTROSPECT_URL", ""),
		AdminRole:             getEnv("ADMIN_ROLE", "admin"),

		TimezoneOffsetHours: getEnvInt("ID_TIMEZONE_OFFSET_HOURS", 7),
		CertValidityUnit:    getEnv("CERT_VALIDITY_UNIT", "months"),
		EnforceCatalogPrice: getEnvBool("ENFORCE_CATALOG_PRICE", true),

		Notifier:           getEnv("NOTIFIER", "log"),
		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		EmailSender:        getEnv("EMAIL_SENDER", "no-reply@example.com"),
		EmailSenderName:    getEnv("EMAIL_SENDER_NAME", "Training Team"),
		CertificateBaseURL: getEnv("CERTIFICATE_BASE_URL", "https://example.com/certificates"),
		KafkaBrokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "certificate-issued"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		ReconcileCron: os.Getenv("RECONCILE_CRON"),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "/uploads"),
	}
	if _, set := os.LookupEnv("RECONCILE_CRON"); !set {
		AppConfig.ReconcileCron = "0 3 * * *"
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" && AppConfig.IdentityIntrospectURL == "" {
		log.Warn().Msg("Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.Notifier == "sendgrid" && AppConfig.SendGridAPIKey == "" {
		log.Warn().Msg("NOTIFIER=sendgrid without SENDGRID_API_KEY, falling back to log notifier.")
		AppConfig.Notifier = "log"
	}

	return AppConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("invalid integer environment variable")
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("invalid boolean environment variable")
		return defaultValue
	}
	return b
}

func getEnvList(key string, defaultValue []string) []string {
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

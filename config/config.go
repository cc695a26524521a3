package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         string
	AppEnv       string
	PublicOrigin string
	JWTKey       string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	EmailBackend    string // sendgrid, smtp or console
	SendgridAPIKey  string
	EmailSender     string
	EmailSenderName string
	Password        string // SMTP Password
	SMTPHost        string
	SMTPPort        string

	StorageBackend   string // local, s3 or http
	UploadDir        string
	PublicUploadPath string
	S3Endpoint       string
	S3Region         string
	S3Bucket         string
	S3AccessKeyID    string
	S3SecretKey      string
	S3PublicBaseURL  string
	StorageHTTPURL   string
	StorageHTTPToken string
	MaxUploadMB      int

	DispatchWorkers      int
	SendTimeout          time.Duration
	CertProgramPrefix    string
	LinkSigningKey       string
	EnforceLinkSignature bool
	ReminderCron         string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:         getEnv("PORT", "3000"),
		AppEnv:       getEnv("APP_ENV", "development"),
		PublicOrigin: strings.TrimRight(getEnv("PUBLIC_ORIGIN", "http://localhost:3000"), "/"),
		JWTKey:       getEnv("JWT_SECRET_KEY", "defaultSecret"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "institute"),

		EmailBackend:    getEnv("EMAIL_BACKEND", "console"),
		SendgridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@institute.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Training Institute"),
		Password:        getEnv("PASSWORD", ""),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),

		StorageBackend:   getEnv("STORAGE_BACKEND", "local"),
		UploadDir:        getEnv("UPLOAD_DIR", "./public/uploads"),
		PublicUploadPath: getEnv("PUBLIC_UPLOAD_PATH", "/uploads"),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3AccessKeyID:    getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:      getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicBaseURL:  getEnv("S3_PUBLIC_BASE_URL", ""),
		StorageHTTPURL:   getEnv("STORAGE_HTTP_URL", ""),
		StorageHTTPToken: getEnv("STORAGE_HTTP_TOKEN", ""),
		MaxUploadMB:      getEnvInt("MAX_UPLOAD_MB", 20),

		DispatchWorkers:      getEnvInt("DISPATCH_WORKERS", 8),
		SendTimeout:          getEnvDuration("SEND_TIMEOUT", 15*time.Second),
		CertProgramPrefix:    strings.ToUpper(getEnv("CERT_PROGRAM_PREFIX", "NYST")),
		LinkSigningKey:       getEnv("LINK_SIGNING_KEY", ""),
		EnforceLinkSignature: getEnvBool("ENFORCE_LINK_SIGNATURE", false),
		ReminderCron:         getEnv("REMINDER_CRON", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.EnforceLinkSignature && AppConfig.LinkSigningKey == "" {
		log.Println("Warning: ENFORCE_LINK_SIGNATURE is set without LINK_SIGNING_KEY. Signature checks are disabled.")
		AppConfig.EnforceLinkSignature = false
	}
	if AppConfig.DispatchWorkers < 1 {
		AppConfig.DispatchWorkers = 1
	}
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
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}

// getEnvDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Error converting environment variable %s to duration: %q", key, value)
	return defaultValue
}

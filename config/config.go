package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var (
	Port         string
	LogLevel     string
	ProductsFile string

	// Storage backend: "json" (default) or "mongo".
	StorageBackend string
	MongoURI       string
	MongoDatabase  string

	// eBay Browse API credentials; empty disables the API path.
	EbayAppID  string
	EbayCertID string

	GeminiAPIKey string

	// SendGrid import-summary notifications.
	SendgridAPIKey string
	NotifyEmail    string

	// S3 image mirroring; empty bucket disables it.
	AWSRegion     string
	AWSBucketName string

	// Admin auth for mutating endpoints.
	JWTSecret         string
	AdminPasswordHash string

	// Scraping behavior.
	EnableHeadless bool
	ImportDelay    time.Duration
	ImportCron     string
	ImportURLsFile string
)

// LoadConfig loads environment variables from a .env file when present.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	Port = getEnvOrDefault("PORT", "8080")
	LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	ProductsFile = getEnvOrDefault("PRODUCTS_FILE", "data/products.json")

	StorageBackend = getEnvOrDefault("STORAGE_BACKEND", "json")
	MongoURI = getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017/")
	MongoDatabase = getEnvOrDefault("MONGO_DB", "dealradar")

	EbayAppID = os.Getenv("EBAY_APP_ID")
	EbayCertID = os.Getenv("EBAY_CERT_ID")
	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	SendgridAPIKey = os.Getenv("SENDGRID_API_KEY")
	NotifyEmail = os.Getenv("NOTIFY_EMAIL")

	AWSRegion = getEnvOrDefault("AWS_REGION", "us-east-1")
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")

	JWTSecret = os.Getenv("JWT_SECRET")
	AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	EnableHeadless = getEnvOrDefault("ENABLE_HEADLESS", "false") == "true"
	ImportDelay = time.Duration(getEnvInt("IMPORT_DELAY_MS", 800)) * time.Millisecond
	ImportCron = getEnvOrDefault("IMPORT_CRON", "")
	ImportURLsFile = getEnvOrDefault("IMPORT_URLS_FILE", "data/import_urls.txt")
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

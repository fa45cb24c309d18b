package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort string // Application port
	IsProd  bool   // Is production environment

	DBDriver   string // mysql, postgres or sqlite
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBSSLMode  string // Postgres sslmode
	SQLitePath string // Database file for the sqlite driver

	JWTSecret string        // JWT secret key
	JWTTTL    time.Duration // Token lifetime

	RedisAddr string // Redis server address, empty disables Redis
	RedisPass string // Redis password
	RedisDB   int    // Redis database number

	AllowedOrigins    []string      // CORS origins
	RateLimitRequests int           // Requests allowed per window on limited routes
	RateLimitWindow   time.Duration // Rate limit window

	StorageDriver     string // local or s3
	UploadDir         string // Directory for compressed images (local driver)
	UploadURLPrefix   string // URL prefix the upload directory is served under
	UploadMaxBytes    int64  // Max accepted upload size before compression
	ImageMaxDimension int    // Bounding box for stored images
	ImageQuality      int    // JPEG quality for stored images

	S3Endpoint        string // Custom endpoint for S3 compatible stores
	S3Region          string // Bucket region
	S3Bucket          string // Bucket name
	S3AccessKeyID     string // Static access key
	S3SecretAccessKey string // Static secret key
	S3UsePathStyle    bool   // Path-style addressing
	S3PublicBaseURL   string // Public base URL objects are served from

	AlertPolicy   string        // feeding-cleaning or feeding-cleaning-water
	CareThreshold time.Duration // Age after which a care category is overdue
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort: getEnv("APP_PORT", "3001"),     // Application port
		IsProd:  os.Getenv("IS_PROD") == "true", // Is production environment

		DBDriver:   getEnv("DB_DRIVER", "mysql"),           // Database driver
		DBUser:     os.Getenv("DB_USER"),                   // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),               // Database password
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),         // Database host
		DBPort:     os.Getenv("DB_PORT"),                   // Database port
		DBName:     getEnv("DB_NAME", "gecko_rack"),        // Database name
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),        // Postgres sslmode
		SQLitePath: getEnv("SQLITE_PATH", "gecko_rack.db"), // SQLite file

		JWTSecret: os.Getenv("JWT_SECRET"),                // JWT secret key
		JWTTTL:    getDuration("JWT_TTL", 7*24*time.Hour), // Token lifetime
		RedisAddr: os.Getenv("REDIS_ADDR"),                // Redis server address
		RedisPass: os.Getenv("REDIS_PASS"),                // Redis password
		RedisDB:   getInt("REDIS_DB", 0),                  // Redis database number

		AllowedOrigins:    getList("ALLOWED_ORIGINS"),                    // CORS origins
		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 20),             // Requests per window
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute), // Window length

		StorageDriver:     getEnv("STORAGE_DRIVER", "local"),         // Image storage backend
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),           // Local image directory
		UploadURLPrefix:   getEnv("UPLOAD_URL_PREFIX", "/uploads"),   // Served URL prefix
		UploadMaxBytes:    int64(getInt("UPLOAD_MAX_BYTES", 10<<20)), // 10MB before compression
		ImageMaxDimension: getInt("IMAGE_MAX_DIMENSION", 1200),       // Max width/height
		ImageQuality:      getInt("IMAGE_QUALITY", 80),               // Re-encode quality

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),                 // S3 endpoint
		S3Region:          getEnv("S3_REGION", "us-east-1"),         // S3 region
		S3Bucket:          os.Getenv("S3_BUCKET"),                   // S3 bucket
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),            // S3 access key
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),        // S3 secret key
		S3UsePathStyle:    os.Getenv("S3_USE_PATH_STYLE") == "true", // Path-style addressing
		S3PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),          // Public object URL base

		AlertPolicy:   getEnv("ALERT_POLICY", "feeding-cleaning"),  // Alert categories
		CareThreshold: getDuration("CARE_THRESHOLD", 72*time.Hour), // Overdue threshold
	}
}

// getEnv returns the variable or a fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt parses an integer variable, falling back on absence or parse errors
func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// getDuration parses a Go duration string such as "72h"
func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// getList splits a comma separated variable, dropping blanks
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package api

import (
	"net/http" // HTTP status codes

	"gecko_rack/internal/config"     // Application configuration
	"gecko_rack/internal/middleware" // Auth, CORS and rate limiting
	"gecko_rack/internal/service"    // Domain services

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Services bundles everything the router serves
type Services struct {
	Config *config.Config
	DB     *gorm.DB      // Pinged by /health
	Redis  *redis.Client // Optional, enables rate limiting
	Auth   *service.AuthService
	Racks  *service.RackService
	Geckos *service.GeckoService
	Logs   *service.CareLogService
	Photos *service.PhotoService
	Alerts *service.AlertService
}

// NewRouter wires every route onto a gin engine
func NewRouter(s Services) *gin.Engine {
	cfg := s.Config
	r := gin.Default() // Gin router instance with logger and recovery
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.GET("/health", HealthHandler(s.DB))
	// Serve locally stored photos
	if cfg.StorageDriver == "" || cfg.StorageDriver == "local" {
		r.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	}

	apiGroup := r.Group("/api")

	// Auth routes, rate limited per client IP
	authGroup := apiGroup.Group("/auth")
	limitAuth := middleware.RateLimiter(s.Redis, "auth", cfg.RateLimitRequests, cfg.RateLimitWindow)
	authGroup.POST("/register", limitAuth, RegisterHandler(s.Auth)) // Registration endpoint
	authGroup.POST("/login", limitAuth, LoginHandler(s.Auth))       // Login endpoint

	// Everything else requires a valid token of an existing user
	protected := apiGroup.Group("")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.ActiveUserMiddleware(s.Auth))
	protected.GET("/auth/me", MeHandler(s.Auth))

	protected.GET("/racks", ListRacksHandler(s.Racks))
	protected.POST("/racks", CreateRackHandler(s.Racks))
	protected.GET("/racks/:id", GetRackHandler(s.Racks))
	protected.GET("/racks/:id/grid", RackGridHandler(s.Racks))
	protected.PUT("/racks/:id", UpdateRackHandler(s.Racks))
	protected.DELETE("/racks/:id", DeleteRackHandler(s.Racks))

	protected.GET("/geckos", ListGeckosHandler(s.Geckos))
	protected.POST("/geckos", CreateGeckoHandler(s.Geckos))
	protected.POST("/geckos/swap", SwapGeckosHandler(s.Geckos))
	protected.GET("/geckos/:id", GetGeckoHandler(s.Geckos))
	protected.PUT("/geckos/:id", UpdateGeckoHandler(s.Geckos))
	protected.PATCH("/geckos/:id/move", MoveGeckoHandler(s.Geckos))
	protected.DELETE("/geckos/:id", DeleteGeckoHandler(s.Geckos))

	protected.GET("/geckos/:id/photos", ListPhotosHandler(s.Photos))
	limitUpload := middleware.RateLimiter(s.Redis, "upload", cfg.RateLimitRequests, cfg.RateLimitWindow)
	protected.POST("/geckos/:id/photos", limitUpload, UploadPhotoHandler(s.Photos, cfg.UploadMaxBytes))
	protected.PATCH("/photos/:id/main", SetMainPhotoHandler(s.Photos))
	protected.DELETE("/photos/:id", DeletePhotoHandler(s.Photos))

	protected.GET("/geckos/:id/logs", ListCareLogsHandler(s.Logs))
	protected.POST("/geckos/:id/logs", CreateCareLogHandler(s.Logs))
	protected.GET("/geckos/:id/weights", WeightHistoryHandler(s.Logs))
	protected.DELETE("/logs/:id", DeleteCareLogHandler(s.Logs))

	protected.GET("/alerts", ListAlertsHandler(s.Alerts))
	return r
}

// HealthHandler reports whether the database answers
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

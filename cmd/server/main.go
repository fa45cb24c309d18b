package main

import (
	"context"   // Context for Redis operations and shutdown
	"errors"    // Error matching
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Server timeouts

	"gecko_rack/internal/api"     // Custom package for API handlers
	"gecko_rack/internal/config"  // Custom package for configuration
	"gecko_rack/internal/db"      // Custom package for the database
	"gecko_rack/internal/domain"  // Alert policies
	"gecko_rack/internal/service" // Domain services
	"gecko_rack/internal/storage" // Image storage

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine readable logs in production
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client; the server runs without cache and rate limiting when absent
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, profile cache and rate limiting disabled")
	}

	// Setup image storage
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		logrus.Fatalf("failed to set up image storage: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	policy := domain.NewAlertPolicy(cfg.AlertPolicy, cfg.CareThreshold)
	router := api.NewRouter(api.Services{
		Config: cfg,
		DB:     conn,
		Redis:  redisClient,
		Auth:   service.NewAuthService(conn, redisClient, cfg.JWTSecret, cfg.JWTTTL),
		Racks:  service.NewRackService(conn, store, nil, cfg.CareThreshold),
		Geckos: service.NewGeckoService(conn, store, nil, cfg.CareThreshold),
		Logs:   service.NewCareLogService(conn, nil),
		Photos: service.NewPhotoService(conn, store, nil),
		Alerts: service.NewAlertService(conn, policy, nil),
	})

	// Set trusted proxies for Gin
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  60 * time.Second, // Room for photo uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":         cfg.AppPort,
			"db_driver":    cfg.DBDriver,
			"storage":      cfg.StorageDriver,
			"alert_policy": policy.Name,
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("server forced to shutdown: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
	logrus.Info("Server exited")
}

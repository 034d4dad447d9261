package main

import (
	"context"   // Redis ping and shutdown deadline
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Log output and signals
	"os/signal" // Graceful shutdown
	"syscall"   // Signal numbers
	"time"      // Shutdown timeout

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging

	"bookkeeping/internal/api"     // HTTP handlers and router
	"bookkeeping/internal/auth"    // Credential store
	"bookkeeping/internal/cache"   // Redis read cache
	"bookkeeping/internal/config"  // Configuration
	"bookkeeping/internal/db"      // Database wiring
	"bookkeeping/internal/logger"  // Logger construction
	"bookkeeping/internal/service" // Users, accounts and orders
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logger.New(os.Stdout, cfg.IsProd, cfg.LogLevel) // Setup logger

	conn, err := db.Open(cfg.DB, log) // Connect to the configured database
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	if cfg.DB.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("failed to migrate DB: %v", err)
		}
	}

	// Redis is optional; without REDIS_ADDR every read goes to the database
	var rc *cache.Cache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,     // Redis server address
			Password: cfg.Redis.Password, // Redis password
			DB:       cfg.Redis.DB,       // Redis database number
		})
		// Test Redis connection
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		rc = cache.New(redisClient, cfg.Redis.TTL)
	}

	creds, err := auth.NewCredentials(cfg.Token)
	if err != nil {
		log.Fatalf("invalid token settings: %v", err)
	}
	if cfg.Super.Username == "" {
		log.Warn("SUPERUSER_USERNAME is empty, superuser login is disabled")
	}

	deps := service.Deps{DB: conn, Cache: rc, Log: log}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(api.RouterArgs{
		Logger:            log,
		HTTP:              cfg.HTTP,
		SuperuserUsername: cfg.Super.Username,
		Creds:             creds,
		Users:             service.NewUserService(deps, creds, cfg.Super),
		Accounts:          service.NewAccountService(deps),
		Orders:            service.NewOrderService(deps),
	})
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", server.Addr).Info("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"chat-relay-api/internal/api"
	"chat-relay-api/internal/api/handlers"
	"chat-relay-api/internal/config"
	"chat-relay-api/internal/database"
	"chat-relay-api/internal/middleware"
	"chat-relay-api/internal/repository"
	"chat-relay-api/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	rateCfg := config.NewRateLimitConfig()
	relayCfg := config.NewRelayConfig()

	if relayCfg.APIKey == "" {
		log.Println("Warning: DEEPSEEK_API_KEY is not set; chat requests will fail until it is configured")
	}

	// Initialize services
	rateLimiter := services.NewRateLimitService(rateCfg.DailyLimit)
	completionService := services.NewCompletionService(relayCfg)

	// Optional completion response cache
	var cache services.CacheService
	if cacheCfg := config.NewCacheConfig(); cacheCfg != nil {
		redisCache, err := services.NewRedisCacheService(cacheCfg)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		cache = redisCache
		log.Println("Completion response cache enabled")
	}

	// Optional chat audit log
	var requestLogger *middleware.RequestLogger
	if os.Getenv("DATABASE_URL") != "" {
		db, err := database.InitDB()
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("Failed to get underlying *sql.DB instance:", err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)

		chatLogRepo := repository.NewChatLogRepository(db)
		chatLogService := services.NewChatLogService(chatLogRepo)
		requestLogger = middleware.NewRequestLogger(chatLogService, relayCfg.Model)
		log.Println("Chat audit log enabled")
	}

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(completionService, rateLimiter, cache, rateCfg, relayCfg)

	// Initialize router
	router := api.SetupRoutes(chatHandler, requestLogger)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"}, // In production specify the exact frontend origin
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
		},
		MaxAge: 300,
	})

	// Hourly sweep reclaims expired usage records
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@hourly", rateLimiter.Sweep); err != nil {
		log.Fatal("Failed to schedule quota sweep:", err)
	}
	sweeper.Start()

	// Create server with timeouts; the write timeout must cover the
	// bounded upstream completion call
	srv := &http.Server{
		Handler:      corsMiddleware.Handler(router),
		Addr:         ":" + getPort(),
		WriteTimeout: relayCfg.Timeout + 15*time.Second,
		ReadTimeout:  15 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("Server starting on port %s...", getPort())
		log.Printf("Health check: http://localhost:%s/health", getPort())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	<-sweeper.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown:", err)
	}
}

func getPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return port
}

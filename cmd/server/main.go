package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/fittrack-server/internal/api"
	"github.com/rongwang/fittrack-server/internal/config"
	"github.com/rongwang/fittrack-server/internal/repository"
	"github.com/rongwang/fittrack-server/internal/service"
	"github.com/rongwang/fittrack-server/internal/utils"
	"golang.org/x/time/rate"
)

func main() {
	logger := utils.NewLogger()

	// Load configuration
	cfg := config.LoadConfig()

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up database")
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret, tokenTTL)

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	router := gin.Default()

	router.Use(api.RequestIDMiddleware())
	router.Use(api.RateLimitMiddleware(rate.NewLimiter(rate.Limit(100), 200)))

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", serverAddr).Msg("starting server")
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vizlab/dataviz-api/internal/auth"
	"github.com/vizlab/dataviz-api/internal/cache"
	"github.com/vizlab/dataviz-api/internal/config"
	"github.com/vizlab/dataviz-api/internal/database"
	"github.com/vizlab/dataviz-api/internal/handlers"
	"github.com/vizlab/dataviz-api/internal/middleware"
	"github.com/vizlab/dataviz-api/internal/repository"
	"github.com/vizlab/dataviz-api/internal/services"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database and run migrations
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Pick the cache backend
	var store cache.Store
	if cfg.CacheType == "redis" {
		redisStore, err := cache.NewRedisStore(cfg.RedisHost+":"+cfg.RedisPort, cfg.RedisDB)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = redisStore
	} else {
		store = cache.NewMemoryStore()
	}
	coordinator := cache.NewCoordinator(store, logger)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	dsRepo := repository.NewDataSourceRepository(db)
	vizRepo := repository.NewVisualizationRepository(db)
	dashRepo := repository.NewDashboardRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, tokens)
	dsService := services.NewDataSourceService(dsRepo)
	queryService := services.NewQueryService(dsRepo, coordinator, nil, cfg.QueryTimeout, logger)
	vizService := services.NewVisualizationService(vizRepo, queryService)
	dashService := services.NewDashboardService(dashRepo, vizRepo)

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())

	handlers.RegisterRoutes(r, handlers.RouterDeps{
		Tokens:         tokens,
		RateLimit:      middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Auth:           handlers.NewAuthHandler(authService),
		DataSources:    handlers.NewDataSourceHandler(dsService, queryService, coordinator),
		Visualizations: handlers.NewVisualizationHandler(vizService, coordinator),
		Dashboards:     handlers.NewDashboardHandler(dashService, coordinator),
	})

	// Start server
	logger.Info().Msg("server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

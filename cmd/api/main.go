package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"budgetplan/internal/config"
	"budgetplan/internal/database"
	"budgetplan/internal/logger"
	"budgetplan/internal/router"
	"budgetplan/internal/services"
	"budgetplan/internal/validator"
)

// @title           Budget Plan API
// @version         1.0
// @description     Annual barangay budget plans: ceilings, allocation checks, transfers between line items and an append-only change history.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	locker, closeLocker, err := newPlanLocker(appConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Warnf("failed to close lock backend: %v", err)
		}
	}()

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	historyService := services.NewHistoryService(db)
	blockOverLimit := appConfig.BlockOverLimit()

	engine := router.New(router.Services{
		Staff:     services.NewStaffService(db),
		Plans:     services.NewBudgetPlanService(db, locker, historyService, blockOverLimit),
		Transfers: services.NewTransferService(db, locker, historyService, blockOverLimit),
		History:   historyService,
		Audit:     services.NewAuditService(db),
	}, router.Options{
		IntegrationAPIKey: appConfig.IntegrationAPIKey,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	log.Infow("plan writers configured",
		"lock_backend", appConfig.LockBackend,
		"over_limit_policy", appConfig.OverLimitPolicy,
	)
	log.Infof("Starting budget plan server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return engine.Run(":" + appConfig.Port)
}

// newPlanLocker picks the lock backend. Redis is needed once more than one
// API instance writes to the same database. The returned close function
// releases the backend's connections.
func newPlanLocker(cfg *config.Config) (services.PlanLocker, func() error, error) {
	if cfg.LockBackend != config.LockBackendRedis {
		return services.NewMemoryPlanLocker(), func() error { return nil }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := services.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return services.NewRedisPlanLocker(client, cfg.LockTTL), client.Close, nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"adsight/internal/delivery"
	"adsight/internal/domain"
	"adsight/internal/infrastructure"
	"adsight/internal/usecase"
	"adsight/pkg/config"
	"adsight/pkg/logger"
	"adsight/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("Starting adsight server")

	m := metrics.New()

	accountRepo := infrastructure.NewAccountRepository(log)
	if cfg.Upstream.AccountID != "" {
		if err := accountRepo.Upsert(context.Background(), domain.AdAccount{
			ID:          cfg.Upstream.AccountID,
			Name:        cfg.Upstream.AccountName,
			AccessToken: cfg.Upstream.AccessToken,
			Active:      true,
		}); err != nil {
			log.WithError(err).Error("Failed to seed configured account")
			os.Exit(1)
		}
	}

	insightsClient := infrastructure.NewInsightsClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.APIVersion,
		cfg.Upstream.PageLimit,
		cfg.Upstream.RequestTimeout,
		cfg.Upstream.RateLimitPerSecond,
		log,
		m,
	)

	generator := usecase.NewFallbackGenerator(cfg.Simulation.MinImpressions, cfg.Simulation.MaxImpressions, nil)

	performanceService := usecase.NewPerformanceService(insightsClient, accountRepo, generator, log, m)
	dashboardService := usecase.NewDashboardService(performanceService, log, m)

	handlers := delivery.NewHTTPHandlers(performanceService, dashboardService, accountRepo, cfg.Pipeline, log, m)
	router := delivery.NewHTTPRouter(handlers, log, m)

	engine := router.SetupRoutes()

	log.WithField("port", cfg.Server.Port).Info("Server listening")
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Error("Server stopped")
		os.Exit(1)
	}
}

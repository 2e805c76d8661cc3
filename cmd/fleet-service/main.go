package main

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"fleet-service/internal/auth"
	"fleet-service/internal/config"
	"fleet-service/internal/db"
	httphandler "fleet-service/internal/http"
	"fleet-service/internal/http/middleware"
	"fleet-service/internal/logger"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	store := repository.NewStore(database)

	vehicleService := service.NewVehicleService(store, log)
	routeService := service.NewRouteService(store, log)

	// Repair any vehicle/route status drift left behind by a crash or
	// manual data edit before serving traffic.
	corrected, err := vehicleService.Reconcile(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("startup reconcile failed")
	}
	if corrected > 0 {
		log.Warn().Int("corrected", corrected).Msg("vehicle statuses reconciled at startup")
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(vehicleService, routeService, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), healthFunc(database), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting fleet service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func healthFunc(database *gorm.DB) httphandler.HealthFunc {
	return func(ctx context.Context) error {
		return db.HealthCheck(ctx, database)
	}
}

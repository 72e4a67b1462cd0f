package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pharmacy-order-api/internal/client"
	"pharmacy-order-api/internal/config"
	"pharmacy-order-api/internal/repository"
	"pharmacy-order-api/internal/seed"
	"pharmacy-order-api/internal/server"
	"pharmacy-order-api/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := client.InitSqliteClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	if cfg.SeedOnBoot {
		if err := seed.Run(db); err != nil {
			logger.Fatal("seed database", zap.Error(err))
		}
	}

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	windowRepo := repository.NewWindowRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	pricing := service.NewPricingEngine(productRepo, cfg.Shipping)
	catalogService := service.NewCatalogService(productRepo)
	orderService := service.NewOrderService(db, logger, pricing, productRepo, orderRepo, windowRepo, paymentRepo)
	paymentService := service.NewPaymentService(db, logger, cfg.Payment, orderRepo, paymentRepo)

	srv := server.NewServer(logger, catalogService, orderService, paymentService)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

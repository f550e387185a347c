// Package main is the entry point for the gelateria API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gelateria/internal/config"
	"gelateria/internal/core/appctx"
	"gelateria/internal/core/id"
	"gelateria/internal/domain/auth"
	"gelateria/internal/domain/client"
	"gelateria/internal/domain/consumption"
	"gelateria/internal/domain/material"
	"gelateria/internal/domain/product"
	"gelateria/internal/domain/purchase"
	"gelateria/internal/domain/reports"
	"gelateria/internal/domain/sale"
	v1 "gelateria/internal/infrastructure/http/v1"
	"gelateria/internal/infrastructure/storage/postgres"
	"gelateria/pkg/logger"
	"gelateria/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	log.Infow("starting gelateria server", "env", cfg.App.Env, "port", cfg.App.Port)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		poolCfg.MinConns = cfg.Database.MinConns
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	userRepo := postgres.NewUserRepo(txManager)
	productRepo := postgres.NewProductRepo(txManager)
	materialRepo := postgres.NewMaterialRepo(txManager)
	clientRepo := postgres.NewClientRepo(txManager)
	saleRepo := postgres.NewSaleRepo(txManager)
	purchaseRepo := postgres.NewPurchaseRepo(txManager)
	consumptionRepo := postgres.NewConsumptionRepo(txManager)

	// --- Services ---
	jwtCfg := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	if cfg.Auth.AccessTokenTTL > 0 {
		jwtCfg.AccessTokenTTL = cfg.Auth.AccessTokenTTL
	}
	jwtService := auth.NewJWTService(jwtCfg)

	mail := mailer.New(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		BaseURL:  cfg.App.BaseURL,
	})

	authService := auth.NewService(userRepo, txManager, jwtService, mail, auth.DefaultServiceConfig())
	productService := product.NewService(productRepo, txManager)
	materialService := material.NewService(materialRepo, txManager)
	clientService := client.NewService(clientRepo, txManager)
	saleService := sale.NewService(saleRepo, productRepo, materialRepo, txManager)
	purchaseService := purchase.NewService(purchaseRepo, materialRepo, txManager)
	consumptionService := consumption.NewService(consumptionRepo, materialRepo, txManager)
	reportsService := reports.NewService(saleRepo, materialRepo)

	// A material created with opening stock gets a bootstrap ledger entry,
	// in the same transaction as the creation itself.
	materialService.Hooks().OnAfterCreate(func(ctx context.Context, m *material.Material) error {
		if !m.QuantityInStock.IsPositive() {
			return nil
		}
		uid, err := id.Parse(appctx.GetUserID(ctx))
		if err != nil {
			return fmt.Errorf("parse current user id: %w", err)
		}
		_, err = purchaseService.CreateInitial(ctx, m, uid)
		return err
	})

	// --- HTTP ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		Pool:         pool,
		JWTValidator: jwtService,

		AuthService:        authService,
		ProductService:     productService,
		MaterialService:    materialService,
		ClientService:      clientService,
		SaleService:        saleService,
		PurchaseService:    purchaseService,
		ConsumptionService: consumptionService,
		ReportsService:     reportsService,

		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				postgres.LogPoolStats(statsCtx, pool.Pool)
			}
		}
	}()

	go func() {
		log.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}

	log.Info("server stopped")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billcraft/internal/config"
	"billcraft/internal/domain/auth"
	"billcraft/internal/domain/documents/invoice"
	"billcraft/internal/domain/documents/quotation"
	v1 "billcraft/internal/infrastructure/http/v1"
	"billcraft/internal/infrastructure/http/v1/middleware"
	"billcraft/internal/infrastructure/pdf"
	"billcraft/internal/infrastructure/storage/migrations"
	"billcraft/internal/infrastructure/storage/postgres"
	"billcraft/internal/infrastructure/storage/postgres/catalog_repo"
	"billcraft/internal/infrastructure/storage/postgres/document_repo"
	"billcraft/pkg/logger"
	"billcraft/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatalw("failed to load configuration", "error", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		logger.Default().Fatalw("failed to initialize logger", "error", err)
	}
	defer log.Sync() //nolint:errcheck

	log.Infow("starting billcraft server",
		"env", cfg.AppEnv,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Database
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if cfg.RunMigrate {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			log.Fatalw("failed to run migrations", "error", err)
		}
		log.Info("database schema is up to date")
	}

	txManager := postgres.NewTxManager(pool)

	// Document numbering shares the caller's transaction via the tx manager
	numGen := numerator.New(postgres.NewSequenceQuerier(txManager))

	// Repositories
	quotationRepo := document_repo.NewQuotationRepo(txManager)
	invoiceRepo := document_repo.NewInvoiceRepo(txManager)
	clientRepo := catalog_repo.NewClientRepo(txManager)

	// Services
	quotationService := quotation.NewService(quotationRepo, clientRepo, numGen, txManager)
	invoiceService := invoice.NewService(invoiceRepo, clientRepo, numGen, txManager)

	// Auth is optional: without a secret the API is open (dev mode)
	var tokenValidator middleware.TokenValidator
	if cfg.JWTSecret != "" {
		tokenValidator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	} else {
		log.Warn("JWT_SECRET is not set, authentication is disabled")
	}

	renderer := pdf.NewRenderer(pdf.Config{
		IssuerName:     cfg.IssuerName,
		IssuerAddress:  cfg.IssuerAddress,
		IssuerEmail:    cfg.IssuerEmail,
		IssuerPhone:    cfg.IssuerPhone,
		CurrencySymbol: cfg.CurrencySymbol,
		FooterText:     cfg.PDFFooter,
	})

	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		TokenValidator: tokenValidator,
		Quotations:     quotationService,
		Invoices:       invoiceService,
		Renderer:       renderer,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}

	log.Info("server stopped")
}

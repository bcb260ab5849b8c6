package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	attachmentapp "github.com/rst/farmcontrol/internal/application/attachment"
	costapp "github.com/rst/farmcontrol/internal/application/cost"
	partnerapp "github.com/rst/farmcontrol/internal/application/partner"
	reportapp "github.com/rst/farmcontrol/internal/application/report"
	salesapp "github.com/rst/farmcontrol/internal/application/sales"
	"github.com/rst/farmcontrol/internal/infrastructure/auth"
	"github.com/rst/farmcontrol/internal/infrastructure/cache"
	"github.com/rst/farmcontrol/internal/infrastructure/config"
	"github.com/rst/farmcontrol/internal/infrastructure/event"
	"github.com/rst/farmcontrol/internal/infrastructure/lock"
	"github.com/rst/farmcontrol/internal/infrastructure/logger"
	"github.com/rst/farmcontrol/internal/infrastructure/persistence"
	"github.com/rst/farmcontrol/internal/infrastructure/storage"
	"github.com/rst/farmcontrol/internal/infrastructure/telemetry"
	"github.com/rst/farmcontrol/internal/interfaces/http/handler"
	"github.com/rst/farmcontrol/internal/interfaces/http/middleware"
	"github.com/rst/farmcontrol/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if tel.Logs.IsEnabled() {
		// Re-create the logger so every entry is also exported over OTLP
		if log, err = logger.New(logCfg, logger.WithCore(tel.Logs.Core(logger.ParseLevel(cfg.Log.Level)))); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting RST farm control",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if err := run(ctx, cfg, tel, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, tel *telemetry.Telemetry, log *zap.Logger) error {
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver() != config.DriverPostgres {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, db.Driver(), cfg.Telemetry.DBSlowQueryThresh, log); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	cacheBackend := cache.NewBackend(ctx, cfg.Redis, log)
	defer func() { _ = cacheBackend.Close() }()
	locker := lock.New(cacheBackend.Client, log)
	keys := cache.Keys{Prefix: cfg.Cache.KeyPrefix}

	objects, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() { _ = objects.Close() }()

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditLogHandler(log))
	bus.Subscribe(event.NewMetricsHandler(tel.Metrics))
	if cfg.Events.PubSubEnabled {
		forwarder, err := event.NewPubSubForwarder(ctx, cfg.Events, log)
		if err != nil {
			return err
		}
		defer func() { _ = forwarder.Close() }()
		bus.Subscribe(forwarder)
	}

	entryRepo := persistence.NewGormCostEntryRepository(db.DB)

	costService := costapp.NewCostService(entryRepo, cacheBackend.Cache)
	costService.SetEventPublisher(bus)
	costService.SetCacheKeys(keys)
	costService.SetCacheTTL(cfg.Cache.CostsTTL)

	supplierService := partnerapp.NewSupplierService(persistence.NewGormSupplierRepository(db.DB), entryRepo, locker, cacheBackend.Cache)
	supplierService.SetEventPublisher(bus)
	supplierService.SetCacheKeys(keys)
	supplierService.SetCacheTTL(cfg.Cache.SuppliersTTL)

	saleService := salesapp.NewSaleService(persistence.NewGormSaleRepository(db.DB), locker, cacheBackend.Cache)
	saleService.SetEventPublisher(bus)
	saleService.SetCacheKeys(keys)
	saleService.SetCacheTTL(cfg.Cache.SalesTTL)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion)
	systemHandler.AddCheck("database", db.Ping)
	if cacheBackend.Client != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return cacheBackend.Client.Ping(ctx).Err()
		})
	}

	var verifier middleware.TokenVerifier
	if cfg.JWT.Enabled {
		verifier = auth.NewVerifier(cfg.JWT)
	} else {
		log.Warn("Authentication disabled; requests are served for the X-Tenant-ID header or the default farm")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:           log,
		HTTP:             cfg.HTTP,
		Production:       cfg.IsProduction(),
		Verifier:         verifier,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		Meter:            tel.Meter.Meter("http.server"),
		ProfilingEnabled: tel.Profiler.IsEnabled(),
		Handlers: router.Handlers{
			System:     systemHandler,
			Cost:       handler.NewCostHandler(costService),
			Supplier:   handler.NewSupplierHandler(supplierService),
			Sale:       handler.NewSaleHandler(saleService),
			Report:     handler.NewReportHandler(reportapp.NewDashboardService(costService, saleService)),
			Attachment: handler.NewAttachmentHandler(attachmentapp.NewInvoiceUploader(objects, cfg.Storage.PlaceholderBaseURL)),
		},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited")
	return nil
}

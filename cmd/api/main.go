package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/infrastructure/audit"
	"github.com/jhoicas/ledger-api/internal/infrastructure/cache"
	"github.com/jhoicas/ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ledger-api/internal/interfaces/http"
	"github.com/jhoicas/ledger-api/pkg/config"
	"github.com/jhoicas/ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	itemRepo := postgres.NewItemRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)
	snapRepo := postgres.NewSnapshotRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	stockCache := cache.New(cache.Config{
		TTL:        cfg.Ledger.CacheTTL,
		MaxEntries: cfg.Ledger.CacheMaxEntries,
		Registerer: registry,
	})

	// Sinks de auditoría: logs y métricas siempre; webhook opcional con breaker.
	sinks := audit.Fanout{audit.NewZerologSink(log), audit.NewMetricsSink(registry)}
	if cfg.Audit.WebhookURL != "" {
		sinks = append(sinks, audit.NewWebhookSink(cfg.Audit.WebhookURL))
	}

	engine := ledger.NewEngine(txRunner, itemRepo, stockCache, sinks, log, ledger.EngineConfig{
		MaxRetries: cfg.Ledger.TxRetries,
	})
	reader := ledger.NewReader(movRepo, snapRepo, itemRepo, stockCache)
	bulk := ledger.NewBulkAdjuster(engine, sinks, log, ledger.BulkConfig{
		MaxBatchSize:   cfg.Ledger.MaxBatchSize,
		PerItemTimeout: cfg.Ledger.ItemTimeout,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:    engine,
		Reader:    reader,
		Bulk:      bulk,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

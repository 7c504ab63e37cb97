package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jhoicas/dairy-ledger/docs"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/jhoicas/dairy-ledger/internal/application/usecase"
	"github.com/jhoicas/dairy-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/dairy-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/dairy-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/dairy-ledger/internal/interfaces/http"
	"github.com/jhoicas/dairy-ledger/pkg/config"
	"github.com/jhoicas/dairy-ledger/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title                       Dairy Ledger API
// @version                     1.0
// @description                 API del libro de inventario de alimento: insumos, compras, consumos, saldos y reposición.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Token JWT con el prefijo Bearer
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("allow_negative", cfg.Ledger.AllowNegative).
		Int("usage_window_days", cfg.Ledger.UsageWindowDays).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("crear esquema del libro")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := metrics.NewLedger(reg)
	httpMetrics := metrics.NewHTTP(reg)

	itemRepo := postgres.NewStockItemRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	deps := inventory.LedgerDeps{
		TxRunner:    txRunner,
		ItemRepo:    itemRepo,
		BalanceRepo: postgres.NewBalanceRepository(pool),
		MovRepo:     postgres.NewMovementRepository(pool),
		Policy: inventory.Policy{
			AllowNegative:   cfg.Ledger.AllowNegative,
			UsageWindowDays: cfg.Ledger.UsageWindowDays,
		},
		Metrics: ledgerMetrics,
		Log:     log,
	}

	// Alertas de stock bajo: solo si hay brokers configurados.
	if cfg.Kafka.Enabled() {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.AlertTopic, log)
		if err != nil {
			log.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("conexión a Kafka")
		}
		defer publisher.Close()
		deps.Alerts = publisher
	} else {
		log.Warn().Msg("KAFKA_BROKERS vacío: alertas de stock bajo desactivadas")
	}

	ledger := inventory.NewLedger(deps)
	purchaseUC := inventory.NewPurchaseUseCase(txRunner, ledger, postgres.NewPurchaseRepository(pool))
	usageUC := inventory.NewUsageUseCase(txRunner, ledger, postgres.NewUsageRepository(pool))
	replenishmentUC := inventory.NewReplenishmentUseCase(ledger)
	stockItemUC := usecase.NewStockItemUseCase(itemRepo, ledger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpMetrics.Middleware())

	// Swagger UI: http://localhost:<port>/docs (regenerar con swag init -g cmd/api/main.go)
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Dairy Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:        ledger,
		Purchases:     purchaseUC,
		Usage:         usageUC,
		Replenishment: replenishmentUC,
		StockItemUC:   stockItemUC,
		JWTSecret:     cfg.JWT.Secret,
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

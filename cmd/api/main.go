package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/almacen-escolar/internal/application/catalog"
	"github.com/tu-usuario/almacen-escolar/internal/application/inventory"
	"github.com/tu-usuario/almacen-escolar/internal/application/loans"
	"github.com/tu-usuario/almacen-escolar/internal/application/ports"
	"github.com/tu-usuario/almacen-escolar/internal/application/reports"
	"github.com/tu-usuario/almacen-escolar/internal/infrastructure/enrollment"
	"github.com/tu-usuario/almacen-escolar/internal/infrastructure/notify"
	"github.com/tu-usuario/almacen-escolar/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/almacen-escolar/internal/interfaces/http"
	"github.com/tu-usuario/almacen-escolar/pkg/config"
	"github.com/tu-usuario/almacen-escolar/pkg/logger"
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
		Bool("loan_affects_stock", cfg.Inventory.LoanAffectsStock).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Notificador de cambios: Redis si está configurado, si no descarta.
	var notifier ports.Notifier = notify.NewNopNotifier()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		notifier = notify.NewRedisNotifier(rdb, cfg.Redis.Channel)
		defer rdb.Close()
	}

	enrollmentProvider := enrollment.NewHTTPProvider(
		cfg.Enrollment.BaseURL,
		time.Duration(cfg.Enrollment.TimeoutSeconds)*time.Second,
	)

	itemUC := catalog.NewItemUseCase(itemRepo, movRepo, loanRepo, notifier)
	stockUC := inventory.NewStockUseCase(txRunner, itemRepo, movRepo, stockRepo, notifier)
	loanUC := loans.NewLoanUseCase(txRunner, itemRepo, loanRepo, notifier, cfg.Inventory.LoanAffectsStock)
	reportUC := reports.NewDemandUseCase(itemRepo, stockRepo, enrollmentProvider)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.With().Str("component", "http").Logger()))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:   itemUC,
		StockUC:  stockUC,
		LoanUC:   loanUC,
		ReportUC: reportUC,
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

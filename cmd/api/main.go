package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/jfarias/trazabilidad-api/internal/application/indexer"
	"github.com/jfarias/trazabilidad-api/internal/application/trace"
	"github.com/jfarias/trazabilidad-api/internal/infrastructure/badgercache"
	"github.com/jfarias/trazabilidad-api/internal/infrastructure/erpclient"
	httpRouter "github.com/jfarias/trazabilidad-api/internal/interfaces/http"
	"github.com/jfarias/trazabilidad-api/pkg/config"
	"github.com/jfarias/trazabilidad-api/pkg/logger"
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

	erp := erpclient.New(cfg.ERP, log)

	store, err := badgercache.New(badgercache.Config{
		Path:     cfg.Cache.Path,
		InMemory: cfg.Cache.InMemory,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir cache de índice")
	}

	index := indexer.New(erp, store, log, cfg.Trace)
	defer func() {
		if err := index.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar cache de índice")
		}
	}()

	// Carga desde la cache en disco; si no hay snapshot utilizable el índice
	// queda vacío hasta el primer rebuild.
	ctx := context.Background()
	if err := index.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("índice no cargado desde cache")
	}
	if !index.Loaded() {
		go func() {
			if err := index.Rebuild(context.Background()); err != nil {
				log.Error().Err(err).Msg("reconstrucción inicial del índice")
			}
		}()
	}

	// Refresco incremental periódico
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Cache.RefreshCron, func() {
		index.RefreshIncremental(context.Background())
	}); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Cache.RefreshCron).Msg("programar refresco")
	}
	scheduler.Start()
	defer scheduler.Stop()

	resolver := trace.NewResolver(erp, log, cfg.Trace)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Resolver: resolver,
		Index:    index,
		Log:      log,
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

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

	"github.com/jhoicas/Inventario-dashboard/internal/application/dashboard"
	"github.com/jhoicas/Inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/Inventario-dashboard/internal/application/session"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/repository"
	"github.com/jhoicas/Inventario-dashboard/internal/infrastructure/backend"
	"github.com/jhoicas/Inventario-dashboard/internal/infrastructure/memstore"
	"github.com/jhoicas/Inventario-dashboard/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-dashboard/internal/infrastructure/push"
	"github.com/jhoicas/Inventario-dashboard/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/Inventario-dashboard/internal/interfaces/http"
	"github.com/jhoicas/Inventario-dashboard/pkg/config"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("stats_source", cfg.Stats.Source).
		Str("push_driver", cfg.Push.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Un solo cliente Redis para sesión y canal push.
	var rdb *redis.Client
	if cfg.Session.Storage == config.SessionStorageRedis || cfg.Push.Driver == config.PushDriverRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Push.RedisAddr,
			Password: cfg.Push.RedisPassword,
			DB:       cfg.Push.RedisDB,
		})
		defer rdb.Close()
	}

	var storage repository.SessionStorage = memstore.New()
	if cfg.Session.Storage == config.SessionStorageRedis {
		storage = redisstore.New(rdb, cfg.Session.KeyPrefix, cfg.Session.TTL)
	}

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	appCtx := session.NewAppContext(storage, backendClient, session.JWTConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}, log)
	if err := appCtx.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("no se pudo restaurar la sesión")
	}
	backendClient.UseTokens(appCtx)

	var stats repository.StatsRepository = backendClient
	if cfg.Stats.Source == config.StatsSourcePostgres {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.EnsureSchema {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("crear esquema de escaneos")
			}
		}
		stats = postgres.NewStatsRepository(pool, cfg.Dashboard.ListCap)
	}

	var pushCh ports.PushChannel
	switch cfg.Push.Driver {
	case config.PushDriverRedis:
		pushCh = push.NewRedisWithClient(rdb, push.RedisOptions{
			ReconnectAttempts: cfg.Push.ReconnectAttempts,
			ReconnectDelay:    cfg.Push.ReconnectDelay,
		}, log)
	case config.PushDriverAMQP:
		pushCh = push.NewAMQP(push.AMQPOptions{
			URL:               cfg.Push.AMQPURL,
			Exchange:          cfg.Push.AMQPExchange,
			ReconnectAttempts: cfg.Push.ReconnectAttempts,
			ReconnectDelay:    cfg.Push.ReconnectDelay,
		}, log)
	default:
		pushCh = push.NewMemory(0, log)
	}

	view := dashboard.NewView(stats, pushCh, dashboard.ViewConfig{
		ListCap:         cfg.Dashboard.ListCap,
		Topic:           cfg.Push.Topic,
		RefreshInterval: cfg.Dashboard.RefreshInterval,
		DedupeWindow:    cfg.Dashboard.DedupeWindow,
	}, log)
	if err := view.Mount(ctx); err != nil {
		log.Fatal().Err(err).Msg("montar dashboard")
	}

	limiter := httpRouter.NewRateLimiter(cfg.RateLimit.RefreshPerSecond, cfg.RateLimit.Burst)
	limiterCtx, stopLimiter := context.WithCancel(ctx)
	go limiter.Cleanup(limiterCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:        cfg.App.Name,
		Dashboard:      view,
		Session:        appCtx,
		RefreshLimiter: limiter,
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
		Log:            log,
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
	view.Teardown()
	stopLimiter()

	log.Info().Msg("aplicación detenida")
}

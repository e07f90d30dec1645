package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/server"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.JWT.Secret == "" {
		zapLogger.Fatal("JWT_SECRET must be set")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	deps := server.Deps{}
	probes := map[string]monitor.Probe{}

	switch cfg.Storage {
	case config.StoragePostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}

		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})

		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.RegisterCloser("redis", redisClient)

		deps.Users = postgres.NewUserRepository(pool)
		deps.Tasks = postgres.NewTaskRepository(pool)
		deps.Sessions = redisRepo.NewSessionRepository(redisClient, cfg.JWT.TokenTTL)
		probes["postgresql"] = monitor.PostgresProbe(pool)
		probes["redis"] = monitor.RedisProbe(redisClient)
	default:
		zapLogger.Warn("using in-memory storage, data is lost on exit")
		deps.Users = memory.NewUserRepository()
		deps.Tasks = memory.NewTaskRepository()
		deps.Sessions = memory.NewSessionRepository(cfg.JWT.TokenTTL)
	}

	mon := monitor.New(probes, cfg.Monitor.Interval, zapLogger.Named("monitor"))
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})
	deps.Health = mon

	handler := server.NewHandler(deps, server.Options{
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
		TokenTTL:       cfg.JWT.TokenTTL,
		APIKey:         cfg.JWT.APIKey,
		RequestTimeout: cfg.Context.RequestTimeout,
	}, zapLogger)

	srv := &fasthttp.Server{
		Handler:            handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxConnsPerIP:      cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return srv.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

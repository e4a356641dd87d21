package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stackhook/engine/internal/api"
	"github.com/stackhook/engine/internal/api/handlers"
	"github.com/stackhook/engine/internal/engine"
	"github.com/stackhook/engine/internal/queue"
	"github.com/stackhook/engine/internal/repository"
	"github.com/stackhook/engine/internal/services"
	"github.com/stackhook/engine/pkg/config"
	"github.com/stackhook/engine/pkg/database"
	"github.com/stackhook/engine/pkg/deployid"
	"github.com/stackhook/engine/pkg/logger"
	"github.com/stackhook/engine/pkg/telemetry"
)

// @title           Stackhook Engine API
// @version         1.0
// @description     Deploys applications, databases and services by uuid or tag and reports queued deployments.

// @contact.name   Stackhook Support

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting stackhook engine api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("database_driver", cfg.DatabaseDriver),
	)

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("failed to set up tracing", zap.Error(err))
	}

	db, err := database.Open(ctx, database.Options{
		Driver:  cfg.DatabaseDriver,
		DSN:     cfg.DatabaseURL,
		Verbose: cfg.AppEnv == "development",
		Logger:  logger.Named("gorm"),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("database connected")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer asynqClient.Close()

	eng, err := engine.Connect(cfg.NATSURL, cfg.ServiceName, cfg.StartTimeout)
	if err != nil {
		log.Fatal("failed to connect to execution engine", zap.Error(err))
	}
	defer eng.Close()

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		if cfg.AppEnv == "production" {
			log.Fatal("JWT_SECRET must be set in production")
		}
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	deploySvc, err := buildDeployService(cfg, db, asynqClient, eng)
	if err != nil {
		log.Fatal("failed to wire deploy service", zap.Error(err))
	}

	router := api.NewRouter(api.Dependencies{
		HMACSecret:    jwtSecret,
		DeployService: deploySvc,
		HealthChecks: map[string]handlers.Check{
			"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		RateLimit: 10,
		RateBurst: 20,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown error", zap.Error(err))
	}
}

func buildDeployService(cfg *config.Config, db *gorm.DB, enq queue.Enqueuer, eng *engine.Client) (services.DeployService, error) {
	ids, err := deployid.New(cfg.DeploymentIDLength)
	if err != nil {
		return nil, err
	}

	resources := repository.NewResourceRepository(db)
	tags := repository.NewTagRepository(db)
	servers := repository.NewServerRepository(db)
	jobs := repository.NewDeploymentQueueRepository(db)

	buildQueue := queue.NewAsynqBuildQueue(jobs, enq, queue.Options{
		Queue:    cfg.AsynqQueue,
		MaxRetry: cfg.AsynqMaxRetry,
	})
	dispatcher, err := services.NewDispatcher(buildQueue, ids, eng.StartActions(), resources)
	if err != nil {
		return nil, err
	}
	return services.NewDeployService(
		services.NewResolver(resources, tags),
		dispatcher,
		services.NewDeploymentQueueView(servers, jobs),
	), nil
}

// The CRS model serving server: trains credit default models and serves
// published scoring services over HTTP.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/crs/internal/application/service"
	"github.com/turtacn/crs/internal/config"
	domainservice "github.com/turtacn/crs/internal/domain/service"
	"github.com/turtacn/crs/internal/infrastructure/audit"
	"github.com/turtacn/crs/internal/infrastructure/crypto"
	"github.com/turtacn/crs/internal/infrastructure/kms"
	"github.com/turtacn/crs/internal/infrastructure/monitoring"
	"github.com/turtacn/crs/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/crs/internal/infrastructure/persistence/redis"
	"github.com/turtacn/crs/internal/interfaces/http/handlers"
	"github.com/turtacn/crs/internal/interfaces/http/middleware"
	"github.com/turtacn/crs/internal/interfaces/http/router"
	"github.com/turtacn/crs/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	ctx := context.Background()

	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(shutdownCtx)
	}()

	db, err := postgres.NewDBConnection(&cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to database", err)
	}

	var redisClient *goredis.Client
	cacheManager := redis.NewNoopCacheManager()
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewRedisClient(&cfg.Redis, appLogger)
		if err != nil {
			appLogger.Fatal(ctx, "failed to connect to redis", err)
		}
		cacheManager = redis.NewCacheManager(redisClient, appLogger)
	}

	auditPublisher := audit.NewNoopPublisher()
	if cfg.Kafka.Enabled {
		auditPublisher = audit.NewKafkaProducer(&cfg.Kafka, appLogger)
	}
	defer func() {
		if err := auditPublisher.Close(); err != nil {
			appLogger.Warn(ctx, "failed to close audit publisher", logger.Error(err))
		}
	}()

	var secrets domainservice.SecretProvider
	if cfg.Vault.Enabled {
		secrets, err = kms.NewVaultProvider(&cfg.Vault, appLogger)
	} else {
		secrets, err = kms.NewStaticProvider(cfg.JWT.Secret)
	}
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize secret provider", err)
	}

	metrics := monitoring.NewMetrics()
	jwtManager := crypto.NewJWTManager(&cfg.JWT, secrets, appLogger)

	serviceRepo := postgres.NewServiceRepository(db, appLogger)
	modelRepo := postgres.NewModelRepository(db, appLogger)

	registrySvc := appservice.NewRegistryAppService(serviceRepo, modelRepo, cacheManager, auditPublisher, metrics, appLogger)
	scoringSvc := appservice.NewScoringAppService(serviceRepo, modelRepo, cacheManager, domainservice.NewScoringAdapter(), auditPublisher, metrics, appLogger)
	trainingSvc := appservice.NewTrainingAppService(modelRepo, auditPublisher, metrics, &cfg.Training, appLogger)
	authSvc := appservice.NewAuthAppService(&cfg.Auth, jwtManager, auditPublisher, appLogger)

	srv := router.NewRouter(
		cfg,
		appLogger,
		handlers.NewHealthHandler(db, redisClient, appLogger),
		handlers.NewAuthHandler(authSvc),
		handlers.NewRegistryHandler(registrySvc, trainingSvc),
		handlers.NewScoringHandler(scoringSvc),
		middleware.RequireJWT(jwtManager, appLogger),
		middleware.Observability(tracing.Tracer(), metrics, appLogger),
	)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Only watch when the config actually came from a file.
	if cfg.FileUsed != "" {
		go func() {
			err := config.WatchLogLevel(runCtx, cfg.FileUsed, appLogger)
			if err != nil && !errors.Is(err, context.Canceled) {
				appLogger.Warn(runCtx, "log level watcher stopped", logger.Error(err))
			}
		}()
	}

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(srv.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		appLogger.Fatal(ctx, "server exited with error", err)
	}
	appLogger.Info(ctx, "server stopped")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/yourorg/qa-platform/internal/cache"
	"github.com/yourorg/qa-platform/internal/config"
	"github.com/yourorg/qa-platform/internal/database"
	"github.com/yourorg/qa-platform/internal/handler"
	"github.com/yourorg/qa-platform/internal/middleware"
	"github.com/yourorg/qa-platform/internal/repository"
	"github.com/yourorg/qa-platform/internal/server"
	"github.com/yourorg/qa-platform/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "qa-tags",
		Short:         "tag catalog service of the question/answer platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: search ./config/config.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "serve the tag http api",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "create the tag store schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(configPath)
			},
		},
	)

	return root
}

// setup loads the configuration and builds the logger
func setup(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return cfg, logger, nil
}

func serve(configPath string) error {
	cfg, logger, err := setup(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tagRepo, closeStore, err := openTagRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer closeStore()

	var opts []service.Option
	if cfg.Cache.Enabled {
		redisClient, err := database.OpenRedis(ctx, cfg.Redis, cfg.Database.ConnectMaxElapsed, logger)
		if err != nil {
			logger.Error("Failed to connect to redis", zap.Error(err))
			return err
		}
		defer redisClient.Close()
		opts = append(opts, service.WithCountCache(cache.NewRedisCache(redisClient, cfg.Cache.PrefixKey), cfg.Cache.TTL))
	}

	tagService := service.NewTagService(tagRepo, logger, opts...)
	tagHandler := handler.NewTagHandler(tagService, logger)

	var routerCfg server.RouterConfig
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		routerCfg = server.RouterConfig{
			MetricsPath: cfg.Metrics.Path,
			Gatherer:    reg,
			Metrics:     middleware.NewHTTPMetrics(reg, cfg.Metrics.Namespace),
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.NewRouter(routerCfg, tagHandler, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if err := server.Run(ctx, srv, cfg.Server.ShutdownTimeout, logger); err != nil {
		logger.Error("Server failed", zap.Error(err))
		return err
	}
	return nil
}

func migrate(configPath string) error {
	cfg, logger, err := setup(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.Database.Postgres, cfg.Database.ConnectMaxElapsed, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return repository.MigratePostgres(ctx, db, logger)
	default:
		client, err := database.OpenMongo(ctx, cfg.Database.Mongo, cfg.Database.ConnectMaxElapsed, logger)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		return repository.MigrateMongo(ctx, client.Database(cfg.Database.Mongo.Database), logger)
	}
}

// openTagRepository connects the configured backend and returns its repository
func openTagRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.TagRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.Database.Postgres, cfg.Database.ConnectMaxElapsed, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}
		return repository.NewPostgresTagRepository(db, logger), closeFn, nil
	default:
		client, err := database.OpenMongo(ctx, cfg.Database.Mongo, cfg.Database.ConnectMaxElapsed, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("Failed to disconnect from mongo", zap.Error(err))
			}
		}
		return repository.NewMongoTagRepository(client.Database(cfg.Database.Mongo.Database), logger), closeFn, nil
	}
}

func createLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch cfg.Level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	zapConfig := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

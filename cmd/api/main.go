package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/CoreyPud/solarlink/config"
	installationrepo "github.com/CoreyPud/solarlink/internal/repositories/installation"
	interconnectionrepo "github.com/CoreyPud/solarlink/internal/repositories/interconnection"
	matchresultrepo "github.com/CoreyPud/solarlink/internal/repositories/matchresult"
	runrepo "github.com/CoreyPud/solarlink/internal/repositories/run"
	"github.com/CoreyPud/solarlink/pkg/database"
	"github.com/CoreyPud/solarlink/pkg/events"
	"github.com/CoreyPud/solarlink/pkg/kafka"
	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/matching"
	"github.com/CoreyPud/solarlink/pkg/middleware"
	"github.com/CoreyPud/solarlink/pkg/processor"
	"github.com/CoreyPud/solarlink/pkg/routes/health"
	matchresultroutes "github.com/CoreyPud/solarlink/pkg/routes/matchresult"
	reconcileroutes "github.com/CoreyPud/solarlink/pkg/routes/reconcile"
	runroutes "github.com/CoreyPud/solarlink/pkg/routes/run"
	"github.com/CoreyPud/solarlink/pkg/tracing"
	"github.com/CoreyPud/solarlink/pkg/tracing/exporters"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		AppName: cfg.AppName,
		Level:   cfg.LogLevel,
		Pretty:  cfg.PrettyLogs,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	tp := tracing.Init(cfg.AppName, &exporters.ConsoleExporter{})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	sqlxDB, err := database.Connect(ctx, database.ConnectionConfig{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer sqlxDB.Close()

	driver, err := postgres.WithInstance(sqlxDB.DB, &postgres.Config{})
	if err != nil {
		logger.WithError(err).Error("Failed to create migration driver")
		os.Exit(1)
	}
	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		logger.WithError(err).Error("Failed to run migrations")
		os.Exit(1)
	}

	db := database.NewDatabaseInstance(sqlxDB, logger)

	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
	}
	emitter := events.NewEmitter(producer, logger)

	installations := installationrepo.NewRepository(db, logger)
	interconnections := interconnectionrepo.NewRepository(db, logger)
	matches := matchresultrepo.NewRepository(db, logger)
	runs := runrepo.NewRepository(db, logger)

	engine := matching.NewEngine(logger, matching.Config{
		AcceptThreshold:    cfg.MatchAcceptThreshold,
		ConfirmThreshold:   cfg.MatchConfirmThreshold,
		ExactCeiling:       cfg.MatchExactCeiling,
		InstallerFYCeiling: cfg.MatchInstallerFYCeiling,
		FuzzyCeiling:       cfg.MatchFuzzyCeiling,
		DateKWCeiling:      cfg.MatchDateKWCeiling,
	})
	proc := processor.NewProcessor(logger, installations, interconnections, matches, runs, engine, emitter, cfg.MatchWriteBatchSize)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.HTTPErrorHandler = middleware.Error(logger)

	checker := health.NewChecker(db, version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	reconcileroutes.NewHandler(proc, logger).Register(api.Group("/reconcile"))
	matchresultroutes.NewHandler(matches, emitter, logger).Register(api.Group("/matches"))
	runroutes.NewHandler(runs).Register(api.Group("/runs"))

	go func() {
		checker.SetReady(true)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	checker.SetReady(false)
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/trungbq/docflow-be/internal/config"
	"github.com/trungbq/docflow-be/internal/domain"
	rabbitqueue "github.com/trungbq/docflow-be/internal/queue/rabbitmq"
	sqsqueue "github.com/trungbq/docflow-be/internal/queue/sqs"
	postgresrecords "github.com/trungbq/docflow-be/internal/records/postgres"
	"github.com/trungbq/docflow-be/internal/worker"
	"github.com/trungbq/docflow-be/shared/awsconfig"
	"github.com/trungbq/docflow-be/shared/logger"
	"github.com/trungbq/docflow-be/shared/postgresql"
	"github.com/trungbq/docflow-be/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("records_backend", cfg.Backend.Records),
		slog.String("queue_backend", cfg.Backend.Queue),
	)

	records, dbClient, err := initRecords(cfg, appLogger.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if dbClient != nil {
			dbClient.Close()
		}
	}()

	queue, rabbitClient, err := initQueue(cfg, appLogger.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if rabbitClient != nil {
			rabbitClient.Close()
		}
	}()

	workerInstance := worker.NewWorker(&worker.Config{
		Logger:       appLogger.Logger,
		Records:      records,
		Queue:        queue,
		Processor:    worker.NewStubProcessor(appLogger.Logger, cfg.Worker.ProcessingDelay),
		PollInterval: cfg.Worker.PollInterval,
		RunOnce:      cfg.Worker.RunOnce,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- workerInstance.Run(ctx)
	}()

	appLogger.Info("Worker service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
		cancel()

		shutdownTimeout := cfg.Worker.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 30 * time.Second
		}

		select {
		case <-errChan:
			appLogger.Info("Worker stopped gracefully")
		case <-time.After(shutdownTimeout):
			appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
		}
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Worker error",
				slog.Any("error", err),
			)
			return err
		}
		appLogger.Info("Worker finished")
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger.
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

// initRecords constructs the record store named in the config. The in-memory
// store is rejected by ValidateWorkerConfig before this runs.
func initRecords(cfg *config.Config, logger *slog.Logger) (domain.RecordStore, *postgresql.Client, error) {
	if cfg.Backend.Records != config.DriverPostgres {
		return nil, nil, fmt.Errorf("unsupported records backend for worker: %q", cfg.Backend.Records)
	}

	dbClient, err := postgresql.NewClient(&postgresql.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return postgresrecords.NewStore(dbClient, logger), dbClient, nil
}

// initQueue constructs the work queue named in the config. The in-memory
// queue is rejected by ValidateWorkerConfig before this runs.
func initQueue(cfg *config.Config, logger *slog.Logger) (domain.WorkQueue, *rabbitmq.Client, error) {
	switch cfg.Backend.Queue {
	case config.DriverRabbitMQ:
		rabbitClient, err := rabbitmq.NewClient(&rabbitmq.Config{
			Host:              cfg.RabbitMQ.Host,
			Port:              cfg.RabbitMQ.Port,
			User:              cfg.RabbitMQ.User,
			Password:          cfg.RabbitMQ.Password,
			VHost:             cfg.RabbitMQ.VHost,
			ExchangeName:      cfg.RabbitMQ.Exchange.Name,
			ExchangeType:      cfg.RabbitMQ.Exchange.Type,
			ExchangeDurable:   cfg.RabbitMQ.Exchange.Durable,
			QueueName:         cfg.RabbitMQ.Queue.Name,
			QueueDurable:      cfg.RabbitMQ.Queue.Durable,
			RoutingKey:        cfg.RabbitMQ.RoutingKey,
			RetryAttempts:     cfg.RabbitMQ.Connection.RetryAttempts,
			RetryInterval:     cfg.RabbitMQ.Connection.RetryInterval,
			Heartbeat:         cfg.RabbitMQ.Connection.Heartbeat,
			PublishRetries:    cfg.RabbitMQ.Publish.RetryAttempts,
			PublishRetryDelay: cfg.RabbitMQ.Publish.RetryInterval,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		return rabbitqueue.NewQueue(rabbitClient, logger), rabbitClient, nil

	case config.DriverSQS:
		awsCfg, err := awsconfig.Load(context.Background(), cfg.AWS.Region, logger)
		if err != nil {
			return nil, nil, err
		}
		return sqsqueue.NewQueue(awsCfg, &sqsqueue.Config{
			QueueURL: cfg.AWS.SQS.QueueURL,
			WaitTime: cfg.AWS.SQS.WaitTime,
		}, logger), nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported queue backend for worker: %q", cfg.Backend.Queue)
	}
}

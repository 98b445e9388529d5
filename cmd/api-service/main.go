package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/trungbq/docflow-be/internal/api/handler"
	"github.com/trungbq/docflow-be/internal/api/router"
	"github.com/trungbq/docflow-be/internal/config"
	"github.com/trungbq/docflow-be/internal/domain"
	memoryobject "github.com/trungbq/docflow-be/internal/objectstore/memory"
	s3object "github.com/trungbq/docflow-be/internal/objectstore/s3"
	memoryqueue "github.com/trungbq/docflow-be/internal/queue/memory"
	rabbitqueue "github.com/trungbq/docflow-be/internal/queue/rabbitmq"
	sqsqueue "github.com/trungbq/docflow-be/internal/queue/sqs"
	memoryrecords "github.com/trungbq/docflow-be/internal/records/memory"
	postgresrecords "github.com/trungbq/docflow-be/internal/records/postgres"
	"github.com/trungbq/docflow-be/internal/service"
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

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("records_backend", cfg.Backend.Records),
		slog.String("object_store_backend", cfg.Backend.ObjectStore),
		slog.String("queue_backend", cfg.Backend.Queue),
	)

	backends, err := initBackends(cfg, appLogger.Logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	documents := service.NewDocumentService(backends.Records, backends.ObjectStore, backends.Queue, appLogger.Logger)

	// The in-memory queue is process-local, so a separate worker binary can
	// never see its jobs. Run the worker loop inside this process instead.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Backend.Queue == config.DriverMemory {
		inProcessWorker := worker.NewWorker(&worker.Config{
			Logger:       appLogger.Logger,
			Records:      backends.Records,
			Queue:        backends.Queue,
			Processor:    worker.NewStubProcessor(appLogger.Logger, cfg.Worker.ProcessingDelay),
			PollInterval: cfg.Worker.PollInterval,
		})
		go func() {
			if err := inProcessWorker.Run(ctx); err != nil && err != context.Canceled {
				appLogger.Error("In-process worker stopped",
					slog.Any("error", err),
				)
			}
		}()
		appLogger.Info("In-process worker started for the in-memory queue")
	}

	r := initRouter(cfg.App.Environment, appLogger.Logger, documents)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	cancel() // stop the in-process worker, if any

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// backendSet holds the concrete port implementations selected by config
// together with the clients that must be closed on shutdown.
type backendSet struct {
	Records     domain.RecordStore
	ObjectStore domain.ObjectStorage
	Queue       domain.WorkQueue

	dbClient     *postgresql.Client
	rabbitClient *rabbitmq.Client
}

// Close releases the infrastructure clients behind the selected backends.
func (b *backendSet) Close() {
	if b.dbClient != nil {
		b.dbClient.Close()
	}
	if b.rabbitClient != nil {
		b.rabbitClient.Close()
	}
}

// initBackends constructs the port implementations named in the config.
// Selection happens exactly once here; everything downstream sees only the
// port interfaces.
func initBackends(cfg *config.Config, logger *slog.Logger) (*backendSet, error) {
	backends := &backendSet{}

	switch cfg.Backend.Records {
	case config.DriverPostgres:
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
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		backends.dbClient = dbClient
		backends.Records = postgresrecords.NewStore(dbClient, logger)
	default:
		backends.Records = memoryrecords.NewStore()
	}

	switch cfg.Backend.ObjectStore {
	case config.DriverS3:
		awsCfg, err := awsconfig.Load(context.Background(), cfg.AWS.Region, logger)
		if err != nil {
			return nil, err
		}
		backends.ObjectStore = s3object.NewStorage(awsCfg, &s3object.Config{
			Bucket:        cfg.AWS.S3.Bucket,
			PresignExpiry: cfg.AWS.S3.PresignExpiry,
		}, logger)
	default:
		backends.ObjectStore = memoryobject.NewStorage()
	}

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
			return nil, fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		backends.rabbitClient = rabbitClient
		backends.Queue = rabbitqueue.NewQueue(rabbitClient, logger)
	case config.DriverSQS:
		awsCfg, err := awsconfig.Load(context.Background(), cfg.AWS.Region, logger)
		if err != nil {
			return nil, err
		}
		backends.Queue = sqsqueue.NewQueue(awsCfg, &sqsqueue.Config{
			QueueURL: cfg.AWS.SQS.QueueURL,
			WaitTime: cfg.AWS.SQS.WaitTime,
		}, logger)
	default:
		backends.Queue = memoryqueue.NewQueue()
	}

	return backends, nil
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

// initRouter initializes the Gin router with all routes and middleware.
func initRouter(environment string, logger *slog.Logger, documents *service.DocumentService) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(&handler.Dependencies{
		Logger:    logger,
		Documents: documents,
	})
}

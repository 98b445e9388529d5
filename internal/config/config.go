package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Backend driver names.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
	DriverRabbitMQ = "rabbitmq"
	DriverSQS      = "sqs"
)

// Config represents the complete application configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Backend  BackendConfig  `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	AWS      AWSConfig      `yaml:"aws"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// BackendConfig selects a concrete implementation for each port. The core
// never sees these names; selection happens once in main.
type BackendConfig struct {
	Records     string `yaml:"records"`      // memory | postgres
	ObjectStore string `yaml:"object_store"` // memory | s3
	Queue       string `yaml:"queue"`        // memory | rabbitmq | sqs
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RabbitMQConfig holds RabbitMQ connection and topology configuration.
type RabbitMQConfig struct {
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	User       string           `yaml:"user"`
	Password   string           `yaml:"password"`
	VHost      string           `yaml:"vhost"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Queue      QueueConfig      `yaml:"queue"`
	RoutingKey string           `yaml:"routing_key"`
	Connection ConnectionConfig `yaml:"connection"`
	Publish    PublishConfig    `yaml:"publish"`
}

// ExchangeConfig holds RabbitMQ exchange configuration.
type ExchangeConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Durable bool   `yaml:"durable"`
}

// QueueConfig holds RabbitMQ queue configuration.
type QueueConfig struct {
	Name    string `yaml:"name"`
	Durable bool   `yaml:"durable"`
}

// ConnectionConfig holds RabbitMQ connection settings.
type ConnectionConfig struct {
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	Heartbeat     time.Duration `yaml:"heartbeat"`
}

// PublishConfig holds RabbitMQ publish retry settings.
type PublishConfig struct {
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// AWSConfig holds settings shared by the S3 and SQS adapters.
type AWSConfig struct {
	Region string    `yaml:"region"`
	S3     S3Config  `yaml:"s3"`
	SQS    SQSConfig `yaml:"sqs"`
}

// S3Config holds S3 object storage settings.
type S3Config struct {
	Bucket        string        `yaml:"bucket"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

// SQSConfig holds SQS queue settings.
type SQSConfig struct {
	QueueURL string        `yaml:"queue_url"`
	WaitTime time.Duration `yaml:"wait_time"`
}

// WorkerConfig holds worker loop configuration.
type WorkerConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`
	RunOnce         bool          `yaml:"run_once"`
	ProcessingDelay time.Duration `yaml:"processing_delay"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Load reads and parses the configuration file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// ValidateAPIConfig checks the fields the API service depends on.
func (c *Config) ValidateAPIConfig() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	return c.validateBackends()
}

// ValidateWorkerConfig checks the fields the worker service depends on.
func (c *Config) ValidateWorkerConfig() error {
	if c.Worker.PollInterval <= 0 {
		return fmt.Errorf("worker poll_interval must be greater than 0")
	}

	if c.Backend.Queue == DriverMemory {
		return fmt.Errorf("worker service cannot use the in-memory queue: it is process-local to the API service")
	}

	// A worker with its own empty in-memory store would find no document for
	// any dequeued job and destroy every message.
	if c.Backend.Records == DriverMemory {
		return fmt.Errorf("worker service cannot use the in-memory record store: it is process-local to the API service")
	}

	return c.validateBackends()
}

// validateBackends checks driver names and the settings each selected
// driver requires.
func (c *Config) validateBackends() error {
	switch c.Backend.Records {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres records backend")
		}
		if c.Database.Port < MinPort || c.Database.Port > MaxPort {
			return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required for the postgres records backend")
		}
	default:
		return fmt.Errorf("unknown records backend: %q", c.Backend.Records)
	}

	switch c.Backend.ObjectStore {
	case DriverMemory:
	case DriverS3:
		if c.AWS.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required for the s3 object store backend")
		}
	default:
		return fmt.Errorf("unknown object store backend: %q", c.Backend.ObjectStore)
	}

	switch c.Backend.Queue {
	case DriverMemory:
	case DriverRabbitMQ:
		if c.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq host is required for the rabbitmq queue backend")
		}
		if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
			return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
		}
		if c.RabbitMQ.Exchange.Name == "" {
			return fmt.Errorf("rabbitmq exchange name is required for the rabbitmq queue backend")
		}
		if c.RabbitMQ.Queue.Name == "" {
			return fmt.Errorf("rabbitmq queue name is required for the rabbitmq queue backend")
		}
	case DriverSQS:
		if c.AWS.SQS.QueueURL == "" {
			return fmt.Errorf("sqs queue_url is required for the sqs queue backend")
		}
	default:
		return fmt.Errorf("unknown queue backend: %q", c.Backend.Queue)
	}

	return nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				assert.Equal(t, "document-api-service", cfg.App.Name)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, DriverPostgres, cfg.Backend.Records)
				assert.Equal(t, DriverS3, cfg.Backend.ObjectStore)
				assert.Equal(t, DriverRabbitMQ, cfg.Backend.Queue)
				assert.Equal(t, "docflow_db", cfg.Database.Database)
				assert.Equal(t, "documents_exchange", cfg.RabbitMQ.Exchange.Name)
				assert.Equal(t, "documents_processing", cfg.RabbitMQ.Queue.Name)
				assert.Equal(t, "docflow-uploads", cfg.AWS.S3.Bucket)
				assert.Equal(t, 5*time.Minute, cfg.AWS.S3.PresignExpiry)
				assert.Equal(t, 2*time.Second, cfg.Worker.PollInterval)
				assert.True(t, cfg.Worker.RunOnce)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Backend: BackendConfig{
			Records:     DriverMemory,
			ObjectStore: DriverMemory,
			Queue:       DriverMemory,
		},
		Worker: WorkerConfig{PollInterval: time.Second},
	}
}

func TestConfig_ValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:   "valid memory config",
			mutate: func(*Config) {},
		},
		{
			name: "invalid server port",
			mutate: func(c *Config) {
				c.Server.Port = 0
			},
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name: "unknown records backend",
			mutate: func(c *Config) {
				c.Backend.Records = "cassandra"
			},
			wantErr:   true,
			errString: "unknown records backend",
		},
		{
			name: "postgres backend without host",
			mutate: func(c *Config) {
				c.Backend.Records = DriverPostgres
			},
			wantErr:   true,
			errString: "database host is required",
		},
		{
			name: "postgres backend fully configured",
			mutate: func(c *Config) {
				c.Backend.Records = DriverPostgres
				c.Database = DatabaseConfig{Host: "localhost", Port: 5432, Database: "docflow_db"}
			},
		},
		{
			name: "s3 backend without bucket",
			mutate: func(c *Config) {
				c.Backend.ObjectStore = DriverS3
			},
			wantErr:   true,
			errString: "s3 bucket is required",
		},
		{
			name: "rabbitmq backend without exchange",
			mutate: func(c *Config) {
				c.Backend.Queue = DriverRabbitMQ
				c.RabbitMQ.Host = "localhost"
				c.RabbitMQ.Port = 5672
			},
			wantErr:   true,
			errString: "rabbitmq exchange name is required",
		},
		{
			name: "sqs backend without queue url",
			mutate: func(c *Config) {
				c.Backend.Queue = DriverSQS
			},
			wantErr:   true,
			errString: "sqs queue_url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateWorkerConfig(t *testing.T) {
	t.Run("rejects the in-memory queue", func(t *testing.T) {
		cfg := validConfig()

		err := cfg.ValidateWorkerConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "in-memory queue")
	})

	t.Run("rejects the in-memory record store", func(t *testing.T) {
		// A worker with its own empty store would destroy every job it
		// dequeues, since jobs for unknown documents are dropped.
		cfg := validConfig()
		cfg.Backend.Queue = DriverSQS
		cfg.AWS.SQS.QueueURL = "https://sqs.us-east-1.amazonaws.com/123/docs"

		err := cfg.ValidateWorkerConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "in-memory record store")
	})

	t.Run("requires a positive poll interval", func(t *testing.T) {
		cfg := validConfig()
		cfg.Backend.Queue = DriverSQS
		cfg.AWS.SQS.QueueURL = "https://sqs.us-east-1.amazonaws.com/123/docs"
		cfg.Worker.PollInterval = 0

		err := cfg.ValidateWorkerConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "poll_interval")
	})

	t.Run("accepts sqs queue with postgres records", func(t *testing.T) {
		cfg := validConfig()
		cfg.Backend.Records = DriverPostgres
		cfg.Database = DatabaseConfig{Host: "localhost", Port: 5432, Database: "docflow_db"}
		cfg.Backend.Queue = DriverSQS
		cfg.AWS.SQS.QueueURL = "https://sqs.us-east-1.amazonaws.com/123/docs"

		assert.NoError(t, cfg.ValidateWorkerConfig())
	})
}

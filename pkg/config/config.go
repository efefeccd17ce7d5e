package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the full runtime configuration for the docwatch service.
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Webhook WebhookConfig
	Kafka   KafkaConfig
	Storage StorageConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"docwatch"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
}

type WebhookConfig struct {
	// Secret keys the HMAC-SHA256 signature check. Empty disables verification.
	Secret              string   `env:"WEBHOOK_SECRET"`
	SignatureHeader     string   `env:"WEBHOOK_SIGNATURE_HEADER" envDefault:"X-Cos-Signature"`
	DisableVerification bool     `env:"WEBHOOK_DISABLE_VERIFICATION" envDefault:"false"`
	UploadEventTypes    []string `env:"WEBHOOK_UPLOAD_EVENT_TYPES" envSeparator:"," envDefault:"Object:Put,Object:Post,Object:Write,s3:ObjectCreated:Put,s3:ObjectCreated:Post,s3:ObjectCreated:CompleteMultipartUpload,Put,Post,Create,Upload,Write"`
	TrackerCapacity     int      `env:"WEBHOOK_TRACKER_CAPACITY" envDefault:"100"`
}

type KafkaConfig struct {
	Brokers          []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	UploadsTopic     string        `env:"KAFKA_UPLOADS_TOPIC" envDefault:"docwatch.pdf-uploads"`
	Retries          int           `env:"KAFKA_RETRIES" envDefault:"3"`
	CompressionCodec string        `env:"KAFKA_COMPRESSION_CODEC" envDefault:"snappy"`
	BatchSize        int           `env:"KAFKA_BATCH_SIZE" envDefault:"100"`
	BatchTimeout     time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"1s"`
}

type StorageConfig struct {
	Endpoint           string   `env:"STORAGE_ENDPOINT" envDefault:"localhost:9000"`
	Region             string   `env:"STORAGE_REGION" envDefault:"us-south"`
	Bucket             string   `env:"STORAGE_BUCKET" envDefault:"docwatch-inbox"`
	AccessKey          string   `env:"STORAGE_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey          string   `env:"STORAGE_SECRET_KEY" envDefault:"minioadmin"`
	UseSSL             bool     `env:"STORAGE_USE_SSL" envDefault:"false"`
	SetupNotifications bool     `env:"STORAGE_SETUP_NOTIFICATIONS" envDefault:"false"`
	NotificationARN    string   `env:"STORAGE_NOTIFICATION_ARN" envDefault:"arn:minio:sqs::docwatch:webhook"`
	NotificationPrefix string   `env:"STORAGE_NOTIFICATION_PREFIX"`
	NotificationEvents []string `env:"STORAGE_NOTIFICATION_EVENTS" envSeparator:"," envDefault:"s3:ObjectCreated:*"`
}

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=docwatch"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

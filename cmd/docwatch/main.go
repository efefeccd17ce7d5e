package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/docwatch/internal/events"
	"github.com/your-org/docwatch/internal/webhook"
	"github.com/your-org/docwatch/pkg/config"
	"github.com/your-org/docwatch/pkg/kafka"
	"github.com/your-org/docwatch/pkg/logger"
	"github.com/your-org/docwatch/pkg/storage/objectstore"
	"github.com/your-org/docwatch/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    cfg.Tracing.SampleRatio,
		Attributes:     parseResourceAttributes(cfg.Tracing.ResourceAttr),
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
	})
	if err != nil {
		logr.Fatal("init tracing", zap.Error(err))
	}
	defer traceShutdown(context.Background()) //nolint:errcheck

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.UploadsTopic,
		BatchSize:    cfg.Kafka.BatchSize,
		BatchTimeout: cfg.Kafka.BatchTimeout,
		Compression:  kafka.CompressionFromString(cfg.Kafka.CompressionCodec),
		MaxAttempts:  cfg.Kafka.Retries,
	})

	if cfg.Storage.SetupNotifications {
		setupBucketNotifications(ctx, cfg, logr)
	}

	pipeline := events.NewPipeline(events.PipelineParams{
		Secret:              cfg.Webhook.Secret,
		DisableVerification: cfg.Webhook.DisableVerification,
		Classifier:          events.NewClassifier(cfg.Webhook.UploadEventTypes),
		Tracker:             events.NewUploadTracker(cfg.Webhook.TrackerCapacity),
		Logger:              logr,
	})

	service := webhook.NewService(webhook.Params{
		Pipeline:  pipeline,
		Publisher: producer,
		Logger:    logr,
	})

	handler := webhook.NewHTTPHandler(service, logr, webhook.HandlerConfig{
		SignatureHeader:  cfg.Webhook.SignatureHeader,
		SecretConfigured: cfg.Webhook.Secret != "",
		UploadEventTypes: cfg.Webhook.UploadEventTypes,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Error("http server shutdown failed", zap.Error(err))
		}
		if err := producer.Close(shutdownCtx); err != nil {
			logr.Error("kafka producer shutdown failed", zap.Error(err))
		}
	}()

	logr.Info("docwatch webhook service starting",
		zap.String("addr", cfg.HTTP.Addr),
		zap.Bool("signature_verification", cfg.Webhook.Secret != "" && !cfg.Webhook.DisableVerification),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Fatal("http server failed", zap.Error(err))
	}
}

// setupBucketNotifications points the bucket's event delivery at the webhook
// target. Failure is logged and non-fatal; the service can still ingest
// events configured out of band.
func setupBucketNotifications(ctx context.Context, cfg *config.Config, logr *zap.Logger) {
	admin, err := objectstore.New(objectstore.Config{
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logr.Error("init object store admin", zap.Error(err))
		return
	}

	err = admin.EnsureNotification(ctx, cfg.Storage.NotificationARN, cfg.Storage.NotificationEvents, cfg.Storage.NotificationPrefix)
	if err != nil {
		logr.Error("configure bucket notifications", zap.Error(err))
		return
	}
	logr.Info("bucket notifications configured",
		zap.String("bucket", cfg.Storage.Bucket),
		zap.String("target_arn", cfg.Storage.NotificationARN),
	)
}

func parseResourceAttributes(raw string) map[string]string {
	attrs := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" || !strings.Contains(pair, "=") {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		attrs[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return attrs
}

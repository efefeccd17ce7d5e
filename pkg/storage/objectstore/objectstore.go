package objectstore

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/notification"
)

// Config contains the information required to administer bucket
// notifications on an S3-compatible object store.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Admin manages the bucket-side notification configuration that makes the
// store deliver object lifecycle events to the webhook.
type Admin interface {
	EnsureNotification(ctx context.Context, targetARN string, eventTypes []string, prefix string) error
	NotificationTargets(ctx context.Context) ([]string, error)
}

// New creates a notification Admin for the configured bucket.
func New(cfg Config) (Admin, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	return &minioAdmin{client: cl, bucket: cfg.Bucket}, nil
}

type minioAdmin struct {
	client *minio.Client
	bucket string
}

// EnsureNotification replaces the bucket's queue notification config with one
// targeting the given ARN for the given event types. An empty eventTypes
// defaults to all object-created events.
func (m *minioAdmin) EnsureNotification(ctx context.Context, targetARN string, eventTypes []string, prefix string) error {
	arn, err := notification.NewArnFromString(targetARN)
	if err != nil {
		return fmt.Errorf("parse notification arn %q: %w", targetARN, err)
	}

	queue := notification.NewConfig(arn)
	if len(eventTypes) == 0 {
		queue.AddEvents(notification.ObjectCreatedAll)
	}
	for _, t := range eventTypes {
		queue.AddEvents(notification.EventType(t))
	}
	if prefix != "" {
		queue.AddFilterPrefix(prefix)
	}

	cfg := notification.Configuration{}
	cfg.AddQueue(queue)

	if err := m.client.SetBucketNotification(ctx, m.bucket, cfg); err != nil {
		return fmt.Errorf("set bucket notification on %q: %w", m.bucket, err)
	}
	return nil
}

// NotificationTargets lists the queue ARNs currently configured on the
// bucket.
func (m *minioAdmin) NotificationTargets(ctx context.Context) ([]string, error) {
	cfg, err := m.client.GetBucketNotification(ctx, m.bucket)
	if err != nil {
		return nil, fmt.Errorf("get bucket notification on %q: %w", m.bucket, err)
	}

	targets := make([]string, 0, len(cfg.QueueConfigs))
	for _, q := range cfg.QueueConfigs {
		targets = append(targets, q.Queue)
	}
	return targets, nil
}

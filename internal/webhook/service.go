package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/your-org/docwatch/internal/events"
)

// UploadPublisher emits matched upload records to downstream consumers.
type UploadPublisher interface {
	Publish(ctx context.Context, key []byte, value []byte, headers map[string]string) error
}

// Service composes the event pipeline with downstream publishing. The HTTP
// handler talks to the service, never to the pipeline directly.
type Service struct {
	pipeline  *events.Pipeline
	publisher UploadPublisher
	logger    *zap.Logger
}

type Params struct {
	Pipeline  *events.Pipeline
	Publisher UploadPublisher
	Logger    *zap.Logger
}

// NewService constructs a webhook Service. Publisher may be nil, in which
// case matched uploads are only tracked, not forwarded.
func NewService(p Params) *Service {
	return &Service{
		pipeline:  p.Pipeline,
		publisher: p.Publisher,
		logger:    p.Logger,
	}
}

// HandleEvents runs the pipeline over a raw webhook body and forwards every
// matched upload downstream. Publishing is best effort: a broker failure is
// logged and never fails the request, and nothing is retried.
func (s *Service) HandleEvents(ctx context.Context, raw []byte, headerSignature string) ([]events.ProcessedEvent, error) {
	processed, uploads, err := s.pipeline.Process(raw, headerSignature)
	if err != nil {
		return nil, err
	}

	for _, upload := range uploads {
		if err := s.publishUpload(ctx, upload); err != nil {
			s.logger.Error("publish upload event failed",
				zap.String("file", upload.FileName),
				zap.Error(err),
			)
		}
	}
	return processed, nil
}

func (s *Service) publishUpload(ctx context.Context, upload events.UploadRecord) error {
	if s.publisher == nil {
		return nil
	}

	payload, err := json.Marshal(upload)
	if err != nil {
		return fmt.Errorf("marshal upload record: %w", err)
	}

	headers := map[string]string{
		"upload_id":  upload.ID,
		"event_type": "docwatch.pdf-upload.detected",
	}
	return s.publisher.Publish(ctx, []byte(upload.ID), payload, headers)
}

// Stats returns a paginated view of recently tracked uploads together with
// the all-time total and the current ring size.
func (s *Service) Stats(limit, offset int) ([]events.UploadRecord, uint64, int) {
	recent, total := s.pipeline.Tracker().Snapshot(limit, offset)
	return recent, total, s.pipeline.Tracker().Tracked()
}

// VerificationEnabled reports whether inbound payloads are signature checked.
func (s *Service) VerificationEnabled() bool {
	return s.pipeline.VerificationEnabled()
}

// TotalUploads reports the all-time matched upload count.
func (s *Service) TotalUploads() uint64 {
	_, total := s.pipeline.Tracker().Snapshot(0, 0)
	return total
}

package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidSignature means the payload signature was absent or did not
	// verify. Callers map it to an unauthorized response.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedPayload means the body was not valid JSON. Callers map it
	// to a bad-request response.
	ErrMalformedPayload = errors.New("malformed json payload")
)

// Pipeline normalizes raw webhook payloads into canonical events, classifies
// them, and tracks matched PDF uploads. One Pipeline serves concurrent
// requests; the tracker is its only shared mutable state.
type Pipeline struct {
	secret              []byte
	disableVerification bool
	classifier          *Classifier
	tracker             *UploadTracker
	logger              *zap.Logger
}

type PipelineParams struct {
	// Secret keys signature verification; empty disables it entirely.
	Secret              string
	DisableVerification bool
	Classifier          *Classifier
	Tracker             *UploadTracker
	Logger              *zap.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(p PipelineParams) *Pipeline {
	return &Pipeline{
		secret:              []byte(p.Secret),
		disableVerification: p.DisableVerification,
		classifier:          p.Classifier,
		tracker:             p.Tracker,
		logger:              p.Logger,
	}
}

// Tracker exposes the pipeline's upload tracker for statistics queries.
func (p *Pipeline) Tracker() *UploadTracker {
	return p.tracker
}

// VerificationEnabled reports whether inbound payloads are signature checked.
func (p *Pipeline) VerificationEnabled() bool {
	return len(p.secret) > 0 && !p.disableVerification
}

// Process runs the full normalization pipeline over the raw request body:
// verify the signature, decode JSON, detect the payload shape, extract
// canonical events, classify each one, and track matches. It returns every
// extracted event with its match flag plus the upload records created for
// the matches.
//
// raw must be the exact bytes the sender signed; re-encoding the body before
// calling Process breaks verification. A failure inside classification of a
// single event skips that event without aborting the batch.
func (p *Pipeline) Process(raw []byte, headerSignature string) ([]ProcessedEvent, []UploadRecord, error) {
	if p.VerificationEnabled() {
		if !VerifySignature(p.logger, p.secret, raw, headerSignature) {
			return nil, nil, ErrInvalidSignature
		}
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err)
	}
	// Non-object payloads (arrays, scalars) are well-formed JSON with no
	// recognizable shape; they flow through best-effort extraction and
	// yield zero records rather than an error.
	payload, _ := decoded.(map[string]any)

	ingestedAt := time.Now().UTC().Format(time.RFC3339)
	kind := DetectSchema(payload)
	extracted := ExtractEvents(kind, payload, ingestedAt)

	p.logger.Debug("payload extracted",
		zap.Stringer("schema", kind),
		zap.Int("events", len(extracted)),
	)

	processed := make([]ProcessedEvent, 0, len(extracted))
	var uploads []UploadRecord
	for _, event := range extracted {
		matched, upload, ok := p.classifyAndTrack(event)
		if !ok {
			continue
		}
		processed = append(processed, ProcessedEvent{CanonicalEvent: event, Matched: matched})
		if matched {
			uploads = append(uploads, upload)
		}
	}
	return processed, uploads, nil
}

// classifyAndTrack classifies one event and records it when matched. A panic
// while handling a single event is recovered here so one bad record cannot
// abort the batch; ok reports whether the event survived.
func (p *Pipeline) classifyAndTrack(event CanonicalEvent) (matched bool, upload UploadRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("event skipped",
				zap.Any("panic", r),
				zap.String("object_key", event.ObjectKey),
			)
			ok = false
		}
	}()

	if !p.classifier.Match(event) {
		return false, UploadRecord{}, true
	}

	upload = UploadRecord{
		ID:        uuid.NewString(),
		FileName:  event.ObjectKey,
		Bucket:    event.Bucket,
		EventType: event.EventType,
		Timestamp: event.Timestamp,
		Source:    event.Source,
	}
	total := p.tracker.Record(upload)

	p.logger.Info("pdf upload detected",
		zap.String("file", upload.FileName),
		zap.String("bucket", upload.Bucket),
		zap.String("event_type", upload.EventType),
		zap.String("source", string(upload.Source)),
		zap.Uint64("total", total),
	)
	return true, upload, true
}

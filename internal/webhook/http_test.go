package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/your-org/docwatch/internal/events"
)

const testSignatureHeader = "X-Cos-Signature"

type capturingPublisher struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
}

func (p *capturingPublisher) Publish(ctx context.Context, key, value []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, value)
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func newTestHandler(t *testing.T, secret string, publisher UploadPublisher) *HTTPHandler {
	t.Helper()
	logger := zaptest.NewLogger(t)

	pipeline := events.NewPipeline(events.PipelineParams{
		Secret:     secret,
		Classifier: events.NewClassifier(nil),
		Tracker:    events.NewUploadTracker(events.DefaultTrackerCapacity),
		Logger:     logger,
	})

	service := NewService(Params{
		Pipeline:  pipeline,
		Publisher: publisher,
		Logger:    logger,
	})

	return NewHTTPHandler(service, logger, HandlerConfig{
		SignatureHeader:  testSignatureHeader,
		SecretConfigured: secret != "",
		UploadEventTypes: events.DefaultUploadEventTypes,
	})
}

func signBody(secret string, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postEvents(t *testing.T, h *HTTPHandler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/cos/events", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(testSignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleEventsSuccess(t *testing.T) {
	publisher := &capturingPublisher{}
	h := newTestHandler(t, "", publisher)

	body := `{"bucket":"b","key":"docs/report.pdf","notification":"Object:Put","operation":"Put"}`
	rec := postEvents(t, h, body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
		Events []struct {
			EventType string `json:"event_type"`
			Bucket    string `json:"bucket"`
			ObjectKey string `json:"object_key"`
			Matched   bool   `json:"matched"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Object:Put", resp.Events[0].EventType)
	assert.Equal(t, "docs/report.pdf", resp.Events[0].ObjectKey)
	assert.True(t, resp.Events[0].Matched)

	// The matched upload was forwarded downstream.
	assert.Equal(t, 1, publisher.count())
}

func TestHandleEventsSignature(t *testing.T) {
	h := newTestHandler(t, "s3cret", &capturingPublisher{})
	body := `{"bucket":"b","key":"a.pdf","operation":"Put"}`

	t.Run("valid signature accepted", func(t *testing.T) {
		rec := postEvents(t, h, body, signBody("s3cret", body))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing signature rejected", func(t *testing.T) {
		rec := postEvents(t, h, body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signature rejected", func(t *testing.T) {
		rec := postEvents(t, h, body, signBody("other", body))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleEventsMalformedJSON(t *testing.T) {
	h := newTestHandler(t, "", &capturingPublisher{})
	rec := postEvents(t, h, `{"bucket":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEventsPublishFailureDoesNotFailRequest(t *testing.T) {
	h := newTestHandler(t, "", &capturingPublisher{fail: true})
	body := `{"bucket":"b","key":"a.pdf","operation":"Put"}`

	rec := postEvents(t, h, body, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleStats(t *testing.T) {
	h := newTestHandler(t, "", &capturingPublisher{})

	for i := 0; i < 3; i++ {
		body := `{"bucket":"b","key":"doc-` + string(rune('a'+i)) + `.pdf","operation":"Put"}`
		rec := postEvents(t, h, body, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/pdf/stats?limit=2&offset=1", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stats struct {
			Total   uint64 `json:"total_pdf_uploads"`
			Recent  int    `json:"recent_uploads_count"`
			Tracked int    `json:"uploads_tracked"`
		} `json:"pdf_upload_statistics"`
		RecentUploads []struct {
			FileName string `json:"file_name"`
		} `json:"recent_pdf_uploads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, uint64(3), resp.Stats.Total)
	assert.Equal(t, 2, resp.Stats.Recent)
	assert.Equal(t, 3, resp.Stats.Tracked)
	require.Len(t, resp.RecentUploads, 2)
	assert.Equal(t, "doc-b.pdf", resp.RecentUploads[0].FileName)
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t, "s3cret", &capturingPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status   string `json:"status"`
		SigCheck struct {
			Enabled          bool `json:"enabled"`
			SecretConfigured bool `json:"secret_configured"`
		} `json:"signature_verification"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.SigCheck.Enabled)
	assert.True(t, resp.SigCheck.SecretConfigured)
}

func TestHandleEventsInfo(t *testing.T) {
	h := newTestHandler(t, "", &capturingPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/cos/events", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status   string `json:"status"`
		Endpoint string `json:"endpoint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "/cos/events", resp.Endpoint)
}

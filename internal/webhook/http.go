package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/your-org/docwatch/internal/events"
)

// HTTPHandler exposes the webhook ingest and statistics endpoints.
type HTTPHandler struct {
	service          *Service
	logger           *zap.Logger
	signatureHeader  string
	secretConfigured bool
	uploadEventTypes []string
	router           chi.Router
}

type HandlerConfig struct {
	SignatureHeader  string
	SecretConfigured bool
	UploadEventTypes []string
}

// NewHTTPHandler constructs the HTTP handler and wires routes.
func NewHTTPHandler(service *Service, logger *zap.Logger, cfg HandlerConfig) *HTTPHandler {
	h := &HTTPHandler{
		service:          service,
		logger:           logger,
		signatureHeader:  cfg.SignatureHeader,
		secretConfigured: cfg.SecretConfigured,
		uploadEventTypes: cfg.UploadEventTypes,
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealth)
	r.Post("/cos/events", h.handleEvents)
	r.Get("/cos/events", h.handleEventsInfo)
	r.Get("/pdf/stats", h.handleStats)

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

// handleEvents ingests a storage-provider webhook. The body is passed to the
// pipeline as the exact bytes received; signature verification depends on it.
func (h *HTTPHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	processed, err := h.service.HandleEvents(r.Context(), raw, r.Header.Get(h.signatureHeader))
	switch {
	case errors.Is(err, events.ErrInvalidSignature):
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	case errors.Is(err, events.ErrMalformedPayload):
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	case err != nil:
		h.logger.Error("webhook processing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "event processing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   "Processed " + strconv.Itoa(len(processed)) + " events",
		"count":     len(processed),
		"events":    processed,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HTTPHandler) handleEventsInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "active",
		"endpoint":    "/cos/events",
		"method":      http.MethodPost,
		"description": "storage event webhook endpoint",
		"config": map[string]any{
			"signature_header":   h.signatureHeader,
			"signature_verified": h.service.VerificationEnabled(),
			"secret_configured":  h.secretConfigured,
		},
	})
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	recent, total, tracked := h.service.Stats(limit, offset)

	writeJSON(w, http.StatusOK, map[string]any{
		"pdf_upload_statistics": map[string]any{
			"total_pdf_uploads":    total,
			"recent_uploads_count": len(recent),
			"uploads_tracked":      tracked,
		},
		"recent_pdf_uploads": recent,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"total":  tracked,
		},
		"detection_config": map[string]any{
			"upload_events":     h.uploadEventTypes,
			"pdf_extensions":    []string{".pdf"},
			"filename_patterns": []string{"pdf"},
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"signature_verification": map[string]any{
			"enabled":           h.service.VerificationEnabled(),
			"secret_configured": h.secretConfigured,
		},
		"pdf_detection": map[string]any{
			"enabled":           true,
			"total_pdf_uploads": h.service.TotalUploads(),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

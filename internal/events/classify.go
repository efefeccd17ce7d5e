package events

import (
	"path"
	"strings"
)

// DefaultUploadEventTypes is the allow-list of provider verbs treated as
// uploads when no override is configured. Membership is case-sensitive and
// exact; the list is data so deployments can extend it without code changes.
var DefaultUploadEventTypes = []string{
	"Object:Put",
	"Object:Post",
	"Object:Write",
	"s3:ObjectCreated:Put",
	"s3:ObjectCreated:Post",
	"s3:ObjectCreated:CompleteMultipartUpload",
	"Put",
	"Post",
	"Create",
	"Upload",
	"Write",
}

// Classifier decides whether a canonical event represents a PDF upload. Both
// predicates must hold for a match.
type Classifier struct {
	uploadEventTypes map[string]struct{}
}

// NewClassifier builds a classifier over the given upload-verb allow-list.
// An empty list falls back to DefaultUploadEventTypes.
func NewClassifier(uploadEventTypes []string) *Classifier {
	if len(uploadEventTypes) == 0 {
		uploadEventTypes = DefaultUploadEventTypes
	}
	set := make(map[string]struct{}, len(uploadEventTypes))
	for _, t := range uploadEventTypes {
		set[t] = struct{}{}
	}
	return &Classifier{uploadEventTypes: set}
}

// IsUploadEvent reports whether eventType is an exact member of the
// allow-list.
func (c *Classifier) IsUploadEvent(eventType string) bool {
	_, ok := c.uploadEventTypes[eventType]
	return ok
}

// IsPDF reports whether the object key looks like a PDF: either the final
// extension is .pdf, or the lowercased base filename contains "pdf" anywhere.
// The substring rule is an intentionally loose heuristic carried over from
// the providers' observed naming habits; it flags keys like "pdf_report"
// and must not be tightened to extension-only matching.
func (c *Classifier) IsPDF(objectKey string) bool {
	if objectKey == "" {
		return false
	}
	lower := strings.ToLower(objectKey)
	if path.Ext(lower) == ".pdf" {
		return true
	}
	return strings.Contains(path.Base(lower), "pdf")
}

// Match applies both predicates to a canonical event.
func (c *Classifier) Match(event CanonicalEvent) bool {
	return c.IsUploadEvent(event.EventType) && c.IsPDF(event.ObjectKey)
}

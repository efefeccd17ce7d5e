package events

// Unknown is the sentinel every extractor substitutes for a source field it
// cannot resolve. Canonical events never carry empty or missing fields, so
// downstream code never branches on key presence.
const Unknown = "Unknown"

// Source identifies which extractor produced a canonical event.
type Source string

const (
	SourceS3Compatible       Source = "s3_compatible"
	SourceProviderNative     Source = "provider_native"
	SourceDirectNotification Source = "direct_notification"
	SourceUnknown            Source = "unknown"
)

// CanonicalEvent is the normalized, provider-agnostic record produced by any
// extractor. EventType keeps the provider's raw verb; providers use
// inconsistent vocabularies and collapsing them to an enum would silently
// drop valid upload verbs.
type CanonicalEvent struct {
	EventType string `json:"event_type"`
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"object_key"`
	Timestamp string `json:"timestamp"`
	Source    Source `json:"source"`
}

// UploadRecord is the subset of a canonical event kept once classification
// matches a PDF upload.
type UploadRecord struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	Bucket    string `json:"bucket"`
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp"`
	Source    Source `json:"source"`
}

// ProcessedEvent pairs a canonical event with its classification outcome.
type ProcessedEvent struct {
	CanonicalEvent
	Matched bool `json:"matched"`
}

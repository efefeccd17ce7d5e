package events

import "strconv"

// ExtractEvents runs the extractor matching kind over a decoded payload and
// returns zero or more canonical events. ingestedAt is the RFC3339 ingestion
// time used whenever the source payload carries no usable timestamp.
//
// Extractors are total over arbitrary JSON: absent or malformed fields
// degrade to the Unknown sentinel, never to an error.
func ExtractEvents(kind SchemaKind, payload map[string]any, ingestedAt string) []CanonicalEvent {
	switch kind {
	case SchemaRecordsArray:
		return extractRecordsArray(payload, ingestedAt)
	case SchemaEventsArray:
		return extractEventsArray(payload, ingestedAt)
	case SchemaDirectNotificationNested:
		return extractDirectNested(payload, ingestedAt)
	case SchemaDirectNotificationFlat, SchemaBucketNameObjectName:
		return extractDirectFlat(payload, ingestedAt)
	default:
		return extractSingleUnknown(payload, ingestedAt)
	}
}

// extractRecordsArray handles the S3-compatible batch shape. Non-object
// entries in the Records array are skipped.
func extractRecordsArray(payload map[string]any, ingestedAt string) []CanonicalEvent {
	records, _ := payload["Records"].([]any)
	out := make([]CanonicalEvent, 0, len(records))
	for _, raw := range records {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, s3StyleEvent(record, ingestedAt, SourceS3Compatible))
	}
	return out
}

func s3StyleEvent(record map[string]any, ingestedAt string, source Source) CanonicalEvent {
	return CanonicalEvent{
		EventType: stringField(record, "eventName"),
		Bucket:    stringPath(record, "s3", "bucket", "name"),
		ObjectKey: stringPath(record, "s3", "object", "key"),
		Timestamp: stringFieldOr(record, "eventTime", ingestedAt),
		Source:    source,
	}
}

// extractEventsArray handles the provider-native batch shape.
func extractEventsArray(payload map[string]any, ingestedAt string) []CanonicalEvent {
	entries, _ := payload["events"].([]any)
	out := make([]CanonicalEvent, 0, len(entries))
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, CanonicalEvent{
			EventType: stringField(entry, "eventType"),
			Bucket:    stringField(entry, "bucket"),
			ObjectKey: stringField(entry, "key"),
			Timestamp: stringFieldOr(entry, "time", ingestedAt),
			Source:    SourceProviderNative,
		})
	}
	return out
}

// extractDirectNested reads the nested notification object, falling back to
// the outer payload's bucket/key/operation for any field the nested object
// omits.
func extractDirectNested(payload map[string]any, ingestedAt string) []CanonicalEvent {
	notification, _ := payload["notification"].(map[string]any)

	bucket := stringField(notification, "bucket_name")
	if bucket == Unknown {
		bucket = stringField(payload, "bucket")
	}
	key := stringField(notification, "object_name")
	if key == Unknown {
		key = stringField(payload, "key")
	}
	eventType := stringField(notification, "event_type")
	if eventType == Unknown {
		eventType = stringField(payload, "operation")
	}

	return []CanonicalEvent{{
		EventType: eventType,
		Bucket:    bucket,
		ObjectKey: key,
		Timestamp: ingestedAt,
		Source:    SourceDirectNotification,
	}}
}

// extractDirectFlat covers both the bucket/key and bucket_name/object_name
// flat shapes. The event type resolves by precedence: an explicit event_type
// field, then a string notification field, then operation.
func extractDirectFlat(payload map[string]any, ingestedAt string) []CanonicalEvent {
	bucket := stringField(payload, "bucket")
	if bucket == Unknown {
		bucket = stringField(payload, "bucket_name")
	}
	key := stringField(payload, "key")
	if key == Unknown {
		key = stringField(payload, "object_name")
	}

	eventType := stringField(payload, "event_type")
	if eventType == Unknown {
		eventType = stringField(payload, "notification")
	}
	if eventType == Unknown {
		eventType = stringField(payload, "operation")
	}

	return []CanonicalEvent{{
		EventType: eventType,
		Bucket:    bucket,
		ObjectKey: key,
		Timestamp: ingestedAt,
		Source:    SourceDirectNotification,
	}}
}

// extractSingleUnknown attempts an S3-record-style read of the whole payload.
// It yields nothing when every identifying field is absent.
func extractSingleUnknown(payload map[string]any, ingestedAt string) []CanonicalEvent {
	event := s3StyleEvent(payload, ingestedAt, SourceUnknown)
	if event.EventType == Unknown && event.Bucket == Unknown && event.ObjectKey == Unknown {
		return nil
	}
	return []CanonicalEvent{event}
}

// stringField resolves obj[key] to a string, coercing JSON scalars and
// degrading anything else to Unknown. A nil map is fine.
func stringField(obj map[string]any, key string) string {
	return stringFieldOr(obj, key, Unknown)
}

func stringFieldOr(obj map[string]any, key string, fallback string) string {
	value, ok := obj[key]
	if !ok {
		return fallback
	}
	return stringify(value, fallback)
}

// stringPath walks nested objects and resolves the leaf like stringField.
func stringPath(obj map[string]any, path ...string) string {
	current := obj
	for i, key := range path {
		if i == len(path)-1 {
			return stringField(current, key)
		}
		next, ok := current[key].(map[string]any)
		if !ok {
			return Unknown
		}
		current = next
	}
	return Unknown
}

func stringify(value any, fallback string) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fallback
	}
}

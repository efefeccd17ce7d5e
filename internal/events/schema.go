package events

// SchemaKind tags which of the known notification shapes a decoded payload
// matches.
type SchemaKind int

const (
	// SchemaRecordsArray is the S3-compatible batch shape: {"Records": [...]}.
	SchemaRecordsArray SchemaKind = iota
	// SchemaEventsArray is the provider-native batch shape: {"events": [...]}.
	SchemaEventsArray
	// SchemaDirectNotificationNested carries a nested "notification" object
	// alongside a top-level "bucket".
	SchemaDirectNotificationNested
	// SchemaDirectNotificationFlat carries "bucket" plus "key" or
	// "object_name" at the top level.
	SchemaDirectNotificationFlat
	// SchemaBucketNameObjectName uses the "bucket_name"/"object_name" pair.
	SchemaBucketNameObjectName
	// SchemaSingleUnknown is anything else; extraction is best effort.
	SchemaSingleUnknown
)

func (k SchemaKind) String() string {
	switch k {
	case SchemaRecordsArray:
		return "records_array"
	case SchemaEventsArray:
		return "events_array"
	case SchemaDirectNotificationNested:
		return "direct_notification_nested"
	case SchemaDirectNotificationFlat:
		return "direct_notification_flat"
	case SchemaBucketNameObjectName:
		return "bucket_name_object_name"
	default:
		return "single_unknown"
	}
}

// DetectSchema inspects a decoded JSON object and selects the shape it
// matches. The shapes overlap in key names, so the branch order is
// first-match-wins and must not be reordered: a payload with both "bucket"
// and a nested "notification" object must resolve to the nested shape before
// the flat checks get a chance.
func DetectSchema(payload map[string]any) SchemaKind {
	if _, ok := payload["Records"]; ok {
		return SchemaRecordsArray
	}
	if _, ok := payload["events"]; ok {
		return SchemaEventsArray
	}
	if _, ok := payload["bucket"]; ok {
		if _, nested := payload["notification"].(map[string]any); nested {
			return SchemaDirectNotificationNested
		}
		if _, ok := payload["key"]; ok {
			return SchemaDirectNotificationFlat
		}
		if _, ok := payload["object_name"]; ok {
			return SchemaDirectNotificationFlat
		}
	}
	if _, ok := payload["bucket_name"]; ok {
		if _, ok := payload["object_name"]; ok {
			return SchemaBucketNameObjectName
		}
	}
	return SchemaSingleUnknown
}

// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys used on extraction and library spans.
const (
	ItemIDKey     = "cover.item_id"
	ImageTypeKey  = "cover.image_type"
	SegmentsKey   = "cover.segments"
	FiltersKey    = "cover.filters"
	ExitCodeKey   = "cover.exit_code"
	ResultKey     = "cover.result"
	InputPathKey  = "cover.input_path"
	LibraryOpKey  = "library.op"
	ErrorTypeKey  = "error.type"
	ContainerKey  = "media.container"
	StreamIdxKey  = "media.stream_index"
	DurationMSKey = "media.duration_ms"
)

// ExtractionAttributes describes the planned extraction.
func ExtractionAttributes(itemID, imageType string, segments int, filters []string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(ItemIDKey, itemID),
		attribute.String(ImageTypeKey, imageType),
		attribute.Int(SegmentsKey, segments),
	}
	if len(filters) > 0 {
		attrs = append(attrs, attribute.StringSlice(FiltersKey, filters))
	}
	return attrs
}

// MediaAttributes describes the source video.
func MediaAttributes(container string, streamIndex int, durationMS float64) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if container != "" {
		attrs = append(attrs, attribute.String(ContainerKey, container))
	}
	attrs = append(attrs,
		attribute.Int(StreamIdxKey, streamIndex),
		attribute.Float64(DurationMSKey, durationMS),
	)
	return attrs
}

// ResultAttributes records how an extraction ended.
func ResultAttributes(result string, exitCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ResultKey, result),
		attribute.Int(ExitCodeKey, exitCode),
	}
}

// ErrorAttributes tags a span with an error classification.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ErrorTypeKey, errorType),
	}
}

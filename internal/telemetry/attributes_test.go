// SPDX-License-Identifier: MIT

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestExtractionAttributes(t *testing.T) {
	attrs := ExtractionAttributes("item-1", "primary", 10, nil)
	assert.Equal(t, []attribute.KeyValue{
		attribute.String(ItemIDKey, "item-1"),
		attribute.String(ImageTypeKey, "primary"),
		attribute.Int(SegmentsKey, 10),
	}, attrs)

	attrs = ExtractionAttributes("item-1", "thumb", 10, []string{"bwdif=0:-1:0"})
	assert.Len(t, attrs, 4)
	assert.Equal(t, attribute.Key(FiltersKey), attrs[3].Key)
}

func TestMediaAttributesSkipsEmptyContainer(t *testing.T) {
	assert.Len(t, MediaAttributes("", 0, 1000), 2)
	assert.Len(t, MediaAttributes("mkv", 1, 1000), 3)
}

func TestResultAttributes(t *testing.T) {
	attrs := ResultAttributes("failure", 1)
	assert.Equal(t, "failure", attrs[0].Value.AsString())
	assert.Equal(t, int64(1), attrs[1].Value.AsInt64())
}

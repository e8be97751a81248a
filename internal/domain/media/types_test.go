// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageType(t *testing.T) {
	tests := []struct {
		in   string
		want ImageType
		ok   bool
	}{
		{"primary", ImageTypePrimary, true},
		{"Thumb", ImageTypeThumb, true},
		{" PRIMARY ", ImageTypePrimary, true},
		{"backdrop", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseImageType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTicksRoundTrip(t *testing.T) {
	d := 90*time.Minute + 1500*time.Millisecond
	ticks := RunTimeTicks(d)
	assert.Equal(t, int64(d/time.Millisecond)*TicksPerMillisecond, ticks)
	assert.Equal(t, d, FromTicks(ticks))
	assert.InDelta(t, 5401500.0, TotalMilliseconds(d), 1e-9)
}

func TestItemJSONOmitsMissingStreamIndex(t *testing.T) {
	item := Item{ID: "a", Protocol: ProtocolFile, VideoType: VideoTypeFile}
	raw, err := json.Marshal(item)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "defaultVideoStreamIndex")

	item.DefaultVideoStreamIndex = IntPtr(0)
	raw, err = json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"defaultVideoStreamIndex":0`)
	assert.True(t, item.IsFileProtocol())
	assert.False(t, item.Is3D())
}

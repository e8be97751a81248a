// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import "time"

// TicksPerMillisecond is the number of 100ns ticks in one millisecond.
const TicksPerMillisecond = 10_000

// RunTimeTicks converts a duration to 100ns ticks.
func RunTimeTicks(d time.Duration) int64 {
	return int64(d / 100)
}

// FromTicks converts 100ns ticks to a duration.
func FromTicks(ticks int64) time.Duration {
	return time.Duration(ticks) * 100
}

// TotalMilliseconds returns the duration as fractional milliseconds.
func TotalMilliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

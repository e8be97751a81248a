// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("ANIMCOVER_TEST_STR", "value")
	assert.Equal(t, "value", ParseString("ANIMCOVER_TEST_STR", "def"))

	t.Setenv("ANIMCOVER_TEST_STR", "")
	assert.Equal(t, "def", ParseString("ANIMCOVER_TEST_STR", "def"))
	assert.Equal(t, "def", ParseString("ANIMCOVER_TEST_UNSET", "def"))
}

func TestParseInt(t *testing.T) {
	t.Setenv("ANIMCOVER_TEST_INT", "42")
	assert.Equal(t, 42, ParseInt("ANIMCOVER_TEST_INT", 1))

	t.Setenv("ANIMCOVER_TEST_INT", "forty-two")
	assert.Equal(t, 1, ParseInt("ANIMCOVER_TEST_INT", 1))
}

func TestParseDuration(t *testing.T) {
	t.Setenv("ANIMCOVER_TEST_DUR", "1m30s")
	assert.Equal(t, 90*time.Second, ParseDuration("ANIMCOVER_TEST_DUR", time.Second))

	t.Setenv("ANIMCOVER_TEST_DUR", "90")
	assert.Equal(t, time.Second, ParseDuration("ANIMCOVER_TEST_DUR", time.Second))
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"true", "1", "YES"} {
		t.Setenv("ANIMCOVER_TEST_BOOL", v)
		assert.True(t, ParseBool("ANIMCOVER_TEST_BOOL", false), v)
	}
	for _, v := range []string{"false", "0", "No"} {
		t.Setenv("ANIMCOVER_TEST_BOOL", v)
		assert.False(t, ParseBool("ANIMCOVER_TEST_BOOL", true), v)
	}
	t.Setenv("ANIMCOVER_TEST_BOOL", "maybe")
	assert.True(t, ParseBool("ANIMCOVER_TEST_BOOL", true))
}

func TestParseFloat(t *testing.T) {
	t.Setenv("ANIMCOVER_TEST_FLOAT", "0.25")
	assert.InDelta(t, 0.25, ParseFloat("ANIMCOVER_TEST_FLOAT", 1), 1e-9)

	t.Setenv("ANIMCOVER_TEST_FLOAT", "x")
	assert.InDelta(t, 1.0, ParseFloat("ANIMCOVER_TEST_FLOAT", 1), 1e-9)
}

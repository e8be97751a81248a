// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/animcover/internal/domain/media"
	"github.com/ManuGH/animcover/internal/library"
)

func TestParseExtractArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    extractOptions
		wantErr bool
	}{
		{
			name: "defaults to primary",
			args: []string{"-in", "/m/a.mkv", "-out", "/tmp/a.webp"},
			want: extractOptions{in: "/m/a.mkv", out: "/tmp/a.webp", imageType: media.ImageTypePrimary},
		},
		{
			name: "thumb with config",
			args: []string{"-config", "c.yaml", "-in", "a.mkv", "-out", "a.webp", "-type", "Thumb"},
			want: extractOptions{configPath: "c.yaml", in: "a.mkv", out: "a.webp", imageType: media.ImageTypeThumb},
		},
		{name: "missing in", args: []string{"-out", "a.webp"}, wantErr: true},
		{name: "missing out", args: []string{"-in", "a.mkv"}, wantErr: true},
		{name: "bad type", args: []string{"-in", "a.mkv", "-out", "a.webp", "-type", "banner"}, wantErr: true},
		{name: "unknown flag", args: []string{"-bogus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExtractArgs(tt.args, io.Discard)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPublish_ReplacesDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "output.webp")
	dst := filepath.Join(dir, "cover.webp")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o600))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o600))

	require.NoError(t, publish(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files may remain")
}

func TestPublish_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := publish(filepath.Join(dir, "nope.webp"), filepath.Join(dir, "cover.webp"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "cover.webp"))
	assert.True(t, os.IsNotExist(statErr))
}

func newLibraryDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.db")
	store, err := library.NewStore(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	return path
}

func TestVerifyLibrary(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, verifyLibrary(ctx, filepath.Join(t.TempDir(), "missing.db")))
	require.NoError(t, verifyLibrary(ctx, newLibraryDB(t)))

	garbage := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(garbage, bytes.Repeat([]byte("not a database "), 512), 0o600))
	require.Error(t, verifyLibrary(ctx, garbage))
}

func TestSweepScratch(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "0b7e4c1e-stale")
	require.NoError(t, os.MkdirAll(stale, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "output.webp"), []byte("x"), 0o600))
	keep := filepath.Join(root, "README")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o600))

	sweepScratch(root)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(keep)
	assert.NoError(t, err)

	// Missing root is not an error.
	sweepScratch(filepath.Join(root, "missing"))
}

func TestStorageCLI(t *testing.T) {
	ctx := context.Background()
	db := newLibraryDB(t)

	tests := []struct {
		name string
		args []string
		code int
		out  string
	}{
		{name: "help", args: nil, code: 0, out: "Usage:"},
		{name: "verify quick", args: []string{"verify", "--path", db}, code: 0, out: "Integrity verified: ok"},
		{name: "verify full", args: []string{"verify", "--path", db, "--mode", "full"}, code: 0, out: "Integrity verified: ok"},
		{name: "bad mode", args: []string{"verify", "--path", db, "--mode", "deep"}, code: 2},
		{name: "missing file", args: []string{"verify", "--path", db + ".missing"}, code: 2},
		{name: "unknown subcommand", args: []string{"repair"}, code: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := storageCLI(ctx, tt.args, &stdout, &stderr)
			assert.Equal(t, tt.code, code, stderr.String())
			if tt.out != "" {
				assert.Contains(t, stdout.String(), tt.out)
			}
		})
	}
}

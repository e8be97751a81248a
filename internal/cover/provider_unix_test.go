// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build unix

package cover

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/animcover/internal/domain/media"
	"github.com/ManuGH/animcover/internal/supervisor"
)

// scriptEncoder runs a shell script in place of ffmpeg. The script sees the
// real argument list; the output path is the last argument.
type scriptEncoder struct {
	fakeEncoder
	path string
}

func (s scriptEncoder) EncoderPath() string { return s.path }

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)) // #nosec G306 - test stub must be executable
	return path
}

func TestGetImageWithSupervisedEncoder(t *testing.T) {
	enc := scriptEncoder{path: writeScript(t, `for last; do :; done
printf 'RIFF\0\0\0\0WEBP' > "$last"
`)}
	sup := supervisor.New(supervisor.Options{})
	defer sup.Close()

	p := NewProvider(videoStreams(), enc, sup, t.TempDir())
	resp, err := p.GetImage(context.Background(), movie(), media.ImageTypePrimary)
	require.NoError(t, err)
	require.True(t, resp.HasImage)

	info, err := os.Stat(resp.Path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Zero(t, sup.Active())
}

func TestGetImageEncoderFailureWithSupervisor(t *testing.T) {
	root := t.TempDir()
	enc := scriptEncoder{path: writeScript(t, "exit 1\n")}
	sup := supervisor.New(supervisor.Options{})
	defer sup.Close()

	p := NewProvider(videoStreams(), enc, sup, root)
	_, err := p.GetImage(context.Background(), movie(), media.ImageTypePrimary)
	var xerr *ExtractionError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, 1, xerr.ExitCode)
	assert.Empty(t, entries(t, root))
}

func TestGetImageCancelKillsEncoder(t *testing.T) {
	root := t.TempDir()
	enc := scriptEncoder{path: writeScript(t, "sleep 100\n")}
	sup := supervisor.New(supervisor.Options{})
	defer sup.Close()

	p := NewProvider(videoStreams(), enc, sup, root)
	ctx, cancel := context.WithCancel(context.Background())

	type outcome struct {
		resp Response
		err  error
	}
	out := make(chan outcome, 1)
	go func() {
		resp, err := p.GetImage(ctx, movie(), media.ImageTypePrimary)
		out <- outcome{resp, err}
	}()

	require.Eventually(t, func() bool { return sup.Active() == 1 }, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case o := <-out:
		require.NoError(t, o.err)
		assert.False(t, o.resp.HasImage)
	case <-time.After(5 * time.Second):
		t.Fatal("GetImage did not return after cancellation")
	}
	assert.Zero(t, sup.Active())
	assert.Empty(t, entries(t, root))
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build !windows

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// publish copies src to dst atomically: readers see the old file or the
// complete new one, never a partial image.
func publish(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open extracted image: %w", err)
	}
	defer func() { _ = in.Close() }()

	pending, err := renameio.NewPendingFile(dst, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", dst, err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := io.Copy(pending, in); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", dst, err)
	}
	return nil
}

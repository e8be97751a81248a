// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ManuGH/animcover/internal/cover/plan"
	"github.com/ManuGH/animcover/internal/supervisor"
)

// Image is a validated encoder output.
type Image struct {
	Path string
	Size int64
}

// Validate decides whether a supervised run produced a usable image.
// Success requires a completed run, exit code 0 and a non-empty output file.
func Validate(res supervisor.Result, p plan.Plan) (Image, error) {
	if res.Cancelled {
		return Image{}, ErrCancelled
	}

	fail := func(reason string) (Image, error) {
		return Image{}, &ExtractionError{InputPath: p.InputPath, ExitCode: res.ExitCode, Reason: reason}
	}
	if !res.Completed {
		return fail(ReasonNotCompleted)
	}
	if res.ExitCode != 0 {
		return fail(ReasonExitCode)
	}

	info, err := os.Stat(p.OutputPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail(ReasonNoOutput)
	case err != nil:
		return fail(fmt.Sprintf("%s: %v", ReasonNoOutput, err))
	case !info.Mode().IsRegular():
		return fail(ReasonNoOutput)
	case info.Size() == 0:
		return fail(ReasonEmptyOutput)
	}
	return Image{Path: p.OutputPath, Size: info.Size()}, nil
}

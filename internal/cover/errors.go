// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cover

import (
	"errors"
	"fmt"
)

// ErrCancelled reports that the caller cancelled the extraction.
// GetImage surfaces it as "no image" rather than an error.
var ErrCancelled = errors.New("extraction cancelled")

// Failure reasons carried by ExtractionError.
const (
	ReasonNotCompleted = "encoder did not complete"
	ReasonExitCode     = "encoder exited with non-zero status"
	ReasonNoOutput     = "encoder produced no output"
	ReasonEmptyOutput  = "encoder produced empty output"
	ReasonTeardown     = "encoder could not be stopped"
	ReasonStart        = "encoder could not be started"
)

// ExtractionError is returned when the encoder ran but no usable image came out.
type ExtractionError struct {
	InputPath string
	ExitCode  int
	Reason    string
	// Err is the runner error behind the failure, if any.
	Err error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("animated cover extraction failed for %s: %s: %v", e.InputPath, e.Reason, e.Err)
	}
	return fmt.Sprintf("animated cover extraction failed for %s: %s (exit code %d)", e.InputPath, e.Reason, e.ExitCode)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// SetupError is returned when extraction could not be attempted at all.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("animated cover setup failed: %s: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

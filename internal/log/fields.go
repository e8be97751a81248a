// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldItemID    = "item_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldPID       = "pid"
	FieldExitCode  = "exit_code"
	FieldCommand   = "command"
	FieldState     = "state"

	// Media fields
	FieldInputPath  = "input_path"
	FieldOutputPath = "output_path"
	FieldContainer  = "container"
	FieldImageType  = "image_type"
	FieldDuration   = "duration_ms"

	// Path fields
	FieldPath       = "path"
	FieldScratchDir = "scratch_dir"
)

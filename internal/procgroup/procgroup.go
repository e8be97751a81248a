// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package procgroup

import (
	"errors"
	"os/exec"
	"time"

	"github.com/ManuGH/animcover/internal/log"
	"github.com/ManuGH/animcover/internal/metrics"
)

// ErrKillFailed is returned when a process group survives SIGKILL past the reap timeout.
var ErrKillFailed = errors.New("kill operation failed")

// Set configures the command to start in its own process group.
// Mandatory for Kill and Terminate to reach the whole tree.
func Set(cmd *exec.Cmd) {
	set(cmd)
}

// Kill forcefully stops the process group led by pid.
// A group that is already gone is not an error.
func Kill(pid int) error {
	if pid <= 0 {
		return nil
	}
	err := killTree(pid)
	record("SIGKILL", err)
	return err
}

// Terminate stops the process group led by pid.
// It requests a graceful stop, waits up to grace for done to close, then kills
// the group and waits up to timeout for the reaper to observe the exit.
// done must be closed by whoever owns cmd.Wait.
func Terminate(pid int, done <-chan struct{}, grace, timeout time.Duration) error {
	if pid <= 0 {
		return nil
	}

	err := interruptTree(pid)
	record("SIGTERM", err)
	if err != nil {
		log.L().Debug().Err(err).Int(log.FieldPID, pid).Msg("graceful stop signal failed")
	}

	select {
	case <-done:
		return nil
	case <-time.After(grace):
	}

	log.L().Warn().Int(log.FieldPID, pid).Dur("grace", grace).Msg("grace period exceeded, killing process group")
	if err := Kill(pid); err != nil {
		log.L().Warn().Err(err).Int(log.FieldPID, pid).Msg("kill signal failed")
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrKillFailed
	}
}

func record(signal string, err error) {
	if err != nil {
		metrics.IncProcTerminate(signal, "error")
		return
	}
	metrics.IncProcTerminate(signal, "sent")
}

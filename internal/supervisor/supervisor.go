// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package supervisor runs encoder processes under a global concurrency cap,
// with caller cancellation, exit-state capture and process-group teardown.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ManuGH/animcover/internal/log"
	"github.com/ManuGH/animcover/internal/metrics"
	"github.com/ManuGH/animcover/internal/procgroup"
)

const (
	// DefaultMaxConcurrent is the system-wide cap on running encoder processes.
	DefaultMaxConcurrent = 4
	// StopGrace is how long StopAll waits after SIGTERM before escalating.
	StopGrace = 500 * time.Millisecond
	// ReapTimeout bounds the wait for the reaper after SIGKILL.
	ReapTimeout = 5 * time.Second
)

var (
	ErrStart      = errors.New("start encoder process")
	ErrClosed     = errors.New("supervisor closed")
	ErrKillFailed = procgroup.ErrKillFailed
)

// Command is an executable and its argument list. Args are passed verbatim.
type Command struct {
	Path string
	Args []string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return c.Path + " " + strings.Join(c.Args, " ")
}

// Result is the observed outcome of a supervised run.
type Result struct {
	PID      int
	ExitCode int
	// Completed is true only when the process exited on its own.
	Completed bool
	// Cancelled is true when the caller's context ended the run.
	Cancelled bool
}

// Options tunes a Supervisor. Zero values select the defaults.
type Options struct {
	MaxConcurrent int64
	StopGrace     time.Duration
	ReapTimeout   time.Duration
}

// Supervisor owns the concurrency gate and the registry of live processes.
type Supervisor struct {
	gate        *semaphore.Weighted
	stopGrace   time.Duration
	reapTimeout time.Duration
	logger      zerolog.Logger

	mu     sync.Mutex
	procs  map[int]*Handle
	closed bool
}

// New returns a Supervisor. Callers must Close it to tear down running processes.
func New(opts Options) *Supervisor {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = StopGrace
	}
	if opts.ReapTimeout <= 0 {
		opts.ReapTimeout = ReapTimeout
	}
	return &Supervisor{
		gate:        semaphore.NewWeighted(opts.MaxConcurrent),
		stopGrace:   opts.StopGrace,
		reapTimeout: opts.ReapTimeout,
		logger:      log.WithComponent("supervisor"),
		procs:       make(map[int]*Handle),
	}
}

// Run starts cmd once a concurrency slot is free and waits for it to finish.
// The slot is held until the process is reaped.
//
// Cancelling ctx before a slot is acquired returns Cancelled without starting
// anything. Cancelling it while the process runs kills the whole process group
// and returns Cancelled once the process is reaped. Start failures wrap ErrStart.
func (s *Supervisor) Run(ctx context.Context, cmd Command) (Result, error) {
	logger := log.WithContext(ctx, s.logger)

	if s.isClosed() {
		return Result{ExitCode: ExitUnknown}, ErrClosed
	}

	waitStart := time.Now()
	if err := s.gate.Acquire(ctx, 1); err != nil {
		logger.Debug().Msg("cancelled while waiting for encoder slot")
		return Result{ExitCode: ExitUnknown, Cancelled: true}, nil
	}
	defer s.gate.Release(1)
	metrics.GateWait.Observe(time.Since(waitStart).Seconds())

	// Acquire may succeed on an already-cancelled context.
	if ctx.Err() != nil {
		return Result{ExitCode: ExitUnknown, Cancelled: true}, nil
	}

	h, err := s.start(cmd)
	if errors.Is(err, ErrClosed) {
		return Result{ExitCode: ExitUnknown}, err
	}
	if err != nil {
		metrics.EncoderStartTotal.WithLabelValues("error").Inc()
		logger.Error().Err(err).Str(log.FieldCommand, cmd.String()).Msg("encoder start failed")
		return Result{ExitCode: ExitUnknown}, err
	}
	metrics.EncoderStartTotal.WithLabelValues("ok").Inc()
	logger.Info().
		Int(log.FieldPID, h.pid).
		Str(log.FieldCommand, h.cmdline).
		Msg("encoder started")

	select {
	case <-h.done:
		return s.result(logger, h), nil
	case <-ctx.Done():
	}

	// Exit and cancellation raced; the exit wins.
	select {
	case <-h.done:
		return s.result(logger, h), nil
	default:
	}

	if h.markKilled() {
		logger.Warn().Int(log.FieldPID, h.pid).Msg("context cancelled, killing encoder process group")
		if err := procgroup.Kill(h.pid); err != nil {
			logger.Warn().Err(err).Int(log.FieldPID, h.pid).Msg("kill failed")
		}
	}

	select {
	case <-h.done:
	case <-time.After(s.reapTimeout):
		logger.Error().Int(log.FieldPID, h.pid).Dur("timeout", s.reapTimeout).Msg("encoder not reaped after kill")
		return Result{PID: h.pid, ExitCode: ExitUnknown, Cancelled: true}, ErrKillFailed
	}

	res := s.result(logger, h)
	res.Cancelled = true
	return res, nil
}

// start launches the process and registers its handle. The closed check and
// the registration share the lock so StopAll never misses a process.
func (s *Supervisor) start(c Command) (*Handle, error) {
	// #nosec G204 - binary and arguments come from the plan builder
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	procgroup.Set(cmd)

	h := newHandle(c.String())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrStart, err)
	}
	h.setRunning(cmd.Process.Pid)
	s.procs[h.pid] = h
	s.mu.Unlock()

	metrics.EncoderRunning.Inc()
	go s.reap(cmd, h)
	return h, nil
}

func (s *Supervisor) reap(cmd *exec.Cmd, h *Handle) {
	err := cmd.Wait()

	code := ExitUnknown
	if cmd.ProcessState != nil {
		// ProcessState.ExitCode is -1 for signalled exits.
		code = cmd.ProcessState.ExitCode()
	} else if err == nil {
		code = 0
	}
	state := h.finish(code)

	s.mu.Lock()
	if s.procs[h.pid] == h {
		delete(s.procs, h.pid)
	}
	s.mu.Unlock()

	metrics.EncoderRunning.Dec()
	metrics.IncEncoderExit(exitReason(state, code))
	close(h.done)
}

func (s *Supervisor) result(logger zerolog.Logger, h *Handle) Result {
	state := h.State()
	res := Result{
		PID:       h.pid,
		ExitCode:  h.ExitCode(),
		Completed: state == StateExited,
	}
	logger.Info().
		Int(log.FieldPID, res.PID).
		Int(log.FieldExitCode, res.ExitCode).
		Str(log.FieldState, state.String()).
		Msg("encoder finished")
	return res
}

// StopAll drains the registry and stops every live process in parallel:
// SIGTERM to the group, StopGrace to exit, then SIGKILL.
func (s *Supervisor) StopAll() error {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.procs))
	for _, h := range s.procs {
		handles = append(handles, h)
	}
	s.procs = make(map[int]*Handle)
	s.mu.Unlock()

	if len(handles) == 0 {
		return nil
	}
	s.logger.Info().Int("count", len(handles)).Msg("stopping encoder processes")

	var g errgroup.Group
	for _, h := range handles {
		g.Go(func() error {
			return s.stop(h)
		})
	}
	return g.Wait()
}

func (s *Supervisor) stop(h *Handle) error {
	if !h.markKilled() {
		return nil
	}
	if err := procgroup.Terminate(h.pid, h.done, s.stopGrace, s.reapTimeout); err != nil {
		s.logger.Error().Err(err).Int(log.FieldPID, h.pid).Msg("encoder survived teardown")
		return fmt.Errorf("stop pid %d: %w", h.pid, err)
	}
	return nil
}

// Close rejects further Run calls and stops all live processes. Safe to call twice.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.StopAll()
}

// Active returns the number of registered, unreaped processes.
func (s *Supervisor) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

func (s *Supervisor) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func exitReason(state State, code int) string {
	switch {
	case state == StateKilled:
		return "killed"
	case code == 0:
		return "exit0"
	case code == ExitUnknown:
		return "unknown"
	default:
		return "exit_nonzero"
	}
}

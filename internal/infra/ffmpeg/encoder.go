package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/animcover/internal/log"
)

// filterProbeTimeout bounds the one-time `-filters` capability probe.
const filterProbeTimeout = 10 * time.Second

// Encoder describes the local ffmpeg binary and its capabilities.
type Encoder struct {
	bin string

	// listFilters returns the raw `-filters` listing. Replaced in tests.
	listFilters func(ctx context.Context, bin string) ([]byte, error)

	once     sync.Once
	filters  map[string]struct{}
	probeErr error
}

// NewEncoder returns an Encoder for the given binary path (or name on PATH).
func NewEncoder(bin string) *Encoder {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Encoder{bin: bin, listFilters: runFiltersProbe}
}

// EncoderPath returns the binary used to run extractions.
func (e *Encoder) EncoderPath() string {
	return e.bin
}

// SupportsFilter reports whether the encoder build ships the named filter.
// The capability list is probed once; a failed probe reports no filters.
func (e *Encoder) SupportsFilter(name string) bool {
	e.once.Do(e.loadFilters)
	_, ok := e.filters[strings.ToLower(name)]
	return ok
}

// Warmup runs the capability probe eagerly and returns its error, if any.
func (e *Encoder) Warmup() error {
	e.once.Do(e.loadFilters)
	return e.probeErr
}

// TimeParameter formats d as HH:MM:SS.mmm with hours not wrapped at 24.
func (e *Encoder) TimeParameter(d time.Duration) string {
	return FormatTime(d)
}

// InputFormat maps a container name to an explicit demuxer name, or "".
func (e *Encoder) InputFormat(container string) string {
	return InputFormat(container)
}

// FormatTime formats d as HH:MM:SS.mmm. Negative durations format as zero.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func (e *Encoder) loadFilters() {
	logger := log.WithComponent("ffmpeg")
	e.filters = map[string]struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), filterProbeTimeout)
	defer cancel()

	out, err := e.listFilters(ctx, e.bin)
	if err != nil {
		e.probeErr = fmt.Errorf("probe ffmpeg filters: %w", err)
		logger.Warn().Err(err).Str("bin", e.bin).Msg("filter probe failed, optional filters disabled")
		return
	}
	e.filters = parseFilters(out)
	logger.Debug().Str("bin", e.bin).Int("count", len(e.filters)).Msg("ffmpeg filters probed")
}

func runFiltersProbe(ctx context.Context, bin string) ([]byte, error) {
	// #nosec G204 - bin comes from operator config
	cmd := exec.CommandContext(ctx, bin, "-hide_banner", "-filters")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w (stderr: %s)", err, truncate(stderr.String(), 1024))
	}
	return out, nil
}

// parseFilters extracts filter names from `ffmpeg -filters` output.
// Filter lines look like: " TSC zscale            V->V       Apply resizing..."
func parseFilters(out []byte) map[string]struct{} {
	filters := make(map[string]struct{})
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 || !strings.Contains(fields[2], "->") {
			continue
		}
		filters[strings.ToLower(fields[1])] = struct{}{}
	}
	return filters
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// Package plan turns a video's duration and stream characteristics into the
// encoder invocation that renders its animated cover.
package plan

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/animcover/internal/domain/media"
)

const (
	SegmentCount    = 10
	SegmentDuration = 2 * time.Second
	OutputFPS       = 15
	OutputSize      = "426x240"
	OutputFileName  = "output.webp"

	DeinterlaceFilter = "bwdif=0:-1:0"
	TonemapFilter     = "zscale=t=linear:npl=100,format=gbrpf32le,zscale=p=bt709,tonemap=tonemap=hable:desat=0:peak=100,zscale=t=bt709:m=bt709,format=yuv420p"

	// tonemapRequires is the encoder filter the tonemap chain depends on.
	tonemapRequires = "zscale"
)

// Encoder is the subset of encoder capabilities a plan depends on.
type Encoder interface {
	SupportsFilter(name string) bool
	TimeParameter(d time.Duration) string
	InputFormat(container string) string
}

// Request is the input of Build. It is never mutated.
type Request struct {
	InputPath string
	// Container is optional; when it maps to a demuxer name it is forced with -f.
	Container           string
	Stream              media.MediaStream
	TotalDurationMillis float64
}

// Plan is a fully resolved encoder invocation.
type Plan struct {
	SegmentCount    int
	SegmentDuration time.Duration
	// Offsets holds the start time of each segment, in segment order.
	Offsets     []time.Duration
	Filters     []string
	FilterGraph string
	OutputFPS   int
	InputPath   string
	InputFormat string
	OutputPath  string
	Args        []string
}

// Build computes the sampling plan and encoder arguments for req.
// It is pure apart from the encoder capability lookup and never fails.
func Build(req Request, enc Encoder, outputPath string) Plan {
	p := Plan{
		SegmentCount:    SegmentCount,
		SegmentDuration: SegmentDuration,
		Offsets:         Offsets(req.TotalDurationMillis),
		Filters:         Filters(req.Stream, enc),
		OutputFPS:       OutputFPS,
		InputPath:       req.InputPath,
		InputFormat:     enc.InputFormat(req.Container),
		OutputPath:      outputPath,
	}
	p.FilterGraph = filterGraph(req.Stream.Index, p.Filters)
	p.Args = p.buildArgs(enc)
	return p
}

// Offsets returns the start of each segment: segment i (1-based) starts at
// (total/SegmentCount)*i. Non-finite or negative durations yield zero offsets.
func Offsets(totalMillis float64) []time.Duration {
	if math.IsNaN(totalMillis) || math.IsInf(totalMillis, 0) || totalMillis < 0 {
		totalMillis = 0
	}
	interval := totalMillis / SegmentCount

	out := make([]time.Duration, SegmentCount)
	for i := range out {
		ms := interval * float64(i+1)
		out[i] = time.Duration(ms * float64(time.Millisecond))
	}
	return out
}

// Filters returns the conditional filters for the stream in application order.
func Filters(stream media.MediaStream, enc Encoder) []string {
	var filters []string
	if stream.IsInterlaced {
		filters = append(filters, DeinterlaceFilter)
	}
	if IsHDRTransfer(stream.ColorTransfer) && enc.SupportsFilter(tonemapRequires) {
		filters = append(filters, TonemapFilter)
	}
	return filters
}

// IsHDRTransfer reports whether the transfer characteristic is PQ or HLG.
func IsHDRTransfer(transfer string) bool {
	return strings.EqualFold(transfer, "smpte2084") || strings.EqualFold(transfer, "arib-std-b67")
}

// filterGraph concatenates the segment inputs, resamples to OutputFPS and then
// applies the conditional filters, labelling the result [out1].
func filterGraph(streamIndex int, filters []string) string {
	var b strings.Builder
	for i := 0; i < SegmentCount; i++ {
		fmt.Fprintf(&b, "[%d:%d]", i, streamIndex)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=0[out];[out]fps=%d", SegmentCount, OutputFPS)
	for _, f := range filters {
		b.WriteByte(',')
		b.WriteString(f)
	}
	b.WriteString("[out1]")
	return b.String()
}

func (p Plan) buildArgs(enc Encoder) []string {
	args := make([]string, 0, SegmentCount*7+26)
	segment := enc.TimeParameter(p.SegmentDuration)
	for _, off := range p.Offsets {
		if p.InputFormat != "" {
			args = append(args, "-f", p.InputFormat)
		}
		args = append(args, "-ss", enc.TimeParameter(off), "-t", segment, "-i", p.InputPath)
	}

	return append(args,
		"-filter_complex", p.FilterGraph,
		"-threads", "2",
		"-vcodec", "libwebp",
		"-lossless", "0",
		"-compression_level", "4",
		"-q:v", "30",
		"-loop", "1",
		"-preset", "picture",
		"-an",
		"-vsync", "0",
		"-v", "quiet",
		"-s", OutputSize,
		"-map", "[out1]",
		p.OutputPath,
	)
}

// CommandLine renders Args as a single shell-like string for logging.
func (p Plan) CommandLine() string {
	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}

// NewOutputPath returns <root>/<uuid>/output.webp. The directory is not created.
func NewOutputPath(root string) string {
	return filepath.Join(root, uuid.NewString(), OutputFileName)
}

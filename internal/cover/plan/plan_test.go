package plan

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/animcover/internal/domain/media"
)

type stubEncoder struct {
	filters map[string]bool
	formats map[string]string
	probed  []string
}

func (s *stubEncoder) SupportsFilter(name string) bool {
	s.probed = append(s.probed, name)
	return s.filters[name]
}

func (s *stubEncoder) TimeParameter(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func (s *stubEncoder) InputFormat(container string) string {
	return s.formats[container]
}

func TestOffsets(t *testing.T) {
	offsets := Offsets(5_400_000) // 90 minutes
	require.Len(t, offsets, SegmentCount)
	for i, off := range offsets {
		assert.Equal(t, time.Duration(i+1)*540*time.Second, off, "segment %d", i+1)
	}
	assert.Equal(t, 90*time.Minute, offsets[SegmentCount-1])
}

func TestOffsetsStrictlyIncreasing(t *testing.T) {
	for _, total := range []float64{1, 999, 20_000, 7_261_337.5} {
		offsets := Offsets(total)
		for i := 1; i < len(offsets); i++ {
			assert.Greater(t, offsets[i], offsets[i-1], "total=%v i=%d", total, i)
		}
	}
}

func TestOffsetsDegenerateDurations(t *testing.T) {
	for _, total := range []float64{0, -10} {
		offsets := Offsets(total)
		require.Len(t, offsets, SegmentCount)
		for _, off := range offsets {
			assert.Zero(t, off)
		}
	}
}

func TestFilters(t *testing.T) {
	withZscale := &stubEncoder{filters: map[string]bool{"zscale": true}}
	without := &stubEncoder{}

	tests := []struct {
		name   string
		stream media.MediaStream
		enc    Encoder
		want   []string
	}{
		{"progressive sdr", media.MediaStream{ColorTransfer: "bt709"}, withZscale, nil},
		{"no transfer", media.MediaStream{}, withZscale, nil},
		{"interlaced", media.MediaStream{IsInterlaced: true}, withZscale, []string{DeinterlaceFilter}},
		{"pq", media.MediaStream{ColorTransfer: "smpte2084"}, withZscale, []string{TonemapFilter}},
		{"hlg upper", media.MediaStream{ColorTransfer: "ARIB-STD-B67"}, withZscale, []string{TonemapFilter}},
		{"pq without zscale", media.MediaStream{ColorTransfer: "smpte2084"}, without, nil},
		{"interlaced pq", media.MediaStream{IsInterlaced: true, ColorTransfer: "SMPTE2084"}, withZscale,
			[]string{DeinterlaceFilter, TonemapFilter}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filters(tt.stream, tt.enc))
		})
	}
}

func TestFiltersSkipsCapabilityLookupForSDR(t *testing.T) {
	enc := &stubEncoder{}
	Filters(media.MediaStream{ColorTransfer: "bt709", IsInterlaced: true}, enc)
	assert.Empty(t, enc.probed)
}

func TestBuildArgs(t *testing.T) {
	enc := &stubEncoder{}
	req := Request{
		InputPath:           "/media/Big Movie.mp4",
		Stream:              media.MediaStream{Index: 0, Type: media.StreamTypeVideo},
		TotalDurationMillis: 100_000,
	}
	p := Build(req, enc, "/scratch/abc/output.webp")

	var want []string
	for i := 1; i <= SegmentCount; i++ {
		want = append(want, "-ss", fmt.Sprintf("%d.000", i*10), "-t", "2.000", "-i", "/media/Big Movie.mp4")
	}
	want = append(want,
		"-filter_complex", "[0:0][1:0][2:0][3:0][4:0][5:0][6:0][7:0][8:0][9:0]concat=n=10:v=1:a=0[out];[out]fps=15[out1]",
		"-threads", "2", "-vcodec", "libwebp", "-lossless", "0", "-compression_level", "4",
		"-q:v", "30", "-loop", "1", "-preset", "picture", "-an", "-vsync", "0", "-v", "quiet",
		"-s", "426x240", "-map", "[out1]", "/scratch/abc/output.webp",
	)

	if diff := cmp.Diff(want, p.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, SegmentCount, p.SegmentCount)
	assert.Equal(t, 2*time.Second, p.SegmentDuration)
	assert.Equal(t, 15, p.OutputFPS)
	assert.Empty(t, p.InputFormat)
	assert.Equal(t, "/scratch/abc/output.webp", p.OutputPath)
}

func TestBuildFilterGraphWithConditionalFilters(t *testing.T) {
	enc := &stubEncoder{filters: map[string]bool{"zscale": true}}
	req := Request{
		InputPath:           "/media/show.mkv",
		Stream:              media.MediaStream{Index: 2, IsInterlaced: true, ColorTransfer: "smpte2084"},
		TotalDurationMillis: 60_000,
	}
	p := Build(req, enc, "/scratch/x/output.webp")

	assert.True(t, strings.HasPrefix(p.FilterGraph, "[0:2][1:2]"))
	assert.True(t, strings.HasSuffix(p.FilterGraph, "[out];[out]fps=15,"+DeinterlaceFilter+","+TonemapFilter+"[out1]"))
	assert.Equal(t, []string{DeinterlaceFilter, TonemapFilter}, p.Filters)
}

func TestBuildForcesInputFormatPerInput(t *testing.T) {
	enc := &stubEncoder{formats: map[string]string{"mkv": "matroska"}}
	p := Build(Request{InputPath: "/media/a.mkv", Container: "mkv", TotalDurationMillis: 1000}, enc, "/s/o.webp")

	assert.Equal(t, "matroska", p.InputFormat)
	require.GreaterOrEqual(t, len(p.Args), 8)
	assert.Equal(t, []string{"-f", "matroska", "-ss"}, p.Args[:3], "input format leads each segment")

	count := 0
	for i, a := range p.Args {
		if a == "-f" {
			count++
			require.Less(t, i+7, len(p.Args))
			assert.Equal(t, "matroska", p.Args[i+1])
			assert.Equal(t, "-ss", p.Args[i+2])
			assert.Equal(t, "-t", p.Args[i+4])
			assert.Equal(t, "-i", p.Args[i+6])
			assert.Equal(t, "/media/a.mkv", p.Args[i+7])
		}
	}
	assert.Equal(t, SegmentCount, count)
}

func TestBuildDoesNotMutateRequest(t *testing.T) {
	req := Request{InputPath: "/m.mp4", Container: "mp4", Stream: media.MediaStream{Index: 1}, TotalDurationMillis: 42}
	before := req
	Build(req, &stubEncoder{}, "/s/o.webp")
	assert.Equal(t, before, req)
}

func TestCommandLineQuotesSpaces(t *testing.T) {
	p := Plan{Args: []string{"-i", "/media/Big Movie.mp4", "-map", "[out1]"}}
	assert.Equal(t, `-i "/media/Big Movie.mp4" -map [out1]`, p.CommandLine())
}

func TestNewOutputPath(t *testing.T) {
	root := filepath.Join("var", "scratch")
	a := NewOutputPath(root)
	b := NewOutputPath(root)

	assert.NotEqual(t, a, b)
	assert.Equal(t, OutputFileName, filepath.Base(a))
	assert.Equal(t, root, filepath.Dir(filepath.Dir(a)))
	assert.NotEqual(t, filepath.Dir(a), filepath.Dir(b))
}

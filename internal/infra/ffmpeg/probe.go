package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/animcover/internal/domain/media"
	"github.com/ManuGH/animcover/internal/log"
)

// ErrNoStreams is returned when ffprobe yields no decodable stream.
var ErrNoStreams = errors.New("ffprobe returned no usable streams")

// ProbeStream is one stream of a probed file.
type ProbeStream struct {
	Index         int
	Type          media.StreamType
	Codec         string
	Width         int
	Height        int
	Interlaced    bool
	ColorTransfer string
}

// ProbeResult is the subset of ffprobe output the library catalogs.
type ProbeResult struct {
	FormatNames []string
	Container   string
	Duration    time.Duration
	Streams     []ProbeStream
	// Video3DFormat is non-empty for stereoscopic video.
	Video3DFormat string
}

// Prober runs ffprobe against local files.
type Prober struct {
	bin string
}

// NewProber returns a Prober using the given ffprobe binary.
func NewProber(bin string) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{bin: bin}
}

// Probe executes ffprobe and returns parsed stream information.
func (p *Prober) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	// #nosec G204 - bin comes from operator config; path is passed as a single argument
	cmd := exec.CommandContext(ctx, p.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	res, parseErr := parseProbe(out)
	if parseErr == nil {
		if err != nil {
			logger := log.WithComponent("ffprobe")
			logger.Warn().Err(err).
				Str(log.FieldPath, path).
				Str("stderr", truncate(stderr.String(), 4096)).
				Msg("ffprobe non-zero exit but JSON accepted")
		}
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w (stderr: %s)", err, truncate(stderr.String(), 4096))
	}
	return nil, parseErr
}

type probeData struct {
	Streams []struct {
		Index         int               `json:"index"`
		CodecType     string            `json:"codec_type"`
		CodecName     string            `json:"codec_name"`
		Width         int               `json:"width,omitempty"`
		Height        int               `json:"height,omitempty"`
		FieldOrder    string            `json:"field_order,omitempty"`
		ColorTransfer string            `json:"color_transfer,omitempty"`
		Tags          map[string]string `json:"tags,omitempty"`
		SideDataList  []probeSideData   `json:"side_data_list,omitempty"`
		Disposition   map[string]int    `json:"disposition,omitempty"`
	} `json:"streams"`
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

type probeSideData struct {
	SideDataType string `json:"side_data_type"`
	Type         string `json:"type,omitempty"`
	Inverted     int    `json:"inverted,omitempty"`
}

func parseProbe(out []byte) (*ProbeResult, error) {
	var data probeData
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	res := &ProbeResult{}
	for _, s := range data.Streams {
		if s.CodecName == "" {
			continue
		}
		// Cover art is exposed as a video stream; it is not the title's video.
		if s.Disposition["attached_pic"] == 1 {
			continue
		}
		var typ media.StreamType
		switch s.CodecType {
		case "video":
			typ = media.StreamTypeVideo
		case "audio":
			typ = media.StreamTypeAudio
		case "subtitle":
			typ = media.StreamTypeSubtitle
		default:
			continue
		}

		ps := ProbeStream{
			Index:  s.Index,
			Type:   typ,
			Codec:  s.CodecName,
			Width:  s.Width,
			Height: s.Height,
		}
		if typ == media.StreamTypeVideo {
			ps.Interlaced = s.FieldOrder != "" && s.FieldOrder != "progressive" && s.FieldOrder != "unknown"
			if s.ColorTransfer != "unknown" {
				ps.ColorTransfer = s.ColorTransfer
			}
			if res.Video3DFormat == "" {
				res.Video3DFormat = stereoFormat(s.Tags, s.SideDataList)
			}
		}
		res.Streams = append(res.Streams, ps)
	}
	if len(res.Streams) == 0 {
		return nil, ErrNoStreams
	}

	if data.Format.Duration != "" {
		if secs, err := strconv.ParseFloat(data.Format.Duration, 64); err == nil && secs > 0 {
			res.Duration = time.Duration(secs * float64(time.Second))
		}
	}

	for _, p := range strings.Split(data.Format.FormatName, ",") {
		if t := strings.TrimSpace(p); t != "" {
			res.FormatNames = append(res.FormatNames, t)
		}
	}
	res.Container = canonicalContainer(res.FormatNames)
	return res, nil
}

// canonicalContainer picks a short container name from ffprobe's format list.
func canonicalContainer(names []string) string {
	for _, n := range names {
		switch n {
		case "mpegts":
			return "ts"
		case "matroska":
			return "mkv"
		case "mp4":
			return "mp4"
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

func stereoFormat(tags map[string]string, side []probeSideData) string {
	for k, v := range tags {
		if strings.EqualFold(k, "stereo_mode") {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" && v != "mono" {
				return v
			}
		}
	}
	for _, sd := range side {
		if sd.SideDataType != "Stereo 3D" {
			continue
		}
		t := strings.ToLower(strings.TrimSpace(sd.Type))
		if t != "" && t != "2d" {
			return strings.ReplaceAll(t, " ", "_")
		}
	}
	return ""
}

package ffmpeg

import "strings"

// demuxerHints maps container names to demuxers that can be forced with -f.
// Anything else (m2ts, vob, mpeg, iso, ...) is left for ffmpeg to sniff.
var demuxerHints = map[string]string{
	"mkv":      "matroska",
	"mk3d":     "matroska",
	"matroska": "matroska",
	"webm":     "webm",
	"ts":       "mpegts",
	"mpegts":   "mpegts",
	"mp4":      "mp4",
	"mov":      "mov",
	"avi":      "avi",
	"flv":      "flv",
	"ogg":      "ogg",
	"ogv":      "ogg",
	"asf":      "asf",
	"mxf":      "mxf",
	"3gp":      "3gp",
}

// InputFormat returns the demuxer name to pass via -f, or "" to let ffmpeg probe.
func InputFormat(container string) string {
	return demuxerHints[strings.ToLower(strings.TrimSpace(container))]
}

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveFFprobeBin returns the ffprobe binary to use.
//
// Resolution order:
// 1) Explicit ffprobeBin (ANIMCOVER_FFPROBE_BIN)
// 2) The ffprobe next to a concrete ffmpeg path, if it exists
// 3) "ffprobe", resolved from PATH at exec time
func ResolveFFprobeBin(ffprobeBin, ffmpegBin string) string {
	return resolveFFprobeBinWithStat(ffprobeBin, ffmpegBin, os.Stat)
}

func resolveFFprobeBinWithStat(ffprobeBin, ffmpegBin string, stat func(string) (os.FileInfo, error)) string {
	if ffprobeBin = strings.TrimSpace(ffprobeBin); ffprobeBin != "" {
		return ffprobeBin
	}

	ffmpegBin = strings.TrimSpace(ffmpegBin)
	// A bare name is resolved from PATH; do not guess a sibling.
	if !strings.ContainsRune(ffmpegBin, filepath.Separator) && !strings.ContainsRune(ffmpegBin, '/') {
		return "ffprobe"
	}

	base := filepath.Base(ffmpegBin)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name != "ffmpeg" {
		return "ffprobe"
	}

	candidate := filepath.Join(filepath.Dir(ffmpegBin), "ffprobe"+filepath.Ext(base))
	if fi, err := stat(candidate); err == nil && fi != nil && !fi.IsDir() {
		return candidate
	}
	return "ffprobe"
}

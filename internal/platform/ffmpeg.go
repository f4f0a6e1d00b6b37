package platform

import (
	"os"
	"os/exec"
)

// FFmpegCommand is the executable yt-dlp shells out to for merging and
// transcoding. This program never invokes it directly.
const FFmpegCommand = "ffmpeg"

// LocateFFmpeg resolves the ffmpeg location used by download post-processing.
// An explicitly configured path wins; otherwise the system search path is
// consulted. The returned path is empty when ffmpeg cannot be found, which
// only matters for selections that merge or transcode.
func LocateFFmpeg(configuredPath string) (string, bool) {
	if configuredPath != "" {
		if info, err := os.Stat(configuredPath); err == nil && !info.IsDir() {
			return configuredPath, true
		}
		return configuredPath, false
	}

	path, err := exec.LookPath(FFmpegCommand)
	if err != nil {
		return "", false
	}
	return path, true
}

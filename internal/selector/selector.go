// Package selector maps a quality/format menu choice to the yt-dlp format
// selector expression and post-processing directive that go with it.
package selector

import (
	"strings"

	"github.com/vbraga/tubefetch/internal/model"
)

// Selector expressions understood by yt-dlp
const (
	SelectorBestOverall = "bestvideo+bestaudio/best"
	SelectorBestMp4     = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	SelectorBestAudio   = "bestaudio/best"
)

// Post-processing settings
const (
	MergeContainer  = "mp4"
	AudioCodecMP3   = "mp3"
	AudioQuality192 = "192K"
)

// Output templates
const (
	OutputTemplate         = "%(title)s [%(id)s].%(ext)s"
	OutputTemplatePreserve = "%(title)s.%(ext)s"
)

// Selection is the configuration handed to the download library: a format
// selector expression plus the post-processing directive it requires.
type Selection struct {
	Format       string
	ExtractAudio bool   // extract and transcode audio after download
	AudioCodec   string // target codec when ExtractAudio is set
	AudioQuality string // target bitrate when ExtractAudio is set
	MergeFormat  string // container to merge separate streams into, "" for none
}

// Build resolves a DownloadRequest into a Selection. ChoiceListFormats is
// resolved by the caller into a manual format ID before calling Build; if it
// arrives unresolved the default selection is returned.
func Build(req model.DownloadRequest) Selection {
	if req.ManualFormatID != "" {
		return forManualID(req.ManualFormatID)
	}

	switch req.Choice {
	case model.ChoiceBestMp4:
		return Selection{Format: SelectorBestMp4, MergeFormat: MergeContainer}
	case model.ChoiceBestAudioOriginal:
		return Selection{Format: SelectorBestAudio}
	case model.ChoiceBestAudioAsMp3:
		return Selection{
			Format:       SelectorBestAudio,
			ExtractAudio: true,
			AudioCodec:   AudioCodecMP3,
			AudioQuality: AudioQuality192,
		}
	}

	// ChoiceDefault, ChoiceBestOverall and an unresolved ChoiceListFormats
	// all fall back to the best overall selection.
	return Selection{Format: SelectorBestOverall, MergeFormat: MergeContainer}
}

// forManualID builds a selection whose format expression is exactly the ID
// the user typed. Compound IDs like "137+140" name separate video and audio
// streams and need a merge step.
func forManualID(id string) Selection {
	sel := Selection{Format: id}
	if strings.Contains(id, "+") || strings.Contains(id, "bestvideo") {
		sel.MergeFormat = MergeContainer
	}
	return sel
}

// NeedsFFmpeg reports whether the selection requires the external media tool
// for merging or transcoding.
func (s Selection) NeedsFFmpeg() bool {
	return s.ExtractAudio || s.MergeFormat != ""
}

// Template returns the output filename template for the request.
func Template(req model.DownloadRequest) string {
	if req.PreserveFilename {
		return OutputTemplatePreserve
	}
	return OutputTemplate
}

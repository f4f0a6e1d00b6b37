package model

// FormatChoice identifies one entry of the quality/format menu.
type FormatChoice int

const (
	// ChoiceDefault is the blank/0 menu answer; behaves as ChoiceBestOverall
	ChoiceDefault FormatChoice = iota

	// ChoiceBestOverall selects the highest quality video+audio in any container
	ChoiceBestOverall

	// ChoiceBestMp4 selects the highest quality constrained to MP4/M4A
	ChoiceBestMp4

	// ChoiceBestAudioOriginal selects the best audio-only stream as-is
	ChoiceBestAudioOriginal

	// ChoiceBestAudioAsMp3 selects the best audio-only stream and converts to MP3
	ChoiceBestAudioAsMp3

	// ChoiceListFormats lists available formats for manual selection
	ChoiceListFormats
)

// ParseFormatChoice maps a menu answer ("0".."5", blank) to a FormatChoice.
// Blank defaults to ChoiceDefault. Anything else is rejected.
func ParseFormatChoice(answer string) (FormatChoice, bool) {
	switch answer {
	case "", "0":
		return ChoiceDefault, true
	case "1":
		return ChoiceBestOverall, true
	case "2":
		return ChoiceBestMp4, true
	case "3":
		return ChoiceBestAudioOriginal, true
	case "4":
		return ChoiceBestAudioAsMp3, true
	case "5":
		return ChoiceListFormats, true
	}
	return ChoiceDefault, false
}

// String returns a short human readable name for the choice
func (fc FormatChoice) String() string {
	switch fc {
	case ChoiceBestOverall:
		return "best overall"
	case ChoiceBestMp4:
		return "best mp4"
	case ChoiceBestAudioOriginal:
		return "best audio"
	case ChoiceBestAudioAsMp3:
		return "best audio (mp3)"
	case ChoiceListFormats:
		return "manual format"
	}
	return "default"
}

// DownloadRequest describes one download attempt as gathered from the
// interactive prompts or from CLI flags. Built fresh per invocation and
// never persisted.
type DownloadRequest struct {
	URL              string
	DestDir          string
	Choice           FormatChoice
	ManualFormatID   string // set when the user picked a format ID by hand
	AllowPlaylist    bool   // download all playlist entries instead of just the video
	PreserveFilename bool   // omit the [id] suffix from output filenames
	SkipDownloaded   bool   // consult the download history before fetching
	Parallel         int    // playlist worker count, minimum 1
	Retries          int    // download attempts per entry, minimum 1
}

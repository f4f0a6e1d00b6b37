package model

import "fmt"

// FormatDescriptor describes a single stream format reported by yt-dlp.
// Instances live only for one listing/selection round-trip.
type FormatDescriptor struct {
	FormatID   string
	Ext        string
	Resolution string
	Note       string
	VCodec     string
	ACodec     string
	Filesize   int64 // bytes, 0 if unknown
}

// HasVideo reports whether the format carries a video stream
func (fd FormatDescriptor) HasVideo() bool {
	return fd.VCodec != "" && fd.VCodec != "none"
}

// HasAudio reports whether the format carries an audio stream
func (fd FormatDescriptor) HasAudio() bool {
	return fd.ACodec != "" && fd.ACodec != "none"
}

// Kind returns a short label for the stream composition
func (fd FormatDescriptor) Kind() string {
	switch {
	case fd.HasVideo() && fd.HasAudio():
		return "video+audio"
	case fd.HasVideo():
		return "video only"
	case fd.HasAudio():
		return "audio only"
	}
	return "metadata"
}

// FilesizeString returns the approximate size in MB, or "unknown"
func (fd FormatDescriptor) FilesizeString() string {
	if fd.Filesize <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%.2f MB", float64(fd.Filesize)/(1024*1024))
}

// VideoInfo is the result of a metadata probe for a URL. For playlists the
// Entries slice holds one element per playlist item and Formats is empty.
type VideoInfo struct {
	ID         string
	Title      string
	URL        string
	Duration   int    // seconds, 0 if unknown
	UploadDate string // YYYYMMDD, empty if unknown
	Formats    []FormatDescriptor
	Entries    []VideoInfo
}

// IsPlaylist reports whether the probe resolved to multiple entries
func (vi *VideoInfo) IsPlaylist() bool {
	return len(vi.Entries) > 0
}

// SelectableFormats filters out rows that carry neither audio nor video,
// such as storyboard and thumbnail pseudo-formats.
func (vi *VideoInfo) SelectableFormats() []FormatDescriptor {
	out := make([]FormatDescriptor, 0, len(vi.Formats))
	for _, f := range vi.Formats {
		if f.HasVideo() || f.HasAudio() {
			out = append(out, f)
		}
	}
	return out
}

package download

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vbraga/tubefetch/internal/model"
)

// probeFormat mirrors one element of the "formats" array yt-dlp emits
type probeFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Resolution     string  `json:"resolution"`
	FormatNote     string  `json:"format_note"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

// probeEntry mirrors the per-video JSON document yt-dlp emits
type probeEntry struct {
	Type       string        `json:"_type"`
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	WebpageURL string        `json:"webpage_url"`
	URL        string        `json:"url"`
	Duration   float64       `json:"duration"`
	UploadDate string        `json:"upload_date"`
	Formats    []probeFormat `json:"formats"`
	Entries    []probeEntry  `json:"entries"`
}

// parseProbeOutput parses the JSON output of a metadata probe. yt-dlp emits
// one JSON document per line; flat playlist probes yield one line per entry,
// single videos exactly one line, and a playlist document carries its
// entries inline.
func parseProbeOutput(output string) (*model.VideoInfo, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")

	var entries []probeEntry
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var entry probeEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Type == "playlist" || len(entry.Entries) > 0 {
			entries = append(entries, entry.Entries...)
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, goerr.New("no video metadata found in probe output",
			goerr.T(model.ErrTagDownload))
	}

	if len(entries) == 1 {
		info := entryToInfo(entries[0])
		return &info, nil
	}

	info := &model.VideoInfo{}
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		info.Entries = append(info.Entries, entryToInfo(e))
	}
	if len(info.Entries) == 0 {
		return nil, goerr.New("playlist probe returned no usable entries",
			goerr.T(model.ErrTagDownload))
	}
	return info, nil
}

func entryToInfo(e probeEntry) model.VideoInfo {
	info := model.VideoInfo{
		ID:         e.ID,
		Title:      e.Title,
		URL:        e.WebpageURL,
		Duration:   int(e.Duration),
		UploadDate: e.UploadDate,
	}
	if info.URL == "" {
		info.URL = e.URL
	}

	for _, f := range e.Formats {
		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}
		info.Formats = append(info.Formats, model.FormatDescriptor{
			FormatID:   f.FormatID,
			Ext:        f.Ext,
			Resolution: f.Resolution,
			Note:       f.FormatNote,
			VCodec:     f.VCodec,
			ACodec:     f.ACodec,
			Filesize:   int64(size),
		})
	}
	return info
}

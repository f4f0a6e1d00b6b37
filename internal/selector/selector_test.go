package selector

import (
	"testing"

	"github.com/vbraga/tubefetch/internal/model"
)

func TestBuildMenuChoices(t *testing.T) {
	tests := []struct {
		name         string
		choice       model.FormatChoice
		wantFormat   string
		wantMerge    string
		wantExtract  bool
		wantAudioFmt string
	}{
		{"default", model.ChoiceDefault, SelectorBestOverall, MergeContainer, false, ""},
		{"best overall", model.ChoiceBestOverall, SelectorBestOverall, MergeContainer, false, ""},
		{"best mp4", model.ChoiceBestMp4, SelectorBestMp4, MergeContainer, false, ""},
		{"audio original", model.ChoiceBestAudioOriginal, SelectorBestAudio, "", false, ""},
		{"audio mp3", model.ChoiceBestAudioAsMp3, SelectorBestAudio, "", true, AudioCodecMP3},
		{"unresolved listing", model.ChoiceListFormats, SelectorBestOverall, MergeContainer, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Build(model.DownloadRequest{Choice: tt.choice})

			if sel.Format != tt.wantFormat {
				t.Errorf("Expected format %q, got %q", tt.wantFormat, sel.Format)
			}
			if sel.MergeFormat != tt.wantMerge {
				t.Errorf("Expected merge format %q, got %q", tt.wantMerge, sel.MergeFormat)
			}
			if sel.ExtractAudio != tt.wantExtract {
				t.Errorf("Expected ExtractAudio=%v, got %v", tt.wantExtract, sel.ExtractAudio)
			}
			if sel.AudioCodec != tt.wantAudioFmt {
				t.Errorf("Expected audio codec %q, got %q", tt.wantAudioFmt, sel.AudioCodec)
			}
		})
	}
}

func TestBuildManualID(t *testing.T) {
	// The selector must be exactly the ID the user typed
	sel := Build(model.DownloadRequest{Choice: model.ChoiceListFormats, ManualFormatID: "22"})
	if sel.Format != "22" {
		t.Errorf("Expected format '22', got %q", sel.Format)
	}
	if sel.MergeFormat != "" {
		t.Errorf("Expected no merge for combined format, got %q", sel.MergeFormat)
	}

	// Compound IDs name separate streams and need merging
	sel = Build(model.DownloadRequest{ManualFormatID: "137+140"})
	if sel.Format != "137+140" {
		t.Errorf("Expected format '137+140', got %q", sel.Format)
	}
	if sel.MergeFormat != MergeContainer {
		t.Errorf("Expected merge format %q for compound ID, got %q", MergeContainer, sel.MergeFormat)
	}
}

func TestNeedsFFmpeg(t *testing.T) {
	if !Build(model.DownloadRequest{Choice: model.ChoiceBestAudioAsMp3}).NeedsFFmpeg() {
		t.Error("Expected mp3 conversion to need ffmpeg")
	}
	if !Build(model.DownloadRequest{Choice: model.ChoiceBestOverall}).NeedsFFmpeg() {
		t.Error("Expected merged download to need ffmpeg")
	}
	if Build(model.DownloadRequest{Choice: model.ChoiceBestAudioOriginal}).NeedsFFmpeg() {
		t.Error("Expected original audio download to not need ffmpeg")
	}
}

func TestTemplate(t *testing.T) {
	if got := Template(model.DownloadRequest{}); got != OutputTemplate {
		t.Errorf("Expected %q, got %q", OutputTemplate, got)
	}
	if got := Template(model.DownloadRequest{PreserveFilename: true}); got != OutputTemplatePreserve {
		t.Errorf("Expected %q, got %q", OutputTemplatePreserve, got)
	}
}

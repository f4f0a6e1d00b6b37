package download

import (
	"testing"

	"github.com/vbraga/tubefetch/internal/model"
)

func TestParseProbeOutputSingleVideo(t *testing.T) {
	output := `{"id":"abc123","title":"Test Video","webpage_url":"https://example.com/watch?v=abc123","duration":212.5,"upload_date":"20240315","formats":[` +
		`{"format_id":"sb0","ext":"mhtml","vcodec":"none","acodec":"none"},` +
		`{"format_id":"137","ext":"mp4","resolution":"1920x1080","format_note":"1080p","vcodec":"avc1","acodec":"none","filesize":52428800},` +
		`{"format_id":"140","ext":"m4a","resolution":"audio only","vcodec":"none","acodec":"mp4a","filesize_approx":3145728}]}`

	info, err := parseProbeOutput(output)
	if err != nil {
		t.Fatalf("Failed to parse probe output: %v", err)
	}

	if info.IsPlaylist() {
		t.Error("Expected single video, got playlist")
	}
	if info.ID != "abc123" {
		t.Errorf("Expected ID abc123, got %s", info.ID)
	}
	if info.Title != "Test Video" {
		t.Errorf("Expected title 'Test Video', got %s", info.Title)
	}
	if info.URL != "https://example.com/watch?v=abc123" {
		t.Errorf("Unexpected URL: %s", info.URL)
	}
	if info.Duration != 212 {
		t.Errorf("Expected duration 212, got %d", info.Duration)
	}
	if info.UploadDate != "20240315" {
		t.Errorf("Expected upload date 20240315, got %s", info.UploadDate)
	}

	if len(info.Formats) != 3 {
		t.Fatalf("Expected 3 formats, got %d", len(info.Formats))
	}

	selectable := info.SelectableFormats()
	if len(selectable) != 2 {
		t.Fatalf("Expected 2 selectable formats, got %d", len(selectable))
	}
	if selectable[0].FormatID != "137" {
		t.Errorf("Expected format 137 first, got %s", selectable[0].FormatID)
	}
	if selectable[0].Filesize != 52428800 {
		t.Errorf("Expected filesize from 'filesize', got %d", selectable[0].Filesize)
	}
	// filesize_approx is the fallback
	if selectable[1].Filesize != 3145728 {
		t.Errorf("Expected filesize from 'filesize_approx', got %d", selectable[1].Filesize)
	}
}

func TestParseProbeOutputFlatPlaylist(t *testing.T) {
	output := `{"id":"v1","title":"First","url":"https://example.com/watch?v=v1","duration":60}
{"id":"v2","title":"Second","url":"https://example.com/watch?v=v2","duration":120}
{"id":"v3","title":"Third","url":"https://example.com/watch?v=v3"}`

	info, err := parseProbeOutput(output)
	if err != nil {
		t.Fatalf("Failed to parse probe output: %v", err)
	}

	if !info.IsPlaylist() {
		t.Fatal("Expected playlist")
	}
	if len(info.Entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(info.Entries))
	}
	if info.Entries[1].ID != "v2" || info.Entries[1].Duration != 120 {
		t.Errorf("Unexpected second entry: %+v", info.Entries[1])
	}
	// "url" is used when "webpage_url" is absent
	if info.Entries[0].URL != "https://example.com/watch?v=v1" {
		t.Errorf("Unexpected entry URL: %s", info.Entries[0].URL)
	}
}

func TestParseProbeOutputPlaylistDocument(t *testing.T) {
	output := `{"_type":"playlist","id":"PL1","title":"My List","entries":[` +
		`{"id":"v1","title":"First","url":"https://example.com/watch?v=v1"},` +
		`{"id":"v2","title":"Second","url":"https://example.com/watch?v=v2"}]}`

	info, err := parseProbeOutput(output)
	if err != nil {
		t.Fatalf("Failed to parse probe output: %v", err)
	}
	if len(info.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(info.Entries))
	}
}

func TestParseProbeOutputIgnoresJunkLines(t *testing.T) {
	output := `WARNING: something happened
{"id":"v1","title":"Only","url":"https://example.com/watch?v=v1"}
not json at all`

	info, err := parseProbeOutput(output)
	if err != nil {
		t.Fatalf("Failed to parse probe output: %v", err)
	}
	if info.ID != "v1" {
		t.Errorf("Expected ID v1, got %s", info.ID)
	}
}

func TestParseProbeOutputEmpty(t *testing.T) {
	for _, output := range []string{"", "   \n  ", "garbage"} {
		_, err := parseProbeOutput(output)
		if err == nil {
			t.Errorf("Expected error for output %q", output)
		}
		if !model.IsDownloadError(err) {
			t.Errorf("Expected download error tag for output %q", output)
		}
	}
}

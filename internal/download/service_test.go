package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/lrstanley/go-ytdlp"

	"github.com/vbraga/tubefetch/internal/filter"
	"github.com/vbraga/tubefetch/internal/history"
	"github.com/vbraga/tubefetch/internal/model"
)

type stubHistory struct {
	mu         sync.Mutex
	downloaded map[string]bool
	recorded   []*history.Record
}

func (h *stubHistory) IsDownloaded(videoID string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.downloaded[videoID], nil
}

func (h *stubHistory) RecordDownload(rec *history.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recorded = append(h.recorded, rec)
	return nil
}

// fakeRunner answers the first invocation (the metadata probe) with
// probeOut and subsequent invocations (the downloads) per URL.
type fakeRunner struct {
	mu       sync.Mutex
	probeOut string
	probeErr error
	dlErr    map[string]error
	calls    []string
}

func (f *fakeRunner) run(_ context.Context, _ *ytdlp.Command, url string) (*ytdlp.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if len(f.calls) == 1 {
		if f.probeErr != nil {
			return nil, f.probeErr
		}
		return &ytdlp.Result{Stdout: f.probeOut}, nil
	}
	if err := f.dlErr[url]; err != nil {
		return nil, err
	}
	return &ytdlp.Result{}, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestService(runner *fakeRunner, hist HistoryStore) *Service {
	svc := NewService("", hist, nil)
	svc.run = runner.run
	return svc
}

func singleVideoRequest(t *testing.T) model.DownloadRequest {
	t.Helper()
	return model.DownloadRequest{
		URL:     "https://example.com/watch?v=v1",
		DestDir: t.TempDir(),
		Choice:  model.ChoiceBestOverall,
		Retries: 1,
	}
}

func TestFetchSingleVideoCompletes(t *testing.T) {
	runner := &fakeRunner{
		probeOut: `{"id":"v1","title":"Test","url":"https://example.com/watch?v=v1"}`,
	}
	hist := &stubHistory{downloaded: map[string]bool{}}
	svc := newTestService(runner, hist)

	report, err := svc.Fetch(context.Background(), singleVideoRequest(t), nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if report.Completed != 1 || report.Skipped != 0 || report.Failed != 0 {
		t.Errorf("Unexpected report: %+v", report)
	}
	if len(report.Tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(report.Tasks))
	}
	task := report.Tasks[0]
	if task.Status != model.TaskStatusCompleted {
		t.Errorf("Expected Completed, got %s", task.Status)
	}
	if task.VideoID != "v1" {
		t.Errorf("Expected video ID from probe, got %q", task.VideoID)
	}

	// Probe + one download
	if runner.callCount() != 2 {
		t.Errorf("Expected 2 library calls, got %d", runner.callCount())
	}

	if len(hist.recorded) != 1 {
		t.Fatalf("Expected 1 history record, got %d", len(hist.recorded))
	}
	if hist.recorded[0].VideoID != "v1" {
		t.Errorf("Expected recorded video ID v1, got %s", hist.recorded[0].VideoID)
	}
}

func TestFetchSkipsAlreadyDownloaded(t *testing.T) {
	runner := &fakeRunner{
		probeOut: `{"id":"v1","title":"Test","url":"https://example.com/watch?v=v1"}`,
	}
	hist := &stubHistory{downloaded: map[string]bool{"v1": true}}
	svc := newTestService(runner, hist)

	req := singleVideoRequest(t)
	req.SkipDownloaded = true

	report, err := svc.Fetch(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if report.Skipped != 1 || report.Completed != 0 {
		t.Errorf("Unexpected report: %+v", report)
	}
	if report.Tasks[0].SkipReason == "" {
		t.Error("Expected a skip reason")
	}
	// Only the probe ran
	if runner.callCount() != 1 {
		t.Errorf("Expected no download call, got %d calls", runner.callCount())
	}
}

func TestFetchSkipsExistingFile(t *testing.T) {
	runner := &fakeRunner{
		probeOut: `{"id":"v1","title":"Test","url":"https://example.com/watch?v=v1"}`,
	}
	svc := newTestService(runner, &stubHistory{downloaded: map[string]bool{}})

	req := singleVideoRequest(t)
	req.SkipDownloaded = true
	if err := os.WriteFile(filepath.Join(req.DestDir, "Test [v1].mp4"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	report, err := svc.Fetch(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if report.Skipped != 1 {
		t.Errorf("Expected existing file to be skipped, got %+v", report)
	}
}

func TestFetchPlaylistWithFilters(t *testing.T) {
	runner := &fakeRunner{
		probeOut: `{"id":"v1","title":"Short clip","url":"https://example.com/watch?v=v1","duration":30}
{"id":"v2","title":"Full episode","url":"https://example.com/watch?v=v2","duration":1800}
{"id":"v3","title":"Another episode","url":"https://example.com/watch?v=v3","duration":2400}`,
	}
	hist := &stubHistory{downloaded: map[string]bool{"v3": true}}
	svc := newTestService(runner, hist)

	req := singleVideoRequest(t)
	req.AllowPlaylist = true
	req.SkipDownloaded = true
	req.Parallel = 2

	filters := &filter.Set{MinDuration: 60}
	if err := filters.Compile(); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	report, err := svc.Fetch(context.Background(), req, filters)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if report.Completed != 1 {
		t.Errorf("Expected 1 completed, got %d", report.Completed)
	}
	if report.Skipped != 2 {
		t.Errorf("Expected 2 skipped, got %d", report.Skipped)
	}
	if report.Failed != 0 {
		t.Errorf("Expected 0 failed, got %d", report.Failed)
	}

	var completed *model.DownloadTask
	for _, task := range report.Tasks {
		if task.Status == model.TaskStatusCompleted {
			completed = task
		}
	}
	if completed == nil || completed.VideoID != "v2" {
		t.Errorf("Expected v2 to complete, got %+v", completed)
	}
}

func TestFetchProbeFailure(t *testing.T) {
	runner := &fakeRunner{probeErr: errors.New("network unreachable")}
	svc := newTestService(runner, nil)

	_, err := svc.Fetch(context.Background(), singleVideoRequest(t), nil)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !model.IsDownloadError(err) {
		t.Errorf("Expected download error tag, got %v", err)
	}
}

func TestFetchDownloadFailure(t *testing.T) {
	runner := &fakeRunner{
		probeOut: `{"id":"v1","title":"Test","url":"https://example.com/watch?v=v1"}`,
		dlErr:    map[string]error{"https://example.com/watch?v=v1": errors.New("extraction failed")},
	}
	svc := newTestService(runner, &stubHistory{downloaded: map[string]bool{}})

	report, err := svc.Fetch(context.Background(), singleVideoRequest(t), nil)
	if err != nil {
		t.Fatalf("Fetch should not fail outright: %v", err)
	}

	if report.Failed != 1 {
		t.Errorf("Expected 1 failed, got %+v", report)
	}
	task := report.Tasks[0]
	if task.Status != model.TaskStatusError {
		t.Errorf("Expected Error status, got %s", task.Status)
	}
	if !strings.Contains(task.LastError, "extraction failed") {
		t.Errorf("Expected error message preserved, got %q", task.LastError)
	}
}

func TestFetchInvalidDestination(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "occupied")
	if err := os.WriteFile(filePath, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	svc := newTestService(&fakeRunner{}, nil)
	req := model.DownloadRequest{URL: "https://example.com/v", DestDir: filePath}

	_, err := svc.Fetch(context.Background(), req, nil)
	if err == nil {
		t.Fatal("Expected error for unusable destination")
	}
	if !model.IsFilesystemError(err) {
		t.Errorf("Expected filesystem error tag, got %v", err)
	}
}

func TestListFormats(t *testing.T) {
	runner := &fakeRunner{
		probeOut: `{"id":"v1","title":"Test","url":"https://example.com/watch?v=v1","formats":[` +
			`{"format_id":"22","ext":"mp4","resolution":"1280x720","vcodec":"avc1","acodec":"mp4a"}]}`,
	}
	svc := newTestService(runner, nil)

	info, err := svc.ListFormats(context.Background(), "https://example.com/watch?v=v1")
	if err != nil {
		t.Fatalf("ListFormats failed: %v", err)
	}
	if info.Title != "Test" {
		t.Errorf("Expected title Test, got %s", info.Title)
	}
	if len(info.Formats) != 1 || info.Formats[0].FormatID != "22" {
		t.Errorf("Unexpected formats: %+v", info.Formats)
	}
}

func TestListFormatsError(t *testing.T) {
	runner := &fakeRunner{probeErr: errors.New("video unavailable")}
	svc := newTestService(runner, nil)

	_, err := svc.ListFormats(context.Background(), "https://example.com/gone")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !model.IsDownloadError(err) {
		t.Errorf("Expected download error tag, got %v", err)
	}
}

func TestUpdateCallback(t *testing.T) {
	svc := newTestService(&fakeRunner{}, nil)

	updateCalled := false
	var updatedTask *model.DownloadTask
	svc.SetUpdateCallback(func(task *model.DownloadTask) {
		updateCalled = true
		updatedTask = task
	})

	task := &model.DownloadTask{
		ID:     "test-id",
		URL:    "https://example.com/watch?v=test",
		Status: model.TaskStatusDownloading,
	}
	svc.notifyUpdate(task)

	if !updateCalled {
		t.Error("Expected update callback to be called")
	}
	if updatedTask == task {
		t.Error("Expected callback to receive a snapshot, not the live task")
	}
	if updatedTask.ID != task.ID || updatedTask.Status != task.Status {
		t.Errorf("Expected snapshot to carry the task fields, got %+v", updatedTask)
	}

	// Later writes to the live task must not show up in the snapshot the
	// callback already holds.
	task.Status = model.TaskStatusCompleted
	if updatedTask.Status != model.TaskStatusDownloading {
		t.Errorf("Expected snapshot status Downloading, got %s", updatedTask.Status)
	}
}

func TestTaskBookkeeping(t *testing.T) {
	runner := &fakeRunner{
		probeOut: `{"id":"v1","title":"Test","url":"https://example.com/watch?v=v1"}`,
	}
	svc := newTestService(runner, nil)

	report, err := svc.Fetch(context.Background(), singleVideoRequest(t), nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	task := report.Tasks[0]
	if !strings.HasPrefix(task.ID, "task-") {
		t.Errorf("Expected ID to start with 'task-', got: %s", task.ID)
	}
	if len(task.ID) != len("task-")+36 {
		t.Errorf("Expected ID length %d, got %d for ID: %s", len("task-")+36, len(task.ID), task.ID)
	}

	got, exists := svc.GetTask(task.ID)
	if !exists {
		t.Fatal("Expected task to be tracked")
	}
	if got != task {
		t.Error("Expected tracked task to be the same instance")
	}

	if len(svc.GetAllTasks()) != 1 {
		t.Errorf("Expected 1 tracked task, got %d", len(svc.GetAllTasks()))
	}

	_, exists = svc.GetTask("non-existing-id")
	if exists {
		t.Error("Expected task to not exist")
	}
}

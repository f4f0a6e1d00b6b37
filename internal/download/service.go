package download

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
	"github.com/m-mizutani/goerr/v2"

	"github.com/vbraga/tubefetch/internal/filter"
	"github.com/vbraga/tubefetch/internal/history"
	"github.com/vbraga/tubefetch/internal/model"
	"github.com/vbraga/tubefetch/internal/platform"
	"github.com/vbraga/tubefetch/internal/selector"
)

// Progress reporting interval
const (
	ProgressInterval = 500 * time.Millisecond
)

// commandRunner executes a configured yt-dlp command. Swapped in tests.
type commandRunner func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error)

// Service handles download operations by delegating to the external yt-dlp
// library. It keeps per-entry task bookkeeping so callers can render
// progress, but holds no state across Fetch invocations other than the
// shared history store.
type Service struct {
	tasks      map[string]*model.DownloadTask
	tasksMutex sync.RWMutex
	ffmpegPath string
	hist       HistoryStore
	logger     *slog.Logger
	onUpdate   func(*model.DownloadTask)
	run        commandRunner
}

// NewService creates a new download service. hist may be nil, in which case
// no dedupe checks or completion records happen.
func NewService(ffmpegPath string, hist HistoryStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tasks:      make(map[string]*model.DownloadTask),
		ffmpegPath: ffmpegPath,
		hist:       hist,
		logger:     logger,
		run: func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
			return dl.Run(ctx, url)
		},
	}
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.DownloadTask)) {
	s.onUpdate = callback
}

// GetTask returns a task by ID
func (s *Service) GetTask(id string) (*model.DownloadTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	return task, exists
}

// GetAllTasks returns all tasks
func (s *Service) GetAllTasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	return tasks
}

// ListFormats probes a URL and returns its metadata including the available
// stream formats. The result lives only for one listing round-trip.
func (s *Service) ListFormats(ctx context.Context, url string) (*model.VideoInfo, error) {
	dl := ytdlp.New().
		SkipDownload().
		PrintJSON().
		Quiet().
		NoPlaylist().
		NoCheckCertificates()
	if s.ffmpegPath != "" {
		dl = dl.FFmpegLocation(s.ffmpegPath)
	}

	result, err := s.run(ctx, dl, url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch video information",
			goerr.T(model.ErrTagDownload), goerr.V("url", url))
	}

	return parseProbeOutput(result.Stdout)
}

// Fetch resolves a DownloadRequest into one or more entries, applies skip
// rules, and downloads each entry with bounded retries. The returned error
// covers failures before any download started; per-entry outcomes live in
// the Report.
func (s *Service) Fetch(ctx context.Context, req model.DownloadRequest, filters *filter.Set) (*Report, error) {
	if err := platform.CreateDirectoryIfNotExists(req.DestDir); err != nil {
		return nil, goerr.Wrap(err, "cannot use destination directory",
			goerr.T(model.ErrTagFilesystem), goerr.V("dir", req.DestDir))
	}

	entries, err := s.resolveEntries(ctx, req)
	if err != nil {
		return nil, err
	}

	sel := selector.Build(req)
	s.logger.Debug("resolved download request",
		slog.String("format", sel.Format),
		slog.Int("entries", len(entries)))

	report := &Report{}

	parallel := req.Parallel
	if parallel > len(entries) {
		parallel = len(entries)
	}
	if parallel < 1 {
		parallel = 1
	}

	queue := make(chan model.VideoInfo)
	results := make(chan *model.DownloadTask)

	var wg sync.WaitGroup
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range queue {
				results <- s.processEntry(ctx, req, sel, filters, entry)
			}
		}()
	}

	go func() {
		for _, entry := range entries {
			queue <- entry
		}
		close(queue)
		wg.Wait()
		close(results)
	}()

	for task := range results {
		report.Tasks = append(report.Tasks, task)
		switch task.Status {
		case model.TaskStatusCompleted:
			report.Completed++
		case model.TaskStatusSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}

	return report, nil
}

// resolveEntries probes the URL and expands playlists. The probe is cheap
// (flat listing, no formats) and supplies the IDs the skip rules need.
func (s *Service) resolveEntries(ctx context.Context, req model.DownloadRequest) ([]model.VideoInfo, error) {
	dl := ytdlp.New().
		SkipDownload().
		PrintJSON().
		Quiet().
		FlatPlaylist().
		NoCheckCertificates()
	if !req.AllowPlaylist {
		dl = dl.NoPlaylist()
	}

	result, err := s.run(ctx, dl, req.URL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch video information",
			goerr.T(model.ErrTagDownload), goerr.V("url", req.URL))
	}

	info, err := parseProbeOutput(result.Stdout)
	if err != nil {
		return nil, err
	}

	if info.IsPlaylist() {
		return info.Entries, nil
	}
	return []model.VideoInfo{*info}, nil
}

// processEntry applies the skip rules and downloads a single entry.
func (s *Service) processEntry(ctx context.Context, req model.DownloadRequest, sel selector.Selection, filters *filter.Set, entry model.VideoInfo) *model.DownloadTask {
	task := s.newTask(req, entry)

	if reason := s.skipReason(req, filters, entry); reason != "" {
		s.setSkipped(task, reason)
		return task
	}

	s.downloadEntry(ctx, req, sel, task)
	return task
}

func (s *Service) newTask(req model.DownloadRequest, entry model.VideoInfo) *model.DownloadTask {
	url := entry.URL
	if url == "" {
		url = req.URL
	}

	task := &model.DownloadTask{
		ID:        "task-" + uuid.NewString(),
		URL:       url,
		VideoID:   entry.ID,
		Title:     entry.Title,
		Status:    model.TaskStatusPending,
		ETASec:    -1,
		StartedAt: time.Now(),
	}

	s.tasksMutex.Lock()
	s.tasks[task.ID] = task
	s.tasksMutex.Unlock()
	return task
}

// skipReason returns why the entry should not be downloaded, or "".
func (s *Service) skipReason(req model.DownloadRequest, filters *filter.Set, entry model.VideoInfo) string {
	if req.SkipDownloaded && s.hist != nil && entry.ID != "" {
		downloaded, err := s.hist.IsDownloaded(entry.ID)
		if err != nil {
			s.logger.Warn("history lookup failed", slog.String("video_id", entry.ID), slog.Any("error", err))
		} else if downloaded {
			return "already in download history"
		}
	}

	if req.SkipDownloaded && !req.PreserveFilename && platform.FileWithIDExists(req.DestDir, entry.ID) {
		return "file already exists in destination"
	}

	if filters != nil {
		if skip, reason := filters.Evaluate(entry); skip {
			return reason
		}
	}

	return ""
}

// downloadEntry runs the actual download with bounded retries.
func (s *Service) downloadEntry(ctx context.Context, req model.DownloadRequest, sel selector.Selection, task *model.DownloadTask) {
	s.setStatus(task, model.TaskStatusDownloading)

	dl := s.buildCommand(req, sel, task)

	result, err := Retry(ctx, DefaultRetryConfig(req.Retries), func() (*ytdlp.Result, error) {
		res, runErr := s.run(ctx, dl, task.URL)
		if runErr != nil {
			s.logger.Warn("download attempt failed",
				slog.String("task", task.ID), slog.Any("error", runErr))
		}
		return res, runErr
	})

	s.tasksMutex.Lock()
	if err != nil {
		if ctx.Err() != nil {
			task.Status = model.TaskStatusStopped
		} else {
			task.Status = model.TaskStatusError
		}
		task.LastError = err.Error()
	} else {
		task.Status = model.TaskStatusCompleted
		task.Progress = 1.0
		task.Percent = 100
		s.applyResultInfo(task, result)
	}
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)

	if task.Status == model.TaskStatusCompleted {
		s.recordCompletion(req, sel, task)
	}
}

// buildCommand translates the request and selection into a configured
// yt-dlp invocation.
func (s *Service) buildCommand(req model.DownloadRequest, sel selector.Selection, task *model.DownloadTask) *ytdlp.Command {
	dl := ytdlp.New().
		Format(sel.Format).
		Output(filepath.Join(req.DestDir, selector.Template(req))).
		NoCheckCertificates().
		Continue()

	if !req.AllowPlaylist {
		dl = dl.NoPlaylist()
	}
	if s.ffmpegPath != "" {
		dl = dl.FFmpegLocation(s.ffmpegPath)
	}

	if sel.ExtractAudio {
		dl = dl.ExtractAudio().
			AudioFormat(sel.AudioCodec).
			AudioQuality(sel.AudioQuality)
	} else if sel.MergeFormat != "" {
		dl = dl.MergeOutputFormat(sel.MergeFormat)
	}

	dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
		s.updateTaskProgress(task, &update)
	})

	return dl
}

// applyResultInfo copies title, filename and size from the library result.
// Caller holds tasksMutex.
func (s *Service) applyResultInfo(task *model.DownloadTask, result *ytdlp.Result) {
	if result == nil {
		return
	}
	info, err := result.GetExtractedInfo()
	if err != nil || len(info) == 0 {
		return
	}
	if info[0].Filename != nil {
		task.OutputPath = *info[0].Filename
	}
	if task.Title == "" && info[0].Title != nil {
		task.Title = *info[0].Title
	}
	if task.VideoID == "" {
		task.VideoID = info[0].ID
	}
}

// recordCompletion writes the history row for a finished entry.
func (s *Service) recordCompletion(req model.DownloadRequest, sel selector.Selection, task *model.DownloadTask) {
	if s.hist == nil || task.VideoID == "" {
		return
	}

	rec := &history.Record{
		VideoID:  task.VideoID,
		URL:      task.URL,
		Title:    task.Title,
		Selector: sel.Format,
		DestDir:  req.DestDir,
		FileSize: task.FileSize,
	}
	if err := s.hist.RecordDownload(rec); err != nil {
		s.logger.Warn("failed to record download history",
			slog.String("video_id", task.VideoID), slog.Any("error", err))
	}
}

// updateTaskProgress updates task progress from yt-dlp info
func (s *Service) updateTaskProgress(task *model.DownloadTask, update *ytdlp.ProgressUpdate) {
	s.tasksMutex.Lock()

	if update.TotalBytes > 0 {
		percent := float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
		task.Percent = int(percent)
		task.Progress = percent / 100.0
		task.FileSize = int64(update.TotalBytes)
	}

	if !update.Started.IsZero() {
		elapsed := time.Since(update.Started)
		if elapsed.Seconds() > 0 {
			bytesPerSecond := float64(update.DownloadedBytes) / elapsed.Seconds()
			task.Speed = fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
		}
	}

	eta := update.ETA()
	if eta > 0 {
		task.ETASec = int(eta.Seconds())
	}

	if update.Info != nil && update.Info.Title != nil && *update.Info.Title != "" && task.Title == "" {
		task.Title = *update.Info.Title
	}

	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

func (s *Service) setStatus(task *model.DownloadTask, status model.TaskStatus) {
	s.tasksMutex.Lock()
	task.Status = status
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
}

func (s *Service) setSkipped(task *model.DownloadTask, reason string) {
	s.tasksMutex.Lock()
	task.Status = model.TaskStatusSkipped
	task.SkipReason = reason
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
}

// notifyUpdate hands a snapshot of the task to the update callback, so the
// callback never reads fields a concurrent worker is still writing.
func (s *Service) notifyUpdate(task *model.DownloadTask) {
	if s.onUpdate == nil {
		return
	}

	s.tasksMutex.RLock()
	snapshot := *task
	s.tasksMutex.RUnlock()

	s.onUpdate(&snapshot)
}

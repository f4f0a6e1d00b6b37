package cli

import (
	"log/slog"
	"path/filepath"

	"github.com/vbraga/tubefetch/internal/config"
	"github.com/vbraga/tubefetch/internal/download"
	"github.com/vbraga/tubefetch/internal/history"
	"github.com/vbraga/tubefetch/internal/platform"
)

// runtime bundles the collaborators every command wires up: loaded
// configuration, the download service and the optional history store.
type runtime struct {
	cfg  *config.Config
	svc  *download.Service
	hist *history.Store
}

func newRuntime(configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()

	ffmpegPath, found := platform.LocateFFmpeg(cfg.Download.FFmpegPath)
	if !found {
		logger.Warn("ffmpeg not found, merge and mp3 conversion options will fail")
	}

	rt := &runtime{cfg: cfg}

	var hist download.HistoryStore
	if !cfg.History.Disabled {
		if err := platform.CreateDirectoryIfNotExists(filepath.Dir(cfg.History.Path)); err != nil {
			return nil, err
		}
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		rt.hist = store
		hist = store
	}

	rt.svc = download.NewService(ffmpegPath, hist, logger)
	return rt, nil
}

func (rt *runtime) close() {
	if rt.hist != nil {
		rt.hist.Close()
	}
}

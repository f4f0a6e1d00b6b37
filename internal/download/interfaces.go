package download

import (
	"context"

	"github.com/vbraga/tubefetch/internal/filter"
	"github.com/vbraga/tubefetch/internal/history"
	"github.com/vbraga/tubefetch/internal/model"
)

// Fetcher defines the two operations the rest of the program consumes from
// the download layer: fetch by URL with configuration, and list available
// formats for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, req model.DownloadRequest, filters *filter.Set) (*Report, error)
	ListFormats(ctx context.Context, url string) (*model.VideoInfo, error)
	SetUpdateCallback(func(*model.DownloadTask))
}

// HistoryStore is the slice of the history package the service needs for
// dedupe checks and completion records.
type HistoryStore interface {
	IsDownloaded(videoID string) (bool, error)
	RecordDownload(rec *history.Record) error
}

// Report summarizes one Fetch invocation.
type Report struct {
	Tasks     []*model.DownloadTask
	Completed int
	Skipped   int
	Failed    int
}

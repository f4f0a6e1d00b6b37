package cli

import (
	"context"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/vbraga/tubefetch/internal/config"
	"github.com/vbraga/tubefetch/internal/filter"
	"github.com/vbraga/tubefetch/internal/model"
)

// getOptions holds the non-interactive download flags.
type getOptions struct {
	destDir  string
	formatID string
	mp4      bool
	audio    bool
	audioMP3 bool
	playlist bool
	preserve bool
	noSkip   bool
	parallel int
	retries  int

	minDuration string
	maxDuration string
	dateFrom    string
	dateTo      string
	matchTitle  string
	matchRegex  bool
}

func (o *getOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dest",
			Aliases:     []string{"d"},
			Usage:       "Destination directory",
			Destination: &o.destDir,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Explicit format ID or selector (e.g. '137+140')",
			Destination: &o.formatID,
		},
		&cli.BoolFlag{
			Name:        "mp4",
			Usage:       "Best quality constrained to MP4/M4A",
			Destination: &o.mp4,
		},
		&cli.BoolFlag{
			Name:        "audio",
			Usage:       "Best audio only, original container",
			Destination: &o.audio,
		},
		&cli.BoolFlag{
			Name:        "audio-mp3",
			Usage:       "Best audio only, converted to MP3",
			Destination: &o.audioMP3,
		},
		&cli.BoolFlag{
			Name:        "playlist",
			Usage:       "Download every playlist entry",
			Destination: &o.playlist,
		},
		&cli.BoolFlag{
			Name:        "preserve-filename",
			Usage:       "Name files by title only, without the [id] suffix",
			Destination: &o.preserve,
		},
		&cli.BoolFlag{
			Name:        "no-skip-downloaded",
			Usage:       "Download even when the entry is in the history",
			Destination: &o.noSkip,
		},
		&cli.IntFlag{
			Name:        "parallel",
			Usage:       "Playlist worker count (overrides config)",
			Destination: &o.parallel,
		},
		&cli.IntFlag{
			Name:        "retries",
			Usage:       "Download attempts per entry (overrides config)",
			Destination: &o.retries,
		},
		&cli.StringFlag{
			Name:        "min-duration",
			Usage:       "Skip entries shorter than this (seconds, mm:ss or hh:mm:ss)",
			Destination: &o.minDuration,
		},
		&cli.StringFlag{
			Name:        "max-duration",
			Usage:       "Skip entries longer than this (seconds, mm:ss or hh:mm:ss)",
			Destination: &o.maxDuration,
		},
		&cli.StringFlag{
			Name:        "date-from",
			Usage:       "Skip entries uploaded before this date (YYYY-MM-DD)",
			Destination: &o.dateFrom,
		},
		&cli.StringFlag{
			Name:        "date-to",
			Usage:       "Skip entries uploaded after this date (YYYY-MM-DD)",
			Destination: &o.dateTo,
		},
		&cli.StringFlag{
			Name:        "match-title",
			Usage:       "Only download entries whose title matches",
			Destination: &o.matchTitle,
		},
		&cli.BoolFlag{
			Name:        "regex",
			Usage:       "Treat --match-title as a regular expression",
			Destination: &o.matchRegex,
		},
	}
}

// request translates the flags and config defaults into a DownloadRequest.
func (o *getOptions) request(url string, cfg *config.Config) (model.DownloadRequest, error) {
	var req model.DownloadRequest

	if url == "" {
		return req, goerr.New("a video or playlist URL is required", goerr.T(model.ErrTagInput))
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return req, goerr.New("URL must start with http:// or https://",
			goerr.T(model.ErrTagInput), goerr.V("url", url))
	}

	choice := model.ChoiceDefault
	picked := 0
	if o.mp4 {
		choice = model.ChoiceBestMp4
		picked++
	}
	if o.audio {
		choice = model.ChoiceBestAudioOriginal
		picked++
	}
	if o.audioMP3 {
		choice = model.ChoiceBestAudioAsMp3
		picked++
	}
	if o.formatID != "" {
		picked++
	}
	if picked > 1 {
		return req, goerr.New("pick at most one of --format, --mp4, --audio, --audio-mp3",
			goerr.T(model.ErrTagInput))
	}

	dest := o.destDir
	if dest == "" {
		dest = cfg.Download.Dir
	}

	parallel := cfg.Download.Parallel
	if o.parallel > 0 {
		parallel = o.parallel
	}
	retries := cfg.Download.Retries
	if o.retries > 0 {
		retries = o.retries
	}

	return model.DownloadRequest{
		URL:              url,
		DestDir:          dest,
		Choice:           choice,
		ManualFormatID:   o.formatID,
		AllowPlaylist:    o.playlist,
		PreserveFilename: o.preserve,
		SkipDownloaded:   !o.noSkip,
		Parallel:         parallel,
		Retries:          retries,
	}, nil
}

// filters builds the entry filter set, or nil when no filter flag was given.
func (o *getOptions) filters() (*filter.Set, error) {
	set := &filter.Set{
		MatchTitle: o.matchTitle,
		MatchRegex: o.matchRegex,
	}

	var err error
	if o.minDuration != "" {
		if set.MinDuration, err = filter.ParseDuration(o.minDuration); err != nil {
			return nil, err
		}
	}
	if o.maxDuration != "" {
		if set.MaxDuration, err = filter.ParseDuration(o.maxDuration); err != nil {
			return nil, err
		}
	}
	if o.dateFrom != "" {
		if set.DateFrom, err = filter.ParseDate(o.dateFrom); err != nil {
			return nil, err
		}
	}
	if o.dateTo != "" {
		if set.DateTo, err = filter.ParseDate(o.dateTo); err != nil {
			return nil, err
		}
	}

	if set.IsZero() {
		return nil, nil
	}
	if err := set.Compile(); err != nil {
		return nil, err
	}
	return set, nil
}

func cmdGet(configPath *string) *cli.Command {
	var opts getOptions

	return &cli.Command{
		Name:      "get",
		Aliases:   []string{"g"},
		Usage:     "Download a video or playlist without prompts",
		ArgsUsage: "URL",
		Flags:     opts.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(*configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			req, err := opts.request(c.Args().First(), rt.cfg)
			if err != nil {
				return err
			}

			filters, err := opts.filters()
			if err != nil {
				return err
			}

			printer := newProgressPrinter(os.Stdout)
			rt.svc.SetUpdateCallback(printer.update)

			report, err := rt.svc.Fetch(ctx, req, filters)
			if err != nil {
				return err
			}

			if report.Failed > 0 {
				return goerr.New("some downloads failed",
					goerr.T(model.ErrTagDownload),
					goerr.V("failed", report.Failed),
					goerr.V("completed", report.Completed))
			}
			return nil
		},
	}
}

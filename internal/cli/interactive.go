package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/term"

	"github.com/vbraga/tubefetch/internal/download"
	"github.com/vbraga/tubefetch/internal/model"
	"github.com/vbraga/tubefetch/internal/prompt"
)

// session drives one interactive run: ask for a URL, destination and
// format choice, fetch, report, repeat until the user declines.
type session struct {
	prompter   *prompt.Prompter
	fetcher    download.Fetcher
	defaultDir string
	parallel   int
	retries    int
	out        io.Writer
}

func runInteractive(ctx context.Context, configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return goerr.New("interactive mode needs a terminal, use the get subcommand instead",
			goerr.T(model.ErrTagInput))
	}

	rt, err := newRuntime(configPath)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.svc.SetUpdateCallback(newProgressPrinter(os.Stdout).update)

	s := &session{
		prompter:   prompt.New(os.Stdin, os.Stdout),
		fetcher:    rt.svc,
		defaultDir: rt.cfg.Download.Dir,
		parallel:   rt.cfg.Download.Parallel,
		retries:    rt.cfg.Download.Retries,
		out:        os.Stdout,
	}
	return s.run(ctx)
}

func (s *session) run(ctx context.Context) error {
	fmt.Fprintf(s.out, "tubefetch %s\n", version)

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(s.out)
			return nil
		}

		again, err := s.once(ctx)
		if err != nil {
			// A closed stdin or an interrupt ends the session cleanly.
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
		if !again {
			fmt.Fprintln(s.out, "Bye.")
			return nil
		}
	}
}

// once runs a single prompt/download round and reports whether the user
// wants another one.
func (s *session) once(ctx context.Context) (bool, error) {
	url, err := s.prompter.URL()
	if err != nil {
		return false, err
	}

	dir, err := s.prompter.DestDir(s.defaultDir)
	if err != nil {
		return false, err
	}

	choice, err := s.prompter.Menu()
	if err != nil {
		return false, err
	}

	req := model.DownloadRequest{
		URL:            url,
		DestDir:        dir,
		Choice:         choice,
		SkipDownloaded: true,
		Parallel:       s.parallel,
		Retries:        s.retries,
	}

	if strings.Contains(url, "list=") {
		all, err := s.prompter.Confirm("This looks like a playlist. Download every entry?")
		if err != nil {
			return false, err
		}
		req.AllowPlaylist = all
	}

	if choice == model.ChoiceListFormats {
		listed, err := s.pickManualFormat(ctx, &req)
		if err != nil {
			return false, err
		}
		if !listed {
			return s.prompter.Confirm("Download another?")
		}
	}

	// An interrupt during the prompts only unblocks stdin at the next
	// Enter; bail out here instead of starting a download.
	if ctx.Err() != nil {
		return false, nil
	}

	report, err := s.fetcher.Fetch(ctx, req, nil)
	if err != nil {
		s.prompter.PrintError(err)
	} else {
		s.printReport(report)
	}

	if ctx.Err() != nil {
		return false, nil
	}
	return s.prompter.Confirm("Download another?")
}

// pickManualFormat lists the available formats and asks for a format ID.
// Cancelling falls back to the default selection; a failed listing skips
// the download round entirely and returns false.
func (s *session) pickManualFormat(ctx context.Context, req *model.DownloadRequest) (bool, error) {
	info, err := s.fetcher.ListFormats(ctx, req.URL)
	if err != nil {
		s.prompter.PrintError(err)
		return false, nil
	}

	s.prompter.PrintFormats(info)

	id, cancelled, err := s.prompter.ManualFormatID()
	if err != nil {
		return false, err
	}
	if cancelled {
		fmt.Fprintln(s.out, "Using the default selection instead.")
		req.Choice = model.ChoiceDefault
		return true, nil
	}

	req.ManualFormatID = id
	return true, nil
}

func (s *session) printReport(report *download.Report) {
	fmt.Fprintf(s.out, "\nCompleted %d, skipped %d, failed %d\n",
		report.Completed, report.Skipped, report.Failed)

	for _, task := range report.Tasks {
		switch task.Status {
		case model.TaskStatusSkipped:
			fmt.Fprintf(s.out, "  skipped %s: %s\n", task.GetDisplayTitle(), task.SkipReason)
		case model.TaskStatusError, model.TaskStatusStopped:
			fmt.Fprintf(s.out, "  failed %s: %s\n", task.GetDisplayTitle(), task.LastError)
		}
	}
}

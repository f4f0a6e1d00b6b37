package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/vbraga/tubefetch/internal/model"
)

// progressPrinter renders task updates as terminal output. Downloading
// updates rewrite a single line with a carriage return; terminal states
// finish the line and print one summary row. Safe for concurrent workers.
type progressPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	line bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

func (p *progressPrinter) update(task *model.DownloadTask) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch task.Status {
	case model.TaskStatusDownloading:
		fmt.Fprintf(p.w, "\r%-45.45s %3d%% %10s ETA %s",
			task.GetDisplayTitle(), task.Percent, task.Speed, task.GetETAString())
		p.line = true
	case model.TaskStatusCompleted:
		p.endLine()
		fmt.Fprintf(p.w, "done: %s\n", task.GetDisplayTitle())
	case model.TaskStatusSkipped:
		p.endLine()
		fmt.Fprintf(p.w, "skip: %s (%s)\n", task.GetDisplayTitle(), task.SkipReason)
	case model.TaskStatusError, model.TaskStatusStopped:
		p.endLine()
		fmt.Fprintf(p.w, "fail: %s: %s\n", task.GetDisplayTitle(), task.LastError)
	}
}

func (p *progressPrinter) endLine() {
	if p.line {
		fmt.Fprintln(p.w)
		p.line = false
	}
}

// Package prompt implements the interactive questions of a download
// session: URL, destination directory, quality menu, and the follow-up
// manual format selection.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/vbraga/tubefetch/internal/model"
	"github.com/vbraga/tubefetch/internal/platform"
)

// ManualCancel is the answer that backs out of manual format selection
const ManualCancel = "c"

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed)
)

// Prompter asks the interactive questions over a reader/writer pair,
// normally stdin/stdout.
type Prompter struct {
	r *bufio.Reader
	w io.Writer
}

// New creates a Prompter reading answers from r and writing questions to w
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{r: bufio.NewReader(r), w: w}
}

// ask prints the question and returns the trimmed answer line.
func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.w, question)
	line, err := p.r.ReadString('\n')
	if err != nil && line == "" {
		return "", goerr.Wrap(err, "input closed")
	}
	return strings.TrimSpace(line), nil
}

// URL asks for the video or playlist URL until a usable one is given.
// Blank input and URLs without an http(s) scheme are rejected and
// re-prompted; the returned error only reports a closed input stream.
func (p *Prompter) URL() (string, error) {
	for {
		answer, err := p.ask("Video or playlist URL: ")
		if err != nil {
			return "", err
		}

		if answer == "" {
			p.warnInput(goerr.New("URL cannot be blank", goerr.T(model.ErrTagInput)))
			continue
		}
		if !strings.HasPrefix(answer, "http://") && !strings.HasPrefix(answer, "https://") {
			p.warnInput(goerr.New("URL must start with http:// or https://",
				goerr.T(model.ErrTagInput), goerr.V("url", answer)))
			continue
		}
		return answer, nil
	}
}

// DestDir asks for the destination directory, creating it on the spot.
// Blank keeps the default. Directories that cannot be created are rejected
// and re-prompted.
func (p *Prompter) DestDir(defaultDir string) (string, error) {
	fmt.Fprintf(p.w, "Default download folder: %s\n", defaultDir)
	for {
		answer, err := p.ask("Destination folder (blank for default): ")
		if err != nil {
			return "", err
		}

		dir := answer
		if dir == "" {
			dir = defaultDir
		}

		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			p.warnInput(goerr.Wrap(err, "cannot use that folder",
				goerr.T(model.ErrTagFilesystem), goerr.V("dir", dir)))
			continue
		}
		return dir, nil
	}
}

// Menu prints the quality/format menu and asks until a valid option is
// chosen. Blank and 0 both mean the default (best overall) option.
func (p *Prompter) Menu() (model.FormatChoice, error) {
	titleColor.Fprintln(p.w, "\nQuality/format options")
	fmt.Fprintln(p.w, "  1. Best overall quality (video+audio, may need ffmpeg to merge)")
	fmt.Fprintln(p.w, "  2. Best quality in MP4 (video+audio, may need ffmpeg to merge)")
	fmt.Fprintln(p.w, "  3. Best audio only (original container)")
	fmt.Fprintln(p.w, "  4. Best audio only, converted to MP3 (needs ffmpeg)")
	fmt.Fprintln(p.w, "  5. List all available formats and choose manually")
	fmt.Fprintln(p.w, "  0. Default (same as option 1)")

	for {
		answer, err := p.ask("Choose an option (0-5): ")
		if err != nil {
			return model.ChoiceDefault, err
		}

		choice, ok := model.ParseFormatChoice(answer)
		if !ok {
			p.warnInput(goerr.New("invalid option, pick 0-5",
				goerr.T(model.ErrTagInput), goerr.V("answer", answer)))
			continue
		}
		return choice, nil
	}
}

// ManualFormatID asks for a format ID after the listing was shown.
// Answering "c" cancels back to the default selection.
func (p *Prompter) ManualFormatID() (id string, cancelled bool, err error) {
	for {
		answer, err := p.ask("Format ID (e.g. '137+140' for separate streams, '22' for combined, 'c' to cancel): ")
		if err != nil {
			return "", false, err
		}

		if strings.EqualFold(answer, ManualCancel) {
			return "", true, nil
		}
		if answer == "" {
			p.warnInput(goerr.New("format ID cannot be blank", goerr.T(model.ErrTagInput)))
			continue
		}
		return answer, false, nil
	}
}

// Confirm asks a yes/no question; only y/yes/s count as yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.ask(question + " (y/N): ")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes", "s":
		return true, nil
	}
	return false, nil
}

// PrintFormats renders the format listing table for manual selection.
func (p *Prompter) PrintFormats(info *model.VideoInfo) {
	titleColor.Fprintf(p.w, "\nAvailable formats for %s\n", info.Title)
	WriteFormats(p.w, info)
}

// WriteFormats writes the format listing table to w.
func WriteFormats(w io.Writer, info *model.VideoInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tEXT\tRESOLUTION\tSIZE\tNOTE")
	for _, f := range info.SelectableFormats() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.FormatID, f.Kind(), f.Ext, f.Resolution, f.FilesizeString(), f.Note)
	}
	tw.Flush()
}

// PrintError renders an error the way the session loop reports failures
func (p *Prompter) PrintError(err error) {
	errColor.Fprintf(p.w, "Error: %v\n", err)
}

func (p *Prompter) warnInput(err error) {
	warnColor.Fprintf(p.w, "%v\n", err)
}

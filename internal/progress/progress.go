// Package progress draws terminal progress for multi-file walks.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Tracker is a progress bar driven by analyzer.Tracker callbacks.
type Tracker struct {
	bar     *progressbar.ProgressBar
	label   string
	out     io.Writer
	visible bool
}

// NewTracker draws on stderr, or nowhere when stderr is not a terminal.
func NewTracker(label string, total int) *Tracker {
	return newTracker(os.Stderr, label, total, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewTrackerTo draws on w.
func NewTrackerTo(w io.Writer, label string, total int) *Tracker {
	return newTracker(w, label, total, true)
}

func newTracker(w io.Writer, label string, total int, visible bool) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, out: w, visible: visible}
}

// OnFile moves the bar to done and names the file just walked. Its signature
// matches analyzer.ProgressFunc. Workers finish out of order, so the count
// comes from the caller rather than from incrementing.
func (t *Tracker) OnFile(done, total int, path string) {
	if int64(total) > t.bar.GetMax64() {
		t.bar.ChangeMax(total)
	}
	t.bar.Describe(fmt.Sprintf("%s %s", t.label, filepath.Base(path)))
	t.bar.Set(done)
}

// Warn prints a warning line above the bar.
func (t *Tracker) Warn(format string, args ...any) {
	if t.visible {
		t.bar.Clear()
	}
	color.New(color.FgYellow).Fprintf(t.out, format+"\n", args...)
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	t.bar.Finish()
	t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}

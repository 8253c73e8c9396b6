// Package progress shows a progress bar while several merged files are
// processed in one run.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/klauern/amt/internal/logging"
	"github.com/klauern/amt/internal/ui"
)

// Bar wraps a progressbar. A disabled Bar logs at debug level instead of
// drawing, so callers never need to check whether output is a terminal.
type Bar struct {
	bar     *progressbar.ProgressBar
	enabled bool
	desc    string
	done    int
	total   int
}

// Options configures the progress bar behavior.
type Options struct {
	// Max is the number of files to process.
	Max int
	// Description is the prefix text shown before the progress bar.
	Description string
	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer
}

// New creates a new progress bar with the given options.
// The bar is only shown if:
//   - Colors are enabled (respects NO_COLOR and --no-color)
//   - Output is a terminal
//   - Not in debug mode (to avoid interfering with logs)
func New(opts Options) *Bar {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}

	b := &Bar{
		enabled: shouldShowProgress(opts.Writer),
		desc:    opts.Description,
		total:   opts.Max,
	}

	if !b.enabled {
		logging.Debug(fmt.Sprintf("%s started", opts.Description), logging.Count(opts.Max))
		return b
	}

	b.bar = progressbar.NewOptions(
		opts.Max,
		progressbar.OptionSetDescription(opts.Description),
		progressbar.OptionSetWriter(opts.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(opts.Writer, "\n")
		}),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(ui.IsColorEnabled()),
	)

	return b
}

// Files creates a bar counting merged files.
func Files(n int, w io.Writer) *Bar {
	return New(Options{Max: n, Description: "Solving", Writer: w})
}

// Start describes the file about to be processed.
func (b *Bar) Start(path string) {
	b.Describe(fmt.Sprintf("Solving %s", filepath.Base(path)))
}

// Done counts one more file as processed.
func (b *Bar) Done(path string) error {
	b.done++
	if !b.enabled {
		logging.Debug("file processed", logging.Path(path),
			logging.Count(b.done), "total", b.total)
		return nil
	}
	return b.bar.Add(1)
}

// Describe updates the progress bar description.
func (b *Bar) Describe(desc string) {
	b.desc = desc
	if !b.enabled {
		return
	}
	b.bar.Describe(desc)
}

// Finish completes the progress bar and logs completion.
func (b *Bar) Finish() error {
	if !b.enabled {
		logging.Debug(fmt.Sprintf("%s completed", b.desc), logging.Count(b.done))
		return nil
	}
	return b.bar.Finish()
}

// Clear removes the progress bar from the terminal.
func (b *Bar) Clear() error {
	if !b.enabled {
		return nil
	}
	return b.bar.Clear()
}

// Processed returns how many files were counted by Done.
func (b *Bar) Processed() int {
	return b.done
}

// shouldShowProgress determines if progress bars should be displayed.
func shouldShowProgress(w io.Writer) bool {
	if !ui.IsColorEnabled() {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice == 0 {
		return false
	}

	return !logging.Default().Enabled(context.Background(), logging.LevelDebug)
}

package conflict

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/klauern/amt/internal/logging"
	"github.com/klauern/amt/internal/ui"
)

// StagedSuffix is appended to the merged file path to name the side file
// receiving the rewritten content.
const StagedSuffix = ".resolving.amt"

// MergeStatus summarizes a walk.
type MergeStatus int

const (
	// StatusSuccess means every conflict was resolved.
	StatusSuccess MergeStatus = iota
	// StatusConflictsRemain means at least one conflict was not resolved.
	StatusConflictsRemain
)

func (s MergeStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusConflictsRemain:
		return "conflicts remain"
	default:
		return "unknown"
	}
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithReport writes a report file named after tag, filtered by mode.
// An empty tag or ReportNone disables the report.
func WithReport(tag string, mode ReportMode) WalkerOption {
	return func(w *Walker) {
		w.tag = tag
		w.reportMode = mode
	}
}

// WithVerbose prints every flushed conflict and its outcome to out.
func WithVerbose(out io.Writer) WalkerOption {
	return func(w *Walker) {
		w.verbose = out
	}
}

// WithLogger sets the logger used for per conflict debug records.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// Walker iterates over the conflicts of one file and stages the rewritten
// file next to it.
//
// Usage follows a pull protocol:
//
//	w, err := conflict.NewWalker(path)
//	for {
//		more, err := w.HasMoreConflicts()
//		if err != nil || !more { break }
//		solve(w.NextConflict())
//	}
//	err = w.End(true)
//
// A Walker is not safe for concurrent use.
type Walker struct {
	path   string
	staged string

	in     *os.File
	reader *bufio.Reader
	out    *os.File
	writer *bufio.Writer

	tag        string
	reportMode ReportMode
	report     *os.File
	reportBuf  *bufio.Writer

	verbose io.Writer
	logger  *slog.Logger

	current   *Conflict
	remaining bool
	line      int
	conflicts int
	closed    bool
}

// NewWalker opens path for reading and creates the side file. The side file
// keeps the permissions of path.
func NewWalker(path string, opts ...WalkerOption) (*Walker, error) {
	w := &Walker{
		path:       path,
		staged:     path + StagedSuffix,
		reportMode: ReportNone,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.Default()
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening merged file: %w", err)
	}
	info, err := in.Stat()
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("reading merged file info: %w", err)
	}

	out, err := os.OpenFile(w.staged, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("creating staged file: %w", err)
	}

	w.in, w.reader = in, bufio.NewReader(in)
	w.out, w.writer = out, bufio.NewWriter(out)

	if w.tag != "" && w.reportMode != ReportNone {
		report, err := os.Create(ReportPath(path, w.tag))
		if err != nil {
			in.Close()
			out.Close()
			os.Remove(w.staged)
			return nil, fmt.Errorf("creating report file: %w", err)
		}
		w.report, w.reportBuf = report, bufio.NewWriter(report)
	}

	return w, nil
}

// Path returns the merged file path.
func (w *Walker) Path() string {
	return w.path
}

// HasMoreConflicts flushes the current conflict, then copies lines to the
// side file until the next complete conflict block. It returns false at end
// of file.
func (w *Walker) HasMoreConflicts() (bool, error) {
	if w.closed {
		return false, errors.New("walker already ended")
	}
	if err := w.flush(); err != nil {
		return false, err
	}

	c, err := w.scan()
	if err != nil || c == nil {
		return false, err
	}
	w.current = c
	w.conflicts++
	return true, nil
}

// NextConflict returns the conflict found by the last HasMoreConflicts call.
func (w *Walker) NextConflict() *Conflict {
	return w.current
}

// MergeStatus reports whether every conflict flushed so far was resolved.
// A rewritten conflict still counts as remaining.
func (w *Walker) MergeStatus() MergeStatus {
	if w.remaining {
		return StatusConflictsRemain
	}
	return StatusSuccess
}

// Conflicts returns the number of conflicts read so far.
func (w *Walker) Conflicts() int {
	return w.conflicts
}

// End closes every stream. With apply set, the pending conflict and the rest
// of the input are copied first and the side file replaces the original;
// otherwise the side file is removed and the original is left as is.
// End is safe to call more than once.
func (w *Walker) End(apply bool) error {
	if w.closed {
		return nil
	}
	w.closed = true

	var result *multierror.Error
	if apply {
		if err := w.drain(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := w.writer.Flush(); err != nil {
		result = multierror.Append(result, fmt.Errorf("writing staged file: %w", err))
	}
	if err := w.out.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing staged file: %w", err))
	}
	if err := w.in.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing merged file: %w", err))
	}
	if w.report != nil {
		if err := w.reportBuf.Flush(); err != nil {
			result = multierror.Append(result, fmt.Errorf("writing report: %w", err))
		}
		if err := w.report.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing report: %w", err))
		}
	}

	if apply && result.ErrorOrNil() == nil {
		if err := os.Rename(w.staged, w.path); err != nil {
			result = multierror.Append(result, fmt.Errorf("replacing merged file: %w", err))
		}
		return result.ErrorOrNil()
	}
	if err := os.Remove(w.staged); err != nil && !errors.Is(err, os.ErrNotExist) {
		result = multierror.Append(result, fmt.Errorf("removing staged file: %w", err))
	}
	return result.ErrorOrNil()
}

// drain flushes the pending conflict and copies the unread input verbatim.
func (w *Walker) drain() error {
	if err := w.flush(); err != nil {
		return err
	}
	if _, err := io.Copy(w.writer, w.reader); err != nil {
		return fmt.Errorf("copying %s: %w", w.path, err)
	}
	return nil
}

// flush writes the current conflict, its report entry and its log line.
func (w *Walker) flush() error {
	c := w.current
	if c == nil {
		return nil
	}
	w.current = nil

	text := c.Raw()
	if c.IsRewritten() {
		text = c.content
	}
	if _, err := w.writer.WriteString(text); err != nil {
		return fmt.Errorf("writing staged file: %w", err)
	}
	if !c.IsResolved() {
		w.remaining = true
	}

	if w.reportBuf != nil {
		if err := writeEntry(w.reportBuf, w.reportMode, c); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	w.log(c)
	return nil
}

func (w *Walker) log(c *Conflict) {
	outcome := "unsolved"
	switch {
	case c.IsResolved():
		outcome = "solved"
	case c.IsRewritten():
		outcome = "rewritten"
	}
	w.logger.Debug("conflict flushed",
		logging.Path(w.path),
		logging.Line(c.line),
		logging.Solver(w.tag),
		logging.Outcome(outcome))

	if w.verbose == nil {
		return
	}
	label := "[" + w.tag + "] "
	fmt.Fprintln(w.verbose, c.Raw())
	switch outcome {
	case "solved":
		fmt.Fprintln(w.verbose, "     "+ui.StatusSuccess(label+"Solved"))
		fmt.Fprintln(w.verbose, c.content)
	case "rewritten":
		fmt.Fprintln(w.verbose, "     "+ui.StatusRewritten(label+"Rewritten"))
		fmt.Fprintln(w.verbose, c.content)
	default:
		fmt.Fprintln(w.verbose, "     "+ui.StatusError(label+"Unsolved"))
	}
}

type scanState int

const (
	stateScanning scanState = iota
	stateLocal
	stateBase
	stateRemote
)

// scan reads up to the end of the next conflict block. Lines outside blocks
// go to the side file. It returns nil at end of file.
func (w *Walker) scan() (*Conflict, error) {
	state := stateScanning
	var (
		c                   *Conflict
		local, base, remote strings.Builder
	)

	for {
		line, err := w.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading %s: %w", w.path, err)
		}
		if line == "" {
			if state != stateScanning {
				return nil, w.parseError(c.line, ErrUnterminatedConflict)
			}
			return nil, nil
		}
		w.line++

		switch MarkerOf(line) {
		case MarkerEnd:
			switch {
			case state == stateScanning:
				return nil, w.parseError(w.line, ErrOrphanEnd)
			case state == stateBase:
				return nil, w.parseError(w.line, ErrMissingSeparator)
			case state != stateRemote || c.markerBase == "":
				return nil, w.parseError(w.line, ErrMissingBase)
			}
			c.markerRemote = line
			c.local, c.base, c.remote = local.String(), base.String(), remote.String()
			return c, nil

		case MarkerStart:
			if state != stateScanning {
				return nil, w.parseError(w.line, ErrNestedConflict)
			}
			c = &Conflict{markerLocal: line, line: w.line}
			state = stateLocal

		case MarkerBase:
			switch state {
			case stateScanning:
				return nil, w.parseError(w.line, ErrOrphanBase)
			case stateLocal:
				c.markerBase = line
				state = stateBase
			default:
				return nil, w.parseError(w.line, ErrMalformedConflict)
			}

		case MarkerSep:
			switch state {
			case stateScanning:
				return nil, w.parseError(w.line, ErrOrphanSeparator)
			case stateLocal, stateBase:
				c.markerSep = line
				state = stateRemote
			default:
				return nil, w.parseError(w.line, ErrMalformedConflict)
			}

		default:
			switch state {
			case stateScanning:
				if _, err := w.writer.WriteString(line); err != nil {
					return nil, fmt.Errorf("writing staged file: %w", err)
				}
			case stateLocal:
				local.WriteString(line)
			case stateBase:
				base.WriteString(line)
			case stateRemote:
				remote.WriteString(line)
			}
		}
	}
}

func (w *Walker) parseError(line int, err error) error {
	return &ParseError{Path: w.path, Line: line, Err: err}
}

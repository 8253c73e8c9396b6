package conflict

import (
	"bufio"
	"fmt"
	"os"

	"github.com/klauern/amt/internal/logging"
)

// Handler mutates the conflicts handed over by a walk.
type Handler interface {
	Handle(c *Conflict) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(c *Conflict) error

// Handle calls f(c).
func (f HandlerFunc) Handle(c *Conflict) error {
	return f(c)
}

// Walk passes every conflict of path to h and applies the result. On any
// error the original file is left untouched.
func Walk(path string, h Handler, opts ...WalkerOption) (MergeStatus, error) {
	w, err := NewWalker(path, opts...)
	if err != nil {
		return StatusConflictsRemain, err
	}

	for {
		more, err := w.HasMoreConflicts()
		if err == nil && more {
			err = h.Handle(w.NextConflict())
		}
		if err != nil {
			if endErr := w.End(false); endErr != nil {
				logging.Warn("discarding staged file failed", logging.Path(path), logging.Err(endErr))
			}
			return StatusConflictsRemain, err
		}
		if !more {
			break
		}
	}

	if err := w.End(true); err != nil {
		return StatusConflictsRemain, err
	}
	return w.MergeStatus(), nil
}

// HasRemainingConflicts reports whether any line of path starts with a
// conflict marker.
func HasRemainingConflicts(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if IsMarker(scanner.Text()) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return false, nil
}

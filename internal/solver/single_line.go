package solver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/lcs"
)

// ConfirmFunc approves a proposed resolution for c.
type ConfirmFunc func(c *conflict.Conflict, resolution string) (bool, error)

// SingleLine resolves conflicts made of one line on each side when local and
// remote changed different characters of the base line.
type SingleLine struct {
	analyser *lcs.Analyser[rune, string]
	confirm  ConfirmFunc
}

// NewSingleLine returns a single line solver. A nil confirm accepts every
// resolution.
func NewSingleLine(maxCells int, confirm ConfirmFunc) *SingleLine {
	if maxCells <= 0 {
		maxCells = lcs.DefaultMaxCells
	}
	return &SingleLine{
		analyser: lcs.Runes().WithMaxCells(maxCells),
		confirm:  confirm,
	}
}

// Name implements Solver.
func (s *SingleLine) Name() string { return "gen_single_line" }

// Tag implements Solver.
func (s *SingleLine) Tag() string { return "single_line" }

// Handle implements Solver.
func (s *SingleLine) Handle(c *conflict.Conflict) error {
	local, base, remote := c.LocalLines(), c.BaseLines(), c.RemoteLines()
	if len(local) != 1 || len(base) != 1 || len(remote) != 1 {
		return nil
	}

	resolution, ok, err := s.merge([]rune(base[0]), []rune(local[0]), []rune(remote[0]))
	if err != nil || !ok {
		return err
	}

	if s.confirm != nil {
		accepted, err := s.confirm(c, resolution)
		if err != nil {
			return fmt.Errorf("confirming resolution: %w", err)
		}
		if !accepted {
			return nil
		}
	}
	c.Resolve(resolution)
	return nil
}

// merge takes each differing span from the side that changed it. It fails
// when both sides changed the same span.
func (s *SingleLine) merge(base, local, remote []rune) (string, bool, error) {
	segments, err := s.analyser.LCSWithDiff(base, local, remote)
	if errors.Is(err, lcs.ErrTooLarge) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	for _, seg := range segments {
		switch seg := seg.(type) {
		case lcs.Subsequence[string]:
			b.WriteString(seg.Content)
		case lcs.DiffSubsequence[string]:
			switch {
			case seg.Base == seg.Local:
				b.WriteString(seg.Remote)
			case seg.Base == seg.Remote:
				b.WriteString(seg.Local)
			default:
				return "", false, nil
			}
		}
	}
	return b.String(), true, nil
}

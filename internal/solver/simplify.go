package solver

import (
	"errors"
	"strings"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/lcs"
	"github.com/klauern/amt/internal/logging"
)

// Simplifier splits a conflict into smaller conflicts separated by the lines
// common to local, base and remote. It never resolves a conflict.
type Simplifier struct {
	analyser *lcs.Analyser[string, []string]
}

// NewSimplifier returns a simplifier skipping conflicts whose LCS table
// would exceed maxCells. Zero or less selects lcs.DefaultMaxCells.
func NewSimplifier(maxCells int) *Simplifier {
	if maxCells <= 0 {
		maxCells = lcs.DefaultMaxCells
	}
	return &Simplifier{analyser: lcs.Lines().WithMaxCells(maxCells)}
}

// Name implements Solver.
func (s *Simplifier) Name() string { return "gen_simplify" }

// Tag implements Solver.
func (s *Simplifier) Tag() string { return "simplify" }

// Handle implements Solver.
func (s *Simplifier) Handle(c *conflict.Conflict) error {
	local, base, remote := c.LocalLines(), c.BaseLines(), c.RemoteLines()

	if lcs.TableSize(len(base), len(local), len(remote)) > s.analyser.MaxCells() {
		logging.Debug("conflict too large to simplify",
			logging.Solver(s.Name()),
			logging.Line(c.Line()),
			logging.Count(len(base)+len(local)+len(remote)))
		return nil
	}

	common, err := s.analyser.LCS(base, local, remote)
	if errors.Is(err, lcs.ErrTooLarge) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(common) == 0 {
		return nil
	}

	var b strings.Builder
	ib, il, ir := 0, 0, 0
	for _, run := range common {
		if run.PosBase > ib || run.PosLocal > il || run.PosRemote > ir {
			writeBlock(&b, c, local[il:run.PosLocal], base[ib:run.PosBase], remote[ir:run.PosRemote])
		}
		for _, line := range run.Content {
			b.WriteString(line)
		}
		ib = run.PosBase + run.Length
		il = run.PosLocal + run.Length
		ir = run.PosRemote + run.Length
	}
	if ib < len(base) || il < len(local) || ir < len(remote) {
		writeBlock(&b, c, local[il:], base[ib:], remote[ir:])
	}

	c.Rewrite(b.String())
	return nil
}

// writeBlock writes a four marker conflict reusing the labels of c. Empty
// sections still get their markers.
func writeBlock(b *strings.Builder, c *conflict.Conflict, local, base, remote []string) {
	b.WriteString(c.MarkerLocal())
	writeLines(b, local)
	b.WriteString(conflict.MarkerBase + "\n")
	writeLines(b, base)
	b.WriteString(conflict.MarkerSep + "\n")
	writeLines(b, remote)
	b.WriteString(c.MarkerRemote())
}

func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
	}
}

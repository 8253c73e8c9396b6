package solver

import (
	"strings"

	"github.com/klauern/amt/internal/conflict"
)

// Deletions resolves conflicts where local and remote both removed the base
// content.
type Deletions struct{}

// Name implements Solver.
func (Deletions) Name() string { return "gen_deletions" }

// Tag implements Solver.
func (Deletions) Tag() string { return "dels" }

// Handle implements Solver.
func (Deletions) Handle(c *conflict.Conflict) error {
	if onlyLineFeeds(c.Local()) && onlyLineFeeds(c.Remote()) {
		c.Resolve("\n")
	}
	return nil
}

// onlyLineFeeds reports whether s holds no line with content. Spaces, tabs
// and carriage returns count as content.
func onlyLineFeeds(s string) bool {
	return strings.Trim(s, "\n") == ""
}

// Woven resolves conflicts with the same number of lines on every side when
// each line was changed by at most one side.
type Woven struct{}

// Name implements Solver.
func (Woven) Name() string { return "gen_woven" }

// Tag implements Solver.
func (Woven) Tag() string { return "woven" }

// Handle implements Solver.
func (Woven) Handle(c *conflict.Conflict) error {
	local, base, remote := c.LocalLines(), c.BaseLines(), c.RemoteLines()
	if len(local) != len(base) || len(remote) != len(base) {
		return nil
	}

	var b strings.Builder
	for i := range base {
		switch {
		case local[i] == base[i]:
			b.WriteString(remote[i])
		case remote[i] == base[i]:
			b.WriteString(local[i])
		default:
			return nil
		}
	}
	c.Resolve(b.String())
	return nil
}

// Debug leaves every conflict alone. Combined with a report it lists the
// conflicts of a file.
type Debug struct{}

// Name implements Solver.
func (Debug) Name() string { return "gen_debug" }

// Tag implements Solver.
func (Debug) Tag() string { return "dbg" }

// Handle implements Solver.
func (Debug) Handle(*conflict.Conflict) error { return nil }

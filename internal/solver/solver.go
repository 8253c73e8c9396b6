// Package solver holds the builtin conflict solvers.
//
// Each solver handles one conflict at a time and either resolves it,
// rewrites it into smaller conflicts, or leaves it alone. Solvers are driven
// by a conflict.Walker, usually through Run.
package solver

import (
	"fmt"
	"slices"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/lcs"
	"github.com/samber/lo"
)

// Solver is a conflict handler with a name.
type Solver interface {
	// Name is the tool name used in configuration (gen_simplify, ...).
	Name() string
	// Tag names the report file written for the solver.
	Tag() string
	// Handle resolves, rewrites or ignores c. Errors abort the walk.
	Handle(c *conflict.Conflict) error
}

// Options configures the builtin solvers. Each solver reads the fields it
// needs and ignores the rest.
type Options struct {
	// Order is the gen_additions ordering policy.
	Order Order
	// Whitespace lets gen_additions treat a whitespace-only base as empty.
	Whitespace bool
	// AskOrder is consulted by gen_additions when Order is OrderAsk.
	AskOrder OrderPrompt
	// Confirm is consulted by gen_single_line before resolving.
	Confirm ConfirmFunc
	// MaxCells bounds the LCS table of gen_simplify and gen_single_line.
	MaxCells int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Order:    OrderRemoteFirst,
		MaxCells: lcs.DefaultMaxCells,
	}
}

// Info describes a builtin solver.
type Info struct {
	Name        string
	Tag         string
	Description string
	// DefaultReport is the report mode used when none is requested.
	DefaultReport conflict.ReportMode

	build func(Options) Solver
}

var registry = []Info{
	{
		Name:          "gen_simplify",
		Tag:           "simplify",
		Description:   "Split conflicts around the lines common to the three versions",
		DefaultReport: conflict.ReportNone,
		build:         func(o Options) Solver { return NewSimplifier(o.MaxCells) },
	},
	{
		Name:          "gen_additions",
		Tag:           "adds",
		Description:   "Resolve conflicts where both sides only added lines",
		DefaultReport: conflict.ReportNone,
		build:         func(o Options) Solver { return NewAdditions(o.Order, o.Whitespace, o.AskOrder) },
	},
	{
		Name:          "gen_deletions",
		Tag:           "dels",
		Description:   "Resolve conflicts where both sides deleted the base lines",
		DefaultReport: conflict.ReportNone,
		build:         func(Options) Solver { return Deletions{} },
	},
	{
		Name:          "gen_woven",
		Tag:           "woven",
		Description:   "Resolve conflicts where each line was changed by one side only",
		DefaultReport: conflict.ReportNone,
		build:         func(Options) Solver { return Woven{} },
	},
	{
		Name:          "gen_single_line",
		Tag:           "single_line",
		Description:   "Resolve one line conflicts where each side changed different characters",
		DefaultReport: conflict.ReportNone,
		build:         func(o Options) Solver { return NewSingleLine(o.MaxCells, o.Confirm) },
	},
	{
		Name:          "gen_debug",
		Tag:           "dbg",
		Description:   "Report conflicts without touching them",
		DefaultReport: conflict.ReportUnsolved,
		build:         func(Options) Solver { return Debug{} },
	},
}

// Names returns the names of the builtin solvers.
func Names() []string {
	return lo.Map(registry, func(info Info, _ int) string { return info.Name })
}

// All returns the descriptions of the builtin solvers.
func All() []Info {
	return slices.Clone(registry)
}

// IsBuiltin reports whether name is a builtin solver.
func IsBuiltin(name string) bool {
	_, ok := Describe(name)
	return ok
}

// Describe returns the description of the named solver.
func Describe(name string) (Info, bool) {
	return lo.Find(registry, func(info Info) bool { return info.Name == name })
}

// Lookup builds the named solver.
func Lookup(name string, opts Options) (Solver, error) {
	info, ok := Describe(name)
	if !ok {
		return nil, fmt.Errorf("unknown solver %q", name)
	}
	return info.build(opts), nil
}

// Run walks path with s. An empty report mode selects the solver default.
func Run(path string, s Solver, report conflict.ReportMode, opts ...conflict.WalkerOption) (conflict.MergeStatus, error) {
	if report == "" {
		report = conflict.ReportNone
		if info, ok := Describe(s.Name()); ok {
			report = info.DefaultReport
		}
	}
	opts = append([]conflict.WalkerOption{conflict.WithReport(s.Tag(), report)}, opts...)
	return conflict.Walk(path, s, opts...)
}

// Package lcs computes the longest common subsequence shared by three
// sequences (base, local and remote versions of a conflict).
//
// The analyser is generic over the item type T and over the content type S
// used to report matched runs, so the same algorithm serves character based
// analysis (T = rune, S = string) and line based analysis
// (T = string, S = []string).
package lcs

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaxCells bounds the dynamic programming table of a single call.
// Three inputs of ~160 items each stay below it.
const DefaultMaxCells = 1 << 22

// ErrTooLarge is returned when the inputs would need a table larger than the
// analyser budget.
var ErrTooLarge = errors.New("lcs: input too large")

// Segment is one element of an LCSWithDiff result: either a Subsequence
// (common to the three inputs) or a DiffSubsequence (the gap between two
// common runs).
type Segment interface {
	// Positions returns the 0-based start of the segment in base, local and
	// remote.
	Positions() (base, local, remote int)
	segment()
}

// Subsequence is a maximal run of items found at aligned positions in all
// three inputs.
type Subsequence[S any] struct {
	// Content holds the boxed and concatenated items of the run.
	Content S
	// Length is the number of items in the run.
	Length int

	PosBase   int
	PosLocal  int
	PosRemote int
}

// Positions implements Segment.
func (s Subsequence[S]) Positions() (int, int, int) {
	return s.PosBase, s.PosLocal, s.PosRemote
}

func (Subsequence[S]) segment() {}

// DiffSubsequence is the content of each input lying between two common runs
// (or before the first one, or after the last one). Any of the three spans
// may be empty.
type DiffSubsequence[S any] struct {
	Base   S
	Local  S
	Remote S

	PosBase   int
	PosLocal  int
	PosRemote int
}

// Positions implements Segment.
func (d DiffSubsequence[S]) Positions() (int, int, int) {
	return d.PosBase, d.PosLocal, d.PosRemote
}

func (DiffSubsequence[S]) segment() {}

// Analyser finds common subsequences between three sequences of T.
type Analyser[T comparable, S any] struct {
	equal    func(a, b T) bool
	box      func(item T) S
	concat   func(a, b S) S
	maxCells int
}

// New returns an analyser boxing single items with box and joining adjacent
// runs with concat. Items are compared with ==.
func New[T comparable, S any](box func(item T) S, concat func(a, b S) S) *Analyser[T, S] {
	return &Analyser[T, S]{
		equal:    func(a, b T) bool { return a == b },
		box:      box,
		concat:   concat,
		maxCells: DefaultMaxCells,
	}
}

// Lines returns a line based analyser: each matched line is boxed in a one
// element slice and runs are appended.
func Lines() *Analyser[string, []string] {
	return New(func(line string) []string { return []string{line} }, Append[string])
}

// Runes returns a character based analyser producing string runs.
func Runes() *Analyser[rune, string] {
	return New(func(r rune) string { return string(r) }, func(a, b string) string { return a + b })
}

// Append is the default list concatenation.
func Append[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// WithEquality returns a copy of the analyser using eq to compare items.
func (a *Analyser[T, S]) WithEquality(eq func(a, b T) bool) *Analyser[T, S] {
	c := *a
	c.equal = eq
	return &c
}

// WithMaxCells returns a copy of the analyser with a different table budget.
// A budget of zero or less disables the limit.
func (a *Analyser[T, S]) WithMaxCells(n int) *Analyser[T, S] {
	c := *a
	c.maxCells = n
	return &c
}

// MaxCells returns the table budget of the analyser.
func (a *Analyser[T, S]) MaxCells() int {
	return a.maxCells
}

// TableSize returns the number of cells needed to analyse inputs of the given
// lengths. It saturates at math.MaxInt.
func TableSize(nb, nl, nr int) int {
	size := 1
	for _, n := range []int{nb, nl, nr} {
		if size > math.MaxInt/(n+1) {
			return math.MaxInt
		}
		size *= n + 1
	}
	return size
}

// LCS returns the common runs of base, local and remote in position order.
func (a *Analyser[T, S]) LCS(base, local, remote []T) ([]Subsequence[S], error) {
	matches, err := a.matches(base, local, remote)
	if err != nil {
		return nil, err
	}
	return a.coalesce(base, matches), nil
}

// LCSWithDiff returns the common runs interleaved with the differing spans,
// so that every position of every input is covered exactly once.
func (a *Analyser[T, S]) LCSWithDiff(base, local, remote []T) ([]Segment, error) {
	common, err := a.LCS(base, local, remote)
	if err != nil {
		return nil, err
	}

	var result []Segment
	ib, il, ir := 0, 0, 0
	for _, sub := range common {
		if sub.PosBase > ib || sub.PosLocal > il || sub.PosRemote > ir {
			result = append(result, DiffSubsequence[S]{
				Base:      a.fold(base[ib:sub.PosBase]),
				Local:     a.fold(local[il:sub.PosLocal]),
				Remote:    a.fold(remote[ir:sub.PosRemote]),
				PosBase:   ib,
				PosLocal:  il,
				PosRemote: ir,
			})
		}
		result = append(result, sub)
		ib = sub.PosBase + sub.Length
		il = sub.PosLocal + sub.Length
		ir = sub.PosRemote + sub.Length
	}

	if ib < len(base) || il < len(local) || ir < len(remote) {
		result = append(result, DiffSubsequence[S]{
			Base:      a.fold(base[ib:]),
			Local:     a.fold(local[il:]),
			Remote:    a.fold(remote[ir:]),
			PosBase:   ib,
			PosLocal:  il,
			PosRemote: ir,
		})
	}

	return result, nil
}

type match struct {
	b, l, r int
}

func (a *Analyser[T, S]) same(b, l, r T) bool {
	return a.equal(b, l) && a.equal(l, r)
}

// matches fills the length table bottom-up then walks it back from the end of
// the three inputs. When items differ, the walk prefers dropping a base item,
// then a local item, then a remote item, among the choices keeping the
// longest result.
func (a *Analyser[T, S]) matches(base, local, remote []T) ([]match, error) {
	nb, nl, nr := len(base), len(local), len(remote)
	if nb == 0 || nl == 0 || nr == 0 {
		return nil, nil
	}
	if a.maxCells > 0 && TableSize(nb, nl, nr) > a.maxCells {
		return nil, fmt.Errorf("%w: %d x %d x %d items", ErrTooLarge, nb, nl, nr)
	}

	t := newTable(nb, nl, nr)
	for i := 1; i <= nb; i++ {
		for j := 1; j <= nl; j++ {
			for k := 1; k <= nr; k++ {
				if a.same(base[i-1], local[j-1], remote[k-1]) {
					t.set(i, j, k, t.get(i-1, j-1, k-1)+1)
				} else {
					t.set(i, j, k, max(t.get(i-1, j, k), t.get(i, j-1, k), t.get(i, j, k-1)))
				}
			}
		}
	}

	n := int(t.get(nb, nl, nr))
	out := make([]match, n)
	i, j, k := nb, nl, nr
	for n > 0 {
		if a.same(base[i-1], local[j-1], remote[k-1]) {
			n--
			out[n] = match{b: i - 1, l: j - 1, r: k - 1}
			i, j, k = i-1, j-1, k-1
			continue
		}
		lb, ll, lr := t.get(i-1, j, k), t.get(i, j-1, k), t.get(i, j, k-1)
		switch {
		case lb >= ll && lb >= lr:
			i--
		case ll >= lr:
			j--
		default:
			k--
		}
	}
	return out, nil
}

func (a *Analyser[T, S]) coalesce(base []T, matches []match) []Subsequence[S] {
	var result []Subsequence[S]
	for idx, m := range matches {
		item := a.box(base[m.b])
		if idx > 0 {
			prev := matches[idx-1]
			if m.b == prev.b+1 && m.l == prev.l+1 && m.r == prev.r+1 {
				last := &result[len(result)-1]
				last.Content = a.concat(last.Content, item)
				last.Length++
				continue
			}
		}
		result = append(result, Subsequence[S]{
			Content:   item,
			Length:    1,
			PosBase:   m.b,
			PosLocal:  m.l,
			PosRemote: m.r,
		})
	}
	return result
}

// fold boxes and concatenates items; it returns the zero S for no items.
func (a *Analyser[T, S]) fold(items []T) S {
	var out S
	for i, item := range items {
		if i == 0 {
			out = a.box(item)
			continue
		}
		out = a.concat(out, a.box(item))
	}
	return out
}

// table stores prefix LCS lengths; index (i, j, k) covers base[:i],
// local[:j] and remote[:k].
type table struct {
	cells  []int32
	nl, nr int
}

func newTable(nb, nl, nr int) *table {
	return &table{
		cells: make([]int32, (nb+1)*(nl+1)*(nr+1)),
		nl:    nl + 1,
		nr:    nr + 1,
	}
}

func (t *table) get(i, j, k int) int32 {
	return t.cells[(i*t.nl+j)*t.nr+k]
}

func (t *table) set(i, j, k int, v int32) {
	t.cells[(i*t.nl+j)*t.nr+k] = v
}

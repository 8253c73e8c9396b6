// Package conflict parses and rewrites files holding diff3 style merge
// conflicts.
//
// A Walker streams a conflicted file and hands each conflict block to the
// caller as a Conflict. Whatever the caller does to the Conflict (resolve it,
// rewrite it or leave it alone) is written to a side file which replaces the
// original once the walk is applied.
package conflict

import "strings"

// Conflict marker prefixes, as written by git with merge.conflictstyle=diff3.
const (
	MarkerStart = "<<<<<<<"
	MarkerBase  = "|||||||"
	MarkerSep   = "======="
	MarkerEnd   = ">>>>>>>"
)

// MarkerOf returns the conflict marker line starts with, or "" when line is
// not a marker line. A marker is exactly seven characters followed by a
// space and a label, a line ending, or nothing, so "==========" under a
// heading is plain text.
func MarkerOf(line string) string {
	for _, m := range []string{MarkerStart, MarkerBase, MarkerSep, MarkerEnd} {
		rest, ok := strings.CutPrefix(line, m)
		if !ok {
			continue
		}
		switch {
		case rest == "", rest == "\n", rest == "\r", rest == "\r\n", rest[0] == ' ':
			return m
		}
		return ""
	}
	return ""
}

// IsMarker reports whether line is a conflict marker line.
func IsMarker(line string) bool {
	return MarkerOf(line) != ""
}

// Conflict is one <<<<<<< / ||||||| / ======= / >>>>>>> region.
//
// The three spans and the marker lines are fixed at creation. Only Resolve
// and Rewrite change a Conflict.
type Conflict struct {
	local  string
	base   string
	remote string

	markerLocal  string
	markerBase   string
	markerSep    string
	markerRemote string

	content   string
	rewritten bool
	resolved  bool

	line int
}

// New returns a conflict with bare base and separator markers.
// markerLocal and markerRemote are full lines, newline included.
func New(local, base, remote, markerLocal, markerRemote string) *Conflict {
	return &Conflict{
		local:        local,
		base:         base,
		remote:       remote,
		markerLocal:  markerLocal,
		markerBase:   MarkerBase + "\n",
		markerSep:    MarkerSep + "\n",
		markerRemote: markerRemote,
	}
}

// Local returns the local span.
func (c *Conflict) Local() string { return c.local }

// Base returns the base span.
func (c *Conflict) Base() string { return c.base }

// Remote returns the remote span.
func (c *Conflict) Remote() string { return c.remote }

// MarkerLocal returns the opening marker line, label included.
func (c *Conflict) MarkerLocal() string { return c.markerLocal }

// MarkerRemote returns the closing marker line, label included.
func (c *Conflict) MarkerRemote() string { return c.markerRemote }

// Line returns the 1-based line of the opening marker in the source file, or
// 0 for a conflict built with New.
func (c *Conflict) Line() int { return c.line }

// Raw rebuilds the original block byte for byte.
func (c *Conflict) Raw() string {
	var b strings.Builder
	b.Grow(len(c.markerLocal) + len(c.local) + len(c.markerBase) + len(c.base) +
		len(c.markerSep) + len(c.remote) + len(c.markerRemote))
	b.WriteString(c.markerLocal)
	b.WriteString(c.local)
	b.WriteString(c.markerBase)
	b.WriteString(c.base)
	b.WriteString(c.markerSep)
	b.WriteString(c.remote)
	b.WriteString(c.markerRemote)
	return b.String()
}

// Content returns the text set by Resolve or Rewrite, and whether one of
// them was called.
func (c *Conflict) Content() (string, bool) {
	return c.content, c.rewritten
}

// Resolve replaces the block with text and marks the conflict solved.
func (c *Conflict) Resolve(text string) {
	c.content = text
	c.rewritten = true
	c.resolved = true
}

// Rewrite replaces the block with text that may still hold conflicts.
// It never clears the solved flag set by an earlier Resolve.
func (c *Conflict) Rewrite(text string) {
	c.content = text
	c.rewritten = true
}

// IsResolved reports whether Resolve was called.
func (c *Conflict) IsResolved() bool { return c.resolved }

// IsRewritten reports whether Resolve or Rewrite was called.
func (c *Conflict) IsRewritten() bool { return c.rewritten }

// LocalLines returns the local span as newline terminated lines.
func (c *Conflict) LocalLines() []string { return Lines(c.local) }

// BaseLines returns the base span as newline terminated lines.
func (c *Conflict) BaseLines() []string { return Lines(c.base) }

// RemoteLines returns the remote span as newline terminated lines.
func (c *Conflict) RemoteLines() []string { return Lines(c.remote) }

// Lines splits text after each newline. The empty fragment following a
// final newline is dropped and a missing final newline is added, so joining
// the result gives back text with a trailing newline.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "\n") {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}

// Package imports resolves conflicts confined to the import section of a
// source file by merging the imports of the base, local and remote versions.
//
// Import statements must fit on one line and be grouped in a single section
// of the file. Language specifics live behind the Language interface.
package imports

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/logging"
)

// Language classifies the lines of a source file.
type Language interface {
	// Name identifies the language ("java", "kotlin").
	Name() string
	// IsImportLine reports whether line is an import statement.
	IsImportLine(line string) bool
	// IsAllowedWithinSection reports whether a non import line may appear
	// inside the import section. Such lines are dropped when the section is
	// rewritten.
	IsAllowedWithinSection(line string) bool
	// Group returns the group of an import. Groups are written in ascending
	// order, separated by a blank line.
	Group(imp string) int
}

// Equivalence is implemented by languages where different lines can import
// the same element (extra spaces, aliases).
type Equivalence interface {
	// Same reports whether a and b import the same element.
	Same(a, b string) (bool, error)
	// Incompatible reports whether a and b import the same element in ways
	// that cannot both be kept.
	Incompatible(a, b string) bool
}

// ErrIncompatibleImports is returned when the versions import an element in
// incompatible ways.
var ErrIncompatibleImports = errors.New("incompatible imports")

// Solver merges import sections.
type Solver struct {
	lang Language
}

// NewSolver returns a solver for lang.
func NewSolver(lang Language) *Solver {
	return &Solver{lang: lang}
}

// Solve rewrites the import section of merged with the imports merged from
// base, local and remote. It refuses (returning false) when no conflict
// touches imports or when a conflict mixes imports with other code. It
// returns whether merged is free of conflicts afterwards.
func (s *Solver) Solve(base, local, remote, merged string) (bool, error) {
	content, err := readLines(merged)
	if err != nil {
		return false, err
	}
	if !s.hasImportConflicts(content) {
		logging.Info("no import conflicts to solve", logging.Path(merged), logging.Tool(s.lang.Name()))
		return false, nil
	}

	versions := make([][]string, 3)
	for i, path := range []string{base, local, remote} {
		if versions[i], err = s.readImports(path); err != nil {
			return false, err
		}
	}
	imports, err := s.merge(versions[0], versions[1], versions[2])
	if err != nil {
		return false, err
	}

	start, end := s.sectionRange(content)
	out, remaining := s.replaceSection(content, imports, start, end)
	if err := writeAtomic(merged, out); err != nil {
		return false, err
	}

	logging.Debug("import section rewritten",
		logging.Path(merged),
		logging.Tool(s.lang.Name()),
		logging.Count(len(imports)))
	return !remaining, nil
}

// hasImportConflicts reports whether at least one conflict holds imports
// and no conflict mixes imports with other code.
func (s *Solver) hasImportConflicts(content []string) bool {
	inConflict, hasImport, hasOther := false, false, false
	withImports := 0

	for _, line := range content {
		switch {
		case !inConflict:
			if conflict.MarkerOf(line) == conflict.MarkerStart {
				inConflict, hasImport, hasOther = true, false, false
			}
		case conflict.MarkerOf(line) == conflict.MarkerEnd:
			inConflict = false
			if hasImport {
				if hasOther {
					return false
				}
				withImports++
			}
		case conflict.IsMarker(line):
		case s.lang.IsImportLine(line):
			hasImport = true
		case !s.lang.IsAllowedWithinSection(line):
			hasOther = true
		}
	}
	return withImports > 0
}

func (s *Solver) readImports(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	var imports []string
	for _, line := range lines {
		if s.lang.IsImportLine(line) {
			imports = append(imports, line)
		}
	}
	slices.Sort(imports)
	return imports, nil
}

// merge keeps the base imports present in every version, then the imports
// added by local, then those added by remote.
func (s *Solver) merge(base, local, remote []string) ([]string, error) {
	local, remote = slices.Clone(local), slices.Clone(remote)
	var merged []string

	for _, imp := range base {
		il, err := s.index(local, imp)
		if err != nil {
			return nil, err
		}
		ir, err := s.index(remote, imp)
		if err != nil {
			return nil, err
		}
		if il >= 0 && ir >= 0 {
			merged = append(merged, imp)
			local = slices.Delete(local, il, il+1)
			remote = slices.Delete(remote, ir, ir+1)
		}
	}

	for _, added := range [][]string{local, remote} {
		for _, imp := range added {
			inMerged, err := s.index(merged, imp)
			if err != nil {
				return nil, err
			}
			inBase, err := s.index(base, imp)
			if err != nil {
				return nil, err
			}
			if inMerged < 0 && inBase < 0 {
				merged = append(merged, imp)
			}
		}
	}
	return merged, nil
}

// index returns the position of imp in list, comparing with the language
// equivalence when it has one.
func (s *Solver) index(list []string, imp string) (int, error) {
	eq, ok := s.lang.(Equivalence)
	if !ok {
		return slices.Index(list, imp), nil
	}
	for i, other := range list {
		same, err := eq.Same(imp, other)
		if err != nil {
			return -1, err
		}
		if !same {
			continue
		}
		if eq.Incompatible(imp, other) {
			return -1, fmt.Errorf("%w: %q and %q", ErrIncompatibleImports,
				strings.TrimSpace(imp), strings.TrimSpace(other))
		}
		return i, nil
	}
	return -1, nil
}

// sectionRange returns the first and last line index of the import
// section, conflicts holding imports included.
func (s *Solver) sectionRange(content []string) (int, int) {
	start, last := -1, -1
	inConflict, inSection, hasImports := false, false, false
	conflictStart := 0

	for i, line := range content {
		if inConflict {
			switch {
			case conflict.MarkerOf(line) == conflict.MarkerEnd:
				inConflict = false
				if hasImports {
					if !inSection {
						inSection, start = true, conflictStart
					}
					last = i
				}
			case s.lang.IsImportLine(line):
				hasImports = true
				last = i
			}
			continue
		}
		switch {
		case conflict.MarkerOf(line) == conflict.MarkerStart:
			inConflict, hasImports, conflictStart = true, false, i
		case s.lang.IsImportLine(line):
			if !inSection {
				inSection, start = true, i
			}
			last = i
		case inSection && !s.lang.IsAllowedWithinSection(line):
			return start, last
		}
	}
	return start, last
}

// replaceSection swaps lines start..end for the sorted imports and reports
// whether conflict markers remain elsewhere.
func (s *Solver) replaceSection(content, imports []string, start, end int) (string, bool) {
	var b strings.Builder
	remaining := false
	for i, line := range content {
		if i < start || i > end {
			b.WriteString(line)
			if conflict.IsMarker(line) {
				remaining = true
			}
			continue
		}
		if i == start {
			s.writeImports(&b, imports)
		}
	}
	return b.String(), remaining
}

func (s *Solver) writeImports(b *strings.Builder, imports []string) {
	sorted := slices.Clone(imports)
	slices.SortFunc(sorted, func(x, y string) int {
		return cmp.Or(cmp.Compare(s.lang.Group(x), s.lang.Group(y)), strings.Compare(x, y))
	})
	for i, imp := range sorted {
		if i > 0 && s.lang.Group(imp) != s.lang.Group(sorted[i-1]) {
			b.WriteString("\n")
		}
		b.WriteString(imp)
		if !strings.HasSuffix(imp, "\n") {
			b.WriteString("\n")
		}
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
}

// writeAtomic writes content next to path then renames it over path.
func writeAtomic(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading %s info: %w", path, err)
	}
	staged := path + conflict.StagedSuffix
	if err := os.WriteFile(staged, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", staged, err)
	}
	if err := os.Rename(staged, path); err != nil {
		os.Remove(staged)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

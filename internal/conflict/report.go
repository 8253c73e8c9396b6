package conflict

import (
	"fmt"
	"io"
	"strings"
)

// ReportMode filters the conflicts written to a report file.
type ReportMode string

const (
	// ReportNone disables the report file.
	ReportNone ReportMode = "none"

	// ReportSolved lists resolved conflicts with their resolution.
	ReportSolved ReportMode = "solved"

	// ReportUnsolved lists rewritten and untouched conflicts.
	ReportUnsolved ReportMode = "unsolved"

	// ReportFull lists every conflict.
	ReportFull ReportMode = "full"
)

// Report banners.
const (
	bannerConflict   = "\n*******  CONFLICT  *******\n"
	bannerResolution = "\nv v v v RESOLUTION v v v v\n"
	bannerRewritten  = "\nv v v v RE-WRITTEN v v v v\n"
	bannerUnresolved = "\n××××××× UNRESOLVED ×××××××\n"
)

// IsValid returns true if the mode is recognized.
func (m ReportMode) IsValid() bool {
	switch m {
	case ReportNone, ReportSolved, ReportUnsolved, ReportFull:
		return true
	default:
		return false
	}
}

// AllReportModes returns every report mode.
func AllReportModes() []ReportMode {
	return []ReportMode{ReportNone, ReportSolved, ReportUnsolved, ReportFull}
}

// String returns the string representation of the mode.
func (m ReportMode) String() string {
	return string(m)
}

// ParseReportMode parses a mode name, case insensitively. The empty string
// maps to ReportNone.
func ParseReportMode(s string) (ReportMode, error) {
	if s == "" {
		return ReportNone, nil
	}
	m := ReportMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return ReportNone, fmt.Errorf("invalid report mode %q (valid: none, solved, unsolved, full)", s)
	}
	return m, nil
}

func (m ReportMode) includesSolved() bool {
	return m == ReportSolved || m == ReportFull
}

func (m ReportMode) includesUnsolved() bool {
	return m == ReportUnsolved || m == ReportFull
}

// ReportSuffix ends the name of every report file.
const ReportSuffix = "-report"

// ReportPath returns the report file written next to path for tag.
func ReportPath(path, tag string) string {
	return path + "." + tag + ReportSuffix
}

// writeEntry appends the report section for c, if mode selects it.
func writeEntry(w io.Writer, mode ReportMode, c *Conflict) error {
	var parts []string
	switch {
	case c.IsResolved():
		if !mode.includesSolved() {
			return nil
		}
		parts = []string{bannerConflict, c.Raw(), bannerResolution, c.content}
	case c.IsRewritten():
		if !mode.includesUnsolved() {
			return nil
		}
		parts = []string{bannerConflict, c.Raw(), bannerRewritten, c.content}
	default:
		if !mode.includesUnsolved() {
			return nil
		}
		parts = []string{bannerUnresolved, c.Raw()}
	}
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

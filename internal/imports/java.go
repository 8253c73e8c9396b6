package imports

import (
	"regexp"
	"strings"
	"unicode"
)

// Supported languages.
const (
	LanguageJava   = "java"
	LanguageKotlin = "kotlin"
)

var (
	javaImportRegex = regexp.MustCompile(`^\s*import\s+(static\s+)?(.*)\s*;\s*$`)
	emptyLineRegex  = regexp.MustCompile(`^\s*$`)
)

// Java classifies Java source lines.
type Java struct {
	groups Groups
}

// NewJava returns the Java language ordering imports with groups.
func NewJava(groups Groups) *Java {
	return &Java{groups: groups}
}

// Name implements Language.
func (j *Java) Name() string { return LanguageJava }

// IsImportLine implements Language.
func (j *Java) IsImportLine(line string) bool {
	return javaImportRegex.MatchString(line)
}

// IsAllowedWithinSection implements Language. Only blank lines are allowed.
func (j *Java) IsAllowedWithinSection(line string) bool {
	return emptyLineRegex.MatchString(line)
}

// Group implements Language.
func (j *Java) Group(imp string) int {
	return j.groups.Group(imp)
}

// Same implements Equivalence: imports differing only by whitespace are
// the same.
func (j *Java) Same(a, b string) (bool, error) {
	return javaKey(a) == javaKey(b), nil
}

// Incompatible implements Equivalence. Java imports have no alias, so two
// imports of the same element are always compatible.
func (j *Java) Incompatible(string, string) bool {
	return false
}

func javaKey(line string) string {
	m := javaImportRegex.FindStringSubmatch(line)
	if m == nil {
		return compact(line)
	}
	key := compact(m[2])
	if m[1] != "" {
		key = "static " + key
	}
	return key
}

// compact removes every whitespace character.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

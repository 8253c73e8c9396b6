package imports

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	kotlinAliasRegex   = regexp.MustCompile(`^\s*import\s+(.*)\s+as\s+([^.;]*)\s*;?\s*`)
	kotlinNoAliasRegex = regexp.MustCompile(`^\s*import\s+([^;]+)(\s+as\s+([^;]+))?\s*;?\s*$`)
)

// ErrAliasClash is returned when two different elements are imported under
// the same alias.
var ErrAliasClash = errors.New("two imports use the same alias")

// Kotlin classifies Kotlin source lines. Imports may carry an alias.
type Kotlin struct {
	groups Groups
}

// NewKotlin returns the Kotlin language ordering imports with groups.
func NewKotlin(groups Groups) *Kotlin {
	return &Kotlin{groups: groups}
}

// Name implements Language.
func (k *Kotlin) Name() string { return LanguageKotlin }

// IsImportLine implements Language.
func (k *Kotlin) IsImportLine(line string) bool {
	return kotlinAliasRegex.MatchString(line) || kotlinNoAliasRegex.MatchString(line)
}

// IsAllowedWithinSection implements Language. Only blank lines are allowed.
func (k *Kotlin) IsAllowedWithinSection(line string) bool {
	return emptyLineRegex.MatchString(line)
}

// Group implements Language.
func (k *Kotlin) Group(imp string) int {
	return k.groups.Group(imp)
}

// Same implements Equivalence: imports of the same element are the same
// whatever their alias. Two different elements sharing an alias is an
// error.
func (k *Kotlin) Same(a, b string) (bool, error) {
	ia, ib := parseKotlinImport(a), parseKotlinImport(b)
	same := ia.canonical == ib.canonical
	if !same && ia.hasAlias && ib.hasAlias && ia.alias == ib.alias {
		return false, fmt.Errorf("%w %q: %s and %s", ErrAliasClash, ia.alias, ia.canonical, ib.canonical)
	}
	return same, nil
}

// Incompatible implements Equivalence: the same element imported under two
// aliases, or under an alias and without one.
func (k *Kotlin) Incompatible(a, b string) bool {
	ia, ib := parseKotlinImport(a), parseKotlinImport(b)
	if !ia.hasAlias && !ib.hasAlias {
		return false
	}
	sameCanonical := ia.canonical == ib.canonical
	sameAlias := ia.hasAlias == ib.hasAlias && ia.alias == ib.alias
	return sameCanonical != sameAlias
}

type kotlinImport struct {
	canonical string
	alias     string
	hasAlias  bool
}

func parseKotlinImport(line string) kotlinImport {
	if m := kotlinAliasRegex.FindStringSubmatch(line); m != nil {
		return kotlinImport{canonical: compact(m[1]), alias: compact(m[2]), hasAlias: true}
	}
	if m := kotlinNoAliasRegex.FindStringSubmatch(line); m != nil {
		return kotlinImport{canonical: compact(m[1])}
	}
	return kotlinImport{canonical: compact(line)}
}

package imports

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
)

// GroupRule assigns imports starting with Prefix to Group. Imports are
// written by ascending group, alphabetically within a group.
type GroupRule struct {
	Prefix string `toml:"prefix"`
	Group  int    `toml:"group"`
}

// Groups orders imports by the longest matching prefix.
type Groups []GroupRule

// NewGroups sorts rules so that the longest prefix wins.
func NewGroups(rules []GroupRule) Groups {
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b GroupRule) int {
		return cmp.Compare(len(b.Prefix), len(a.Prefix))
	})
	return sorted
}

// Group returns the group of imp. Imports matching no rule go after every
// configured group.
func (g Groups) Group(imp string) int {
	for _, rule := range g {
		if strings.HasPrefix(imp, rule.Prefix) {
			return rule.Group
		}
	}
	return len(g)
}

// Builtin preset names.
const (
	PresetAndroid = "android"
	PresetIdea    = "idea"
	PresetEclipse = "eclipse"
)

var (
	androidGroups = []GroupRule{
		{"import android.", 0}, {"import com.", 1}, {"import junit.", 2},
		{"import net.", 3}, {"import org.", 4}, {"import java.", 5},
		{"import javax.", 6}, {"import ", 7}, {"import static ", 8},
	}
	ideaGroups = []GroupRule{
		{"import ", 0}, {"import javax.", 1}, {"import java.", 2},
		{"import static ", 3},
	}
	eclipseGroups = []GroupRule{
		{"import static ", 0}, {"import java.", 1}, {"import javax.", 2},
		{"import org.", 3}, {"import com.", 4}, {"import ", 5},
	}
)

// ErrUnknownPreset is returned for a preset that is neither builtin nor
// loaded from a presets file.
var ErrUnknownPreset = errors.New("unknown import order preset")

// Presets maps preset names to group rules for one language.
type Presets map[string][]GroupRule

// BuiltinPresets returns the presets shipped for language ("java" or
// "kotlin").
func BuiltinPresets(language string) Presets {
	presets := Presets{
		PresetAndroid: androidGroups,
		PresetIdea:    ideaGroups,
	}
	if language == LanguageJava {
		presets[PresetEclipse] = eclipseGroups
	}
	return presets
}

// Names returns the sorted preset names.
func (p Presets) Names() []string {
	names := lo.Keys(p)
	slices.Sort(names)
	return names
}

// Groups resolves a preset. The empty name means no grouping.
func (p Presets) Groups(name string) (Groups, error) {
	if name == "" {
		return nil, nil
	}
	rules, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, name, strings.Join(p.Names(), ", "))
	}
	return NewGroups(rules), nil
}

// presetsFile is the layout of a custom presets file:
//
//	[presets.mycompany]
//	languages = ["java", "kotlin"]
//	groups = [
//	  { prefix = "import com.mycompany.", group = 0 },
//	  { prefix = "import ", group = 1 },
//	]
type presetsFile struct {
	Presets map[string]presetSpec `toml:"presets"`
}

type presetSpec struct {
	Languages []string    `toml:"languages"`
	Groups    []GroupRule `toml:"groups"`
}

// LoadPresets returns the builtin presets of language extended with the
// presets of the TOML file at path. A preset without a languages list
// applies to every language. Custom presets override builtin ones.
func LoadPresets(path, language string) (Presets, error) {
	presets := BuiltinPresets(language)
	if path == "" {
		return presets, nil
	}

	var file presetsFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return nil, fmt.Errorf("presets file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	for name, spec := range file.Presets {
		if len(spec.Languages) > 0 && !lo.Contains(spec.Languages, language) {
			continue
		}
		if len(spec.Groups) == 0 {
			return nil, fmt.Errorf("presets file %s: preset %q has no groups", path, name)
		}
		presets[name] = spec.Groups
	}
	return presets, nil
}

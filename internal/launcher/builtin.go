package launcher

import (
	"fmt"
	"slices"
	"strings"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/imports"
	"github.com/klauern/amt/internal/solver"
	"github.com/klauern/amt/internal/util"
)

// Builtin import solvers.
const (
	ToolJavaImports   = "java_imports"
	ToolKotlinImports = "kotlin_imports"
)

// Extra options understood by the builtin tools.
const (
	ExtraOrder      = "order"
	ExtraWhitespace = "whitespace"
	ExtraReport     = "report"
	ExtraPresets    = "presets"
)

var importTools = map[string]string{
	ToolJavaImports:   imports.LanguageJava,
	ToolKotlinImports: imports.LanguageKotlin,
}

// BuiltinTools returns the names of the tools run in-process.
func BuiltinTools() []string {
	names := solver.Names()
	names = append(names, ToolJavaImports, ToolKotlinImports)
	return names
}

// IsBuiltin reports whether tool runs in-process.
func IsBuiltin(tool string) bool {
	return slices.Contains(BuiltinTools(), tool)
}

// runBuiltin runs a builtin tool and reports whether the merged file is
// free of conflicts afterwards.
func (l *Launcher) runBuiltin(tool string, files Files) (bool, error) {
	extras := l.cfg.Tool(tool).Extras
	if lang, ok := importTools[tool]; ok {
		return l.runImports(lang, files, extras)
	}

	opts := l.solverOpts
	if v, ok := extras[ExtraOrder]; ok {
		order, err := solver.ParseOrder(v)
		if err != nil {
			return false, err
		}
		opts.Order = order
	}
	if v, ok := extras[ExtraWhitespace]; ok {
		opts.Whitespace = parseBool(v)
	}

	report := l.cfg.GetReportMode()
	if v, ok := extras[ExtraReport]; ok {
		mode, err := conflict.ParseReportMode(v)
		if err != nil {
			return false, err
		}
		report = mode
	}

	s, err := solver.Lookup(tool, opts)
	if err != nil {
		return false, err
	}
	var walkOpts []conflict.WalkerOption
	if l.out != nil {
		walkOpts = append(walkOpts, conflict.WithVerbose(l.out))
	}
	status, err := solver.Run(files.Merged, s, report, walkOpts...)
	if err != nil {
		return false, err
	}
	return status == conflict.StatusSuccess, nil
}

func (l *Launcher) runImports(lang string, files Files, extras map[string]string) (bool, error) {
	presetsFile := l.cfg.Imports.PresetsFile
	if v, ok := extras[ExtraPresets]; ok {
		presetsFile = v
	}
	presets, err := imports.LoadPresets(util.ExpandHome(presetsFile), lang)
	if err != nil {
		return false, err
	}

	order := l.cfg.Imports.Order
	if v, ok := extras[ExtraOrder]; ok {
		order = v
	}
	groups, err := presets.Groups(order)
	if err != nil {
		return false, err
	}

	var language imports.Language
	switch lang {
	case imports.LanguageJava:
		language = imports.NewJava(groups)
	case imports.LanguageKotlin:
		language = imports.NewKotlin(groups)
	default:
		return false, fmt.Errorf("no import solver for %s", lang)
	}
	return imports.NewSolver(language).Solve(files.Base, files.Local, files.Remote, files.Merged)
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || s == "true" || s == "1" || s == "yes" || s == "on"
}

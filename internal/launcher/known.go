package launcher

import (
	"slices"

	"github.com/samber/lo"
)

// pathPlaceholder is replaced by the tool path in known commands.
const pathPlaceholder = "{path}"

// knownCommands are the command templates of third party merge tools.
var knownCommands = map[string]string{
	"bc":        `"{path}" "$LOCAL" "$REMOTE" "$BASE" -mergeoutput="$MERGED"`,
	"bc3":       `"{path}" "$LOCAL" "$REMOTE" "$BASE" -mergeoutput="$MERGED"`,
	"bcompare":  `"{path}" "$LOCAL" "$REMOTE" "$BASE" -mergeoutput="$MERGED"`,
	"diffmerge": `"{path}" --merge --result="$MERGED" "$LOCAL" "$BASE" "$REMOTE"`,
	"diffuse":   `"{path}" "$LOCAL" "$MERGED" "$REMOTE" "$BASE"`,
	"ecmerge":   `"{path}" "$BASE" "$LOCAL" "$REMOTE" --default --mode=merge3 --to="$MERGED"`,
	"emerge":    `"{path}" -f emerge-files-with-ancestor-command "$LOCAL" "$REMOTE" "$BASE" "$MERGED"`,
	"kdiff3": `"{path}" --auto --L1 "$MERGED (Base)" --L2 "$MERGED (Local)" --L3 "$MERGED (Remote)" ` +
		`-o "$MERGED" "$BASE" "$LOCAL" "$REMOTE"`,
	"kompare": `"{path}" "$LOCAL" "$REMOTE"`,
	"meld":    `"{path}" --output "$MERGED" "$LOCAL" "$BASE" "$REMOTE"`,
	"p4merge": `"{path}" "$BASE" "$REMOTE" "$LOCAL" "$MERGED"`,
	"tkdiff":  `"{path}" -a "$BASE" -o "$MERGED" "$LOCAL" "$REMOTE"`,
	"xxdiff": `"{path}" -X --show-merged-pane -R 'Accel.SaveAsMerged: "Ctrl+S"' -R 'Accel.Search: "Ctrl+F"' ` +
		`-R 'Accel.SearchForward: "Ctrl+G"' --merged-file "$MERGED" "$LOCAL" "$BASE" "$REMOTE"`,

	"vimdiff":   `"{path}" -f -d -c '4wincmd w | wincmd J' "$LOCAL" "$BASE" "$REMOTE" "$MERGED"`,
	"gvimdiff":  `"{path}" -f -d -c '4wincmd w | wincmd J' "$LOCAL" "$BASE" "$REMOTE" "$MERGED"`,
	"vimdiff2":  `"{path}" -f -d -c 'wincmd l' "$LOCAL" "$MERGED" "$REMOTE"`,
	"gvimdiff2": `"{path}" -f -d -c 'wincmd l' "$LOCAL" "$MERGED" "$REMOTE"`,
	"vimdiff3":  `"{path}" -f -d -c 'hid | hid | hid' "$LOCAL" "$REMOTE" "$BASE" "$MERGED"`,
	"gvimdiff3": `"{path}" -f -d -c 'hid | hid | hid' "$LOCAL" "$REMOTE" "$BASE" "$MERGED"`,

	"araxis":      `"{path}" -wait -merge -3 -a1 "$BASE" "$LOCAL" "$REMOTE" "$MERGED"`,
	"deltawalker": `"{path}" "$LOCAL" "$REMOTE" "$BASE" -merged="$MERGED"`,
	"opendiff":    `"{path}" "$LOCAL" "$REMOTE" -ancestor "$BASE" -merge "$MERGED"`,

	"codecompare":   `"{path}" -MF="$LOCAL" -TF="$REMOTE" -BF="$BASE" -RF="$MERGED"`,
	"examdiff":      `"{path}" -merge "$LOCAL" "$BASE" "$REMOTE" -o:"$MERGED" -nh`,
	"tortoisemerge": `"{path}" -base "$BASE" -mine "$LOCAL" -theirs "$REMOTE" -merged "$MERGED"`,
	"winmerge":      `"{path}" -u -e -dl Local -dr Remote "$LOCAL" "$REMOTE" "$MERGED"`,
}

// knownTrusts lists the external tools whose exit code tells whether
// conflicts remain. Builtin tools are always trusted.
var knownTrusts = map[string]bool{
	"deltawalker": true,
	"emerge":      true,
	"diffmerge":   true,
	"gvimdiff":    true,
	"gvimdiff2":   true,
	"gvimdiff3":   true,
	"kdiff3":      true,
	"tkdiff":      true,
	"kompare":     true,
	"vimdiff":     true,
	"vimdiff2":    true,
	"vimdiff3":    true,
}

// knownExtensions restricts tools to the files they understand.
var knownExtensions = map[string][]string{
	ToolJavaImports:   {"java"},
	ToolKotlinImports: {"kt", "kts"},
}

// KnownTools returns the names of the known external tools, sorted.
func KnownTools() []string {
	names := lo.Keys(knownCommands)
	slices.Sort(names)
	return names
}

// IsKnown reports whether tool is a known external tool.
func IsKnown(tool string) bool {
	_, ok := knownCommands[tool]
	return ok
}

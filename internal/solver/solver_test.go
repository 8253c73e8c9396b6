package solver

import (
	"path/filepath"
	"testing"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMerged(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Merged.java")
	util.WriteFile(t, path, content)
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	return util.ReadFile(t, path)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"gen_simplify",
		"gen_additions",
		"gen_deletions",
		"gen_woven",
		"gen_single_line",
		"gen_debug",
	}, Names())
}

func TestTags(t *testing.T) {
	tags := map[string]string{}
	for _, info := range All() {
		tags[info.Name] = info.Tag
	}
	assert.Equal(t, map[string]string{
		"gen_simplify":    "simplify",
		"gen_additions":   "adds",
		"gen_deletions":   "dels",
		"gen_woven":       "woven",
		"gen_single_line": "single_line",
		"gen_debug":       "dbg",
	}, tags)
}

func TestLookup(t *testing.T) {
	for _, info := range All() {
		t.Run(info.Name, func(t *testing.T) {
			s, err := Lookup(info.Name, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, info.Name, s.Name())
			assert.Equal(t, info.Tag, s.Tag())
			assert.True(t, IsBuiltin(info.Name))
		})
	}

	_, err := Lookup("meld", DefaultOptions())
	assert.Error(t, err)
	assert.False(t, IsBuiltin("meld"))
}

func TestRun_DefaultReport(t *testing.T) {
	content := "<<<<<<<\na\n|||||||\nb\n=======\nc\n>>>>>>>\n"
	path := writeMerged(t, content)

	status, err := Run(path, Debug{}, "")
	require.NoError(t, err)

	assert.Equal(t, conflict.StatusConflictsRemain, status)
	assert.Equal(t, content, readFile(t, path))
	assert.Equal(t, "\n××××××× UNRESOLVED ×××××××\n"+content, readFile(t, conflict.ReportPath(path, "dbg")))
}

func TestRun_ChainedSolvers(t *testing.T) {
	// Simplify first, then the smaller conflicts are pure additions.
	path := writeMerged(t, "<<<<<<< HEAD\nfoo\nbar\nbacon\n||||||| base\nbar\n=======\nbar\neggs\n>>>>>>> feature\n")

	status, err := Run(path, NewSimplifier(0), conflict.ReportNone)
	require.NoError(t, err)
	require.Equal(t, conflict.StatusConflictsRemain, status)

	status, err = Run(path, NewAdditions(OrderLocalFirst, false, nil), conflict.ReportNone)
	require.NoError(t, err)
	assert.Equal(t, conflict.StatusSuccess, status)
	assert.Equal(t, "foo\nbar\nbacon\neggs\n", readFile(t, path))
}

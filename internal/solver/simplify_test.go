package solver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/klauern/amt/internal/conflict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConflict builds a conflict with bare markers.
func fakeConflict(local, base, remote string) *conflict.Conflict {
	return conflict.New(local, base, remote, "<<<<<<<\n", ">>>>>>>\n")
}

func block(local, base, remote string) string {
	return "<<<<<<<\n" + local + "|||||||\n" + base + "=======\n" + remote + ">>>>>>>\n"
}

func TestSimplifier_Rewrites(t *testing.T) {
	tests := map[string]struct {
		local, base, remote string
		want                string
	}{
		"split": {
			local:  "foo\nbar\nbacon\n",
			base:   "bar\n",
			remote: "bar\neggs\n",
			want: "<<<<<<<\nfoo\n|||||||\n=======\n>>>>>>>\n" + "bar\n" +
				"<<<<<<<\nbacon\n|||||||\n=======\neggs\n>>>>>>>\n",
		},
		"shrink": {
			local:  "foo\nbar\nspam\nbacon\n",
			base:   "foo\nbacon\n",
			remote: "foo\nbaz\neggs\nbacon\n",
			want:   "foo\n" + block("bar\nspam\n", "", "baz\neggs\n") + "bacon\n",
		},
		"multiple split": {
			local:  "a\nz\ny\nb\nc\nd\ne\nf\nx\n",
			base:   "a\n2\n3\n4\nb\nc\nd\n5\n6\ne\nf\n",
			remote: "0\na\n1\nb\nc\nd\n7\ne\n8\n9\nf\n",
			want: block("", "", "0\n") + "a\n" +
				block("z\ny\n", "2\n3\n4\n", "1\n") + "b\nc\nd\n" +
				block("", "5\n6\n", "7\n") + "e\n" +
				block("", "", "8\n9\n") + "f\n" +
				block("x\n", "", ""),
		},
		"split deletions": {
			local:  "a\nb\n",
			base:   "a\nb\nc\n",
			remote: "b\nc\n",
			want:   block("a\n", "a\n", "") + "b\n" + block("", "c\n", "c\n"),
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := fakeConflict(tt.local, tt.base, tt.remote)

			require.NoError(t, NewSimplifier(0).Handle(c))

			content, ok := c.Content()
			require.True(t, ok)
			assert.Equal(t, tt.want, content)
			assert.False(t, c.IsResolved())
		})
	}
}

func TestSimplifier_KeepsMarkerLabels(t *testing.T) {
	c := conflict.New("foo\nbar\n", "bar\n", "bar\n", "<<<<<<< HEAD\n", ">>>>>>> feature\n")

	require.NoError(t, NewSimplifier(0).Handle(c))

	content, _ := c.Content()
	assert.Equal(t, "<<<<<<< HEAD\nfoo\n|||||||\n=======\n>>>>>>> feature\nbar\n", content)
}

func TestSimplifier_LeavesUntouched(t *testing.T) {
	tests := map[string]struct {
		local, base, remote string
		maxCells            int
	}{
		"nothing common": {
			local:  "a\nb\nc\n",
			base:   "x\ny\nz\n",
			remote: "1\n2\n3\n",
		},
		"empty base": {
			local:  "a\n",
			base:   "",
			remote: "a\n",
		},
		"too large": {
			local:    numbered("l", 100),
			base:     numbered("l", 100),
			remote:   numbered("l", 100),
			maxCells: 1000,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := fakeConflict(tt.local, tt.base, tt.remote)

			require.NoError(t, NewSimplifier(tt.maxCells).Handle(c))

			assert.False(t, c.IsResolved())
			assert.False(t, c.IsRewritten())
		})
	}
}

func TestSimplifier_LargeConflictWithinDefaultBudget(t *testing.T) {
	base := numbered("line", 120)
	local := "added\n" + base
	remote := base + "appended\n"
	c := fakeConflict(local, base, remote)

	require.NoError(t, NewSimplifier(0).Handle(c))

	content, ok := c.Content()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(content, block("added\n", "", "")))
	assert.True(t, strings.HasSuffix(content, block("", "", "appended\n")))
}

func TestSimplifier_ThroughWalker(t *testing.T) {
	path := writeMerged(t, "top\n"+
		"<<<<<<< HEAD\nfoo\nbar\nbacon\n||||||| base\nbar\n=======\nbar\neggs\n>>>>>>> feature\n"+
		"bottom\n")

	status, err := Run(path, NewSimplifier(0), conflict.ReportFull)
	require.NoError(t, err)
	assert.Equal(t, conflict.StatusConflictsRemain, status)

	want := "top\n" +
		"<<<<<<< HEAD\nfoo\n|||||||\n=======\n>>>>>>> feature\n" +
		"bar\n" +
		"<<<<<<< HEAD\nbacon\n|||||||\n=======\neggs\n>>>>>>> feature\n" +
		"bottom\n"
	assert.Equal(t, want, readFile(t, path))
	assert.FileExists(t, conflict.ReportPath(path, "simplify"))
}

func numbered(prefix string, n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "%s %d\n", prefix, i)
	}
	return b.String()
}

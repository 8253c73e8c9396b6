package launcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want []string
	}{
		{
			name: "simple",
			cmd:  "foo -o /dev/null/base /dev/null/merged",
			want: []string{"foo", "-o", "/dev/null/base", "/dev/null/merged"},
		},
		{
			name: "whitespaces",
			cmd:  "foo -o  \n  /dev/null/base \t\t /dev/null/merged",
			want: []string{"foo", "-o", "/dev/null/base", "/dev/null/merged"},
		},
		{
			name: "single quotes",
			cmd:  `foo -o '/dev/null/base with space' '/dev/null/mergedwith"e'`,
			want: []string{"foo", "-o", "/dev/null/base with space", `/dev/null/mergedwith"e`},
		},
		{
			name: "double quotes",
			cmd:  `foo -o "/dev/null/base with space" "/dev/null/mergedwith'e"`,
			want: []string{"foo", "-o", "/dev/null/base with space", "/dev/null/mergedwith'e"},
		},
		{
			name: "quotes inside an argument",
			cmd:  `foo -o="/dev/null/base dir" -p='/dev/null/merged'`,
			want: []string{"foo", "-o=/dev/null/base dir", "-p=/dev/null/merged"},
		},
		{
			name: "empty quotes",
			cmd:  `foo "" bar`,
			want: []string{"foo", "bar"},
		},
		{
			name: "blank",
			cmd:  " \t ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.cmd))
		})
	}
}

func TestExpand(t *testing.T) {
	files := Files{Base: "/b", Local: "/l", Remote: "/r", Merged: "/m"}

	got := Expand(`meld --output "$MERGED" "$LOCAL" "$BASE" "$REMOTE" $MERGED`, files)

	assert.Equal(t, `meld --output "/m" "/l" "/b" "/r" /m`, got)
}

func TestExpandThenSanitize_PathsWithSpaces(t *testing.T) {
	files := Files{Base: "/tmp/my dir/a.BASE", Local: "/tmp/my dir/a.LOCAL", Remote: "/tmp/my dir/a.REMOTE", Merged: "/tmp/my dir/a"}

	argv := Sanitize(Expand(knownCommands["bc"], files))

	assert.Equal(t, []string{
		"{path}", "/tmp/my dir/a.LOCAL", "/tmp/my dir/a.REMOTE", "/tmp/my dir/a.BASE",
		"-mergeoutput=/tmp/my dir/a",
	}, argv)
}

func TestInvoke(t *testing.T) {
	ctx := context.Background()

	code, err := Invoke(ctx, []string{"sh", "-c", "exit 0"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = Invoke(ctx, []string{"sh", "-c", "exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	_, err = Invoke(ctx, []string{"amt-definitely-not-a-tool"})
	assert.Error(t, err)

	_, err = Invoke(ctx, nil)
	assert.Error(t, err)
}

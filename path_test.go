package diskshell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/a", JoinPath(RootPath, "a"))
	assert.Equal(t, "/a/b", JoinPath("/a", "b"))
}

func TestParentPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/a", "/"},
		{"/a/b", "/a"},
		{"/a/b/c.txt", "/a/b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParentPath(tt.path), tt.path)
	}
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	assert.Empty(t, SplitPath("/"))
	assert.Equal(t, []string{"a", "b"}, SplitPath("/a/b"))
	assert.Equal(t, []string{"a", "b"}, SplitPath("a//b/"))
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a", "a.txt", "copy_a", "with space"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", ".", "..", "a/b", "a\tb", "a\nb", "a\r"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, "%q", name)
	}
}

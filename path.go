package diskshell

import (
	"fmt"
	"strings"
)

// JoinPath appends name to the absolute directory path dir
func JoinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// ParentPath strips the last segment of an absolute path.
// The parent of a top-level entry (and of root itself) is [RootPath].
func ParentPath(p string) string {
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return RootPath
	}
	return p[:i]
}

// SplitPath returns the non-empty segments of p
func SplitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// ValidateName checks that name can be stored as a single path segment
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\t\n\r"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

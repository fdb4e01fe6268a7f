package filesystem

import (
	"strings"

	"github.com/brettbedarf/diskshell"
)

// Resolve searches root's descendants in pre-order for the node at target.
// Directories with the root path are not descended into. Returns nil when
// nothing matches.
func Resolve(root *Dir, target string) Node {
	for _, child := range root.children {
		if child.Path() == target {
			return child
		}
		if d, ok := child.(*Dir); ok && !d.IsRoot() {
			if n := Resolve(d, target); n != nil {
				return n
			}
		}
	}
	return nil
}

// Walk follows the segments of the absolute directory path p from root.
// It returns nil if any segment is not a child directory.
func Walk(root *Dir, p string) *Dir {
	cur := root
	for _, seg := range diskshell.SplitPath(p) {
		if cur = cur.ChildDir(seg); cur == nil {
			return nil
		}
	}
	return cur
}

// Follow dereferences links starting at n until it reaches a file or
// directory. A dangling link yields nil. More than maxDepth hops fails with
// [diskshell.ErrLinkDepthExceeded].
func Follow(n Node, root *Dir, maxDepth int) (Node, error) {
	start := n
	for hops := 0; ; hops++ {
		l, ok := n.(*Link)
		if !ok {
			return n, nil
		}
		if hops >= maxDepth {
			return nil, &diskshell.PathError{Op: "read", Path: start.Path(), Err: diskshell.ErrLinkDepthExceeded}
		}
		n = Resolve(root, l.Target())
	}
}

// ReadNode returns the readable content of n: a file's payload, one
// "<kind>\t<name>" line per directory entry, or whatever a link resolves to.
// A dangling link reads as empty.
func ReadNode(n Node, root *Dir, maxDepth int) (string, error) {
	target, err := Follow(n, root, maxDepth)
	if err != nil {
		return "", err
	}
	switch v := target.(type) {
	case *File:
		return v.Content(), nil
	case *Dir:
		return readDir(v), nil
	}
	return "", nil
}

func readDir(d *Dir) string {
	lines := make([]string, 0, d.Len())
	for _, child := range d.children {
		lines = append(lines, child.Kind().String()+"\t"+child.Name())
	}
	return strings.Join(lines, "\n")
}

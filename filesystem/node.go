package filesystem

import (
	"fmt"

	"github.com/brettbedarf/diskshell"
)

// Node is one entry of the in-memory tree. The set of variants is closed:
// *File, *Link and *Dir are the only implementations.
type Node interface {
	// Record returns a copy of the node's metadata
	Record() diskshell.Record
	Kind() diskshell.Kind
	Name() string
	Path() string
	Timestamp() string

	node()
}

// meta is the shared metadata carried by every variant
type meta struct {
	rec diskshell.Record
}

func (m *meta) Record() diskshell.Record { return m.rec }
func (m *meta) Kind() diskshell.Kind     { return m.rec.Kind }
func (m *meta) Name() string             { return m.rec.Name }
func (m *meta) Path() string             { return m.rec.Path }
func (m *meta) Timestamp() string        { return m.rec.Timestamp }
func (m *meta) node()                    {}

// File is a regular file holding its payload in memory
type File struct {
	meta
}

// Content returns the file payload
func (f *File) Content() string {
	return f.rec.Content
}

// Size returns the byte length recorded for the file
func (f *File) Size() int64 {
	return f.rec.Size
}

// Link is a soft link. It stores only the absolute path of its target and is
// resolved lazily against the session root.
type Link struct {
	meta
}

// Target returns the absolute path the link points at
func (l *Link) Target() string {
	return l.rec.Content
}

// Dir owns its children in insertion order. A Dir never points back at its
// parent; the parent is derived from Path.
type Dir struct {
	meta
	children []Node
	// set while the builder has seen children of this path but not its record
	placeholder bool
}

func newDir(rec diskshell.Record) *Dir {
	return &Dir{meta: meta{rec: rec}}
}

// NewRoot returns an empty root directory
func NewRoot() *Dir {
	return newDir(diskshell.RootRecord())
}

// NewNode constructs the variant matching rec.Kind
func NewNode(rec diskshell.Record) (Node, error) {
	switch rec.Kind {
	case diskshell.FileKind:
		return &File{meta{rec: rec}}, nil
	case diskshell.LinkKind:
		return &Link{meta{rec: rec}}, nil
	case diskshell.DirKind:
		return newDir(rec), nil
	}
	return nil, fmt.Errorf("%w: %q at %s", diskshell.ErrInvalidKind, rec.Kind.String(), rec.Path)
}

// IsRoot reports whether d is the root directory
func (d *Dir) IsRoot() bool {
	return d.rec.IsRoot()
}

// Children returns the directory entries in insertion order. The returned
// slice must not be modified.
func (d *Dir) Children() []Node {
	return d.children
}

// Len returns the number of direct children
func (d *Dir) Len() int {
	return len(d.children)
}

// Child returns the direct child called name, or nil
func (d *Dir) Child(name string) Node {
	for _, child := range d.children {
		if child.Name() == name {
			return child
		}
	}
	return nil
}

// ChildDir returns the direct child directory called name, or nil
func (d *Dir) ChildDir(name string) *Dir {
	for _, child := range d.children {
		if cd, ok := child.(*Dir); ok && cd.Name() == name {
			return cd
		}
	}
	return nil
}

// AddChild appends child. Callers check name uniqueness first.
func (d *Dir) AddChild(child Node) {
	d.children = append(d.children, child)
}

// RemoveChild erases the first child at path accepted by match and returns it
func (d *Dir) RemoveChild(path string, match func(Node) bool) Node {
	for i, child := range d.children {
		if child.Path() == path && (match == nil || match(child)) {
			d.children = append(d.children[:i], d.children[i+1:]...)
			return child
		}
	}
	return nil
}

// IsDir matches directory nodes
func IsDir(n Node) bool {
	_, ok := n.(*Dir)
	return ok
}

// IsNotDir matches files and links
func IsNotDir(n Node) bool {
	return !IsDir(n)
}

package diskshell

import (
	"fmt"
	"time"
)

// Kind tags the node variant of a [Record]. The byte value is the tag
// written to the store.
type Kind byte

const (
	FileKind Kind = 'F'
	LinkKind Kind = 'S'
	DirKind  Kind = 'D'
)

// ParseKind converts a store tag into a Kind
func ParseKind(tag string) (Kind, error) {
	if len(tag) == 1 {
		switch k := Kind(tag[0]); k {
		case FileKind, LinkKind, DirKind:
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, tag)
}

func (k Kind) String() string {
	return string(rune(k))
}

// TimestampLayout is the format used for every Record.Timestamp
const TimestampLayout = "Jan 02 2006 15:04"

// Root directory constants
const (
	RootPath = "/"
	RootName = "."
)

// Record is the metadata of a single node. It is both the persisted form and
// the in-memory payload of a node.
type Record struct {
	Kind      Kind
	Path      string // absolute path from root; unique across the tree
	Name      string // last path segment; unique among siblings
	Timestamp string // creation time formatted with TimestampLayout
	Size      int64  // byte length of Content for files, 0 otherwise
	// File payload, Link target path, or empty for directories
	Content string
}

// RootRecord returns the metadata of the root directory
func RootRecord() Record {
	return Record{Kind: DirKind, Path: RootPath, Name: RootName}
}

// IsRoot reports whether r describes the root directory
func (r *Record) IsRoot() bool {
	return r.Path == RootPath
}

// FormatTimestamp renders t the way records store it
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

package filesystem

import (
	"github.com/brettbedarf/diskshell"
	"github.com/brettbedarf/diskshell/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// Build reconstructs the directory tree from records in store order.
//
// Records may appear before their parent directory: a placeholder directory
// is synthesized for the missing parent and patched in place when its record
// shows up. Only entries whose parent is root land in root's children; deeper
// entries hang off their parent chain. The first record for a path wins.
func Build(recs []diskshell.Record) (*Dir, error) {
	logger := util.GetLogger("Build")

	root := NewRoot()
	dirs := xsync.NewMap[string, *Dir]() // path -> directory, placeholders included
	dirs.Store(diskshell.RootPath, root)
	seen := xsync.NewMap[string, struct{}]()

	for _, rec := range recs {
		if rec.IsRoot() {
			// Root metadata only; root is never a child
			root.rec.Timestamp = rec.Timestamp
			continue
		}
		if _, dup := seen.LoadOrStore(rec.Path, struct{}{}); dup {
			logger.Warn().Str("path", rec.Path).Str("kind", rec.Kind.String()).Msg("Skipping duplicate record")
			continue
		}

		node, err := buildNode(dirs, rec)
		if err != nil {
			logger.Error().Err(err).Str("path", rec.Path).Msg("Failed to build node")
			return nil, err
		}

		parentPath := diskshell.ParentPath(rec.Path)
		parent, _ := dirs.LoadOrCompute(parentPath, func() (*Dir, bool) {
			return placeholderDir(parentPath), false
		})
		parent.AddChild(node)
	}

	dirs.Range(func(path string, d *Dir) bool {
		if d.placeholder {
			logger.Debug().Str("path", path).Int("children", d.Len()).Msg("Directory has no record; entries unreachable")
		}
		return true
	})
	return root, nil
}

// buildNode creates the node for rec, patching an existing placeholder when
// rec is the record of a directory already seen as a parent
func buildNode(dirs *xsync.Map[string, *Dir], rec diskshell.Record) (Node, error) {
	if rec.Kind == diskshell.DirKind {
		if d, ok := dirs.Load(rec.Path); ok && d.placeholder {
			d.rec = rec
			d.placeholder = false
			return d, nil
		}
	}
	node, err := NewNode(rec)
	if err != nil {
		return nil, err
	}
	if d, ok := node.(*Dir); ok {
		dirs.Store(rec.Path, d)
	}
	return node, nil
}

func placeholderDir(path string) *Dir {
	segs := diskshell.SplitPath(path)
	name := diskshell.RootName
	if len(segs) > 0 {
		name = segs[len(segs)-1]
	}
	d := newDir(diskshell.Record{Kind: diskshell.DirKind, Path: path, Name: name})
	d.placeholder = true
	return d
}

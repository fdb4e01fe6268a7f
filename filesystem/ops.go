package filesystem

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/brettbedarf/diskshell"
	"github.com/brettbedarf/diskshell/internal/util"
	"github.com/spf13/afero"
)

const copyPrefix = "copy_"

// List prints the current directory. Outside root it starts with "." and
// "..": the parent line is taken from root's top-level directory with the
// parent's path, or falls back to the current directory's timestamp.
func (fs *FileSystem) List(w io.Writer) {
	cur := fs.CurrentDir()
	if fs.cwd != diskshell.RootPath {
		fmt.Fprintf(w, "%-4s%-20s%s\n", diskshell.DirKind, ".", cur.Timestamp())

		parentTS := cur.Timestamp()
		parentPath := diskshell.ParentPath(fs.cwd)
		for _, child := range fs.root.children {
			if d, ok := child.(*Dir); ok && d.Path() == parentPath {
				parentTS = d.Timestamp()
				break
			}
		}
		fmt.Fprintf(w, "%-4s%-20s%s\n", diskshell.DirKind, "..", parentTS)
	}

	for _, child := range cur.children {
		if f, ok := child.(*File); ok {
			fmt.Fprintf(w, "%-4s%-20s%s\t%d\n", f.Kind(), f.Name(), f.Timestamp(), f.Size())
			continue
		}
		fmt.Fprintf(w, "%-4s%-20s%s\n", child.Kind(), child.Name(), child.Timestamp())
	}
}

// ListRecursive prints every entry below the current directory in
// pre-order with its full path. Links are printed, never followed.
func (fs *FileSystem) ListRecursive(w io.Writer) {
	listRecursive(w, fs.CurrentDir())
}

func listRecursive(w io.Writer, d *Dir) {
	for _, child := range d.children {
		fmt.Fprintf(w, "%-4s%-20s\t%s\n", child.Kind(), child.Name(), child.Path())
		if cd, ok := child.(*Dir); ok && !cd.IsRoot() && cd != d {
			listRecursive(w, cd)
		}
	}
}

// MakeDirectory creates the directory name inside the current directory
func (fs *FileSystem) MakeDirectory(name string) error {
	cur := fs.CurrentDir()
	if err := fs.checkNewName("mkdir", cur, name); err != nil {
		return err
	}
	rec := diskshell.Record{
		Kind:      diskshell.DirKind,
		Path:      diskshell.JoinPath(fs.cwd, name),
		Name:      name,
		Timestamp: fs.now(),
	}
	if err := fs.store.Append(rec); err != nil {
		return err
	}
	cur.AddChild(newDir(rec))
	return nil
}

// ChangeDirectory moves the session. "" and "." stay put, ".." goes up one
// level, "/" returns to root and anything else must name a child directory.
// A missing directory is reported on w.
func (fs *FileSystem) ChangeDirectory(w io.Writer, target string) {
	switch target {
	case "", ".":
	case "..":
		if fs.cwd != diskshell.RootPath {
			fs.cwd = diskshell.ParentPath(fs.cwd)
		}
	case diskshell.RootPath:
		fs.cwd = diskshell.RootPath
	default:
		d := fs.CurrentDir().ChildDir(target)
		if d == nil {
			fmt.Fprintf(w, "No such directory: %s\n", target)
			return
		}
		fs.cwd = d.Path()
	}
}

// Link creates a soft link called target pointing at the file or link
// source in the current directory. A missing source is reported on w.
func (fs *FileSystem) Link(w io.Writer, source, target string) error {
	cur := fs.CurrentDir()
	src := cur.Child(source)
	if src == nil || IsDir(src) {
		fmt.Fprintf(w, "No such file: %s\n", source)
		return nil
	}
	if err := fs.checkNewName("link", cur, target); err != nil {
		return err
	}
	rec := diskshell.Record{
		Kind:      diskshell.LinkKind,
		Path:      diskshell.JoinPath(fs.cwd, target),
		Name:      target,
		Timestamp: fs.now(),
		Content:   src.Path(),
	}
	if err := fs.store.Append(rec); err != nil {
		return err
	}
	cur.AddChild(&Link{meta{rec: rec}})
	return nil
}

// CopyIn copies source into the current directory. A file readable on the
// host filesystem is imported under its base name. Otherwise source must be
// a child file (or a link to one), copied as "copy_<name>".
func (fs *FileSystem) CopyIn(source string) error {
	logger := util.GetLogger("CopyIn")
	cur := fs.CurrentDir()

	data, err := afero.ReadFile(fs.host, source)
	if err == nil {
		content := strings.TrimSuffix(string(data), "\n")
		return fs.addFile("cp", cur, path.Base(source), content)
	}
	logger.Debug().Err(err).Str("source", source).Msg("Not a host file, copying within the tree")

	var content string
	switch v := cur.Child(source).(type) {
	case nil:
		return &diskshell.PathError{Op: "cp", Path: source, Err: diskshell.ErrPathNotFound}
	case *Dir:
		return &diskshell.PathError{Op: "cp", Path: source, Err: diskshell.ErrIsDirectory}
	case *File:
		content = v.Content()
	case *Link:
		target, err := Follow(v, fs.root, fs.cfg.MaxLinkDepth)
		if err != nil {
			return err
		}
		switch t := target.(type) {
		case *File:
			content = t.Content()
		case *Dir:
			return &diskshell.PathError{Op: "cp", Path: source, Err: diskshell.ErrIsDirectory}
		default:
			return &diskshell.PathError{Op: "cp", Path: v.Target(), Err: diskshell.ErrPathNotFound}
		}
	}
	return fs.addFile("cp", cur, copyPrefix+source, content)
}

func (fs *FileSystem) addFile(op string, cur *Dir, name, content string) error {
	if err := fs.checkNewName(op, cur, name); err != nil {
		return err
	}
	rec := diskshell.Record{
		Kind:      diskshell.FileKind,
		Path:      diskshell.JoinPath(fs.cwd, name),
		Name:      name,
		Timestamp: fs.now(),
		Size:      int64(len(content)),
		Content:   content,
	}
	if err := fs.store.Append(rec); err != nil {
		return err
	}
	cur.AddChild(&File{meta{rec: rec}})
	return nil
}

func (fs *FileSystem) checkNewName(op string, cur *Dir, name string) error {
	if err := diskshell.ValidateName(name); err != nil {
		return &diskshell.PathError{Op: op, Path: name, Err: err}
	}
	if cur.Child(name) != nil {
		return &diskshell.PathError{Op: op, Path: name, Err: diskshell.ErrAlreadyExists}
	}
	return nil
}

// Remove deletes the file or link at the absolute path p
func (fs *FileSystem) Remove(p string) error {
	return fs.remove("rm", p, false)
}

// RemoveDirectory deletes the directory at the absolute path p together
// with every record below it
func (fs *FileSystem) RemoveDirectory(p string) error {
	return fs.remove("rmdir", p, true)
}

func (fs *FileSystem) remove(op, p string, wantDir bool) error {
	logger := util.GetLogger("Remove")

	del := fs.store.Delete
	if wantDir {
		del = fs.store.DeleteTree
	}
	_, err := del(p, func(rec diskshell.Record) error {
		isDir := rec.Kind == diskshell.DirKind
		switch {
		case isDir && !wantDir:
			return diskshell.ErrIsDirectory
		case !isDir && wantDir:
			return diskshell.ErrNotDirectory
		}
		return nil
	})
	if err != nil {
		if diskshell.IsFatal(err) {
			return err
		}
		return &diskshell.PathError{Op: op, Path: p, Err: err}
	}

	match := IsNotDir
	if wantDir {
		match = IsDir
	}
	if parent := Walk(fs.root, diskshell.ParentPath(p)); parent == nil || parent.RemoveChild(p, match) == nil {
		logger.Debug().Str("path", p).Msg("Removed record had no reachable node")
	}
	return nil
}

// Cat prints the content of the child called name. A missing child is
// reported on w.
func (fs *FileSystem) Cat(w io.Writer, name string) error {
	child := fs.CurrentDir().Child(name)
	if child == nil {
		fmt.Fprintf(w, "No such file or directory: %s\n", name)
		return nil
	}
	content, err := ReadNode(child, fs.root, fs.cfg.MaxLinkDepth)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, content)
	return nil
}

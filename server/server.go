// Package server exposes a read-only snapshot of a store as a FUSE mount.
package server

import (
	"context"
	"syscall"
	"time"

	"github.com/brettbedarf/diskshell"
	"github.com/brettbedarf/diskshell/config"
	"github.com/brettbedarf/diskshell/filesystem"
	"github.com/brettbedarf/diskshell/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Permission bits of mounted entries; the snapshot is never writable
const (
	fileMode = 0o444
	dirMode  = 0o555
	linkMode = 0o777
)

// Server mounts the tree built from a fixed set of records. Later changes to
// the store are not reflected until it is mounted again.
type Server struct {
	cfg    *config.Config
	root   *filesystem.Dir
	server *fuse.Server
}

// New builds the snapshot tree from recs
func New(cfg *config.Config, recs []diskshell.Record) (*Server, error) {
	root, err := filesystem.Build(recs)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, root: root}, nil
}

// Serve mounts the snapshot at mountPoint and returns once the mount is ready
func (s *Server) Serve(mountPoint string) error {
	logger := util.GetLogger("Serve")

	opts := s.cfg.MountOptions
	root := &dirNode{
		attr: Attr(s.root.Record()),
		dir:  s.root,
		mnt:  mountPoint,
	}
	srv, err := fs.Mount(mountPoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:   opts.Name,
			FsName: opts.FsName,
			Debug:  opts.Debug || s.cfg.LogLvl == util.TraceLevel,
			Logger: util.NewLogLogger("FuseServer", util.TraceLevel),
		},
	})
	if err != nil {
		logger.Error().Err(err).Str("mountpoint", mountPoint).Msg("Failed to mount snapshot")
		return err
	}
	s.server = srv
	return nil
}

// Unmount cleanly unmounts the filesystem.
func (s *Server) Unmount() error {
	if s.server == nil {
		return nil
	}
	return s.server.Unmount()
}

// dirNode is a directory of the snapshot. The root dirNode populates the
// whole inode tree when it is added.
type dirNode struct {
	fs.Inode
	attr fuse.Attr
	dir  *filesystem.Dir
	mnt  string // link targets are rewritten below this path
}

var (
	_ = (fs.NodeOnAdder)((*dirNode)(nil))
	_ = (fs.NodeGetattrer)((*dirNode)(nil))
)

func (d *dirNode) OnAdd(ctx context.Context) {
	if d.dir.IsRoot() {
		d.populate(ctx)
	}
}

func (d *dirNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Attr = d.attr
	return fs.OK
}

func (d *dirNode) populate(ctx context.Context) {
	logger := util.GetLogger("Snapshot")

	for _, child := range d.dir.Children() {
		attr := Attr(child.Record())
		switch c := child.(type) {
		case *filesystem.Dir:
			sub := &dirNode{attr: attr, dir: c, mnt: d.mnt}
			d.AddChild(c.Name(), d.NewPersistentInode(ctx, sub, fs.StableAttr{Mode: fuse.S_IFDIR}), false)
			sub.populate(ctx)
		case *filesystem.File:
			f := &fs.MemRegularFile{Data: []byte(c.Content()), Attr: attr}
			d.AddChild(c.Name(), d.NewPersistentInode(ctx, f, fs.StableAttr{Mode: fuse.S_IFREG}), false)
		case *filesystem.Link:
			l := &fs.MemSymlink{Data: []byte(d.mnt + c.Target()), Attr: attr}
			d.AddChild(c.Name(), d.NewPersistentInode(ctx, l, fs.StableAttr{Mode: fuse.S_IFLNK}), false)
		}
	}
	logger.Trace().Str("path", d.dir.Path()).Int("entries", d.dir.Len()).Msg("Populated directory")
}

// Attr maps record metadata onto FUSE attributes. Unparseable timestamps
// leave the times at zero.
func Attr(rec diskshell.Record) fuse.Attr {
	var attr fuse.Attr
	switch rec.Kind {
	case diskshell.FileKind:
		attr.Mode = fuse.S_IFREG | fileMode
		attr.Size = uint64(len(rec.Content))
	case diskshell.LinkKind:
		attr.Mode = fuse.S_IFLNK | linkMode
		attr.Size = uint64(len(rec.Content))
	case diskshell.DirKind:
		attr.Mode = fuse.S_IFDIR | dirMode
	}
	attr.Nlink = 1
	if ts, err := time.ParseInLocation(diskshell.TimestampLayout, rec.Timestamp, time.Local); err == nil {
		attr.SetTimes(&ts, &ts, &ts)
	}
	return attr
}

package filesystem

import (
	"github.com/brettbedarf/diskshell"
	"github.com/brettbedarf/diskshell/config"
	"github.com/brettbedarf/diskshell/internal/util"
	"github.com/brettbedarf/diskshell/store"
	"github.com/spf13/afero"
)

// FileSystem is one shell session over a store: the canonical tree rebuilt
// from the store plus the current directory path. The current directory is
// always re-resolved from the path, never held as a separate copy.
type FileSystem struct {
	cfg   *config.Config
	store *store.Store
	host  afero.Fs // read side of copy-in from outside the tree
	clock diskshell.Clock
	root  *Dir   // Canonical root; replaced on every Sync
	cwd   string // Absolute path of the current directory
}

type Option func(*FileSystem)

// WithClock sets the clock used to stamp new records
func WithClock(c diskshell.Clock) Option {
	return func(fs *FileSystem) {
		fs.clock = c
	}
}

// NewFS loads the tree from st and starts the session at root. host is
// where copy-in looks for outside files; nil means the local filesystem.
func NewFS(cfg *config.Config, st *store.Store, host afero.Fs, opts ...Option) (*FileSystem, error) {
	if host == nil {
		host = afero.NewOsFs()
	}
	fs := &FileSystem{
		cfg:   cfg,
		store: st,
		host:  host,
		clock: diskshell.SystemClock{},
		root:  NewRoot(),
		cwd:   diskshell.RootPath,
	}
	for _, opt := range opts {
		opt(fs)
	}
	if err := fs.Sync(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Root returns the canonical root of the current tree
func (fs *FileSystem) Root() *Dir {
	return fs.root
}

// CurrentPath returns the absolute path of the current directory
func (fs *FileSystem) CurrentPath() string {
	return fs.cwd
}

// CurrentDir resolves the current path against the canonical root
func (fs *FileSystem) CurrentDir() *Dir {
	if d := Walk(fs.root, fs.cwd); d != nil {
		return d
	}
	return fs.root
}

// Lookup returns the node at the absolute path p, or nil
func (fs *FileSystem) Lookup(p string) Node {
	if p == diskshell.RootPath {
		return fs.root
	}
	return Resolve(fs.root, p)
}

// Sync rebuilds the tree from the store and re-resolves the current
// directory, falling back to root if it no longer exists.
func (fs *FileSystem) Sync() error {
	logger := util.GetLogger("Sync")

	recs, err := fs.store.Records()
	if err != nil {
		return err
	}
	root, err := Build(recs)
	if err != nil {
		return err
	}
	fs.root = root
	if Walk(root, fs.cwd) == nil {
		logger.Warn().Str("cwd", fs.cwd).Msg("Current directory no longer exists, returning to root")
		fs.cwd = diskshell.RootPath
	}
	logger.Trace().Int("records", len(recs)).Msg("Tree rebuilt")
	return nil
}

// CheckStoreSize fails fatally once the store outgrows the configured cap
func (fs *FileSystem) CheckStoreSize() error {
	return fs.store.CheckSize(fs.cfg.MaxStoreSize)
}

func (fs *FileSystem) now() string {
	return diskshell.FormatTimestamp(fs.clock.Now())
}

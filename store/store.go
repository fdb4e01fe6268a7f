package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/diskshell"
	"github.com/brettbedarf/diskshell/internal/util"
	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
)

// Store is the handle to the persisted record artifact. Every method opens
// and closes its own file handles; no handle outlives a call.
type Store struct {
	fs   billy.Filesystem
	path string
}

// New returns a Store for the artifact at path within fs
func New(fs billy.Filesystem, path string) *Store {
	return &Store{fs: fs, path: path}
}

// NewLocal returns a Store backed by the local filesystem
func NewLocal(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return New(osfs.New(filepath.Dir(abs)), filepath.Base(abs)), nil
}

// Path returns the artifact path within the store's filesystem
func (s *Store) Path() string {
	return s.path
}

// Init creates an empty store if none exists. An existing store is left untouched.
func (s *Store) Init() error {
	f, err := s.fs.OpenFile(s.path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return s.openErr(err)
	}
	return f.Close()
}

// Records decodes every record in file order
func (s *Store) Records() ([]diskshell.Record, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, s.openErr(err)
	}
	defer func() { _ = f.Close() }()

	var recs []diskshell.Record
	dec := NewDecoder(f)
	for {
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.path, err)
		}
		recs = append(recs, rec)
	}
}

// Append writes rec at the end of the store without touching existing bytes
func (s *Store) Append(rec diskshell.Record) error {
	logger := util.GetLogger("Store.Append")

	f, err := s.fs.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return s.openErr(err)
	}
	if err := Encode(f, rec); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append %s: %w", rec.Path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to append %s: %w", rec.Path, err)
	}
	logger.Debug().Str("path", rec.Path).Str("kind", rec.Kind.String()).Int64("size", rec.Size).Msg("Appended record")
	return nil
}

// Delete rewrites the store without the records whose path equals target and
// returns the first one removed. check is called with each matching record
// before anything is replaced; a non-nil result aborts the delete.
// When nothing matches or check fails, the store is left byte-for-byte
// unchanged.
func (s *Store) Delete(target string, check func(diskshell.Record) error) (diskshell.Record, error) {
	return s.delete(target, false, check)
}

// DeleteTree is [Store.Delete] that also drops every record below target.
// check sees only the records at target itself, and records below target
// alone do not count as a match.
func (s *Store) DeleteTree(target string, check func(diskshell.Record) error) (diskshell.Record, error) {
	return s.delete(target, true, check)
}

func (s *Store) delete(target string, tree bool, check func(diskshell.Record) error) (diskshell.Record, error) {
	logger := util.GetLogger("Store.Delete")

	in, err := s.fs.Open(s.path)
	if err != nil {
		return diskshell.Record{}, s.openErr(err)
	}
	tmpName := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	out, err := s.fs.Create(tmpName)
	if err != nil {
		_ = in.Close()
		return diskshell.Record{}, s.openErr(err)
	}
	discard := func(err error) (diskshell.Record, error) {
		_ = in.Close()
		_ = out.Close()
		if rmErr := s.fs.Remove(tmpName); rmErr != nil {
			logger.Warn().Err(rmErr).Str("tmp", tmpName).Msg("Failed to remove temporary store")
		}
		return diskshell.Record{}, err
	}

	var (
		removed     diskshell.Record
		matched     bool
		descendants int
	)
	prefix := strings.TrimSuffix(target, "/") + "/"
	w := bufio.NewWriter(out)
	dec := NewDecoder(in)
	for {
		rr, err := dec.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return discard(fmt.Errorf("%s: %w", s.path, err))
		}
		if rr.rec.Path == target {
			if check != nil {
				if err := check(rr.rec); err != nil {
					return discard(err)
				}
			}
			if !matched {
				removed, matched = rr.rec, true
			}
			continue
		}
		if tree && strings.HasPrefix(rr.rec.Path, prefix) {
			descendants++
			continue
		}
		if _, err := w.Write(rr.raw); err != nil {
			return discard(fmt.Errorf("failed to write temporary store: %w", err))
		}
	}
	if !matched {
		return discard(fmt.Errorf("%w: %s", diskshell.ErrPathNotFound, target))
	}
	if err := w.Flush(); err != nil {
		return discard(fmt.Errorf("failed to write temporary store: %w", err))
	}
	if err := out.Close(); err != nil {
		return discard(fmt.Errorf("failed to write temporary store: %w", err))
	}
	_ = in.Close()

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return diskshell.Record{}, fmt.Errorf("failed to replace store: %w", err)
	}
	logger.Debug().Str("path", target).Str("kind", removed.Kind.String()).Int("descendants", descendants).Msg("Deleted record")
	return removed, nil
}

// Size returns the store size in bytes
func (s *Store) Size() (int64, error) {
	fi, err := s.fs.Stat(s.path)
	if err != nil {
		return 0, s.openErr(err)
	}
	return fi.Size(), nil
}

// CheckSize fails with [diskshell.ErrStoreSizeExceeded] once the store grows
// beyond limit bytes. A missing store is within any limit.
func (s *Store) CheckSize(limit int64) error {
	size, err := s.Size()
	if errors.Is(err, diskshell.ErrStoreNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if size > limit {
		return fmt.Errorf("%w: %s is %s, limit is %s", diskshell.ErrStoreSizeExceeded,
			s.path, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(limit)))
	}
	return nil
}

func (s *Store) openErr(err error) error {
	return fmt.Errorf("%w: %s: %v", diskshell.ErrStoreNotFound, s.path, err)
}

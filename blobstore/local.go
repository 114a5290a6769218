package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TempPrefix marks in-flight files of atomic writes. List never returns them.
const TempPrefix = ".tmp-"

// LocalStore implements Store on a directory of the local file system.
type LocalStore struct {
	root   string
	atomic bool
	sync   bool
	perm   os.FileMode
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithAtomicWrites makes Put write a temporary file and rename it over the
// target, so a crash never leaves a partially written blob. Without it, Put
// truncates and rewrites the target in place.
func WithAtomicWrites() LocalOption {
	return func(s *LocalStore) {
		s.atomic = true
	}
}

// WithSync flushes file data to stable storage before Put returns.
func WithSync() LocalOption {
	return func(s *LocalStore) {
		s.sync = true
	}
}

// WithFileMode sets the permission bits of created files (default 0644).
func WithFileMode(perm os.FileMode) LocalOption {
	return func(s *LocalStore) {
		s.perm = perm
	}
}

// OpenLocalStore returns a LocalStore rooted at root, creating the directory
// if it does not exist.
func OpenLocalStore(root string, opts ...LocalOption) (*LocalStore, error) {
	s := &LocalStore{root: root, perm: 0o644}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}
	return s, nil
}

// Root returns the directory the store writes to.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, TempPrefix) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return filepath.Join(s.root, name), nil
}

// Put writes data to the blob, replacing any previous contents.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if s.atomic {
		return s.putAtomic(path, data)
	}
	return s.putInPlace(path, data)
}

func (s *LocalStore) putInPlace(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if s.sync {
		if err := syncFile(f); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}

func (s *LocalStore) putAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(s.root, TempPrefix+"*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if s.sync {
		if err = syncFile(f); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, s.perm); err != nil {
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		return err
	}
	if s.sync {
		return syncDir(s.root)
	}
	return nil
}

// Get reads the whole blob.
func (s *LocalStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// List returns the regular files of the directory in the order the file
// system enumerates them. Subdirectories and temporary files are skipped.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := os.Open(s.root)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	// File.ReadDir, unlike os.ReadDir, does not sort.
	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, TempPrefix) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func syncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return err
	}
	defer d.Close()
	return syncFile(d)
}

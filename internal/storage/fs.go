package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/imgbackup/internal/apperr"
)

const tmpPrefix = ".imgbackup-tmp-"

// FS implements Transport backed by the local file system.
type FS struct {
	root      string // absolute path to the storage root
	namespace string
}

// NewFS creates a new FS store rooted at the given directory.
// The directory must already exist.
func NewFS(root, namespace string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &FS{root: abs, namespace: namespace}, nil
}

// Root returns the absolute storage root.
func (f *FS) Root() string { return f.root }

// Namespace returns the folder under root that holds character folders.
func (f *FS) Namespace() string { return f.namespace }

// safePath resolves a slash-separated relative path against the root and
// rejects any result that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute path %q: %w", rel, apperr.ErrInvalidPath)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes root %q: %w", rel, apperr.ErrInvalidPath)
	}
	return abs, nil
}

// List returns the filenames in the character's folder. A folder that does
// not exist yet lists as empty.
func (f *FS) List(_ context.Context, character string) ([]string, error) {
	if err := checkSegment("character", character); err != nil {
		return nil, err
	}
	return f.ListDir(Dir(f.namespace, character))
}

// Write atomically stores data as filename in the character's folder.
func (f *FS) Write(_ context.Context, character, filename string, data []byte) error {
	if err := checkSegment("character", character); err != nil {
		return err
	}
	if err := checkSegment("filename", filename); err != nil {
		return err
	}
	return f.WriteFile(path.Join(Dir(f.namespace, character), filename), data)
}

// ListDir returns the regular files directly inside dir (relative to root),
// sorted by name.
func (f *FS) ListDir(dir string) ([]string, error) {
	abs, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// ReadFile returns the raw bytes of a stored file.
func (f *FS) ReadFile(rel string) ([]byte, error) {
	abs, err := f.safePath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", rel, err)
	}
	return data, nil
}

// WriteFile atomically writes content: tmp file → fsync → rename.
func (f *FS) WriteFile(rel string, content []byte) error {
	abs, err := f.safePath(rel)
	if err != nil {
		return err
	}
	if abs == f.root {
		return fmt.Errorf("storage: write to root: %w", apperr.ErrInvalidPath)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

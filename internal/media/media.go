// Package media serves and stores post media files from a jailed
// directory root.
package media

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store reads and writes files under a single root. Every path is
// resolved against the root and rejected if it escapes it.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("media: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("media: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("media: create root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute media root.
func (s *Store) Root() string { return s.root }

// Resolve maps a request path to an absolute path inside the root.
func (s *Store) Resolve(rel string) (string, error) {
	rel = strings.TrimSpace(strings.TrimPrefix(rel, "/"))
	if rel == "" {
		return "", fmt.Errorf("media: missing path")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("media: absolute path not allowed")
	}
	p := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(rel)))
	if !isWithin(p, s.root) {
		return "", fmt.Errorf("media: path escapes root")
	}
	return p, nil
}

// Open opens a media file for reading.
func (s *Store) Open(rel string) (*os.File, error) {
	p, err := s.Resolve(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("media: open %s: %w", rel, err)
	}
	return f, nil
}

// Save writes an uploaded file under the root and returns its
// root-relative path.
func (s *Store) Save(rel string, r io.Reader) (string, error) {
	p, err := s.Resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("media: save %s: %w", rel, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("media: save %s: %w", rel, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("media: save %s: %w", rel, err)
	}

	out, err := filepath.Rel(s.root, p)
	if err != nil {
		return "", fmt.Errorf("media: save %s: %w", rel, err)
	}
	return filepath.ToSlash(out), nil
}

// Remove deletes one stored file.
func (s *Store) Remove(rel string) error {
	p, err := s.Resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("media: remove %s: %w", rel, err)
	}
	return nil
}

// List returns the root-relative paths of all stored files, sorted.
func (s *Store) List(prefix string) ([]string, error) {
	prefix = strings.TrimSpace(strings.TrimPrefix(prefix, "/"))
	keys := make([]string, 0)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(rel, prefix) {
			keys = append(keys, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("media: list: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func isWithin(path, root string) bool {
	p := filepath.Clean(path)
	r := filepath.Clean(root)
	if p == r {
		return true
	}
	return strings.HasPrefix(p, r+string(os.PathSeparator))
}

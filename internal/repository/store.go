package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source enumerates and reads the locally available repositories.
type Source interface {
	// Files returns the paths of all synced repositories.
	Files() ([]string, error)

	// Read returns the comment-free lines of one repository.
	Read(path string) ([]string, error)
}

// Store keeps one synced copy of each repository in a directory.
type Store struct {
	dir string
}

var _ Source = (*Store)(nil)

// NewStore creates a Store rooted at dir. The directory is created lazily.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the synced repositories.
func (s *Store) Dir() string {
	return s.dir
}

// Files lists the regular files in the sync directory, sorted by path.
// A missing directory yields no files.
func (s *Store) Files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sync directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Read loads a repository file and returns its comment-free lines.
func (s *Store) Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading repository %s: %w", filepath.Base(path), err)
	}
	return ParseLines(string(data)), nil
}

// Save writes the synced body of the repository at url and returns the path.
func (s *Store) Save(url string, body []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating sync directory: %w", err)
	}
	path := s.Path(url)
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Path returns where the synced copy of url lives.
func (s *Store) Path(url string) string {
	return filepath.Join(s.dir, SyncFileName(url))
}

var syncNameReplacer = strings.NewReplacer("https://", "", "http://", "", "/", "_")

// SyncFileName turns a repository URL into a safe file name.
//
//	https://example.com/lists/a.txt -> example.com_lists_a.txt
func SyncFileName(url string) string {
	return syncNameReplacer.Replace(url)
}

package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultLockFile records the last sync of every repository.
const DefaultLockFile = "sync.lock"

// LockFile tracks which synced files randl owns, so that `repository list`
// can show whether each listed repository has a usable local copy.
type LockFile struct {
	// Version of the lock file format.
	Version int `json:"version"`
	// Entries keyed by repository URL.
	Entries map[string]LockEntry `json:"entries"`
}

// LockEntry records the synced state of a single repository.
type LockEntry struct {
	URL      string `json:"url"`
	Path     string `json:"path"`      // synced copy on disk
	Lines    int    `json:"lines"`     // comment-free line count
	Checksum string `json:"checksum"`  // SHA-256 of the synced body
	SyncedAt string `json:"synced_at"` // RFC 3339 timestamp of last sync
}

// NewLockFile returns an initialised empty lock file.
func NewLockFile() *LockFile {
	return &LockFile{
		Version: 1,
		Entries: make(map[string]LockEntry),
	}
}

// LoadLock reads sync.lock at path. A missing file is an empty lock.
func LoadLock(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return NewLockFile(), nil
	case err != nil:
		return nil, fmt.Errorf("reading lock file: %w", err)
	}

	lf := NewLockFile()
	if err := json.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing lock file %s: %w", filepath.Base(path), err)
	}
	if lf.Entries == nil {
		lf.Entries = make(map[string]LockEntry)
	}
	return lf, nil
}

// Save writes the lock file to path, replacing any previous version
// atomically.
func (lf *LockFile) Save(path string) error {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding lock file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing lock file: %w", err)
	}
	return nil
}

// Set records or updates an entry after a successful sync.
func (lf *LockFile) Set(url, path string, lines int, body []byte) {
	lf.Entries[url] = LockEntry{
		URL:      url,
		Path:     path,
		Lines:    lines,
		Checksum: checksum(body),
		SyncedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Unchanged reports whether body matches what was last synced for url.
func (lf *LockFile) Unchanged(url string, body []byte) bool {
	e, ok := lf.Entries[url]
	return ok && e.Checksum == checksum(body)
}

// Get retrieves an entry, if it exists.
func (lf *LockFile) Get(url string) (LockEntry, bool) {
	e, ok := lf.Entries[url]
	return e, ok
}

// Remove deletes an entry.
func (lf *LockFile) Remove(url string) {
	delete(lf.Entries, url)
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

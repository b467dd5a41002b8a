package cli

import (
	"path/filepath"

	"github.com/cbout22/randl/internal/download"
	"github.com/cbout22/randl/internal/manifest"
	"github.com/cbout22/randl/internal/repository"
)

// CheckStatus describes the sync status of a single repository.
type CheckStatus int

const (
	CheckOK          CheckStatus = iota // Synced copy exists, lock matches
	CheckNeverSynced                    // Not in lock, not on disk
	CheckFileMissing                    // In lock but synced copy deleted
	CheckNotInLock                      // Synced copy exists but no lock entry
	CheckEmpty                          // Synced, but has no usable lines
)

// CheckResult holds the outcome of checking one listed repository.
type CheckResult struct {
	URL      string
	Path     string // synced copy location
	Status   CheckStatus
	Lines    int    // from the lock file
	SyncedAt string // from the lock file
}

// CheckRepositories validates every listed URL against the lock file and the
// sync directory. This is a pure function: it reads state through its
// arguments, not globals.
func CheckRepositories(urls []string, lock *manifest.LockFile, syncDir string, fs download.FileWriter) []CheckResult {
	results := make([]CheckResult, 0, len(urls))

	for _, u := range urls {
		entry, locked := lock.Get(u)
		path := filepath.Join(syncDir, repository.SyncFileName(u))
		if locked && entry.Path != "" {
			path = entry.Path
		}
		fileExists := fs.Exists(path)

		var status CheckStatus
		switch {
		case !fileExists && !locked:
			status = CheckNeverSynced
		case !fileExists && locked:
			status = CheckFileMissing
		case fileExists && !locked:
			status = CheckNotInLock
		case entry.Lines == 0:
			status = CheckEmpty
		default:
			status = CheckOK
		}

		results = append(results, CheckResult{
			URL:      u,
			Path:     path,
			Status:   status,
			Lines:    entry.Lines,
			SyncedAt: entry.SyncedAt,
		})
	}

	return results
}

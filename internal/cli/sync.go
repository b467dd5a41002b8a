package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cbout22/randl/internal/auth"
	"github.com/cbout22/randl/internal/manifest"
	"github.com/cbout22/randl/internal/remote"
	"github.com/cbout22/randl/internal/repository"
)

// rawFetcher downloads a repository body as-is.
type rawFetcher interface {
	FetchRaw(ctx context.Context, url string) ([]byte, error)
}

var _ rawFetcher = (*remote.Fetcher)(nil)

// newSyncCmd creates the `repository sync` command.
// Usage: randl repository sync
func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize all repositories",
		Long: `Downloads every repository listed in repos.txt and stores a local copy
in the sync directory. pull only samples from synced copies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.paths()
			cfg, err := opts.loadConfig(p)
			if err != nil {
				return err
			}
			fetcher := remote.New(auth.NewHTTPClient(cfg.UserAgent))
			store := repository.NewStore(p.SyncDir())
			return runSyncWith(cmd.Context(), p.ReposFile(), lockPath(p), store, fetcher, cmd.OutOrStdout())
		},
	}
}

// runSyncWith is the testable core of the sync command.
func runSyncWith(ctx context.Context, reposPath, lockFile string, store *repository.Store, fetcher rawFetcher, out io.Writer) error {
	if !manifest.Exists(reposPath) {
		fmt.Fprintln(out, "📋 No repositories added yet.")
		return nil
	}

	m, err := manifest.Load(reposPath)
	if err != nil {
		return fmt.Errorf("loading repository list: %w", err)
	}

	lock, err := manifest.LoadLock(lockFile)
	if err != nil {
		return fmt.Errorf("loading lock file: %w", err)
	}

	urls := m.URLs()
	fmt.Fprintf(out, "🔄 Syncing %d repositories...\n\n", len(urls))

	var errors []error
	for _, u := range urls {
		fmt.Fprintf(out, "  📦 %s\n", u)

		if err := syncOne(ctx, u, lock, store, fetcher, out); err != nil {
			fmt.Fprintf(out, "  ❌ %s: %s\n", u, err)
			errors = append(errors, fmt.Errorf("%s: %w", u, err))
		}
	}

	if err := lock.Save(lockFile); err != nil {
		return fmt.Errorf("saving lock file: %w", err)
	}

	fmt.Fprintln(out)
	if len(errors) > 0 {
		return fmt.Errorf("sync completed with %d error(s)", len(errors))
	}

	fmt.Fprintln(out, "✅ All repositories have been synced.")
	return nil
}

// syncOne fetches one repository, stores it and records it in the lock.
func syncOne(ctx context.Context, url string, lock *manifest.LockFile, store *repository.Store, fetcher rawFetcher, out io.Writer) error {
	body, err := fetcher.FetchRaw(ctx, url)
	if err != nil {
		return err
	}

	unchanged := lock.Unchanged(url, body)
	path, err := store.Save(url, body)
	if err != nil {
		return err
	}
	lines := repository.ParseLines(string(body))
	lock.Set(url, path, len(lines), body)

	if unchanged {
		fmt.Fprintf(out, "  ✅ %s (unchanged, %d lines)\n", url, len(lines))
		return nil
	}
	fmt.Fprintf(out, "  ✅ %s → %s (%d lines)\n", url, path, len(lines))
	return nil
}

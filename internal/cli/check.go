package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cbout22/randl/internal/download"
	"github.com/cbout22/randl/internal/manifest"
)

// newCheckCmd creates the `repository check` command.
// Usage: randl repository check [--strict]
func newCheckCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that every listed repository has a synced copy",
		Long: `Validates that all repositories in repos.txt have been synced and that
their synced copies still exist and contain entries.

With --strict, the command exits with a non-zero code if any repository is
missing, stale or empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.paths()
			return runCheckWith(strict, p.ReposFile(), lockPath(p), p.SyncDir(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with error code if repositories are unsynced or empty")

	return cmd
}

// runCheckWith is the testable core of the check command.
func runCheckWith(strict bool, reposPath, lockFile, syncDir string, out io.Writer) error {
	m, err := manifest.Load(reposPath)
	if err != nil {
		return fmt.Errorf("loading repository list: %w", err)
	}

	urls := m.URLs()
	if len(urls) == 0 {
		fmt.Fprintln(out, "📋 No repositories added yet — nothing to check.")
		return nil
	}

	lock, err := manifest.LoadLock(lockFile)
	if err != nil {
		return fmt.Errorf("loading lock file: %w", err)
	}

	results := CheckRepositories(urls, lock, syncDir, &download.OSFileWriter{})

	fmt.Fprintf(out, "🔍 Checking %d repositories...\n\n", len(results))

	var issues int
	for _, r := range results {
		switch r.Status {
		case CheckOK:
			fmt.Fprintf(out, "  ✅ %s — ok (%d lines)\n", r.URL, r.Lines)
		case CheckNeverSynced:
			fmt.Fprintf(out, "  ❌ %s — missing (never synced)\n", r.URL)
			issues++
		case CheckFileMissing:
			fmt.Fprintf(out, "  ❌ %s — missing (was synced)\n", r.URL)
			issues++
		case CheckNotInLock:
			fmt.Fprintf(out, "  ⚠️  %s — synced copy exists but not in lock file (run 'randl repository sync')\n", r.URL)
			issues++
		case CheckEmpty:
			fmt.Fprintf(out, "  ⚠️  %s — synced but empty\n", r.URL)
			issues++
		}
	}

	fmt.Fprintln(out)
	if issues > 0 {
		msg := fmt.Sprintf("Found %d issue(s). Run 'randl repository sync' to fix.", issues)
		if strict {
			return fmt.Errorf("%s", msg)
		}
		fmt.Fprintf(out, "⚠️  %s\n", msg)
	} else {
		fmt.Fprintln(out, "✅ All repositories are synced.")
	}
	return nil
}

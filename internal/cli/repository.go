package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cbout22/randl/internal/download"
	"github.com/cbout22/randl/internal/manifest"
	"github.com/cbout22/randl/internal/repository"
)

// newRepositoryCmd creates the `repository` command group.
func newRepositoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repository",
		Aliases: []string{"repo"},
		Short:   "Manage repositories",
		Long:    "Manage the list of repositories randl pulls from. Run 'sync' after adding one.",
	}

	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newRemoveCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newSyncCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))

	return cmd
}

// newAddCmd creates the `repository add` command.
// Usage: randl repository add <url>
func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <url>",
		Short: "Add a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddWith(opts.paths().ReposFile(), args[0], cmd.OutOrStdout())
		},
	}
}

// runAddWith is the testable core of the add command.
func runAddWith(reposPath, url string, out io.Writer) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("repository URL must not be empty")
	}

	m, err := manifest.Load(reposPath)
	if err != nil {
		return fmt.Errorf("loading repository list: %w", err)
	}

	if !m.Add(url) {
		fmt.Fprintf(out, "📋 Repository %s already exists.\n", url)
		return nil
	}

	if err := m.Save(reposPath); err != nil {
		return fmt.Errorf("saving repository list: %w", err)
	}

	fmt.Fprintf(out, "✅ Added %s. Run 'randl repository sync' to fetch it.\n", url)
	return nil
}

// newRemoveCmd creates the `repository remove` command.
// Usage: randl repository remove <url>
func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <url>",
		Aliases: []string{"rm"},
		Short:   "Remove a repository and its synced copy",
		Args:    cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return completeRepositoryURL(opts.paths().ReposFile(), toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.paths()
			store := repository.NewStore(p.SyncDir())
			return runRemoveWith(p.ReposFile(), lockPath(p), store, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// runRemoveWith is the testable core of the remove command.
func runRemoveWith(reposPath, lockFile string, store *repository.Store, url string, out, errOut io.Writer) error {
	m, err := manifest.Load(reposPath)
	if err != nil {
		return fmt.Errorf("loading repository list: %w", err)
	}

	lock, err := manifest.LoadLock(lockFile)
	if err != nil {
		return fmt.Errorf("loading lock file: %w", err)
	}

	if !m.Remove(url) {
		fmt.Fprintf(errOut, "📋 Repository %s not found.\n", url)
		return nil
	}

	// Delete the synced copy so pull no longer samples it
	path := store.Path(url)
	if entry, ok := lock.Get(url); ok && entry.Path != "" {
		path = entry.Path
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	lock.Remove(url)

	if err := m.Save(reposPath); err != nil {
		return fmt.Errorf("saving repository list: %w", err)
	}
	if err := lock.Save(lockFile); err != nil {
		return fmt.Errorf("saving lock file: %w", err)
	}

	fmt.Fprintf(out, "🗑️  Removed %s\n", url)
	return nil
}

// newListCmd creates the `repository list` command.
// Usage: randl repository list
func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all repositories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.paths()
			return runListWith(p.ReposFile(), lockPath(p), p.SyncDir(), &download.OSFileWriter{}, cmd.OutOrStdout())
		},
	}
}

// runListWith is the testable core of the list command.
func runListWith(reposPath, lockFile, syncDir string, fs download.FileWriter, out io.Writer) error {
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

	for _, r := range CheckRepositories(m.URLs(), lock, syncDir, fs) {
		switch r.Status {
		case CheckOK:
			fmt.Fprintf(out, "%s\t(%d lines, synced %s)\n", r.URL, r.Lines, r.SyncedAt)
		case CheckEmpty:
			fmt.Fprintf(out, "%s\t(empty, synced %s)\n", r.URL, r.SyncedAt)
		default:
			fmt.Fprintf(out, "%s\t(not synced)\n", r.URL)
		}
	}
	return nil
}

// completeRepositoryURL suggests listed repository URLs for shell completion.
func completeRepositoryURL(reposPath, toComplete string) ([]string, cobra.ShellCompDirective) {
	m, err := manifest.Load(reposPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, u := range m.URLs() {
		if strings.HasPrefix(u, toComplete) {
			completions = append(completions, formatCompletionLine(u, "Repository"))
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

// formatCompletionLine renders a cobra completion with a description.
func formatCompletionLine(value, description string) string {
	return value + "\t" + description
}

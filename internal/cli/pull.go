package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cbout22/randl/internal/auth"
	"github.com/cbout22/randl/internal/download"
	"github.com/cbout22/randl/internal/logging"
	"github.com/cbout22/randl/internal/prompt"
	"github.com/cbout22/randl/internal/remote"
	"github.com/cbout22/randl/internal/repository"
	"github.com/cbout22/randl/internal/resolver"
)

// puller resolves a top-level repository to a download.
type puller interface {
	Pull(ctx context.Context, lines []string) error
}

var _ puller = (*resolver.Resolver)(nil)

// newPullCmd creates the `pull` command.
// Usage: randl pull [--max-depth N]
func newPullCmd(opts *rootOptions) *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull a random file from a repository",
		Long: `Picks a random synced repository, then a random line from it, and
downloads that file after asking for confirmation. Declining re-rolls.

Nested repositories are followed up to --max-depth hops (0 = unbounded).
The flag overrides max_depth from config.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.paths()
			cfg, err := opts.loadConfig(p)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-depth") {
				if maxDepth < 0 {
					return fmt.Errorf("invalid --max-depth %d: must be 0 (unbounded) or positive", maxDepth)
				}
				cfg.MaxDepth = maxDepth
			}

			out := cmd.OutOrStdout()
			client := auth.NewHTTPClient(cfg.UserAgent)
			// One confirmer serves both prompts so buffered stdin is shared.
			confirmer := prompt.New(os.Stdin, out)
			dl := download.New(client, confirmer, download.Options{
				OutputDir:        cfg.OutputDir,
				DefaultFilename:  cfg.DefaultFilename,
				ProgressInterval: cfg.ProgressInterval,
				Out:              out,
			})
			res := resolver.New(remote.New(client), dl, confirmer, cfg.MaxDepth, resolver.WithOutput(out))

			store := repository.NewStore(p.SyncDir())
			return runPullWith(cmd.Context(), store, res, rand.IntN, out, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVarP(&maxDepth, "max-depth", "m", 0, "Maximum depth for nested repositories (0 = unbounded)")

	return cmd
}

// runPullWith is the testable core of the pull command.
func runPullWith(ctx context.Context, src repository.Source, p puller, pick resolver.Sampler, out, errOut io.Writer) error {
	log := logging.GetLogger("pull")

	fmt.Fprintln(out, "🔄 Loading repositories...")

	files, err := src.Files()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(errOut, "📋 No repositories synced. Run: randl repository sync")
		return nil
	}

	path := files[pick(len(files))]
	lines, err := src.Read(path)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Fprintf(errOut, "📋 Repository %s is empty.\n", filepath.Base(path))
		return nil
	}

	log.Debug().Str("repository", path).Int("lines", len(lines)).Msg("Selected repository")
	return p.Pull(ctx, lines)
}

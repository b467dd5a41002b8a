package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/cbout22/randl/internal/config"
	"github.com/cbout22/randl/internal/logging"
	"github.com/cbout22/randl/internal/manifest"
)

// version is set at build time via -ldflags.
var version = "dev"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	verbose    int
	configPath string
}

// paths resolves the on-disk layout.
func (o *rootOptions) paths() config.Paths {
	return config.NewPaths()
}

// configFile returns --config, or config.toml in the config directory.
func (o *rootOptions) configFile(p config.Paths) string {
	if o.configPath != "" {
		return o.configPath
	}
	return p.ConfigFile()
}

// loadConfig reads the config file named by configFile.
func (o *rootOptions) loadConfig(p config.Paths) (*config.Config, error) {
	cfg, err := config.Load(o.configFile(p))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// lockPath returns the sync lock file location.
func lockPath(p config.Paths) string {
	return filepath.Join(p.ConfigDir, manifest.DefaultLockFile)
}

// NewRootCmd creates the top-level `randl` command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "randl",
		Short: "Random Downloader — pull a random file from your repositories",
		Long: `randl picks a random entry from one of your synced repositories and
downloads it. A repository is a plain-text list of URLs; a line of the form
"Nested <url>" points at another repository, which is fetched and sampled in
turn.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			p := opts.paths()
			logging.SetupLogger(opts.verbose, p.LogFile())
			if err := p.Ensure(); err != nil {
				return fmt.Errorf("preparing config directory: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "Increase log verbosity (-v, -vv, -vvv)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: <config dir>/config.toml)")

	root.AddCommand(newPullCmd(opts))
	root.AddCommand(newRepositoryCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}

// Execute runs the root command. SIGINT cancels the running pull.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(err)
		stop()
		os.Exit(1)
	}
}

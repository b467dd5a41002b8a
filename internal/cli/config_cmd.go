package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/cbout22/randl/internal/config"
)

// newConfigCmd creates the `config` command group.
func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create config.toml",
	}

	cmd.AddCommand(newConfigInitCmd(opts))
	cmd.AddCommand(newConfigShowCmd(opts))

	return cmd
}

// newConfigInitCmd creates the `config init` command.
// Usage: randl config init [--force]
func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.toml with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInitWith(opts.configFile(opts.paths()), force, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

// runConfigInitWith is the testable core of the config init command.
func runConfigInitWith(path string, force bool, out io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(out, "📋 %s already exists. Use --force to overwrite.\n", path)
		return nil
	}

	if err := config.Default().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Wrote %s\n", path)
	return nil
}

// newConfigShowCmd creates the `config show` command.
// Usage: randl config show
func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(opts.paths())
			if err != nil {
				return err
			}
			return runConfigShowWith(cfg, cmd.OutOrStdout())
		},
	}
}

// runConfigShowWith prints cfg as TOML.
func runConfigShowWith(cfg *config.Config, out io.Writer) error {
	if err := toml.NewEncoder(out).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

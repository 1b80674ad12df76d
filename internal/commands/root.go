// Package commands defines the tabsplit CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabsplit-dev/tabsplit/internal/buildinfo"
	"github.com/tabsplit-dev/tabsplit/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "tabsplit",
		Short:   "Split itemized receipts between people, to the cent",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the tabsplit config file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newSplitCommand())
	rootCmd.AddCommand(newExtractCommand(&configPath))
	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newImportCommand(&configPath))
	rootCmd.AddCommand(newReceiptsCommand(&configPath))

	return rootCmd
}

// loadConfig reads the config file, falling back to built-in defaults when
// nothing exists at the default path.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if path == config.DefaultPath {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

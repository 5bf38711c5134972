// Package cli holds the fuzzyfind command line: one-off searches, variant listing and the
// HTTP server.
package cli

import (
	"github.com/meghashyamc/fuzzyfind/config"
	"github.com/meghashyamc/fuzzyfind/logger"
	"github.com/spf13/cobra"
)

type app struct {
	cfg    *config.Config
	logger logger.Logger
}

// NewRootCommand creates the 'fuzzyfind' command and its subcommands.
func NewRootCommand(cfg *config.Config, logger logger.Logger) *cobra.Command {
	a := &app{cfg: cfg, logger: logger}

	cmd := &cobra.Command{
		Use:   "fuzzyfind",
		Short: "Search a directory tree for a keyword and its spelling variants",
		Long: `fuzzyfind expands a keyword into similar words from a vocabulary and looks for
any of them in file names and, optionally, file contents below a directory.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(a.newSearchCommand())
	cmd.AddCommand(a.newVariantsCommand())
	cmd.AddCommand(a.newServeCommand())

	return cmd
}

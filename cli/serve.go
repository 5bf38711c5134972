package cli

import (
	"github.com/meghashyamc/fuzzyfind/api"
	"github.com/spf13/cobra"
)

func (a *app) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve searches over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vocabulary, err := a.loadVocabulary()
			if err != nil {
				return err
			}

			return api.Run(cmd.Context(), a.cfg, a.logger, vocabulary)
		},
	}
}

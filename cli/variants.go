package cli

import (
	"fmt"

	"github.com/meghashyamc/fuzzyfind/services/variants"
	"github.com/meghashyamc/fuzzyfind/validation"
	"github.com/spf13/cobra"
)

type variantsInput struct {
	Keyword   string  `json:"keyword" validate:"required,valid_keyword"`
	Threshold float64 `json:"threshold" validate:"min=0,max=1"`
}

func (a *app) newVariantsCommand() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "variants <keyword>",
		Short: "List the vocabulary words a search for keyword would also match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := validation.New(a.logger)
			if err != nil {
				return fmt.Errorf("create validator: %w", err)
			}
			if err := validator.Validate(variantsInput{Keyword: args[0], Threshold: threshold}); err != nil {
				return err
			}

			vocabulary, err := a.loadVocabulary()
			if err != nil {
				return err
			}

			expander := variants.NewExpander(a.logger, a.cfg.GetExpandWorkers())
			expansion, err := expander.Expand(cmd.Context(), args[0], vocabulary, threshold)
			if err != nil {
				return err
			}

			output := cmd.OutOrStdout()
			for _, variant := range expansion.Variants {
				fmt.Fprintln(output, variant)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d variants of %q at threshold %v\n", len(expansion.Variants), expansion.Keyword, expansion.Threshold)

			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", a.cfg.GetThreshold(), "similarity tolerance between 0 (exact) and 1")

	return cmd
}

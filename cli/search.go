package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meghashyamc/fuzzyfind/services/report"
	"github.com/meghashyamc/fuzzyfind/services/search"
	"github.com/meghashyamc/fuzzyfind/validation"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	folder         string
	searchContents bool
	threshold      float64
	maxResults     int
	reportPath     string
	open           bool
	sortEntries    bool
	quiet          bool
}

type searchInput struct {
	Path       string  `json:"path" validate:"valid_root"`
	Keyword    string  `json:"keyword" validate:"required,valid_keyword"`
	Threshold  float64 `json:"threshold" validate:"min=0,max=1"`
	MaxResults int     `json:"max_results" validate:"min=1"`
}

func (a *app) newSearchCommand() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <keyword> [root]",
		Short: "Search a directory tree for a keyword and its variants",
		Long: `Walk the directory tree below root and report every file whose name matches the
keyword or one of its variants. With --contents each line of each file is checked as
well. The walk stops as soon as --max-results matches have been found.

root defaults to the configured search root, then to the current directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.folder, "folder", "", "search the first directory with this name below the home directory")
	cmd.Flags().BoolVar(&opts.searchContents, "contents", a.cfg.GetSearchContents(), "search file contents as well as names")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", a.cfg.GetThreshold(), "similarity tolerance between 0 (exact) and 1")
	cmd.Flags().IntVar(&opts.maxResults, "max-results", a.cfg.GetMaxResults(), "stop after this many matches")
	cmd.Flags().StringVar(&opts.reportPath, "report", a.cfg.GetReportPath(), "where to write the report")
	cmd.Flags().BoolVar(&opts.open, "open", a.cfg.GetReportOpen(), "open the report when the search finishes")
	cmd.Flags().BoolVar(&opts.sortEntries, "sort", a.cfg.GetSortEntries(), "visit directory entries in name order")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only the summary, not every match")

	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, args []string, opts *searchOptions) error {
	keyword := args[0]

	root, err := a.resolveRoot(args, opts.folder)
	if err != nil {
		return err
	}

	validator, err := validation.New(a.logger)
	if err != nil {
		return fmt.Errorf("create validator: %w", err)
	}
	if err := validator.Validate(searchInput{Path: root, Keyword: keyword, Threshold: opts.threshold, MaxResults: opts.maxResults}); err != nil {
		return err
	}

	vocabulary, err := a.loadVocabulary()
	if err != nil {
		return err
	}

	service := search.New(cmd.Context(), a.logger, vocabulary, a.cfg.GetExpandWorkers(), nil)
	result, err := service.Run(cmd.Context(), search.Request{
		Root:           root,
		Keyword:        keyword,
		SearchContents: opts.searchContents,
		Threshold:      opts.threshold,
		MaxResults:     opts.maxResults,
		SortEntries:    opts.sortEntries,
	})
	if result == nil {
		return err
	}
	searchErr := err

	if err := report.Write(opts.reportPath, result); err != nil {
		a.logger.Error("failed to write report", "path", opts.reportPath, "err", err.Error())
		return err
	}

	report.PrintSummary(cmd.OutOrStdout(), result, opts.reportPath, !opts.quiet)

	if searchErr != nil {
		return searchErr
	}

	if opts.open {
		if err := report.Open(opts.reportPath); err != nil {
			a.logger.Warn("could not open report", "path", opts.reportPath, "err", err.Error())
		}
	}

	return nil
}

// resolveRoot picks the directory to search: the root argument, then --folder, then the
// configured root, then the working directory.
func (a *app) resolveRoot(args []string, folder string) (string, error) {
	var root string

	switch {
	case len(args) > 1:
		root = args[1]
	case folder != "":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("find home directory: %w", err)
		}
		root, err = locateFolder(home, folder, defaultFolderSearchDepth)
		if err != nil {
			return "", err
		}
	case a.cfg.GetSearchRoot() != "":
		root = a.cfg.GetSearchRoot()
	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		root = wd
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &search.InvalidRootError{Path: root, Reason: err.Error()}
	}

	return absRoot, nil
}

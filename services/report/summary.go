package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/meghashyamc/fuzzyfind/services/search"
)

const maxVariantsInSummary = 20

type palette struct {
	label   *color.Color
	value   *color.Color
	match   *color.Color
	failure *color.Color
	warn    *color.Color
}

func newPalette() palette {
	return palette{
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite, color.Bold),
		match:   color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
	}
}

// PrintSummary writes a short coloured overview of result to w. When showMatches is set every
// record is listed as well.
func PrintSummary(w io.Writer, result *search.Result, reportPath string, showMatches bool) {
	p := newPalette()
	session := result.Session

	p.label.Fprint(w, "Keyword: ")
	p.value.Fprintln(w, result.Keyword)

	p.label.Fprint(w, "Variations: ")
	p.value.Fprintln(w, summarizeVariants(result.Variants))

	if showMatches {
		for _, record := range session.Records {
			printRecord(w, p, record)
		}
	}

	p.label.Fprint(w, "Matches: ")
	p.value.Fprintf(w, "%d", session.Count())
	fmt.Fprintf(w, " (%d entries visited in %.2f seconds)\n", session.EntriesVisited, session.Elapsed.Seconds())

	if session.Capped {
		p.warn.Fprintf(w, "Stopped after reaching the limit of %d results\n", session.MaxResults)
	}
	if session.Cancelled {
		p.failure.Fprintln(w, "Search was cancelled before it finished")
	}

	if reportPath != "" {
		p.label.Fprint(w, "Report: ")
		fmt.Fprintln(w, reportPath)
	}
}

func printRecord(w io.Writer, p palette, record search.MatchRecord) {
	switch record.Kind {
	case search.KindDecodeError:
		p.failure.Fprintln(w, record.String())
	default:
		p.match.Fprintln(w, record.String())
	}
}

func summarizeVariants(variants []string) string {
	if len(variants) == 0 {
		return "none"
	}
	if len(variants) <= maxVariantsInSummary {
		return strings.Join(variants, ", ")
	}

	return fmt.Sprintf("%s and %d more", strings.Join(variants[:maxVariantsInSummary], ", "), len(variants)-maxVariantsInSummary)
}

package variants

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meghashyamc/fuzzyfind/logger"
)

var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

// Expansion is the frozen output of variant expansion. It must not be modified once built.
type Expansion struct {
	Keyword   string
	Threshold float64
	Variants  []string
	Pattern   *regexp.Regexp
}

type Expander struct {
	logger  logger.Logger
	workers int
}

// NewExpander returns an expander that scans the vocabulary with up to workers goroutines.
func NewExpander(logger logger.Logger, workers int) *Expander {
	return &Expander{
		logger:  logger,
		workers: max(1, workers),
	}
}

// Expand collects every vocabulary word close enough to keyword and compiles the
// case-insensitive pattern for keyword and its variants. Words equal to the keyword, ignoring
// case, are the keyword itself and are not reported as variants.
func (e *Expander) Expand(ctx context.Context, keyword string, vocabulary *Vocabulary, threshold float64) (*Expansion, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}

	start := time.Now()
	var words []string
	if vocabulary != nil {
		words = vocabulary.words
	}

	variants, err := e.collect(ctx, []rune(keyword), keyword, words, threshold)
	if err != nil {
		return nil, err
	}
	sort.Strings(variants)

	pattern, err := CompilePattern(keyword, variants)
	if err != nil {
		e.logger.Error("failed to compile search pattern", "keyword", keyword, "variants", len(variants), "err", err.Error())
		return nil, err
	}

	e.logger.Debug("expanded keyword", "keyword", keyword, "threshold", threshold, "vocabulary_size", len(words), "variants", len(variants), "elapsed", time.Since(start).String())

	return &Expansion{
		Keyword:   keyword,
		Threshold: threshold,
		Variants:  variants,
		Pattern:   pattern,
	}, nil
}

func (e *Expander) collect(ctx context.Context, keyword []rune, rawKeyword string, words []string, threshold float64) ([]string, error) {
	if len(words) == 0 {
		return nil, nil
	}

	numGoroutines := min(e.workers, len(words))
	wordsPerGoroutine := len(words) / numGoroutines

	portions := make([][]string, numGoroutines)
	var wg sync.WaitGroup

	for i := range numGoroutines {
		start := i * wordsPerGoroutine
		end := start + wordsPerGoroutine

		// The last goroutine takes any remaining words
		if i == numGoroutines-1 {
			end = len(words)
		}

		wg.Add(1)
		go func(i int, portion []string) {
			defer wg.Done()
			portions[i] = collectPortion(ctx, keyword, rawKeyword, portion, threshold)
		}(i, words[start:end])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		e.logger.Warn("variant expansion cancelled", "keyword", rawKeyword, "err", err.Error())
		return nil, err
	}

	var variants []string
	for _, portion := range portions {
		variants = append(variants, portion...)
	}

	return variants, nil
}

const cancellationCheckInterval = 1024

func collectPortion(ctx context.Context, keyword []rune, rawKeyword string, words []string, threshold float64) []string {
	var accepted []string
	for i, word := range words {
		if i%cancellationCheckInterval == 0 && ctx.Err() != nil {
			return nil
		}
		if strings.EqualFold(word, rawKeyword) {
			continue
		}
		if isCloseMatch(keyword, []rune(word), threshold) {
			accepted = append(accepted, word)
		}
	}

	return accepted
}

// CompilePattern escapes keyword and every variant, joins them as alternatives and compiles
// the result as a case-insensitive pattern.
func CompilePattern(keyword string, variants []string) (*regexp.Regexp, error) {
	alternatives := make([]string, 0, len(variants)+1)
	for _, variant := range variants {
		alternatives = append(alternatives, regexp.QuoteMeta(variant))
	}
	alternatives = append(alternatives, regexp.QuoteMeta(keyword))

	pattern, err := regexp.Compile("(?i)(?:" + strings.Join(alternatives, "|") + ")")
	if err != nil {
		return nil, fmt.Errorf("failed to compile search pattern: %w", err)
	}

	return pattern, nil
}

package cli

import (
	"errors"
	"io/fs"

	"github.com/meghashyamc/fuzzyfind/services/variants"
)

// loadVocabulary reads the configured word list. A missing list leaves the keyword as the
// only thing searched for.
func (a *app) loadVocabulary() (*variants.Vocabulary, error) {
	path := a.cfg.GetVocabularyPath()
	if path == "" {
		a.logger.Info("no vocabulary configured, searching for the keyword only")
		return variants.NewVocabulary(nil), nil
	}

	vocabulary, err := variants.LoadVocabulary(path)
	if errors.Is(err, fs.ErrNotExist) {
		a.logger.Warn("vocabulary file not found, searching for the keyword only", "path", path)
		return variants.NewVocabulary(nil), nil
	}
	if err != nil {
		a.logger.Error("failed to load vocabulary", "path", path, "err", err.Error())
		return nil, err
	}

	a.logger.Debug("loaded vocabulary", "path", path, "words", vocabulary.Len())
	return vocabulary, nil
}

package variants

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Vocabulary is a read-only, deduplicated set of reference words. Build it once and share it
// between searches.
type Vocabulary struct {
	words []string
	index map[string]struct{}
}

// NewVocabulary trims every word, drops blanks and keeps the first occurrence of duplicates.
func NewVocabulary(words []string) *Vocabulary {
	vocabulary := &Vocabulary{
		words: make([]string, 0, len(words)),
		index: make(map[string]struct{}, len(words)),
	}
	for _, word := range words {
		vocabulary.add(word)
	}

	return vocabulary
}

// LoadVocabulary reads a word list with one word per line.
func LoadVocabulary(path string) (*Vocabulary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary %s: %w", path, err)
	}
	defer file.Close()

	vocabulary, err := ReadVocabulary(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}

	return vocabulary, nil
}

func ReadVocabulary(r io.Reader) (*Vocabulary, error) {
	vocabulary := NewVocabulary(nil)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		vocabulary.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return vocabulary, nil
}

func (v *Vocabulary) add(word string) {
	word = strings.TrimSpace(word)
	if word == "" {
		return
	}
	if _, ok := v.index[word]; ok {
		return
	}
	v.index[word] = struct{}{}
	v.words = append(v.words, word)
}

func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.words)
}

func (v *Vocabulary) Contains(word string) bool {
	if v == nil {
		return false
	}
	_, ok := v.index[word]
	return ok
}

// Words returns a copy of the words in load order.
func (v *Vocabulary) Words() []string {
	if v == nil {
		return nil
	}
	words := make([]string, len(v.words))
	copy(words, v.words)
	return words
}

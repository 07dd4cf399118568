// Package tokenizer splits text into whitespace-delimited words and holds the
// stop-word set shared by indexing and query parsing. Words are kept exactly
// as written: no case folding and no stemming.
package tokenizer

import (
	"iter"
	"maps"
	"slices"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Split yields the words of text separated by the ASCII space. Empty pieces
// produced by repeated spaces are skipped. The sequence can be ranged over
// any number of times.
func Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i := 0; i < len(text); i++ {
			if text[i] == ' ' {
				if start >= 0 {
					if !yield(text[start:i]) {
						return
					}
					start = -1
				}
				continue
			}
			if start < 0 {
				start = i
			}
		}
		if start >= 0 {
			yield(text[start:])
		}
	}
}

// IsValidWord reports whether word is free of control characters (bytes
// below the ASCII space).
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}

// StopWords is a set of words excluded from both indexing and querying.
type StopWords map[string]struct{}

// NewStopWords builds a set from words, dropping empty strings. A word that
// contains a control character is rejected.
func NewStopWords(words ...string) (StopWords, error) {
	set := make(StopWords, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if !IsValidWord(w) {
			return nil, apperrors.Invalid("stop word %q contains a control character", w)
		}
		set[w] = struct{}{}
	}
	return set, nil
}

// ParseStopWords builds a set from a space-separated list.
func ParseStopWords(text string) (StopWords, error) {
	var words []string
	for w := range Split(text) {
		words = append(words, w)
	}
	return NewStopWords(words...)
}

func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// String renders the set in sorted order for logging.
func (s StopWords) String() string {
	return strings.Join(slices.Sorted(maps.Keys(s)), " ")
}

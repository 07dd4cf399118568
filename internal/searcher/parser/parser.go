package parser

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Query holds the words a document must contain (Plus) and must not
// contain (Minus). Both lists are sorted and free of duplicates; the same
// word may appear in both.
type Query struct {
	Plus     []string
	Minus    []string
	RawQuery string
}

func (q Query) Empty() bool {
	return len(q.Plus) == 0 && len(q.Minus) == 0
}

type queryWord struct {
	data    string
	isMinus bool
	isStop  bool
}

// Parse splits raw into words. A leading '-' marks a minus word. A lone '-',
// a word starting with "--" and a word containing a control character are
// rejected. Stop words are dropped silently, minus or not.
func Parse(raw string, stopWords tokenizer.StopWords) (Query, error) {
	q := Query{
		Plus:     make([]string, 0),
		Minus:    make([]string, 0),
		RawQuery: raw,
	}
	for text := range tokenizer.Split(raw) {
		word, err := parseWord(text, stopWords)
		if err != nil {
			return Query{}, err
		}
		if word.isStop {
			continue
		}
		if word.isMinus {
			q.Minus = append(q.Minus, word.data)
		} else {
			q.Plus = append(q.Plus, word.data)
		}
	}
	slices.Sort(q.Plus)
	q.Plus = slices.Compact(q.Plus)
	slices.Sort(q.Minus)
	q.Minus = slices.Compact(q.Minus)
	return q, nil
}

func parseWord(text string, stopWords tokenizer.StopWords) (queryWord, error) {
	if text == "" {
		return queryWord{}, apperrors.Invalid("query word is empty")
	}
	word := text
	isMinus := false
	if strings.HasPrefix(word, "-") {
		isMinus = true
		word = word[1:]
	}
	switch {
	case word == "":
		return queryWord{}, apperrors.Invalid("query word %q has no text after '-'", text)
	case strings.HasPrefix(word, "-"):
		return queryWord{}, apperrors.Invalid("query word %q has more than one leading '-'", text)
	case !tokenizer.IsValidWord(word):
		return queryWord{}, apperrors.Invalid("query word %q contains a control character", text)
	}
	return queryWord{
		data:    word,
		isMinus: isMinus,
		isStop:  stopWords.Contains(word),
	}, nil
}

package executor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// fakeSearcher returns one document per word of the query, with the word
// length as id.
type fakeSearcher struct{}

func (fakeSearcher) FindTopDocuments(raw string) ([]ranker.Document, error) {
	if strings.Contains(raw, "--") {
		return nil, apperrors.Invalid("bad query %q", raw)
	}
	var docs []ranker.Document
	for _, w := range strings.Fields(raw) {
		docs = append(docs, ranker.Document{ID: len(w), Relevance: 1})
	}
	return docs, nil
}

func TestProcessQueries(t *testing.T) {
	e := New(fakeSearcher{}, parallel.NewPool(4))
	queries := []string{"a bb", "", "ccc dddd eeeee", "ff"}
	results, err := e.ProcessQueries(queries)
	require.NoError(t, err)
	require.Len(t, results, len(queries))
	assert.Len(t, results[0], 2)
	assert.Empty(t, results[1])
	assert.Equal(t, 3, results[2][0].ID)
	assert.Equal(t, 2, results[3][0].ID)
}

func TestProcessQueriesJoined(t *testing.T) {
	e := New(fakeSearcher{}, parallel.NewPool(2))
	queries := []string{"a bb", "ccc", "dddd eeeee ffffff"}
	perQuery, err := e.ProcessQueries(queries)
	require.NoError(t, err)
	joined, err := e.ProcessQueriesJoined(queries)
	require.NoError(t, err)

	ids := make([]int, 0, len(joined))
	for _, d := range joined {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids)
	total := 0
	for _, docs := range perQuery {
		total += len(docs)
	}
	assert.Len(t, joined, total)
}

func TestProcessQueriesError(t *testing.T) {
	e := New(fakeSearcher{}, nil)
	_, err := e.ProcessQueries([]string{"fine", "--bad"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "query 1")

	_, err = e.ProcessQueriesJoined([]string{"--bad"})
	assert.Error(t, err)
}

func TestProcessQueriesManyQueries(t *testing.T) {
	e := New(fakeSearcher{}, parallel.NewPool(8))
	queries := make([]string, 500)
	for i := range queries {
		queries[i] = strings.Repeat("x", i%20+1)
	}
	results, err := e.ProcessQueries(queries)
	require.NoError(t, err)
	for i, docs := range results {
		require.Len(t, docs, 1, fmt.Sprint(i))
		assert.Equal(t, i%20+1, docs[0].ID)
	}
}

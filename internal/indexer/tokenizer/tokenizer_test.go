package tokenizer

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"only spaces", "   ", nil},
		{"single", "cat", []string{"cat"}},
		{"repeated spaces", "  white  cat ", []string{"white", "cat"}},
		{"tab kept in word", "white\tcat dog", []string{"white\tcat", "dog"}},
		{"case preserved", "Cat cat", []string{"Cat", "cat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slices.Collect(Split(tt.text)))
		})
	}
}

func TestSplitEarlyStop(t *testing.T) {
	var got []string
	for w := range Split("a b c d") {
		got = append(got, w)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestIsValidWord(t *testing.T) {
	assert.True(t, IsValidWord("cat"))
	assert.True(t, IsValidWord("ёж"))
	assert.False(t, IsValidWord("c\x12at"))
	assert.False(t, IsValidWord("cat\n"))
}

func TestNewStopWords(t *testing.T) {
	sw, err := NewStopWords("in", "", "the", "in")
	require.NoError(t, err)
	assert.Len(t, sw, 2)
	assert.True(t, sw.Contains("in"))
	assert.False(t, sw.Contains(""))
	assert.Equal(t, "in the", sw.String())

	_, err = NewStopWords("bad\x01")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestParseStopWords(t *testing.T) {
	sw, err := ParseStopWords(" and  in on ")
	require.NoError(t, err)
	assert.Equal(t, "and in on", sw.String())
}

func BenchmarkSplit(b *testing.B) {
	text := "fluffy cat with a collar and a nice tail walking in the city at night"
	b.ReportAllocs()
	for b.Loop() {
		for range Split(text) {
		}
	}
}

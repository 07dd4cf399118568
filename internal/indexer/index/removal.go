package index

import (
	"maps"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
)

// RemoveDocument deletes id from the id list, the records, the forward index
// and every posting list that references it. Unknown ids are ignored; the
// return value reports whether anything was removed.
//
// Under parallel.Parallel the document's terms are split across workers and
// each worker strips id only from the posting lists of its own terms. Posting
// lists left empty are dropped afterwards on the calling goroutine, so a term
// stays in the inverted index only while some document contains it.
func (s *Store) RemoveDocument(policy parallel.Policy, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	terms, ok := s.forward[id]
	if !ok {
		return false
	}
	words := slices.Sorted(maps.Keys(terms))
	emptied := make([][]string, s.pool.Parts(policy, len(words)))
	s.pool.Partition(policy, len(words), func(part, lo, hi int) {
		for _, word := range words[lo:hi] {
			docs := s.postings[word]
			delete(docs, id)
			if len(docs) == 0 {
				emptied[part] = append(emptied[part], word)
			}
		}
	})
	for _, words := range emptied {
		for _, word := range words {
			delete(s.postings, word)
		}
	}

	delete(s.forward, id)
	delete(s.records, id)
	if pos := slices.Index(s.ids, id); pos >= 0 {
		s.ids = slices.Delete(s.ids, pos, pos+1)
	}
	s.logger.Debug("document removed",
		"doc_id", id,
		"mode", policy,
		"terms", len(words),
	)
	return true
}

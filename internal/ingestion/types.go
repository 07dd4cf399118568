// Package ingestion defines the Kafka event schema that drives document
// mutations of the search engine.
package ingestion

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

type Operation string

const (
	OpAdd    Operation = "add"
	OpRemove Operation = "remove"
)

// DocumentEvent is one add or remove request read from the ingest topic.
type DocumentEvent struct {
	Op         Operation            `json:"op"`
	DocumentID int                  `json:"document_id"`
	Text       string               `json:"text,omitempty"`
	Status     index.DocumentStatus `json:"status,omitempty"`
	Ratings    []int                `json:"ratings,omitempty"`
	Mode       string               `json:"mode,omitempty"`
	IngestedAt time.Time            `json:"ingested_at"`
}

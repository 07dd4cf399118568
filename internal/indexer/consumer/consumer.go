// Package consumer reads document events from Kafka and applies them to the
// engine. A single consumer goroutine is the only writer of the index.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// DocumentWriter is the mutation side of the engine.
type DocumentWriter interface {
	AddDocument(id int, text string, status index.DocumentStatus, ratings []int) error
	RemoveDocumentPolicy(policy parallel.Policy, id int) bool
	GetDocumentCount() int
}

// Runner is anything with a blocking consume loop.
type Runner interface {
	Start(ctx context.Context) error
}

// IndexConsumer wraps a Kafka consumer to drive the indexing pipeline.
type IndexConsumer struct {
	consumer Runner
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer Runner) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that applies each document
// event to writer. Events that can never succeed (undecodable, invalid,
// rejected by the engine) are logged and acknowledged so they do not block
// the partition. Any other writer failure is returned unwrapped so that the
// consumer retries the message with backoff. m may be nil.
func HandleMessage(writer DocumentWriter, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentEvent](value)
		if err != nil {
			logger.Error("failed to decode document event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if err := validator.ValidateDocumentEvent(&event); err != nil {
			logger.Warn("invalid document event skipped",
				"doc_id", event.DocumentID,
				"error", err,
			)
			return nil
		}
		mode, _ := parallel.ParsePolicy(event.Mode)

		switch event.Op {
		case ingestion.OpAdd:
			if err := writer.AddDocument(event.DocumentID, event.Text, event.Status, event.Ratings); err != nil {
				if m != nil {
					m.DocsRejectedTotal.Inc()
				}
				if apperrors.IsValidation(err) {
					logger.Warn("document rejected", "doc_id", event.DocumentID, "error", err)
					return nil
				}
				return fmt.Errorf("applying add event for document %d: %w", event.DocumentID, err)
			}
			if m != nil {
				m.DocsIndexedTotal.Inc()
			}
			logger.Info("document indexed", "doc_id", event.DocumentID, "status", event.Status)
		case ingestion.OpRemove:
			removed := writer.RemoveDocumentPolicy(mode, event.DocumentID)
			if m != nil && removed {
				m.DocsRemovedTotal.WithLabelValues(mode.String()).Inc()
			}
			logger.Info("document removed", "doc_id", event.DocumentID, "removed", removed, "mode", mode)
		}
		if m != nil {
			m.IndexDocumentCount.Set(float64(writer.GetDocumentCount()))
		}
		return nil
	}
}

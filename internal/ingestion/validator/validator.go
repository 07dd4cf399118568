// Package validator checks ingestion events before they reach the engine.
// Word-level checks (control characters, stop words) stay with the engine;
// this package rejects events that cannot be applied at all.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
)

const maxTextLength = 1048576

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ValidateDocumentEvent checks the operation, id, text size and mode.
func ValidateDocumentEvent(event *ingestion.DocumentEvent) error {
	errs := make(map[string]string)

	switch event.Op {
	case ingestion.OpAdd, ingestion.OpRemove:
	case "":
		errs["op"] = "op is required"
	default:
		errs["op"] = fmt.Sprintf("unknown op %q", event.Op)
	}
	if event.DocumentID < 0 {
		errs["document_id"] = "document id must be non-negative"
	}
	if event.Op == ingestion.OpAdd && len(event.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
	if _, err := parallel.ParsePolicy(event.Mode); err != nil {
		errs["mode"] = err.Error()
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

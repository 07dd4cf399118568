package health

import (
	"context"
	"fmt"
)

// IndexStats is the read side of the search engine needed by IndexCheck.
type IndexStats interface {
	GetDocumentCount() int
	TermCount() int
}

// IndexCheck reports the size of the in-memory index. The index is always
// up once constructed; the message is informational.
func IndexCheck(stats IndexStats) Check {
	return func(ctx context.Context) ComponentHealth {
		return ComponentHealth{
			Status:  StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", stats.GetDocumentCount(), stats.TermCount()),
		}
	}
}

// ErrorSource exposes the last error of a background loop, nil when healthy.
type ErrorSource interface {
	LastError() error
}

// ConsumerCheck is degraded while the ingestion consumer's last fetch failed.
// Search keeps working on the current index, so it never reports down.
func ConsumerCheck(src ErrorSource) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := src.LastError(); err != nil {
			return ComponentHealth{Status: StatusDegraded, Message: err.Error()}
		}
		return ComponentHealth{Status: StatusUp}
	}
}

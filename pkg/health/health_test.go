package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct{ docs, terms int }

func (f fakeIndex) GetDocumentCount() int { return f.docs }
func (f fakeIndex) TermCount() int        { return f.terms }

type fakeSource struct{ err error }

func (f fakeSource) LastError() error { return f.err }

func TestRunWorstStatusWins(t *testing.T) {
	c := NewChecker()
	c.Register("index", IndexCheck(fakeIndex{docs: 3, terms: 10}))
	report := c.Run(context.Background())
	assert.Equal(t, StatusUp, report.Status)
	assert.Equal(t, "3 documents, 10 terms", report.Components["index"].Message)

	c.Register("kafka_consumer", ConsumerCheck(fakeSource{err: errors.New("broker unavailable")}))
	report = c.Run(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, "broker unavailable", report.Components["kafka_consumer"].Message)

	c.Register("disk", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDown}
	})
	assert.Equal(t, StatusDown, c.Run(context.Background()).Status)
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("kafka_consumer", ConsumerCheck(fakeSource{}))
	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusUp, report.Components["kafka_consumer"].Status)

	c.Register("kafka_consumer", ConsumerCheck(fakeSource{err: errors.New("down")}))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"alive"`)
}

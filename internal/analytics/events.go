package analytics

import "time"

// SearchEvent describes one served search request.
type SearchEvent struct {
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	Failed    bool      `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

// stubReader serves queued messages and then blocks until ctx is done.
type stubReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	fetchErrs []error
	committed []int64
	closed    bool
}

func (r *stubReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.msgs) > 0 {
		msg := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *stubReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *stubReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *stubReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestConsumerCommitsHandledMessages(t *testing.T) {
	reader := &stubReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("fail")},
		{Offset: 3, Value: []byte("ok")},
	}}
	var handled []string
	c := NewConsumerWithReader(reader, "document-ingest", func(ctx context.Context, key, value []byte) error {
		handled = append(handled, string(value))
		if string(value) == "fail" {
			return resilience.Permanent(errors.New("cannot apply"))
		}
		return nil
	})
	c.SetRetry(resilience.RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(reader.commits()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{1, 3}, reader.commits())
	assert.Equal(t, []string{"ok", "fail", "ok"}, handled)
	assert.True(t, reader.closed)
}

func TestConsumerRetriesTransientFailures(t *testing.T) {
	reader := &stubReader{msgs: []kafka.Message{{Offset: 4, Value: []byte("doc")}}}
	calls := 0
	c := NewConsumerWithReader(reader, "document-ingest", func(ctx context.Context, key, value []byte) error {
		calls++
		if calls < 3 {
			return errors.New("writer busy")
		}
		return nil
	})
	c.SetRetry(resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()
	require.Eventually(t, func() bool { return len(reader.commits()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int64{4}, reader.commits())
}

func TestConsumerTracksFetchErrors(t *testing.T) {
	reader := &stubReader{
		fetchErrs: []error{errors.New("broker unavailable")},
		msgs:      []kafka.Message{{Offset: 9}},
	}
	c := NewConsumerWithReader(reader, "t", func(ctx context.Context, key, value []byte) error { return nil })
	assert.NoError(t, c.LastError())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()
	require.Eventually(t, func() bool { return len(reader.commits()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.NoError(t, c.LastError())
}

func TestDecodeJSON(t *testing.T) {
	type event struct {
		ID int `json:"id"`
	}
	got, err := DecodeJSON[event]([]byte(`{"id":12}`))
	require.NoError(t, err)
	assert.Equal(t, 12, got.ID)

	_, err = DecodeJSON[event]([]byte(`{`))
	assert.Error(t, err)
}

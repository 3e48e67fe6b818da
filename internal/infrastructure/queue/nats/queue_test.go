package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Chaithz/thinkTree/internal/core/domain"
	"github.com/Chaithz/thinkTree/internal/infrastructure/resilience"
)

type recordingPublisher struct {
	subject string
	data    []byte
	errs    []error
	calls   int
}

func (r *recordingPublisher) Publish(subject string, data []byte) error {
	r.calls++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		if err != nil {
			return err
		}
	}
	r.subject = subject
	r.data = data
	return nil
}

func TestPublishIndexedEncodesEvent(t *testing.T) {
	rec := &recordingPublisher{}
	p := &Publisher{pub: rec, subject: "documents.indexed"}

	event := domain.IndexedEvent{
		Filename:    "a.pdf",
		Collection:  "example_collection",
		TotalChunks: 2,
		ChunkIDs:    []string{"a.pdf_chunk_0", "a.pdf_chunk_1"},
		IndexedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := p.PublishIndexed(context.Background(), event); err != nil {
		t.Fatalf("PublishIndexed() error = %v", err)
	}
	if rec.subject != "documents.indexed" {
		t.Fatalf("unexpected subject %q", rec.subject)
	}

	var got domain.IndexedEvent
	if err := json.Unmarshal(rec.data, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Filename != "a.pdf" || got.TotalChunks != 2 || len(got.ChunkIDs) != 2 || !got.IndexedAt.Equal(event.IndexedAt) {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestPublishIndexedRetriesDisconnect(t *testing.T) {
	rec := &recordingPublisher{errs: []error{nats.ErrDisconnected, nil}}
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     1,
		BreakerEnabled:      false,
	}, nil)
	p := &Publisher{pub: rec, subject: "s", executor: executor}

	if err := p.PublishIndexed(context.Background(), domain.IndexedEvent{Filename: "a.pdf"}); err != nil {
		t.Fatalf("PublishIndexed() error = %v", err)
	}
	if rec.calls != 2 {
		t.Fatalf("expected 2 publish attempts, got %d", rec.calls)
	}
}

func TestPublishIndexedMarksConnectionLossTemporary(t *testing.T) {
	rec := &recordingPublisher{errs: []error{nats.ErrConnectionClosed}}
	p := &Publisher{pub: rec, subject: "s"}

	err := p.PublishIndexed(context.Background(), domain.IndexedEvent{})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestClassifyNATSError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want resilience.ErrorClassification
	}{
		{name: "canceled", err: context.Canceled, want: resilience.ErrorClassification{}},
		{name: "timeout", err: fmt.Errorf("wrap: %w", nats.ErrTimeout), want: resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{name: "no servers", err: nats.ErrNoServers, want: resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{name: "other", err: errors.New("bad subject"), want: resilience.ErrorClassification{RecordFailure: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyNATSError(tt.err); got != tt.want {
				t.Fatalf("classifyNATSError() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeIndexedEvent(t *testing.T) {
	event, err := decodeIndexedEvent([]byte(`{"filename":"a.pdf","collection":"c","total_chunks":2,"chunk_ids":["a.pdf_chunk_0","a.pdf_chunk_1"]}`))
	if err != nil {
		t.Fatalf("decodeIndexedEvent() error = %v", err)
	}
	if event.Filename != "a.pdf" || event.TotalChunks != 2 || len(event.ChunkIDs) != 2 {
		t.Fatalf("unexpected event %+v", event)
	}

	for _, raw := range []string{`not json`, `{"collection":"c"}`} {
		if _, err := decodeIndexedEvent([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

package alerts

import (
	"context"
	"errors"
	"testing"
)

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(context.Context, Alert) error {
	s.calls++
	return s.err
}

func TestQueuePublisherDelegatesToSender(t *testing.T) {
	sender := &stubSender{}
	pub := &queuePublisher{
		id:       "q1",
		typ:      TypeQueue,
		provider: QueueProviderAWSSQS,
		sender:   sender,
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), Alert{Feed: "trending"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected 1 send, got %d", sender.calls)
	}
}

func TestQueuePublisherWrapsSenderError(t *testing.T) {
	pub := &queuePublisher{
		id:       "q1",
		typ:      TypeQueue,
		provider: QueueProviderGCP,
		sender:   &stubSender{err: errors.New("boom")},
		log:      noopLogger{},
	}

	err := pub.Publish(context.Background(), Alert{})
	if err == nil {
		t.Fatalf("expected wrapped sender error")
	}
}

func TestNewQueuePublisherRejectsUnknownProvider(t *testing.T) {
	_, err := newQueuePublisher(context.Background(), SinkConfig{
		ID:    "q1",
		Type:  TypeQueue,
		Queue: &QueueSinkConfig{Provider: "azure"},
	}, nil)
	if err == nil {
		t.Fatalf("expected error for unsupported provider")
	}
}

func TestNewQueuePublisherRequiresConfig(t *testing.T) {
	if _, err := newQueuePublisher(context.Background(), SinkConfig{ID: "q1", Type: TypeQueue}, nil); err == nil {
		t.Fatalf("expected error for missing queue config")
	}
}

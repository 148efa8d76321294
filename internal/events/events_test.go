// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cappi/internal/config"
	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/models"
)

const testTopic = "recommendations.generated"

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testRecord() *models.RecommendationRecord {
	return &models.RecommendationRecord{
		ID:     "rec-1",
		UserID: "traveler-1",
		Context: models.RequestContext{
			City:          "Cancún",
			RiskTolerance: models.RiskToleranceMedium,
			BudgetLevel:   models.BudgetModerate,
		},
		Items: []models.RankedItem{
			{EntityType: models.EntityPlace, EntityID: "cun-rooftop-22", Name: "Rooftop 22", Score: 99, Reasons: []string{"Zona Segura"}, SafetyScore: 95},
		},
		ModelVersion: "rules-v1",
		CreatedAt:    testNow,
	}
}

// failingPublisher counts calls and always fails.
type failingPublisher struct {
	mu     sync.Mutex
	calls  int
	closed bool
}

func (f *failingPublisher) Publish(string, ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("broker unreachable")
}

func (f *failingPublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *failingPublisher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func receive(t *testing.T, msgs <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-msgs:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublishRecommendationOverGoChannel(t *testing.T) {
	t.Parallel()

	ch := NewGoChannel(watermill.NopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := ch.Subscribe(ctx, testTopic)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	pub := NewPublisher(ch, testTopic, WithClock(func() time.Time { return testNow }))
	defer pub.Close()

	if err := pub.PublishRecommendation(logging.ContextWithRequestID(ctx, "req-42"), testRecord()); err != nil {
		t.Fatalf("PublishRecommendation: %v", err)
	}

	msg := receive(t, msgs)
	defer msg.Ack()

	if got := msg.Metadata.Get(MetadataRequestID); got != "req-42" {
		t.Errorf("request_id metadata = %q, want req-42", got)
	}

	if got := msg.Metadata.Get(MetadataRecordID); got != "rec-1" {
		t.Errorf("record_id metadata = %q", got)
	}
	if got := msg.Metadata.Get(natsgo.MsgIdHdr); got != "rec-1" {
		t.Errorf("dedup header = %q, want record id", got)
	}
	if got := msg.Metadata.Get(MetadataUserID); got != "traveler-1" {
		t.Errorf("user_id metadata = %q", got)
	}

	event, err := DecodeRecommendationGenerated(msg)
	if err != nil {
		t.Fatalf("DecodeRecommendationGenerated: %v", err)
	}
	if event.EventID != msg.UUID || event.Type != EventTypeRecommendationGenerated {
		t.Errorf("unexpected envelope %+v", event)
	}
	if !event.OccurredAt.Equal(testNow) {
		t.Errorf("OccurredAt = %v", event.OccurredAt)
	}
	if event.Record.ID != "rec-1" || len(event.Record.Items) != 1 || event.Record.Items[0].Score != 99 {
		t.Errorf("unexpected record %+v", event.Record)
	}
}

func TestPublishRecommendationErrors(t *testing.T) {
	t.Parallel()

	t.Run("nil record", func(t *testing.T) {
		t.Parallel()
		pub := NewPublisher(NewGoChannel(watermill.NopLogger{}), testTopic)
		if err := pub.PublishRecommendation(context.Background(), nil); err == nil {
			t.Error("expected error for nil record")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		fp := &failingPublisher{}
		pub := NewPublisher(fp, testTopic)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := pub.PublishRecommendation(ctx, testRecord()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if fp.callCount() != 0 {
			t.Error("canceled publish must not reach the broker")
		}
	})

	t.Run("closed publisher", func(t *testing.T) {
		t.Parallel()
		fp := &failingPublisher{}
		pub := NewPublisher(fp, testTopic)
		if err := pub.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if err := pub.Close(); err != nil {
			t.Fatalf("second Close: %v", err)
		}
		if !fp.closed {
			t.Error("underlying publisher not closed")
		}
		if err := pub.PublishRecommendation(context.Background(), testRecord()); !errors.Is(err, ErrPublisherClosed) {
			t.Errorf("expected ErrPublisherClosed, got %v", err)
		}
	})

	t.Run("broker failure", func(t *testing.T) {
		t.Parallel()
		pub := NewPublisher(&failingPublisher{}, testTopic)
		err := pub.PublishRecommendation(context.Background(), testRecord())
		if err == nil || !strings.Contains(err.Error(), "broker unreachable") {
			t.Errorf("expected broker error, got %v", err)
		}
	})
}

func TestPublisherBreakerOpens(t *testing.T) {
	t.Parallel()

	fp := &failingPublisher{}
	pub := NewPublisher(fp, testTopic, WithBreaker(config.BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	}))

	for i := 0; i < 3; i++ {
		_ = pub.PublishRecommendation(context.Background(), testRecord())
	}
	if fp.callCount() != 3 {
		t.Fatalf("expected 3 broker calls before tripping, got %d", fp.callCount())
	}

	err := pub.PublishRecommendation(context.Background(), testRecord())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected open breaker, got %v", err)
	}
	if fp.callCount() != 3 {
		t.Errorf("open breaker must not call the broker, got %d calls", fp.callCount())
	}
}

func TestDecodeRecommendationGeneratedRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  *message.Message
	}{
		{"garbage payload", message.NewMessage("m1", []byte("not json"))},
		{"missing record", message.NewMessage("m2", []byte(`{"event_id":"m2","type":"recommendation.generated"}`))},
		{"wrong type", func() *message.Message {
			m := message.NewMessage("m3", []byte(`{}`))
			m.Metadata.Set(MetadataEventType, "trip.updated")
			return m
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeRecommendationGenerated(tt.msg); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestConsumerHandlesEvents(t *testing.T) {
	t.Parallel()

	ch := NewGoChannel(watermill.NopLogger{})
	received := make(chan *RecommendationGenerated, 1)
	requestIDs := make(chan string, 1)
	consumer := NewConsumer(ch, testTopic, func(ctx context.Context, e *RecommendationGenerated) error {
		select {
		case received <- e:
			requestIDs <- logging.RequestIDFromContext(ctx)
		default:
		}
		return nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Serve(ctx) }()

	pub := NewPublisher(ch, testTopic)
	// GoChannel drops messages published before the subscription exists.
	deadline := time.After(5 * time.Second)
	var event *RecommendationGenerated
	for event == nil {
		if err := pub.PublishRecommendation(logging.ContextWithRequestID(context.Background(), "req-7"), testRecord()); err != nil {
			t.Fatalf("PublishRecommendation: %v", err)
		}
		select {
		case event = <-received:
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("consumer never received an event")
		}
	}
	if event.Record.ID != "rec-1" {
		t.Errorf("unexpected record %s", event.Record.ID)
	}
	if id := <-requestIDs; id != "req-7" {
		t.Errorf("handler context request id = %q, want req-7", id)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
	if consumer.String() != "event-consumer:"+testTopic {
		t.Errorf("String() = %q", consumer.String())
	}
}

func TestLogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := LogHandler(zerolog.New(&buf))
	ctx := logging.ContextWithRequestID(context.Background(), "req-9")
	if err := handler(ctx, NewRecommendationGenerated(testRecord(), testNow)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	for _, want := range []string{`"record_id":"rec-1"`, `"city":"Cancún"`, `"items":1`, `"request_id":"req-9"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output missing %s: %s", want, buf.String())
		}
	}
}

func TestZerologAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.TraceLevel))
	child := adapter.With(watermill.LogFields{"topic": testTopic})

	child.Info("subscribed", watermill.LogFields{"consumers": 1})
	child.Error("publish failed", errors.New("boom"), nil)
	child.Trace("message sent", nil)

	out := buf.String()
	for _, want := range []string{`"topic":"recommendations.generated"`, `"consumers":1`, `"error":"boom"`, `"level":"trace"`} {
		if !strings.Contains(out, want) {
			t.Errorf("adapter output missing %s: %s", want, out)
		}
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	pub, sub, err := Open(&config.EventsConfig{Backend: config.EventsBackendNone}, zerolog.Nop())
	if err != nil || pub != nil || sub != nil {
		t.Errorf("none backend: pub=%v sub=%v err=%v", pub, sub, err)
	}

	pub, sub, err = Open(&config.EventsConfig{Backend: config.EventsBackendMemory, Topic: testTopic}, zerolog.Nop())
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if pub == nil || sub == nil {
		t.Fatal("memory backend must return publisher and subscriber")
	}
	_ = pub.Close()

	if _, _, err := Open(&config.EventsConfig{Backend: "kafka"}, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown backend")
	}
}

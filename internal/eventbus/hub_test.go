package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := h.Subscribe(ctx, 1)
	b := h.Subscribe(ctx, 1)
	h.Publish(Event{Type: TypeTuningUpdated, Data: map[string]any{"long_session_minutes": 120}})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case evt := <-ch:
			if evt.Type != TypeTuningUpdated || evt.Timestamp == 0 {
				t.Fatalf("evt=%+v", evt)
			}
		case <-time.After(time.Second):
			t.Fatalf("event not delivered")
		}
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Subscribe(ctx, 1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			h.Publish(Event{Type: TypeTuningUpdated})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on full subscriber")
	}
	if len(ch) != 1 {
		t.Fatalf("buffered=%d, want 1", len(ch))
	}
}

func TestSubscribeClosesOnCancel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := h.Subscribe(ctx, 0)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed")
	}
	if n := h.Subscribers(); n != 0 {
		t.Fatalf("subscribers=%d", n)
	}

	var nilHub *Hub
	nilHub.Publish(Event{Type: TypeTuningUpdated})
}

package bus

import (
	"testing"
	"time"
)

func TestEventsDeliverInPublishOrder(t *testing.T) {
	b := NewEventBus()
	b.PublishPairingCode("2@AbCdEf")
	b.PublishAuthenticated()
	b.PublishReady()
	b.PublishDisconnected("stream error")

	want := []EventKind{EventPairingCode, EventAuthenticated, EventReady, EventDisconnected}
	for i, kind := range want {
		ev := <-b.Events()
		if ev.Kind != kind {
			t.Fatalf("event %d = %s, want %s", i, ev.Kind, kind)
		}
	}
}

func TestEventFieldsPerKind(t *testing.T) {
	b := NewEventBus()
	b.PublishPairingCode("2@AbCdEf")
	b.PublishAuthFailure("logged out")

	ev := <-b.Events()
	if ev.Code != "2@AbCdEf" {
		t.Errorf("pairing event code = %q", ev.Code)
	}
	ev = <-b.Events()
	if ev.Reason != "logged out" {
		t.Errorf("auth failure reason = %q", ev.Reason)
	}
}

func TestPublishMessageStampsMissingTime(t *testing.T) {
	b := NewEventBus()
	b.PublishMessage(&IncomingMessage{GroupID: "g1@g.us", Body: "hola"})
	ev := <-b.Events()
	if ev.Kind != EventMessage || ev.Message == nil {
		t.Fatalf("expected message event, got %+v", ev)
	}
	if ev.Message.SentAt.IsZero() {
		t.Errorf("SentAt should default to publish time")
	}

	sent := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.PublishMessage(&IncomingMessage{GroupID: "g1@g.us", Body: "hola", SentAt: sent})
	ev = <-b.Events()
	if !ev.Message.SentAt.Equal(sent) {
		t.Errorf("explicit SentAt must be kept, got %v", ev.Message.SentAt)
	}
}

func TestSize(t *testing.T) {
	b := NewEventBus()
	if b.Size() != 0 {
		t.Fatalf("fresh bus size = %d", b.Size())
	}
	b.PublishReady()
	b.PublishReady()
	if b.Size() != 2 {
		t.Errorf("Size = %d, want 2", b.Size())
	}
	<-b.Events()
	if b.Size() != 1 {
		t.Errorf("Size after consume = %d, want 1", b.Size())
	}
}

package events

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, event)
		return nil
	})
	dispatcher.Subscribe(EventTicketEscalated, func(_ context.Context, event Event) error {
		t.Fatalf("handler for unrelated type invoked: %+v", event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "evt-1", Type: EventTicketCreated, TicketID: "ticket-1"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(seen) != 1 || seen[0].ID != "evt-1" {
		t.Fatalf("subscriber not invoked: %+v", seen)
	}
}

func TestInMemoryDispatcherHandlerErrorsDoNotPropagate(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	dispatcher.Subscribe(EventMessageAdded, func(context.Context, Event) error {
		return errors.New("delivery failed")
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventMessageAdded}); err != nil {
		t.Fatalf("handler errors must not surface: %v", err)
	}
}

func TestInMemoryDispatcherUnknownTypeIsNoop(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventType("unknown")}); err != nil {
		t.Fatalf("publish without subscribers: %v", err)
	}
}

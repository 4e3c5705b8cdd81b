package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	d.Subscribe(EventComplaintCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e.ComplaintID)
		return nil
	})
	d.Subscribe(EventComplaintClosed, func(_ context.Context, e Event) error {
		t.Fatalf("unexpected delivery for %s", e.Type)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventComplaintCreated, ComplaintID: "complaint-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"complaint-1"}, seen)
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := 0
	d.Subscribe(EventComplaintAssigned, func(context.Context, Event) error {
		delivered++
		return errors.New("boom")
	})
	d.Subscribe(EventComplaintAssigned, func(context.Context, Event) error {
		delivered++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventComplaintAssigned})
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
}

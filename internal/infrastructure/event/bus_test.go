package event

import (
	"context"
	"errors"
	"testing"

	"github.com/recoverly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	fail     error
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.received = append(h.received, event)
	return h.fail
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func testEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New(), uuid.New())
	return &e
}

func TestInMemoryEventBus(t *testing.T) {
	t.Run("delivers to matching handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{types: []string{"InvoiceStatusChanged"}}
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(context.Background(), testEvent("InvoiceStatusChanged")))
		assert.Len(t, h.received, 1)
	})

	t.Run("skips non-matching handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{types: []string{"InvoiceCreated"}}
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(context.Background(), testEvent("InvoiceStatusChanged")))
		assert.Empty(t, h.received)
	})

	t.Run("handler with no types receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{}
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(context.Background(),
			testEvent("InvoiceCreated"), testEvent("InvoiceStatusChanged")))
		assert.Len(t, h.received, 2)
	})

	t.Run("failing handler does not block others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{"InvoiceCreated"}, fail: errors.New("boom")}
		ok := &recordingHandler{types: []string{"InvoiceCreated"}}
		bus.Subscribe(failing)
		bus.Subscribe(ok)

		require.NoError(t, bus.Publish(context.Background(), testEvent("InvoiceCreated")))
		assert.Len(t, ok.received, 1)
	})
}

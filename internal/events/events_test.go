package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	require.Equal(t, 2, h.Subscribers())

	h.Emit("run-1", PostingCreated, map[string]string{"listing_id": "42"})

	for _, ch := range []chan string{a, b} {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
		assert.Equal(t, PostingCreated, e.Type)
		assert.Equal(t, "run-1", e.RunID)
		assert.JSONEq(t, `{"listing_id":"42"}`, string(e.Data))
	}

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	assert.Equal(t, 1, h.Subscribers())
}

func TestNilHubIsNoop(t *testing.T) {
	var h *Hub
	h.Emit("x", RunStarted, nil)
	h.Publish("x")
}

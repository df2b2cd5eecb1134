package wsfeed

import (
	"encoding/json"
	"testing"

	"github.com/AbdullaE100/medico-chat/internal/realtime"
)

func newTestClient(subs ...*subscription) *Client {
	c := &Client{subs: make(map[int]*subscription)}
	for i, s := range subs {
		s.client = c
		s.id = i + 1
		c.subs[s.id] = s
	}
	return c
}

func TestDispatchScopedInsertUsesEchoedFilter(t *testing.T) {
	var gotA, gotB int
	a := &subscription{
		table:   "messages",
		filter:  realtime.Eq("chat_id", "abc"),
		handler: func(json.RawMessage) { gotA++ },
	}
	b := &subscription{
		table:   "messages",
		filter:  realtime.Eq("chat_id", "def"),
		handler: func(json.RawMessage) { gotB++ },
	}
	c := newTestClient(a, b)

	c.dispatch(&Event{
		Type:    EventTypeInsert,
		Table:   "messages",
		Filter:  "chat_id=eq.abc",
		Payload: json.RawMessage(`{"chat_id":"abc","body":"x"}`),
	})

	if gotA != 1 || gotB != 0 {
		t.Errorf("scoped delivery = (%d, %d), want (1, 0)", gotA, gotB)
	}
}

func TestDispatchFallsBackToPayloadMatching(t *testing.T) {
	var got int
	sub := &subscription{
		table:   "messages",
		filter:  realtime.Eq("chat_id", "abc"),
		handler: func(json.RawMessage) { got++ },
	}
	c := newTestClient(sub)

	// Unscoped event: the payload decides.
	c.dispatch(&Event{
		Type:    EventTypeInsert,
		Table:   "messages",
		Payload: json.RawMessage(`{"chat_id":"abc"}`),
	})
	// Malformed filter string degrades to payload matching too.
	c.dispatch(&Event{
		Type:    EventTypeInsert,
		Table:   "messages",
		Filter:  "chat_id=gt.5",
		Payload: json.RawMessage(`{"chat_id":"abc"}`),
	})
	// Wrong table never delivers.
	c.dispatch(&Event{
		Type:    EventTypeInsert,
		Table:   "profiles",
		Payload: json.RawMessage(`{"chat_id":"abc"}`),
	})

	if got != 2 {
		t.Errorf("delivered %d events, want 2", got)
	}
}

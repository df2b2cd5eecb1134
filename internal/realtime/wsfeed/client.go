package wsfeed

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/AbdullaE100/medico-chat/internal/realtime"
)

const writeWait = 10 * time.Second

// Client is a websocket connection to the backend change feed. It implements
// realtime.Feed. Reconnection is not attempted here; a dropped connection
// simply stops delivering and the chat core recovers with a full reload.
type Client struct {
	conn *websocket.Conn

	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int

	closeOnce sync.Once
}

// Dial connects to the feed endpoint. Auth is a ?token=xxx query param
// (websockets cannot send headers from every client platform).
func Dial(ctx context.Context, url, token string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url+"?token="+token, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn: conn,
		subs: make(map[int]*subscription),
	}
	go c.readPump()
	return c, nil
}

type subscription struct {
	client  *Client
	id      int
	table   string
	filter  realtime.Filter
	handler realtime.Handler
	once    sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.client.mu.Lock()
		delete(s.client.subs, s.id)
		s.client.mu.Unlock()

		// Best effort; local removal above already guarantees no further
		// delivery.
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		err := wsjson.Write(ctx, s.client.conn, Event{
			Type:   EventTypeUnsubscribe,
			Table:  s.table,
			Filter: s.filter.String(),
		})
		if err != nil {
			log.Printf("wsfeed: unsubscribe %s write error: %v", s.table, err)
		}
	})
}

func (c *Client) Subscribe(ctx context.Context, table string, filter realtime.Filter, h realtime.Handler) (realtime.Subscription, error) {
	err := wsjson.Write(ctx, c.conn, Event{
		Type:   EventTypeSubscribe,
		Table:  table,
		Filter: filter.String(),
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.nextID++
	sub := &subscription{
		client:  c,
		id:      c.nextID,
		table:   table,
		filter:  filter,
		handler: h,
	}
	c.subs[sub.id] = sub
	c.mu.Unlock()

	return sub, nil
}

// Close terminates the connection and drops every subscription.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.subs = make(map[int]*subscription)
		c.mu.Unlock()
		c.conn.Close(websocket.StatusNormalClosure, "")
	})
}

// readPump reads feed events and dispatches inserts to matching
// subscriptions. Handlers run on this goroutine, so per-connection event
// order is preserved.
func (c *Client) readPump() {
	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("wsfeed: connection closed")
			} else {
				log.Printf("wsfeed: read error: %v", err)
			}
			return
		}

		c.dispatch(&event)
	}
}

// eventScope parses the filter string the server echoes on scoped insert
// events. Nil means the event is unscoped (or the filter was malformed) and
// payload inspection decides delivery instead.
func eventScope(event *Event) *realtime.Filter {
	if event.Filter == "" {
		return nil
	}
	f, err := realtime.ParseFilter(event.Filter)
	if err != nil {
		log.Printf("wsfeed: event filter %q: %v", event.Filter, err)
		return nil
	}
	return &f
}

func (c *Client) dispatch(event *Event) {
	switch event.Type {
	case EventTypeInsert:
		scope := eventScope(event)

		c.mu.RLock()
		matched := make([]*subscription, 0, len(c.subs))
		for _, sub := range c.subs {
			if sub.table != event.Table {
				continue
			}
			if scope != nil {
				if sub.filter == *scope {
					matched = append(matched, sub)
				}
				continue
			}
			if sub.filter.Matches(event.Payload) {
				matched = append(matched, sub)
			}
		}
		c.mu.RUnlock()

		for _, sub := range matched {
			sub.handler(event.Payload)
		}

	case EventTypeError:
		var p ErrorPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			log.Printf("wsfeed: server error: %s", string(event.Payload))
			return
		}
		log.Printf("wsfeed: server error %s: %s", p.Code, p.Message)
	}
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Handler consumes the raw row payload of one insert event.
type Handler func(payload json.RawMessage)

// Subscription is a live insert feed for one table+filter. Unsubscribe is
// synchronous and idempotent; after it returns no further events are
// delivered.
type Subscription interface {
	Unsubscribe()
}

// Feed delivers server-pushed insert events. Delivery is at-least-once and
// may stop silently on network loss; consumers recover by reloading, the feed
// does not replay missed events.
type Feed interface {
	Subscribe(ctx context.Context, table string, filter Filter, h Handler) (Subscription, error)
}

// Filter is a single column equality constraint on the inserted row.
type Filter struct {
	Column string
	Value  string
}

// Eq builds an equality filter.
func Eq(column, value string) Filter {
	return Filter{Column: column, Value: value}
}

// ParseFilter parses the "column=eq.value" wire form.
func ParseFilter(expr string) (Filter, error) {
	column, rest, ok := strings.Cut(expr, "=")
	if !ok || column == "" {
		return Filter{}, errors.New("realtime: invalid filter expression: " + expr)
	}
	value, ok := strings.CutPrefix(rest, "eq.")
	if !ok {
		return Filter{}, errors.New("realtime: unsupported filter operator in: " + expr)
	}
	return Filter{Column: column, Value: value}, nil
}

// String renders the wire form.
func (f Filter) String() string {
	return f.Column + "=eq." + f.Value
}

// Matches reports whether the inserted row satisfies the filter. A row
// lacking the column, or carrying null, does not match.
func (f Filter) Matches(payload json.RawMessage) bool {
	var row map[string]any
	if err := json.Unmarshal(payload, &row); err != nil {
		return false
	}
	v, ok := row[f.Column]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == f.Value
}

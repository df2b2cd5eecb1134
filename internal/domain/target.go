package domain

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrTargetEmpty     = errors.New("message target has neither chat_id nor group_id")
	ErrTargetAmbiguous = errors.New("message target has both chat_id and group_id")
)

// Target is the destination of a message: exactly one of a direct chat or a
// group. The wire format stores it as two nullable foreign keys; that shape
// exists only at the store boundary (Columns / TargetFromColumns), everywhere
// else the target is this tagged value.
type Target struct {
	kind ConversationKind
	id   uuid.UUID
}

func DirectTarget(chatID uuid.UUID) Target {
	return Target{kind: KindDirect, id: chatID}
}

func GroupTarget(groupID uuid.UUID) Target {
	return Target{kind: KindGroup, id: groupID}
}

func (t Target) Kind() ConversationKind { return t.kind }
func (t Target) ID() uuid.UUID          { return t.id }
func (t Target) IsZero() bool           { return t.kind == "" }

// Columns translates the target to the two-nullable-column wire shape.
func (t Target) Columns() (chatID, groupID *uuid.UUID) {
	id := t.id
	switch t.kind {
	case KindDirect:
		return &id, nil
	case KindGroup:
		return nil, &id
	}
	return nil, nil
}

// TargetFromColumns rebuilds a target from the wire shape, rejecting rows
// where the exactly-one-populated invariant does not hold.
func TargetFromColumns(chatID, groupID *uuid.UUID) (Target, error) {
	switch {
	case chatID != nil && groupID != nil:
		return Target{}, ErrTargetAmbiguous
	case chatID != nil:
		return DirectTarget(*chatID), nil
	case groupID != nil:
		return GroupTarget(*groupID), nil
	}
	return Target{}, ErrTargetEmpty
}

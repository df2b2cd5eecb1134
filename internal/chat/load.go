package chat

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/AbdullaE100/medico-chat/internal/domain"
)

// OpenConversation resolves the id against the direct collection first, then
// the group collection, loads the message history newest-first, and makes the
// conversation current. On any failure, including an id that matches
// neither collection, previously loaded state is left untouched so the
// screen can retry.
func (e *Engine) OpenConversation(ctx context.Context, id uuid.UUID) error {
	userID, err := e.session.UserID()
	if err != nil {
		return e.fail("loading conversation", err)
	}

	conv, err := e.directs.GetByID(ctx, id, userID)
	if err != nil {
		return e.fail("loading conversation", err)
	}
	if conv == nil {
		conv, err = e.groups.GetByID(ctx, id, userID)
		if err != nil {
			return e.fail("loading conversation", err)
		}
	}
	if conv == nil {
		return e.fail("loading conversation", ErrNotFound)
	}

	msgs, err := e.messages.ListByTarget(ctx, conv.Target())
	if err != nil {
		return e.fail("loading messages", err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}

	e.mu.Lock()
	e.current = conv
	e.msgs = msgs
	e.mu.Unlock()
	e.notify()

	// Idempotent; marking already-read rows is a no-op on the server.
	e.flushRead(ctx, conv.Target(), userID)
	return nil
}

// flushRead marks the conversation read remotely and zeroes its local unread
// counter. Failures are logged and swallowed so they never interrupt a load
// or an inbound message.
func (e *Engine) flushRead(ctx context.Context, target domain.Target, userID uuid.UUID) {
	if err := e.messages.MarkRead(ctx, target, userID); err != nil {
		log.Printf("chat: read flush for %s: %v", target.ID(), err)
		return
	}
	e.updateConversation(target.ID(), func(c *domain.Conversation) {
		c.UnreadCount = 0
	})
}

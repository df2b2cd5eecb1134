package chat

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/AbdullaE100/medico-chat/internal/domain"
	"github.com/AbdullaE100/medico-chat/internal/realtime"
)

// Attach cycle states: Idle -> Subscribing -> Active -> (Detach) -> Idle.
type attachState int

const (
	attachIdle attachState = iota
	attachSubscribing
	attachActive
)

// attachCycle holds the live subscriptions for the open conversation. At
// most one chat-scoped and one group-scoped subscription exist at a time.
type attachCycle struct {
	state          attachState
	conversationID uuid.UUID
	localUser      uuid.UUID
	ctx            context.Context
	chatSub        realtime.Subscription
	groupSub       realtime.Subscription
}

// Attach subscribes to message inserts scoped to the given conversation.
// Any previous cycle is torn down first, fully and synchronously, so a
// closed conversation's late events can never leak into this one.
func (e *Engine) Attach(ctx context.Context, conversationID uuid.UUID) error {
	e.Detach()

	conv, ok := e.findConversation(conversationID)
	if !ok {
		return e.fail("attaching", ErrNotFound)
	}
	userID, err := e.session.UserID()
	if err != nil {
		return e.fail("attaching", err)
	}

	e.mu.Lock()
	e.attach = attachCycle{
		state:          attachSubscribing,
		conversationID: conversationID,
		localUser:      userID,
		ctx:            ctx,
	}
	e.mu.Unlock()

	handler := func(payload json.RawMessage) {
		e.handleInsert(conversationID, payload)
	}

	chatSub, err := e.feed.Subscribe(ctx, messagesTable,
		realtime.Eq("chat_id", conversationID.String()), handler)
	if err != nil {
		e.Detach()
		return e.fail("attaching", err)
	}

	var groupSub realtime.Subscription
	if conv.Kind == domain.KindGroup {
		groupSub, err = e.feed.Subscribe(ctx, messagesTable,
			realtime.Eq("group_id", conversationID.String()), handler)
		if err != nil {
			chatSub.Unsubscribe()
			e.Detach()
			return e.fail("attaching", err)
		}
	}

	e.mu.Lock()
	e.attach.state = attachActive
	e.attach.chatSub = chatSub
	e.attach.groupSub = groupSub
	e.mu.Unlock()
	return nil
}

// Detach tears down the current cycle. Idempotent and synchronous: when it
// returns, no handler for the old conversation will run again.
func (e *Engine) Detach() {
	e.mu.Lock()
	cycle := e.attach
	e.attach = attachCycle{}
	e.mu.Unlock()

	if cycle.chatSub != nil {
		cycle.chatSub.Unsubscribe()
	}
	if cycle.groupSub != nil {
		cycle.groupSub.Unsubscribe()
	}
}

// messageRow is the insert-event payload shape of the messages table.
type messageRow struct {
	ID             string             `json:"id"`
	ChatID         *uuid.UUID         `json:"chat_id"`
	GroupID        *uuid.UUID         `json:"group_id"`
	SenderID       uuid.UUID          `json:"sender_id"`
	Kind           domain.MessageKind `json:"kind"`
	Body           string             `json:"body"`
	AttachmentURL  *string            `json:"attachment_url"`
	AttachmentName *string            `json:"attachment_name"`
	AttachmentMime *string            `json:"attachment_mime"`
	Read           bool               `json:"read"`
	CreatedAt      time.Time          `json:"created_at"`
}

// handleInsert folds one pushed insert into state. Events for other
// conversations, own-authored events, and redelivered ids are all discarded;
// a failed sender lookup degrades the label but never drops the message.
func (e *Engine) handleInsert(conversationID uuid.UUID, payload json.RawMessage) {
	var row messageRow
	if err := json.Unmarshal(payload, &row); err != nil {
		log.Printf("chat: malformed insert event: %v", err)
		return
	}
	target, err := domain.TargetFromColumns(row.ChatID, row.GroupID)
	if err != nil {
		log.Printf("chat: insert event %s: %v", row.ID, err)
		return
	}

	e.mu.Lock()
	cycle := e.attach
	if cycle.conversationID != conversationID || target.ID() != conversationID {
		e.mu.Unlock()
		return
	}
	// Own sends are already represented by the reconciled optimistic entry.
	if row.SenderID == cycle.localUser {
		e.mu.Unlock()
		return
	}
	// At-least-once delivery; drop ids we already hold.
	for _, m := range e.msgs {
		if m.ID == row.ID {
			e.mu.Unlock()
			return
		}
	}
	e.mu.Unlock()

	msg := domain.Message{
		ID:        row.ID,
		Target:    target,
		SenderID:  row.SenderID,
		Kind:      row.Kind,
		Body:      row.Body,
		Read:      row.Read,
		CreatedAt: row.CreatedAt,
	}
	if msg.Kind == "" {
		msg.Kind = domain.MessageText
	}
	if row.AttachmentURL != nil {
		msg.Attachment = &domain.Attachment{URL: *row.AttachmentURL}
		if row.AttachmentName != nil {
			msg.Attachment.Filename = *row.AttachmentName
		}
		if row.AttachmentMime != nil {
			msg.Attachment.MimeType = *row.AttachmentMime
		}
	}

	// Sender metadata is not in the push payload; the extra round trip is
	// accepted, and a failed lookup keeps the message with a bare label.
	if profile, err := e.profiles.GetByID(cycle.ctx, row.SenderID); err != nil {
		log.Printf("chat: resolving sender %s: %v", row.SenderID, err)
	} else if profile != nil {
		msg.SenderName = profile.DisplayName()
		if profile.AvatarURL != nil {
			msg.SenderAvatar = *profile.AvatarURL
		}
	}

	e.mu.Lock()
	// The cycle may have been torn down, or a reload may have landed the
	// same row, while the lookup was in flight.
	if e.attach.conversationID != conversationID {
		e.mu.Unlock()
		return
	}
	for _, m := range e.msgs {
		if m.ID == row.ID {
			e.mu.Unlock()
			return
		}
	}
	e.msgs = append([]domain.Message{msg}, e.msgs...)
	e.mu.Unlock()
	e.notify()

	if target.Kind() == domain.KindDirect {
		e.updateConversation(conversationID, func(c *domain.Conversation) {
			c.LastMessage = msg.Preview()
			c.LastMessageAt = msg.CreatedAt
			c.UnreadCount++
		})
	} else {
		// Group unread accounting is not derivable from a single event.
		if err := e.RefreshConversations(cycle.ctx); err != nil {
			log.Printf("chat: refreshing after group insert: %v", err)
		}
	}

	// The conversation is the one currently on screen, so the new message is
	// immediately read.
	e.flushRead(cycle.ctx, target, cycle.localUser)
}

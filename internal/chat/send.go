package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AbdullaE100/medico-chat/internal/domain"
	"github.com/AbdullaE100/medico-chat/pkg/validator"
)

// defaultSendCooldown is how long the reentrancy guard stays held after a
// send completes, to absorb trailing duplicate tap events.
const defaultSendCooldown = 350 * time.Millisecond

// pendingSend owns one optimistic message through its lifecycle: splice the
// placeholder in, submit, then either promote it to the server identity or
// roll it back. Exactly one placeholder exists between splice and
// resolution, and none afterwards.
type pendingSend struct {
	placeholderID string
}

// SendText sends a text message to the open conversation.
func (e *Engine) SendText(ctx context.Context, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	if errs := validator.ValidateTextMessage(body); errs.HasErrors() {
		return e.fail("sending", fmt.Errorf("%w: %v", ErrInvalidDraft, errs))
	}
	return e.send(ctx, draft{kind: domain.MessageText, body: body})
}

// SendAttachment sends an image or file message. The attachment must already
// hold a durable URL; uploading happens before the pipeline is entered.
func (e *Engine) SendAttachment(ctx context.Context, kind domain.MessageKind, att domain.Attachment, caption string) error {
	if errs := validator.ValidateAttachment(att.URL, att.Filename, att.MimeType); errs.HasErrors() {
		return e.fail("sending", fmt.Errorf("%w: %v", ErrInvalidDraft, errs))
	}
	d := draft{kind: kind, body: strings.TrimSpace(caption), attachment: &att}
	return e.send(ctx, d)
}

type draft struct {
	kind       domain.MessageKind
	body       string
	attachment *domain.Attachment
}

// send runs the optimistic pipeline. A call while the guard is held is a
// deliberate no-op: rapid repeated taps must not issue a second write.
func (e *Engine) send(ctx context.Context, d draft) error {
	e.mu.Lock()
	if e.sending || e.sendOp != nil {
		e.mu.Unlock()
		return nil
	}
	if e.current == nil {
		e.mu.Unlock()
		return e.fail("sending", ErrNoOpenConversation)
	}
	target := e.current.Target()
	e.mu.Unlock()

	userID, err := e.session.UserID()
	if err != nil {
		return e.fail("sending", err)
	}
	senderName := e.localSender(ctx, userID)

	placeholder := domain.Message{
		ID:         domain.NewPendingID(),
		Target:     target,
		SenderID:   userID,
		Kind:       d.kind,
		Body:       d.body,
		Attachment: d.attachment,
		Read:       false,
		CreatedAt:  time.Now(),
		SenderName: senderName,
	}
	op := &pendingSend{placeholderID: placeholder.ID}

	// Acquire the guard and splice the placeholder in front so the UI shows
	// the send with zero latency. The timestamp is provisional, which is why
	// the placeholder is always prepended rather than sorted in.
	e.mu.Lock()
	if e.sending || e.sendOp != nil {
		e.mu.Unlock()
		return nil
	}
	e.sending = true
	e.sendOp = op
	e.msgs = append([]domain.Message{placeholder}, e.msgs...)
	e.mu.Unlock()
	e.notify()

	// Guard is released a cooldown after completion, not immediately.
	defer time.AfterFunc(e.sendCooldown(), e.releaseSendGuard)

	row := placeholder
	id, createdAt, err := e.messages.Insert(ctx, &row)
	if err != nil {
		op.rollback(e)
		return e.fail("sending", fmt.Errorf("%w: %v", ErrRemoteWrite, err))
	}

	op.promote(e, target.ID(), id, createdAt)
	return nil
}

// promote replaces the placeholder's id and timestamp with the authoritative
// server values, leaving every other field as optimistically rendered, and
// refreshes the owning conversation's preview in place.
func (op *pendingSend) promote(e *Engine, convID uuid.UUID, serverID string, createdAt time.Time) {
	var confirmed domain.Message

	e.mu.Lock()
	for i := range e.msgs {
		if e.msgs[i].ID == op.placeholderID {
			msg := e.msgs[i]
			msg.ID = serverID
			msg.CreatedAt = createdAt
			e.msgs[i] = msg
			confirmed = msg
			break
		}
	}
	e.mu.Unlock()
	e.notify()

	e.updateConversation(convID, func(c *domain.Conversation) {
		c.LastMessage = confirmed.Preview()
		c.LastMessageAt = createdAt
	})
}

// rollback removes the placeholder entirely. The typed text is not restored;
// that is a screen-level decision.
func (op *pendingSend) rollback(e *Engine) {
	e.mu.Lock()
	kept := e.msgs[:0:0]
	for _, m := range e.msgs {
		if m.ID != op.placeholderID {
			kept = append(kept, m)
		}
	}
	e.msgs = kept
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) sendCooldown() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cooldown
}

func (e *Engine) releaseSendGuard() {
	e.mu.Lock()
	e.sending = false
	e.sendOp = nil
	e.mu.Unlock()
}

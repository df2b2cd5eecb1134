package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AbdullaE100/medico-chat/internal/domain"
)

// Mutators issue one targeted remote write, then mirror it onto the
// in-memory list by element-wise replace. On failure only the error field is
// set; prior state stays untouched.

func (e *Engine) Archive(ctx context.Context, id uuid.UUID) error {
	return e.setArchived(ctx, id, true)
}

func (e *Engine) Unarchive(ctx context.Context, id uuid.UUID) error {
	return e.setArchived(ctx, id, false)
}

func (e *Engine) Mute(ctx context.Context, id uuid.UUID) error {
	return e.setMuted(ctx, id, true)
}

func (e *Engine) Unmute(ctx context.Context, id uuid.UUID) error {
	return e.setMuted(ctx, id, false)
}

func (e *Engine) setArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	conv, ok := e.findConversation(id)
	if !ok {
		return e.fail("archiving", ErrNotFound)
	}

	var err error
	if conv.Kind == domain.KindGroup {
		err = e.groups.SetArchived(ctx, id, archived)
	} else {
		err = e.directs.SetArchived(ctx, id, archived)
	}
	if err != nil {
		return e.fail("archiving", fmt.Errorf("%w: %v", ErrRemoteWrite, err))
	}

	e.updateConversation(id, func(c *domain.Conversation) {
		c.Archived = archived
	})
	return nil
}

func (e *Engine) setMuted(ctx context.Context, id uuid.UUID, muted bool) error {
	conv, ok := e.findConversation(id)
	if !ok {
		return e.fail("muting", ErrNotFound)
	}

	var err error
	if conv.Kind == domain.KindGroup {
		err = e.groups.SetMuted(ctx, id, muted)
	} else {
		err = e.directs.SetMuted(ctx, id, muted)
	}
	if err != nil {
		return e.fail("muting", fmt.Errorf("%w: %v", ErrRemoteWrite, err))
	}

	e.updateConversation(id, func(c *domain.Conversation) {
		c.Muted = muted
	})
	return nil
}

// DeleteConversation removes the conversation remotely, drops it from the
// list, and purges any locally held messages so a stale screen cannot render
// orphaned content.
func (e *Engine) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	conv, ok := e.findConversation(id)
	if !ok {
		return e.fail("deleting conversation", ErrNotFound)
	}

	var err error
	if conv.Kind == domain.KindGroup {
		err = e.groups.Delete(ctx, id)
	} else {
		err = e.directs.Delete(ctx, id)
	}
	if err != nil {
		return e.fail("deleting conversation", fmt.Errorf("%w: %v", ErrRemoteWrite, err))
	}

	e.mu.Lock()
	kept := e.conversations[:0:0]
	for _, c := range e.conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	e.conversations = kept
	if e.current != nil && e.current.ID == id {
		e.current = nil
		e.msgs = nil
	}
	e.mu.Unlock()
	e.notify()
	return nil
}

// ClearChat strips every message from the conversation. The preview is
// emptied but the last-message timestamp is kept, so the conversation does
// not jump around in the list; if the cleared conversation is the open one,
// the active message list empties too.
func (e *Engine) ClearChat(ctx context.Context, id uuid.UUID) error {
	conv, ok := e.findConversation(id)
	if !ok {
		return e.fail("clearing chat", ErrNotFound)
	}

	if err := e.messages.DeleteByTarget(ctx, conv.Target()); err != nil {
		return e.fail("clearing chat", fmt.Errorf("%w: %v", ErrRemoteWrite, err))
	}

	e.updateConversation(id, func(c *domain.Conversation) {
		c.LastMessage = ""
		c.UnreadCount = 0
	})

	e.mu.Lock()
	if e.current != nil && e.current.ID == id {
		e.msgs = []domain.Message{}
	}
	e.mu.Unlock()
	e.notify()
	return nil
}

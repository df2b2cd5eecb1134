package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/AbdullaE100/medico-chat/internal/session"
	"github.com/AbdullaE100/medico-chat/internal/upload"
)

var (
	ErrNotFound           = errors.New("conversation not found")
	ErrRemoteWrite        = errors.New("remote write failed")
	ErrNoOpenConversation = errors.New("no conversation is open")
	ErrInvalidDraft       = errors.New("message cannot be sent")
)

// Normalize maps heterogeneous backend failures to a user-displayable
// message.
func Normalize(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrNotAuthenticated):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrNotFound):
		return "This conversation no longer exists."
	case errors.Is(err, ErrNoOpenConversation):
		return "Open a conversation first."
	case errors.Is(err, ErrInvalidDraft):
		return "That message can't be sent."
	case errors.Is(err, upload.ErrUpload):
		return "Couldn't upload your attachment. Please try again."
	case errors.Is(err, ErrRemoteWrite):
		return "Your message couldn't be delivered. Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please check your connection."
	}
	return "Something went wrong. Please try again."
}

// IsAuthError reports whether the failure means the session is gone and the
// user must sign in again.
func IsAuthError(err error) bool {
	return errors.Is(err, session.ErrNotAuthenticated)
}

// fail records a failure in the shared error field and returns the wrapped
// error. Prior state is never modified here; operations that must undo a
// local mutation (the send pipeline) do so before calling fail.
func (e *Engine) fail(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	log.Printf("chat: %v", wrapped)

	e.mu.Lock()
	e.lastErr = Normalize(err)
	e.mu.Unlock()
	e.notify()
	return wrapped
}

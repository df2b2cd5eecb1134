package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AbdullaE100/medico-chat/internal/domain"
)

// DirectChatRepository accesses two-party conversations. Lookups return
// (nil, nil) when no row matches. userID is the local user; it selects which
// participant slot resolves to the counterpart profile.
type DirectChatRepository interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	SetMuted(ctx context.Context, id uuid.UUID, muted bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GroupRepository accesses named multi-member conversations.
type GroupRepository interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	SetMuted(ctx context.Context, id uuid.UUID, muted bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MessageRepository accesses the shared message table. Both conversation
// kinds store their messages here; the target decides which foreign key is
// populated.
type MessageRepository interface {
	// ListByTarget returns messages newest-first.
	ListByTarget(ctx context.Context, target domain.Target) ([]domain.Message, error)
	// Insert writes a new message and returns the server-assigned id and
	// timestamp.
	Insert(ctx context.Context, msg *domain.Message) (id string, createdAt time.Time, err error)
	DeleteByTarget(ctx context.Context, target domain.Target) error
	// MarkRead flags every inbound message of the conversation as read.
	// Idempotent; marking already-read rows is a no-op.
	MarkRead(ctx context.Context, target domain.Target, userID uuid.UUID) error
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

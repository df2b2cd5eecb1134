package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConversationKind string

const (
	KindDirect ConversationKind = "direct"
	KindGroup  ConversationKind = "group"
)

// Conversation is one entry in the chat list: either a two-party direct chat
// or a named group. Direct chats carry the resolved counterpart profile,
// groups carry a name and member roster.
type Conversation struct {
	ID   uuid.UUID        `json:"id"`
	Kind ConversationKind `json:"kind"`

	// Direct only
	Counterpart *Profile `json:"counterpart,omitempty"`

	// Group only
	Name    string      `json:"name,omitempty"`
	Members []uuid.UUID `json:"members,omitempty"`

	Archived bool `json:"archived"`
	Muted    bool `json:"muted"`

	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
}

// Title returns the display name: the group name, or the counterpart's name
// for direct chats.
func (c *Conversation) Title() string {
	if c.Kind == KindGroup {
		return c.Name
	}
	if c.Counterpart != nil {
		return c.Counterpart.DisplayName()
	}
	return "Unknown"
}

// Target returns the message target addressing this conversation.
func (c *Conversation) Target() Target {
	if c.Kind == KindGroup {
		return GroupTarget(c.ID)
	}
	return DirectTarget(c.ID)
}

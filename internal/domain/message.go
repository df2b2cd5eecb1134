package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageImage MessageKind = "image"
	MessageFile  MessageKind = "file"
)

// Attachment describes an already-uploaded media object. The URL is durable;
// raw bytes never pass through the chat core.
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

// pendingPrefix namespaces client-generated placeholder ids so they can never
// collide with server-assigned uuids.
const pendingPrefix = "pending:"

type Message struct {
	ID         string      `json:"id"`
	Target     Target      `json:"-"`
	SenderID   uuid.UUID   `json:"sender_id"`
	Kind       MessageKind `json:"kind"`
	Body       string      `json:"body"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Read       bool        `json:"read"`
	CreatedAt  time.Time   `json:"created_at"`
	// Joined fields
	SenderName   string `json:"sender_name,omitempty"`
	SenderAvatar string `json:"sender_avatar,omitempty"`
}

// IsPending reports whether the message is an optimistic placeholder that has
// not yet been confirmed by the server.
func (m *Message) IsPending() bool {
	return strings.HasPrefix(m.ID, pendingPrefix)
}

// NewPendingID generates a placeholder message id.
func NewPendingID() string {
	return pendingPrefix + uuid.NewString()
}

// Preview returns the conversation-list snippet for this message.
func (m *Message) Preview() string {
	switch m.Kind {
	case MessageImage:
		return "\U0001F4F7 Photo"
	case MessageFile:
		if m.Attachment != nil && m.Attachment.Filename != "" {
			return "\U0001F4CE " + m.Attachment.Filename
		}
		return "\U0001F4CE File"
	}
	return m.Body
}

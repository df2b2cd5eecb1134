package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AbdullaE100/medico-chat/internal/domain"
	"github.com/AbdullaE100/medico-chat/internal/realtime"
	"github.com/AbdullaE100/medico-chat/internal/repository"
	"github.com/AbdullaE100/medico-chat/internal/session"
)

// messagesTable is the feed table carrying message inserts.
const messagesTable = "messages"

// Engine owns the in-memory chat state: the conversation list, the currently
// open conversation with its message history, and the last error. Every
// mutation goes through one of the documented operations; screens only ever
// read snapshots. Messages are held newest-first.
type Engine struct {
	directs  repository.DirectChatRepository
	groups   repository.GroupRepository
	messages repository.MessageRepository
	profiles repository.ProfileRepository
	feed     realtime.Feed
	session  session.Provider

	cooldown time.Duration
	observer func()

	mu            sync.Mutex
	conversations []domain.Conversation
	current       *domain.Conversation
	msgs          []domain.Message
	lastErr       string

	// Optimistic send guard. Both must be clear before a send may start.
	sending bool
	sendOp  *pendingSend

	// Realtime attach cycle.
	attach attachCycle

	// Lazily resolved display name of the local user, used to annotate
	// placeholders.
	selfName   string
	selfLoaded bool
}

func NewEngine(
	directs repository.DirectChatRepository,
	groups repository.GroupRepository,
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	feed realtime.Feed,
	sess session.Provider,
) *Engine {
	return &Engine{
		directs:  directs,
		groups:   groups,
		messages: messages,
		profiles: profiles,
		feed:     feed,
		session:  sess,
		cooldown: defaultSendCooldown,
	}
}

// SetObserver registers a callback invoked after every state change, so a UI
// layer can re-render. Never called with internal locks held.
func (e *Engine) SetObserver(fn func()) {
	e.mu.Lock()
	e.observer = fn
	e.mu.Unlock()
}

// SetSendCooldown overrides the guard-release delay after a send completes.
func (e *Engine) SetSendCooldown(d time.Duration) {
	e.mu.Lock()
	e.cooldown = d
	e.mu.Unlock()
}

// Conversations returns a snapshot of the conversation list.
func (e *Engine) Conversations() []domain.Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Conversation, len(e.conversations))
	copy(out, e.conversations)
	return out
}

// Messages returns a snapshot of the open conversation's messages,
// newest-first.
func (e *Engine) Messages() []domain.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Message, len(e.msgs))
	copy(out, e.msgs)
	return out
}

// Current returns a copy of the open conversation, or nil.
func (e *Engine) Current() *domain.Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	conv := *e.current
	return &conv
}

// LastError returns the user-displayable message of the most recent failure,
// or "" when none is pending.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ClearError dismisses the pending error message.
func (e *Engine) ClearError() {
	e.mu.Lock()
	e.lastErr = ""
	e.mu.Unlock()
	e.notify()
}

// notify invokes the observer outside the lock.
func (e *Engine) notify() {
	e.mu.Lock()
	fn := e.observer
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// findConversation returns a copy of the listed conversation with the given
// id.
func (e *Engine) findConversation(id uuid.UUID) (domain.Conversation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.conversations {
		if c.ID == id {
			return c, true
		}
	}
	if e.current != nil && e.current.ID == id {
		return *e.current, true
	}
	return domain.Conversation{}, false
}

// updateConversation applies fn to the listed conversation with the given id
// via element-wise replace, and to the current conversation if it matches.
func (e *Engine) updateConversation(id uuid.UUID, fn func(*domain.Conversation)) {
	e.mu.Lock()
	for i := range e.conversations {
		if e.conversations[i].ID == id {
			conv := e.conversations[i]
			fn(&conv)
			e.conversations[i] = conv
			break
		}
	}
	if e.current != nil && e.current.ID == id {
		conv := *e.current
		fn(&conv)
		e.current = &conv
	}
	e.mu.Unlock()
	e.notify()
}

// localSender resolves the display name of the local user for placeholder
// annotation. Failures degrade to an empty name; they never block a send.
func (e *Engine) localSender(ctx context.Context, userID uuid.UUID) string {
	e.mu.Lock()
	if e.selfLoaded {
		name := e.selfName
		e.mu.Unlock()
		return name
	}
	e.mu.Unlock()

	profile, err := e.profiles.GetByID(ctx, userID)
	if err != nil {
		log.Printf("chat: resolving own profile: %v", err)
		return ""
	}
	if profile == nil {
		return ""
	}

	e.mu.Lock()
	e.selfName = profile.DisplayName()
	e.selfLoaded = true
	e.mu.Unlock()
	return profile.DisplayName()
}

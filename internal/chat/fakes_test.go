package chat_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AbdullaE100/medico-chat/internal/domain"
	"github.com/AbdullaE100/medico-chat/internal/realtime"
)

// ---------------------------------------------------------------------------
// Fakes for the collaborator interfaces. Error fields script failures; call
// counters let tests assert how often the backend was hit.
// ---------------------------------------------------------------------------

type fakeSession struct {
	id  uuid.UUID
	err error
}

func (s *fakeSession) UserID() (uuid.UUID, error) {
	return s.id, s.err
}

type fakeDirects struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]domain.Conversation
	list      []domain.Conversation
	listErr   error
	getErr    error
	updateErr error
	listCalls int
	deleted   []uuid.UUID
}

func (f *fakeDirects) GetByID(_ context.Context, id, _ uuid.UUID) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if c, ok := f.byID[id]; ok {
		conv := c
		return &conv, nil
	}
	return nil, nil
}

func (f *fakeDirects) ListForUser(context.Context, uuid.UUID) ([]domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Conversation(nil), f.list...), nil
}

func (f *fakeDirects) SetArchived(_ context.Context, id uuid.UUID, _ bool) error {
	return f.updateErr
}

func (f *fakeDirects) SetMuted(_ context.Context, id uuid.UUID, _ bool) error {
	return f.updateErr
}

func (f *fakeDirects) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeGroups struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]domain.Conversation
	list      []domain.Conversation
	listErr   error
	getErr    error
	updateErr error
	listCalls int
}

func (f *fakeGroups) GetByID(_ context.Context, id, _ uuid.UUID) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if c, ok := f.byID[id]; ok {
		conv := c
		return &conv, nil
	}
	return nil, nil
}

func (f *fakeGroups) ListForUser(context.Context, uuid.UUID) ([]domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Conversation(nil), f.list...), nil
}

func (f *fakeGroups) SetArchived(_ context.Context, _ uuid.UUID, _ bool) error {
	return f.updateErr
}

func (f *fakeGroups) SetMuted(_ context.Context, _ uuid.UUID, _ bool) error {
	return f.updateErr
}

func (f *fakeGroups) Delete(_ context.Context, _ uuid.UUID) error {
	return f.updateErr
}

type fakeMessages struct {
	mu            sync.Mutex
	history       []domain.Message
	listErr       error
	insertErr     error
	insertCalls   int
	insertHook    func() // runs mid-insert so tests can observe in-flight state
	serverID      string
	serverTime    time.Time
	markReadCalls int
	markReadErr   error
	cleared       []domain.Target
}

func (f *fakeMessages) ListByTarget(context.Context, domain.Target) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Message(nil), f.history...), nil
}

func (f *fakeMessages) Insert(_ context.Context, _ *domain.Message) (string, time.Time, error) {
	f.mu.Lock()
	f.insertCalls++
	hook := f.insertHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return "", time.Time{}, f.insertErr
	}
	return f.serverID, f.serverTime, nil
}

func (f *fakeMessages) DeleteByTarget(_ context.Context, target domain.Target) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, target)
	return nil
}

func (f *fakeMessages) MarkRead(_ context.Context, _ domain.Target, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls++
	return f.markReadErr
}

type fakeProfiles struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]domain.Profile
	err     error
	getHook func() // runs mid-lookup so tests can interleave other operations
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	f.mu.Lock()
	hook := f.getHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.byID[id]; ok {
		profile := p
		return &profile, nil
	}
	return nil, nil
}

// fakeFeed delivers events only to live subscriptions whose filter matches,
// like the real transport.
type fakeFeed struct {
	mu           sync.Mutex
	subs         []*fakeSub
	subscribeErr error
}

type fakeSub struct {
	feed    *fakeFeed
	table   string
	filter  realtime.Filter
	handler realtime.Handler
	closed  bool
}

func (f *fakeFeed) Subscribe(_ context.Context, table string, filter realtime.Filter, h realtime.Handler) (realtime.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	sub := &fakeSub{feed: f, table: table, filter: filter, handler: h}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (s *fakeSub) Unsubscribe() {
	s.feed.mu.Lock()
	s.closed = true
	s.feed.mu.Unlock()
}

func (f *fakeFeed) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subs {
		if !s.closed {
			n++
		}
	}
	return n
}

// push synchronously delivers an insert event, respecting filters.
func (f *fakeFeed) push(t *testing.T, table string, row any) {
	t.Helper()
	payload, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	f.mu.Lock()
	live := make([]*fakeSub, 0, len(f.subs))
	for _, s := range f.subs {
		if !s.closed && s.table == table && s.filter.Matches(payload) {
			live = append(live, s)
		}
	}
	f.mu.Unlock()
	for _, s := range live {
		s.handler(payload)
	}
}

package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AbdullaE100/medico-chat/internal/chat"
	"github.com/AbdullaE100/medico-chat/internal/domain"
)

var (
	baseTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	localUser = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	otherUser = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
)

type fixture struct {
	engine   *chat.Engine
	directs  *fakeDirects
	groups   *fakeGroups
	messages *fakeMessages
	profiles *fakeProfiles
	feed     *fakeFeed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		directs: &fakeDirects{byID: make(map[uuid.UUID]domain.Conversation)},
		groups:  &fakeGroups{byID: make(map[uuid.UUID]domain.Conversation)},
		messages: &fakeMessages{
			serverID:   uuid.NewString(),
			serverTime: baseTime.Add(time.Minute),
		},
		profiles: &fakeProfiles{byID: map[uuid.UUID]domain.Profile{
			localUser: {ID: localUser, FirstName: "Dana", LastName: "Reyes"},
			otherUser: {ID: otherUser, FirstName: "Sam", LastName: "Okafor"},
		}},
		feed: &fakeFeed{},
	}
	f.engine = chat.NewEngine(f.directs, f.groups, f.messages, f.profiles, f.feed, &fakeSession{id: localUser})
	return f
}

func directConv(id uuid.UUID, last string, at time.Time, unread int) domain.Conversation {
	return domain.Conversation{
		ID:   id,
		Kind: domain.KindDirect,
		Counterpart: &domain.Profile{
			ID: otherUser, FirstName: "Sam", LastName: "Okafor",
		},
		LastMessage:   last,
		LastMessageAt: at,
		UnreadCount:   unread,
	}
}

func groupConv(id uuid.UUID, name, last string, at time.Time) domain.Conversation {
	return domain.Conversation{
		ID:            id,
		Kind:          domain.KindGroup,
		Name:          name,
		Members:       []uuid.UUID{localUser, otherUser},
		LastMessage:   last,
		LastMessageAt: at,
	}
}

// install registers the conversations with the fakes and loads them.
func (f *fixture) install(t *testing.T, convs ...domain.Conversation) {
	t.Helper()
	for _, c := range convs {
		if c.Kind == domain.KindGroup {
			f.groups.byID[c.ID] = c
			f.groups.list = append(f.groups.list, c)
		} else {
			f.directs.byID[c.ID] = c
			f.directs.list = append(f.directs.list, c)
		}
	}
	if err := f.engine.RefreshConversations(context.Background()); err != nil {
		t.Fatalf("RefreshConversations: %v", err)
	}
}

func TestRefreshConversationsMergesAndSorts(t *testing.T) {
	f := newFixture(t)

	d1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	d2 := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	g1 := uuid.MustParse("00000000-0000-0000-0000-000000000003")

	f.install(t,
		directConv(d1, "old", baseTime.Add(-time.Hour), 0),
		directConv(d2, "tie", baseTime, 0),
		groupConv(g1, "Cardiology", "tie", baseTime),
	)

	convs := f.engine.Conversations()
	if len(convs) != 3 {
		t.Fatalf("got %d conversations, want 3", len(convs))
	}
	// d2 and g1 share a timestamp; the id tie-break puts d2 first.
	if convs[0].ID != d2 || convs[1].ID != g1 || convs[2].ID != d1 {
		t.Errorf("wrong order: %v, %v, %v", convs[0].ID, convs[1].ID, convs[2].ID)
	}
}

func TestRefreshConversationsFailureKeepsList(t *testing.T) {
	f := newFixture(t)
	d1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	f.install(t, directConv(d1, "hi", baseTime, 0))

	f.groups.listErr = context.DeadlineExceeded
	if err := f.engine.RefreshConversations(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}

	convs := f.engine.Conversations()
	if len(convs) != 1 || convs[0].ID != d1 {
		t.Errorf("partial failure replaced the list: %+v", convs)
	}
	if f.engine.LastError() == "" {
		t.Error("expected a user-facing error to be recorded")
	}
}

func TestOpenConversationResolvesGroupAfterDirectMiss(t *testing.T) {
	f := newFixture(t)
	g1 := uuid.MustParse("00000000-0000-0000-0000-000000000003")
	f.install(t, groupConv(g1, "Cardiology", "", baseTime))

	if err := f.engine.OpenConversation(context.Background(), g1); err != nil {
		t.Fatalf("OpenConversation: %v", err)
	}
	cur := f.engine.Current()
	if cur == nil || cur.Kind != domain.KindGroup || cur.ID != g1 {
		t.Fatalf("wrong current conversation: %+v", cur)
	}
}

func TestOpenConversationNotFoundLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	d1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	f.install(t, directConv(d1, "hi", baseTime, 0))
	if err := f.engine.OpenConversation(context.Background(), d1); err != nil {
		t.Fatalf("OpenConversation: %v", err)
	}

	missing := uuid.MustParse("99999999-0000-0000-0000-000000000099")
	err := f.engine.OpenConversation(context.Background(), missing)
	if err == nil {
		t.Fatal("expected NotFound")
	}

	if cur := f.engine.Current(); cur == nil || cur.ID != d1 {
		t.Errorf("previously loaded conversation was dropped: %+v", cur)
	}
	if f.engine.LastError() == "" {
		t.Error("expected a user-facing error to be recorded")
	}
}

func TestOpenConversationFlushesReadState(t *testing.T) {
	f := newFixture(t)
	d1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	f.install(t, directConv(d1, "hi", baseTime, 2))

	if err := f.engine.OpenConversation(context.Background(), d1); err != nil {
		t.Fatalf("OpenConversation: %v", err)
	}
	if f.messages.markReadCalls != 1 {
		t.Errorf("markReadCalls = %d, want 1", f.messages.markReadCalls)
	}
	if got := f.engine.Conversations()[0].UnreadCount; got != 0 {
		t.Errorf("unread count = %d, want 0 after flush", got)
	}
}

package chat

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/AbdullaE100/medico-chat/internal/domain"
)

// RefreshConversations fetches direct and group conversations, merges them
// into one list sorted by last activity, and replaces the in-memory list
// wholesale. Any query error aborts the whole refresh; partial results are
// never installed.
func (e *Engine) RefreshConversations(ctx context.Context) error {
	userID, err := e.session.UserID()
	if err != nil {
		return e.fail("listing conversations", err)
	}

	var directs, groups []domain.Conversation

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		directs, err = e.directs.ListForUser(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = e.groups.ListForUser(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return e.fail("listing conversations", err)
	}

	merged := make([]domain.Conversation, 0, len(directs)+len(groups))
	merged = append(merged, directs...)
	merged = append(merged, groups...)
	sortConversations(merged)

	e.mu.Lock()
	e.conversations = merged
	e.mu.Unlock()
	e.notify()
	return nil
}

// sortConversations orders by last-message time descending. The id tie-break
// keeps the order stable, it carries no meaning.
func sortConversations(convs []domain.Conversation) {
	sort.Slice(convs, func(i, j int) bool {
		a, b := convs[i], convs[j]
		if !a.LastMessageAt.Equal(b.LastMessageAt) {
			return a.LastMessageAt.After(b.LastMessageAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

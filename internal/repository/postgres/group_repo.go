package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AbdullaE100/medico-chat/internal/domain"
)

type GroupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepo(pool *pgxpool.Pool) *GroupRepo {
	return &GroupRepo{pool: pool}
}

const groupColumns = `
	g.id, g.name, g.archived, g.muted,
	COALESCE(lm.kind, 'text'), COALESCE(lm.body, ''), lm.attachment_name,
	COALESCE(lm.created_at, g.created_at),
	(SELECT COUNT(*) FROM messages
		WHERE group_id = g.id AND sender_id <> $1 AND read = false),
	ARRAY(SELECT user_id FROM group_members WHERE group_id = g.id)`

const groupJoins = `
	FROM group_chats g
	LEFT JOIN LATERAL (
		SELECT kind, body, attachment_name, created_at
		FROM messages WHERE group_id = g.id
		ORDER BY created_at DESC LIMIT 1
	) lm ON true`

func (r *GroupRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT` + groupColumns + groupJoins + `
		WHERE g.id = $2
			AND EXISTS (SELECT 1 FROM group_members WHERE group_id = g.id AND user_id = $1)`

	conv, err := scanGroup(r.pool.QueryRow(ctx, query, userID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return conv, err
}

func (r *GroupRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	query := `SELECT` + groupColumns + groupJoins + `
		WHERE EXISTS (SELECT 1 FROM group_members WHERE group_id = g.id AND user_id = $1)
		ORDER BY COALESCE(lm.created_at, g.created_at) DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		conv, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}
	return convs, rows.Err()
}

func (r *GroupRepo) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE group_chats SET archived = $1 WHERE id = $2`, archived, id)
	return err
}

func (r *GroupRepo) SetMuted(ctx context.Context, id uuid.UUID, muted bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE group_chats SET muted = $1 WHERE id = $2`, muted, id)
	return err
}

func (r *GroupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM group_chats WHERE id = $1`, id)
	return err
}

func scanGroup(row pgx.Row) (*domain.Conversation, error) {
	var (
		conv           domain.Conversation
		lastKind       domain.MessageKind
		lastBody       string
		lastAttachName *string
	)
	err := row.Scan(
		&conv.ID, &conv.Name, &conv.Archived, &conv.Muted,
		&lastKind, &lastBody, &lastAttachName,
		&conv.LastMessageAt, &conv.UnreadCount,
		&conv.Members,
	)
	if err != nil {
		return nil, err
	}
	conv.Kind = domain.KindGroup
	conv.LastMessage = previewOf(lastKind, lastBody, lastAttachName)
	return &conv, nil
}

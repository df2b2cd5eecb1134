package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AbdullaE100/medico-chat/internal/domain"
)

type DirectChatRepo struct {
	pool *pgxpool.Pool
}

func NewDirectChatRepo(pool *pgxpool.Pool) *DirectChatRepo {
	return &DirectChatRepo{pool: pool}
}

const directChatColumns = `
	c.id, c.archived, c.muted,
	p.id, p.first_name, p.last_name, p.specialty, p.avatar_url, p.created_at,
	COALESCE(lm.kind, 'text'), COALESCE(lm.body, ''), lm.attachment_name,
	COALESCE(lm.created_at, c.created_at),
	(SELECT COUNT(*) FROM messages
		WHERE chat_id = c.id AND sender_id <> $1 AND read = false)`

const directChatJoins = `
	FROM direct_chats c
	JOIN profiles p ON p.id = CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END
	LEFT JOIN LATERAL (
		SELECT kind, body, attachment_name, created_at
		FROM messages WHERE chat_id = c.id
		ORDER BY created_at DESC LIMIT 1
	) lm ON true`

func (r *DirectChatRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT` + directChatColumns + directChatJoins + `
		WHERE c.id = $2 AND (c.user1_id = $1 OR c.user2_id = $1)`

	conv, err := scanDirectChat(r.pool.QueryRow(ctx, query, userID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return conv, err
}

func (r *DirectChatRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	query := `SELECT` + directChatColumns + directChatJoins + `
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY COALESCE(lm.created_at, c.created_at) DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		conv, err := scanDirectChat(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}
	return convs, rows.Err()
}

func (r *DirectChatRepo) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE direct_chats SET archived = $1 WHERE id = $2`, archived, id)
	return err
}

func (r *DirectChatRepo) SetMuted(ctx context.Context, id uuid.UUID, muted bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE direct_chats SET muted = $1 WHERE id = $2`, muted, id)
	return err
}

func (r *DirectChatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM direct_chats WHERE id = $1`, id)
	return err
}

func scanDirectChat(row pgx.Row) (*domain.Conversation, error) {
	var (
		conv           domain.Conversation
		counterpart    domain.Profile
		lastKind       domain.MessageKind
		lastBody       string
		lastAttachName *string
	)
	err := row.Scan(
		&conv.ID, &conv.Archived, &conv.Muted,
		&counterpart.ID, &counterpart.FirstName, &counterpart.LastName,
		&counterpart.Specialty, &counterpart.AvatarURL, &counterpart.CreatedAt,
		&lastKind, &lastBody, &lastAttachName,
		&conv.LastMessageAt, &conv.UnreadCount,
	)
	if err != nil {
		return nil, err
	}
	conv.Kind = domain.KindDirect
	conv.Counterpart = &counterpart
	conv.LastMessage = previewOf(lastKind, lastBody, lastAttachName)
	return &conv, nil
}

// previewOf reconstructs the list snippet from the joined last-message
// columns, matching Message.Preview.
func previewOf(kind domain.MessageKind, body string, attachName *string) string {
	m := domain.Message{Kind: kind, Body: body}
	if attachName != nil {
		m.Attachment = &domain.Attachment{Filename: *attachName}
	}
	return m.Preview()
}

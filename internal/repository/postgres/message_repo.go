package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AbdullaE100/medico-chat/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) ListByTarget(ctx context.Context, target domain.Target) ([]domain.Message, error) {
	fk := targetColumn(target)
	query := `
		SELECT m.id, m.chat_id, m.group_id, m.sender_id, m.kind, m.body,
			m.attachment_url, m.attachment_name, m.attachment_mime,
			m.read, m.created_at, p.first_name, p.last_name, p.avatar_url
		FROM messages m
		JOIN profiles p ON m.sender_id = p.id
		WHERE m.` + fk + ` = $1
		ORDER BY m.created_at DESC`

	rows, err := r.pool.Query(ctx, query, target.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) Insert(ctx context.Context, msg *domain.Message) (string, time.Time, error) {
	chatID, groupID := msg.Target.Columns()

	var attURL, attName, attMime *string
	if msg.Attachment != nil {
		attURL = &msg.Attachment.URL
		attName = &msg.Attachment.Filename
		attMime = &msg.Attachment.MimeType
	}

	query := `
		INSERT INTO messages (chat_id, group_id, sender_id, kind, body,
			attachment_url, attachment_name, attachment_mime, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)
		RETURNING id, created_at`

	var (
		id        uuid.UUID
		createdAt time.Time
	)
	err := r.pool.QueryRow(ctx, query,
		chatID, groupID, msg.SenderID, msg.Kind, msg.Body,
		attURL, attName, attMime,
	).Scan(&id, &createdAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return id.String(), createdAt, nil
}

func (r *MessageRepo) DeleteByTarget(ctx context.Context, target domain.Target) error {
	fk := targetColumn(target)
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE `+fk+` = $1`, target.ID())
	return err
}

func (r *MessageRepo) MarkRead(ctx context.Context, target domain.Target, userID uuid.UUID) error {
	// Server-side function; repeat calls on already-read rows are no-ops.
	_, err := r.pool.Exec(ctx, `SELECT mark_read($1, $2, $3)`,
		target.ID(), string(target.Kind()), userID)
	return err
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var (
		msg              domain.Message
		id               uuid.UUID
		chatID, groupID  *uuid.UUID
		attURL, attName  *string
		attMime          *string
		senderFirst      string
		senderLast       string
		senderAvatar     *string
	)
	err := row.Scan(
		&id, &chatID, &groupID, &msg.SenderID, &msg.Kind, &msg.Body,
		&attURL, &attName, &attMime,
		&msg.Read, &msg.CreatedAt, &senderFirst, &senderLast, &senderAvatar,
	)
	if err != nil {
		return nil, err
	}
	msg.ID = id.String()
	msg.Target, err = domain.TargetFromColumns(chatID, groupID)
	if err != nil {
		return nil, err
	}
	if attURL != nil {
		msg.Attachment = &domain.Attachment{URL: *attURL}
		if attName != nil {
			msg.Attachment.Filename = *attName
		}
		if attMime != nil {
			msg.Attachment.MimeType = *attMime
		}
	}
	sender := domain.Profile{FirstName: senderFirst, LastName: senderLast}
	msg.SenderName = sender.DisplayName()
	if senderAvatar != nil {
		msg.SenderAvatar = *senderAvatar
	}
	return &msg, nil
}

func targetColumn(target domain.Target) string {
	if target.Kind() == domain.KindGroup {
		return "group_id"
	}
	return "chat_id"
}

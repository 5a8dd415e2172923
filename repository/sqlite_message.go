package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akinalp/tepki/database"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
)

// sqliteMessageRepo, reactions kolonu JSON metin olarak tutulur, NULL = reaction yok.
type sqliteMessageRepo struct {
	db database.TxQuerier
}

// NewSQLiteMessageRepo, constructor, interface döner.
func NewSQLiteMessageRepo(db database.TxQuerier) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

func (r *sqliteMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT id, room_id, user_id, msg, reactions, created_at FROM messages WHERE id = ?`

	msg := &models.Message{}
	var reactions sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.RoomID, &msg.UserID, &msg.Msg, &reactions, &msg.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	if reactions.Valid && reactions.String != "" {
		if err := json.Unmarshal([]byte(reactions.String), &msg.Reactions); err != nil {
			return nil, fmt.Errorf("failed to decode reactions of message %s: %w", id, err)
		}
		if len(msg.Reactions) == 0 {
			msg.Reactions = nil
		}
	}

	return msg, nil
}

// SetReactions, sadece reactions kolonunu yazar. Boş map NULL olarak saklanır.
func (r *sqliteMessageRepo) SetReactions(ctx context.Context, messageID string, reactions models.Reactions) error {
	if len(reactions) == 0 {
		return r.UnsetReactions(ctx, messageID)
	}

	data, err := json.Marshal(reactions)
	if err != nil {
		return fmt.Errorf("failed to encode reactions: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `UPDATE messages SET reactions = ? WHERE id = ?`, string(data), messageID)
	if err != nil {
		return fmt.Errorf("failed to set reactions: %w", err)
	}
	return expectAffected(result)
}

func (r *sqliteMessageRepo) UnsetReactions(ctx context.Context, messageID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE messages SET reactions = NULL WHERE id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("failed to unset reactions: %w", err)
	}
	return expectAffected(result)
}

// expectAffected, UPDATE hiçbir satıra dokunmadıysa pkg.ErrNotFound döner.
func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

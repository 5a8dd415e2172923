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

// sqliteRoomRepo, muted / unmuted JSON dizi, last_message JSON obje kolonudur.
// Son mesaj güncellemeleri json_set / json_remove ile sadece $.reactions yolunu değiştirir.
type sqliteRoomRepo struct {
	db database.TxQuerier
}

// NewSQLiteRoomRepo, constructor, interface döner.
func NewSQLiteRoomRepo(db database.TxQuerier) RoomRepository {
	return &sqliteRoomRepo{db: db}
}

func (r *sqliteRoomRepo) GetByID(ctx context.Context, id string) (*models.Room, error) {
	query := `
		SELECT id, type, name, read_only, react_when_read_only, muted, unmuted, last_message
		FROM rooms WHERE id = ?`

	room := &models.Room{}
	var (
		roomType    string
		muted       string
		unmuted     string
		lastMessage sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID, &roomType, &room.Name, &room.ReadOnly, &room.ReactWhenReadOnly,
		&muted, &unmuted, &lastMessage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	room.Type = models.RoomType(roomType)

	if err := decodeStrings(muted, &room.Muted); err != nil {
		return nil, fmt.Errorf("failed to decode muted of room %s: %w", id, err)
	}
	if err := decodeStrings(unmuted, &room.Unmuted); err != nil {
		return nil, fmt.Errorf("failed to decode unmuted of room %s: %w", id, err)
	}

	if lastMessage.Valid && lastMessage.String != "" {
		room.LastMessage = &models.Message{}
		if err := json.Unmarshal([]byte(lastMessage.String), room.LastMessage); err != nil {
			return nil, fmt.Errorf("failed to decode last message of room %s: %w", id, err)
		}
		if len(room.LastMessage.Reactions) == 0 {
			room.LastMessage.Reactions = nil
		}
	}

	return room, nil
}

func (r *sqliteRoomRepo) SetReactionsInLastMessage(ctx context.Context, roomID string, reactions models.Reactions) error {
	if len(reactions) == 0 {
		return r.UnsetReactionsInLastMessage(ctx, roomID)
	}

	data, err := json.Marshal(reactions)
	if err != nil {
		return fmt.Errorf("failed to encode reactions: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE rooms SET last_message = json_set(last_message, '$.reactions', json(?))
		WHERE id = ? AND last_message IS NOT NULL`, string(data), roomID)
	if err != nil {
		return fmt.Errorf("failed to set last message reactions: %w", err)
	}
	return expectAffected(result)
}

func (r *sqliteRoomRepo) UnsetReactionsInLastMessage(ctx context.Context, roomID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE rooms SET last_message = json_remove(last_message, '$.reactions')
		WHERE id = ? AND last_message IS NOT NULL`, roomID)
	if err != nil {
		return fmt.Errorf("failed to unset last message reactions: %w", err)
	}
	return expectAffected(result)
}

func (r *sqliteRoomRepo) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM room_members WHERE room_id = ? AND user_id = ? LIMIT 1`, roomID, userID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check room membership: %w", err)
	}
	return true, nil
}

func decodeStrings(raw string, dst *[]string) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return err
	}
	if len(*dst) == 0 {
		*dst = nil
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/tepki/database"
)

type sqliteCustomEmojiRepo struct {
	db database.TxQuerier
}

// NewSQLiteCustomEmojiRepo, constructor, interface döner.
func NewSQLiteCustomEmojiRepo(db database.TxQuerier) CustomEmojiRepository {
	return &sqliteCustomEmojiRepo{db: db}
}

// CountByNameOrAlias, aliases JSON dizisi json_each ile açılıp aranır.
func (r *sqliteCustomEmojiRepo) CountByNameOrAlias(ctx context.Context, name string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM custom_emojis
		WHERE name = ?
		   OR EXISTS (SELECT 1 FROM json_each(custom_emojis.aliases) WHERE json_each.value = ?)`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, name, name).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count custom emoji: %w", err)
	}
	return count, nil
}

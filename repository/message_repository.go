package repository

import (
	"context"

	"github.com/akinalp/tepki/models"
)

// MessageRepository, canonical mesaj kaydına erişim.
//
// SetReactions ve UnsetReactions sadece reactions alanına dokunan kısmi
// güncellemelerdir; mesajın geri kalanı yeniden yazılmaz.
// UnsetReactions alanı tamamen kaldırır (boş map bırakmaz).
type MessageRepository interface {
	GetByID(ctx context.Context, id string) (*models.Message, error)
	SetReactions(ctx context.Context, messageID string, reactions models.Reactions) error
	UnsetReactions(ctx context.Context, messageID string) error
}

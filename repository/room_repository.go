package repository

import (
	"context"

	"github.com/akinalp/tepki/models"
)

// RoomRepository, oda okuma ve denormalize son mesaj güncellemeleri.
//
// SetReactionsInLastMessage / UnsetReactionsInLastMessage sadece
// lastMessage.reactions alt alanını değiştirir. Odanın son mesajı yoksa
// pkg.ErrNotFound döner.
type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*models.Room, error)
	SetReactionsInLastMessage(ctx context.Context, roomID string, reactions models.Reactions) error
	UnsetReactionsInLastMessage(ctx context.Context, roomID string) error
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
}

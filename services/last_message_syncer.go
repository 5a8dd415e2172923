package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/repository"
)

// LastMessageSyncer, odanın denormalize lastMessage.reactions alanını
// canonical mesajdan yeniden türetir. Idempotent; tekrar çalıştırmak güvenlidir.
type LastMessageSyncer interface {
	Sync(ctx context.Context, roomID string) error
}

type lastMessageSyncer struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
}

// NewLastMessageSyncer, constructor.
func NewLastMessageSyncer(roomRepo repository.RoomRepository, messageRepo repository.MessageRepository) LastMessageSyncer {
	return &lastMessageSyncer{roomRepo: roomRepo, messageRepo: messageRepo}
}

func (s *lastMessageSyncer) Sync(ctx context.Context, roomID string) error {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("sync last message: load room: %w", err)
	}
	if room.LastMessage == nil {
		return nil
	}

	msg, err := s.messageRepo.GetByID(ctx, room.LastMessage.ID)
	if errors.Is(err, pkg.ErrNotFound) {
		// canonical mesaj silinmiş; kopyayı düzeltmek bu birimin işi değil
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync last message: load message: %w", err)
	}

	if reflect.DeepEqual(room.LastMessage.Reactions, msg.Reactions) {
		return nil
	}

	if len(msg.Reactions) == 0 {
		err = s.roomRepo.UnsetReactionsInLastMessage(ctx, roomID)
	} else {
		err = s.roomRepo.SetReactionsInLastMessage(ctx, roomID, msg.Reactions)
	}
	if err != nil {
		return fmt.Errorf("sync last message: write: %w", err)
	}
	return nil
}

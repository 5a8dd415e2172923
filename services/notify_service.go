package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/tepki/pkg/metrics"
	"github.com/akinalp/tepki/repository"
	"github.com/akinalp/tepki/ws"
)

// ChangeNotifier, gerçek zamanlı değişiklik bildirimleri.
// Üç metot da çağıranı bloklamaz ve hata dönmez; teslimat hatası loglanır.
type ChangeNotifier interface {
	NotifyRoomChanged(roomID string)
	NotifyMessageChanged(messageID string)
	SendEphemeral(userID, roomID, text string)
}

type changeNotifier struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	hub         ws.EventPublisher
	runner      *BackgroundRunner
	now         func() time.Time
}

// NewChangeNotifier, constructor.
func NewChangeNotifier(
	roomRepo repository.RoomRepository,
	messageRepo repository.MessageRepository,
	hub ws.EventPublisher,
	runner *BackgroundRunner,
) ChangeNotifier {
	return &changeNotifier{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		hub:         hub,
		runner:      runner,
		now:         time.Now,
	}
}

// NotifyRoomChanged, odayı store'dan tekrar okuyup abonelerine room_changed yayınlar.
func (n *changeNotifier) NotifyRoomChanged(roomID string) {
	n.runner.Go(metrics.KindNotifyRoom, func(ctx context.Context) error {
		room, err := n.roomRepo.GetByID(ctx, roomID)
		if err != nil {
			return fmt.Errorf("reload room %s: %w", roomID, err)
		}
		n.hub.BroadcastToRoom(roomID, ws.Event{Op: ws.OpRoomChanged, Data: room})
		return nil
	})
}

// NotifyMessageChanged, mesajı tekrar okuyup odasının abonelerine message_changed yayınlar.
func (n *changeNotifier) NotifyMessageChanged(messageID string) {
	n.runner.Go(metrics.KindNotifyMsg, func(ctx context.Context) error {
		msg, err := n.messageRepo.GetByID(ctx, messageID)
		if err != nil {
			return fmt.Errorf("reload message %s: %w", messageID, err)
		}
		n.hub.BroadcastToRoom(msg.RoomID, ws.Event{Op: ws.OpMessageChanged, Data: msg})
		return nil
	})
}

// SendEphemeral, sadece userID'nin bağlantılarına kalıcı olmayan bir mesaj gönderir.
func (n *changeNotifier) SendEphemeral(userID, roomID, text string) {
	n.runner.Go(metrics.KindEphemeral, func(context.Context) error {
		n.hub.BroadcastToUser(userID, ws.Event{
			Op: ws.OpEphemeralMessage,
			Data: ws.EphemeralData{
				ID:     uuid.NewString(),
				RoomID: roomID,
				Msg:    text,
				TS:     n.now().UnixMilli(),
			},
		})
		return nil
	})
}

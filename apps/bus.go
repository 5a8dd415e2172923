// Package apps, kurulu uygulamalara (plugin) domain event'lerini iletir.
//
// Engine event'i fire-and-forget yayınlar; uygulamaların dinleyip
// dinlemediğini bilmez ve sonucunu beklemez.
// NATS_URL tanımlıysa NATSBus, değilse in-process LocalBus kullanılır.
package apps

import (
	"context"

	"github.com/akinalp/tepki/models"
)

// Event türleri.
const (
	// EventPostMessageReacted, bir mesaja reaction eklendiğinde veya
	// kaldırıldığında yayınlanır.
	EventPostMessageReacted = "IPostMessageReacted"
)

// Bus, event yayınlama arayüzü.
type Bus interface {
	Publish(ctx context.Context, kind string, payload any) error
}

// MessageReacted, EventPostMessageReacted payload'ı.
// Message mutasyon sonrası halidir; IsReacted eklemede true, kaldırmada false.
type MessageReacted struct {
	Message   *models.Message `json:"message"`
	User      *models.User    `json:"user"`
	Reaction  string          `json:"reaction"`
	IsReacted bool            `json:"is_reacted"`
}

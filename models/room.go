package models

import "slices"

// RoomType, odanın görünürlük tipidir.
type RoomType string

const (
	RoomTypePublic  RoomType = "c" // herkese açık kanal
	RoomTypePrivate RoomType = "p" // özel grup, üyelik gerekir
	RoomTypeDirect  RoomType = "d" // direkt mesaj, üyelik gerekir
)

// Room, bir sohbet odasını ve moderasyon bayraklarını temsil eder.
//
// Muted / Unmuted username listeleridir. Unmuted, read-only odada
// manuel olarak yazma hakkı verilen kullanıcıları taşır.
// LastMessage, oda listesinin hızlı render'ı için son mesajın
// denormalize kopyasıdır, canonical mesajla gevşek senkron tutulur.
type Room struct {
	ID                string   `json:"id" bson:"_id"`
	Type              RoomType `json:"type" bson:"t"`
	Name              string   `json:"name" bson:"name"`
	ReadOnly          bool     `json:"read_only" bson:"ro"`
	ReactWhenReadOnly bool     `json:"react_when_read_only" bson:"reactWhenReadOnly"`
	Muted             []string `json:"muted,omitempty" bson:"muted,omitempty"`
	Unmuted           []string `json:"unmuted,omitempty" bson:"unmuted,omitempty"`
	LastMessage       *Message `json:"last_message,omitempty" bson:"lastMessage,omitempty"`
}

// IsMuted, username odada susturulmuş mu?
func (r *Room) IsMuted(username string) bool {
	return slices.Contains(r.Muted, username)
}

// IsUnmuted, username read-only odada manuel olarak açılmış mı?
func (r *Room) IsUnmuted(username string) bool {
	return slices.Contains(r.Unmuted, username)
}

// IsLastMessage, verilen mesaj odanın denormalize son mesajı mı?
func (r *Room) IsLastMessage(messageID string) bool {
	return r.LastMessage != nil && r.LastMessage.ID == messageID
}

// RequiresMembership, odaya erişim için üyelik gerekiyor mu?
func (r *Room) RequiresMembership() bool {
	return r.Type != RoomTypePublic
}

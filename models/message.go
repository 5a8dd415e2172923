package models

import (
	"slices"
	"time"
)

// Message, bir chat mesajını temsil eder.
//
// Reactions opsiyoneldir: hiç reaction yoksa alan tamamen yoktur (nil),
// boş map olarak saklanmaz. Hem SQLite (JSON kolon) hem Mongo (bson) aynı
// struct'ı kullanır.
type Message struct {
	ID        string    `json:"id" bson:"_id"`
	RoomID    string    `json:"room_id" bson:"rid"`
	UserID    string    `json:"user_id" bson:"u_id"`
	Msg       string    `json:"msg" bson:"msg"`
	Reactions Reactions `json:"reactions,omitempty" bson:"reactions,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"ts"`
}

// HasReacted, username'in verilen reaction anahtarında olup olmadığını döner.
func (m *Message) HasReacted(key, username string) bool {
	if m.Reactions == nil {
		return false
	}
	reaction, ok := m.Reactions[key]
	if !ok || reaction == nil {
		return false
	}
	return slices.Contains(reaction.Usernames, username)
}

// AddReaction, username'i reaction listesinin sonuna ekler.
// Map ve anahtar yoksa oluşturulur. Tekrar kontrolü yapılmaz;
// karar HasReacted ile aynı snapshot üzerinde çağıran tarafta verilir.
func (m *Message) AddReaction(key, username string) {
	if m.Reactions == nil {
		m.Reactions = make(Reactions)
	}
	reaction, ok := m.Reactions[key]
	if !ok || reaction == nil {
		reaction = &Reaction{Usernames: []string{}}
		m.Reactions[key] = reaction
	}
	reaction.Usernames = append(reaction.Usernames, username)
}

// RemoveReaction, username'in ilk eşleşmesini listeden çıkarır.
// Liste boşalırsa anahtar, map boşalırsa Reactions alanı tamamen silinir (nil).
func (m *Message) RemoveReaction(key, username string) {
	if m.Reactions == nil {
		return
	}
	reaction, ok := m.Reactions[key]
	if !ok || reaction == nil {
		return
	}

	if idx := slices.Index(reaction.Usernames, username); idx >= 0 {
		reaction.Usernames = slices.Delete(reaction.Usernames, idx, idx+1)
	}
	if len(reaction.Usernames) == 0 {
		delete(m.Reactions, key)
	}
	if len(m.Reactions) == 0 {
		m.Reactions = nil
	}
}

// Clone, mesajın derin kopyasını döner (removal event'indeki eski snapshot için).
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := *m
	out.Reactions = m.Reactions.Clone()
	return &out
}

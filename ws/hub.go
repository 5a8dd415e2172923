package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/akinalp/tepki/pkg/logger"
)

// EventPublisher, service katmanının event yayınlamak için kullandığı interface.
type EventPublisher interface {
	BroadcastToAll(event Event)
	BroadcastToRoom(roomID string, event Event)
	BroadcastToUser(userID string, event Event)
	GetOnlineUserIDs() []string
}

// SubscribeAuthorizer, kullanıcının odayı dinleyip dinleyemeyeceğine karar verir.
type SubscribeAuthorizer func(ctx context.Context, userID, roomID string) (bool, error)

// Hub, bağlantıları kullanıcı ve oda bazında tutar.
//
// clients: userID → bağlantı seti (bir kullanıcının birden fazla sekmesi olabilir)
// rooms:   roomID → abone bağlantı seti
//
// Go'da set tipi yoktur; map[*Client]bool set olarak kullanılır. Pointer key
// olarak geçerlidir çünkü pointer'lar == ile karşılaştırılabilir.
//
// Eşzamanlılık: broadcast'ler çok sık, bağlan/kop olayları seyrektir. Bu yüzden
// sync.RWMutex kullanılır: RLock ile birden fazla broadcast aynı anda okuyabilir,
// Lock (yazma) ise tüm okuyucuların çıkmasını bekler ve tek başına çalışır.
// Bir client'ın send kanalı SADECE h.mu (yazma) tutulurken kapatılır; kanala
// yazan her yol da h.mu (okuma) tutar. Kapalı bir kanala yazmak panic'tir.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool
	rooms   map[string]map[*Client]bool

	unregister chan *Client
	quit       chan struct{}
	quitOnce   sync.Once
	closed     bool // h.mu ile korunur

	seq atomic.Int64

	authorizeSubscribe SubscribeAuthorizer
	log                zerolog.Logger
}

// NewHub, boş bir Hub oluşturur. Run ayrı bir goroutine'de başlatılmalıdır.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		log:        logger.Component("ws"),
	}
}

// SetSubscribeAuthorizer, oda aboneliği kontrolünü bağlar. nil ise her abonelik kabul edilir.
func (h *Hub) SetSubscribeAuthorizer(fn SubscribeAuthorizer) {
	h.authorizeSubscribe = fn
}

// Run, unregister döngüsü. Shutdown çağrılınca döner.
// Kayıt registerClient ile senkron yapılır.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.quit:
			return
		}
	}
}

func (h *Hub) registerClient(c *Client) bool {
	return h.addClient(c)
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

func (h *Hub) addClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.log.Debug().Str("user_id", client.userID).
		Int("connections", len(h.clients[client.userID])).Msg("client connected")
	return true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}

	delete(clients, client)
	for roomID := range client.rooms {
		h.leaveLocked(client, roomID)
	}
	close(client.send)

	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	h.log.Debug().Str("user_id", client.userID).Int("remaining", len(clients)).Msg("client disconnected")
}

// subscribe, client'ı odanın abone setine ekler.
//
// Yetki kontrolü h.mu dışında yapılır; o sırada client düşürülmüş
// (send kanalı kapanmış) ya da hub kapanmış olabilir. Böyle bir client
// rooms'a geri eklenirse sonraki broadcast kapalı kanala yazar, bu yüzden
// kayıt kontrolü kilit altında tekrar yapılır. Eklenmediyse false döner.
func (h *Hub) subscribe(client *Client, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || !h.clients[client.userID][client] {
		return false
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
	return true
}

func (h *Hub) unsubscribe(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(client, roomID)
}

// leaveLocked, h.mu tutulurken çağrılır.
func (h *Hub) leaveLocked(client *Client, roomID string) {
	delete(client.rooms, roomID)
	if subs, ok := h.rooms[roomID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// encode, event'e sıradaki seq'i verip JSON'a çevirir.
func (h *Hub) encode(event Event) ([]byte, bool) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("op", event.Op).Msg("failed to marshal event")
		return nil, false
	}
	return data, true
}

// deliver, buffer'ı dolu client'ı bloklamadan düşürür. h.mu (okuma) tutulurken çağrılır.
//
// "select { case ch <- v: ... default: ... }" bloklamayan gönderimdir: kanal
// doluysa default dalı hemen çalışır. Unregister ayrı goroutine'de yapılır;
// burada h.mu okuma kilidi tutulurken removeClient'in yazma kilidini beklemek
// deadlock olurdu.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.log.Warn().Str("user_id", client.userID).Msg("send buffer full, dropping connection")
		go h.unregisterClient(client)
	}
}

// BroadcastToAll, tüm bağlantılara gönderir.
func (h *Hub) BroadcastToAll(event Event) {
	data, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.deliver(client, data)
		}
	}
}

// BroadcastToRoom, sadece odaya abone bağlantılara gönderir.
func (h *Hub) BroadcastToRoom(roomID string, event Event) {
	data, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		h.deliver(client, data)
	}
}

// BroadcastToUser, kullanıcının tüm bağlantılarına gönderir.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	data, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		h.deliver(client, data)
	}
}

// GetOnlineUserIDs, en az bir bağlantısı olan kullanıcılar.
func (h *Hub) GetOnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	return ids
}

// Shutdown, Run döngüsünü durdurur ve tüm bağlantıları kapatır.
func (h *Hub) Shutdown() {
	h.quitOnce.Do(func() {
		close(h.quit)

		h.mu.Lock()
		defer h.mu.Unlock()

		h.closed = true
		for _, clients := range h.clients {
			for client := range clients {
				close(client.send)
			}
		}
		h.clients = make(map[string]map[*Client]bool)
		h.rooms = make(map[string]map[*Client]bool)
		h.log.Info().Msg("hub shut down, all connections closed")
	})
}

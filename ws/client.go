package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait: tek bir yazma için azami süre.
	writeWait = 10 * time.Second

	// pongWait: bu süre içinde heartbeat gelmezse bağlantı kopmuş sayılır (3 × 30sn).
	pongWait = 90 * time.Second

	// maxMessageSize: client'tan kabul edilen en büyük frame (byte).
	maxMessageSize = 4096

	// sendBufferSize: client başına outbound kuyruk; dolarsa client düşürülür.
	sendBufferSize = 256

	// subscribeTimeout: oda yetki kontrolü için azami süre.
	subscribeTimeout = 5 * time.Second
)

// Client, tek bir WebSocket bağlantısı.
// ReadPump ve WritePump ayrı goroutine'lerde çalışır; gorilla/websocket
// aynı anda tek okuyucu ve tek yazıcıya izin verir.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	userID   string
	username string
	send     chan []byte
	rooms    map[string]bool // hub.mu ile korunur

	mu sync.Mutex // conn yazmalarını korur
}

func newClient(hub *Hub, conn *websocket.Conn, userID, username string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		username: username,
		send:     make(chan []byte, sendBufferSize),
		rooms:    make(map[string]bool),
	}
}

// ReadPump, bağlantı kapanana kadar gelen event'leri okur.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Str("user_id", c.userID).Err(err).Msg("unexpected close")
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.hub.log.Debug().Str("user_id", c.userID).Err(err).Msg("invalid message")
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	case OpSubscribe:
		c.handleSubscribe(event)

	case OpUnsubscribe:
		var data RoomData
		if decodeData(event.Data, &data) && data.RoomID != "" {
			c.hub.unsubscribe(c, data.RoomID)
		}
	}
}

func (c *Client) handleSubscribe(event Event) {
	var data RoomData
	if !decodeData(event.Data, &data) || data.RoomID == "" {
		c.sendEvent(Event{Op: OpError, Data: ErrorData{Op: OpSubscribe, Error: "room_id is required"}})
		return
	}

	if authorize := c.hub.authorizeSubscribe; authorize != nil {
		ctx, cancel := context.WithTimeout(context.Background(), subscribeTimeout)
		allowed, err := authorize(ctx, c.userID, data.RoomID)
		cancel()

		if err != nil || !allowed {
			if err != nil {
				c.hub.log.Warn().Str("user_id", c.userID).Str("room_id", data.RoomID).Err(err).Msg("subscribe check failed")
			}
			c.sendEvent(Event{Op: OpError, Data: ErrorData{Op: OpSubscribe, RoomID: data.RoomID, Error: "not allowed"}})
			return
		}
	}

	if !c.hub.subscribe(c, data.RoomID) {
		return
	}
	c.sendEvent(Event{Op: OpSubscribed, Data: data})
}

// decodeData, Event.Data'yı (json'dan map olarak gelen) hedef struct'a çevirir.
func decodeData(src any, dst any) bool {
	raw, err := json.Marshal(src)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// sendEvent, sadece bu bağlantıya event gönderir. Client hub'dan çıkarıldıysa no-op.
func (c *Client) sendEvent(event Event) {
	data, ok := c.hub.encode(event)
	if !ok {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	if c.hub.clients[c.userID][c] {
		c.hub.deliver(c, data)
	}
}

// WritePump, send kuyruğunu bağlantıya yazar. Kuyruk kapanınca close frame gönderip çıkar.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.writeMessage(websocket.CloseMessage, nil)
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

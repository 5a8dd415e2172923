// Package ws, WebSocket bağlantılarını ve gerçek zamanlı event dağıtımını yönetir.
//
// Hub tüm bağlantıları tutar. Her Client bir kullanıcı oturumudur ve
// abone olduğu odaların event'lerini alır. Service katmanı Hub'a doğrudan
// değil EventPublisher interface'i üzerinden erişir.
package ws

// Event, WebSocket üzerinden iletilen zarf.
// Seq her outbound event'te artar; client eksik event'i seq boşluğundan anlar.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server
const (
	OpHeartbeat   = "heartbeat"
	OpSubscribe   = "subscribe"   // bir odanın event'lerini dinlemeye başla
	OpUnsubscribe = "unsubscribe" // odayı bırak
)

// Server → Client
const (
	OpReady            = "ready"
	OpHeartbeatAck     = "heartbeat_ack"
	OpSubscribed       = "subscribed"
	OpError            = "error"
	OpRoomChanged      = "room_changed"      // oda dokümanı değişti (ör. lastMessage.reactions)
	OpMessageChanged   = "message_changed"   // mesaj dokümanı değişti (ör. reactions)
	OpEphemeralMessage = "ephemeral_message" // sadece tek kullanıcıya gösterilen geçici mesaj
)

// ReadyData, bağlantı kurulunca gönderilen ilk event'in payload'ı.
type ReadyData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// RoomData, subscribe / unsubscribe / subscribed payload'ı.
type RoomData struct {
	RoomID string `json:"room_id"`
}

// ErrorData, client isteği reddedildiğinde gönderilir.
type ErrorData struct {
	Op     string `json:"op"`
	RoomID string `json:"room_id,omitempty"`
	Error  string `json:"error"`
}

// EphemeralData, ephemeral_message payload'ı.
type EphemeralData struct {
	ID     string `json:"id"`
	RoomID string `json:"room_id"`
	Msg    string `json:"msg"`
	TS     int64  `json:"ts"`
}

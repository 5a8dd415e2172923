package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/akinalp/tepki/models"
)

// TokenValidator, bağlantı kurulurken JWT doğrulaması.
// services paketine bağımlı olmamak için burada tanımlanır.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// Origin kontrolü CORS katmanına bırakılır.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler, /ws endpoint'i.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
}

// NewHandler, constructor.
func NewHandler(hub *Hub, tokenValidator TokenValidator) *Handler {
	return &Handler{hub: hub, tokenValidator: tokenValidator}
}

// HandleConnection, bağlantıyı yükseltir ve client'ı Hub'a kaydeder.
// Tarayıcılar WS handshake'inde header gönderemediği için token
// ?token=JWT query parametresiyle gelir.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.Warn().Str("user_id", claims.UserID).Err(err).Msg("upgrade failed")
		return
	}

	client := newClient(h.hub, conn, claims.UserID, claims.Username)

	if !h.hub.registerClient(client) {
		conn.Close()
		return
	}
	client.sendEvent(Event{Op: OpReady, Data: ReadyData{UserID: claims.UserID, Username: claims.Username}})

	go client.WritePump()
	client.ReadPump()
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/pkg/i18n"
	"github.com/akinalp/tepki/pkg/logger"
	"github.com/akinalp/tepki/pkg/ratelimit"
	"github.com/akinalp/tepki/services"
)

// ReactionHandler, reaction toggle endpoint'lerini yöneten struct.
//
// Emoji doğrulama, moderasyon ve yazma ReactionService'de.
// Handler'ın kendi işi: rate limit, body parse ve NotAllowed hatalarını
// kullanıcıya ephemeral mesaj olarak göstermek.
type ReactionHandler struct {
	reactionService services.ReactionService
	notifier        services.ChangeNotifier
	limiter         *ratelimit.KeyedLimiter
	log             zerolog.Logger
}

// NewReactionHandler, constructor. limiter nil ise rate limit uygulanmaz.
func NewReactionHandler(
	reactionService services.ReactionService,
	notifier services.ChangeNotifier,
	limiter *ratelimit.KeyedLimiter,
) *ReactionHandler {
	return &ReactionHandler{
		reactionService: reactionService,
		notifier:        notifier,
		limiter:         limiter,
		log:             logger.Component("http"),
	}
}

// setReactionRequest, method çağrısı gövdesi.
// ShouldReact yoksa (null) toggle, varsa istenen son durum.
type setReactionRequest struct {
	Reaction    string `json:"reaction"`
	MessageID   string `json:"message_id"`
	ShouldReact *bool  `json:"should_react"`
}

// toggleRequest, REST alias gövdesi.
type toggleRequest struct {
	Emoji       string `json:"emoji"`
	ShouldReact *bool  `json:"should_react"`
}

// setReactionResponse, başarılı toggle sonucu.
type setReactionResponse struct {
	Outcome models.ReactionOutcome `json:"outcome"`
}

// SetReaction godoc
// POST /api/method/setReaction
//
// Body:
//
//	{ "reaction": ":smile:", "message_id": "m1", "should_react": true }
//
// Susturulmuş kullanıcı, read-only oda veya erişimi olmayan oda gibi
// oda bağlamlı reddedişlerde istek hata dönmez: kullanıcıya ephemeral
// mesaj gönderilir ve yanıt {"success": true, "data": false} olur.
func (h *ReactionHandler) SetReaction(w http.ResponseWriter, r *http.Request) {
	var body setReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.MessageID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "message_id is required")
		return
	}

	h.handle(w, r, body.Reaction, body.MessageID, body.ShouldReact)
}

// Toggle godoc
// POST /api/messages/{messageId}/reactions
//
// SetReaction'ın REST karşılığı; mesaj id'si path'ten gelir.
//
//	{ "emoji": "smile" }
func (h *ReactionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	messageID := r.PathValue("messageId")

	var body toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.handle(w, r, body.Emoji, messageID, body.ShouldReact)
}

func (h *ReactionHandler) handle(w http.ResponseWriter, r *http.Request, reaction, messageID string, shouldReact *bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if h.limiter != nil && !h.limiter.Allow(user.ID) {
		loc := i18n.NewLocalizer(user.Language)
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests, loc.T("reaction.rateLimited"))
		return
	}

	outcome, err := h.reactionService.SetReaction(r.Context(), user.ID, reaction, messageID, shouldReact)
	if err != nil {
		var na *pkg.NotAllowedError
		if errors.As(err, &na) && na.RoomID != "" {
			h.notifier.SendEphemeral(user.ID, na.RoomID, na.Message)
			h.log.Debug().
				Str("user_id", user.ID).
				Str("room_id", na.RoomID).
				Str("reason", na.Reason).
				Msg("reaction rejected")
			pkg.JSON(w, http.StatusOK, false)
			return
		}
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, setReactionResponse{Outcome: outcome})
}

package pkg

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// APIResponse, tüm API yanıtları için standart format.
// Data `any` olduğu için omitempty sadece nil'i atlar, `false` değeri yanıtta kalır.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// JSON, başarılı bir yanıt gönderir.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{Success: true, Data: data})
}

// Error, hata yanıtı gönderir.
// Domain error'ları otomatik olarak uygun HTTP status code'a çevrilir,
// tipli error'ların reason kodu da yanıta eklenir.
func Error(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("component", "http").Msg("internal error")
	}

	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
		Reason:  ReasonOf(err),
	})
}

// ErrorWithMessage, özel mesajlı hata yanıtı gönderir.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIResponse{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn().Err(err).Str("component", "http").Msg("failed to encode response")
	}
}

// mapErrorToStatus, domain error'ları HTTP status code'larına eşler.
// errors.Is() wrap edilmiş error'ları da yakalar.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

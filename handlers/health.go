package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/akinalp/tepki/pkg"
)

// HealthCheck, store'un erişilebilir olup olmadığını kontrol eder.
type HealthCheck func(ctx context.Context) error

// HealthHandler, GET /api/health.
type HealthHandler struct {
	check HealthCheck
}

// NewHealthHandler, constructor. check nil ise her zaman sağlıklı döner.
func NewHealthHandler(check HealthCheck) *HealthHandler {
	return &HealthHandler{check: check}
}

// Health godoc
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.check(ctx); err != nil {
			pkg.ErrorWithMessage(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

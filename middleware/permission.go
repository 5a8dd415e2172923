package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/tepki/handlers"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/services"
)

// PermissionMiddleware, global (oda bağımsız) yetki kontrolü yapar.
// AuthMiddleware'dan SONRA çalışır; context'te doğrulanmış user bulunur.
type PermissionMiddleware struct {
	permissions services.PermissionService
}

// NewPermissionMiddleware, constructor.
func NewPermissionMiddleware(permissions services.PermissionService) *PermissionMiddleware {
	return &PermissionMiddleware{permissions: permissions}
}

// Require, belirli bir yetkiyi gerektiren middleware döner.
//
//	permMw.Require(models.PermAdmin, http.HandlerFunc(adminHandler.SyncLastMessage))
func (m *PermissionMiddleware) Require(perm models.Permission, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := handlers.UserFromContext(r.Context())
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
			return
		}

		allowed, err := m.permissions.HasPermission(r.Context(), user.ID, perm, "")
		if err != nil {
			log.Error().Err(err).Str("component", "http").Str("user_id", user.ID).Msg("permission lookup failed")
			pkg.ErrorWithMessage(w, http.StatusInternalServerError, "failed to resolve permissions")
			return
		}
		if !allowed {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Package main, HTTP route registration.
package main

import (
	"net/http"

	"github.com/akinalp/tepki/middleware"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg/metrics"
)

// initRoutes, middleware chain'i kurar ve endpoint'leri mux'a bağlar.
func initRoutes(mux *http.ServeMux, h *Handlers, svcs *Services, repos *Repositories, m *metrics.Metrics) {
	authMw := middleware.NewAuthMiddleware(svcs.Token, repos.User)
	permMw := middleware.NewPermissionMiddleware(svcs.Permission)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}
	authPerm := func(perm models.Permission, handler http.HandlerFunc) http.Handler {
		return authMw.Require(permMw.Require(perm, handler))
	}

	// Public
	mux.HandleFunc("GET /api/health", h.Health.Health)
	mux.Handle("GET /metrics", m.Handler())

	// Reactions
	mux.Handle("POST /api/method/setReaction", auth(h.Reaction.SetReaction))
	mux.Handle("POST /api/messages/{messageId}/reactions", auth(h.Reaction.Toggle))

	// Admin
	mux.Handle("POST /api/admin/rooms/{roomId}/sync-last-message", authPerm(models.PermAdmin, h.Admin.SyncLastMessage))
	mux.Handle("POST /api/admin/users/{userId}/invalidate-permissions", authPerm(models.PermAdmin, h.Admin.InvalidatePermissions))

	// WebSocket, tarayıcılar upgrade'de header gönderemez, token ?token= ile gelir
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}

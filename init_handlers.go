// Package main, handler katmanı başlatma.
package main

import (
	"github.com/akinalp/tepki/handlers"
	"github.com/akinalp/tepki/pkg/ratelimit"
	"github.com/akinalp/tepki/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Reaction *handlers.ReactionHandler
	Admin    *handlers.AdminHandler
	Health   *handlers.HealthHandler
	WS       *ws.Handler
}

// initHandlers, handler'ları service'ler ve rate limiter ile oluşturur.
func initHandlers(svcs *Services, hub *ws.Hub, health handlers.HealthCheck, limiter *ratelimit.KeyedLimiter) *Handlers {
	return &Handlers{
		Reaction: handlers.NewReactionHandler(svcs.Reaction, svcs.Notifier, limiter),
		Admin:    handlers.NewAdminHandler(svcs.Syncer, svcs.Permission),
		Health:   handlers.NewHealthHandler(health),
		WS:       ws.NewHandler(hub, svcs.Token),
	}
}

// Package main, service katmanı başlatma.
//
// Sıralama: runner → notifier/syncer → reaction. Hook'lar ve hub callback'leri
// initServices'ten SONRA register edilir (bkz. init_callbacks.go).
package main

import (
	"github.com/akinalp/tepki/apps"
	"github.com/akinalp/tepki/config"
	"github.com/akinalp/tepki/pkg/metrics"
	"github.com/akinalp/tepki/services"
	"github.com/akinalp/tepki/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Runner     *services.BackgroundRunner
	Token      services.TokenService
	Permission services.PermissionService
	Emoji      services.EmojiRegistry
	Hooks      *services.ReactionHooks
	Notifier   services.ChangeNotifier
	Syncer     services.LastMessageSyncer
	Reaction   services.ReactionService
}

// initServices, service'leri repository'ler, hub ve bus ile oluşturur.
func initServices(cfg *config.Config, repos *Repositories, hub ws.EventPublisher, bus apps.Bus, m *metrics.Metrics) *Services {
	runner := services.NewBackgroundRunner(m, cfg.Server.AsyncTimeout)

	permissions := services.NewPermissionService(repos.Role, repos.Room, cfg.Cache.PermissionTTL)
	emoji := services.NewEmojiService(services.BuiltinEmoji(), repos.CustomEmoji, cfg.Cache.CustomEmojiTTL)
	hooks := services.NewReactionHooks(runner)
	notifier := services.NewChangeNotifier(repos.Room, repos.Message, hub, runner)
	syncer := services.NewLastMessageSyncer(repos.Room, repos.Message)

	reaction := services.NewReactionService(services.ReactionDeps{
		Users:       repos.User,
		Messages:    repos.Message,
		Rooms:       repos.Room,
		Emoji:       emoji,
		Permissions: permissions,
		Hooks:       hooks,
		Apps:        bus,
		Notifier:    notifier,
		Syncer:      syncer,
		Runner:      runner,
		Metrics:     m,
	})

	return &Services{
		Runner:     runner,
		Token:      services.NewTokenService(cfg.JWT.Secret),
		Permission: permissions,
		Emoji:      emoji,
		Hooks:      hooks,
		Notifier:   notifier,
		Syncer:     syncer,
		Reaction:   reaction,
	}
}

// Package main, Hub ve reaction lifecycle callback wire-up.
//
// Hub ws paketinde yaşar ama oda erişim kararı service katmanındadır.
// Hub'ın service'lere bağımlı olmaması için bağlantı burada kurulur.
package main

import (
	"context"

	"github.com/akinalp/tepki/apps"
	"github.com/akinalp/tepki/pkg/logger"
	"github.com/akinalp/tepki/services"
	"github.com/akinalp/tepki/ws"
)

// registerHubCallbacks, oda aboneliklerini PermissionService'e bağlar.
func registerHubCallbacks(hub *ws.Hub, permissions services.PermissionService) {
	hub.SetSubscribeAuthorizer(permissions.CanAccessRoomByID)
}

// registerReactionHooks, reaction lifecycle'ına audit log hook'larını ekler.
func registerReactionHooks(hooks *services.ReactionHooks) {
	audit := logger.Component("reaction-audit")

	hooks.OnAdded(func(_ context.Context, ev services.ReactionEvent) error {
		audit.Info().
			Str("message_id", ev.Message.ID).
			Str("username", ev.User.Username).
			Str("reaction", ev.Reaction).
			Msg("reaction added")
		return nil
	})
	hooks.OnRemoved(func(_ context.Context, ev services.ReactionEvent) error {
		audit.Info().
			Str("message_id", ev.Message.ID).
			Str("username", ev.User.Username).
			Str("reaction", ev.Reaction).
			Int("remaining_keys", len(ev.Message.Reactions)).
			Msg("reaction removed")
		return nil
	})
}

// registerLocalApps, NATS yokken in-process app dinleyicilerini kaydeder.
func registerLocalApps(bus *apps.LocalBus) {
	appsLog := logger.Component("apps")

	bus.Subscribe(apps.EventPostMessageReacted, func(_ context.Context, payload any) error {
		ev, ok := payload.(*apps.MessageReacted)
		if !ok {
			return nil
		}
		appsLog.Debug().
			Str("message_id", ev.Message.ID).
			Str("reaction", ev.Reaction).
			Bool("is_reacted", ev.IsReacted).
			Msg(apps.EventPostMessageReacted)
		return nil
	})
}

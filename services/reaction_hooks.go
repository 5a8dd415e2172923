package services

import (
	"context"
	"sync"

	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg/metrics"
)

// ReactionEvent, reaction lifecycle callback'lerine verilen payload.
// OldMessage sadece kaldırmada doludur (mutasyon öncesi derin kopya).
type ReactionEvent struct {
	Message     *models.Message
	OldMessage  *models.Message
	User        *models.User
	Reaction    string
	ShouldReact bool
}

// ReactionHook, lifecycle callback imzası.
type ReactionHook func(ctx context.Context, event ReactionEvent) error

// ReactionHooks, afterSetReaction / afterUnsetReaction callback kayıtları.
// Callback'ler BackgroundRunner üzerinden asenkron çalışır.
type ReactionHooks struct {
	mu      sync.RWMutex
	added   []ReactionHook
	removed []ReactionHook
	runner  *BackgroundRunner
}

// NewReactionHooks, constructor.
func NewReactionHooks(runner *BackgroundRunner) *ReactionHooks {
	return &ReactionHooks{runner: runner}
}

// OnAdded, reaction eklendiğinde çalışacak callback kaydeder.
func (h *ReactionHooks) OnAdded(fn ReactionHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.added = append(h.added, fn)
}

// OnRemoved, reaction kaldırıldığında çalışacak callback kaydeder.
func (h *ReactionHooks) OnRemoved(fn ReactionHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = append(h.removed, fn)
}

func (h *ReactionHooks) fireAdded(event ReactionEvent) {
	h.mu.RLock()
	hooks := append([]ReactionHook(nil), h.added...)
	h.mu.RUnlock()
	h.dispatch(hooks, event)
}

func (h *ReactionHooks) fireRemoved(event ReactionEvent) {
	h.mu.RLock()
	hooks := append([]ReactionHook(nil), h.removed...)
	h.mu.RUnlock()
	h.dispatch(hooks, event)
}

func (h *ReactionHooks) dispatch(hooks []ReactionHook, event ReactionEvent) {
	for _, hook := range hooks {
		h.runner.Go(metrics.KindHook, func(ctx context.Context) error {
			return hook(ctx, event)
		})
	}
}

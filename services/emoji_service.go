package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kyokomi/emoji/v2"

	"github.com/akinalp/tepki/pkg/cache"
	"github.com/akinalp/tepki/repository"
)

// EmojiRegistry, bir reaction anahtarının geçerli bir emoji olup olmadığını söyler.
type EmojiRegistry interface {
	Exists(ctx context.Context, key string) (bool, error)
	// Close, custom emoji cache'inin temizlik goroutine'ini durdurur.
	Close()
}

// NormalizeReaction, ham girdiyi ":name:" biçimine getirir:
// içteki tüm iki noktalar silinir, sonuç iki noktayla sarılır.
//
//	"smile" → ":smile:", ":smile:" → ":smile:", "::a:b::" → ":ab:"
func NormalizeReaction(raw string) string {
	return ":" + strings.ReplaceAll(raw, ":", "") + ":"
}

// BuiltinEmoji, gömülü emoji tablosu (kyokomi/emoji, ":name:" anahtarlı).
func BuiltinEmoji() map[string]bool {
	codes := emoji.CodeMap()
	set := make(map[string]bool, len(codes))
	for key := range codes {
		set[key] = true
	}
	return set
}

type emojiService struct {
	builtin    map[string]bool
	customRepo repository.CustomEmojiRepository
	cache      *cache.TTLCache[string, bool]
}

// NewEmojiService, constructor.
// builtin genelde BuiltinEmoji() sonucudur; testlerde küçük bir set verilebilir.
// customTTL custom emoji varlık sonuçlarının cache süresi (0 → cache yok).
func NewEmojiService(builtin map[string]bool, customRepo repository.CustomEmojiRepository, customTTL time.Duration) EmojiRegistry {
	return &emojiService{
		builtin:    builtin,
		customRepo: customRepo,
		cache:      cache.New[string, bool](customTTL, 5*time.Minute),
	}
}

// Exists, önce gömülü tablo, sonra iki noktaları silinmiş isimle custom emoji kataloğu.
func (s *emojiService) Exists(ctx context.Context, key string) (bool, error) {
	if s.builtin[key] {
		return true, nil
	}

	name := strings.ReplaceAll(key, ":", "")
	if name == "" {
		return false, nil
	}

	found, err := s.cache.GetOrLoad(name, func() (bool, error) {
		count, err := s.customRepo.CountByNameOrAlias(ctx, name)
		if err != nil {
			return false, err
		}
		return count > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up custom emoji: %w", err)
	}
	return found, nil
}

func (s *emojiService) Close() {
	s.cache.Close()
}

// Package ratelimit, kullanıcı bazlı token bucket rate limiting sağlar.
//
// Her anahtar (userID) için ayrı bir golang.org/x/time/rate.Limiter tutulur.
// Uzun süre kullanılmayan limiter'lar arka planda temizlenir.
//
// pkg/ratelimit proje içi hiçbir pakete bağımlı değildir; handlers ve
// middleware'den import cycle oluşmadan kullanılabilir.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter, anahtar başına token bucket.
//
//	rl := ratelimit.New(5, 10, 10*time.Minute)
//	defer rl.Stop()
//	if !rl.Allow(userID) { ... 429 ... }
type KeyedLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New, perSecond: saniyede yenilenen token, burst: kova kapasitesi,
// idleTTL: bu süre boyunca görülmeyen anahtarlar silinir.
// perSecond <= 0 limitsiz demektir.
func New(perSecond float64, burst int, idleTTL time.Duration) *KeyedLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	rl := &KeyedLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	if idleTTL > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Allow, anahtar için bir token tüketir. Token yoksa false döner.
func (rl *KeyedLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Len, takip edilen anahtar sayısı.
func (rl *KeyedLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Stop, cleanup goroutine'ini durdurur.
func (rl *KeyedLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stop:
			return
		}
	}
}

func (rl *KeyedLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

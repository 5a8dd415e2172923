// Package cache, generic ve thread-safe bir in-memory TTL cache sağlar.
//
// Custom emoji varlık sorguları ve çözümlenmiş permission'lar burada tutulur;
// her reaction isteğinde aynı DB sorgusunu tekrar atmamak için.
//
// Generic'ler (Go 1.18+): TTLCache[K comparable, V any] tip parametreleri alır.
// "comparable" kısıtı K'nın == ile karşılaştırılabilir olmasını, yani map key
// olabilmesini garanti eder. "any" interface{}'in takma adıdır, her tip olur.
// Kullanım noktasında tipler açıkça verilir: cache.New[string, bool](...).
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache, her kaydı ttl süresi sonunda geçersiz sayan cache.
//
//	c := cache.New[string, bool](time.Minute, 5*time.Minute)
//	defer c.Close()
//	c.Set("party_parrot", true)
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration
	now     func() time.Time

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New, cache'i oluşturur ve süresi dolan kayıtları cleanupInterval'da bir
// fiziksel olarak silen goroutine'i başlatır.
// ttl <= 0 ise cache hiçbir şey tutmaz (her Get miss döner).
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:     make(map[K]entry[V]),
		ttl:         ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.cleanupLoop(cleanupInterval)
	}

	return c
}

// Get, (value, true) sadece kayıt var ve süresi dolmamışsa.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, değeri ttl ile yazar.
func (c *TTLCache[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// GetOrLoad, cache miss durumunda load'u çağırır ve başarılı sonucu yazar.
// load hatası cache'lenmez.
func (c *TTLCache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete, tek bir kaydı invalidate eder.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// DeleteFunc, predicate'e uyan tüm kayıtları siler.
// Ör: bir kullanıcının rolü değiştiğinde "userID:" ile başlayan permission kayıtları.
func (c *TTLCache[K, V]) DeleteFunc(predicate func(key K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if predicate(key) {
			delete(c.entries, key)
		}
	}
}

// Len, süresi dolmuşlar dahil kayıt sayısı.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close, cleanup goroutine'ini durdurur. Birden fazla çağrılabilir.
//
// Kapalı bir kanalı tekrar kapatmak panic'tir; closeOnce (sync.Once) close'un
// tek sefer çalışmasını sağlar. Kapanmış kanaldan okuma hemen döner, bu yüzden
// cleanupLoop'taki "case <-c.stopCleanup" bir kapanma sinyali gibi çalışır.
// Close'dan sonra Get/Set çalışmaya devam eder, sadece arka plan temizliği durur.
func (c *TTLCache[K, V]) Close() {
	c.closeOnce.Do(func() { close(c.stopCleanup) })
}

func (c *TTLCache[K, V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

package apps

import (
	"context"
	"fmt"
	"sync"
)

// Handler, LocalBus aboneliği.
type Handler func(ctx context.Context, payload any) error

// LocalBus, event'leri aynı process içindeki handler'lara dağıtır.
// Handler'lar kayıt sırasıyla ve senkron çağrılır; biri hata dönse de
// diğerleri çalışmaya devam eder.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewLocalBus, boş bir LocalBus.
func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[string][]Handler)}
}

// Subscribe, kind için handler kaydeder.
func (b *LocalBus) Subscribe(kind string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[kind] = append(b.handlers[kind], h)
}

// Publish, kind'a abone tüm handler'ları çağırır. Abone yoksa no-op.
// Handler'ların ilk hatası (veya panic'i) döner.
func (b *LocalBus) Publish(ctx context.Context, kind string, payload any) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[kind]...)
	b.mu.RUnlock()

	var firstErr error
	for _, h := range handlers {
		if err := callHandler(ctx, h, payload); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("apps handler for %s: %w", kind, err)
		}
	}
	return firstErr
}

func callHandler(ctx context.Context, h Handler, payload any) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return h(ctx, payload)
}

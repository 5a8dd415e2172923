package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/akinalp/tepki/pkg/logger"
	"github.com/akinalp/tepki/pkg/metrics"
)

// BackgroundRunner, fire-and-forget işleri çağıranı bloklamadan çalıştırır.
//
// Her iş kendi context'ini alır (request context'inden bağımsız, timeout'lu).
// Dönen error veya panic loglanır ve metrics'e yazılır; çağırana asla dönmez.
// Wait, shutdown sırasında uçuştaki işlerin bitmesini beklemek için kullanılır.
type BackgroundRunner struct {
	wg      sync.WaitGroup
	timeout time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewBackgroundRunner, constructor. timeout <= 0 ise 30 saniye kullanılır.
func NewBackgroundRunner(m *metrics.Metrics, timeout time.Duration) *BackgroundRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BackgroundRunner{
		timeout: timeout,
		metrics: m,
		log:     logger.Component("background"),
	}
}

// Go, fn'i yeni bir goroutine'de çalıştırır. kind log ve metrics label'ıdır.
//
// sync.WaitGroup bir sayaçtır: Add(1) goroutine başlamadan ÖNCE çağrılmalıdır,
// goroutine içinde çağrılırsa Wait henüz sayılmamış bir işi kaçırabilir.
// "defer r.wg.Done()" fn hata dönse de panic etse de sayacı azaltır.
//
// context.Background() kullanılır çünkü HTTP request'i cevap yazılınca iptal
// edilir; request context'ine bağlı bir iş yarıda kesilirdi.
func (r *BackgroundRunner) Go(kind string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.safeCall(ctx, fn); err != nil {
			r.metrics.AsyncFailure(kind)
			r.log.Warn().Err(err).Str("kind", kind).Msg("background task failed")
		}
	}()
}

// safeCall, fn'deki panic'i error'a çevirir.
//
// recover() sadece defer edilen bir fonksiyonun içinden çağrıldığında işe yarar;
// panic'i durdurur ve panic değerini döner. Dönüş değeri isimli (err error)
// olduğu için defer içinden err'e atama yapmak çağırana dönen değeri değiştirir.
// Goroutine'de yakalanmayan bir panic tüm process'i çökertir.
func (r *BackgroundRunner) safeCall(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx)
}

// Wait, başlatılmış tüm işler bitene kadar bekler.
func (r *BackgroundRunner) Wait() {
	r.wg.Wait()
}

// WaitTimeout, Wait'i en fazla d kadar bekler. İşler bittiyse true döner.
//
// WaitGroup'un timeout'lu bir Wait'i yoktur. Wait ayrı bir goroutine'de
// çalıştırılır, bitince done kanalı kapatılır ve select ile time.After
// yarıştırılır. Süre dolarsa o goroutine işler bitene kadar yaşamaya devam eder.
func (r *BackgroundRunner) WaitTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

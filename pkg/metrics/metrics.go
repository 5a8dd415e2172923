// Package metrics, Prometheus counter'larını tanımlar ve /metrics handler'ını sağlar.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Async dispatch türleri, AsyncFailure label'ı.
const (
	KindHook        = "hook"
	KindAppsEvent   = "apps_event"
	KindNotifyRoom  = "notify_room"
	KindNotifyMsg   = "notify_message"
	KindEphemeral   = "ephemeral"
	KindLastMsgSync = "last_message_sync"
)

// Metrics, servisin kullandığı counter'ları taşır.
// Tüm metotlar nil receiver ile güvenle çağrılabilir.
type Metrics struct {
	reactions     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	asyncFailures *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

// New, counter'ları reg'e kaydeder. reg aynı zamanda Gatherer ise Handler onu sunar.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tepki_reactions_total",
			Help: "Reaction toggle calls by outcome (added, removed, unchanged).",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tepki_reaction_rejections_total",
			Help: "Rejected reaction toggles by reason.",
		}, []string{"reason"}),
		asyncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tepki_async_dispatch_failures_total",
			Help: "Fire-and-forget dispatches that failed or panicked.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.reactions, m.rejections, m.asyncFailures)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// NewRegistry, Go runtime ve process collector'ları kayıtlı yeni bir registry döner.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Reaction, başarılı bir toggle sonucunu sayar.
func (m *Metrics) Reaction(outcome string) {
	if m == nil {
		return
	}
	m.reactions.WithLabelValues(outcome).Inc()
}

// Rejected, reddedilen bir toggle'ı reason koduyla sayar.
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "error"
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// AsyncFailure, başarısız fire-and-forget işini sayar.
func (m *Metrics) AsyncFailure(kind string) {
	if m == nil {
		return
	}
	m.asyncFailures.WithLabelValues(kind).Inc()
}

// Handler, /metrics endpoint'i.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

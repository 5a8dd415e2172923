package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Reaction("added")
	m.Reaction("added")
	m.Rejected("muted")
	m.Rejected("")
	m.AsyncFailure(KindHook)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reactions.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("muted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.asyncFailures.WithLabelValues(KindHook)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Reaction("added")
		m.Rejected("muted")
		m.AsyncFailure(KindHook)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New(NewRegistry())
	m.Reaction("removed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tepki_reactions_total{outcome="removed"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

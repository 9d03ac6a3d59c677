package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObservePlanDuration("sample", 150*time.Millisecond)
	pr.IncPlanOutcome("sample", OutcomePending)
	pr.IncPlanOutcome("sample", OutcomePending)
	pr.SetPendingFiles("sample", 3)
	pr.IncCursorAdvance("sample")
	pr.ObserveSyncDuration("sample", time.Second, true)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 5)

	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["pivot_plan_outcomes_total"])
	assert.Equal(t, 3.0, values["pivot_pending_files"])
	assert.Equal(t, 1.0, values["pivot_cursor_advances_total"])
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObservePlanDuration("x", time.Second)
		pr.IncPlanOutcome("x", OutcomeFailed)
		pr.SetPendingFiles("x", 1)
		pr.IncCursorAdvance("x")
		pr.ObserveSyncDuration("x", time.Second, false)
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncCursorAdvance("sample")

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `pivot_cursor_advances_total{repository="sample"} 1`))
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

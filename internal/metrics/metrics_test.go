package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.JobRun("price", "completed")
	m.JobRun("price", "completed")
	m.JobRun("price", "dropped")
	m.Fetch("quote", "ok")
	m.Delivery("news", "delivered")
	m.Delivery("news", "forbidden")
	m.Dedup("recorded")
	m.JobDuration("price", 2*time.Second)

	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("price", "completed")); got != 2 {
		t.Errorf("job_runs_total{price,completed} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("price", "dropped")); got != 1 {
		t.Errorf("job_runs_total{price,dropped} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("quote", "ok")); got != 1 {
		t.Errorf("provider_fetches_total = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.deliveries); got != 2 {
		t.Errorf("deliveries_total series = %d, want 2", got)
	}
	if got := testutil.ToFloat64(m.dedup.WithLabelValues("recorded")); got != 1 {
		t.Errorf("dedup_records_total = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.JobRun("price", "completed")
	m.JobDuration("price", time.Second)
	m.Fetch("quote", "ok")
	m.Delivery("price", "delivered")
	m.Dedup("duplicate")
	m.RegisterSubscriptionGauges(func() (int, int) { return 0, 0 })
	if m.Handler() == nil {
		t.Error("Handler() on nil metrics should fall back to the default handler")
	}
}

func TestHandlerExposesSubscriptionGauges(t *testing.T) {
	m := New()
	m.RegisterSubscriptionGauges(func() (int, int) { return 3, 5 })
	m.Delivery("price", "delivered")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"tickerwatch_subscribed_channels 3",
		"tickerwatch_tracked_symbols 5",
		`tickerwatch_deliveries_total{kind="price",status="delivered"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

package telemetry

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Registration is checked via Describe() rather than Gather() because *Vec
// metrics with no observed label combinations are absent from Gather output
// even when correctly registered.
func TestMetrics_AllRegistered(t *testing.T) {
	type describer interface {
		Describe(chan<- *prometheus.Desc)
	}

	cases := []struct {
		name string
		c    describer
	}{
		{"http_requests_total", HTTPRequestsTotal},
		{"http_request_duration_seconds", HTTPRequestDuration},
		{"task_mutations_total", TaskMutationsTotal},
		{"login_failures_total", LoginFailuresTotal},
		{"audit_writes_total", AuditWritesTotal},
		{"audit_write_errors_total", AuditWriteErrorsTotal},
		{"db_open_connections", DBOpenConnections},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ch := make(chan *prometheus.Desc, 10)
			tc.c.Describe(ch)
			close(ch)
			for desc := range ch {
				if strings.Contains(desc.String(), `"`+tc.name+`"`) {
					return
				}
			}
			t.Errorf("metric %q: Describe() returned no descriptor with this fqName", tc.name)
		})
	}
}

func TestMetrics_HTTPRequestsTotal_CanBeIncremented(t *testing.T) {
	c := HTTPRequestsTotal.WithLabelValues("GET", "/tasks", "200")
	before := testutil.ToFloat64(c)
	c.Inc()
	if after := testutil.ToFloat64(c); after-before < 1 {
		t.Errorf("HTTPRequestsTotal.Inc() did not increase counter (before=%.0f after=%.0f)", before, after)
	}
}

func TestMetrics_TaskMutationsTotal_CanBeIncremented(t *testing.T) {
	c := TaskMutationsTotal.WithLabelValues("create")
	before := testutil.ToFloat64(c)
	c.Inc()
	if after := testutil.ToFloat64(c); after-before < 1 {
		t.Error("TaskMutationsTotal.Inc() did not increase counter")
	}
}

func TestMetrics_LoginFailuresTotal_CanBeIncremented(t *testing.T) {
	before := testutil.ToFloat64(LoginFailuresTotal)
	LoginFailuresTotal.Inc()
	if after := testutil.ToFloat64(LoginFailuresTotal); after-before < 1 {
		t.Error("LoginFailuresTotal.Inc() did not increase counter")
	}
}

func TestMetrics_AuditWritesTotal_CanBeIncremented(t *testing.T) {
	c := AuditWritesTotal.WithLabelValues("CREATE_TASK")
	before := testutil.ToFloat64(c)
	c.Inc()
	if after := testutil.ToFloat64(c); after-before < 1 {
		t.Error("AuditWritesTotal.Inc() did not increase counter")
	}
}

func TestMetrics_HTTPRequestDuration_CanBeObserved(t *testing.T) {
	HTTPRequestDuration.WithLabelValues("GET", "/tasks").Observe(0.05)
	HTTPRequestDuration.WithLabelValues("GET", "/tasks").Observe(1.5)
	// If no panic, the histogram is functioning.
}

func TestMetrics_DBOpenConnections_CanBeSet(t *testing.T) {
	DBOpenConnections.Set(5)
	if got := testutil.ToFloat64(DBOpenConnections); got != 5 {
		t.Errorf("DBOpenConnections = %.0f, want 5", got)
	}
	DBOpenConnections.Set(0)
}

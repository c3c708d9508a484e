package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/taskboard/taskboard/internal/telemetry"
)

func TestMetricsMiddleware_RecordsRouteTemplate(t *testing.T) {
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/tasks/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := telemetry.HTTPRequestsTotal.WithLabelValues("GET", "/tasks/:id", "200")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/17", nil))

	if after := testutil.ToFloat64(counter); after-before != 1 {
		t.Errorf("counter delta = %.0f, want 1 (labelled by route template, not raw URL)", after-before)
	}
}

func TestMetricsMiddleware_UnmatchedRouteUsesPlaceholder(t *testing.T) {
	router := gin.New()
	router.Use(MetricsMiddleware())

	counter := telemetry.HTTPRequestsTotal.WithLabelValues("GET", "<no-route>", "404")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/definitely/not/registered", nil))

	if after := testutil.ToFloat64(counter); after-before != 1 {
		t.Errorf("counter delta = %.0f, want 1 for <no-route>", after-before)
	}
}

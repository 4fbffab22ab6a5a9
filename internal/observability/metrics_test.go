package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecommerce-dashboard/internal/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveExternal("basemap", 0, time.Second)
	observability.ObserveStage("aggregate", errors.New("boom"), time.Millisecond)
	observability.SetDatasetRows("orders", 42)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)

	for _, want := range []string{
		"dashboard_http_requests_total",
		`dashboard_external_requests_total{service="basemap",status="0"}`,
		`dashboard_pipeline_stage_duration_seconds_count{outcome="error",stage="aggregate"}`,
		`dashboard_dataset_rows{table="orders"} 42`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in metrics output", want)
		}
	}
}

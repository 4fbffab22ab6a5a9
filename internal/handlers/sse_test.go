package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ecommerce-dashboard/internal/presentation"
)

func newTestSSEHandlers(t *testing.T) *SSEHandlers {
	t.Helper()
	return NewSSEHandlers(createTestCatalog(createTestAnalytics(t)), testLogger())
}

func TestNewSSEHandlers(t *testing.T) {
	catalog := createTestCatalog(createTestAnalytics(t))
	logger := testLogger()

	handlers := NewSSEHandlers(catalog, logger)

	if handlers.catalog != catalog {
		t.Error("NewSSEHandlers() should set catalog field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_renderSectionBody(t *testing.T) {
	handlers := newTestSSEHandlers(t)
	section, _ := handlers.catalog.Get(presentation.SectionOrderItems)

	html, err := handlers.renderSectionBody(context.Background(), section)
	if err != nil {
		t.Fatalf("renderSectionBody() failed: %v", err)
	}

	expectedContent := []string{
		`id="body-order-items"`,
		"Total Items: <strong>3</strong>",
		"Average Items: <strong>2</strong>",
		"Sold Products",
		`id="chart-top-selling"`,
		`id="chart-low-selling"`,
	}
	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestChartSignals(t *testing.T) {
	sections := []presentation.Section{
		{ID: "monthly-spend", Charts: []presentation.ChartSpec{{ID: "a", Kind: presentation.ChartLine}}},
		{ID: "reviews"},
	}

	raw, err := chartSignals(sections...)
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Charts map[string][]presentation.ChartSpec `json:"charts"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("signals should be valid JSON: %v", err)
	}
	if got := decoded.Charts["monthlySpend"]; len(got) != 1 || got[0].ID != "a" {
		t.Errorf("unexpected monthlySpend charts: %+v", got)
	}
	if !strings.Contains(string(raw), `"reviews":[]`) {
		t.Errorf("sections without charts should send an empty list, got %s", raw)
	}
}

func TestSSEHandlers_HandleSection(t *testing.T) {
	handlers := newTestSSEHandlers(t)

	tests := []struct {
		section  string
		contains []string
	}{
		{presentation.SectionOrderItems, []string{"body-order-items", "orderItems", "Top Selling Products"}},
		{presentation.SectionMonthlySpend, []string{"body-monthly-spend", "monthlySpend", "Values in millions"}},
		{presentation.SectionReviews, []string{"body-reviews", "Most Common Review Score", "Total rating by customer"}},
		{presentation.SectionGeolocation, []string{"body-geolocation", "Customer density", "maroon"}},
	}

	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sse/"+tt.section, nil)
			req.SetPathValue("section", tt.section)
			w := httptest.NewRecorder()

			handlers.HandleSection(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
			}

			body := w.Body.String()
			if !strings.Contains(body, "datastar-patch-elements") || !strings.Contains(body, "datastar-patch-signals") {
				t.Error("stream should patch both elements and signals")
			}
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("stream should contain %q", want)
				}
			}
		})
	}
}

func TestSSEHandlers_HandleSection_Unknown(t *testing.T) {
	handlers := newTestSSEHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/sse/unknown", nil)
	req.SetPathValue("section", "unknown")
	w := httptest.NewRecorder()

	handlers.HandleSection(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if strings.Contains(w.Header().Get("Content-Type"), "text/event-stream") {
		t.Error("an unknown section must not open a stream")
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := newTestSSEHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil)
	w := httptest.NewRecorder()

	handlers.HandleRefreshAll(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	for _, s := range handlers.catalog.All() {
		if !strings.Contains(body, "body-"+s.ID) {
			t.Errorf("refresh should patch section %s", s.ID)
		}
	}
	if got := strings.Count(body, "event: datastar-patch-signals"); got != len(handlers.catalog.All()) {
		t.Errorf("expected one signal patch per section, got %d", got)
	}
}

func TestSSEHandlers_HandleRefreshAll_ClientGone(t *testing.T) {
	handlers := newTestSSEHandlers(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	handlers.HandleRefreshAll(w, req)

	if strings.Contains(w.Body.String(), "datastar-patch-elements") {
		t.Error("no sections should be sent once the client has gone")
	}
}

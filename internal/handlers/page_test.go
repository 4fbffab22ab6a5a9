package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ecommerce-dashboard/internal/ui/templates"
)

func TestPageHandlers_HandleDashboard(t *testing.T) {
	catalog := createTestCatalog(createTestAnalytics(t))
	handlers := NewPageHandlers(templates.Page{
		Title:    "E-Commerce Dashboard",
		Caption:  "E-Commerce Public Dataset",
		Sections: catalog.All(),
	}, testLogger())

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content-type %q", ct)
	}

	body := w.Body.String()
	if !strings.HasPrefix(body, "<!doctype html>") || !strings.HasSuffix(body, "</html>") {
		t.Error("expected a complete HTML document")
	}
	for _, s := range catalog.All() {
		if !strings.Contains(body, `id="section-`+s.ID+`"`) {
			t.Errorf("page should contain section %s", s.ID)
		}
	}
}

package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"ecommerce-dashboard/internal/errors"
	"ecommerce-dashboard/internal/ui/templates"
)

const renderTimeout = 5 * time.Second

type PageHandlers struct {
	page   templates.Page
	logger *slog.Logger
}

func NewPageHandlers(page templates.Page, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{page: page, logger: logger}
}

// HandleDashboard renders into a buffer first so a template failure still
// produces a clean error response.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	var buf bytes.Buffer
	if err := templates.Dashboard(h.page).Render(ctx, &buf); err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render dashboard"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

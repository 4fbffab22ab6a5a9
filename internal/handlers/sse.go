package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"ecommerce-dashboard/internal/errors"
	"ecommerce-dashboard/internal/observability"
	"ecommerce-dashboard/internal/presentation"
	"ecommerce-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	catalog *presentation.Catalog
	logger  *slog.Logger
}

func NewSSEHandlers(catalog *presentation.Catalog, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *SSEHandlers) renderSectionBody(ctx context.Context, section presentation.Section) (string, error) {
	var buf strings.Builder
	if err := templates.SectionBody(section).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// chartSignals keys the section's chart specs under charts.<signal name>, the
// path the section shell watches.
func chartSignals(sections ...presentation.Section) ([]byte, error) {
	charts := make(map[string][]presentation.ChartSpec, len(sections))
	for _, s := range sections {
		specs := s.Charts
		if specs == nil {
			specs = []presentation.ChartSpec{}
		}
		charts[s.SignalName()] = specs
	}
	return json.Marshal(map[string]any{"charts": charts})
}

func (h *SSEHandlers) patchSection(ctx context.Context, sse *datastar.ServerSentEventGenerator, section presentation.Section) error {
	html, err := h.renderSectionBody(ctx, section)
	if err != nil {
		return fmt.Errorf("render section %s: %w", section.ID, err)
	}
	if err := sse.PatchElements(html); err != nil {
		return fmt.Errorf("patch section %s: %w", section.ID, err)
	}

	signals, err := chartSignals(section)
	if err != nil {
		return fmt.Errorf("marshal charts %s: %w", section.ID, err)
	}
	if err := sse.PatchSignals(signals); err != nil {
		return fmt.Errorf("patch charts %s: %w", section.ID, err)
	}
	return nil
}

func (h *SSEHandlers) HandleSection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("section")
	section, ok := h.catalog.Get(id)
	if !ok {
		errors.WriteError(w, r, h.logger, errors.NotFound("Unknown section "+id))
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := h.patchSection(r.Context(), sse, section); err != nil {
		h.logger.Error("stream section",
			"section", id,
			"error", err,
			"request_id", observability.GetRequestID(r.Context()),
		)
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	for _, section := range h.catalog.All() {
		if r.Context().Err() != nil {
			h.logger.Debug("client went away during refresh", "section", section.ID)
			return
		}
		if err := h.patchSection(r.Context(), sse, section); err != nil {
			h.logger.Error("refresh section",
				"section", section.ID,
				"error", err,
				"request_id", observability.GetRequestID(r.Context()),
			)
			return
		}
	}
}

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"ecommerce-dashboard/internal/basemap"
	"ecommerce-dashboard/internal/errors"
	"ecommerce-dashboard/internal/presentation"
	"ecommerce-dashboard/internal/services"
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	catalog   *presentation.Catalog
	basemap   *basemap.Image
	logger    *slog.Logger
	startedAt time.Time
}

// NewAPIHandlers serves the derived tables as JSON. image may be nil when the
// basemap could not be fetched.
func NewAPIHandlers(analytics *services.Analytics, catalog *presentation.Catalog, image *basemap.Image, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		catalog:   catalog,
		basemap:   image,
		logger:    logger,
		startedAt: time.Now(),
	}
}

func (h *APIHandlers) HandleSections(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.All(), cacheHeaders)
}

func (h *APIHandlers) HandleSection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("section")
	section, ok := h.catalog.Get(id)
	if !ok {
		errors.WriteError(w, r, h.logger, errors.NotFound("Unknown section "+id))
		return
	}
	errors.WriteSuccessWithHeaders(w, section, cacheHeaders)
}

func (h *APIHandlers) HandleOrderItems(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Categories(), cacheHeaders)
}

func (h *APIHandlers) HandleMonthlySpend(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.MonthlySpend(), cacheHeaders)
}

func (h *APIHandlers) HandleReviews(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Reviews(), cacheHeaders)
}

func (h *APIHandlers) HandleGeolocation(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.GeoPoints(), cacheHeaders)
}

func (h *APIHandlers) HandleBasemap(w http.ResponseWriter, r *http.Request) {
	if h.basemap == nil {
		errors.WriteError(w, r, h.logger, errors.NotFound("Basemap is not available"))
		return
	}
	h.basemap.ServeHTTP(w, r)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := struct {
		services.Stats
		Basemap bool `json:"basemap"`
	}{
		Stats:   h.analytics.Stats(),
		Basemap: h.basemap != nil,
	}

	errors.WriteSuccess(w, stats)
}

package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"ecommerce-dashboard/internal/basemap"
	"ecommerce-dashboard/internal/handlers"
	"ecommerce-dashboard/internal/observability"
	"ecommerce-dashboard/internal/presentation"
	"ecommerce-dashboard/internal/services"
	"ecommerce-dashboard/internal/ui/static"
	"ecommerce-dashboard/internal/ui/templates"
)

// Dependencies are everything the routes read from. All of it is built before
// the server starts and never changes afterwards.
type Dependencies struct {
	Analytics *services.Analytics
	Catalog   *presentation.Catalog
	Basemap   *basemap.Image
	Page      templates.Page
	Registry  *prometheus.Registry
}

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
	pageHandlers *handlers.PageHandlers
	metrics      http.Handler
}

func NewServer(deps Dependencies, logger *slog.Logger) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		apiHandlers:  handlers.NewAPIHandlers(deps.Analytics, deps.Catalog, deps.Basemap, logger),
		sseHandlers:  handlers.NewSSEHandlers(deps.Catalog, logger),
		pageHandlers: handlers.NewPageHandlers(deps.Page, logger),
		metrics:      observability.MetricsHandler(deps.Registry),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleDashboard)
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", static.Handler()))
	s.mux.HandleFunc("GET /basemap", s.apiHandlers.HandleBasemap)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", s.metrics)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/sections", s.apiHandlers.HandleSections)
	s.mux.HandleFunc("GET /api/sections/{section}", s.apiHandlers.HandleSection)
	s.mux.HandleFunc("GET /api/order-items", s.apiHandlers.HandleOrderItems)
	s.mux.HandleFunc("GET /api/monthly-spend", s.apiHandlers.HandleMonthlySpend)
	s.mux.HandleFunc("GET /api/reviews", s.apiHandlers.HandleReviews)
	s.mux.HandleFunc("GET /api/geolocation", s.apiHandlers.HandleGeolocation)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.mux.HandleFunc("GET /sse/{section}", s.sseHandlers.HandleSection)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ecommerce-dashboard/internal/dataset"
	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/observability"
)

type Options struct {
	Weighting Weighting
	Logger    *slog.Logger
}

// Report holds every derived table of one pipeline run.
type Report struct {
	Categories models.CategoryReport     `json:"categories"`
	Monthly    []models.MonthlySpend     `json:"monthly_spend"`
	Reviews    models.ReviewDistribution `json:"reviews"`
	Geo        []models.GeoPoint         `json:"geolocation"`
}

type Stats struct {
	OrderRecords  int        `json:"order_records"`
	GeoRecords    int        `json:"geo_records"`
	Customers     int        `json:"customers"`
	Categories    int        `json:"categories"`
	Months        int        `json:"months"`
	Reviews       int        `json:"reviews"`
	FirstApproval *time.Time `json:"first_approval,omitempty"`
	LastApproval  *time.Time `json:"last_approval,omitempty"`
	Weighting     string     `json:"weighting"`
	ComputedAt    time.Time  `json:"computed_at"`
	Duration      string     `json:"duration"`
}

// Analytics is built once at startup and never mutated afterwards, so it is
// safe to share between request handlers. Returned slices must be treated as
// read-only.
type Analytics struct {
	report Report
	stats  Stats
}

// NewAnalytics runs every aggregation over the loaded tables. The first
// failing stage aborts the run.
func NewAnalytics(ctx context.Context, orders *dataset.OrderTable, geo *dataset.GeoTable, opts Options) (*Analytics, error) {
	if orders == nil || geo == nil {
		return nil, fmt.Errorf("orders and geolocation tables are required")
	}
	if opts.Weighting == "" {
		opts.Weighting = WeightingPositional
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, span := observability.StartSpan(ctx, "pipeline")
	span.SetTag("weighting", string(opts.Weighting))
	start := time.Now()

	a := &Analytics{}
	stages := []struct {
		name string
		run  func() error
	}{
		{"categories", func() (err error) {
			a.report.Categories, err = TopAndBottomCategories(orders)
			return err
		}},
		{"monthly_spend", func() (err error) {
			a.report.Monthly, err = MonthlySpend(orders)
			return err
		}},
		{"reviews", func() (err error) {
			a.report.Reviews, err = ReviewDistribution(orders, opts.Weighting)
			return err
		}},
		{"geolocation", func() (err error) {
			a.report.Geo, err = GeoDensity(geo)
			return err
		}},
	}

	for _, stage := range stages {
		_, stageSpan := observability.StartSpan(ctx, "aggregate."+stage.name)
		stageStart := time.Now()

		err := stage.run()

		observability.ObserveStage(stage.name, err, time.Since(stageStart))
		stageSpan.End(logger, err)
		if err != nil {
			span.End(logger, err)
			return nil, fmt.Errorf("aggregate %s: %w", stage.name, err)
		}
	}

	duration := time.Since(start)
	a.stats = Stats{
		OrderRecords: orders.Len(),
		GeoRecords:   geo.Len(),
		Customers:    len(a.report.Geo),
		Categories:   a.report.Categories.Categories,
		Months:       len(a.report.Monthly),
		Reviews:      a.report.Reviews.Total,
		Weighting:    string(opts.Weighting),
		ComputedAt:   time.Now().UTC(),
		Duration:     duration.String(),
	}
	if first, last, ok := orders.ApprovalRange(); ok {
		a.stats.FirstApproval, a.stats.LastApproval = &first, &last
	}

	span.End(logger, nil)
	logger.Info("aggregations complete",
		"orders", a.stats.OrderRecords,
		"customers", a.stats.Customers,
		"categories", a.stats.Categories,
		"months", a.stats.Months,
		"reviews", a.stats.Reviews,
		"duration", duration,
	)

	return a, nil
}

func (a *Analytics) Report() Report {
	return a.report
}

func (a *Analytics) Categories() models.CategoryReport {
	return a.report.Categories
}

func (a *Analytics) MonthlySpend() []models.MonthlySpend {
	return a.report.Monthly
}

func (a *Analytics) Reviews() models.ReviewDistribution {
	return a.report.Reviews
}

func (a *Analytics) GeoPoints() []models.GeoPoint {
	return a.report.Geo
}

func (a *Analytics) Stats() Stats {
	return a.stats
}

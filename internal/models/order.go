package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderRecord struct {
	OrderID       string
	ProductID     string
	Category      string
	PaymentValue  decimal.Decimal
	ReviewScore   int // 0 when the order has no review
	ApprovedAt    time.Time
	PurchasedAt   time.Time
	CarrierAt     time.Time
	DeliveredAt   time.Time
	EstimatedAt   time.Time
	ShippingLimit time.Time
}

func (o OrderRecord) Approved() bool {
	return !o.ApprovedAt.IsZero()
}

func (o OrderRecord) Reviewed() bool {
	return o.ReviewScore >= 1 && o.ReviewScore <= 5
}

type GeoRecord struct {
	CustomerID string
	Longitude  float64
	Latitude   float64
}

type CategorySummary struct {
	Category string `json:"category"`
	Items    int    `json:"items"`
}

type CategoryReport struct {
	Top          []CategorySummary `json:"top"`
	Bottom       []CategorySummary `json:"bottom"`
	TotalItems   int               `json:"total_items"`
	AverageItems int               `json:"average_items"`
	Categories   int               `json:"categories"`
}

type MonthlySpend struct {
	Month      string          `json:"month"`
	MonthIndex time.Month      `json:"month_index"`
	TotalSpend decimal.Decimal `json:"total_spend"`
	Years      int             `json:"years"`
}

type ScoreCount struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

type ReviewDistribution struct {
	Scores          []ScoreCount `json:"scores"`
	Total           int          `json:"total"`
	AverageScore    float64      `json:"average_score"`
	MostCommonScore int          `json:"most_common_score"`
	Weighting       string       `json:"weighting"`
}

// CountFor returns the number of reviews with the given score.
func (d ReviewDistribution) CountFor(score int) int {
	for _, sc := range d.Scores {
		if sc.Score == score {
			return sc.Count
		}
	}
	return 0
}

type GeoPoint struct {
	CustomerID string  `json:"customer_id"`
	Longitude  float64 `json:"lng"`
	Latitude   float64 `json:"lat"`
}

package dataset

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"ecommerce-dashboard/internal/models"
)

// Column names used by the order items table.
const (
	ColOrderID       = "order_id"
	ColProductID     = "product_id"
	ColCategory      = "product_category_name_english"
	ColPaymentValue  = "payment_value"
	ColReviewScore   = "review_score"
	ColApprovedAt    = "order_approved_at"
	ColPurchasedAt   = "order_purchase_timestamp"
	ColCarrierAt     = "order_delivered_carrier_date"
	ColDeliveredAt   = "order_delivered_customer_date"
	ColEstimatedAt   = "order_estimated_delivery_date"
	ColShippingLimit = "shipping_limit_date"
)

// Column names used by the customer geolocation table.
const (
	ColCustomerID = "customer_unique_id"
	ColLongitude  = "geolocation_lng"
	ColLatitude   = "geolocation_lat"
)

var (
	OrderColumns = []string{
		ColOrderID, ColProductID, ColCategory, ColPaymentValue, ColReviewScore,
		ColApprovedAt, ColPurchasedAt, ColCarrierAt, ColDeliveredAt, ColEstimatedAt, ColShippingLimit,
	}
	GeoColumns = []string{ColCustomerID, ColLongitude, ColLatitude}
)

var ErrMissingColumn = errors.New("missing column")

type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s table: missing column %q", e.Table, e.Column)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

type schema struct {
	name    string
	columns map[string]struct{}
}

func newSchema(name string, columns []string) schema {
	s := schema{name: name, columns: make(map[string]struct{}, len(columns))}
	for _, c := range columns {
		s.columns[c] = struct{}{}
	}
	return s
}

func (s schema) Has(column string) bool {
	_, ok := s.columns[column]
	return ok
}

// Require reports the first absent column as a *MissingColumnError.
func (s schema) Require(columns ...string) error {
	for _, c := range columns {
		if !s.Has(c) {
			return &MissingColumnError{Table: s.name, Column: c}
		}
	}
	return nil
}

func (s schema) Columns() []string {
	out := make([]string, 0, len(s.columns))
	for c := range s.columns {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

type OrderTable struct {
	schema
	Records []models.OrderRecord
}

// NewOrderTable wraps in-memory records. With no columns given the table
// claims the full order schema.
func NewOrderTable(records []models.OrderRecord, columns ...string) *OrderTable {
	if len(columns) == 0 {
		columns = OrderColumns
	}
	t := &OrderTable{schema: newSchema("orders", columns), Records: slices.Clone(records)}
	t.sortByApproval()
	return t
}

func (t *OrderTable) Len() int {
	return len(t.Records)
}

// sortByApproval orders records by approval time, unapproved rows last.
func (t *OrderTable) sortByApproval() {
	slices.SortStableFunc(t.Records, func(a, b models.OrderRecord) int {
		switch {
		case a.Approved() && !b.Approved():
			return -1
		case !a.Approved() && b.Approved():
			return 1
		}
		return a.ApprovedAt.Compare(b.ApprovedAt)
	})
}

// ApprovalRange returns the earliest and latest approval timestamps.
func (t *OrderTable) ApprovalRange() (first, last time.Time, ok bool) {
	for _, r := range t.Records {
		if !r.Approved() {
			continue
		}
		if !ok || r.ApprovedAt.Before(first) {
			first = r.ApprovedAt
		}
		if !ok || r.ApprovedAt.After(last) {
			last = r.ApprovedAt
		}
		ok = true
	}
	return first, last, ok
}

type GeoTable struct {
	schema
	Records []models.GeoRecord
}

func NewGeoTable(records []models.GeoRecord, columns ...string) *GeoTable {
	if len(columns) == 0 {
		columns = GeoColumns
	}
	return &GeoTable{schema: newSchema("geolocation", columns), Records: records}
}

func (t *GeoTable) Len() int {
	return len(t.Records)
}

// Deduplicate keeps the first row per customer id. Rows without an id are dropped.
func (t *GeoTable) Deduplicate() *GeoTable {
	seen := make(map[string]struct{}, len(t.Records))
	out := make([]models.GeoRecord, 0, len(t.Records))
	for _, r := range t.Records {
		if r.CustomerID == "" {
			continue
		}
		if _, dup := seen[r.CustomerID]; dup {
			continue
		}
		seen[r.CustomerID] = struct{}{}
		out = append(out, r)
	}
	return &GeoTable{schema: t.schema, Records: out}
}

package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ecommerce-dashboard/internal/models"
)

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const ordersCSV = `order_id,product_id,product_category_name_english,payment_value,review_score,order_approved_at,order_purchase_timestamp,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date,shipping_limit_date,review_comment_message
o2,p2,toys,50.00,5,2017-02-03 10:00:00,2017-02-03 09:00:00,,,2017-02-20 00:00:00,2017-02-09 10:00:00,"fast, good"
o1,p1,toys,100.00,5.0,2017-01-10 08:30:00,2017-01-10 08:00:00,2017-01-12 10:00:00,2017-01-15 10:00:00,2017-01-30 00:00:00,2017-01-16 08:30:00,
o3,p3,books,30,,2018-01-05 12:00:00,2018-01-05 11:00:00,,,,,
o4,p4,books,12.5,3,,2018-02-01 12:00:00,,,,,
`

func TestLoadOrders(t *testing.T) {
	table, err := LoadOrders(context.Background(), createTempCSV(t, ordersCSV))
	if err != nil {
		t.Fatalf("LoadOrders() error: %v", err)
	}

	if table.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", table.Len())
	}

	// Sorted by approval time, unapproved last.
	var ids []string
	for _, r := range table.Records {
		ids = append(ids, r.OrderID)
	}
	if diff := cmp.Diff([]string{"o1", "o2", "o3", "o4"}, ids); diff != "" {
		t.Errorf("record order mismatch (-want +got):\n%s", diff)
	}

	first := table.Records[0]
	if first.ReviewScore != 5 {
		t.Errorf("expected review score 5 from %q, got %d", "5.0", first.ReviewScore)
	}
	if got := first.PaymentValue.String(); got != "100" {
		t.Errorf("expected payment 100, got %s", got)
	}
	if want := time.Date(2017, 1, 10, 8, 30, 0, 0, time.UTC); !first.ApprovedAt.Equal(want) {
		t.Errorf("expected approval %v, got %v", want, first.ApprovedAt)
	}
	if first.DeliveredAt.IsZero() {
		t.Error("delivered timestamp should be parsed")
	}

	if table.Records[2].Reviewed() {
		t.Error("blank review score should leave the record unreviewed")
	}
	if table.Records[3].Approved() {
		t.Error("blank approval timestamp should leave the record unapproved")
	}

	for _, c := range OrderColumns {
		if !table.Has(c) {
			t.Errorf("expected column %q to be present", c)
		}
	}
}

func TestLoadOrders_PartialHeader(t *testing.T) {
	csv := "product_id,product_category_name_english\np1,toys\n"
	table, err := LoadOrders(context.Background(), createTempCSV(t, csv))
	if err != nil {
		t.Fatalf("LoadOrders() error: %v", err)
	}

	err = table.Require(ColCategory, ColPaymentValue)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if missing.Column != ColPaymentValue {
		t.Errorf("expected missing %q, got %q", ColPaymentValue, missing.Column)
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Error("MissingColumnError should match ErrMissingColumn")
	}
}

func TestLoadOrders_InvalidData(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "empty file",
			csv:  "",
		},
		{
			name: "invalid payment",
			csv:  "product_id,payment_value\np1,abc\n",
		},
		{
			name: "score out of range",
			csv:  "product_id,review_score\np1,7\n",
		},
		{
			name: "fractional score",
			csv:  "product_id,review_score\np1,4.5\n",
		},
		{
			name: "invalid timestamp",
			csv:  "product_id,order_approved_at\np1,yesterday\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadOrders(context.Background(), createTempCSV(t, tt.csv)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadOrders_MissingFile(t *testing.T) {
	if _, err := LoadOrders(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadOrders_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := LoadOrders(ctx, createTempCSV(t, ordersCSV)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoadGeo(t *testing.T) {
	csv := "\ufeffcustomer_unique_id,geolocation_lat,geolocation_lng\n" +
		"c1,-23.5,-46.6\n" +
		"c2,-22.9,-43.2\n" +
		"c1,-19.9,-43.9\n" +
		"c3,,\n"

	table, err := LoadGeo(context.Background(), createTempCSV(t, csv))
	if err != nil {
		t.Fatalf("LoadGeo() error: %v", err)
	}

	if table.Len() != 3 {
		t.Fatalf("expected 3 located rows, got %d", table.Len())
	}
	if !table.Has(ColCustomerID) {
		t.Error("byte order mark should be stripped from the first header")
	}

	dedup := table.Deduplicate()
	want := []models.GeoRecord{
		{CustomerID: "c1", Longitude: -46.6, Latitude: -23.5},
		{CustomerID: "c2", Longitude: -43.2, Latitude: -22.9},
	}
	if diff := cmp.Diff(want, dedup.Records); diff != "" {
		t.Errorf("deduplicated records mismatch (-want +got):\n%s", diff)
	}
	if table.Len() != 3 {
		t.Error("Deduplicate should not modify the source table")
	}
}

func TestLoadGeo_InvalidCoordinate(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"longitude out of range", "c1,-23.5,-246.6", ColLongitude},
		{"latitude out of range", "c1,95,-46.6", ColLatitude},
		{"not a number", "c1,-23.5,NaN", ColLongitude},
		{"infinite latitude", "c1,+Inf,-46.6", ColLatitude},
		{"infinite longitude", "c1,-23.5,-Infinity", ColLongitude},
		{"garbage", "c1,south,-46.6", ColLatitude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := "customer_unique_id,geolocation_lat,geolocation_lng\nc0,-22.9,-43.2\n" + tt.row + "\n"
			_, err := LoadGeo(context.Background(), createTempCSV(t, csv))
			if err == nil {
				t.Fatal("expected a load error")
			}
			if !strings.Contains(err.Error(), tt.column) || !strings.Contains(err.Error(), "line 3") {
				t.Errorf("error should name the column and line, got %v", err)
			}
		})
	}
}

func TestOrderTable_ApprovalRange(t *testing.T) {
	jan := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2017, 3, 1, 0, 0, 0, 0, time.UTC)
	table := NewOrderTable([]models.OrderRecord{
		{ApprovedAt: mar},
		{},
		{ApprovedAt: jan},
	})

	first, last, ok := table.ApprovalRange()
	if !ok {
		t.Fatal("expected a range")
	}
	if !first.Equal(jan) || !last.Equal(mar) {
		t.Errorf("expected %v..%v, got %v..%v", jan, mar, first, last)
	}

	if _, _, ok := NewOrderTable(nil).ApprovalRange(); ok {
		t.Error("empty table should have no range")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2017-10-02 11:07:15", time.Date(2017, 10, 2, 11, 7, 15, 0, time.UTC)},
		{"2017-10-02T11:07:15Z", time.Date(2017, 10, 2, 11, 7, 15, 0, time.UTC)},
		{"2017-10-02", time.Date(2017, 10, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseTimestamp(tt.in)
		if err != nil {
			t.Errorf("parseTimestamp(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

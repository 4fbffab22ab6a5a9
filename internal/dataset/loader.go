package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-dashboard/internal/models"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

type row struct {
	line   int
	index  map[string]int
	fields []string
}

func (r row) value(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r row) fail(column string, err error) error {
	return fmt.Errorf("line %d: column %q: %w", r.line, column, err)
}

// LoadOrders reads the joined order items file. Columns absent from the
// header are simply not loaded; aggregations that need them report
// MissingColumnError.
func LoadOrders(ctx context.Context, path string) (*OrderTable, error) {
	var records []models.OrderRecord

	header, err := readCSV(ctx, path, func(r row) error {
		rec, err := parseOrder(r)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load orders %s: %w", path, err)
	}

	t := NewOrderTable(records, known(header, OrderColumns)...)
	slog.Debug("orders loaded", "file", path, "rows", t.Len(), "columns", t.Columns())
	return t, nil
}

// LoadGeo reads the customer geolocation file with duplicates included.
// Rows without both coordinates are skipped.
func LoadGeo(ctx context.Context, path string) (*GeoTable, error) {
	var (
		records []models.GeoRecord
		skipped int
	)

	header, err := readCSV(ctx, path, func(r row) error {
		rec, located, err := parseGeo(r)
		if err != nil {
			return err
		}
		if !located {
			skipped++
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load geolocation %s: %w", path, err)
	}

	t := NewGeoTable(records, known(header, GeoColumns)...)
	slog.Debug("geolocation loaded", "file", path, "rows", t.Len(), "skipped", skipped, "columns", t.Columns())
	return t, nil
}

func readCSV(ctx context.Context, path string, fn func(row) error) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	line := 1
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		line++

		if err := fn(row{line: line, index: index, fields: fields}); err != nil {
			return nil, err
		}
	}

	return header, nil
}

func known(header, columns []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}

func parseOrder(r row) (models.OrderRecord, error) {
	rec := models.OrderRecord{
		OrderID:   r.value(ColOrderID),
		ProductID: r.value(ColProductID),
		Category:  r.value(ColCategory),
	}

	if v := r.value(ColPaymentValue); v != "" {
		payment, err := decimal.NewFromString(v)
		if err != nil {
			return rec, r.fail(ColPaymentValue, err)
		}
		rec.PaymentValue = payment
	}

	if v := r.value(ColReviewScore); v != "" {
		score, err := parseScore(v)
		if err != nil {
			return rec, r.fail(ColReviewScore, err)
		}
		rec.ReviewScore = score
	}

	timestamps := []struct {
		column string
		dst    *time.Time
	}{
		{ColApprovedAt, &rec.ApprovedAt},
		{ColPurchasedAt, &rec.PurchasedAt},
		{ColCarrierAt, &rec.CarrierAt},
		{ColDeliveredAt, &rec.DeliveredAt},
		{ColEstimatedAt, &rec.EstimatedAt},
		{ColShippingLimit, &rec.ShippingLimit},
	}
	for _, ts := range timestamps {
		v := r.value(ts.column)
		if v == "" {
			continue
		}
		parsed, err := parseTimestamp(v)
		if err != nil {
			return rec, r.fail(ts.column, err)
		}
		*ts.dst = parsed
	}

	return rec, nil
}

func parseGeo(r row) (models.GeoRecord, bool, error) {
	rec := models.GeoRecord{CustomerID: r.value(ColCustomerID)}

	rawLng, rawLat := r.value(ColLongitude), r.value(ColLatitude)
	if rawLng == "" || rawLat == "" {
		return rec, false, nil
	}

	lng, err := parseCoordinate(rawLng, 180)
	if err != nil {
		return rec, false, r.fail(ColLongitude, err)
	}
	lat, err := parseCoordinate(rawLat, 90)
	if err != nil {
		return rec, false, r.fail(ColLatitude, err)
	}
	rec.Longitude, rec.Latitude = lng, lat

	return rec, true, nil
}

// parseScore accepts "4" as well as "4.0", which is how review scores come
// out of a join that left some orders without a review.
func parseScore(v string) (int, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 1 || f > 5 {
		return 0, fmt.Errorf("review score %q out of range 1..5", v)
	}
	return int(f), nil
}

func parseCoordinate(v string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("coordinate %q is not a finite number", v)
	}
	if math.Abs(f) > limit {
		return 0, fmt.Errorf("coordinate %v out of range", f)
	}
	return f, nil
}

func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", v)
}

package services

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-dashboard/internal/dataset"
	"ecommerce-dashboard/internal/models"
)

// Weighting selects how the average review score is computed.
type Weighting string

const (
	// WeightingPositional applies positionalWeights to the scores ordered by
	// popularity, not to the score values themselves.
	WeightingPositional Weighting = "positional"
	// WeightingScore is the plain mean of the score values.
	WeightingScore Weighting = "score"
)

var positionalWeights = []int{5, 4, 1, 3, 2}

const categoriesPerSide = 5

// ParseWeighting is the single check for REVIEW_WEIGHTING values. Case and
// surrounding space are ignored.
func ParseWeighting(s string) (Weighting, error) {
	switch w := Weighting(strings.ToLower(strings.TrimSpace(s))); w {
	case WeightingPositional, WeightingScore:
		return w, nil
	default:
		return "", fmt.Errorf("unknown review weighting %q", s)
	}
}

// CategoryCounts counts product ids per category, ordered by category name.
// Blank categories are excluded; a category whose rows all lack a product id
// is kept with a zero count.
func CategoryCounts(orders *dataset.OrderTable) []models.CategorySummary {
	counts := make(map[string]int)
	for _, r := range orders.Records {
		if r.Category == "" {
			continue
		}
		n := counts[r.Category]
		if r.ProductID != "" {
			n++
		}
		counts[r.Category] = n
	}

	out := make([]models.CategorySummary, 0, len(counts))
	for category, items := range counts {
		out = append(out, models.CategorySummary{Category: category, Items: items})
	}
	slices.SortFunc(out, func(a, b models.CategorySummary) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// TopAndBottomCategories returns up to five best and five worst selling
// categories. Equal counts keep category name order on both sides.
func TopAndBottomCategories(orders *dataset.OrderTable) (models.CategoryReport, error) {
	if err := orders.Require(dataset.ColCategory, dataset.ColProductID); err != nil {
		return models.CategoryReport{}, err
	}

	summary := CategoryCounts(orders)
	total, average := TotalAndAverageItems(summary)

	top := slices.Clone(summary)
	slices.SortStableFunc(top, func(a, b models.CategorySummary) int {
		return cmp.Compare(b.Items, a.Items)
	})

	bottom := slices.Clone(summary)
	slices.SortStableFunc(bottom, func(a, b models.CategorySummary) int {
		return cmp.Compare(a.Items, b.Items)
	})

	return models.CategoryReport{
		Top:          head(top, categoriesPerSide),
		Bottom:       head(bottom, categoriesPerSide),
		TotalItems:   total,
		AverageItems: average,
		Categories:   len(summary),
	}, nil
}

// TotalAndAverageItems sums the category counts and returns their mean,
// rounded half to even.
func TotalAndAverageItems(summary []models.CategorySummary) (total, average int) {
	if len(summary) == 0 {
		return 0, 0
	}
	for _, s := range summary {
		total += s.Items
	}
	average = int(math.RoundToEven(float64(total) / float64(len(summary))))
	return total, average
}

// MonthlySpend sums payments per calendar month of each year, then averages
// the yearly sums per month name. Output runs January to December and skips
// months with no approved orders.
func MonthlySpend(orders *dataset.OrderTable) ([]models.MonthlySpend, error) {
	if err := orders.Require(dataset.ColApprovedAt, dataset.ColPaymentValue); err != nil {
		return nil, err
	}

	type bucket struct {
		year  int
		month time.Month
	}
	sums := make(map[bucket]decimal.Decimal)
	for _, r := range orders.Records {
		if !r.Approved() {
			continue
		}
		b := bucket{year: r.ApprovedAt.Year(), month: r.ApprovedAt.Month()}
		sums[b] = sums[b].Add(r.PaymentValue)
	}

	var months [12]struct {
		total decimal.Decimal
		years int
	}
	for b, sum := range sums {
		m := &months[b.month-1]
		m.total = m.total.Add(sum)
		m.years++
	}

	out := make([]models.MonthlySpend, 0, len(months))
	for i, m := range months {
		if m.years == 0 {
			continue
		}
		month := time.Month(i + 1)
		out = append(out, models.MonthlySpend{
			Month:      month.String(),
			MonthIndex: month,
			TotalSpend: m.total.Div(decimal.NewFromInt(int64(m.years))),
			Years:      m.years,
		})
	}
	return out, nil
}

// ReviewDistribution counts review scores, most frequent first. Equal counts
// put the higher score first, which also decides the most common score.
func ReviewDistribution(orders *dataset.OrderTable, weighting Weighting) (models.ReviewDistribution, error) {
	if err := orders.Require(dataset.ColReviewScore); err != nil {
		return models.ReviewDistribution{}, err
	}
	if _, err := ParseWeighting(string(weighting)); err != nil {
		return models.ReviewDistribution{}, err
	}

	var counts [6]int
	for _, r := range orders.Records {
		if r.Reviewed() {
			counts[r.ReviewScore]++
		}
	}

	dist := models.ReviewDistribution{
		Scores:    make([]models.ScoreCount, 0, 5),
		Weighting: string(weighting),
	}
	for score := 5; score >= 1; score-- {
		if counts[score] == 0 {
			continue
		}
		dist.Scores = append(dist.Scores, models.ScoreCount{Score: score, Count: counts[score]})
		dist.Total += counts[score]
	}
	slices.SortStableFunc(dist.Scores, func(a, b models.ScoreCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if dist.Total == 0 {
		return dist, nil
	}

	dist.MostCommonScore = dist.Scores[0].Score
	dist.AverageScore = averageScore(dist.Scores, dist.Total, weighting)
	return dist, nil
}

// averageScore rounds half to even at two decimals. With fewer than five
// distinct scores the positional mode uses only the leading weights.
func averageScore(scores []models.ScoreCount, total int, weighting Weighting) float64 {
	weighted := 0
	switch weighting {
	case WeightingScore:
		for _, sc := range scores {
			weighted += sc.Score * sc.Count
		}
	default:
		for i, sc := range scores {
			if i >= len(positionalWeights) {
				break
			}
			weighted += positionalWeights[i] * sc.Count
		}
	}
	return decimal.NewFromInt(int64(weighted)).
		Div(decimal.NewFromInt(int64(total))).
		RoundBank(2).
		InexactFloat64()
}

// GeoDensity returns one point per customer, first occurrence wins.
func GeoDensity(geo *dataset.GeoTable) ([]models.GeoPoint, error) {
	if err := geo.Require(dataset.ColCustomerID, dataset.ColLongitude, dataset.ColLatitude); err != nil {
		return nil, err
	}

	unique := geo.Deduplicate()
	points := make([]models.GeoPoint, 0, unique.Len())
	for _, r := range unique.Records {
		points = append(points, models.GeoPoint{
			CustomerID: r.CustomerID,
			Longitude:  r.Longitude,
			Latitude:   r.Latitude,
		})
	}
	return points, nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

package presentation

import (
	"strconv"

	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/services"
)

const (
	SectionOrderItems   = "order-items"
	SectionMonthlySpend = "monthly-spend"
	SectionReviews      = "reviews"
	SectionGeolocation  = "geolocation"
)

// BrazilExtent frames the basemap around Brazil.
var BrazilExtent = [4]float64{-73.98283055, -33.8, -33.75116944, 5.4}

// BuildSections returns every dashboard section in display order. basemap may
// be nil, in which case the scatter is drawn without a background.
func BuildSections(report services.Report, basemap *Basemap) []Section {
	return []Section{
		OrderItems(report.Categories),
		MonthlySpendSection(report.Monthly),
		ReviewSection(report.Reviews),
		GeoSection(report.Geo, basemap),
	}
}

func OrderItems(report models.CategoryReport) Section {
	return Section{
		ID:       SectionOrderItems,
		Subtitle: "Order Items",
		Summary: []Summary{
			{Label: "Total Items", Value: strconv.Itoa(report.TotalItems)},
			{Label: "Average Items", Value: strconv.Itoa(report.AverageItems)},
		},
		Suptitle: "Sold Products",
		Charts: []ChartSpec{
			{
				ID:         "top-selling",
				Kind:       ChartBar,
				Title:      "Top Selling Products",
				Horizontal: true,
				Data:       highlightFirst(categoryData(report.Top)),
			},
			{
				ID:         "low-selling",
				Kind:       ChartBar,
				Title:      "Low Selling Products",
				Horizontal: true,
				InvertX:    true,
				YAxisRight: true,
				Data:       highlightFirst(categoryData(report.Bottom)),
			},
		},
	}
}

func categoryData(rows []models.CategorySummary) []Datum {
	data := make([]Datum, 0, len(rows))
	for _, r := range rows {
		data = append(data, Datum{Label: r.Category, Value: float64(r.Items)})
	}
	return data
}

// MonthlySpendSection annotates each point with its value in millions, rounded
// half to even.
func MonthlySpendSection(rows []models.MonthlySpend) Section {
	data := make([]Datum, 0, len(rows))
	for _, r := range rows {
		data = append(data, Datum{
			Label:      r.Month,
			Value:      r.TotalSpend.InexactFloat64(),
			Color:      AccentColor,
			Annotation: r.TotalSpend.Shift(-6).StringFixedBank(2),
		})
	}

	return Section{
		ID:       SectionMonthlySpend,
		Subtitle: "Total Money Spent by Customers",
		Summary:  []Summary{},
		Charts: []ChartSpec{{
			ID:     "monthly-spend",
			Kind:   ChartLine,
			Title:  "Total money spent (average per year)",
			Data:   data,
			Marker: &Marker{Color: AccentColor, LineWidth: 2, Shape: "circle"},
			Note:   "Values in millions",
		}},
	}
}

func ReviewSection(dist models.ReviewDistribution) Section {
	data := make([]Datum, 0, len(dist.Scores))
	for _, sc := range dist.Scores {
		color := NeutralColor
		if sc.Score == dist.MostCommonScore {
			color = AccentColor
		}
		data = append(data, Datum{
			Label:      strconv.Itoa(sc.Score),
			Value:      float64(sc.Count),
			Color:      color,
			Annotation: strconv.Itoa(sc.Count),
		})
	}

	summary := []Summary{}
	if dist.Total > 0 {
		summary = append(summary,
			Summary{Label: "Average Review Score", Value: strconv.FormatFloat(dist.AverageScore, 'f', 2, 64)},
			Summary{Label: "Most Common Review Score", Value: strconv.Itoa(dist.MostCommonScore)},
		)
	}

	return Section{
		ID:       SectionReviews,
		Subtitle: "Rating Score",
		Summary:  summary,
		Charts: []ChartSpec{{
			ID:     "rating",
			Kind:   ChartBar,
			Title:  "Total rating by customer",
			XLabel: "Rating",
			YLabel: "Count",
			Data:   data,
		}},
	}
}

// GeoSection plots longitude against latitude with tiny translucent markers.
func GeoSection(points []models.GeoPoint, basemap *Basemap) Section {
	coords := make([]Coordinate, 0, len(points))
	for _, p := range points {
		coords = append(coords, Coordinate{X: p.Longitude, Y: p.Latitude})
	}

	return Section{
		ID:       SectionGeolocation,
		Subtitle: "Customer Geolocation",
		Summary:  []Summary{{Label: "Customers", Value: strconv.Itoa(len(points))}},
		Charts: []ChartSpec{{
			ID:       "customer-density",
			Kind:     ChartScatter,
			Title:    "Customer density",
			XLabel:   "Longitude",
			YLabel:   "Latitude",
			HideAxes: true,
			Points:   coords,
			Marker:   &Marker{Color: ScatterColor, Size: 0.3, Alpha: 0.3},
			Basemap:  basemap,
		}},
		Explanation: "Most customers are located in the south-east and south of Brazil, " +
			"around large cities such as São Paulo, Rio de Janeiro and Belo Horizonte.",
	}
}

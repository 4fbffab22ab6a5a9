package templates

import (
	"encoding/json"

	"ecommerce-dashboard/internal/presentation"
)

const (
	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
	chartScript    = "https://cdn.jsdelivr.net/npm/chart.js@4.4.4/dist/chart.umd.min.js"
)

type Page struct {
	Title    string
	LogoURL  string
	Caption  string
	Sections []presentation.Section
}

// BodyID is the element id that section patches target.
func BodyID(sectionID string) string {
	return "body-" + sectionID
}

func sectionElementID(sectionID string) string {
	return "section-" + sectionID
}

func sectionAnchor(sectionID string) string {
	return "#" + sectionElementID(sectionID)
}

func canvasID(chartID string) string {
	return "chart-" + chartID
}

func loadAction(sectionID string) string {
	return "@get('/sse/" + sectionID + "')"
}

// redrawAction runs on every change of the section's chart signal.
func redrawAction(section presentation.Section) string {
	return "window.renderCharts('" + section.ID + "', $charts." + section.SignalName() + ")"
}

func chartIsEmpty(c presentation.ChartSpec) bool {
	return len(c.Data) == 0 && len(c.Points) == 0
}

// initialSignals declares an empty chart list per section so the shells'
// effects have something to bind to before the streams arrive.
func initialSignals(sections []presentation.Section) (string, error) {
	charts := make(map[string][]presentation.ChartSpec, len(sections))
	for _, s := range sections {
		charts[s.SignalName()] = []presentation.ChartSpec{}
	}
	raw, err := json.Marshal(map[string]any{"charts": charts})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

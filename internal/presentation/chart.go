// Package presentation turns derived tables into declarative chart specs and
// summary lines. It computes nothing beyond formatting and colour choice; the
// browser owns all drawing state.
package presentation

import "strings"

const (
	AccentColor  = "#FF5722"
	NeutralColor = "#D3D3D3"
	ScatterColor = "maroon"
)

type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartLine    ChartKind = "line"
	ChartScatter ChartKind = "scatter"
)

// Datum is one bar or one line point.
type Datum struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Color      string  `json:"color,omitempty"`
	Annotation string  `json:"annotation,omitempty"`
}

type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Marker struct {
	Color     string  `json:"color"`
	Size      float64 `json:"size,omitempty"`
	Alpha     float64 `json:"alpha,omitempty"`
	LineWidth float64 `json:"line_width,omitempty"`
	Shape     string  `json:"shape,omitempty"`
}

// Basemap is a background image stretched over Extent, given as
// [left, right, bottom, top] in data coordinates.
type Basemap struct {
	URL    string     `json:"url"`
	Extent [4]float64 `json:"extent"`
}

type ChartSpec struct {
	ID         string       `json:"id"`
	Kind       ChartKind    `json:"kind"`
	Title      string       `json:"title"`
	XLabel     string       `json:"x_label,omitempty"`
	YLabel     string       `json:"y_label,omitempty"`
	Horizontal bool         `json:"horizontal,omitempty"`
	InvertX    bool         `json:"invert_x,omitempty"`
	YAxisRight bool         `json:"y_axis_right,omitempty"`
	HideAxes   bool         `json:"hide_axes,omitempty"`
	Data       []Datum      `json:"data,omitempty"`
	Points     []Coordinate `json:"points,omitempty"`
	Marker     *Marker      `json:"marker,omitempty"`
	Basemap    *Basemap     `json:"basemap,omitempty"`
	Note       string       `json:"note,omitempty"`
}

type Summary struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Section struct {
	ID          string      `json:"id"`
	Subtitle    string      `json:"subtitle"`
	Summary     []Summary   `json:"summary"`
	Suptitle    string      `json:"suptitle,omitempty"`
	Charts      []ChartSpec `json:"charts"`
	Explanation string      `json:"explanation,omitempty"`
}

// SignalName is the section id in lower camel case, usable as a client-side
// signal key.
func (s Section) SignalName() string {
	parts := strings.Split(s.ID, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// highlightFirst colours the first bar with the accent and the rest neutral.
func highlightFirst(data []Datum) []Datum {
	for i := range data {
		if i == 0 {
			data[i].Color = AccentColor
		} else {
			data[i].Color = NeutralColor
		}
	}
	return data
}

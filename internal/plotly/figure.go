// Package plotly models the slice of the Plotly schema the dashboard uses.
// Figures are built once at generation time and embedded into the page as
// JSON literals; the page's loader script hands each one to Plotly.newPlot
// unchanged, so everything a chart shows is decided here.
package plotly

// Trace types
const (
	TypeScatter = "scatter"
	TypeBar     = "bar"
	TypePie     = "pie"
	TypeBox     = "box"
)

// Scatter modes
const (
	ModeLines        = "lines"
	ModeLinesMarkers = "lines+markers"
)

// Bar layout modes
const (
	BarmodeStack = "stack"
	BarmodeGroup = "group"
)

// AxisLog renders an axis on a base-10 logarithmic scale
const AxisLog = "log"

// OrientationHorizontal flips a bar trace sideways
const OrientationHorizontal = "h"

// Figure pairs data traces with their layout, exactly the object the page
// passes to Plotly.newPlot.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one data series. Field presence follows the trace type: pies use
// Labels/Values, bars and scatters use X/Y, precomputed boxes use the
// quartile arrays. Zero fields stay out of the JSON.
type Trace struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`

	X interface{} `json:"x,omitempty"`
	Y interface{} `json:"y,omitempty"`

	// Pie fields
	Labels []string `json:"labels,omitempty"`
	Values []int64  `json:"values,omitempty"`

	// Variwide bars: one width per bar, in x-axis units
	Width []int64 `json:"width,omitempty"`

	Mode         string   `json:"mode,omitempty"`
	Orientation  string   `json:"orientation,omitempty"`
	Text         []string `json:"text,omitempty"`
	TextPosition string   `json:"textposition,omitempty"`

	Customdata    []int64 `json:"customdata,omitempty"`
	HoverTemplate string  `json:"hovertemplate,omitempty"`

	Line   *Line   `json:"line,omitempty"`
	Marker *Marker `json:"marker,omitempty"`

	// Precomputed box summaries, one entry per box
	Q1         []float64 `json:"q1,omitempty"`
	Median     []float64 `json:"median,omitempty"`
	Q3         []float64 `json:"q3,omitempty"`
	LowerFence []float64 `json:"lowerfence,omitempty"`
	UpperFence []float64 `json:"upperfence,omitempty"`
}

// Line styles a scatter trace's stroke
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Marker styles bar and pie fills
type Marker struct {
	Color string `json:"color,omitempty"`
}

// Layout holds the declarative presentation of a figure
type Layout struct {
	Title      *Title  `json:"title,omitempty"`
	Barmode    string  `json:"barmode,omitempty"`
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	Legend     *Legend `json:"legend,omitempty"`
	Margin     *Margin `json:"margin,omitempty"`
	Height     int     `json:"height,omitempty"`
	HoverMode  string  `json:"hovermode,omitempty"`
	ShowLegend *bool   `json:"showlegend,omitempty"`
}

// Title wraps axis and figure titles
type Title struct {
	Text string `json:"text,omitempty"`
}

// Axis configures one cartesian axis
type Axis struct {
	Title     *Title    `json:"title,omitempty"`
	Type      string    `json:"type,omitempty"`
	TickMode  string    `json:"tickmode,omitempty"`
	TickVals  []float64 `json:"tickvals,omitempty"`
	TickText  []string  `json:"ticktext,omitempty"`
	TickAngle int       `json:"tickangle,omitempty"`
	AutoRange string    `json:"autorange,omitempty"`
}

// Legend positions and titles the figure legend
type Legend struct {
	Title       *Title `json:"title,omitempty"`
	Orientation string `json:"orientation,omitempty"`
}

// Margin sets the plot margins in pixels
type Margin struct {
	L int `json:"l,omitempty"`
	R int `json:"r,omitempty"`
	T int `json:"t,omitempty"`
	B int `json:"b,omitempty"`
}

// Bool returns a pointer for the layout's optional booleans
func Bool(v bool) *bool {
	return &v
}

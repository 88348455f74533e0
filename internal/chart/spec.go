package chart

import (
	"fmt"
	"time"
)

// SampleRows is how many leading rows feed every chart.
const SampleRows = 10

// Request is the user's plot choice. Secondary is ignored by univariate
// kinds.
type Request struct {
	Kind      Kind   `json:"kind"`
	Primary   string `json:"x,omitempty"`
	Secondary string `json:"y,omitempty"`
}

// AxisKind describes how the x column is placed.
type AxisKind string

const (
	AxisNumeric     AxisKind = "numeric"
	AxisCategorical AxisKind = "categorical"
	AxisTemporal    AxisKind = "temporal"
)

// Bar is one bar of a bar plot or histogram.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Point is one scatter or line vertex. X holds the numeric position; on a
// categorical axis it is the category index and Label names it. Time is set
// on temporal axes.
type Point struct {
	X     float64   `json:"x"`
	Time  time.Time `json:"time,omitzero"`
	Label string    `json:"label,omitempty"`
	Y     float64   `json:"y"`
}

// Slice is one pie wedge.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Spec is a renderable chart description.
type Spec struct {
	Kind        Kind     `json:"kind"`
	Family      Family   `json:"family"`
	Title       string   `json:"title"`
	X           string   `json:"x,omitempty"`
	Y           string   `json:"y,omitempty"`
	Orientation string   `json:"orientation,omitempty"`
	InputRows   int      `json:"inputRows"`
	XAxis       AxisKind `json:"xAxis,omitempty"`
	Bars        []Bar    `json:"bars,omitempty"`
	Points      []Point  `json:"points,omitempty"`
	Slices      []Slice  `json:"slices,omitempty"`
}

// RenderError reports a chart that cannot be produced from the chosen
// columns, or that the charting library refused to draw.
type RenderError struct {
	Kind   Kind
	Column string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: column %q: %v", e.Kind.Label(), e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind.Label(), e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

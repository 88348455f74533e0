package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// RenderOptions sizes the drawn chart in pixels.
type RenderOptions struct {
	Width  int
	Height int
}

// DefaultRenderOptions matches the CHART_WIDTH and CHART_HEIGHT defaults.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Width: 800, Height: 480}
}

type renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

// RenderSVG draws spec as an SVG document. Nothing is written to w when
// drawing fails.
func RenderSVG(spec *Spec, w io.Writer, opts RenderOptions) (err error) {
	if spec == nil {
		return errors.New("chart: nothing to render")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultRenderOptions()
	}

	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{Kind: spec.Kind, Err: fmt.Errorf("charting library panicked: %v", r)}
		}
	}()

	var c renderable
	switch spec.Family {
	case FamilyBar, FamilyHistogram:
		c = barChart(spec, opts)
	case FamilyScatter, FamilyLine:
		c = xyChart(spec, opts)
	case FamilyPie:
		c = pieChart(spec, opts)
	default:
		return &RenderError{Kind: spec.Kind, Err: fmt.Errorf("unknown chart family %q", spec.Family)}
	}

	var buf bytes.Buffer
	if err := c.Render(gochart.SVG, &buf); err != nil {
		return &RenderError{Kind: spec.Kind, Err: err}
	}
	_, err = buf.WriteTo(w)
	return err
}

var titleStyle = gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}

// barChart draws bars vertically; go-chart has no horizontal bar layout, so
// Spec.Orientation is carried for API consumers only.
func barChart(spec *Spec, opts RenderOptions) *gochart.BarChart {
	values := make([]gochart.Value, len(spec.Bars))
	lo, hi := 0.0, 0.0
	for i, b := range spec.Bars {
		values[i] = gochart.Value{Label: b.Label, Value: b.Value}
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}

	barWidth := (opts.Width - 120) / (2 * max(len(values), 1))
	barWidth = min(max(barWidth, 8), 60)

	return &gochart.BarChart{
		Title:      spec.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth,
		Background: titleStyle,
		YAxis:      gochart.YAxis{Range: paddedRange(lo, hi)},
		Bars:       values,
	}
}

func xyChart(spec *Spec, opts RenderOptions) *gochart.Chart {
	style := gochart.Style{StrokeWidth: 2, DotWidth: 3}
	if spec.Family == FamilyScatter {
		style = gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 5}
	}

	ys := make([]float64, len(spec.Points))
	xs := make([]float64, len(spec.Points))
	for i, p := range spec.Points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	xAxis := gochart.XAxis{Name: spec.X}
	var series gochart.Series
	switch spec.XAxis {
	case AxisTemporal:
		times := make([]time.Time, len(spec.Points))
		for i, p := range spec.Points {
			times[i] = p.Time
		}
		series = gochart.TimeSeries{Name: spec.Y, XValues: times, YValues: ys, Style: style}
		xAxis.ValueFormatter = gochart.TimeValueFormatter
		lo, hi := timeBounds(times)
		if !hi.After(lo) {
			xAxis.Range = &gochart.ContinuousRange{
				Min: gochart.TimeToFloat64(lo.Add(-time.Hour)),
				Max: gochart.TimeToFloat64(lo.Add(time.Hour)),
			}
		}
	case AxisCategorical:
		series = gochart.ContinuousSeries{Name: spec.Y, XValues: xs, YValues: ys, Style: style}
		var ticks []gochart.Tick
		seen := make(map[float64]bool)
		for _, p := range spec.Points {
			if !seen[p.X] {
				seen[p.X] = true
				ticks = append(ticks, gochart.Tick{Value: p.X, Label: p.Label})
			}
		}
		xAxis.Ticks = ticks
		xAxis.Range = &gochart.ContinuousRange{Min: -0.5, Max: float64(len(ticks)) - 0.5}
	default:
		series = gochart.ContinuousSeries{Name: spec.Y, XValues: xs, YValues: ys, Style: style}
		if lo, hi := bounds(xs); lo == hi {
			xAxis.Range = paddedRange(lo, hi)
		}
	}

	yAxis := gochart.YAxis{Name: spec.Y}
	if lo, hi := bounds(ys); lo == hi {
		yAxis.Range = paddedRange(lo, hi)
	}

	return &gochart.Chart{
		Title:      spec.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: titleStyle,
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     []gochart.Series{series},
	}
}

func pieChart(spec *Spec, opts RenderOptions) *gochart.PieChart {
	values := make([]gochart.Value, len(spec.Slices))
	for i, s := range spec.Slices {
		values[i] = gochart.Value{Label: s.Name, Value: s.Value}
	}
	return &gochart.PieChart{
		Title:  spec.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Values: values,
	}
}

// paddedRange widens a degenerate range so the axis has a non-zero span.
func paddedRange(lo, hi float64) *gochart.ContinuousRange {
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		lo, hi = lo-pad, hi+pad
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func bounds(xs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

func timeBounds(ts []time.Time) (lo, hi time.Time) {
	for i, t := range ts {
		if i == 0 || t.Before(lo) {
			lo = t
		}
		if i == 0 || t.After(hi) {
			hi = t
		}
	}
	return lo, hi
}

package chart

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/JonMunkholm/explorer/internal/dataset"
)

var (
	errNotNumeric = errors.New("values must be numeric")
	errNoValues   = errors.New("no non-null values to plot")
	errNegative   = errors.New("pie values must not be negative")
	errZeroTotal  = errors.New("pie values sum to zero")
	errBinRange   = errors.New("values span too wide a range to bin")
)

type builder func(sample *dataset.Table, req Request) (*Spec, error)

// builders is the dispatch table. Kinds absent from it draw nothing.
var builders = map[Kind]builder{
	KindBar:       buildBar,
	KindHistogram: buildHistogram,
	KindScatter:   buildXY(FamilyScatter),
	KindLine:      buildXY(FamilyLine),
	KindBubble:    buildXY(FamilyScatter),
	KindPie:       buildPie,
}

// Resolve fills empty column selections with the table's first column and
// clears Secondary for univariate kinds.
func Resolve(t *dataset.Table, req Request) Request {
	first := ""
	if t != nil && t.NumColumns() > 0 {
		first = t.ColumnNames()[0]
	}
	if req.Primary == "" {
		req.Primary = first
	}
	if !req.Kind.Bivariate() {
		req.Secondary = ""
	} else if req.Secondary == "" {
		req.Secondary = first
	}
	return req
}

// Dispatch produces the chart for req from the first SampleRows rows of t.
// A nil Spec with a nil error means there is nothing to draw.
func Dispatch(t *dataset.Table, req Request) (*Spec, error) {
	build, ok := builders[req.Kind]
	if !ok || t == nil || t.NumColumns() == 0 || t.NumRows() == 0 {
		return nil, nil
	}

	req = Resolve(t, req)
	sample := t.Head(SampleRows)

	spec, err := build(sample, req)
	if err != nil {
		return nil, err
	}
	spec.Kind = req.Kind
	spec.InputRows = sample.NumRows()
	return spec, nil
}

func column(t *dataset.Table, kind Kind, name string) (*dataset.Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, &RenderError{Kind: kind, Column: name, Err: errors.New("no such column")}
	}
	return col, nil
}

func numericColumn(t *dataset.Table, kind Kind, name string) (*dataset.Column, error) {
	col, err := column(t, kind, name)
	if err != nil {
		return nil, err
	}
	if !col.Type().IsNumeric() {
		return nil, &RenderError{Kind: kind, Column: name, Err: fmt.Errorf("%w, got %s", errNotNumeric, col.Type())}
	}
	return col, nil
}

// buildBar draws one horizontal bar per row, labelled by row index.
func buildBar(t *dataset.Table, req Request) (*Spec, error) {
	col, err := numericColumn(t, req.Kind, req.Primary)
	if err != nil {
		return nil, err
	}

	var bars []Bar
	for i := 0; i < col.Len(); i++ {
		if v, ok := col.Float(i); ok {
			bars = append(bars, Bar{Label: strconv.Itoa(i), Value: v})
		}
	}
	if len(bars) == 0 {
		return nil, &RenderError{Kind: req.Kind, Column: req.Primary, Err: errNoValues}
	}

	return &Spec{
		Family:      FamilyBar,
		Title:       req.Primary,
		X:           req.Primary,
		Orientation: "h",
		Bars:        bars,
	}, nil
}

func buildHistogram(t *dataset.Table, req Request) (*Spec, error) {
	col, err := column(t, req.Kind, req.Primary)
	if err != nil {
		return nil, err
	}

	var bars []Bar
	if col.Type().IsNumeric() {
		if bars, err = numericBins(col.Floats()); err != nil {
			return nil, &RenderError{Kind: req.Kind, Column: req.Primary, Err: err}
		}
	} else {
		bars = categoryCounts(col)
	}
	if len(bars) == 0 {
		return nil, &RenderError{Kind: req.Kind, Column: req.Primary, Err: errNoValues}
	}

	return &Spec{
		Family: FamilyHistogram,
		Title:  "Histogram of " + req.Primary,
		X:      req.Primary,
		Bars:   bars,
	}, nil
}

// numericBins counts values into equal-width bins; the bin count follows
// Sturges' rule.
func numericBins(values []float64) ([]Bar, error) {
	if len(values) == 0 {
		return nil, nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	n := 1
	if lo < hi {
		n = int(math.Ceil(math.Log2(float64(len(sorted))))) + 1
	}
	dividers := make([]float64, n+1)
	switch {
	case lo == hi:
		dividers[0] = lo
	case math.IsInf(hi-lo, 0):
		// The range overflows; step by a width that does not.
		width := hi/float64(n) - lo/float64(n)
		for i := range dividers {
			dividers[i] = lo + float64(i)*width
		}
	default:
		floats.Span(dividers, lo, hi)
	}
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	for i := range dividers {
		if math.IsNaN(dividers[i]) || (i > 0 && dividers[i] <= dividers[i-1]) {
			return nil, errBinRange
		}
	}

	counts := stat.Histogram(nil, dividers, sorted, nil)

	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{
			Label: fmt.Sprintf("[%s, %s)", formatEdge(dividers[i]), formatEdge(dividers[i+1])),
			Value: counts[i],
		}
	}
	return bars, nil
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// categoryCounts counts each distinct displayed value in first-seen order.
func categoryCounts(col *dataset.Column) []Bar {
	var bars []Bar
	pos := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		label := col.Text(i)
		j, seen := pos[label]
		if !seen {
			j = len(bars)
			pos[label] = j
			bars = append(bars, Bar{Label: label})
		}
		bars[j].Value++
	}
	return bars
}

// buildXY pairs x and y row by row, skipping rows where either is null.
func buildXY(family Family) builder {
	return func(t *dataset.Table, req Request) (*Spec, error) {
		xcol, err := column(t, req.Kind, req.Primary)
		if err != nil {
			return nil, err
		}
		ycol, err := numericColumn(t, req.Kind, req.Secondary)
		if err != nil {
			return nil, err
		}

		axis := AxisCategorical
		switch {
		case xcol.Type().IsNumeric():
			axis = AxisNumeric
		case xcol.Type().IsTemporal():
			axis = AxisTemporal
		}

		categories := make(map[string]int)
		var points []Point
		for i := 0; i < t.NumRows(); i++ {
			y, ok := ycol.Float(i)
			if !ok || xcol.IsNull(i) {
				continue
			}
			p := Point{Y: y}
			switch axis {
			case AxisNumeric:
				if p.X, ok = xcol.Float(i); !ok {
					continue
				}
			case AxisTemporal:
				if p.Time, ok = xcol.Time(i); !ok {
					continue
				}
				p.X = float64(p.Time.UnixNano())
			default:
				p.Label = xcol.Text(i)
				idx, seen := categories[p.Label]
				if !seen {
					idx = len(categories)
					categories[p.Label] = idx
				}
				p.X = float64(idx)
			}
			points = append(points, p)
		}
		if len(points) == 0 {
			return nil, &RenderError{Kind: req.Kind, Err: errNoValues}
		}

		return &Spec{
			Family: family,
			Title:  req.Secondary + " vs " + req.Primary,
			X:      req.Primary,
			Y:      req.Secondary,
			XAxis:  axis,
			Points: points,
		}, nil
	}
}

// buildPie sums values per name in first-seen order.
func buildPie(t *dataset.Table, req Request) (*Spec, error) {
	names, err := column(t, req.Kind, req.Primary)
	if err != nil {
		return nil, err
	}
	values, err := numericColumn(t, req.Kind, req.Secondary)
	if err != nil {
		return nil, err
	}

	var slices []Slice
	pos := make(map[string]int)
	for i := 0; i < t.NumRows(); i++ {
		v, ok := values.Float(i)
		if !ok || names.IsNull(i) {
			continue
		}
		if v < 0 {
			return nil, &RenderError{Kind: req.Kind, Column: req.Secondary, Err: errNegative}
		}
		name := names.Text(i)
		j, seen := pos[name]
		if !seen {
			j = len(slices)
			pos[name] = j
			slices = append(slices, Slice{Name: name})
		}
		slices[j].Value += v
	}
	if len(slices) == 0 {
		return nil, &RenderError{Kind: req.Kind, Column: req.Secondary, Err: errNoValues}
	}
	total := 0.0
	for _, s := range slices {
		total += s.Value
	}
	if total == 0 {
		return nil, &RenderError{Kind: req.Kind, Column: req.Secondary, Err: errZeroTotal}
	}

	return &Spec{
		Family: FamilyPie,
		Title:  req.Secondary + " by " + req.Primary,
		X:      req.Primary,
		Y:      req.Secondary,
		Slices: slices,
	}, nil
}

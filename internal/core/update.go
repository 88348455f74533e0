package core

import (
	"bytes"

	"github.com/JonMunkholm/explorer/internal/chart"
	"github.com/JonMunkholm/explorer/internal/dataset"
	"github.com/JonMunkholm/explorer/internal/summary"
)

// AppTitle heads the main panel.
const AppTitle = "Dataset Explorer"

// State is what a session has loaded. The zero State means nothing has been
// uploaded yet.
type State struct {
	FileName string
	Table    *dataset.Table
}

// KindOption is one entry of the plot-type picker.
type KindOption struct {
	Slug     string `json:"slug"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Preview is the formatted head of the table.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// View is everything the page shows for one state and request.
type View struct {
	Title         string           `json:"title"`
	FileName      string           `json:"fileName,omitempty"`
	Loaded        bool             `json:"loaded"`
	Summary       *summary.Summary `json:"summary,omitempty"`
	Preview       Preview          `json:"preview"`
	Kinds         []KindOption     `json:"kinds"`
	Columns       []string         `json:"columns"`
	ShowColumns   bool             `json:"showColumns"`
	ShowSecondary bool             `json:"showSecondary"`
	Request       chart.Request    `json:"request"`
	Chart         *chart.Spec      `json:"chart,omitempty"`
	ChartSVG      string           `json:"svg,omitempty"`
	ChartError    *UserMessage     `json:"chartError,omitempty"`
	Error         *UserMessage     `json:"error,omitempty"`
}

// Update derives the view for state and req. It has no side effects, so the
// same inputs always describe the same page.
func Update(state State, req chart.Request, opts chart.RenderOptions) View {
	v := View{
		Title:    AppTitle,
		FileName: state.FileName,
		Kinds:    kindOptions(req.Kind),
		Columns:  []string{},
	}
	if state.Table == nil {
		v.Request = chart.Request{Kind: req.Kind}
		return v
	}

	table := state.Table
	s := summary.Summarize(table)
	v.Loaded = true
	v.Summary = &s
	v.Preview = preview(table, PreviewRows)
	v.Columns = table.ColumnNames()

	if req.Kind == chart.KindNone || table.NumColumns() == 0 {
		v.Request = chart.Request{Kind: req.Kind}
		return v
	}

	v.Request = chart.Resolve(table, req)
	v.ShowColumns = true
	v.ShowSecondary = req.Kind.Bivariate()

	spec, err := chart.Dispatch(table, v.Request)
	if err != nil {
		msg := MapError(err)
		v.ChartError = &msg
		return v
	}
	if spec == nil {
		return v
	}
	v.Chart = spec

	var buf bytes.Buffer
	if err := chart.RenderSVG(spec, &buf, opts); err != nil {
		msg := MapError(err)
		v.ChartError = &msg
		return v
	}
	v.ChartSVG = buf.String()

	return v
}

func kindOptions(selected chart.Kind) []KindOption {
	kinds := chart.Kinds()
	out := make([]KindOption, len(kinds))
	for i, k := range kinds {
		out[i] = KindOption{Slug: k.Slug(), Label: k.Label(), Selected: k == selected}
	}
	return out
}

func preview(t *dataset.Table, n int) Preview {
	head := t.Head(n)
	p := Preview{
		Columns: head.ColumnNames(),
		Rows:    make([][]string, head.NumRows()),
	}
	cols := head.Columns()
	for i := range p.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = c.Text(i)
		}
		p.Rows[i] = row
	}
	return p
}

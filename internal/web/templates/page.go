package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/explorer/internal/core"
	"github.com/JonMunkholm/explorer/internal/summary"
)

const styles = `body{margin:0;font-family:system-ui,sans-serif;display:flex;min-height:100vh;color:#1f2933}
aside{width:280px;padding:1.25rem;background:#f5f7fa;border-right:1px solid #e4e7eb}
main{flex:1;padding:1.5rem 2rem;overflow-x:auto}
table{border-collapse:collapse;margin:.5rem 0 1.5rem}
th,td{border:1px solid #e4e7eb;padding:.25rem .6rem;text-align:left;font-size:.9rem}
th{background:#f5f7fa}
.alert{border:1px solid #f5c2c7;background:#f8d7da;color:#842029;padding:.75rem;border-radius:4px;margin:.75rem 0}
.alert .code{font-size:.75rem;opacity:.7}
.muted{color:#7b8794}
form.picker label{display:block;margin:.5rem 0}
figure{margin:0}`

// Page renders the whole explorer: sidebar and main panel.
func Page(v core.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(v.Title)
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style></head><body>`)
		if h.err != nil {
			return h.err
		}
		if err := Sidebar(v).Render(ctx, w); err != nil {
			return err
		}
		if err := MainPanel(v).Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</body></html>`)
		return h.err
	})
}

// Sidebar shows the upload form and, once a table is loaded, its shape,
// column types and null counts.
func Sidebar(v core.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<aside><h2>Upload</h2>`)
		h.raw(`<form method="post" action="/upload" enctype="multipart/form-data">`)
		h.raw(`<input type="file" name="file" accept=".csv,.xls,.xlsx,.json" required> `)
		h.raw(`<button type="submit">Upload</button></form>`)
		if h.err != nil {
			return h.err
		}

		if v.Error != nil {
			if err := ErrorAlert(v.Error.Message, v.Error.Action, v.Error.Code).Render(ctx, w); err != nil {
				return err
			}
		}

		if v.Loaded && v.Summary != nil {
			s := v.Summary
			h.raw(`<p>File: <strong>`)
			h.text(v.FileName)
			h.raw(`</strong></p><p id="shape">`)
			h.text(FormatCount(s.RowCount) + " rows, " + FormatCount(s.ColumnCount) + " columns")
			h.raw(`</p>`)

			h.raw(`<h3>Column types</h3><table id="types"><tr><th>Column</th><th>Type</th></tr>`)
			for _, c := range s.Columns {
				h.raw(`<tr><td>`)
				h.text(c.Name)
				h.raw(`</td><td>`)
				h.text(c.Type.String())
				h.raw(`</td></tr>`)
			}
			h.raw(`</table>`)

			h.raw(`<h3>Null counts</h3><table id="nulls"><tr><th>Column</th><th>Nulls</th></tr>`)
			for _, c := range s.Columns {
				h.raw(`<tr><td>`)
				h.text(c.Name)
				h.raw(`</td><td>`)
				h.text(FormatCount(s.NullCounts[c.Name]))
				h.raw(`</td></tr>`)
			}
			h.raw(`</table>`)
		}

		h.raw(`</aside>`)
		return h.err
	})
}

// MainPanel shows the preview, the chart controls, the chart and the
// summary statistics.
func MainPanel(v core.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<main><h1>`)
		h.text(v.Title)
		h.raw(`</h1>`)

		if !v.Loaded {
			h.raw(`<p class="muted">Upload a CSV, Excel or JSON file to get started.</p></main>`)
			return h.err
		}

		h.raw(`<h2>Preview</h2>`)
		if h.err != nil {
			return h.err
		}
		if err := PreviewTable(v.Preview).Render(ctx, w); err != nil {
			return err
		}
		if err := Picker(v).Render(ctx, w); err != nil {
			return err
		}
		if err := Chart(v).Render(ctx, w); err != nil {
			return err
		}
		if v.Summary != nil {
			if err := Stats(v.Summary).Render(ctx, w); err != nil {
				return err
			}
		}

		h.raw(`</main>`)
		return h.err
	})
}

// PreviewTable renders the head of the table.
func PreviewTable(p core.Preview) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<table id="preview"><thead><tr>`)
		for _, c := range p.Columns {
			h.raw(`<th>`)
			h.text(c)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range p.Rows {
			h.raw(`<tr>`)
			for _, cell := range row {
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

// Picker is the plot-type selector plus the column selector(s) the selected
// type needs.
func Picker(v core.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h2>Chart</h2><form class="picker" method="get" action="/">`)
		h.raw(`<label>Plot type <select name="kind">`)
		for _, k := range v.Kinds {
			h.raw(`<option`)
			h.attr("value", k.Slug)
			if k.Selected {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.text(k.Label)
			h.raw(`</option>`)
		}
		h.raw(`</select></label>`)

		if v.ShowColumns {
			label := "Column"
			if v.ShowSecondary {
				label = "X axis"
			}
			columnSelect(h, label, "x", v.Columns, v.Request.Primary)
		}
		if v.ShowSecondary {
			columnSelect(h, "Y axis", "y", v.Columns, v.Request.Secondary)
		}

		h.raw(`<button type="submit">Draw</button></form>`)
		return h.err
	})
}

func columnSelect(h *htmlWriter, label, name string, columns []string, selected string) {
	h.raw(`<label>`)
	h.text(label)
	h.raw(` <select`)
	h.attr("name", name)
	h.raw(`>`)
	for _, c := range columns {
		h.raw(`<option`)
		h.attr("value", c)
		if c == selected {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(c)
		h.raw(`</option>`)
	}
	h.raw(`</select></label>`)
}

// Chart shows the rendered chart, or the reason it could not be drawn.
func Chart(v core.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if v.ChartError != nil {
			return ErrorAlert(v.ChartError.Message, v.ChartError.Action, v.ChartError.Code).Render(ctx, w)
		}
		if v.ChartSVG == "" {
			return nil
		}
		h := &htmlWriter{w: w}
		h.raw(`<figure id="chart"><img`)
		h.attr("src", svgDataURI(v.ChartSVG))
		if v.Chart != nil {
			h.attr("alt", v.Chart.Title)
		}
		h.raw(`></figure>`)
		return h.err
	})
}

// Stats renders the describe() table for the numeric columns.
func Stats(s *summary.Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h2>Summary statistics</h2>`)
		if !s.HasStats() {
			h.raw(`<p class="muted">No numeric columns.</p>`)
			return h.err
		}

		stats := s.Stats
		h.raw(`<table id="stats"><tr><th></th>`)
		for _, cs := range stats {
			h.raw(`<th>`)
			h.text(cs.Column)
			h.raw(`</th>`)
		}
		h.raw(`</tr>`)

		rows := []struct {
			name string
			get  func(summary.ColumnStats) string
		}{
			{"count", func(cs summary.ColumnStats) string { return FormatCount(cs.Count) }},
			{"mean", func(cs summary.ColumnStats) string { return FormatStat(cs.Mean) }},
			{"std", func(cs summary.ColumnStats) string { return FormatStat(cs.Std) }},
			{"min", func(cs summary.ColumnStats) string { return FormatStat(cs.Min) }},
			{"25%", func(cs summary.ColumnStats) string { return FormatStat(cs.Q25) }},
			{"50%", func(cs summary.ColumnStats) string { return FormatStat(cs.Q50) }},
			{"75%", func(cs summary.ColumnStats) string { return FormatStat(cs.Q75) }},
			{"max", func(cs summary.ColumnStats) string { return FormatStat(cs.Max) }},
		}
		for _, row := range rows {
			h.raw(`<tr><th>`)
			h.text(row.name)
			h.raw(`</th>`)
			for _, cs := range stats {
				h.raw(`<td>`)
				h.text(row.get(cs))
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</table>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><p>`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<span class="code">`)
			h.text(code)
			h.raw(`</span>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

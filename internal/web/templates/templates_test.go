package templates

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/explorer/internal/chart"
	"github.com/JonMunkholm/explorer/internal/core"
	"github.com/JonMunkholm/explorer/internal/dataset"
)

func render(t *testing.T, v core.View) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, Page(v).Render(context.Background(), &b))
	return b.String()
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}

func TestFormatStat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{31.666666666, "31.6667"},
		{7.637626158, "7.6376"},
		{30, "30"},
		{0, "0"},
		{-0.00001, "0"},
		{-2.5, "-2.5"},
		{math.NaN(), ""},
		{math.Inf(1), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatStat(tt.in), "FormatStat(%v)", tt.in)
	}
}

func TestPage_EscapesUserContent(t *testing.T) {
	table, err := dataset.Load("x.csv", strings.NewReader("<b>col</b>\n<script>alert(1)</script>\n"))
	require.NoError(t, err)

	v := core.Update(core.State{FileName: `"evil".csv`, Table: table}, chart.Request{Kind: chart.KindHistogram}, chart.DefaultRenderOptions())
	out := render(t, v)

	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<b>col</b>")
	assert.Contains(t, out, "&#34;evil&#34;.csv")
}

func TestPage_ShowsSidebarCounts(t *testing.T) {
	table, err := dataset.Load("p.csv", strings.NewReader("name,age\nAlice,30\nBob,\nCarol,40\n"))
	require.NoError(t, err)

	out := render(t, core.Update(core.State{FileName: "p.csv", Table: table}, chart.Request{}, chart.DefaultRenderOptions()))

	assert.Contains(t, out, "3 rows, 2 columns")
	assert.Contains(t, out, `<table id="types">`)
	assert.Contains(t, out, "<tr><td>age</td><td>1</td></tr>", "null count for age")
	assert.Contains(t, out, `<table id="stats">`)
	assert.NotContains(t, out, `name="x"`, "no column selector without a plot type")
}

func TestPicker_SelectorsFollowKind(t *testing.T) {
	table, err := dataset.Load("p.csv", strings.NewReader("name,age\nAlice,30\n"))
	require.NoError(t, err)
	state := core.State{FileName: "p.csv", Table: table}

	uni := render(t, core.Update(state, chart.Request{Kind: chart.KindHistogram, Primary: "age"}, chart.DefaultRenderOptions()))
	assert.Contains(t, uni, `name="x"`)
	assert.NotContains(t, uni, `name="y"`)
	assert.Contains(t, uni, `<option value="age" selected>age</option>`)

	bi := render(t, core.Update(state, chart.Request{Kind: chart.KindScatter, Primary: "age", Secondary: "age"}, chart.DefaultRenderOptions()))
	assert.Contains(t, bi, `name="y"`)
	assert.Contains(t, bi, "X axis")
}

func TestChart_ErrorShownInPlace(t *testing.T) {
	v := core.View{ChartError: &core.UserMessage{Message: "cannot draw", Action: "pick another column", Code: "CHART001"}}

	var b strings.Builder
	require.NoError(t, Chart(v).Render(context.Background(), &b))
	assert.Contains(t, b.String(), "cannot draw")
	assert.Contains(t, b.String(), "CHART001")
	assert.NotContains(t, b.String(), "<img")
}

func TestErrorAlert(t *testing.T) {
	var b strings.Builder
	require.NoError(t, ErrorAlert("Bad <file>", "", "FILE003").Render(context.Background(), &b))

	out := b.String()
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "Bad &lt;file&gt;")
	assert.Contains(t, out, `<span class="code">FILE003</span>`)
	assert.Equal(t, 1, strings.Count(out, "<p>"), "empty action is omitted")
}

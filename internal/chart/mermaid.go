package chart

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/paperstat/internal/model"
)

// Default column headers of a categorical table when no axis labels are given.
const (
	defaultXLabel = "Option"
	defaultYLabel = "Count"
)

// MermaidRenderer renders charts into a Markdown document.
// Pie charts become mermaid pie blocks; mermaid has no bar or line chart
// that GitHub renders reliably, so categorical charts become tables.
type MermaidRenderer struct {
	md *markdown.Markdown
}

// NewMermaidRenderer creates a renderer that appends to md.
func NewMermaidRenderer(md *markdown.Markdown) *MermaidRenderer {
	return &MermaidRenderer{md: md}
}

// Pie implements Renderer.
func (m *MermaidRenderer) Pie(_, title string, _ []string, _ string, data []model.PieSlice) error {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(InlineText(title)),
		piechart.WithShowData(true),
	)

	drawn := 0
	for _, d := range data {
		// Mermaid rejects pie charts whose slices are all zero.
		if d.Value <= 0 {
			continue
		}
		chart.LabelAndIntValue(PieLabel(d.Name), uint64(d.Value))
		drawn++
	}
	if drawn == 0 {
		m.md.PlainTextf("*%s: no answers yet.*", InlineText(title))
		m.md.PlainText("")
		return nil
	}

	m.md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	m.md.PlainText("")
	return nil
}

// Categorical implements Renderer.
func (m *MermaidRenderer) Categorical(_, title string, kind model.ChartKind, xLabel, yLabel string, categories []string, values []int) error {
	if xLabel == "" {
		xLabel = defaultXLabel
	}
	if yLabel == "" {
		yLabel = defaultYLabel
	}

	rows := make([][]string, 0, len(categories))
	for i, c := range categories {
		rows = append(rows, []string{TableCell(c), strconv.Itoa(values[i])})
	}

	m.md.PlainTextf("**%s** (%s)", InlineText(title), kind)
	m.md.PlainText("")
	m.md.Table(markdown.TableSet{
		Header: []string{TableCell(xLabel), TableCell(yLabel)},
		Rows:   rows,
	})
	m.md.PlainText("")
	return nil
}

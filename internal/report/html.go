package report

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/paperstat/internal/chart"
	"github.com/nao1215/paperstat/internal/model"
)

// Column headers of the statistics table.
var tableHeaders = []string{"序号", "问题名称", "问题类型", "选项", "统计", "比例"}

// HTMLWriter outputs a standalone HTML page with the statistics table.
// Question cells span all rows of their question. Each chart series becomes
// an empty container element whose data-* attributes carry the series, so a
// charting script can draw into it.
type HTMLWriter struct {
	baseWriter

	// scriptSrc is an optional script included in the page head.
	scriptSrc string
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithScript includes <script src="src"> in the page head.
func WithScript(src string) HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.scriptSrc = src
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, opts ...HTMLWriterOption) *HTMLWriter {
	w := &HTMLWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report as an HTML document.
func (w *HTMLWriter) Write(report *model.SurveyReport) (int, error) {
	doc, err := w.document(report)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return 0, err
	}
	buf.WriteByte('\n')
	return w.output.Write(buf.Bytes())
}

// document builds the node tree of the page.
func (w *HTMLWriter) document(report *model.SurveyReport) (*html.Node, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "zh-CN"))
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(withText(element(atom.Title), report.DisplayTitle()))
	if w.scriptSrc != "" {
		head.AppendChild(element(atom.Script, attr("src", w.scriptSrc)))
	}
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)

	body.AppendChild(withText(element(atom.H1), report.DisplayTitle()))
	if report.Description != "" {
		body.AppendChild(withText(element(atom.P, attr("class", "description")), report.Description))
	}
	body.AppendChild(withText(element(atom.P, attr("class", "summary")),
		"Respondents: "+strconv.Itoa(report.Respondents)+" | Status: "+statusText(report)))

	body.AppendChild(statisticsTable(report))

	charts := &htmlCharts{parent: element(atom.Div, attr("class", "charts"))}
	if err := chart.DispatchAll(charts, report.Series); err != nil {
		return nil, err
	}
	body.AppendChild(charts.parent)

	return doc, nil
}

// statisticsTable builds the table of all rows, grouped by question.
func statisticsTable(report *model.SurveyReport) *html.Node {
	table := element(atom.Table, attr("class", "statistics"))

	thead := element(atom.Thead)
	tr := element(atom.Tr)
	for _, h := range tableHeaders {
		tr.AppendChild(withText(element(atom.Th), h))
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, qs := range report.Questions {
		if len(qs.Rows) == 0 {
			tr := element(atom.Tr)
			appendQuestionCells(tr, qs.Question, 1)
			tr.AppendChild(element(atom.Td))
			tr.AppendChild(withText(element(atom.Td), "0"))
			tr.AppendChild(element(atom.Td))
			tbody.AppendChild(tr)
			continue
		}

		for i, row := range qs.Rows {
			tr := element(atom.Tr)
			if i == 0 {
				appendQuestionCells(tr, qs.Question, len(qs.Rows))
			}
			tr.AppendChild(withText(element(atom.Td), row.OptionLabel))
			tr.AppendChild(withText(element(atom.Td), strconv.Itoa(row.Count)))
			tr.AppendChild(withText(element(atom.Td), row.PercentText()+"%"))
			tbody.AppendChild(tr)
		}
	}
	table.AppendChild(tbody)

	return table
}

// appendQuestionCells adds the number, title and type cells of q, spanning rows.
func appendQuestionCells(tr *html.Node, q model.Question, rows int) {
	var attrs []html.Attribute
	if rows > 1 {
		attrs = append(attrs, attr("rowspan", strconv.Itoa(rows)))
	}
	tr.AppendChild(withText(element(atom.Td, attrs...), strconv.Itoa(q.Index+1)))
	tr.AppendChild(withText(element(atom.Td, attrs...), q.Title))
	tr.AppendChild(withText(element(atom.Td, attrs...), q.Type.Label()))
}

// htmlCharts turns chart series into container elements.
type htmlCharts struct {
	parent *html.Node
}

// Pie implements chart.Renderer.
func (h *htmlCharts) Pie(containerID, title string, categories []string, seriesName string, data []model.PieSlice) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	cats, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	h.parent.AppendChild(element(atom.Div,
		attr("id", containerID),
		attr("class", "chart"),
		attr("data-kind", string(model.ChartPie)),
		attr("data-title", title),
		attr("data-series-name", seriesName),
		attr("data-categories", string(cats)),
		attr("data-values", string(encoded)),
	))
	return nil
}

// Categorical implements chart.Renderer.
func (h *htmlCharts) Categorical(containerID, title string, kind model.ChartKind, xLabel, yLabel string, categories []string, values []int) error {
	cats, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	vals, err := json.Marshal(values)
	if err != nil {
		return err
	}
	h.parent.AppendChild(element(atom.Div,
		attr("id", containerID),
		attr("class", "chart"),
		attr("data-kind", string(kind)),
		attr("data-title", title),
		attr("data-x-label", xLabel),
		attr("data-y-label", yLabel),
		attr("data-boundary-gap", strconv.FormatBool(chart.BoundaryGap(kind))),
		attr("data-categories", string(cats)),
		attr("data-values", string(vals)),
	))
	return nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

package model

// ChartKind is the kind of chart a series is meant for.
type ChartKind string

const (
	// ChartPie is a pie chart keyed by category label.
	ChartPie ChartKind = "pie"

	// ChartBar is a categorical bar chart.
	ChartBar ChartKind = "bar"

	// ChartLine is a categorical line chart.
	ChartLine ChartKind = "line"
)

// PieSlice is one named value of a pie chart.
type PieSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Series is a chart series ready to hand to a chart renderer.
// Categories and Values are aligned 1:1.
type Series struct {
	// ContainerID names the element the chart is drawn into, e.g. "div-echarts0".
	ContainerID string `json:"container_id"`

	// QuestionIndex is the position of the question the series belongs to.
	QuestionIndex int `json:"question_index"`

	// Title is the chart title, normally the question title.
	Title string `json:"title"`

	Kind       ChartKind `json:"kind"`
	Categories []string  `json:"categories"`
	Values     []int     `json:"values"`
}

// Slices returns the series as pie slices.
func (s Series) Slices() []PieSlice {
	slices := make([]PieSlice, len(s.Categories))
	for i, c := range s.Categories {
		slices[i] = PieSlice{Name: c, Value: s.Values[i]}
	}
	return slices
}

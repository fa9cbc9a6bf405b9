package chart

import (
	"sync"

	"github.com/nao1215/paperstat/internal/model"
)

// Call is one recorded Renderer invocation.
type Call struct {
	ContainerID string
	Title       string
	Kind        model.ChartKind
	SeriesName  string
	XLabel      string
	YLabel      string
	Categories  []string
	Values      []int
	Slices      []model.PieSlice
}

// Recorder is a Renderer that remembers every call, for tests.
// It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	// Err, when set, is returned by every call after it is recorded.
	Err error
}

// Pie implements Renderer.
func (r *Recorder) Pie(containerID, title string, categories []string, seriesName string, data []model.PieSlice) error {
	r.record(Call{
		ContainerID: containerID,
		Title:       title,
		Kind:        model.ChartPie,
		SeriesName:  seriesName,
		Categories:  append([]string(nil), categories...),
		Slices:      append([]model.PieSlice(nil), data...),
	})
	return r.Err
}

// Categorical implements Renderer.
func (r *Recorder) Categorical(containerID, title string, kind model.ChartKind, xLabel, yLabel string, categories []string, values []int) error {
	r.record(Call{
		ContainerID: containerID,
		Title:       title,
		Kind:        kind,
		XLabel:      xLabel,
		YLabel:      yLabel,
		Categories:  append([]string(nil), categories...),
		Values:      append([]int(nil), values...),
	})
	return r.Err
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

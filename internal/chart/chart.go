package chart

import (
	"fmt"

	"github.com/nao1215/paperstat/internal/model"
)

// Renderer draws charts. Rendering, layout and teardown belong to the
// implementation; callers only invoke it.
type Renderer interface {
	// Pie draws a pie chart into containerID.
	Pie(containerID, title string, categories []string, seriesName string, data []model.PieSlice) error

	// Categorical draws a bar or line chart into containerID.
	// categories and values are aligned 1:1.
	Categorical(containerID, title string, kind model.ChartKind, xLabel, yLabel string, categories []string, values []int) error
}

// Dispatch forwards one series to the matching Renderer method.
// Series and axis names are left empty, as the statistics view never sets them.
func Dispatch(r Renderer, s model.Series) error {
	if len(s.Categories) != len(s.Values) {
		return fmt.Errorf("%w: series %s has %d categories but %d values",
			model.ErrInvalidArgument, s.ContainerID, len(s.Categories), len(s.Values))
	}

	switch s.Kind {
	case model.ChartPie:
		return r.Pie(s.ContainerID, s.Title, s.Categories, "", s.Slices())
	case model.ChartBar, model.ChartLine:
		return r.Categorical(s.ContainerID, s.Title, s.Kind, "", "", s.Categories, s.Values)
	default:
		return fmt.Errorf("%w: unknown chart kind %q", model.ErrInvalidArgument, s.Kind)
	}
}

// DispatchAll forwards every series in order and stops at the first error.
func DispatchAll(r Renderer, series []model.Series) error {
	for _, s := range series {
		if err := Dispatch(r, s); err != nil {
			return err
		}
	}
	return nil
}

// BoundaryGap reports whether a categorical chart leaves blank space at both
// ends of the category axis. Line charts start at the axis edge; every other
// kind is padded.
func BoundaryGap(kind model.ChartKind) bool {
	return kind != model.ChartLine
}

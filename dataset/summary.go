package dataset

import (
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/longtail/pkg/errors"
)

// Summary describes a per-class count table.
type Summary struct {
	Classes int
	Total   int
	Max     int
	Min     int
	// ImbalanceRatio is Max/Min, +Inf when some class is empty.
	ImbalanceRatio float64
	Mean           float64
	StdDev         float64
}

// Summarize computes a Summary of counts.
func Summarize(counts []int) (Summary, error) {
	if len(counts) == 0 {
		return Summary{}, errors.NewModelError("Summarize", "no classes", errors.ErrEmptyData)
	}
	x := make([]float64, len(counts))
	for i, n := range counts {
		x[i] = float64(n)
	}
	mean, std := stat.PopMeanStdDev(x, nil)
	s := Summary{
		Classes: len(counts),
		Total:   int(floats.Sum(x)),
		Max:     int(floats.Max(x)),
		Min:     int(floats.Min(x)),
		Mean:    mean,
		StdDev:  std,
	}
	if s.Min == 0 {
		s.ImbalanceRatio = math.Inf(1)
	} else {
		s.ImbalanceRatio = float64(s.Max) / float64(s.Min)
	}
	return s, nil
}

// PlotClassCounts renders counts as a bar chart and writes it to w.
// format is any format accepted by gonum/plot ("png", "svg", "pdf", ...).
func PlotClassCounts(counts []int, w io.Writer, format string) error {
	if len(counts) == 0 {
		return errors.NewModelError("PlotClassCounts", "no classes", errors.ErrEmptyData)
	}
	values := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, n := range counts {
		values[i] = float64(n)
		names[i] = strconv.Itoa(i)
	}

	p := plot.New()
	p.Title.Text = "Samples per class"
	p.X.Label.Text = "Class"
	p.Y.Label.Text = "Samples"

	bars, err := plotter.NewBarChart(values, vg.Points(8))
	if err != nil {
		return errors.Wrap(err, "PlotClassCounts: bar chart")
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotter.DefaultLineStyle.Color
	p.Add(bars)
	p.NominalX(names...)

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, format)
	if err != nil {
		return errors.Wrapf(err, "PlotClassCounts: format %q", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "PlotClassCounts: write")
	}
	return nil
}

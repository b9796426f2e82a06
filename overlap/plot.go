package overlap

import (
	"image/color"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
)

// byCoverage returns a copy of results sorted descending by total query
// coverage (overlap plus the query-side remainder).  This ordering chooses
// the vertical stacking of the plot only; the TSV ranking is independent.
func byCoverage(results []Result) []Result {
	sorted := append([]Result(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Overlap+sorted[i].Outside1 > sorted[j].Overlap+sorted[j].Outside1
	})
	return sorted
}

// RenderPNG draws each result as three horizontal segments at one vertical
// offset: the overlap centered on zero, the query remainder extending left
// and the reference remainder extending right.  Colors are sampled from a
// perceptually uniform colormap.
func RenderPNG(results []Result, path string) error {
	p, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "overlap: creating plot")
	}
	cmap := moreland.Kindlmann()
	cmap.SetMin(0)
	cmap.SetMax(1)
	overlapColor, err := cmap.At(0)
	if err != nil {
		return errors.Wrap(err, "overlap: colormap")
	}
	queryColor, err := cmap.At(0.5)
	if err != nil {
		return errors.Wrap(err, "overlap: colormap")
	}
	refColor, err := cmap.At(0.8)
	if err != nil {
		return errors.Wrap(err, "overlap: colormap")
	}

	sorted := byCoverage(results)
	maxOutside := 1
	for _, r := range sorted {
		if r.Outside1 > maxOutside {
			maxOutside = r.Outside1
		}
		if r.Outside2 > maxOutside {
			maxOutside = r.Outside2
		}
	}
	for i, r := range sorted {
		y := float64(i)
		half := float64(r.Overlap) / 2
		if err := addSegment(p, -half, half, y, overlapColor); err != nil {
			return err
		}
		if err := addSegment(p, -half-float64(r.Outside1), -half, y, queryColor); err != nil {
			return err
		}
		if err := addSegment(p, half, half+float64(r.Outside2), y, refColor); err != nil {
			return err
		}
	}
	p.X.Min = -float64(maxOutside)
	p.X.Max = float64(maxOutside)
	p.Y.Min = -1
	p.Y.Max = float64(len(sorted))
	p.Y.Tick.Marker = plot.ConstantTicks{}
	return errors.Wrapf(p.Save(1000, 1000, path), "overlap: saving %s", path)
}

func addSegment(p *plot.Plot, x0, x1, y float64, c color.Color) error {
	l, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
	if err != nil {
		return errors.Wrap(err, "overlap: building segment")
	}
	l.Color = c
	p.Add(l)
	return nil
}

package visualization

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"opticalct/internal/models"
	"opticalct/pkg/imageio"
)

// Default snapshot size
const (
	SnapshotWidth  = 12 * vg.Inch
	SnapshotHeight = 4.5 * vg.Inch
)

// Plot builds a titled plot of plane p with its crosshair markers.
func (e *Explorer) Plot(p Plane) (*plot.Plot, error) {
	img := e.Image(p)
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	v := e.views[p]

	pl := plot.New()
	pl.Title.Text = p.Title()
	pl.HideAxes()
	pl.Add(plotter.NewImage(img, 0, 0, w, h))

	// Markers sit on pixel centres
	x := float64(v.VLine.Position) + 0.5
	y := float64(v.HLine.Position) + 0.5
	vline, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: h}})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertical marker: %w", err)
	}
	vline.Color = v.VLine.Color
	vline.Width = vg.Points(1)

	hline, err := plotter.NewLine(plotter.XYs{{X: 0, Y: y}, {X: w, Y: y}})
	if err != nil {
		return nil, fmt.Errorf("failed to create horizontal marker: %w", err)
	}
	hline.Color = v.HLine.Color
	hline.Width = vg.Points(1)

	pl.Add(vline, hline)
	pl.X.Min, pl.X.Max = 0, w
	pl.Y.Min, pl.Y.Max = 0, h
	return pl, nil
}

// Snapshot draws the three views side by side onto an image canvas.
func (e *Explorer) Snapshot(width, height vg.Length) (*vgimg.Canvas, error) {
	plots := [][]*plot.Plot{make([]*plot.Plot, len(Planes))}
	for j, p := range Planes {
		pl, err := e.Plot(p)
		if err != nil {
			return nil, err
		}
		plots[0][j] = pl
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	t := draw.Tiles{
		Rows:      1,
		Cols:      len(Planes),
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}

	canvases := plot.Align(plots, t, dc)
	for j := range plots[0] {
		plots[0][j].Draw(canvases[0][j])
	}
	return img, nil
}

// SaveSnapshot writes a PNG of the three views to path.
func (e *Explorer) SaveSnapshot(path string, width, height vg.Length) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("snapshot size must be positive: %w", models.ErrConfiguration)
	}
	c, err := e.Snapshot(width, height)
	if err != nil {
		return err
	}
	return imageio.WriteImage(path, c.Image())
}

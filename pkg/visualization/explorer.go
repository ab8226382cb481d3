package visualization

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"

	"opticalct/internal/models"
	"opticalct/pkg/imageio"
)

// Marker colours, one per plane whose position the marker shows
var markerColors = [3]color.RGBA{
	Coronal:    {G: 255, A: 255},
	Sagittal:   {R: 255, A: 255},
	Transverse: {B: 255, A: 255},
}

// Canvas is notified whenever a view needs to be redrawn.
type Canvas interface {
	Refresh(p Plane)
}

// Marker is a crosshair line showing the position along another plane.
type Marker struct {
	// Source is the plane whose index the marker follows
	Source   Plane
	Position int
	Color    color.RGBA
}

// View is the rendered state of one plane.
type View struct {
	Plane   Plane
	Section *models.Raster

	// VLine is drawn at column Position, HLine at row Position
	VLine Marker
	HLine Marker
}

// State holds the current section index of every plane.
type State [3]int

// Explorer owns a normalized volume and three linked orthogonal views.
// It is not safe for concurrent use; callers drive it from one event loop.
type Explorer struct {
	vol    *models.Volume
	state  State
	views  [3]View
	cmap   *Colormap
	clim   [2]float64
	canvas Canvas
}

// NewExplorer normalizes vol to the 8-bit range and opens every view at
// index zero. An empty cmap selects gray; a nil clim uses the volume range.
func NewExplorer(vol *models.Volume, cmap string, clim []float64) (*Explorer, error) {
	if vol == nil || len(vol.Data) == 0 || len(vol.Data) != vol.Rows*vol.Cols*vol.Depth*vol.Channels {
		return nil, fmt.Errorf("explorer needs a non-empty volume: %w", models.ErrDimensionMismatch)
	}

	norm := &models.Volume{Rows: vol.Rows, Cols: vol.Cols, Depth: vol.Depth, Channels: vol.Channels}
	norm.Data = make([]float64, len(vol.Data))
	for i, v := range imageio.Normalize(vol.Data) {
		norm.Data[i] = float64(v)
	}

	e := &Explorer{vol: norm}
	if err := e.SetColormap(cmap); err != nil {
		return nil, err
	}
	if err := e.SetDisplayLimits(clim); err != nil {
		return nil, err
	}

	// H and V markers per view, in the order of the original viewer layout
	e.views[Coronal] = View{Plane: Coronal, VLine: marker(Sagittal), HLine: marker(Transverse)}
	e.views[Sagittal] = View{Plane: Sagittal, VLine: marker(Coronal), HLine: marker(Transverse)}
	e.views[Transverse] = View{Plane: Transverse, VLine: marker(Sagittal), HLine: marker(Coronal)}
	for _, p := range Planes {
		e.views[p].Section = Section(e.vol, p, 0)
	}
	return e, nil
}

func marker(source Plane) Marker {
	return Marker{Source: source, Color: markerColors[source]}
}

// Attach registers the canvas that redraws views.
func (e *Explorer) Attach(c Canvas) {
	e.canvas = c
}

// Volume returns the normalized volume being explored.
func (e *Explorer) Volume() *models.Volume { return e.vol }

// State returns the current section indices.
func (e *Explorer) State() State { return e.state }

// Length returns the number of sections along p.
func (e *Explorer) Length(p Plane) int { return Length(e.vol, p) }

// View returns a copy of the current state of plane p.
func (e *Explorer) View(p Plane) View { return e.views[p] }

// Colormap returns the active colormap.
func (e *Explorer) Colormap() *Colormap { return e.cmap }

// DisplayLimits returns the intensities mapped to the ends of the colormap.
func (e *Explorer) DisplayLimits() (lo, hi float64) { return e.clim[0], e.clim[1] }

// SetIndex moves plane p to section i, clamped to the valid range. Only the
// section of p changes; the other two views get their markers moved.
func (e *Explorer) SetIndex(p Plane, i int) {
	if p < Coronal || p > Transverse {
		return
	}
	n := e.Length(p)
	if i < 0 {
		i = 0
	} else if i > n-1 {
		i = n - 1
	}

	e.state[p] = i
	e.views[p].Section = Section(e.vol, p, i)
	for _, q := range Planes {
		if q == p {
			continue
		}
		v := &e.views[q]
		if v.VLine.Source == p {
			v.VLine.Position = i
		}
		if v.HLine.Source == p {
			v.HLine.Position = i
		}
	}
	e.refresh(Planes[:]...)
}

// OnSlider handles a 1-based slider value for plane p. Fractional values
// are rounded and out of range values clamped.
func (e *Explorer) OnSlider(p Plane, value float64) {
	if math.IsNaN(value) {
		value = 1
	}
	value = math.Max(math.Min(value, float64(math.MaxInt32)), math.MinInt32)
	e.SetIndex(p, int(math.Round(value))-1)
}

// SetColormap switches every view to the named colormap.
func (e *Explorer) SetColormap(name string) error {
	cm, err := LookupColormap(name)
	if err != nil {
		return err
	}
	e.cmap = cm
	e.refresh(Planes[:]...)
	return nil
}

// SetDisplayLimits sets the [min, max] intensity window. An empty clim
// resets the window to the range of the volume.
func (e *Explorer) SetDisplayLimits(clim []float64) error {
	switch len(clim) {
	case 0:
		e.clim = [2]float64{floats.Min(e.vol.Data), floats.Max(e.vol.Data)}
	case 2:
		if math.IsNaN(clim[0]) || math.IsNaN(clim[1]) || clim[0] > clim[1] {
			return fmt.Errorf("display limits must satisfy min <= max, got %v: %w", clim, models.ErrConfiguration)
		}
		e.clim = [2]float64{clim[0], clim[1]}
	default:
		return fmt.Errorf("display limits need min and max, got %d values: %w", len(clim), models.ErrConfiguration)
	}
	e.refresh(Planes[:]...)
	return nil
}

func (e *Explorer) refresh(planes ...Plane) {
	if e.canvas == nil {
		return
	}
	for _, p := range planes {
		e.canvas.Refresh(p)
	}
}

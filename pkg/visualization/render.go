package visualization

import (
	"image"
	"image/color"
)

// Image renders the section of plane p with the active colormap and display
// limits. Row zero of the section is drawn at the bottom of the image.
// Colour volumes are drawn as RGB and ignore the colormap.
func (e *Explorer) Image(p Plane) *image.RGBA {
	s := e.views[p].Section
	img := image.NewRGBA(image.Rect(0, 0, s.Cols, s.Rows))
	lo, hi := e.clim[0], e.clim[1]

	for r := 0; r < s.Rows; r++ {
		y := s.Rows - 1 - r
		for c := 0; c < s.Cols; c++ {
			var px color.RGBA
			if s.Channels >= 3 {
				px = color.RGBA{
					R: uint8(s.At(r, c, 0)),
					G: uint8(s.At(r, c, 1)),
					B: uint8(s.At(r, c, 2)),
					A: 255,
				}
			} else {
				px = e.cmap.At(window(s.At(r, c, 0), lo, hi))
			}
			img.SetRGBA(c, y, px)
		}
	}
	return img
}

// Render draws the section of plane p with its crosshair markers on top.
func (e *Explorer) Render(p Plane) *image.RGBA {
	img := e.Image(p)
	v := e.views[p]
	b := img.Bounds()

	if x := v.VLine.Position; x >= 0 && x < b.Dx() {
		for y := 0; y < b.Dy(); y++ {
			img.SetRGBA(x, y, v.VLine.Color)
		}
	}
	if row := v.HLine.Position; row >= 0 && row < b.Dy() {
		y := b.Dy() - 1 - row
		for x := 0; x < b.Dx(); x++ {
			img.SetRGBA(x, y, v.HLine.Color)
		}
	}
	return img
}

// window maps v into [0, 1] relative to the display limits
func window(v, lo, hi float64) float64 {
	if hi <= lo {
		if v > lo {
			return 1
		}
		return 0
	}
	return (v - lo) / (hi - lo)
}

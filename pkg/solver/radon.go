package solver

import (
	"math"

	"opticalct/internal/models"
)

// geometry caches the parallel-beam layout shared by the forward projector
// and both back-projectors: a square n×n grid centred on the rotation axis
// and n detector bins. Only pixels inside the inscribed circle are
// reconstructed, since pixels outside it are not seen by every projection.
type geometry struct {
	n      int
	center float64

	// pixel index and centred coordinates of every pixel inside the circle
	pix    []int
	xr, yr []float64

	cos, sin []float64
}

func newGeometry(n int, angles []float64) *geometry {
	g := &geometry{n: n, center: float64(n-1) / 2}
	r2 := g.center*g.center + 1e-9
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			xr := float64(x) - g.center
			yr := g.center - float64(y)
			if xr*xr+yr*yr <= r2 {
				g.pix = append(g.pix, y*n+x)
				g.xr = append(g.xr, xr)
				g.yr = append(g.yr, yr)
			}
		}
	}
	g.cos = make([]float64, len(angles))
	g.sin = make([]float64, len(angles))
	for i, a := range angles {
		rad := a * math.Pi / 180
		g.cos[i] = math.Cos(rad)
		g.sin[i] = math.Sin(rad)
	}
	return g
}

// bin returns the lower detector bin hit by pixel k at projection a and the
// interpolation weight of the next bin.
func (g *geometry) bin(k, a int) (int, float64) {
	s := g.xr[k]*g.cos[a] + g.yr[k]*g.sin[a] + g.center
	b := math.Floor(s)
	return int(b), s - b
}

// project accumulates the forward projection of img at angle a into proj
// and the per-bin sum of interpolation weights into norm.
func (g *geometry) project(img []float64, a int, proj, norm []float64) {
	for i := range proj {
		proj[i] = 0
		if norm != nil {
			norm[i] = 0
		}
	}
	for k, p := range g.pix {
		b0, f := g.bin(k, a)
		v := img[p]
		if b0 >= 0 && b0 < g.n {
			proj[b0] += (1 - f) * v
			if norm != nil {
				norm[b0] += 1 - f
			}
		}
		if b1 := b0 + 1; f > 0 && b1 >= 0 && b1 < g.n {
			proj[b1] += f * v
			if norm != nil {
				norm[b1] += f
			}
		}
	}
}

// backproject adds scale times the interpolated detector profile at angle a
// to every pixel inside the circle.
func (g *geometry) backproject(img []float64, a int, profile []float64, scale float64) {
	for k, p := range g.pix {
		b0, f := g.bin(k, a)
		var v float64
		if b0 >= 0 && b0 < g.n {
			v += (1 - f) * profile[b0]
		}
		if b1 := b0 + 1; f > 0 && b1 >= 0 && b1 < g.n {
			v += f * profile[b1]
		}
		img[p] += scale * v
	}
}

// Project computes the parallel-beam Radon transform of a square image,
// returning a sinogram with one detector bin per image column. It is the
// forward model the SART solver inverts and is used to synthesize phantoms.
func Project(img *models.Raster, angles []float64) *models.Sinogram {
	n := img.Cols
	g := newGeometry(n, angles)
	sino := models.NewSinogram(n, len(angles))
	proj := make([]float64, n)
	for a := range angles {
		g.project(img.Data, a, proj, nil)
		for c, v := range proj {
			sino.Set(c, a, v)
		}
	}
	return sino
}

package solver

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"opticalct/internal/models"
)

// FBP is filtered back-projection with a ramp filter. It is a single pass
// and much faster than SART, at the cost of streaks when projections are few.
type FBP struct{}

// Solve implements Solver.
func (FBP) Solve(sino *models.Sinogram, angles []float64) (*models.Raster, error) {
	if err := validate(sino, angles); err != nil {
		return nil, err
	}

	n := sino.Columns
	size := nextPow2(2 * n)
	fft := fourier.NewFFT(size)

	// Ramp filter |f| on the non-negative half spectrum
	ramp := make([]float64, size/2+1)
	for k := range ramp {
		ramp[k] = 2 * float64(k) / float64(size)
	}

	g := newGeometry(n, angles)
	out := models.NewRaster(n, n, 1)

	padded := make([]float64, size)
	var coeff []complex128
	var filtered []float64
	profile := make([]float64, n)
	scale := math.Pi / (2 * float64(len(angles)))
	for a := range angles {
		for i := range padded {
			padded[i] = 0
		}
		copy(padded, sino.Projection(a, profile))

		coeff = fft.Coefficients(coeff, padded)
		for k := range coeff {
			coeff[k] *= complex(ramp[k], 0)
		}
		filtered = fft.Sequence(filtered, coeff)
		for i := 0; i < n; i++ {
			profile[i] = filtered[i] / float64(size)
		}

		g.backproject(out.Data, a, profile, scale)
	}

	if err := checkFinite(out); err != nil {
		return nil, err
	}
	return out, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

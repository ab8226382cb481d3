package solver

import (
	"fmt"

	"opticalct/internal/models"
)

// minWeight guards detector bins that no pixel of the circle reaches.
const minWeight = 1e-6

// SART is the simultaneous algebraic reconstruction technique: for every
// projection in turn, the current estimate is forward projected, the
// per-bin residual is normalized by the ray weight and back-projected with
// a relaxation factor. Iterations sweeps over all projections are run
// starting from a zero image.
type SART struct {
	Iterations int
	Relaxation float64
}

// Solve implements Solver.
func (s *SART) Solve(sino *models.Sinogram, angles []float64) (*models.Raster, error) {
	if err := validate(sino, angles); err != nil {
		return nil, err
	}
	iterations := s.Iterations
	if iterations < 1 {
		iterations = 1
	}
	if s.Relaxation <= 0 || s.Relaxation >= 2 {
		return nil, fmt.Errorf("relaxation %g outside (0, 2): %w", s.Relaxation, models.ErrReconstruction)
	}

	n := sino.Columns
	g := newGeometry(n, angles)
	out := models.NewRaster(n, n, 1)

	proj := make([]float64, n)
	norm := make([]float64, n)
	meas := make([]float64, n)
	for it := 0; it < iterations; it++ {
		for a := range angles {
			g.project(out.Data, a, proj, norm)
			meas = sino.Projection(a, meas)
			for b := range proj {
				if norm[b] > minWeight {
					proj[b] = (meas[b] - proj[b]) / norm[b]
				} else {
					proj[b] = 0
				}
			}
			g.backproject(out.Data, a, proj, s.Relaxation)
		}
	}

	if err := checkFinite(out); err != nil {
		return nil, err
	}
	return out, nil
}

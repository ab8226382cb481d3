// Package solver provides the reconstruction algorithms that turn one
// sinogram into one cross-sectional slice.
//
// A Solver takes a sinogram of shape (columns, projections) and the
// acquisition angle of every projection in degrees, and returns a square
// columns×columns slice. Solvers are deterministic and side-effect free, so
// the reconstruction pipeline may call them concurrently.
package solver

import (
	"fmt"
	"math"
	"strings"

	"opticalct/internal/models"
)

// Solver reconstructs one slice from one sinogram.
type Solver interface {
	Solve(sino *models.Sinogram, angles []float64) (*models.Raster, error)
}

// New returns the solver registered under name ("sart" or "fbp").
func New(name string, iterations int, relaxation float64) (Solver, error) {
	switch strings.ToLower(name) {
	case "", "sart":
		return &SART{Iterations: iterations, Relaxation: relaxation}, nil
	case "fbp":
		return &FBP{}, nil
	default:
		return nil, fmt.Errorf("unknown solver %q: %w", name, models.ErrConfiguration)
	}
}

func validate(sino *models.Sinogram, angles []float64) error {
	if sino == nil || sino.Columns < 1 || sino.Projections < 1 {
		return fmt.Errorf("empty sinogram: %w", models.ErrReconstruction)
	}
	if len(sino.Data) != sino.Columns*sino.Projections {
		return fmt.Errorf("sinogram data length %d does not match shape (%d, %d): %w",
			len(sino.Data), sino.Columns, sino.Projections, models.ErrReconstruction)
	}
	if len(angles) != sino.Projections {
		return fmt.Errorf("%d angles for %d projections: %w",
			len(angles), sino.Projections, models.ErrReconstruction)
	}
	return nil
}

func checkFinite(img *models.Raster) error {
	for i, v := range img.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite voxel at %d: %w", i, models.ErrReconstruction)
		}
	}
	return nil
}

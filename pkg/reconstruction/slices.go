package reconstruction

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"opticalct/internal/models"
	"opticalct/pkg/sinogram"
	"opticalct/pkg/solver"
)

// ReconstructSlice runs the solver on one sinogram and checks the result.
// Any failure is reported as ErrReconstruction.
func ReconstructSlice(s solver.Solver, sino *models.Sinogram, angles []float64) (*models.Raster, error) {
	slice, err := s.Solve(sino, angles)
	if err != nil {
		if errors.Is(err, models.ErrReconstruction) {
			return nil, err
		}
		return nil, fmt.Errorf("%v: %w", err, models.ErrReconstruction)
	}
	if slice == nil || slice.Rows < 1 || slice.Cols < 1 || slice.Channels != 1 ||
		len(slice.Data) != slice.Rows*slice.Cols {
		return nil, fmt.Errorf("solver returned an invalid slice: %w", models.ErrReconstruction)
	}
	return slice, nil
}

// ReconstructVolume builds one sinogram per image row and reconstructs them
// into a volume whose depth equals the image row count.
func ReconstructVolume(ctx context.Context, images []*models.Raster, angles []float64,
	s solver.Solver, workers int) (*models.Volume, error) {
	sinos, err := sinogram.Build(images)
	if err != nil {
		return nil, err
	}
	return ReconstructSinograms(ctx, sinos, angles, s, workers)
}

// ReconstructSinograms solves every sinogram on a bounded worker pool and
// stacks the slices along the depth axis in sinogram order. The first
// failing slice aborts the whole volume; no partial volume is returned.
func ReconstructSinograms(ctx context.Context, sinos []*models.Sinogram, angles []float64,
	s solver.Solver, workers int) (*models.Volume, error) {
	if len(sinos) == 0 {
		return nil, fmt.Errorf("no sinograms to reconstruct: %w", models.ErrReconstruction)
	}
	if workers < 1 {
		workers = 1
	}

	slices := make([]*models.Raster, len(sinos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for r := range sinos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slice, err := ReconstructSlice(s, sinos[r], angles)
			if err != nil {
				return fmt.Errorf("slice %d: %w", r, err)
			}
			slices[r] = slice
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	first := slices[0]
	vol := models.NewVolume(first.Rows, first.Cols, len(slices), 1)
	for d, slice := range slices {
		if err := vol.SetSlice(d, slice); err != nil {
			return nil, fmt.Errorf("solver returned slices of differing shape: %v: %w", err, models.ErrReconstruction)
		}
	}
	return vol, nil
}

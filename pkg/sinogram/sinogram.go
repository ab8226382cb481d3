// Package sinogram reorganizes a stack of projection images into one
// sinogram per image row.
package sinogram

import (
	"fmt"

	"opticalct/internal/models"
)

// Build converts N projections of shape R×C into R sinograms of shape (C, N).
//
// Sinogram r holds physical row R-1-r of every projection, so row 0 of the
// sinogram set is the bottom row of the images:
//
//	sinograms[r][:, i] = images[i][R-1-r, :]
//
// The images must be single-channel and share the same shape.
func Build(images []*models.Raster) ([]*models.Sinogram, error) {
	if err := models.CheckSameShape(images); err != nil {
		return nil, err
	}
	if images[0].Channels != 1 {
		return nil, fmt.Errorf("sinograms need intensity images, got %d channels: %w",
			images[0].Channels, models.ErrDimensionMismatch)
	}

	rows, cols, n := images[0].Rows, images[0].Cols, len(images)
	sinos := make([]*models.Sinogram, rows)
	for r := range sinos {
		sinos[r] = models.NewSinogram(cols, n)
	}

	for i, im := range images {
		for r := 0; r < rows; r++ {
			src := im.Data[(rows-1-r)*cols : (rows-r)*cols]
			s := sinos[r]
			for c, v := range src {
				s.Data[c*n+i] = v
			}
		}
	}
	return sinos, nil
}

// Angles returns the acquisition angle in degrees of each of n projections
// taken step degrees apart, starting at zero.
func Angles(n int, step float64) []float64 {
	theta := make([]float64, n)
	for i := range theta {
		theta[i] = float64(i) * step
	}
	return theta
}

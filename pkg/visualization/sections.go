// Package visualization renders orthogonal cross-sections of reconstructed
// volumes and keeps three linked views consistent while they are explored.
package visualization

import (
	"fmt"

	"opticalct/internal/models"
)

// Plane identifies one of the three orthogonal viewing axes.
type Plane int

const (
	// Coronal sections cut the first (row) axis
	Coronal Plane = iota
	// Sagittal sections cut the second (column) axis
	Sagittal
	// Transverse sections cut the third (depth) axis
	Transverse
)

// Planes lists the viewing axes in display order.
var Planes = [3]Plane{Coronal, Sagittal, Transverse}

func (p Plane) String() string {
	switch p {
	case Coronal:
		return "coronal"
	case Sagittal:
		return "sagittal"
	case Transverse:
		return "transverse"
	default:
		return fmt.Sprintf("plane(%d)", int(p))
	}
}

// Title is the heading shown above a view.
func (p Plane) Title() string {
	switch p {
	case Coronal:
		return "Coronal"
	case Sagittal:
		return "Sagittal"
	case Transverse:
		return "Transverse"
	default:
		return p.String()
	}
}

// Length returns the number of sections along plane p.
func Length(vol *models.Volume, p Plane) int {
	switch p {
	case Coronal:
		return vol.Rows
	case Sagittal:
		return vol.Cols
	default:
		return vol.Depth
	}
}

// Section returns the cross-section of vol at index i along plane p.
func Section(vol *models.Volume, p Plane, i int) *models.Raster {
	switch p {
	case Coronal:
		return CoronalSection(vol, i)
	case Sagittal:
		return SagittalSection(vol, i)
	default:
		return TransverseSection(vol, i)
	}
}

// CoronalSection returns the slice at row i, rotated a quarter turn
// clockwise and then mirrored left to right. The result is depth × cols
// with out[d][c] = vol[i, c, d].
func CoronalSection(vol *models.Volume, i int) *models.Raster {
	out := models.NewRaster(vol.Depth, vol.Cols, vol.Channels)
	for d := 0; d < vol.Depth; d++ {
		for c := 0; c < vol.Cols; c++ {
			for ch := 0; ch < vol.Channels; ch++ {
				out.Set(d, c, ch, vol.At(i, c, d, ch))
			}
		}
	}
	return out
}

// SagittalSection returns the slice at column i rotated a quarter turn
// clockwise. The result is depth × rows with out[d][r] = vol[R-1-r, i, d].
func SagittalSection(vol *models.Volume, i int) *models.Raster {
	out := models.NewRaster(vol.Depth, vol.Rows, vol.Channels)
	for d := 0; d < vol.Depth; d++ {
		for r := 0; r < vol.Rows; r++ {
			for ch := 0; ch < vol.Channels; ch++ {
				out.Set(d, r, ch, vol.At(vol.Rows-1-r, i, d, ch))
			}
		}
	}
	return out
}

// TransverseSection returns the slice at depth i unchanged.
func TransverseSection(vol *models.Volume, i int) *models.Raster {
	return vol.Slice(i)
}

// ExtractRegion copies the sub-volume starting at (row, col, depth) with the
// given size. The region must lie inside vol.
func ExtractRegion(vol *models.Volume, row, col, depth, rows, cols, depths int) (*models.Volume, error) {
	if row < 0 || col < 0 || depth < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative: %w", models.ErrOutOfBounds)
	}
	if rows <= 0 || cols <= 0 || depths <= 0 {
		return nil, fmt.Errorf("size dimensions must be positive: %w", models.ErrOutOfBounds)
	}
	if row+rows > vol.Rows || col+cols > vol.Cols || depth+depths > vol.Depth {
		return nil, fmt.Errorf("region extends beyond volume %s: %w", vol.Shape(), models.ErrOutOfBounds)
	}

	region := models.NewVolume(rows, cols, depths, vol.Channels)
	for d := 0; d < depths; d++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				for ch := 0; ch < vol.Channels; ch++ {
					region.Set(r, c, d, ch, vol.At(row+r, col+c, depth+d, ch))
				}
			}
		}
	}
	return region, nil
}

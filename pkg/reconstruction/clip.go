package reconstruction

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"opticalct/internal/models"
)

// ClipStats records the statistics a volume was clipped with.
type ClipStats struct {
	// Median and Std are taken over every voxel before clipping
	Median float64
	Std    float64

	// Low and High are the clip bounds Median ± k·Std
	Low  float64
	High float64
}

// Clip limits every voxel of vol to median ± k·σ of the volume itself,
// suppressing streaks and outlier intensities. It modifies vol in place.
func Clip(vol *models.Volume, k float64) ClipStats {
	if len(vol.Data) == 0 {
		return ClipStats{}
	}

	_, variance := stat.PopMeanVariance(vol.Data, nil)
	std := math.Sqrt(variance)
	med := median(vol.Data)

	cs := ClipStats{
		Median: med,
		Std:    std,
		Low:    med - k*std,
		High:   med + k*std,
	}
	for i, v := range vol.Data {
		if v < cs.Low {
			vol.Data[i] = cs.Low
		} else if v > cs.High {
			vol.Data[i] = cs.High
		}
	}
	return cs
}

// median calculates the median value of a slice of float64 values
func median(values []float64) float64 {
	// Create a copy to avoid modifying the original
	valuesCopy := make([]float64, len(values))
	copy(valuesCopy, values)

	sort.Float64s(valuesCopy)

	n := len(valuesCopy)
	if n == 0 {
		return 0
	}

	if n%2 == 0 {
		return (valuesCopy[n/2-1] + valuesCopy[n/2]) / 2
	}

	return valuesCopy[n/2]
}

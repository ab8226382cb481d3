package models

import "fmt"

// Volume represents a 3-D reconstruction, optionally with a channel axis.
// Axes follow the viewer convention: rows (coronal), cols (sagittal),
// depth (transverse).
type Volume struct {
	// Rows, Cols, Depth are the spatial dimensions in voxels
	Rows, Cols, Depth int

	// Channels is 1 for intensity volumes and 3 for recombined colour volumes
	Channels int

	// Data is stored depth-major so that every transverse slice is contiguous:
	// Data[((d*Rows+r)*Cols+c)*Channels+ch]
	Data []float64
}

// NewVolume allocates a zeroed volume.
func NewVolume(rows, cols, depth, channels int) *Volume {
	if channels < 1 {
		channels = 1
	}
	return &Volume{
		Rows:     rows,
		Cols:     cols,
		Depth:    depth,
		Channels: channels,
		Data:     make([]float64, rows*cols*depth*channels),
	}
}

func (v *Volume) index(r, c, d, ch int) int {
	return ((d*v.Rows+r)*v.Cols+c)*v.Channels + ch
}

// At returns the voxel value at (r, c, d) in channel ch.
func (v *Volume) At(r, c, d, ch int) float64 {
	return v.Data[v.index(r, c, d, ch)]
}

// Set stores a voxel value.
func (v *Volume) Set(r, c, d, ch int, val float64) {
	v.Data[v.index(r, c, d, ch)] = val
}

// Shape formats the dimensions for error messages.
func (v *Volume) Shape() string {
	return fmt.Sprintf("%dx%dx%dx%d", v.Rows, v.Cols, v.Depth, v.Channels)
}

// Slice returns a copy of the transverse slice at depth d.
func (v *Volume) Slice(d int) *Raster {
	n := v.Rows * v.Cols * v.Channels
	out := NewRaster(v.Rows, v.Cols, v.Channels)
	copy(out.Data, v.Data[d*n:(d+1)*n])
	return out
}

// SetSlice writes a raster into the transverse slice at depth d.
func (v *Volume) SetSlice(d int, s *Raster) error {
	if s.Rows != v.Rows || s.Cols != v.Cols || s.Channels != v.Channels {
		return fmt.Errorf("slice %d has shape %s, volume expects %dx%d: %w",
			d, s.Shape(), v.Rows, v.Cols, ErrDimensionMismatch)
	}
	n := v.Rows * v.Cols * v.Channels
	copy(v.Data[d*n:(d+1)*n], s.Data)
	return nil
}

// SetChannel writes a single-channel volume into channel slot ch.
func (v *Volume) SetChannel(ch int, src *Volume) error {
	if src.Rows != v.Rows || src.Cols != v.Cols || src.Depth != v.Depth || src.Channels != 1 {
		return fmt.Errorf("channel %d volume has shape %s, expected %dx%dx%dx1: %w",
			ch, src.Shape(), v.Rows, v.Cols, v.Depth, ErrDimensionMismatch)
	}
	for i, val := range src.Data {
		v.Data[i*v.Channels+ch] = val
	}
	return nil
}

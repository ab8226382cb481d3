package models

import "fmt"

// Raster is a 2-D image with an optional channel axis. Projection images,
// reconstructed slices and viewer cross-sections all share this layout.
type Raster struct {
	// Rows is the image height in pixels
	Rows int

	// Cols is the image width in pixels
	Cols int

	// Channels is 1 for intensity images and 3 for colour images
	Channels int

	// Data holds the pixel values in row-major order with interleaved channels
	Data []float64
}

// NewRaster allocates a zeroed raster of the given shape.
func NewRaster(rows, cols, channels int) *Raster {
	if channels < 1 {
		channels = 1
	}
	return &Raster{
		Rows:     rows,
		Cols:     cols,
		Channels: channels,
		Data:     make([]float64, rows*cols*channels),
	}
}

// At returns the value at row r, column c and channel ch.
func (r *Raster) At(row, col, ch int) float64 {
	return r.Data[(row*r.Cols+col)*r.Channels+ch]
}

// Set stores v at row r, column c and channel ch.
func (r *Raster) Set(row, col, ch int, v float64) {
	r.Data[(row*r.Cols+col)*r.Channels+ch] = v
}

// SameShape reports whether two rasters have identical dimensions.
func (r *Raster) SameShape(o *Raster) bool {
	return r.Rows == o.Rows && r.Cols == o.Cols && r.Channels == o.Channels
}

// Shape formats the dimensions for error messages.
func (r *Raster) Shape() string {
	if r.Channels == 1 {
		return fmt.Sprintf("%dx%d", r.Rows, r.Cols)
	}
	return fmt.Sprintf("%dx%dx%d", r.Rows, r.Cols, r.Channels)
}

// Plane extracts a single channel as an intensity raster.
// For single-channel rasters it returns a copy.
func (r *Raster) Plane(ch int) *Raster {
	out := NewRaster(r.Rows, r.Cols, 1)
	for i := 0; i < r.Rows*r.Cols; i++ {
		out.Data[i] = r.Data[i*r.Channels+ch]
	}
	return out
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	out := &Raster{Rows: r.Rows, Cols: r.Cols, Channels: r.Channels}
	out.Data = append([]float64(nil), r.Data...)
	return out
}

// CheckSameShape verifies that every raster in a sequence shares the shape of the first.
func CheckSameShape(images []*Raster) error {
	if len(images) == 0 {
		return fmt.Errorf("empty image sequence: %w", ErrDimensionMismatch)
	}
	for i, im := range images[1:] {
		if !im.SameShape(images[0]) {
			return fmt.Errorf("image %d has shape %s, expected %s: %w",
				i+1, im.Shape(), images[0].Shape(), ErrDimensionMismatch)
		}
	}
	return nil
}

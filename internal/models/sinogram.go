package models

// Sinogram holds every projection of one cross-section line.
// Its shape is (Columns, Projections): column index along the detector,
// projection index along the acquisition angle.
type Sinogram struct {
	Columns     int
	Projections int

	// Data is row-major: Data[c*Projections+i]
	Data []float64
}

// NewSinogram allocates a zeroed sinogram.
func NewSinogram(columns, projections int) *Sinogram {
	return &Sinogram{
		Columns:     columns,
		Projections: projections,
		Data:        make([]float64, columns*projections),
	}
}

// At returns the detector value at column c of projection i.
func (s *Sinogram) At(c, i int) float64 {
	return s.Data[c*s.Projections+i]
}

// Set stores a detector value at column c of projection i.
func (s *Sinogram) Set(c, i int, v float64) {
	s.Data[c*s.Projections+i] = v
}

// Projection copies out the detector profile of projection i.
func (s *Sinogram) Projection(i int, dst []float64) []float64 {
	if cap(dst) < s.Columns {
		dst = make([]float64, s.Columns)
	}
	dst = dst[:s.Columns]
	for c := 0; c < s.Columns; c++ {
		dst[c] = s.Data[c*s.Projections+i]
	}
	return dst
}

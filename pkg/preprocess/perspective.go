package preprocess

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"opticalct/internal/models"
)

// Point is a sub-pixel image coordinate: X along columns, Y along rows.
type Point struct {
	X, Y float64
}

// Homography is a 3×3 projective mapping in row-major order.
type Homography [9]float64

// Apply maps p through the homography.
func (h Homography) Apply(p Point) (Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if w == 0 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// collinearTol is the minimum triangle area (in square pixels) for three
// corners to count as non-collinear.
const collinearTol = 1e-9

// EstimateHomography solves for the projective mapping taking each from[i]
// to to[i]. It fails with ErrDegenerateTransform when any three corners of
// either set are collinear or the linear system cannot be solved.
func EstimateHomography(from, to [4]Point) (Homography, error) {
	if err := checkQuad(from); err != nil {
		return Homography{}, err
	}
	if err := checkQuad(to); err != nil {
		return Homography{}, err
	}

	// Direct linear transform with h[8] fixed to 1
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := from[i].X, from[i].Y
		u, v := to[i].X, to[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("solve homography: %v: %w", err, models.ErrDegenerateTransform)
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = sol.AtVec(i)
		if math.IsNaN(h[i]) || math.IsInf(h[i], 0) {
			return Homography{}, fmt.Errorf("homography is not finite: %w", models.ErrDegenerateTransform)
		}
	}
	h[8] = 1
	return h, nil
}

func checkQuad(q [4]Point) error {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			for k := j + 1; k < 4; k++ {
				if math.Abs(cross(q[i], q[j], q[k])) < collinearTol {
					return fmt.Errorf("corners %d, %d and %d are collinear: %w", i, j, k, models.ErrDegenerateTransform)
				}
			}
		}
	}
	return nil
}

func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// PerspectiveCorrect warps img so that the source corners land on the
// destination corners. The output canvas spans from the origin to the
// largest destination coordinate on each axis. Output pixels that map
// outside the source image are zero; others are bilinearly interpolated.
func PerspectiveCorrect(img *models.Raster, source, dest [4]Point) (*models.Raster, error) {
	// The inverse map is estimated directly: destination pixel -> source pixel
	inv, err := EstimateHomography(dest, source)
	if err != nil {
		return nil, err
	}

	var maxX, maxY float64
	for _, p := range dest {
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	w, h := int(math.Round(maxX)), int(math.Round(maxY))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("destination corners span an empty canvas %dx%d: %w", w, h, models.ErrDegenerateTransform)
	}

	out := models.NewRaster(h, w, img.Channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p, ok := inv.Apply(Point{X: float64(x), Y: float64(y)})
			if !ok {
				continue
			}
			for ch := 0; ch < img.Channels; ch++ {
				out.Set(y, x, ch, bilinear(img, p, ch))
			}
		}
	}
	return out, nil
}

// PerspectiveCorrectAll applies the same correction to every image.
func PerspectiveCorrectAll(images []*models.Raster, source, dest [4]Point) ([]*models.Raster, error) {
	if err := models.CheckSameShape(images); err != nil {
		return nil, err
	}
	out := make([]*models.Raster, len(images))
	for i, im := range images {
		c, err := PerspectiveCorrect(im, source, dest)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// bilinear samples channel ch at p, returning zero outside the image.
func bilinear(img *models.Raster, p Point, ch int) float64 {
	const eps = 1e-6
	if p.X < -eps || p.Y < -eps || p.X > float64(img.Cols-1)+eps || p.Y > float64(img.Rows-1)+eps {
		return 0
	}
	p.X = math.Min(math.Max(p.X, 0), float64(img.Cols-1))
	p.Y = math.Min(math.Max(p.Y, 0), float64(img.Rows-1))
	x0, y0 := int(math.Floor(p.X)), int(math.Floor(p.Y))
	x1, y1 := x0+1, y0+1
	if x1 >= img.Cols {
		x1 = x0
	}
	if y1 >= img.Rows {
		y1 = y0
	}
	fx, fy := p.X-float64(x0), p.Y-float64(y0)

	top := img.At(y0, x0, ch)*(1-fx) + img.At(y0, x1, ch)*fx
	bottom := img.At(y1, x0, ch)*(1-fx) + img.At(y1, x1, ch)*fx
	return top*(1-fy) + bottom*fy
}

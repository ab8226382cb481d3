// Package imageio loads projection images from disk and writes normalized
// 8-bit slices back out.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/tiff" // register TIFF decoding
	"gonum.org/v1/gonum/floats"

	"opticalct/internal/models"
)

// Extensions lists the file suffixes picked up by Load.
var Extensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"}

// Luminance weights used for grayscale conversion (ITU-R 709)
const (
	lumR = 0.2125
	lumG = 0.7154
	lumB = 0.0721
)

// List returns the image files in dir sorted by filename.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %v: %w", dir, err, models.ErrIO)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range Extensions {
			if ext == want {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// Load reads every image in dir in filename order. With gray set, colour
// images are converted to luminance in [0, 1]; otherwise pixel values keep
// their stored range (0..65535 for 16-bit grayscale, 0..255 otherwise) and
// colour images carry three channels.
// All images must share the same shape.
func Load(dir string, gray bool) ([]*models.Raster, error) {
	files, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s: %w", dir, models.ErrIO)
	}

	images := make([]*models.Raster, 0, len(files))
	for _, f := range files {
		img, err := Decode(f)
		if err != nil {
			return nil, err
		}
		r := FromImage(img, gray)
		if len(images) > 0 && !r.SameShape(images[0]) {
			return nil, fmt.Errorf("%s has shape %s, expected %s: %w",
				filepath.Base(f), r.Shape(), images[0].Shape(), models.ErrDimensionMismatch)
		}
		images = append(images, r)
	}
	return images, nil
}

// LoadVolume stacks the images of dir along the depth axis.
func LoadVolume(dir string) (*models.Volume, error) {
	images, err := Load(dir, false)
	if err != nil {
		return nil, err
	}
	first := images[0]
	vol := models.NewVolume(first.Rows, first.Cols, len(images), first.Channels)
	for d, im := range images {
		if err := vol.SetSlice(d, im); err != nil {
			return nil, err
		}
	}
	return vol, nil
}

// Decode opens and decodes a single image file.
func Decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, models.ErrIO)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", path, err, models.ErrIO)
	}
	return img, nil
}

// FromImage converts a decoded image into a raster.
func FromImage(img image.Image, gray bool) *models.Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch {
	case gray:
		out := models.NewRaster(h, w, 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				out.Data[y*w+x] = (lumR*float64(r) + lumG*float64(g) + lumB*float64(bl)) / 65535.0
			}
		}
		return out

	case img.ColorModel() == color.Gray16Model:
		out := models.NewRaster(h, w, 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				out.Data[y*w+x] = float64(c.Y)
			}
		}
		return out

	case img.ColorModel() == color.GrayModel:
		out := models.NewRaster(h, w, 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
				out.Data[y*w+x] = float64(c.Y)
			}
		}
		return out

	default:
		out := models.NewRaster(h, w, 3)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := (y*w + x) * 3
				out.Data[i] = float64(c.R)
				out.Data[i+1] = float64(c.G)
				out.Data[i+2] = float64(c.B)
			}
		}
		return out
	}
}

// Luminance collapses multi-channel rasters to one channel with the same
// weights as grayscale loading. Dividing by maxValue brings 8-bit data into
// the [0, 1] range Load produces. Single channel rasters are cloned.
func Luminance(images []*models.Raster, maxValue float64) []*models.Raster {
	out := make([]*models.Raster, len(images))
	for i, im := range images {
		if im.Channels < 3 {
			out[i] = im.Plane(0)
			continue
		}
		g := models.NewRaster(im.Rows, im.Cols, 1)
		for p := 0; p < im.Rows*im.Cols; p++ {
			px := im.Data[p*im.Channels:]
			g.Data[p] = (lumR*px[0] + lumG*px[1] + lumB*px[2]) / maxValue
		}
		out[i] = g
	}
	return out
}

// Normalize maps the value range of data linearly onto [0, 255].
// A constant input maps to zero.
func Normalize(data []float64) []uint8 {
	out := make([]uint8, len(data))
	if len(data) == 0 {
		return out
	}
	lo, hi := floats.Min(data), floats.Max(data)
	ptp := hi - lo
	if ptp == 0 {
		return out
	}
	for i, v := range data {
		out[i] = uint8((v - lo) / ptp * 255)
	}
	return out
}

// ToImage renders a raster as a normalized 8-bit image: Gray for one
// channel, NRGBA for three or four.
func ToImage(r *models.Raster) image.Image {
	pix := Normalize(r.Data)
	rect := image.Rect(0, 0, r.Cols, r.Rows)

	if r.Channels == 1 {
		img := image.NewGray(rect)
		copy(img.Pix, pix)
		return img
	}

	img := image.NewNRGBA(rect)
	for i := 0; i < r.Rows*r.Cols; i++ {
		src := pix[i*r.Channels : (i+1)*r.Channels]
		dst := img.Pix[i*4 : i*4+4]
		dst[3] = 255
		for ch := 0; ch < r.Channels && ch < 4; ch++ {
			dst[ch] = src[ch]
		}
	}
	return img
}

// Save writes a raster as a normalized 8-bit PNG. The file is written to a
// temporary name first and renamed into place so a failed write never leaves
// a truncated slice behind.
func Save(path string, r *models.Raster) error {
	return WriteImage(path, ToImage(r))
}

// WriteImage encodes img as PNG at path through a temporary file.
func WriteImage(path string, img image.Image) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create %s: %v: %w", path, err, models.ErrIO)
	}
	tmpName := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode %s: %v: %w", path, err, models.ErrIO)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %v: %w", path, err, models.ErrIO)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %v: %w", path, err, models.ErrIO)
	}
	return nil
}

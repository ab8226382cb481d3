package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"opticalct/internal/models"
)

// writePNG encodes img into dir/name
func writePNG(t *testing.T, dir, name string, img image.Image) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", name, err)
	}
}

// TestLoadSortsByFilename verifies acquisition order follows filename order
func TestLoadSortsByFilename(t *testing.T) {
	dir := t.TempDir()
	for _, i := range []int{2, 0, 1} {
		img := image.NewGray(image.Rect(0, 0, 3, 2))
		for p := range img.Pix {
			img.Pix[p] = uint8(10 * i)
		}
		writePNG(t, dir, fmt.Sprintf("proj%02d.png", i), img)
	}
	// Non-image files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	images, err := Load(dir, false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(images))
	}
	for i, im := range images {
		if im.Rows != 2 || im.Cols != 3 || im.Channels != 1 {
			t.Fatalf("Unexpected shape %s", im.Shape())
		}
		if im.Data[0] != float64(10*i) {
			t.Errorf("Image %d: expected value %d, got %f", i, 10*i, im.Data[0])
		}
	}
}

// TestLoadColourAndGray verifies channel handling for colour sources
func TestLoadColourAndGray(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}
	writePNG(t, dir, "a.png", img)

	colour, err := Load(dir, false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if colour[0].Channels != 3 {
		t.Fatalf("Expected 3 channels, got %d", colour[0].Channels)
	}
	if colour[0].At(1, 1, 0) != 255 || colour[0].At(1, 1, 1) != 0 {
		t.Errorf("Unexpected RGB values %v", colour[0].Data[:3])
	}

	gray, err := Load(dir, true)
	if err != nil {
		t.Fatalf("Load gray failed: %v", err)
	}
	if gray[0].Channels != 1 {
		t.Fatalf("Expected 1 channel, got %d", gray[0].Channels)
	}
	if v := gray[0].At(0, 0, 0); v < lumR-0.001 || v > lumR+0.001 {
		t.Errorf("Expected red luminance %.4f, got %.4f", lumR, v)
	}

	deep := t.TempDir()
	g16 := image.NewGray16(image.Rect(0, 0, 2, 1))
	g16.SetGray16(0, 0, color.Gray16{Y: 1000})
	g16.SetGray16(1, 0, color.Gray16{Y: 1100})
	writePNG(t, deep, "a.png", g16)

	wide, err := Load(deep, false)
	if err != nil {
		t.Fatalf("Load 16-bit failed: %v", err)
	}
	if wide[0].Channels != 1 {
		t.Fatalf("Expected 1 channel for 16-bit gray, got %d", wide[0].Channels)
	}
	if wide[0].Data[0] != 1000 || wide[0].Data[1] != 1100 {
		t.Errorf("Expected 16-bit values [1000 1100], got %v", wide[0].Data)
	}
}

// TestLoadErrors verifies empty directories and mixed shapes are rejected
func TestLoadErrors(t *testing.T) {
	empty := t.TempDir()
	if _, err := Load(empty, false); !errors.Is(err, models.ErrIO) {
		t.Errorf("Expected ErrIO for empty directory, got %v", err)
	}

	if _, err := Load(filepath.Join(empty, "missing"), false); !errors.Is(err, models.ErrIO) {
		t.Errorf("Expected ErrIO for missing directory, got %v", err)
	}

	mixed := t.TempDir()
	writePNG(t, mixed, "a.png", image.NewGray(image.Rect(0, 0, 2, 2)))
	writePNG(t, mixed, "b.png", image.NewGray(image.Rect(0, 0, 3, 2)))
	if _, err := Load(mixed, false); !errors.Is(err, models.ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}
}

// TestNormalize verifies linear mapping onto [0, 255]
func TestNormalize(t *testing.T) {
	got := Normalize([]float64{-1, 0, 1})
	if got[0] != 0 || got[1] != 127 || got[2] != 255 {
		t.Errorf("Unexpected normalization %v", got)
	}

	flat := Normalize([]float64{3, 3, 3})
	for _, v := range flat {
		if v != 0 {
			t.Errorf("Expected constant input to map to zero, got %v", flat)
			break
		}
	}
}

// TestSaveAndLoadVolume verifies saved slices stack back into a volume
func TestSaveAndLoadVolume(t *testing.T) {
	dir := t.TempDir()
	depth := 4
	for d := 0; d < depth; d++ {
		r := models.NewRaster(3, 5, 1)
		for i := range r.Data {
			r.Data[i] = float64(i + d)
		}
		if err := Save(filepath.Join(dir, fmt.Sprintf("slice%d.png", d)), r); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	if len(matches) != 0 {
		t.Errorf("Temporary files left behind: %v", matches)
	}

	vol, err := LoadVolume(dir)
	if err != nil {
		t.Fatalf("LoadVolume failed: %v", err)
	}
	if vol.Rows != 3 || vol.Cols != 5 || vol.Depth != depth || vol.Channels != 1 {
		t.Fatalf("Unexpected volume shape %s", vol.Shape())
	}
	if vol.At(0, 0, 2, 0) != 0 || vol.At(2, 4, 2, 0) != 255 {
		t.Errorf("Expected normalized extremes, got %f and %f", vol.At(0, 0, 2, 0), vol.At(2, 4, 2, 0))
	}
}

// TestSaveColour verifies multi-channel rasters are written as RGB
func TestSaveColour(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rgb.png")
	r := models.NewRaster(1, 2, 3)
	r.Set(0, 1, 2, 10)

	if err := Save(path, r); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	c := color.NRGBAModel.Convert(img.At(1, 0)).(color.NRGBA)
	if c.B != 255 || c.R != 0 || c.A != 255 {
		t.Errorf("Unexpected pixel %+v", c)
	}
}

// TestLuminance verifies colour rasters collapse like grayscale loading
func TestLuminance(t *testing.T) {
	r := models.NewRaster(1, 1, 3)
	r.Set(0, 0, 0, 255)

	got := Luminance([]*models.Raster{r}, 255)
	if got[0].Channels != 1 {
		t.Fatalf("Expected 1 channel, got %d", got[0].Channels)
	}
	if v := got[0].Data[0]; v < lumR-1e-9 || v > lumR+1e-9 {
		t.Errorf("Expected %f, got %f", lumR, v)
	}
}

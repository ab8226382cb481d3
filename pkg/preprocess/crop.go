// Package preprocess implements the geometric transforms applied to raw
// projections before reconstruction: crop, rescale and perspective correction.
// Every function is pure and leaves its inputs untouched.
package preprocess

import (
	"fmt"
	"image"

	"opticalct/internal/models"
)

// Crop returns the width×height region whose upper left corner is topLeft.
// The rectangle must lie inside the image.
func Crop(img *models.Raster, topLeft image.Point, width, height int) (*models.Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("crop size %dx%d must be positive: %w", width, height, models.ErrOutOfBounds)
	}
	if topLeft.X < 0 || topLeft.Y < 0 ||
		topLeft.X+width > img.Cols || topLeft.Y+height > img.Rows {
		return nil, fmt.Errorf("crop %dx%d at (%d,%d) exceeds image %s: %w",
			width, height, topLeft.X, topLeft.Y, img.Shape(), models.ErrOutOfBounds)
	}

	out := models.NewRaster(height, width, img.Channels)
	rowLen := width * img.Channels
	for y := 0; y < height; y++ {
		src := ((topLeft.Y+y)*img.Cols + topLeft.X) * img.Channels
		copy(out.Data[y*rowLen:(y+1)*rowLen], img.Data[src:src+rowLen])
	}
	return out, nil
}

// CropAll crops every image of a sequence to the same region.
func CropAll(images []*models.Raster, topLeft image.Point, width, height int) ([]*models.Raster, error) {
	if err := models.CheckSameShape(images); err != nil {
		return nil, err
	}
	out := make([]*models.Raster, len(images))
	for i, im := range images {
		c, err := Crop(im, topLeft, width, height)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

package reconstruction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"opticalct/internal/models"
	"opticalct/pkg/imageio"
)

// SliceName returns the file name of slice d in a volume of the given depth,
// zero padded so that lexical order equals depth order.
func SliceName(d, depth int) string {
	return fmt.Sprintf("slice%0*d.png", len(strconv.Itoa(depth)), d)
}

// SaveVolume writes every depth slice of vol as a normalized PNG in dir.
// Each slice is normalized on its own. The first failing write aborts the
// save and is returned.
func SaveVolume(ctx context.Context, dir string, vol *models.Volume, workers int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %v: %w", dir, err, models.ErrIO)
	}
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for d := 0; d < vol.Depth; d++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return imageio.Save(filepath.Join(dir, SliceName(d, vol.Depth)), vol.Slice(d))
		})
	}
	return g.Wait()
}

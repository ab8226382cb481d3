package visualization

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"opticalct/internal/models"
	"opticalct/pkg/imageio"
)

// SaveSliceSequence writes every section along plane p to outputDir as
// <plane><NN>.png, rendered with the active colormap and without markers.
// The explorer state is left untouched.
func (e *Explorer) SaveSliceSequence(p Plane, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create %s: %v: %w", outputDir, err, models.ErrIO)
	}

	n := e.Length(p)
	pad := len(strconv.Itoa(n))
	saved := e.views[p].Section
	defer func() { e.views[p].Section = saved }()

	for pos := 0; pos < n; pos++ {
		e.views[p].Section = Section(e.vol, p, pos)
		filename := filepath.Join(outputDir, fmt.Sprintf("%s%0*d.png", p, pad, pos))
		if err := imageio.WriteImage(filename, e.Image(p)); err != nil {
			return err
		}
	}
	return nil
}

// Export writes the section sequences of all three planes into
// per-plane subdirectories of dir.
func (e *Explorer) Export(dir string) error {
	for _, p := range Planes {
		if err := e.SaveSliceSequence(p, filepath.Join(dir, p.String())); err != nil {
			return fmt.Errorf("failed to export %s sections: %w", p, err)
		}
	}
	return nil
}

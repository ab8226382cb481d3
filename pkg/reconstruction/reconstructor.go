// Package reconstruction turns a stack of projection images into clipped
// volumes: one per colour channel, plus their recombination.
package reconstruction

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"opticalct/internal/models"
	"opticalct/pkg/imageio"
	"opticalct/pkg/logging"
	"opticalct/pkg/preprocess"
	"opticalct/pkg/sinogram"
	"opticalct/pkg/solver"
)

// Directory names below the output directory
const (
	IntensityDir  = "intensity"
	RecombinedDir = "recombined"
)

// CropParams selects the region of interest kept from every projection.
type CropParams struct {
	TopLeft image.Point
	Width   int
	Height  int
}

// PerspectiveParams maps four source corners onto four destination corners.
type PerspectiveParams struct {
	Source      [4]preprocess.Point
	Destination [4]preprocess.Point
}

// Params holds the parameters of one reconstruction session.
type Params struct {
	// InputDir is the directory containing the projection images, read in
	// filename order.
	InputDir string

	// AngleStep is the rotation in degrees between consecutive projections.
	AngleStep float64

	// Crop and Perspective are optional preprocessing steps.
	Crop        *CropParams
	Perspective *PerspectiveParams

	// Scale is the isotropic resize factor applied after cropping.
	Scale float64

	// StdRange is the k in the median ± k·σ clip.
	StdRange float64

	// ChannelWise reconstructs each colour channel on its own. With false
	// the projections are read as luminance.
	ChannelWise bool

	// Save writes every slice below OutputDir.
	Save      bool
	OutputDir string

	// NumCores bounds the number of slices reconstructed concurrently.
	NumCores int

	// Solver reconstructs one slice; nil selects SART with its defaults.
	Solver solver.Solver

	// SaveIntermediaryResults writes the preprocessed projections and the
	// sinograms below IntermediaryDir.
	SaveIntermediaryResults bool
	IntermediaryDir         string

	// Logger receives progress; nil disables logging.
	Logger *zerolog.Logger
}

// Result is the outcome of a reconstruction.
type Result struct {
	// Channels holds one clipped volume per reconstructed channel.
	Channels []*models.Volume

	// Clip records the statistics each channel was clipped with.
	Clip []ClipStats

	// Recombined stacks the channel volumes; nil in intensity mode.
	Recombined *models.Volume

	// Persisted lists the written directories; a failed save returns no Result.
	Persisted []string
}

// Final returns the volume that represents the whole session: the
// recombined volume in channel-wise mode, the intensity volume otherwise.
func (r *Result) Final() *models.Volume {
	if r.Recombined != nil {
		return r.Recombined
	}
	if len(r.Channels) == 0 {
		return nil
	}
	return r.Channels[0]
}

// Reconstructor runs the full pipeline for one session.
type Reconstructor struct {
	params *Params
	solver solver.Solver
	log    zerolog.Logger
}

// NewReconstructor creates a new reconstructor instance with the provided parameters.
func NewReconstructor(params *Params) *Reconstructor {
	s := params.Solver
	if s == nil {
		s = &solver.SART{Iterations: 1, Relaxation: 0.15}
	}
	log := zerolog.Nop()
	if params.Logger != nil {
		log = logging.Component(*params.Logger, "reconstruction")
	}
	return &Reconstructor{params: params, solver: s, log: log}
}

// Process loads the projections from InputDir and reconstructs them.
func (r *Reconstructor) Process(ctx context.Context) (*Result, error) {
	r.log.Info().Str("dir", r.params.InputDir).Bool("channel_wise", r.params.ChannelWise).
		Msg("Loading projections")

	images, err := imageio.Load(r.params.InputDir, !r.params.ChannelWise)
	if err != nil {
		return nil, fmt.Errorf("failed to load projections: %w", err)
	}
	return r.Reconstruct(ctx, images)
}

// Reconstruct preprocesses the given projections, reconstructs every channel
// and, when Save is set, persists the results.
func (r *Reconstructor) Reconstruct(ctx context.Context, images []*models.Raster) (*Result, error) {
	if err := models.CheckSameShape(images); err != nil {
		return nil, err
	}
	if r.params.AngleStep <= 0 {
		return nil, fmt.Errorf("angle step must be positive, got %g: %w", r.params.AngleStep, models.ErrConfiguration)
	}
	if r.params.StdRange <= 0 {
		return nil, fmt.Errorf("std range must be positive, got %g: %w", r.params.StdRange, models.ErrConfiguration)
	}

	images, err := r.preprocess(images)
	if err != nil {
		return nil, err
	}
	r.log.Info().Int("projections", len(images)).Str("shape", images[0].Shape()).
		Msg("Preprocessed projections")
	r.saveIntermediary("01_preprocessed", images)

	multi := r.params.ChannelWise && images[0].Channels > 1
	channels := 1
	if multi {
		channels = images[0].Channels
	} else if images[0].Channels > 1 {
		images = imageio.Luminance(images, 255)
	}

	angles := sinogram.Angles(len(images), r.params.AngleStep)
	res := &Result{}

	for ch := 0; ch < channels; ch++ {
		name := IntensityDir
		if multi {
			name = channelDir(ch, channels)
		}
		log := r.log.With().Str("volume", name).Logger()

		planes := make([]*models.Raster, len(images))
		for i, im := range images {
			planes[i] = im.Plane(ch)
		}

		sinos, err := sinogram.Build(planes)
		if err != nil {
			return nil, err
		}
		r.saveIntermediary(filepath.Join("02_sinograms", name), sinogramImages(sinos))

		log.Info().Int("slices", len(sinos)).Int("workers", r.workers()).Msg("Reconstructing")
		vol, err := ReconstructSinograms(ctx, sinos, angles, r.solver, r.workers())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		stats := Clip(vol, r.params.StdRange)
		log.Debug().Float64("median", stats.Median).Float64("std", stats.Std).
			Float64("low", stats.Low).Float64("high", stats.High).Msg("Clipped volume")

		res.Channels = append(res.Channels, vol)
		res.Clip = append(res.Clip, stats)

		if multi {
			if res.Recombined == nil {
				res.Recombined = models.NewVolume(vol.Rows, vol.Cols, vol.Depth, channels)
			}
			if err := res.Recombined.SetChannel(ch, vol); err != nil {
				return nil, err
			}
		}

		if r.params.Save {
			if err := r.persist(ctx, res, name, vol); err != nil {
				return nil, err
			}
		}
	}

	if multi && r.params.Save {
		if err := r.persist(ctx, res, RecombinedDir, res.Recombined); err != nil {
			return nil, err
		}
	}

	final := res.Final()
	r.log.Info().Str("shape", final.Shape()).Msg("Reconstruction complete")
	return res, nil
}

// preprocess applies crop, perspective and rescale in that order
func (r *Reconstructor) preprocess(images []*models.Raster) ([]*models.Raster, error) {
	var err error
	if c := r.params.Crop; c != nil {
		images, err = preprocess.CropAll(images, c.TopLeft, c.Width, c.Height)
		if err != nil {
			return nil, err
		}
	}
	if p := r.params.Perspective; p != nil {
		images, err = preprocess.PerspectiveCorrectAll(images, p.Source, p.Destination)
		if err != nil {
			return nil, err
		}
	}
	scale := r.params.Scale
	if scale == 0 {
		scale = 1
	}
	return preprocess.Rescale(images, scale)
}

func (r *Reconstructor) persist(ctx context.Context, res *Result, name string, vol *models.Volume) error {
	dir := filepath.Join(r.params.OutputDir, name)
	if err := SaveVolume(ctx, dir, vol, r.workers()); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	res.Persisted = append(res.Persisted, dir)
	r.log.Info().Str("dir", dir).Int("slices", vol.Depth).Msg("Saved volume")
	return nil
}

func (r *Reconstructor) workers() int {
	if r.params.NumCores < 1 {
		return 1
	}
	return r.params.NumCores
}

// saveIntermediary writes debugging images; failures are logged and ignored
func (r *Reconstructor) saveIntermediary(stage string, images []*models.Raster) {
	if !r.params.SaveIntermediaryResults {
		return
	}
	stageDir := filepath.Join(r.params.IntermediaryDir, stage)
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		r.log.Warn().Err(err).Str("stage", stage).Msg("Failed to create intermediary directory")
		return
	}
	for i, im := range images {
		path := filepath.Join(stageDir, fmt.Sprintf("%03d.png", i))
		if err := imageio.Save(path, im); err != nil {
			r.log.Warn().Err(err).Str("stage", stage).Int("index", i).Msg("Failed to save intermediary result")
		}
	}
}

// channelDir names the directory of channel ch, zero padded to the digit
// count of the channel total so names sort lexically
func channelDir(ch, channels int) string {
	return fmt.Sprintf("channel%0*d", len(strconv.Itoa(channels)), ch)
}

// sinogramImages views each sinogram as a columns × projections raster
func sinogramImages(sinos []*models.Sinogram) []*models.Raster {
	out := make([]*models.Raster, len(sinos))
	for i, s := range sinos {
		out[i] = &models.Raster{Rows: s.Columns, Cols: s.Projections, Channels: 1, Data: s.Data}
	}
	return out
}

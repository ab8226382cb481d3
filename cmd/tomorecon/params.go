package main

import (
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"opticalct/internal/models"
	"opticalct/pkg/config"
	"opticalct/pkg/preprocess"
	"opticalct/pkg/reconstruction"
	"opticalct/pkg/solver"
)

// buildParams translates a validated session into reconstruction parameters
func buildParams(cfg *config.Config, logger *zerolog.Logger) (*reconstruction.Params, error) {
	s, err := solver.New(cfg.Solver.Algorithm, cfg.Solver.Iterations, cfg.Solver.Relaxation)
	if err != nil {
		return nil, err
	}

	params := &reconstruction.Params{
		InputDir:                cfg.Directory,
		AngleStep:               cfg.AngleStep,
		Scale:                   cfg.Scale,
		StdRange:                cfg.StdRange,
		ChannelWise:             cfg.ChannelWise,
		Save:                    cfg.Save,
		OutputDir:               cfg.OutputDirectory(),
		NumCores:                cfg.Processing.Workers,
		Solver:                  s,
		SaveIntermediaryResults: cfg.Output.SaveIntermediary,
		IntermediaryDir:         cfg.IntermediaryDirectory(),
		Logger:                  logger,
	}

	if c := cfg.Crop; c != nil {
		if len(c.TopLeft) != 2 {
			return nil, fmt.Errorf("crop.top_left must be [x, y]: %w", models.ErrConfiguration)
		}
		params.Crop = &reconstruction.CropParams{
			TopLeft: image.Pt(c.TopLeft[0], c.TopLeft[1]),
			Width:   c.Width,
			Height:  c.Height,
		}
	}

	if p := cfg.Perspective; p != nil {
		src, err := corners(p.Source)
		if err != nil {
			return nil, err
		}
		dst, err := corners(p.Destination)
		if err != nil {
			return nil, err
		}
		params.Perspective = &reconstruction.PerspectiveParams{Source: src, Destination: dst}
	}

	return params, nil
}

func corners(pts [][]float64) ([4]preprocess.Point, error) {
	var out [4]preprocess.Point
	if len(pts) != 4 {
		return out, fmt.Errorf("need four corners, got %d: %w", len(pts), models.ErrConfiguration)
	}
	for i, p := range pts {
		if len(p) != 2 {
			return out, fmt.Errorf("corner %d must be [x, y]: %w", i, models.ErrConfiguration)
		}
		out[i] = preprocess.Point{X: p[0], Y: p[1]}
	}
	return out, nil
}

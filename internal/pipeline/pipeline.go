// Package pipeline orchestrates the extraction workflow stages.
package pipeline

import (
	"context"
	"fmt"

	"github.com/retroenv/retrodex/internal/config"
	"github.com/retroenv/retrodex/internal/creature"
	"github.com/retroenv/retrodex/internal/detector"
	"github.com/retroenv/retrodex/internal/loader"
	"github.com/retroenv/retrodex/internal/options"
	"github.com/retroenv/retrodex/internal/rom"
	"github.com/retroenv/retrodex/internal/sprite"
	"github.com/retroenv/retrodex/internal/ups"
	"github.com/retroenv/retrodex/internal/verification"
	"github.com/retroenv/retrodex/internal/wild"
	"github.com/retroenv/retrogolib/log"
)

// file extensions used to select archive members
const (
	romExtension   = ".gba"
	patchExtension = ".ups"
)

// Result contains the output of one extraction.
type Result struct {
	Info      detector.Info
	Layout    config.Layout
	Creatures []creature.Creature
	Locations []wild.Location
	Patch     []byte // applied patch, nil if no patch was given
}

// Pipeline orchestrates the complete extraction workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new extraction pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete extraction pipeline.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, extraction options.Extraction) (*Result, error) {
	p.loader.IgnoreParentDir = !opts.KeepParentDir

	data, err := p.loader.Load(opts.ROM, "", romExtension)
	if err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}

	var patch []byte
	if opts.Patch != "" {
		patch, err = p.loader.Load(opts.Patch, opts.PatchPath, patchExtension)
		if err != nil {
			return nil, fmt.Errorf("loading patch: %w", err)
		}
		data, err = ups.Apply(data, patch)
		if err != nil {
			return nil, fmt.Errorf("applying patch %s: %w", opts.Patch, err)
		}
		p.logger.Debug("Applied patch", log.String("file", opts.Patch), log.Int("size", len(data)))
	}

	space := rom.New(data)
	info, layout, err := p.detector.Detect(space)
	if err != nil {
		return nil, fmt.Errorf("detecting cartridge: %w", err)
	}

	layout, err = config.LoadLayout(opts.Layout, layout)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	if extraction.LegacyRateCheck {
		layout.LegacyRateCheck = true
	}

	p.printInfo(opts, info)

	result, err := p.ExecuteWithROM(ctx, space, layout, extraction)
	if err != nil {
		return nil, err
	}
	result.Info = info
	result.Patch = patch
	return result, nil
}

// ExecuteWithROM runs the extraction stages on an image that is already in
// memory, using the given layout.
// This is useful for testing and programmatic usage where no file is involved.
func (p *Pipeline) ExecuteWithROM(ctx context.Context, space *rom.ROM, layout config.Layout,
	extraction options.Extraction) (*Result, error) {

	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	extract := func(ctx context.Context) ([]creature.Creature, []wild.Location, error) {
		return p.extract(ctx, space, layout, extraction)
	}

	creatures, locations, err := extract(ctx)
	if err != nil {
		return nil, err
	}

	if extraction.Verify {
		expected, err := verification.Compute(creatures, locations)
		if err != nil {
			return nil, fmt.Errorf("computing digests: %w", err)
		}
		if err := verification.VerifyOutput(ctx, p.logger, expected, extract); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	return &Result{
		Layout:    layout,
		Creatures: creatures,
		Locations: locations,
	}, nil
}

// extract runs the creature extraction followed by the wild resolution that
// depends on the creature names.
func (p *Pipeline) extract(ctx context.Context, space *rom.ROM, layout config.Layout,
	extraction options.Extraction) ([]creature.Creature, []wild.Location, error) {

	var sprites creature.SpriteDecoder
	if extraction.Sprites {
		sprites = sprite.NewDecoder()
	}

	creatures, err := creature.New(p.logger, layout, sprites).Extract(ctx, space)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting creatures: %w", err)
	}

	locations, err := wild.New(p.logger, layout).Resolve(ctx, space, creatures)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving wild data: %w", err)
	}
	return creatures, locations, nil
}

// printInfo prints information about the image being processed.
func (p *Pipeline) printInfo(opts options.Program, info detector.Info) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing GBA ROM",
		log.String("file", opts.ROM),
		log.String("title", info.Title),
		log.String("game_code", info.GameCode),
		log.String("profile", info.Profile),
	)
	if opts.Patch != "" {
		p.logger.Info("Using patch", log.String("file", opts.Patch))
	}
	if info.Profile == detector.DefaultProfile && opts.Layout == "" {
		p.logger.Warn("No layout profile for this game code, table offsets may be wrong")
	}
}

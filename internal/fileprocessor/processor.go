// Package fileprocessor handles the extraction of a ROM file into the output directory
package fileprocessor

import (
	"context"
	"fmt"
	"strings"

	"github.com/retroenv/retrodex/internal/config"
	"github.com/retroenv/retrodex/internal/lookup"
	"github.com/retroenv/retrodex/internal/options"
	"github.com/retroenv/retrodex/internal/pipeline"
	"github.com/retroenv/retrodex/internal/wild"
	"github.com/retroenv/retrodex/internal/writer"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, extraction options.Extraction) error {
	p := pipeline.New(logger)
	result, err := p.Execute(ctx, opts, extraction)
	if err != nil {
		return err
	}

	w := writer.New(logger, opts.Output)
	manifest, err := w.Write(result.Info, result.Creatures, result.Locations)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if opts.SavePatch && result.Patch != nil {
		if err := w.WritePatch(result.Patch); err != nil {
			return fmt.Errorf("saving patch: %w", err)
		}
	}

	if opts.WriteLayout != "" {
		if err := config.WriteLayout(opts.WriteLayout, result.Layout); err != nil {
			return err
		}
	}

	if !opts.Quiet {
		logger.Info("Extraction finished",
			log.String("output", opts.Output),
			log.Int("creatures", manifest.Creatures),
			log.Int("locations", manifest.Locations),
			log.Int("sprites", manifest.Sprites),
		)
	}

	if opts.Find != "" {
		FindCreature(logger, lookup.New(result.Creatures, result.Locations), opts.Find)
	}
	return nil
}

// FindCreature logs all creatures matching the name and the locations where
// they can be encountered. A query that matches no creature name is searched
// for mentioned creature names instead. It returns the number of matching
// creatures.
func FindCreature(logger *log.Logger, index *lookup.Index, name string) int {
	found := index.Creatures(name)
	if len(found) == 0 {
		found = index.Mentioned(name)
	}
	if len(found) == 0 {
		logger.Warn("Creature not found", log.String("name", name))
		return 0
	}

	for _, c := range found {
		logger.Info("Creature found",
			log.String("name", c.Name),
			log.Int("index", c.Index),
			log.Int("dex_number", c.DexNumber),
			log.String("type", typeName(c.Stats.Type1, c.Stats.Type2)),
		)
		logEncounters(logger, index, c.Name)
	}
	return len(found)
}

func logEncounters(logger *log.Logger, index *lookup.Index, name string) {
	locations := index.Locations(name)
	if len(locations) == 0 {
		logger.Info("No wild encounters", log.String("name", name))
		return
	}
	for _, method := range wild.Methods {
		names, ok := locations[method]
		if !ok {
			continue
		}
		logger.Info("Wild encounters",
			log.String("name", name),
			log.String("method", method.String()),
			log.String("locations", strings.Join(names, ", ")),
		)
	}
}

// typeName joins the two types of a creature, single type creatures repeat
// their type in the stats table.
func typeName(type1, type2 string) string {
	if type2 == "" || type2 == type1 {
		return type1
	}
	return type1 + "/" + type2
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrodex", log.String("version", buildinfo.Version(version, commit, date)))
}

// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" usage:"ROM file to extract"`
}

// Parameters contains file path options.
type Parameters struct {
	ROM       string `flag:"rom" usage:"input ROM file, plain or inside a .zip, .7z or .gz archive"`
	Patch     string `flag:"patch" usage:"UPS patch to apply before extraction"`
	PatchPath string `flag:"patch-path" usage:"path of the patch inside a patch archive"`
	Layout    string `flag:"layout" usage:"JSON layout file overriding the detected profile"`
	Output    string `flag:"o" usage:"output directory" default:"output"`
	Find      string `flag:"find" usage:"look up a creature by name after extraction"`

	WriteLayout string `flag:"write-layout" usage:"write the effective layout as JSON file, a template for new profiles"`
}

// Flags contains behavior options.
type Flags struct {
	Sprites         bool `flag:"sprites" usage:"decode creature sprites to PNG files"`
	LegacyRateCheck bool `flag:"legacy-rate-check" usage:"only treat a zero encounter rate as absent for grass"`
	Verify          bool `flag:"verify" usage:"verify that a second extraction produces identical output"`
	SavePatch       bool `flag:"save-patch" usage:"copy the applied patch into the output directory"`
	KeepParentDir   bool `flag:"keep-parent-dir" usage:"do not strip the top level directory of archive members"`
	Debug           bool `flag:"debug" usage:"enable debug logging"`
	Quiet           bool `flag:"q" usage:"quiet mode"`
}

// Program options of the extractor.
type Program struct {
	Parameters
	Flags
}

// Extraction defines options to control the extraction stages.
type Extraction struct {
	Sprites         bool // decode sprites, slow for a full table
	LegacyRateCheck bool // only check the grass encounter rate
	Verify          bool // run the extraction twice and compare the output digests
}

// NewExtraction returns the extraction options for the given program options.
func NewExtraction(opts Program) Extraction {
	return Extraction{
		Sprites:         opts.Sprites,
		LegacyRateCheck: opts.LegacyRateCheck,
		Verify:          opts.Verify,
	}
}

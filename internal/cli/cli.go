// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrodex/internal/options"
)

// ParseFlags parses command line flags and returns the program and extraction options
func ParseFlags() (options.Program, options.Extraction, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.ROM == "") {
		return opts, options.Extraction{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Extraction{}, err
	}

	if opts.ROM == "" {
		opts.ROM = args[0]
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Extraction{}, err
	}

	return opts, options.NewExtraction(opts), nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrodex [options] <rom file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after the ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("Only one ROM file can be extracted at a time, got %d", len(args)),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Find = strings.TrimSpace(opts.Find)
	if opts.Output == "" {
		opts.Output = "output"
	}

	var errs []error
	if opts.PatchPath != "" && opts.Patch == "" {
		errs = append(errs, errors.New("-patch-path requires a patch archive passed with -patch"))
	}
	if opts.SavePatch && opts.Patch == "" {
		errs = append(errs, errors.New("-save-patch requires a patch passed with -patch"))
	}
	if opts.Debug && opts.Quiet {
		errs = append(errs, errors.New("-debug and -q can not be combined"))
	}
	return errors.Join(errs...)
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.ROM, "rom", "", "name of the input ROM file, plain or inside a .zip, .7z or .gz archive")
	flags.StringVar(&opts.Patch, "patch", "", "UPS patch file or archive to apply before extracting")
	flags.StringVar(&opts.PatchPath, "patch-path", "", "path of the patch inside the patch archive")
	flags.StringVar(&opts.Layout, "layout", "", "JSON layout file that overrides the detected profile")
	flags.StringVar(&opts.WriteLayout, "write-layout", "", "write the effective layout to a JSON file")
	flags.StringVar(&opts.Output, "o", "output", "name of the output directory")
	flags.StringVar(&opts.Find, "find", "", "look up a creature by name and print where it can be found")
	flags.BoolVar(&opts.Sprites, "sprites", false, "decode the creature sprites to PNG files")
	flags.BoolVar(&opts.LegacyRateCheck, "legacy-rate-check", false, "only treat a zero encounter rate as absent for grass encounters")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the output by extracting twice and comparing the digests")
	flags.BoolVar(&opts.SavePatch, "save-patch", false, "copy the applied patch into the output directory")
	flags.BoolVar(&opts.KeepParentDir, "keep-parent-dir", false, "keep the top level directory of archive members when matching -patch-path")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

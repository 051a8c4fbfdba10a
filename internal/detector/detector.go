// Package detector identifies a cartridge image and selects its layout profile.
package detector

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/retroenv/retrodex/internal/config"
	"github.com/retroenv/retrodex/internal/record"
	"github.com/retroenv/retrodex/internal/rom"
	"github.com/retroenv/retrogolib/log"
)

// DefaultProfile is the profile name reported when the game code is unknown.
const DefaultProfile = "default"

// ErrNoHeader is returned for images that are too small to contain a cartridge header.
var ErrNoHeader = errors.New("image has no cartridge header")

const (
	headerOffset  = 0xA0
	fixedValue    = 0x96
	checksumStart = 0xA0
	checksumEnd   = 0xBC // inclusive
)

var headerSchema = record.MustSchema("CartridgeHeader",
	record.Array("title", 12),
	record.Array("game_code", 4),
	record.Array("maker_code", 2),
	record.Uint8("fixed"),
	record.Uint8("unit_code"),
	record.Uint8("device_type"),
	record.Array("reserved", 7),
	record.Uint8("version"),
	record.Uint8("checksum"),
	record.Uint16("reserved_2"),
)

// Info describes an identified cartridge image.
type Info struct {
	Title       string `json:"title"`
	GameCode    string `json:"game_code"`
	MakerCode   string `json:"maker_code"`
	Version     int    `json:"version"`
	ChecksumOK  bool   `json:"checksum_ok"`
	Size        int    `json:"size"`
	Fingerprint string `json:"fingerprint"`
	Profile     string `json:"profile"`
}

// Detector handles cartridge identification from the image header.
type Detector struct {
	logger *log.Logger
}

// New creates a new cartridge detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect reads the cartridge header and returns the image information and
// the layout profile matching the game code. Unknown game codes use the
// default layout.
func (d *Detector) Detect(space *rom.ROM) (Info, config.Layout, error) {
	rec, err := space.Deref(rom.NewPointer(headerOffset, headerSchema))
	if err != nil {
		return Info{}, config.Layout{}, fmt.Errorf("%w: %w", ErrNoHeader, err)
	}

	fingerprint, err := Fingerprint(space)
	if err != nil {
		return Info{}, config.Layout{}, err
	}

	info := Info{
		Title:       headerString(rec.Bytes("title")),
		GameCode:    headerString(rec.Bytes("game_code")),
		MakerCode:   headerString(rec.Bytes("maker_code")),
		Version:     int(rec.Uint("version")),
		Size:        space.Size(),
		Fingerprint: fingerprint,
	}

	valid, err := checksumValid(space, byte(rec.Uint("checksum")))
	if err != nil {
		return Info{}, config.Layout{}, err
	}
	info.ChecksumOK = valid && rec.Uint("fixed") == fixedValue
	if !info.ChecksumOK {
		d.logger.Warn("Cartridge header checksum mismatch", log.String("title", info.Title))
	}

	layout, ok := config.Profile(info.GameCode)
	if ok {
		info.Profile = info.GameCode
	} else {
		layout = config.DefaultLayout()
		info.Profile = DefaultProfile
		d.logger.Warn("Unknown game code, using default layout",
			log.String("game_code", info.GameCode),
			log.String("title", info.Title))
	}

	d.logger.Debug("Detected cartridge",
		log.String("title", info.Title),
		log.String("game_code", info.GameCode),
		log.Int("version", info.Version),
		log.String("fingerprint", info.Fingerprint),
		log.String("profile", info.Profile))

	return info, layout, nil
}

// Fingerprint returns the hex encoded xxhash digest of the whole image.
func Fingerprint(space *rom.ROM) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, io.NewSectionReader(space, 0, int64(space.Size()))); err != nil {
		return "", fmt.Errorf("hashing image: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// checksumValid verifies the header complement check.
func checksumValid(space *rom.ROM, checksum byte) (bool, error) {
	b, err := space.Slice(checksumStart, checksumEnd-checksumStart+1)
	if err != nil {
		return false, fmt.Errorf("reading header: %w", err)
	}

	var sum byte
	for _, v := range b {
		sum -= v
	}
	sum -= 0x19
	return sum == checksum, nil
}

// headerString returns the ASCII text of a zero padded header field.
func headerString(b []byte) string {
	return strings.TrimRight(string(b), "\x00 ")
}

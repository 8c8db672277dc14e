/*
	config.go: startup configuration (spec §4.C10, §6). One INI file,
	section [DEFAULT], three keys. Missing or malformed keys are fatal:
	the module refuses to run rather than guess a default.
*/

package config

import (
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/biturbo/flightbox-transform/internal/flighterrors"
)

// SensitivityBands holds the Mode-C RSSI cutoffs (dBm) selected by
// modec_det, per spec §4.C9.
type SensitivityBands struct {
	Level3, Level2, Level1 float64
}

// Config is the transformation module's fully-parsed startup configuration.
type Config struct {
	MyICAO   string
	MyTail   string
	ModeCSep float64
	ModeCDet int
	Bands    SensitivityBands
}

// Load reads section [DEFAULT] of an INI file at path and validates every
// key required by the transformation module.
func Load(path string) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Config{}, &flighterrors.ConfigError{Key: "(file)", Reason: err.Error()}
	}
	return FromFile(file)
}

// FromFile validates an already-loaded *ini.File. Exposed separately so
// callers (and tests) can build a Config from an in-memory INI source
// without touching the filesystem.
func FromFile(file *ini.File) (Config, error) {
	section := file.Section("DEFAULT")

	icaoRaw := section.Key("my_ICAO").String()
	parts := strings.SplitN(icaoRaw, ",", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Config{}, &flighterrors.ConfigError{
			Key:    "my_ICAO",
			Reason: "must be '<6-hex ICAO>,<tail>'",
		}
	}

	modeCSepRaw := section.Key("modec_sep").String()
	modeCSep, err := strconv.ParseFloat(modeCSepRaw, 64)
	if err != nil {
		return Config{}, &flighterrors.ConfigError{Key: "modec_sep", Reason: "must be a float"}
	}

	modeCDetRaw := section.Key("modec_det").String()
	modeCDet, err := strconv.Atoi(modeCDetRaw)
	if err != nil || modeCDet < 1 || modeCDet > 4 {
		return Config{}, &flighterrors.ConfigError{Key: "modec_det", Reason: "must be an integer 1..4"}
	}

	return Config{
		MyICAO:   strings.ToUpper(parts[0]),
		MyTail:   parts[1],
		ModeCSep: modeCSep,
		ModeCDet: modeCDet,
		Bands:    bandsFor(modeCDet),
	}, nil
}

// bandsFor implements the modec_det -> cutoff table in spec §4.C9.
func bandsFor(modeCDet int) SensitivityBands {
	switch modeCDet {
	case 1:
		return SensitivityBands{Level3: -29, Level2: -30, Level1: -31}
	case 2:
		return SensitivityBands{Level3: -30, Level2: -31, Level1: -32}
	case 3:
		return SensitivityBands{Level3: -31, Level2: -32, Level1: -33}
	default: // 4, long range
		return SensitivityBands{Level3: -32, Level2: -33, Level1: -34}
	}
}

/*
	parser.go: SBS-1 (Mode-S/ADS-B decoder) CSV parsing (spec §4.C5). Input
	is one CSV line from a dump1090-style feed; only MSG rows of type
	1..5 with at least 17 fields are processed. Non-MSG rows and other MSG
	types are ignored silently; short rows and parse failures are logged
	and dropped — this parser never returns an error to its caller.
*/

package sbs1

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biturbo/flightbox-transform/internal/flighterrors"
	"github.com/biturbo/flightbox-transform/internal/metrics"
	"github.com/biturbo/flightbox-transform/internal/registry"
)

var log = logrus.WithField("component", "sbs1")

// HandleLine parses one SBS-1 CSV line and applies any resulting update to
// the aircraft registry.
func HandleLine(reg *registry.Registry, now time.Time, line string) {
	fields := strings.Split(line, ",")
	if len(fields) < 1 || fields[0] != "MSG" {
		return
	}
	if len(fields) < 17 {
		err := &flighterrors.InputFormatError{Feed: "sbs1", Reason: "row shorter than 17 fields"}
		metrics.ParseErrors.WithLabelValues("sbs1").Inc()
		log.WithError(err).WithField("n_fields", len(fields)).Warn("discarding SBS-1 row")
		return
	}

	msgType := fields[1]
	switch msgType {
	case "1", "2", "3", "4", "5":
	default:
		return
	}

	icaoID := fields[4]
	if icaoID == "" {
		err := &flighterrors.InputFormatError{Feed: "sbs1", Reason: "missing ICAO id"}
		metrics.ParseErrors.WithLabelValues("sbs1").Inc()
		log.WithError(err).Warn("discarding SBS-1 row")
		return
	}

	rec := reg.Upsert(icaoID, registry.DataTypeADSB, func(rec *registry.AircraftRecord) {
		rec.LastSeen = now

		switch msgType {
		case "1":
			rec.Callsign = strings.TrimSpace(fields[10])

		case "2", "3":
			applyFloat(fields[14], func(v float64) { rec.Latitude = registry.Ptr(v) })
			applyFloat(fields[15], func(v float64) { rec.Longitude = registry.Ptr(v) })
			applyFloat(fields[11], func(v float64) { rec.Altitude = registry.Ptr(v) })

		case "4":
			applyFloat(fields[12], func(v float64) { rec.HSpeed = registry.Ptr(v) })
			applyFloat(fields[13], func(v float64) { rec.Course = registry.Ptr(v) })
			applyFloat(fields[16], func(v float64) { rec.VSpeed = registry.Ptr(v) })

		case "5":
			applyFloat(fields[3], func(v float64) { rec.SignalLevel = registry.Ptr(v) })
			applyFloat(fields[11], func(v float64) { rec.Altitude = registry.Ptr(v) })
			rec.AircraftType = classifyAircraftType(fields[2], rec.HSpeed)
		}
	})
	_ = rec
}

func applyFloat(raw string, set func(float64)) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.WithField("value", raw).Warn("SBS-1: could not parse numeric field")
		return
	}
	set(v)
}

// classifyAircraftType derives the single-hex-digit FLARM category from the
// SBS-1 MSG,5 category field and the aircraft's current horizontal speed,
// per spec §4.C5:
//
//	category in {A2..A6}        -> '9'
//	else h_speed > 100 kt       -> '9'
//	else A1 -> '8', A7 -> '3', B1 -> '1', B2 -> 'B'
//	otherwise                   -> '8' (default)
func classifyAircraftType(category string, hSpeed *float64) byte {
	switch category {
	case "A2", "A3", "A4", "A5", "A6":
		return '9'
	}

	speed := 50.0
	if hSpeed != nil {
		speed = *hSpeed
	}
	if speed > 100 {
		return '9'
	}

	switch category {
	case "A1":
		return '8'
	case "A7":
		return '3'
	case "B1":
		return '1'
	case "B2":
		return 'B'
	default:
		return '8'
	}
}

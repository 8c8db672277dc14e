/*
	parser.go: NMEA-0183 sentence handling (spec §4.C4). Recognises
	$GPGGA, $GPGLL, $GPVTG; every other prefix is ignored. Parse failures
	are swallowed and logged at Info ("no fix") per spec §7 — the parser
	never propagates an error to its caller.
*/

package gnss

import (
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/sirupsen/logrus"

	"github.com/biturbo/flightbox-transform/internal/registry"
	"github.com/biturbo/flightbox-transform/internal/units"
)

var log = logrus.WithField("component", "gnss")

// HandleSentence parses one NMEA sentence and, if recognised, updates the
// own-ship GnssStatus in place. Unrecognised prefixes and parse failures
// are logged and otherwise ignored.
func (s *State) HandleSentence(line string) {
	switch {
	case strings.HasPrefix(line, "$GPGGA"):
		s.handleGGA(line)
	case strings.HasPrefix(line, "$GPGLL"):
		s.handleGLL(line)
	case strings.HasPrefix(line, "$GPVTG"):
		s.handleVTG(line)
	}
}

func (s *State) handleGGA(line string) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		log.WithError(err).Info("GPGGA: no fix")
		return
	}
	gga, ok := sentence.(nmea.GGA)
	if !ok {
		log.Warn("GPGGA: unexpected sentence type from parser")
		return
	}

	s.update(func(status *registry.GnssStatus) {
		status.Latitude = registry.Ptr(gga.Latitude)
		status.Longitude = registry.Ptr(gga.Longitude)
		// go-nmea reports GGA altitude in metres; GnssStatus.Altitude is feet.
		status.Altitude = registry.Ptr(units.MetresToFeet(gga.Altitude))
	})

	log.WithFields(logrus.Fields{
		"lat": gga.Latitude, "lon": gga.Longitude, "alt_m": gga.Altitude,
		"n_sat": gga.NumSatellites, "hdop": gga.HDOP,
	}).Debug("GPGGA")
}

func (s *State) handleGLL(line string) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		log.WithError(err).Info("GPGLL: no fix")
		return
	}
	gll, ok := sentence.(nmea.GLL)
	if !ok {
		log.Warn("GPGLL: unexpected sentence type from parser")
		return
	}

	s.update(func(status *registry.GnssStatus) {
		status.Latitude = registry.Ptr(gll.Latitude)
		status.Longitude = registry.Ptr(gll.Longitude)
	})
}

// handleVTG parses $GPVTG manually (rather than via the library) because
// spec §4.C4 calls for leaving h_speed/course untouched when their fields
// are empty, and the library has no notion of "field present but blank".
func (s *State) handleVTG(line string) {
	body := strings.SplitN(line, "*", 2)[0]
	fields := strings.Split(body, ",")
	if len(fields) <= 9 {
		log.Info("GPVTG: no fix")
		return
	}

	cogT := fields[1]
	hSpeedKt := fields[5]

	s.update(func(status *registry.GnssStatus) {
		if hSpeedKt != "" {
			if v, err := strconv.ParseFloat(hSpeedKt, 64); err == nil {
				status.HSpeed = registry.Ptr(v)
			}
		}
		if cogT != "" {
			if v, err := strconv.ParseFloat(cogT, 64); err == nil {
				status.Course = registry.Ptr(v)
			}
		}
	})
}

/*
	parser.go: OGN/APRS beacon and FLARM extension-token parsing (spec §4.C6).
	An APRS line has a mandatory beacon preamble and a space-separated list
	of extension tokens. Requires a known own-ship position, since OGN
	FLARM coordinates are transmitted relative to the receiving station.

	Extension tokens are dispatched by a cheap prefix/suffix discriminator
	rather than trying every pattern against every token, per the dispatch
	table idea used for ACARS message formats in the wider fleet of
	parsers this module was modelled on.
*/

package ogn

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biturbo/flightbox-transform/internal/flighterrors"
	"github.com/biturbo/flightbox-transform/internal/geodesy"
	"github.com/biturbo/flightbox-transform/internal/metrics"
	"github.com/biturbo/flightbox-transform/internal/registry"
	"github.com/biturbo/flightbox-transform/internal/units"
)

var log = logrus.WithField("component", "ogn")

// ownReceiverCallsign is the beacon identifier used by this station's own
// receiver; ingesting it would be a self-echo.
const ownReceiverCallsign = "FlightBox"

var beaconPattern = regexp.MustCompile(
	`^(.+?)>APRS,(.+?):/(\d{6})h(\d{4}\.\d{2})(N|S)(.)(\d{5}\.\d{2})(E|W)(.)(?:(\d{3})/(\d{3}))?/A=(\d{6})`,
)

var (
	addressTokenPattern    = regexp.MustCompile(`^id(\S{2})(\S{6})$`)
	climbRateTokenPattern  = regexp.MustCompile(`^([+-]\d+)fpm$`)
	turnRateTokenPattern   = regexp.MustCompile(`^([+-]\d+\.\d+)rot$`)
	signalTokenPattern     = regexp.MustCompile(`^(\d+\.\d+)dB$`)
	errorCountTokenPattern = regexp.MustCompile(`^(\d+)e$`)
	coordExtTokenPattern   = regexp.MustCompile(`^!W(.)(.)!$`)
)

// HandleLine parses one OGN/APRS line and, if the own-ship position is
// known and the beacon decodes cleanly, applies the resulting update to
// the aircraft registry. Parse failures and self-echoes are logged and
// otherwise dropped; this parser never returns an error to its caller.
func HandleLine(reg *registry.Registry, gnss registry.GnssStatus, now time.Time, line string) {
	if gnss.Latitude == nil || gnss.Longitude == nil {
		log.Debug("OGN: own position unknown, discarding beacon")
		return
	}

	parts := strings.Split(line, " ")
	if len(parts) == 0 {
		return
	}
	beaconData := parts[0]
	extensionTokens := parts[1:]

	m := beaconPattern.FindStringSubmatch(beaconData)
	if m == nil {
		err := &flighterrors.InputFormatError{Feed: "ogn", Reason: "beacon preamble did not match"}
		metrics.ParseErrors.WithLabelValues("ogn").Inc()
		log.WithError(err).WithField("beacon", beaconData).Warn("discarding OGN line")
		return
	}

	src := m[1]
	identifier := src
	if len(src) >= 6 {
		identifier = src[len(src)-6:]
	}
	if strings.HasSuffix(src, ownReceiverCallsign) {
		log.Info("OGN: discarding receiver beacon (self-echo)")
		return
	}

	relLat := units.OGNCoordToDegrees(mustFloat(m[4]))
	if m[5] == "S" {
		relLat = -relLat
	}
	relLon := units.OGNCoordToDegrees(mustFloat(m[7]))
	if m[8] == "W" {
		relLon = -relLon
	}

	var track, hSpeed float64
	if m[10] != "" {
		track = mustFloat(m[10])
		hSpeed = mustFloat(m[11])
	}
	altitude := mustFloat(m[12])

	var aircraftType *byte
	var vSpeed *float64

	for _, token := range extensionTokens {
		applyExtensionToken(token, &relLat, &relLon, &aircraftType, &vSpeed)
	}

	ownLat, ownLon := *gnss.Latitude, *gnss.Longitude

	reg.Upsert(identifier, registry.DataTypeFlarm, func(rec *registry.AircraftRecord) {
		rec.LastSeen = now
		rec.Latitude = registry.Ptr(geodesy.AbsFromRelative(ownLat, relLat))
		rec.Longitude = registry.Ptr(geodesy.AbsFromRelative(ownLon, relLon))
		rec.Altitude = registry.Ptr(altitude)
		rec.HSpeed = registry.Ptr(hSpeed)
		rec.Course = registry.Ptr(track)
		if aircraftType != nil {
			rec.AircraftType = *aircraftType
		}
		if vSpeed != nil {
			rec.VSpeed = vSpeed
		}
	})
}

// applyExtensionToken dispatches one FLARM extension token. relLat/relLon
// are the station-relative coordinates accumulated so far; the !W.. token
// refines their third decimal-minute digit. Tokens with no registry effect
// (turn rate, signal strength, error count, telemetry, receiver-health
// beacons) are matched and discarded.
func applyExtensionToken(token string, relLat, relLon *float64, aircraftType **byte, vSpeed **float64) {
	switch {
	case strings.HasPrefix(token, "id"):
		if g := addressTokenPattern.FindStringSubmatch(token); g != nil {
			raw, err := strconv.ParseUint(g[1], 16, 8)
			if err != nil {
				log.WithField("token", token).Warn("OGN: malformed id token")
				return
			}
			// Bits 2-6 of the address byte carry the FLARM aircraft-type
			// category (spec.md: "single hex digit encoding the FLARM
			// category"); render it as the ASCII hex digit itself, not the
			// raw numeric value, so it prints the same way
			// sbs1.classifyAircraftType's category bytes do.
			nibble := byte((raw & 0b01111100) >> 2 & 0xF)
			t := "0123456789ABCDEF"[nibble]
			*aircraftType = &t
		}

	case strings.HasPrefix(token, "!W"):
		if g := coordExtTokenPattern.FindStringSubmatch(token); g != nil {
			latDigit := mustFloat(g[1])
			lonDigit := mustFloat(g[2])
			*relLat += latDigit / 1000.0 / 60.0
			*relLon += lonDigit / 1000.0 / 60.0
		}

	case strings.HasSuffix(token, "fpm"):
		if g := climbRateTokenPattern.FindStringSubmatch(token); g != nil {
			v := mustFloat(g[1])
			*vSpeed = &v
		}

	case strings.HasSuffix(token, "rot"):
		_ = turnRateTokenPattern.MatchString(token) // parsed, not forwarded (spec §4.C6)

	case strings.HasSuffix(token, "dB"):
		_ = signalTokenPattern.MatchString(token)

	case isErrorCountToken(token):
		_ = errorCountTokenPattern.MatchString(token)

	case strings.HasPrefix(token, "hear"),
		strings.HasSuffix(token, "kHz"),
		strings.HasPrefix(token, "gps"),
		strings.HasPrefix(token, "s") && isVersionLike(token),
		strings.HasPrefix(token, "h") && isDigits(token[1:]),
		strings.HasPrefix(token, "r") && len(token) == 7,
		strings.HasPrefix(token, "FL"),
		strings.HasPrefix(token, "v"),
		strings.HasPrefix(token, "CPU:"),
		strings.HasPrefix(token, "RAM:"),
		strings.HasPrefix(token, "NTP:"),
		strings.HasPrefix(token, "RF:"),
		strings.HasSuffix(token, "C"):
		// telemetry / receiver-health beacon content, parsed & ignored.

	default:
		log.WithField("token", token).Debug("OGN: unrecognised extension token")
	}
}

func isErrorCountToken(token string) bool {
	return errorCountTokenPattern.MatchString(token)
}

func isVersionLike(token string) bool {
	body := strings.TrimPrefix(token, "s")
	return strings.Contains(body, ".") && isDigits(strings.ReplaceAll(body, ".", ""))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func mustFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

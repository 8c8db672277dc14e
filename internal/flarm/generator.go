/*
	generator.go: the FLARM sentence generator (spec §4.C9). Runs once per
	sweep: snapshots GnssStatus, then iterates the aircraft registry under
	its lock in sorted order, classifying each record into the ADS-B or
	Mode-C emission path and pushing any resulting PFLAA/PFLAU sentences to
	the caller's emit callback in order.
*/

package flarm

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biturbo/flightbox-transform/internal/altimeter"
	"github.com/biturbo/flightbox-transform/internal/config"
	"github.com/biturbo/flightbox-transform/internal/geodesy"
	"github.com/biturbo/flightbox-transform/internal/gnss"
	"github.com/biturbo/flightbox-transform/internal/metrics"
	"github.com/biturbo/flightbox-transform/internal/registry"
	"github.com/biturbo/flightbox-transform/internal/units"
)

var log = logrus.WithField("component", "flarm")

const (
	// distanceMin/distanceMax are the FLARM protocol's relative-offset
	// field limits, in metres.
	distanceMin = -45000.0
	distanceMax = 45000.0
)

// Sweep performs one generation pass over reg, emitting every resulting
// sentence (in order) via emit. cfg.MyTail suppresses the own-ship record;
// alt supplies barometric altitude for the ADS-B-datatype-'A' and Mode-C
// paths.
func Sweep(reg *registry.Registry, gnssState *gnss.State, alt altimeter.Source, cfg config.Config, now time.Time, emit func(sentence string)) {
	start := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	snap := gnssState.Snapshot()
	metrics.RegistrySize.Set(float64(reg.Len()))

	reg.Sweep(now, func(rec registry.AircraftRecord, age time.Duration) {
		if age > registry.ExpiryAge {
			return
		}
		if rec.Identifier == cfg.MyTail {
			return
		}

		sentences := generateFor(rec, snap, alt, cfg)
		for _, s := range sentences {
			emit(s)
			metrics.SentencesEmitted.WithLabelValues(sentenceKind(s)).Inc()
		}
	})
}

func sentenceKind(s string) string {
	switch {
	case len(s) > 6 && s[1:6] == "PFLAA":
		return "PFLAA"
	default:
		return "PFLAU"
	}
}

func generateFor(rec registry.AircraftRecord, snap registry.GnssStatus, alt altimeter.Source, cfg config.Config) []string {
	if snap.Latitude != nil && snap.Longitude != nil && rec.Latitude != nil && rec.Longitude != nil {
		return generateADSB(rec, snap, alt)
	}
	if snap.Latitude != nil && snap.Longitude != nil && rec.Altitude != nil && rec.Latitude == nil {
		return generateModeC(rec, alt, cfg)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ownAltitudeMetres(rec registry.AircraftRecord, snap registry.GnssStatus, alt altimeter.Source) (float64, bool) {
	switch rec.DataType {
	case registry.DataTypeFlarm:
		if snap.Altitude == nil {
			return 0, false
		}
		return units.FeetToMetres(*rec.Altitude - *snap.Altitude), true
	default:
		baro, err := alt()
		if err != nil {
			log.WithError(err).Warn("altimeter unavailable, substituting 0 m")
			baro = 0
		}
		return units.FeetToMetres(*rec.Altitude) - baro, true
	}
}

func generateADSB(rec registry.AircraftRecord, snap registry.GnssStatus, alt altimeter.Source) []string {
	ownLat, ownLon := *snap.Latitude, *snap.Longitude
	acLat, acLon := *rec.Latitude, *rec.Longitude

	distanceM := geodesy.Distance(ownLat, ownLon, acLat, acLon)
	initialBearing := geodesy.InitialBearing(ownLat, ownLon, acLat, acLon)

	distanceNorth := geodesy.DistanceNorth(initialBearing, distanceM)
	distanceEast := geodesy.DistanceEast(initialBearing, distanceM)

	if distanceNorth < distanceMin || distanceNorth > distanceMax {
		return nil
	}
	if distanceEast < distanceMin || distanceEast > distanceMax {
		return nil
	}

	relNorth := clamp(distanceNorth, distanceMin, distanceMax)
	relEast := clamp(distanceEast, distanceMin, distanceMax)

	var relVertical float64
	if snap.Altitude != nil && rec.Altitude != nil {
		v, ok := ownAltitudeMetres(rec, snap, alt)
		if ok {
			relVertical = clamp(v, distanceMin, distanceMax)
		}
	}

	identifierType := "1"
	identifier := rec.Identifier
	if rec.Callsign != "" {
		identifierType = "1"
		identifier = rec.Identifier + "!" + rec.Callsign
	} else if rec.DataType == registry.DataTypeFlarm {
		identifierType = "2"
		identifier = rec.Identifier + "!Mode-F"
	}

	track := ""
	if rec.Course != nil {
		track = fmt.Sprintf("%.0f", clamp(*rec.Course, 0, 359))
	}

	groundSpeed := ""
	if rec.HSpeed != nil {
		groundSpeed = fmt.Sprintf("%.0f", clamp(units.KnotsToMPS(*rec.HSpeed), 0, 32767))
	}

	climbRate := ""
	if rec.VSpeed != nil {
		mps := units.FeetToMetres(*rec.VSpeed) / 60.0
		climbRate = fmt.Sprintf("%.1f", clamp(mps, -32.7, 32.7))
	}

	acftType := string(rec.AircraftType)

	alarmLevel, alarmType, alarmed := classifyADSB(distanceM, relVertical)
	if alarmed {
		identifier = rec.Identifier
	}

	laa := BuildSentence("PFLAA", []string{
		alarmLevel,
		fmt.Sprintf("%.0f", relNorth),
		fmt.Sprintf("%.0f", relEast),
		fmt.Sprintf("%.0f", relVertical),
		identifierType,
		identifier,
		track,
		"",
		groundSpeed,
		climbRate,
		acftType,
	})

	if !alarmed {
		return []string{laa, BuildSentence("PFLAU", []string{"1", "0", "2", "1", "0", "", "0", "0", "", ""})}
	}

	relBearing := ""
	if snap.Course != nil {
		relBearing = fmt.Sprintf("%.0f", clamp(geodesy.RelativeBearing(initialBearing, *snap.Course), -180, 180))
	}
	relDistance := fmt.Sprintf("%.0f", clamp(distanceM, 0, 2147483647))

	lau := BuildSentence("PFLAU", []string{
		"1", "0", "2", "1", alarmLevel, relBearing, alarmType, fmt.Sprintf("%.0f", relVertical), relDistance, identifier,
	})

	return []string{laa, lau}
}

// classifyADSB implements the three-band ADS-B alarm table in spec §4.C9.
func classifyADSB(distanceM, relVertical float64) (level, alarmType string, alarmed bool) {
	absV := relVertical
	if absV < 0 {
		absV = -absV
	}
	switch {
	case distanceM <= 1852 && absV <= 155:
		return "3", "2", true
	case distanceM <= 5100 && absV <= 310:
		return "2", "2", true
	case distanceM <= 9700 && absV <= 620:
		return "1", "2", true
	default:
		return "0", "0", false
	}
}

func generateModeC(rec registry.AircraftRecord, alt altimeter.Source, cfg config.Config) []string {
	baro, err := alt()
	if err != nil {
		log.WithError(err).Warn("altimeter unavailable, substituting 0 m")
		baro = 0
	}
	relVertical := units.FeetToMetres(*rec.Altitude) - baro
	if relVertical > 1000 || relVertical < -1000 {
		return nil
	}

	rssi := units.DBToRSSI(signalLevelOf(rec))
	bands := cfg.Bands

	var level, relNorth string
	absV := relVertical
	if absV < 0 {
		absV = -absV
	}

	switch {
	case rssi >= bands.Level3 && absV <= 155:
		level, relNorth = "3", "1852"
	case rssi >= bands.Level2 && absV <= 310:
		level, relNorth = "2", "5100"
	case rssi >= bands.Level1 && absV <= 310:
		level, relNorth = "1", "9700"
	default:
		return nil
	}

	identifier := rec.Identifier
	acftType := string(rec.AircraftType)

	laa := BuildSentence("PFLAA", []string{
		level, relNorth, "", fmt.Sprintf("%.0f", relVertical), "1", identifier, "", "", "", "", acftType,
	})
	lau := BuildSentence("PFLAU", []string{
		"1", "0", "2", "1", level, "", "2", fmt.Sprintf("%.0f", relVertical), relNorth, identifier,
	})

	return []string{laa, lau}
}

func signalLevelOf(rec registry.AircraftRecord) float64 {
	if rec.SignalLevel == nil {
		return 0
	}
	return *rec.SignalLevel
}

/*
	geodesy.go: Bearing, distance, and relative-position math used to turn an
	own-ship/aircraft coordinate pair into the North/East/Vertical offsets the
	FLARM generator emits.
*/

package geodesy

import (
	"math"

	geo "github.com/kellydunn/golang-geo"
)

// Distance returns the great-circle distance between two WGS-84 points, in
// metres. golang-geo's Point does the haversine math; Distance just
// converts its kilometre result into the metres the rest of this package
// works in.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := geo.NewPoint(lat1, lon1)
	p2 := geo.NewPoint(lat2, lon2)
	return p1.GreatCircleDistance(p2) * 1000.0
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func normalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// InitialBearing returns the forward azimuth from (lat1,lon1) to
// (lat2,lon2), in degrees, normalized to [0, 360).
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dLambda := radians(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	return normalizeBearing(degrees(math.Atan2(y, x)))
}

// FinalBearing returns the forward azimuth arriving at (lat2,lon2) when
// travelling from (lat1,lon1) — i.e. the initial bearing from the target
// back to the observer, reversed by 180 degrees.
func FinalBearing(lat1, lon1, lat2, lon2 float64) float64 {
	reverse := InitialBearing(lat2, lon2, lat1, lon1)
	return normalizeBearing(reverse + 180)
}

// DistanceNorth returns the North component (metres, signed) of a distance
// travelled along the given bearing.
func DistanceNorth(bearingDeg, distanceM float64) float64 {
	return distanceM * math.Cos(radians(bearingDeg))
}

// DistanceEast returns the East component (metres, signed) of a distance
// travelled along the given bearing.
func DistanceEast(bearingDeg, distanceM float64) float64 {
	return distanceM * math.Sin(radians(bearingDeg))
}

// RelativeBearing returns the smallest signed angle from ownCourse to
// targetBearing, in the range [-180, 180].
func RelativeBearing(targetBearingDeg, ownCourseDeg float64) float64 {
	diff := math.Mod(targetBearingDeg-ownCourseDeg, 360)
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	return diff
}

// AbsFromRelative reconstructs an absolute coordinate from an own-ship
// coordinate and a FLARM-relative offset reported by an OGN beacon.
//
// Resolved Open Question (spec.md §9): the source calls the same
// latitude-named reconstruction helper for both the latitude and the
// longitude case (utils.calculation.lat_abs_from_rel_flarm_coordinate is
// invoked twice, once per axis, with no cosine-latitude correction visible
// for the longitude call). Rather than inventing a correction the source
// never shows, this implementation matches the source's observable
// behaviour literally: plain addition on both axes.
func AbsFromRelative(own, rel float64) float64 {
	return own + rel
}

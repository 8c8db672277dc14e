/*
	units.go: Coordinate, altitude, speed, and signal-level conversions shared
	by every wire-format parser and by the FLARM sentence generator.
*/

package units

import "math"

const (
	feetPerMetre  = 1 / metresPerFoot
	metresPerFoot = 0.3048
	mpsPerKnot    = 0.514444
)

// NMEACoordToDegrees converts an NMEA-0183 ddmm.mmmm coordinate (as found in
// GPGGA/GPGLL latitude and longitude fields) into signed-less decimal
// degrees. Hemisphere sign is applied by the caller.
func NMEACoordToDegrees(ddmm float64) float64 {
	degrees := math.Floor(ddmm / 100)
	minutes := ddmm - degrees*100
	return degrees + minutes/60
}

// OGNCoordToDegrees converts an APRS-style four-digit-minutes coordinate
// (ddmm.mm, two decimal places) into decimal degrees. The format is the same
// shape as NMEACoordToDegrees; kept as a distinct function because the two
// wire formats are independent per spec and may diverge in precision rules.
func OGNCoordToDegrees(ddmm float64) float64 {
	degrees := math.Floor(ddmm / 100)
	minutes := ddmm - degrees*100
	return degrees + minutes/60
}

// FeetToMetres converts feet to metres.
func FeetToMetres(feet float64) float64 {
	return feet * metresPerFoot
}

// MetresToFeet converts metres to feet.
func MetresToFeet(metres float64) float64 {
	return metres * feetPerMetre
}

// KnotsToMPS converts knots to metres per second.
func KnotsToMPS(knots float64) float64 {
	return knots * mpsPerKnot
}

// dbToRSSIFloor and dbToRSSIScale calibrate DBToRSSI. The source's exact
// dB-to-RSSI curve is not recoverable from the excerpt available (see
// spec.md Open Questions); this calibration only needs to be monotone
// increasing in dB so Mode-C banding stays self-consistent.
const (
	dbToRSSIFloor = -40.0
	dbToRSSIScale = 0.35
)

// DBToRSSI maps a raw SBS-1 MSG,5 signal-level field (a small positive dB
// value as reported by the decoder) onto an approximate receiver RSSI in
// dBm. A stronger raw signal (higher db) yields a less negative rssi,
// i.e. output is monotone-increasing (towards 0) in db — closer aircraft
// report a stronger signal and therefore a higher (less negative) rssi,
// which is what Mode-C banding in the FLARM generator depends on.
func DBToRSSI(db float64) float64 {
	if db < 0 {
		db = 0
	}
	rssi := dbToRSSIFloor + db*dbToRSSIScale
	if rssi > 0 {
		rssi = 0
	}
	return rssi
}

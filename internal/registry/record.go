/*
	record.go: The AircraftRecord and GnssStatus data model (spec §3).
*/

package registry

import "time"

// Datatype tags the source of an AircraftRecord, per spec §3. Mode-C is not
// a stored datatype: it is the generator's fallback path, chosen when a
// record has an altitude but no latitude/longitude (spec §4.C9).
const (
	DataTypeADSB     = 'A'
	DataTypeFlarm    = 'F'
	AircraftTypeNone = '0'
)

// AircraftRecord is one observed aircraft. Identifier is the registry key
// and never changes after insertion. Pointer fields are nil until first
// set, per spec's "independently absent until set" invariant.
type AircraftRecord struct {
	Identifier   string
	DataType     byte
	Callsign     string
	Latitude     *float64
	Longitude    *float64
	Altitude     *float64 // feet
	HSpeed       *float64 // knots
	VSpeed       *float64 // feet per minute
	Course       *float64 // degrees, 0..359
	SignalLevel  *float64 // dB, SBS-1 MSG,5 field 3
	AircraftType byte     // FLARM category hex digit
	LastSeen     time.Time
}

// GnssStatus is the own-ship singleton state. Each field is independently
// absent until first set by the NMEA parser.
type GnssStatus struct {
	Latitude  *float64
	Longitude *float64
	Altitude  *float64 // feet
	HSpeed    *float64 // knots
	Course    *float64 // degrees
}

// Ptr returns a pointer to a copy of v, for populating the optional fields
// above from a freshly parsed value.
func Ptr(v float64) *float64 { return &v }

/*
	altimeter.go: the barometric altitude collaborator (spec §6). The real
	sensor (a BMP280 or similar, see the original watchdog's altimeter
	handling) lives outside this module's scope; the generator only needs
	a callable that returns metres and an error.
*/

package altimeter

// Source returns the current barometric altitude of the own ship, in
// metres. Refresh cadence is the implementer's choice; the FLARM
// generator calls it for each record it evaluates on the ADS-B ('A') and
// Mode-C paths and never caches the result.
type Source func() (float64, error)

// Static returns a Source that always reports a fixed altitude. Useful
// for tests and for installations without a barometric sensor.
func Static(metres float64) Source {
	return func() (float64, error) {
		return metres, nil
	}
}

package flarm

import (
	"strings"
	"testing"
	"time"

	"github.com/biturbo/flightbox-transform/internal/altimeter"
	"github.com/biturbo/flightbox-transform/internal/config"
	"github.com/biturbo/flightbox-transform/internal/gnss"
	"github.com/biturbo/flightbox-transform/internal/registry"
)

func testConfig(tail string, det int) config.Config {
	bands := map[int]config.SensitivityBands{
		1: {Level3: -29, Level2: -30, Level1: -31},
		2: {Level3: -30, Level2: -31, Level1: -32},
		3: {Level3: -31, Level2: -32, Level1: -33},
		4: {Level3: -32, Level2: -33, Level1: -34},
	}
	return config.Config{MyTail: tail, ModeCDet: det, Bands: bands[det]}
}

func collect(sentences *[]string) func(string) {
	return func(s string) { *sentences = append(*sentences, s) }
}

// Scenario 1: ADS-B proximity alarm.
func TestSweepADSBProximityAlarm(t *testing.T) {
	reg := registry.New()
	gnssState := gnss.NewState()
	gnssState.HandleSentence("$GPGGA,123519,4700.000,N,00800.000,E,1,08,0.9,609.6,M,0.0,M,,*7C")

	now := time.Now()
	reg.Upsert("DEADBE", registry.DataTypeADSB, func(rec *registry.AircraftRecord) {
		rec.LastSeen = now
		rec.Latitude = registry.Ptr(47.0100)
		rec.Longitude = registry.Ptr(8.0000)
		rec.Altitude = registry.Ptr(2200.0)
		rec.Course = registry.Ptr(0.0)
		rec.HSpeed = registry.Ptr(120.0)
		rec.VSpeed = registry.Ptr(0.0)
	})

	var sentences []string
	alt := altimeter.Static(609)
	cfg := testConfig("NOBODY", 4)

	Sweep(reg, gnssState, alt, cfg, now, collect(&sentences))

	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences (PFLAA+PFLAU), got %d: %v", len(sentences), sentences)
	}
	if !strings.Contains(sentences[0], "$PFLAA,3,") {
		t.Errorf("expected level-3 alarm in PFLAA, got %q", sentences[0])
	}
	if !strings.HasPrefix(sentences[1], "$PFLAU,1,0,2,1,3,") {
		t.Errorf("expected level-3 PFLAU, got %q", sentences[1])
	}
}

// Scenario 2: ADS-B out of range — record kept, no sentence this sweep.
func TestSweepADSBOutOfRangeEmitsNothing(t *testing.T) {
	reg := registry.New()
	gnssState := gnss.NewState()
	gnssState.HandleSentence("$GPGGA,123519,4700.000,N,00800.000,E,1,08,0.9,609.6,M,0.0,M,,*7C")

	now := time.Now()
	reg.Upsert("FARAWAY", registry.DataTypeADSB, func(rec *registry.AircraftRecord) {
		rec.LastSeen = now
		rec.Latitude = registry.Ptr(47.5)
		rec.Longitude = registry.Ptr(8.0)
		rec.Altitude = registry.Ptr(2000.0)
	})

	var sentences []string
	Sweep(reg, gnssState, altimeter.Static(609), testConfig("NOBODY", 4), now, collect(&sentences))

	if len(sentences) != 0 {
		t.Errorf("expected no sentences for out-of-range aircraft, got %v", sentences)
	}
	if _, ok := reg.Get("FARAWAY"); !ok {
		t.Error("expected out-of-range record to remain in the registry")
	}
}

// Scenario 3: Mode-C banding.
func TestSweepModeCBanding(t *testing.T) {
	reg := registry.New()
	gnssState := gnss.NewState()
	gnssState.HandleSentence("$GPGGA,123519,4700.000,N,00800.000,E,1,08,0.9,609.6,M,0.0,M,,*7C")

	now := time.Now()
	reg.Upsert("AABBCC", registry.DataTypeADSB, func(rec *registry.AircraftRecord) {
		rec.LastSeen = now
		rec.Altitude = registry.Ptr(2050.0)
		// DBToRSSI(db) = -40 + db*0.35; solve db for rssi == -29: db ≈ 31.43
		rec.SignalLevel = registry.Ptr((-29.0 + 40.0) / 0.35)
	})

	var sentences []string
	Sweep(reg, gnssState, altimeter.Static(feetToMetres(2000)), testConfig("NOBODY", 1), now, collect(&sentences))

	if len(sentences) != 2 {
		t.Fatalf("expected PFLAA+PFLAU for Mode-C band, got %d: %v", len(sentences), sentences)
	}
	if !strings.Contains(sentences[0], "$PFLAA,3,1852,") {
		t.Errorf("expected level-3 Mode-C banding with relN=1852, got %q", sentences[0])
	}
}

// Scenario 5: own-ship echo suppressed by identifier == my_tail.
func TestSweepOwnShipSuppressed(t *testing.T) {
	reg := registry.New()
	gnssState := gnss.NewState()
	gnssState.HandleSentence("$GPGGA,123519,4700.000,N,00800.000,E,1,08,0.9,609.6,M,0.0,M,,*7C")

	now := time.Now()
	reg.Upsert("FLIGHTBOX", registry.DataTypeADSB, func(rec *registry.AircraftRecord) {
		rec.LastSeen = now
		rec.Latitude = registry.Ptr(47.0001)
		rec.Longitude = registry.Ptr(8.0001)
		rec.Altitude = registry.Ptr(2000.0)
	})

	var sentences []string
	Sweep(reg, gnssState, altimeter.Static(609), testConfig("FLIGHTBOX", 4), now, collect(&sentences))

	if len(sentences) != 0 {
		t.Errorf("expected own-ship identifier to be suppressed, got %v", sentences)
	}
}

// Scenario 6: expiry sweep skips stale records without emitting.
func TestSweepExpiredRecordEmitsNothing(t *testing.T) {
	reg := registry.New()
	gnssState := gnss.NewState()
	gnssState.HandleSentence("$GPGGA,123519,4700.000,N,00800.000,E,1,08,0.9,609.6,M,0.0,M,,*7C")

	base := time.Now()
	reg.Upsert("STALE01", registry.DataTypeADSB, func(rec *registry.AircraftRecord) {
		rec.LastSeen = base
		rec.Latitude = registry.Ptr(47.0001)
		rec.Longitude = registry.Ptr(8.0001)
		rec.Altitude = registry.Ptr(2000.0)
	})

	var sentences []string
	Sweep(reg, gnssState, altimeter.Static(609), testConfig("NOBODY", 4), base.Add(31*time.Second), collect(&sentences))

	if len(sentences) != 0 {
		t.Errorf("expected no sentences for expired record, got %v", sentences)
	}
	if _, ok := reg.Get("STALE01"); ok {
		t.Error("expected expired record to be removed after the sweep")
	}
}

func feetToMetres(feet float64) float64 {
	return feet * 0.3048
}

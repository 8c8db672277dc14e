package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/biturbo/flightbox-transform/internal/datahub"
	"github.com/biturbo/flightbox-transform/internal/gnss"
	"github.com/biturbo/flightbox-transform/internal/registry"
)

func TestRunRoutesByContentTypeAndExitsOnPoisonPill(t *testing.T) {
	reg := registry.New()
	gnssState := gnss.NewState()
	queue := datahub.NewChannelQueue(8)

	ctx := context.Background()
	_ = queue.Put(ctx, datahub.Item{ContentType: datahub.ContentTypeNMEA, Payload: "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"})

	fields := make([]string, 22)
	fields[0], fields[1], fields[4] = "MSG", "3", "DEADBE"
	fields[11], fields[14], fields[15] = "2200", "47.0100", "8.0000"
	_ = queue.Put(ctx, datahub.Item{ContentType: datahub.ContentTypeSBS1, Payload: joinFields(fields)})

	queue.Close()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, queue, reg, gnssState) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on clean poison-pill shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after poison pill")
	}

	if gnssState.Snapshot().Latitude == nil {
		t.Error("expected NMEA item to update GNSS state")
	}
	if _, ok := reg.Get("DEADBE"); !ok {
		t.Error("expected SBS-1 item to create a registry record")
	}
}

func TestRunExitsOnContextCancellation(t *testing.T) {
	reg := registry.New()
	gnssState := gnss.NewState()
	queue := datahub.NewChannelQueue(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, queue, reg, gnssState)
	if err == nil {
		t.Fatal("expected Run to return an error when the context is already cancelled")
	}
}

func joinFields(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += "," + f
	}
	return out
}

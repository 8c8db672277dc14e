/*
	dispatch.go: the input dispatcher (spec §4.C8). Pulls tagged items from
	the inbound datahub queue and routes them by content-type to the NMEA,
	SBS-1, or OGN handlers. Never parses or mutates state itself — that is
	each handler's job.
*/

package dispatch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biturbo/flightbox-transform/internal/datahub"
	"github.com/biturbo/flightbox-transform/internal/gnss"
	"github.com/biturbo/flightbox-transform/internal/metrics"
	"github.com/biturbo/flightbox-transform/internal/ogn"
	"github.com/biturbo/flightbox-transform/internal/registry"
	"github.com/biturbo/flightbox-transform/internal/sbs1"
)

var log = logrus.WithField("component", "dispatch")

// Run pulls from in until the queue is closed (poison pill) or ctx is
// cancelled, routing each item by content type. It returns nil on a clean
// poison-pill shutdown and ctx.Err() on cancellation.
func Run(ctx context.Context, in datahub.Queue, reg *registry.Registry, gnssState *gnss.State) error {
	for {
		item, ok, err := in.Get(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("dispatch: transient error reading input queue")
			time.Sleep(100 * time.Millisecond) // short backoff before retrying
			continue
		}
		if !ok {
			log.Debug("dispatch: received poison pill, exiting")
			return nil
		}

		metrics.ItemsIngested.WithLabelValues(item.ContentType).Inc()
		now := time.Now()

		switch item.ContentType {
		case datahub.ContentTypeNMEA:
			gnssState.HandleSentence(item.Payload)
		case datahub.ContentTypeSBS1:
			sbs1.HandleLine(reg, now, item.Payload)
		case datahub.ContentTypeOGN:
			ogn.HandleLine(reg, gnssState.Snapshot(), now, item.Payload)
		default:
			log.WithField("content_type", item.ContentType).Warn("dispatch: unrecognised content type")
		}
	}
}

/*
	transform.go: the transformation module (spec §4.C10). Owns the
	aircraft registry and GNSS state, and runs the input dispatcher and
	FLARM generator as two concurrently supervised tasks via
	golang.org/x/sync/errgroup. Shutdown — by poison pill or external
	cancellation — cancels both tasks through the shared context and
	returns once both have exited. Run does not close the input queue.
*/

package transform

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/biturbo/flightbox-transform/internal/altimeter"
	"github.com/biturbo/flightbox-transform/internal/config"
	"github.com/biturbo/flightbox-transform/internal/datahub"
	"github.com/biturbo/flightbox-transform/internal/dispatch"
	"github.com/biturbo/flightbox-transform/internal/flarm"
	"github.com/biturbo/flightbox-transform/internal/gnss"
	"github.com/biturbo/flightbox-transform/internal/registry"
)

var log = logrus.WithField("component", "transform")

// SweepInterval is how often the FLARM generator scans the registry,
// per spec §4.C9 ("runs once per second").
const SweepInterval = 1 * time.Second

// Module wires the registry, GNSS state, input queue, output queue, and
// configuration together and supervises the two concurrent tasks that
// make up the transformation pipeline.
type Module struct {
	Registry *registry.Registry
	GNSS     *gnss.State

	In  datahub.Queue
	Out datahub.Queue
	Cfg config.Config
	Alt altimeter.Source
}

// New builds a Module ready to Run.
func New(in, out datahub.Queue, cfg config.Config, alt altimeter.Source) *Module {
	return &Module{
		Registry: registry.New(),
		GNSS:     gnss.NewState(),
		In:       in,
		Out:      out,
		Cfg:      cfg,
		Alt:      alt,
	}
}

// Run starts the dispatcher and generator and blocks until both exit.
// Cancelling ctx, or the input queue receiving a poison pill, triggers an
// orderly shutdown of both tasks.
func (m *Module) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel() // a clean poison-pill exit must also stop the generator
		return dispatch.Run(gctx, m.In, m.Registry, m.GNSS)
	})

	g.Go(func() error {
		return m.runGenerator(gctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (m *Module) runGenerator(ctx context.Context) error {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			flarm.Sweep(m.Registry, m.GNSS, m.Alt, m.Cfg, now, func(sentence string) {
				if err := m.Out.Put(ctx, datahub.Item{ContentType: datahub.ContentTypeFLARM, Payload: sentence}); err != nil {
					log.WithError(err).Warn("transform: failed to publish FLARM sentence")
				}
			})
		}
	}
}

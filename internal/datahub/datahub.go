/*
	datahub.go: The typed-message contract the transformation core reads
	from and writes to. The real Datahub pub/sub infrastructure is out of
	scope (spec §1); ChannelQueue is an in-memory stand-in that satisfies
	the same Queue contract so the core can be exercised end-to-end in
	tests and in the cmd/ entrypoint.
*/

package datahub

import (
	"context"
	"fmt"

	"github.com/biturbo/flightbox-transform/internal/flighterrors"
)

// Content-type tags carried on every Item, per spec §6.
const (
	ContentTypeNMEA  = "nmea"
	ContentTypeSBS1  = "sbs1"
	ContentTypeOGN   = "ogn"
	ContentTypeFLARM = "flarm"
)

// Item is a tagged (content_type, payload) pair flowing through the hub.
type Item struct {
	ContentType string
	Payload     string
}

// Queue is the subscribe/publish contract the core depends on. Get returns
// ok=false when the queue has been closed (the "poison pill" case).
type Queue interface {
	Get(ctx context.Context) (item Item, ok bool, err error)
	Put(ctx context.Context, item Item) error
}

// ChannelQueue implements Queue over a buffered Go channel. Put blocks when
// the channel is full, matching spec §5(c)'s "blocking put is acceptable"
// note. Closing the queue is the poison-pill equivalent: a pending or
// future Get returns ok=false without error.
type ChannelQueue struct {
	items chan Item
}

// NewChannelQueue creates a ChannelQueue with the given buffer capacity.
func NewChannelQueue(capacity int) *ChannelQueue {
	return &ChannelQueue{items: make(chan Item, capacity)}
}

// Get blocks until an item is available, the context is cancelled, or the
// queue is closed.
func (q *ChannelQueue) Get(ctx context.Context) (Item, bool, error) {
	select {
	case item, ok := <-q.items:
		if !ok {
			return Item{}, false, nil
		}
		return item, true, nil
	case <-ctx.Done():
		return Item{}, false, &flighterrors.TransientResourceError{Op: "datahub.Get", Err: ctx.Err()}
	}
}

// Put blocks until there is room in the queue, the context is cancelled, or
// the queue is closed (in which case it panics, matching the Go idiom of
// never sending on a closed channel — callers must stop publishing once
// Close has been called).
func (q *ChannelQueue) Put(ctx context.Context, item Item) error {
	select {
	case q.items <- item:
		return nil
	case <-ctx.Done():
		return &flighterrors.TransientResourceError{Op: "datahub.Put", Err: ctx.Err()}
	}
}

// Close sends the poison pill by closing the underlying channel. Safe to
// call exactly once.
func (q *ChannelQueue) Close() {
	close(q.items)
}

func (i Item) String() string {
	return fmt.Sprintf("(%s, %q)", i.ContentType, i.Payload)
}

// Package dispatch demultiplexes raw frames into typed handlers keyed
// by wire kind.
package dispatch

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"matchroom/proto"
)

type entry struct {
	id uint64
	fn func(ctx context.Context, payload []byte, from uuid.UUID)
}

// Dispatcher routes decoded frames to registered handlers.
//
// Several handlers may be registered for the same kind; they all fire
// in registration order. Frames with an unregistered kind are dropped.
type Dispatcher struct {
	logger   zerolog.Logger
	mx       sync.RWMutex
	nextID   uint64
	handlers map[proto.Kind][]entry
}

func New(logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		logger:   logger.With().Str("component", "dispatch").Logger(),
		handlers: make(map[proto.Kind][]entry),
	}
}

// On registers fn for frames of the given kind. Each matching frame is
// decoded into a fresh T before fn is invoked. The returned func
// unregisters exactly this handler and is safe to call more than once.
func On[T any](d *Dispatcher, kind proto.Kind, fn func(ctx context.Context, msg T, from uuid.UUID)) func() {
	d.mx.Lock()
	d.nextID++
	id := d.nextID
	d.handlers[kind] = append(d.handlers[kind], entry{
		id: id,
		fn: func(ctx context.Context, payload []byte, from uuid.UUID) {
			var msg T
			if err := proto.DecodePayload(payload, &msg); err != nil {
				d.logger.Debug().Err(err).
					Stringer("kind", kind).
					Msg("dropping undecodable payload")
				return
			}
			fn(ctx, msg, from)
		},
	})
	d.mx.Unlock()

	return func() { d.off(kind, id) }
}

func (d *Dispatcher) off(kind proto.Kind, id uint64) {
	d.mx.Lock()
	defer d.mx.Unlock()
	entries := d.handlers[kind]
	for i, e := range entries {
		if e.id == id {
			d.handlers[kind] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Dispatch decodes the frame's kind tag and invokes every handler
// registered for it. Unknown kinds and malformed frames are dropped
// without error, this keeps the protocol permissive towards newer
// peers.
func (d *Dispatcher) Dispatch(ctx context.Context, frame []byte, from uuid.UUID) {
	kind, payload, err := proto.DecodeKind(frame)
	if err != nil {
		d.logger.Debug().Err(err).Msg("dropping malformed frame")
		return
	}

	d.mx.RLock()
	entries := make([]entry, len(d.handlers[kind]))
	copy(entries, d.handlers[kind])
	d.mx.RUnlock()

	if len(entries) == 0 {
		d.logger.Debug().
			Stringer("kind", kind).
			Msg("no handler registered, frame dropped")
		return
	}
	for _, e := range entries {
		e.fn(ctx, payload, from)
	}
}

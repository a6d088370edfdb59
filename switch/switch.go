// Package _switch owns the outbound side of every live connection:
// a table of connection wires plus unicast and fanout delivery.
package _switch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"matchroom/model"
	"matchroom/proto"
)

const (
	defaultSendTimeout = time.Second
)

type Switch struct {
	logger zerolog.Logger
	mx     *sync.RWMutex
	wires  map[uuid.UUID]model.Wire
}

func NewSwitch(logger *zerolog.Logger) *Switch {
	return &Switch{
		logger: logger.With().Str("component", "switch").Logger(),
		mx:     &sync.RWMutex{},
		wires:  make(map[uuid.UUID]model.Wire),
	}
}

func (sw *Switch) Bind(connID uuid.UUID, wire model.Wire) {
	sw.mx.Lock()
	sw.wires[connID] = wire
	sw.mx.Unlock()
	sw.logger.Debug().
		Stringer("connID", connID).
		Msg("wire bound")
}

func (sw *Switch) Unbind(connID uuid.UUID) {
	sw.mx.Lock()
	delete(sw.wires, connID)
	sw.mx.Unlock()
	sw.logger.Debug().
		Stringer("connID", connID).
		Msg("wire unbound")
}

// Send encodes msg and delivers it to a single connection. Delivery to
// an unknown or dead connection is not an error: the peer may have
// disconnected between the lookup and the send.
func (sw *Switch) Send(ctx context.Context, connID uuid.UUID, kind proto.Kind, msg any) {
	frame, err := proto.Encode(kind, msg)
	if err != nil {
		sw.logger.Error().Err(err).
			Stringer("kind", kind).
			Msg("failed to encode outgoing message")
		return
	}
	sw.deliver(ctx, connID, kind, frame)
}

// Fanout delivers msg to every listed connection except the one named
// by except (uuid.Nil excludes nobody). The frame is encoded once.
func (sw *Switch) Fanout(ctx context.Context, connIDs []uuid.UUID, except uuid.UUID, kind proto.Kind, msg any) {
	frame, err := proto.Encode(kind, msg)
	if err != nil {
		sw.logger.Error().Err(err).
			Stringer("kind", kind).
			Msg("failed to encode fanout message")
		return
	}
	for _, connID := range connIDs {
		if connID == except {
			continue
		}
		sw.deliver(ctx, connID, kind, frame)
	}
}

func (sw *Switch) deliver(ctx context.Context, connID uuid.UUID, kind proto.Kind, frame []byte) {
	sw.mx.RLock()
	wire, ok := sw.wires[connID]
	sw.mx.RUnlock()
	if !ok {
		sw.logger.Debug().
			Stringer("connID", connID).
			Stringer("kind", kind).
			Msg("cannot deliver, wire not found")
		return
	}

	tCh := time.NewTimer(defaultSendTimeout)
	defer tCh.Stop()
	select {
	case <-ctx.Done():
	case <-tCh.C:
		sw.logger.Error().
			Stringer("connID", connID).
			Stringer("kind", kind).
			Msg("dead endpoint")
	case wire.TX <- frame:
		sw.logger.Debug().
			Stringer("connID", connID).
			Stringer("kind", kind).
			Msg("frame delivered")
	}
}

// Package service implements the authoritative session controller:
// it binds connection lifecycle and inbound requests to registry
// mutations and composes the answers/notifications going back out.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"matchroom/dispatch"
	"matchroom/model"
	"matchroom/proto"
)

var (
	ErrConnect      = errors.New("unable to accept connection")
	ErrAlreadyBound = errors.New("connection is already bound")
)

type (
	// Store is the identity/room authority consumed by the service.
	Store interface {
		AddPlayer(name string) (model.Player, error)
		RemovePlayer(id uint32) error
		RenamePlayer(id uint32, newName string) error
		GetPlayer(id uint32) (model.Player, error)
		CreateRoom(name string, requesterID uint32) error
		JoinRoom(playerID uint32, roomName string) error
		LeaveRoom(playerID uint32) error
		RoomMembers(roomName string) ([]uint32, error)
		RoomAdmin(roomName string) (uint32, error)
		RoomSnapshot(roomName string) (model.RoomInfo, error)
	}

	// Switch delivers encoded frames to live connections.
	Switch interface {
		Bind(connID uuid.UUID, wire model.Wire)
		Unbind(connID uuid.UUID)
		Send(ctx context.Context, connID uuid.UUID, kind proto.Kind, msg any)
		Fanout(ctx context.Context, connIDs []uuid.UUID, except uuid.UUID, kind proto.Kind, msg any)
	}

	Service struct {
		store      Store
		sw         Switch
		dispatcher *dispatch.Dispatcher
		logger     zerolog.Logger

		// mu serializes every mutation plus the fanout it implies.
		// Join/leave ordering decides admin succession, so request
		// handling must not interleave.
		mu           sync.Mutex
		connToPlayer map[uuid.UUID]uint32
		playerToConn map[uint32]uuid.UUID
	}

	Config struct {
		Store      Store
		Switch     Switch
		Dispatcher *dispatch.Dispatcher
		Logger     *zerolog.Logger
	}
)

func NewService(cfg Config) *Service {
	svc := &Service{
		store:        cfg.Store,
		sw:           cfg.Switch,
		dispatcher:   cfg.Dispatcher,
		logger:       cfg.Logger.With().Str("component", "session").Logger(),
		connToPlayer: make(map[uuid.UUID]uint32),
		playerToConn: make(map[uint32]uuid.UUID),
	}

	dispatch.On(cfg.Dispatcher, proto.KindCreateRoom, svc.handleCreateRoom)
	dispatch.On(cfg.Dispatcher, proto.KindJoinRoom, svc.handleJoinRoom)
	dispatch.On(cfg.Dispatcher, proto.KindLeaveRoom, svc.handleLeaveRoom)
	dispatch.On(cfg.Dispatcher, proto.KindRename, svc.handleRename)
	dispatch.On(cfg.Dispatcher, proto.KindStartGame, svc.handleStartGame)

	return svc
}

// Connected allocates an identity for a fresh connection, binds it to
// the wire and greets the peer with its identity.
func (svc *Service) Connected(ctx context.Context, connID uuid.UUID, wire model.Wire) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, ok := svc.connToPlayer[connID]; ok {
		return errors.Join(ErrConnect, ErrAlreadyBound)
	}
	player, err := svc.store.AddPlayer("")
	if err != nil {
		return errors.Join(ErrConnect, err)
	}
	svc.connToPlayer[connID] = player.ID
	svc.playerToConn[player.ID] = connID
	svc.sw.Bind(connID, wire)

	svc.sw.Send(ctx, connID, proto.KindWelcome, proto.Welcome{Player: player})

	svc.logger.Debug().
		Stringer("connID", connID).
		Uint32("playerID", player.ID).
		Msg("player connected")
	return nil
}

// Disconnected tears the session down: the player leaves its room as
// if it had asked to (remaining members are notified, admin rights
// move on), then the identity and the binding are erased.
func (svc *Service) Disconnected(ctx context.Context, connID uuid.UUID) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	playerID, ok := svc.connToPlayer[connID]
	if !ok {
		return
	}
	svc.leaveCurrentRoom(ctx, playerID)
	if err := svc.store.RemovePlayer(playerID); err != nil {
		svc.logger.Error().Err(err).
			Uint32("playerID", playerID).
			Msg("failed to remove player")
	}
	delete(svc.connToPlayer, connID)
	delete(svc.playerToConn, playerID)
	svc.sw.Unbind(connID)

	svc.logger.Debug().
		Stringer("connID", connID).
		Uint32("playerID", playerID).
		Msg("player disconnected")
}

// HandleFrame feeds one inbound frame into the dispatcher.
func (svc *Service) HandleFrame(ctx context.Context, frame []byte, connID uuid.UUID) {
	svc.dispatcher.Dispatch(ctx, frame, connID)
}

// leaveCurrentRoom runs the leave sequence for a player: capture admin
// status, drop the membership, notify the survivors, hand admin rights
// to the new head if the leaver held them. Reports whether a room was
// actually left. Callers must hold mu.
func (svc *Service) leaveCurrentRoom(ctx context.Context, playerID uint32) bool {
	player, err := svc.store.GetPlayer(playerID)
	if err != nil || player.Room == "" {
		return false
	}
	roomName := player.Room

	adminID, err := svc.store.RoomAdmin(roomName)
	wasAdmin := err == nil && adminID == playerID

	if err = svc.store.LeaveRoom(playerID); err != nil {
		svc.logger.Error().Err(err).
			Uint32("playerID", playerID).
			Str("room", roomName).
			Msg("failed to leave room")
		return false
	}
	svc.notifyDeparture(ctx, roomName, playerID, wasAdmin)
	return true
}

// notifyDeparture tells the remaining members of roomName that the
// player left and, when admin rights became vacant, grants them to the
// new head. No-op when the room was emptied and deleted.
func (svc *Service) notifyDeparture(ctx context.Context, roomName string, leaverID uint32, wasAdmin bool) {
	members, err := svc.store.RoomMembers(roomName)
	if err != nil || len(members) == 0 {
		return
	}
	svc.sw.Fanout(ctx, svc.conns(members), uuid.Nil, proto.KindPlayerLeft,
		proto.PlayerLeft{PlayerID: leaverID})

	if wasAdmin {
		if connID, ok := svc.playerToConn[members[0]]; ok {
			svc.sw.Send(ctx, connID, proto.KindAdminGranted, proto.AdminGranted{})
		}
	}
}

// conns resolves player ids to their connection ids, skipping players
// that disconnected meanwhile. Callers must hold mu.
func (svc *Service) conns(playerIDs []uint32) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(playerIDs))
	for _, id := range playerIDs {
		if connID, ok := svc.playerToConn[id]; ok {
			out = append(out, connID)
		}
	}
	return out
}

func (svc *Service) requester(connID uuid.UUID) (uint32, bool) {
	playerID, ok := svc.connToPlayer[connID]
	return playerID, ok
}

package service

import (
	"context"

	"github.com/google/uuid"

	"matchroom/proto"
)

func (svc *Service) handleCreateRoom(ctx context.Context, msg proto.CreateRoom, connID uuid.UUID) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	var success bool
	if playerID, ok := svc.requester(connID); ok {
		err := svc.store.CreateRoom(msg.RoomName, playerID)
		if err != nil {
			svc.logger.Debug().Err(err).
				Uint32("playerID", playerID).
				Str("room", msg.RoomName).
				Msg("create room rejected")
		}
		success = err == nil
	}
	svc.sw.Send(ctx, connID, proto.KindCreateRoomAnswer, proto.CreateRoomAnswer{Success: success})
}

func (svc *Service) handleJoinRoom(ctx context.Context, msg proto.JoinRoom, connID uuid.UUID) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	answer := proto.JoinRoomAnswer{}
	playerID, ok := svc.requester(connID)
	if !ok {
		svc.sw.Send(ctx, connID, proto.KindJoinRoomAnswer, answer)
		return
	}

	// a join may implicitly move the player out of another room; the
	// old room's survivors get the same departure sequence as for an
	// explicit leave
	var (
		oldRoom  string
		wasAdmin bool
	)
	if player, err := svc.store.GetPlayer(playerID); err == nil && player.Room != "" {
		oldRoom = player.Room
		adminID, aErr := svc.store.RoomAdmin(oldRoom)
		wasAdmin = aErr == nil && adminID == playerID
	}

	if err := svc.store.JoinRoom(playerID, msg.RoomName); err != nil {
		svc.logger.Debug().Err(err).
			Uint32("playerID", playerID).
			Str("room", msg.RoomName).
			Msg("join room rejected")
		svc.sw.Send(ctx, connID, proto.KindJoinRoomAnswer, answer)
		return
	}

	snapshot, err := svc.store.RoomSnapshot(msg.RoomName)
	if err != nil {
		// room vanished between mutation and snapshot; cannot happen
		// while mu is held
		svc.sw.Send(ctx, connID, proto.KindJoinRoomAnswer, answer)
		return
	}
	answer.Success = true
	answer.Players = snapshot.Players
	svc.sw.Send(ctx, connID, proto.KindJoinRoomAnswer, answer)

	joined := proto.PlayerJoined{PlayerID: playerID}
	for _, p := range snapshot.Players {
		if p.ID == playerID {
			joined.Name = p.Name
			break
		}
	}
	memberIDs := make([]uint32, 0, len(snapshot.Players))
	for _, p := range snapshot.Players {
		memberIDs = append(memberIDs, p.ID)
	}
	svc.sw.Fanout(ctx, svc.conns(memberIDs), connID, proto.KindPlayerJoined, joined)

	if oldRoom != "" {
		svc.notifyDeparture(ctx, oldRoom, playerID, wasAdmin)
	}
}

func (svc *Service) handleLeaveRoom(ctx context.Context, _ proto.LeaveRoom, connID uuid.UUID) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	var success bool
	if playerID, ok := svc.requester(connID); ok {
		success = svc.leaveCurrentRoom(ctx, playerID)
	}
	svc.sw.Send(ctx, connID, proto.KindLeaveRoomAnswer, proto.LeaveRoomAnswer{Success: success})
}

func (svc *Service) handleRename(ctx context.Context, msg proto.Rename, connID uuid.UUID) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	var success bool
	playerID, ok := svc.requester(connID)
	if ok {
		success = svc.store.RenamePlayer(playerID, msg.NewName) == nil
	}
	svc.sw.Send(ctx, connID, proto.KindRenameAnswer, proto.RenameAnswer{Success: success})

	if !success {
		return
	}
	if player, err := svc.store.GetPlayer(playerID); err == nil && player.Room != "" {
		if members, mErr := svc.store.RoomMembers(player.Room); mErr == nil {
			svc.sw.Fanout(ctx, svc.conns(members), connID, proto.KindPlayerRenamed,
				proto.PlayerRenamed{PlayerID: playerID, NewName: msg.NewName})
		}
	}
}

func (svc *Service) handleStartGame(ctx context.Context, _ proto.StartGame, connID uuid.UUID) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	var (
		success bool
		room    string
	)
	playerID, ok := svc.requester(connID)
	if ok {
		if player, err := svc.store.GetPlayer(playerID); err == nil && player.Room != "" {
			adminID, aErr := svc.store.RoomAdmin(player.Room)
			if aErr == nil && adminID == playerID {
				success = true
				room = player.Room
			}
		}
	}
	svc.sw.Send(ctx, connID, proto.KindStartGameAnswer, proto.StartGameAnswer{Success: success})

	if !success {
		svc.logger.Debug().
			Uint32("playerID", playerID).
			Msg("start game rejected, requester is not a room admin")
		return
	}
	if members, err := svc.store.RoomMembers(room); err == nil {
		svc.sw.Fanout(ctx, svc.conns(members), connID, proto.KindGameStarted, proto.GameStarted{})
	}
	svc.logger.Info().
		Uint32("playerID", playerID).
		Str("room", room).
		Msg("game started")
}

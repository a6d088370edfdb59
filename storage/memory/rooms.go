package memory

import (
	"slices"

	"matchroom/model"
)

// CreateRoom registers an empty room. The requesting player is not
// joined automatically; joining is a separate step.
func (ms *MemStore) CreateRoom(name string, requesterID uint32) error {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	if name == "" {
		return ErrEmptyRoomName
	}
	if len(ms.rooms) >= ms.maxRooms {
		return ErrTooManyRooms
	}
	if _, ok := ms.rooms[name]; ok {
		return ErrRoomExists
	}
	if _, ok := ms.players[requesterID]; !ok {
		return ErrPlayerNotFound
	}

	ms.rooms[name] = &room{
		name:       name,
		maxPlayers: ms.maxPlayersPerRoom,
		members:    make([]uint32, 0, ms.maxPlayersPerRoom),
	}
	return nil
}

// JoinRoom appends the player to the room's member list. A player
// already in another room is moved: the old membership is dropped in
// the same critical section, so no observer ever sees the player in
// two rooms. An emptied old room is deleted.
func (ms *MemStore) JoinRoom(playerID uint32, roomName string) error {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	r, ok := ms.rooms[roomName]
	if !ok {
		return ErrRoomNotFound
	}
	p, ok := ms.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if len(r.members) >= r.maxPlayers {
		return ErrRoomIsFull
	}
	if slices.Contains(r.members, playerID) {
		return ErrAlreadyMember
	}

	if p.Room != "" {
		_ = ms.leaveRoomLocked(playerID)
	}
	r.members = append(r.members, playerID)
	p.Room = roomName
	return nil
}

// LeaveRoom removes the player from whatever room it occupies and
// deletes the room once the last member is gone.
func (ms *MemStore) LeaveRoom(playerID uint32) error {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	return ms.leaveRoomLocked(playerID)
}

func (ms *MemStore) leaveRoomLocked(playerID uint32) error {
	p, ok := ms.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if p.Room == "" {
		return ErrNotInRoom
	}
	r, ok := ms.rooms[p.Room]
	if !ok {
		// player.Room always names a live room; reaching here would
		// mean the single-membership invariant broke elsewhere
		p.Room = ""
		return ErrRoomNotFound
	}

	idx := slices.Index(r.members, playerID)
	if idx >= 0 {
		r.members = slices.Delete(r.members, idx, idx+1)
	}
	if len(r.members) == 0 {
		delete(ms.rooms, r.name)
	}
	p.Room = ""
	return nil
}

// RoomMembers returns the member ids ordered admin-first.
func (ms *MemStore) RoomMembers(roomName string) ([]uint32, error) {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	r, ok := ms.rooms[roomName]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return slices.Clone(r.members), nil
}

// RoomAdmin returns the earliest surviving joiner. An existing but
// empty room yields ErrRoomEmpty, which callers must not confuse with
// ErrRoomNotFound.
func (ms *MemStore) RoomAdmin(roomName string) (uint32, error) {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	r, ok := ms.rooms[roomName]
	if !ok {
		return 0, ErrRoomNotFound
	}
	if len(r.members) == 0 {
		return 0, ErrRoomEmpty
	}
	return r.members[0], nil
}

// RoomSnapshot resolves the room's members to full player records,
// ordered admin-first.
func (ms *MemStore) RoomSnapshot(roomName string) (model.RoomInfo, error) {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	r, ok := ms.rooms[roomName]
	if !ok {
		return model.RoomInfo{}, ErrRoomNotFound
	}
	return ms.snapshotLocked(r), nil
}

// Rooms lists snapshots of every live room.
func (ms *MemStore) Rooms() []model.RoomInfo {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	out := make([]model.RoomInfo, 0, len(ms.rooms))
	for _, r := range ms.rooms {
		out = append(out, ms.snapshotLocked(r))
	}
	slices.SortFunc(out, func(a, b model.RoomInfo) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out
}

func (ms *MemStore) snapshotLocked(r *room) model.RoomInfo {
	info := model.RoomInfo{
		Name:       r.name,
		MaxPlayers: r.maxPlayers,
		Players:    make([]model.Player, 0, len(r.members)),
	}
	for _, id := range r.members {
		if p, ok := ms.players[id]; ok {
			info.Players = append(info.Players, *p)
		}
	}
	return info
}

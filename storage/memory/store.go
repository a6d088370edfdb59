// Package memory holds the in-memory session authority: player
// identities and rooms. It is the only place where membership is
// mutated, which keeps the room invariants (capacity bound, single
// membership, admin = earliest surviving joiner) in one spot.
package memory

import (
	"errors"
	"sync"

	"matchroom/model"
)

const (
	defaultMaxPlayersPerRoom = 8
	defaultMaxRooms          = 64
)

var (
	ErrRoomIsFull         = errors.New("room is full")
	ErrRoomNotFound       = errors.New("room is not found")
	ErrRoomExists         = errors.New("room already exists")
	ErrRoomEmpty          = errors.New("room has no members")
	ErrEmptyRoomName      = errors.New("room name is empty")
	ErrTooManyRooms       = errors.New("room limit reached")
	ErrPlayerNotFound     = errors.New("player is not found")
	ErrAlreadyMember      = errors.New("player is already a member")
	ErrNotInRoom          = errors.New("player is not in a room")
	ErrPlayerIDsExhausted = errors.New("player id space exhausted")
)

type room struct {
	name       string
	maxPlayers int
	members    []uint32 // join order, members[0] is admin
}

type MemStore struct {
	mx *sync.Mutex

	maxPlayersPerRoom int
	maxRooms          int

	lastPlayerID uint32
	players      map[uint32]*model.Player
	rooms        map[string]*room
}

type Config struct {
	MaxPlayersPerRoom int
	MaxRooms          int
}

func NewMemStore(cfg Config) *MemStore {
	if cfg.MaxPlayersPerRoom <= 0 {
		cfg.MaxPlayersPerRoom = defaultMaxPlayersPerRoom
	}
	if cfg.MaxRooms <= 0 {
		cfg.MaxRooms = defaultMaxRooms
	}
	return &MemStore{
		mx:                &sync.Mutex{},
		maxPlayersPerRoom: cfg.MaxPlayersPerRoom,
		maxRooms:          cfg.MaxRooms,
		players:           make(map[uint32]*model.Player),
		rooms:             make(map[string]*room),
	}
}

func (ms *MemStore) PlayerCount() int {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	return len(ms.players)
}

func (ms *MemStore) RoomCount() int {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	return len(ms.rooms)
}

package memory

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// roomMachine drives a MemStore with random create/join/leave/remove
// sequences and checks the room invariants after every step.
type roomMachine struct {
	ms *MemStore

	maxPlayersPerRoom int
	players           []uint32
	// joinOrder tracks ids per room in the order the model expects
	// them, mirroring what the store should maintain
	joinOrder map[string][]uint32
}

func (m *roomMachine) init(t *rapid.T) {
	m.maxPlayersPerRoom = rapid.IntRange(1, 4).Draw(t, "maxPlayersPerRoom")
	m.ms = NewMemStore(Config{MaxPlayersPerRoom: m.maxPlayersPerRoom, MaxRooms: 3})
	m.joinOrder = make(map[string][]uint32)

	n := rapid.IntRange(2, 6).Draw(t, "playerCount")
	for i := 0; i < n; i++ {
		p, err := m.ms.AddPlayer(fmt.Sprintf("p%d", i))
		if err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
		m.players = append(m.players, p.ID)
	}
}

func (m *roomMachine) roomName(t *rapid.T) string {
	return rapid.SampledFrom([]string{"red", "green", "blue", "cyan"}).Draw(t, "room")
}

func (m *roomMachine) player(t *rapid.T) uint32 {
	return rapid.SampledFrom(m.players).Draw(t, "player")
}

func (m *roomMachine) create(t *rapid.T) {
	name := m.roomName(t)
	err := m.ms.CreateRoom(name, m.player(t))
	if err == nil {
		m.joinOrder[name] = []uint32{}
	}
}

func (m *roomMachine) join(t *rapid.T) {
	id := m.player(t)
	name := m.roomName(t)

	order, exists := m.joinOrder[name]
	err := m.ms.JoinRoom(id, name)
	if !exists {
		if err != ErrRoomNotFound {
			t.Fatalf("join into absent room %q: got %v", name, err)
		}
		return
	}
	member := contains(order, id)
	switch {
	case member:
		if err != ErrAlreadyMember {
			t.Fatalf("duplicate join: got %v", err)
		}
	case len(order) >= m.maxPlayersPerRoom:
		if err != ErrRoomIsFull {
			t.Fatalf("join into full room: got %v", err)
		}
	default:
		if err != nil {
			t.Fatalf("join: %v", err)
		}
		m.forgetMembership(id)
		m.joinOrder[name] = append(m.joinOrder[name], id)
	}
}

func (m *roomMachine) leave(t *rapid.T) {
	id := m.player(t)
	err := m.ms.LeaveRoom(id)
	if m.currentRoom(id) == "" {
		if err != ErrNotInRoom {
			t.Fatalf("leave while in no room: got %v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	m.forgetMembership(id)
}

func (m *roomMachine) currentRoom(id uint32) string {
	for name, order := range m.joinOrder {
		if contains(order, id) {
			return name
		}
	}
	return ""
}

func (m *roomMachine) forgetMembership(id uint32) {
	for name, order := range m.joinOrder {
		for i, member := range order {
			if member == id {
				order = append(order[:i], order[i+1:]...)
				if len(order) == 0 {
					delete(m.joinOrder, name)
				} else {
					m.joinOrder[name] = order
				}
				return
			}
		}
	}
}

func (m *roomMachine) check(t *rapid.T) {
	for name, order := range m.joinOrder {
		members, err := m.ms.RoomMembers(name)
		if err != nil {
			t.Fatalf("room %q should exist: %v", name, err)
		}
		if len(members) > m.maxPlayersPerRoom {
			t.Fatalf("room %q over capacity: %d members", name, len(members))
		}
		if len(order) == 0 {
			// created but never joined: room lives on, has no admin
			if len(members) != 0 {
				t.Fatalf("room %q should be empty, has %v", name, members)
			}
			if _, aErr := m.ms.RoomAdmin(name); aErr != ErrRoomEmpty {
				t.Fatalf("RoomAdmin(%q): want ErrRoomEmpty, got %v", name, aErr)
			}
			continue
		}
		for i, id := range members {
			if order[i] != id {
				t.Fatalf("room %q order mismatch: want %v, got %v", name, order, members)
			}
			p, pErr := m.ms.GetPlayer(id)
			if pErr != nil {
				t.Fatalf("member %d of %q is not a live player", id, name)
			}
			if p.Room != name {
				t.Fatalf("member %d of %q believes it is in %q", id, name, p.Room)
			}
		}
		admin, err := m.ms.RoomAdmin(name)
		if err != nil {
			t.Fatalf("RoomAdmin(%q): %v", name, err)
		}
		if admin != order[0] {
			t.Fatalf("room %q admin: want earliest joiner %d, got %d", name, order[0], admin)
		}
	}
}

func TestMemStore_RoomInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := &roomMachine{}
		m.init(t)

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				m.create(t)
			case 1:
				m.join(t)
			case 2:
				m.leave(t)
			}
			m.check(t)
		}
	})
}

func contains(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

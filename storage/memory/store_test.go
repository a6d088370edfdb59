package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxPlayers, maxRooms int) *MemStore {
	t.Helper()
	return NewMemStore(Config{MaxPlayersPerRoom: maxPlayers, MaxRooms: maxRooms})
}

func addPlayers(t *testing.T, ms *MemStore, n int) []uint32 {
	t.Helper()
	ids := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		p, err := ms.AddPlayer("")
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	return ids
}

func TestMemStore_AddPlayer(t *testing.T) {
	ms := newTestStore(t, 4, 4)

	p1, err := ms.AddPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p1.ID)
	assert.Equal(t, "alice", p1.Name)
	assert.Empty(t, p1.Room)

	p2, err := ms.AddPlayer("")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), p2.ID)

	got, err := ms.GetPlayer(p1.ID)
	require.NoError(t, err)
	assert.Equal(t, p1, got)

	_, err = ms.GetPlayer(999)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestMemStore_AddPlayer_SkipsLiveIDs(t *testing.T) {
	ms := newTestStore(t, 4, 4)

	ids := addPlayers(t, ms, 3)
	require.NoError(t, ms.RemovePlayer(ids[1]))

	// counter continues upward, it does not rush to fill the hole
	p, err := ms.AddPlayer("")
	require.NoError(t, err)
	assert.Equal(t, uint32(4), p.ID)
}

func TestMemStore_RemovePlayer(t *testing.T) {
	ms := newTestStore(t, 4, 4)
	ids := addPlayers(t, ms, 2)

	require.NoError(t, ms.CreateRoom("alpha", ids[0]))
	require.NoError(t, ms.JoinRoom(ids[0], "alpha"))
	require.NoError(t, ms.JoinRoom(ids[1], "alpha"))

	require.NoError(t, ms.RemovePlayer(ids[0]))

	_, err := ms.GetPlayer(ids[0])
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	// removal also left the room
	members, err := ms.RoomMembers("alpha")
	require.NoError(t, err)
	assert.Equal(t, []uint32{ids[1]}, members)

	assert.ErrorIs(t, ms.RemovePlayer(ids[0]), ErrPlayerNotFound)
}

func TestMemStore_RenamePlayer(t *testing.T) {
	ms := newTestStore(t, 4, 4)
	ids := addPlayers(t, ms, 1)

	require.NoError(t, ms.RenamePlayer(ids[0], "bob"))
	p, err := ms.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Name)

	assert.ErrorIs(t, ms.RenamePlayer(42, "x"), ErrPlayerNotFound)
}

func TestMemStore_CreateRoom(t *testing.T) {
	ms := newTestStore(t, 4, 2)
	ids := addPlayers(t, ms, 1)

	require.NoError(t, ms.CreateRoom("alpha", ids[0]))

	assert.ErrorIs(t, ms.CreateRoom("alpha", ids[0]), ErrRoomExists)
	assert.ErrorIs(t, ms.CreateRoom("", ids[0]), ErrEmptyRoomName)
	assert.ErrorIs(t, ms.CreateRoom("beta", 999), ErrPlayerNotFound)

	require.NoError(t, ms.CreateRoom("beta", ids[0]))
	assert.ErrorIs(t, ms.CreateRoom("gamma", ids[0]), ErrTooManyRooms)

	// creator is not auto-joined
	p, err := ms.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Empty(t, p.Room)

	_, err = ms.RoomAdmin("alpha")
	assert.ErrorIs(t, err, ErrRoomEmpty)
	_, err = ms.RoomAdmin("nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemStore_JoinRoom_Rejections(t *testing.T) {
	ms := newTestStore(t, 2, 4)
	ids := addPlayers(t, ms, 3)
	require.NoError(t, ms.CreateRoom("alpha", ids[0]))

	assert.ErrorIs(t, ms.JoinRoom(ids[0], "nope"), ErrRoomNotFound)
	assert.ErrorIs(t, ms.JoinRoom(999, "alpha"), ErrPlayerNotFound)

	require.NoError(t, ms.JoinRoom(ids[0], "alpha"))
	assert.ErrorIs(t, ms.JoinRoom(ids[0], "alpha"), ErrAlreadyMember)

	require.NoError(t, ms.JoinRoom(ids[1], "alpha"))
	assert.ErrorIs(t, ms.JoinRoom(ids[2], "alpha"), ErrRoomIsFull)

	// failed join mutated nothing
	members, err := ms.RoomMembers("alpha")
	require.NoError(t, err)
	assert.Equal(t, []uint32{ids[0], ids[1]}, members)
	p, err := ms.GetPlayer(ids[2])
	require.NoError(t, err)
	assert.Empty(t, p.Room)
}

func TestMemStore_JoinRoom_MovesAtomically(t *testing.T) {
	ms := newTestStore(t, 4, 4)
	ids := addPlayers(t, ms, 2)
	require.NoError(t, ms.CreateRoom("alpha", ids[0]))
	require.NoError(t, ms.CreateRoom("beta", ids[0]))

	require.NoError(t, ms.JoinRoom(ids[0], "alpha"))
	require.NoError(t, ms.JoinRoom(ids[1], "alpha"))

	require.NoError(t, ms.JoinRoom(ids[1], "beta"))

	members, err := ms.RoomMembers("alpha")
	require.NoError(t, err)
	assert.Equal(t, []uint32{ids[0]}, members)
	members, err = ms.RoomMembers("beta")
	require.NoError(t, err)
	assert.Equal(t, []uint32{ids[1]}, members)

	p, err := ms.GetPlayer(ids[1])
	require.NoError(t, err)
	assert.Equal(t, "beta", p.Room)

	// moving the last member out deletes the old room
	require.NoError(t, ms.JoinRoom(ids[0], "beta"))
	_, err = ms.RoomMembers("alpha")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemStore_LeaveRoom(t *testing.T) {
	ms := newTestStore(t, 4, 4)
	ids := addPlayers(t, ms, 2)
	require.NoError(t, ms.CreateRoom("alpha", ids[0]))
	require.NoError(t, ms.JoinRoom(ids[0], "alpha"))
	require.NoError(t, ms.JoinRoom(ids[1], "alpha"))

	require.NoError(t, ms.LeaveRoom(ids[0]))
	p, err := ms.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Empty(t, p.Room)

	admin, err := ms.RoomAdmin("alpha")
	require.NoError(t, err)
	assert.Equal(t, ids[1], admin)

	assert.ErrorIs(t, ms.LeaveRoom(ids[0]), ErrNotInRoom)
	assert.ErrorIs(t, ms.LeaveRoom(999), ErrPlayerNotFound)

	require.NoError(t, ms.LeaveRoom(ids[1]))
	_, err = ms.RoomMembers("alpha")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemStore_RoomNameReusableAfterEmpty(t *testing.T) {
	ms := newTestStore(t, 4, 4)
	ids := addPlayers(t, ms, 1)

	require.NoError(t, ms.CreateRoom("alpha", ids[0]))
	require.NoError(t, ms.JoinRoom(ids[0], "alpha"))
	require.NoError(t, ms.LeaveRoom(ids[0]))

	require.NoError(t, ms.CreateRoom("alpha", ids[0]))
}

func TestMemStore_AdminSuccession(t *testing.T) {
	ms := newTestStore(t, 4, 4)
	ids := addPlayers(t, ms, 3)
	require.NoError(t, ms.CreateRoom("alpha", ids[0]))
	for _, id := range ids {
		require.NoError(t, ms.JoinRoom(id, "alpha"))
	}

	admin, err := ms.RoomAdmin("alpha")
	require.NoError(t, err)
	assert.Equal(t, ids[0], admin)

	require.NoError(t, ms.LeaveRoom(ids[1]))
	admin, err = ms.RoomAdmin("alpha")
	require.NoError(t, err)
	assert.Equal(t, ids[0], admin, "admin unchanged when a non-admin leaves")

	require.NoError(t, ms.LeaveRoom(ids[0]))
	admin, err = ms.RoomAdmin("alpha")
	require.NoError(t, err)
	assert.Equal(t, ids[2], admin, "next-earliest member inherits admin")
}

// Scenario from the drawing board: capacity 2, three contenders.
func TestMemStore_CapacityTwoScenario(t *testing.T) {
	ms := newTestStore(t, 2, 4)
	ids := addPlayers(t, ms, 3)

	require.NoError(t, ms.CreateRoom("A", ids[0]))
	require.NoError(t, ms.JoinRoom(ids[0], "A"))

	admin, err := ms.RoomAdmin("A")
	require.NoError(t, err)
	assert.Equal(t, ids[0], admin)

	require.NoError(t, ms.JoinRoom(ids[1], "A"))
	admin, err = ms.RoomAdmin("A")
	require.NoError(t, err)
	assert.Equal(t, ids[0], admin)

	assert.ErrorIs(t, ms.JoinRoom(ids[2], "A"), ErrRoomIsFull)

	require.NoError(t, ms.LeaveRoom(ids[0]))
	admin, err = ms.RoomAdmin("A")
	require.NoError(t, err)
	assert.Equal(t, ids[1], admin)

	require.NoError(t, ms.LeaveRoom(ids[1]))
	_, err = ms.RoomAdmin("A")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemStore_Snapshots(t *testing.T) {
	ms := newTestStore(t, 4, 4)
	ids := addPlayers(t, ms, 2)
	require.NoError(t, ms.RenamePlayer(ids[0], "alice"))
	require.NoError(t, ms.RenamePlayer(ids[1], "bob"))
	require.NoError(t, ms.CreateRoom("alpha", ids[0]))
	require.NoError(t, ms.JoinRoom(ids[0], "alpha"))
	require.NoError(t, ms.JoinRoom(ids[1], "alpha"))

	snap, err := ms.RoomSnapshot("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", snap.Name)
	assert.Equal(t, 4, snap.MaxPlayers)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "alice", snap.Players[0].Name)
	assert.Equal(t, "bob", snap.Players[1].Name)
	assert.Equal(t, ids[0], snap.Admin())

	rooms := ms.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, snap, rooms[0])

	assert.Equal(t, 2, ms.PlayerCount())
	assert.Equal(t, 1, ms.RoomCount())
}

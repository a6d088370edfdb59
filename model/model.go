package model

// Player is one connected identity. Room is empty while the player
// sits in the lobby.
type Player struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
	Room string `json:"room,omitempty"`
}

// RoomInfo is a read-only room snapshot. Players are ordered by join
// time, so Players[0] is the room admin.
type RoomInfo struct {
	Name       string   `json:"room_name"`
	MaxPlayers int      `json:"max_players"`
	Players    []Player `json:"players"`
}

// Admin returns the id of the room admin, or 0 for an empty room.
func (ri RoomInfo) Admin() uint32 {
	if len(ri.Players) == 0 {
		return 0
	}
	return ri.Players[0].ID
}

// Wire is the outbound side of one connection: frames pushed into TX
// are written to the peer's socket by the transport.
type Wire struct {
	TX chan []byte
}

func NewWire() Wire {
	return Wire{
		TX: make(chan []byte, 16),
	}
}

// Package proto defines the wire catalogue: every message exchanged
// between client and server, its stable kind tag, and the frame codec.
package proto

import "matchroom/model"

// Kind is the 4-byte message tag prepended to every frame.
//
// Values are assigned explicitly and must never change once a client
// build is in the wild. Do not reorder.
type Kind uint32

const (
	KindInvalid Kind = iota

	// server -> client on connect
	KindWelcome

	// client -> server requests with matching answers
	KindCreateRoom
	KindCreateRoomAnswer
	KindJoinRoom
	KindJoinRoomAnswer
	KindLeaveRoom
	KindLeaveRoomAnswer
	KindRename
	KindRenameAnswer
	KindStartGame
	KindStartGameAnswer

	// server -> client notifications
	KindPlayerJoined
	KindPlayerLeft
	KindPlayerRenamed
	KindAdminGranted
	KindGameStarted
)

func (k Kind) String() string {
	switch k {
	case KindWelcome:
		return "welcome"
	case KindCreateRoom:
		return "create_room"
	case KindCreateRoomAnswer:
		return "create_room_answer"
	case KindJoinRoom:
		return "join_room"
	case KindJoinRoomAnswer:
		return "join_room_answer"
	case KindLeaveRoom:
		return "leave_room"
	case KindLeaveRoomAnswer:
		return "leave_room_answer"
	case KindRename:
		return "rename"
	case KindRenameAnswer:
		return "rename_answer"
	case KindStartGame:
		return "start_game"
	case KindStartGameAnswer:
		return "start_game_answer"
	case KindPlayerJoined:
		return "player_joined"
	case KindPlayerLeft:
		return "player_left"
	case KindPlayerRenamed:
		return "player_renamed"
	case KindAdminGranted:
		return "admin_granted"
	case KindGameStarted:
		return "game_started"
	}
	return "invalid"
}

// Welcome carries the identity assigned to a freshly accepted connection.
type Welcome struct {
	Player model.Player `json:"player"`
}

type CreateRoom struct {
	RoomName string `json:"room_name"`
}

type CreateRoomAnswer struct {
	Success bool `json:"success"`
}

type JoinRoom struct {
	RoomName string `json:"room_name"`
}

// JoinRoomAnswer carries the full membership snapshot on success,
// ordered admin-first and including the joiner, so the client can seed
// its local view without guessing.
type JoinRoomAnswer struct {
	Success bool           `json:"success"`
	Players []model.Player `json:"players,omitempty"`
}

type LeaveRoom struct{}

type LeaveRoomAnswer struct {
	Success bool `json:"success"`
}

type Rename struct {
	NewName string `json:"new_name"`
}

type RenameAnswer struct {
	Success bool `json:"success"`
}

type StartGame struct{}

type StartGameAnswer struct {
	Success bool `json:"success"`
}

type PlayerJoined struct {
	PlayerID uint32 `json:"player_id"`
	Name     string `json:"name"`
}

type PlayerLeft struct {
	PlayerID uint32 `json:"player_id"`
}

type PlayerRenamed struct {
	PlayerID uint32 `json:"player_id"`
	NewName  string `json:"new_name"`
}

type AdminGranted struct{}

type GameStarted struct{}

package game

import "encoding/json"

// Event names follow the socket.io-style protocol the browser client speaks.
const (
	CmdCreateRoom   = "create-room"
	CmdJoinRoom     = "join-room"
	CmdShuffleRoles = "shuffle-roles"
	CmdRevealRoles  = "reveal-roles"
	CmdPing         = "ping"

	NotifyRoomCreated        = "room-created"
	NotifyRoomJoined         = "room-joined"
	NotifyPlayerJoined       = "player-joined"
	NotifyRolesShuffled      = "roles-shuffled"
	NotifyRolesRevealed      = "roles-revealed"
	NotifyNewHost            = "new-host"
	NotifyPlayerDisconnected = "player-disconnected"
	NotifyPong               = "pong"
	NotifyError              = "error"
)

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type CreateRoomCommand struct {
	RoomName    string   `json:"roomName"`
	PlayerCount int      `json:"playerCount"`
	Roles       []string `json:"roles"`
	PlayerName  string   `json:"playerName"`
}

type JoinRoomCommand struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type PlayerJoinedNotification struct {
	Players []PlayerView `json:"players"`
}

type NewHostNotification struct {
	HostID string `json:"hostId"`
}

type PlayerDisconnectedNotification struct {
	PlayerID string       `json:"playerId"`
	Players  []PlayerView `json:"players"`
}

type ErrorNotification struct {
	Message string `json:"message"`
}

func encodeEvent(eventType string, data any) ([]byte, error) {
	env := Envelope{Type: eventType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

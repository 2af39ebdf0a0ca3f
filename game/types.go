package game

import (
	"math/rand"
	"sync"
	"time"
)

type RoomState int

const (
	StateForming RoomState = iota
	StateReady
	StateAssigned
	StateRevealed
	StateClosed
)

func (s RoomState) String() string {
	switch s {
	case StateForming:
		return "forming"
	case StateReady:
		return "ready"
	case StateAssigned:
		return "assigned"
	case StateRevealed:
		return "revealed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

type Player struct {
	id           string
	connectionID string // empty while disconnected
	displayName  string
	role         string // empty until a deal
	isHost       bool
	connected    bool
}

type Room struct {
	mu sync.Mutex

	code     string
	name     string
	required int
	rolePool []string

	// roster keeps insertion order, which drives both dealing order and host
	// failover. byID is a lookup over the same entries.
	roster []*Player
	byID   map[string]*Player

	state    RoomState
	revealed bool
	hostID   string

	createdAt time.Time

	rng *rand.Rand
}

// PlayerView is one roster entry as a particular viewer is allowed to see it.
// Role stays nil whenever the visibility rule masks it.
type PlayerView struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"name"`
	IsHost      bool    `json:"isHost"`
	Connected   bool    `json:"connected"`
	Role        *string `json:"role"`
}

// RoomInfo is the per-viewer payload sent on room-created, room-joined and
// the roles-* notifications. Field names match the wire protocol clients expect.
type RoomInfo struct {
	Code        string       `json:"roomId"`
	Name        string       `json:"roomName"`
	PlayerCount int          `json:"playerCount"`
	Players     []PlayerView `json:"players"`
	OwnRole     *string      `json:"playerRole"`
	IsHost      bool         `json:"isHost"`
	Revealed    bool         `json:"revealed"`
	State       string       `json:"state"`
}

type RoomSummary struct {
	Code           string `json:"id"`
	Name           string `json:"name"`
	PlayerCount    int    `json:"playerCount"`
	CurrentPlayers int    `json:"currentPlayers"`
	State          string `json:"state"`
}

type Stats struct {
	TotalRooms   int `json:"totalRooms"`
	TotalPlayers int `json:"totalPlayers"`
}

// recipient pairs a roster member with its live connection, for fan-out.
type recipient struct {
	playerID     string
	connectionID string
}

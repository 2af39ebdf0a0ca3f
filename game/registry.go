package game

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

type connRef struct {
	code     string
	playerID string
}

// Registry owns every live room and the connection→(room, player) side table
// that routes transport events back to the right room. It is the single
// authority in the process; rooms lock themselves, so operations on different
// rooms never block each other.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	conns map[string]connRef

	rng *rand.Rand // guarded by mu, used for codes and room seeds
	now func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		conns: make(map[string]connRef),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
}

// CreateRoom opens a room and seats the creator as its host. The role pool
// must match the player capacity exactly; no citizen padding.
func (g *Registry) CreateRoom(name string, playerCount int, rolePool []string, hostName, connectionID string) (string, string, error) {
	if playerCount < 1 || len(rolePool) != playerCount {
		return "", "", ErrInvalidRoleCount
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	code, err := newRoomCode(g.rng, func(c string) bool {
		_, live := g.rooms[c]
		return live
	})
	if err != nil {
		slog.Error("room code space exhausted", "live_rooms", len(g.rooms))
		return "", "", err
	}

	room := newRoom(code, name, playerCount, rolePool, rand.New(rand.NewSource(g.rng.Int63())), g.now())
	playerID, err := room.join(hostName, connectionID)
	if err != nil {
		return "", "", err
	}

	g.rooms[code] = room
	g.conns[connectionID] = connRef{code: code, playerID: playerID}
	slog.Info("room created", "room", code, "name", name, "player_count", playerCount)
	return code, playerID, nil
}

func (g *Registry) JoinRoom(code, displayName, connectionID string) (string, error) {
	g.mu.RLock()
	room, ok := g.rooms[code]
	g.mu.RUnlock()
	if !ok {
		return "", ErrRoomNotFound
	}

	playerID, err := room.join(displayName, connectionID)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.conns[connectionID] = connRef{code: code, playerID: playerID}
	g.mu.Unlock()
	slog.Info("player joined", "room", code, "player", playerID, "name", displayName)
	return playerID, nil
}

// ResolveConnection routes a transport-level event back to its room without
// the caller re-supplying identifiers.
func (g *Registry) ResolveConnection(connectionID string) (code, playerID string, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ref, ok := g.conns[connectionID]
	return ref.code, ref.playerID, ok
}

func (g *Registry) Room(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[code]
	return room, ok
}

// ShuffleRoles deals (or re-deals) the room the connection belongs to. An
// assignment-count mismatch is unrecoverable for the room: it is force-closed
// rather than left inconsistent.
func (g *Registry) ShuffleRoles(connectionID string) (*Room, error) {
	room, playerID, err := g.roomFor(connectionID)
	if err != nil {
		return nil, err
	}
	if err := room.shuffle(playerID); err != nil {
		if errors.Is(err, errAssignMismatch) {
			slog.Error("assignment invariant violated, closing room", "room", room.code)
			g.RemoveRoom(room.code)
			return nil, err
		}
		return nil, err
	}
	slog.Info("roles assigned", "room", room.code)
	return room, nil
}

func (g *Registry) RevealRoles(connectionID string) (*Room, error) {
	room, playerID, err := g.roomFor(connectionID)
	if err != nil {
		return nil, err
	}
	if err := room.reveal(playerID); err != nil {
		return nil, err
	}
	slog.Info("roles revealed", "room", room.code)
	return room, nil
}

func (g *Registry) roomFor(connectionID string) (*Room, string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ref, ok := g.conns[connectionID]
	if !ok {
		return nil, "", ErrRoomNotFound
	}
	room, ok := g.rooms[ref.code]
	if !ok {
		return nil, "", ErrRoomNotFound
	}
	return room, ref.playerID, nil
}

type DisconnectResult struct {
	Code      string
	PlayerID  string
	NewHostID string
	Closed    bool
	Room      *Room
}

// Disconnect handles a dropped connection: the player is marked disconnected,
// host failover runs if needed, and the room is removed once nobody connected
// remains. ok is false when the connection never joined a room.
func (g *Registry) Disconnect(connectionID string) (DisconnectResult, bool) {
	g.mu.Lock()
	ref, ok := g.conns[connectionID]
	if ok {
		delete(g.conns, connectionID)
	}
	room := g.rooms[ref.code]
	g.mu.Unlock()

	if !ok || room == nil {
		return DisconnectResult{}, false
	}

	outcome := room.disconnect(ref.playerID)
	res := DisconnectResult{
		Code:      ref.code,
		PlayerID:  ref.playerID,
		NewHostID: outcome.newHostID,
		Closed:    outcome.closed,
		Room:      room,
	}
	if outcome.closed {
		g.RemoveRoom(ref.code)
	} else if outcome.newHostID != "" {
		slog.Info("host failover", "room", ref.code, "new_host", outcome.newHostID)
	}
	return res, true
}

// RemoveRoom is idempotent. It also drops every connection reference into the
// room, so later commands on those connections resolve to room-not-found.
func (g *Registry) RemoveRoom(code string) {
	g.mu.Lock()
	room, ok := g.rooms[code]
	if !ok {
		g.mu.Unlock()
		return
	}
	delete(g.rooms, code)
	for id, ref := range g.conns {
		if ref.code == code {
			delete(g.conns, id)
		}
	}
	g.mu.Unlock()

	room.close()
	slog.Info("room removed", "room", code)
}

func (g *Registry) Summary(code string) (RoomSummary, error) {
	room, ok := g.Room(code)
	if !ok {
		return RoomSummary{}, ErrRoomNotFound
	}
	return room.summary(), nil
}

func (g *Registry) Stats() Stats {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.RUnlock()

	stats := Stats{TotalRooms: len(rooms)}
	for _, room := range rooms {
		stats.TotalPlayers += room.rosterSize()
	}
	return stats
}

// expiredCodes snapshots which rooms have outlived ttl as of now. The
// registry lock is not held across the subsequent removals.
func (g *Registry) expiredCodes(now time.Time, ttl time.Duration) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var codes []string
	for code, room := range g.rooms {
		if room.expired(now, ttl) {
			codes = append(codes, code)
		}
	}
	return codes
}

// Close tears the registry down on shutdown, closing every room.
func (g *Registry) Close() {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.rooms = make(map[string]*Room)
	g.conns = make(map[string]connRef)
	g.mu.Unlock()

	for _, room := range rooms {
		room.close()
	}
}

package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

func newRoom(code, name string, required int, rolePool []string, rng *rand.Rand, createdAt time.Time) *Room {
	pool := make([]string, len(rolePool))
	copy(pool, rolePool)
	return &Room{
		code:      code,
		name:      name,
		required:  required,
		rolePool:  pool,
		roster:    make([]*Player, 0, required),
		byID:      make(map[string]*Player, required),
		state:     StateForming,
		createdAt: createdAt,
		rng:       rng,
	}
}

// join adds a player while the roster is still growing. The first player in
// becomes host. Display names must be unique against every roster entry,
// disconnected ones included: a dropped player's slot stays reserved until the
// room closes.
func (r *Room) join(displayName, connectionID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateClosed {
		return "", ErrRoomNotFound
	}
	if len(r.roster) >= r.required {
		return "", ErrRoomFull
	}
	for _, p := range r.roster {
		if p.displayName == displayName {
			return "", ErrDuplicateName
		}
	}

	p := &Player{
		id:           uuid.NewString(),
		connectionID: connectionID,
		displayName:  displayName,
		connected:    true,
	}
	if len(r.roster) == 0 {
		p.isHost = true
		r.hostID = p.id
	}
	r.roster = append(r.roster, p)
	r.byID[p.id] = p

	if len(r.roster) == r.required {
		r.state = StateReady
	}
	return p.id, nil
}

// shuffle deals the role pool. Allowed from Ready (first deal) and again from
// Assigned or Revealed (re-deal); a re-deal hides roles again.
func (r *Room) shuffle(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateClosed {
		return ErrRoomNotFound
	}
	if playerID != r.hostID {
		return ErrNotHost
	}
	if r.state == StateForming {
		return ErrRosterIncomplete
	}

	ordered := make([]string, len(r.roster))
	for i, p := range r.roster {
		ordered[i] = p.id
	}
	assigned, err := assignRoles(r.rng, r.rolePool, ordered)
	if err != nil {
		r.state = StateClosed
		return err
	}
	for _, p := range r.roster {
		p.role = assigned[p.id]
	}
	r.state = StateAssigned
	r.revealed = false
	return nil
}

func (r *Room) reveal(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateClosed {
		return ErrRoomNotFound
	}
	if playerID != r.hostID {
		return ErrNotHost
	}
	if r.state != StateAssigned && r.state != StateRevealed {
		return ErrNotYetAssigned
	}

	r.revealed = true
	r.state = StateRevealed
	return nil
}

type disconnectOutcome struct {
	newHostID string
	closed    bool
}

// disconnect marks the player as gone but keeps the roster entry, so name
// uniqueness and role conservation keep holding. A departing host is replaced
// by the earliest-joined connected survivor; when none remains the room
// closes. Failover never changes the deal state.
func (r *Room) disconnect(playerID string) disconnectOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[playerID]
	if !ok || !p.connected {
		return disconnectOutcome{}
	}
	p.connected = false
	p.connectionID = ""

	var out disconnectOutcome
	if p.isHost {
		if id, promoted := nextHost(r.roster, playerID); promoted {
			p.isHost = false
			successor := r.byID[id]
			successor.isHost = true
			r.hostID = id
			out.newHostID = id
		} else {
			r.state = StateClosed
			out.closed = true
		}
	} else if _, anyLeft := nextHost(r.roster, playerID); !anyLeft {
		r.state = StateClosed
		out.closed = true
	}
	return out
}

func (r *Room) close() {
	r.mu.Lock()
	r.state = StateClosed
	r.mu.Unlock()
}

// info is the full per-viewer payload. The viewer's own role is always
// present in playerRole once roles have been dealt.
func (r *Room) info(viewerID string) RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := RoomInfo{
		Code:        r.code,
		Name:        r.name,
		PlayerCount: r.required,
		Players:     projectRoster(r.roster, r.revealed, viewerID),
		Revealed:    r.revealed,
		State:       r.state.String(),
	}
	if viewer, ok := r.byID[viewerID]; ok {
		info.IsHost = viewer.isHost
		if viewer.role != "" {
			role := viewer.role
			info.OwnRole = &role
		}
	}
	return info
}

// publicViews is the roster with every role masked, for broadcasts that are
// identical across viewers (player-joined, player-disconnected).
func (r *Room) publicViews() []PlayerView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return projectRoster(r.roster, false, "")
}

func (r *Room) recipients() []recipient {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]recipient, 0, len(r.roster))
	for _, p := range r.roster {
		if p.connected {
			out = append(out, recipient{playerID: p.id, connectionID: p.connectionID})
		}
	}
	return out
}

func (r *Room) summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSummary{
		Code:           r.code,
		Name:           r.name,
		PlayerCount:    r.required,
		CurrentPlayers: len(r.roster),
		State:          r.state.String(),
	}
}

func (r *Room) rosterSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roster)
}

// expired is age-based on purpose: an active room is reclaimed at the same
// age as an idle one.
func (r *Room) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.createdAt) > ttl
}

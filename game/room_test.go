package game

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoom(t *testing.T, required int, pool []string) *Room {
	t.Helper()
	return newRoom("TESTRM", "friday night", required, pool, rand.New(rand.NewSource(99)), time.Now())
}

func mustJoin(t *testing.T, r *Room, name, conn string) string {
	t.Helper()
	id, err := r.join(name, conn)
	require.NoError(t, err)
	return id
}

func TestRoom_JoinLifecycle(t *testing.T) {
	t.Parallel()
	r := testRoom(t, 3, []string{"mafia", "doctor", "citizen"})

	hostID := mustJoin(t, r, "alice", "c1")
	assert.Equal(t, StateForming, r.state)
	assert.Equal(t, hostID, r.hostID)
	assert.True(t, r.byID[hostID].isHost)

	mustJoin(t, r, "bob", "c2")
	assert.Equal(t, StateForming, r.state)

	mustJoin(t, r, "carol", "c3")
	assert.Equal(t, StateReady, r.state, "room fills up and becomes ready")

	_, err := r.join("dave", "c4")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, 3, r.rosterSize(), "rejected join must not mutate the roster")
}

func TestRoom_DuplicateName(t *testing.T) {
	t.Parallel()
	r := testRoom(t, 3, []string{"a", "b", "c"})

	aliceID := mustJoin(t, r, "alice", "c1")
	mustJoin(t, r, "bob", "c2")

	_, err := r.join("alice", "c3")
	assert.ErrorIs(t, err, ErrDuplicateName)

	// Names are case-sensitive, so a different casing is a different player.
	_, err = r.join("Alice", "c3")
	assert.NoError(t, err)

	// The name of a disconnected player stays taken.
	r2 := testRoom(t, 3, []string{"a", "b", "c"})
	aliceID = mustJoin(t, r2, "alice", "c1")
	mustJoin(t, r2, "bob", "c2")
	r2.disconnect(aliceID)

	_, err = r2.join("alice", "c3")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRoom_ShuffleGuards(t *testing.T) {
	t.Parallel()
	r := testRoom(t, 2, []string{"mafia", "citizen"})
	hostID := mustJoin(t, r, "alice", "c1")

	assert.ErrorIs(t, r.shuffle(hostID), ErrRosterIncomplete, "shuffle before roster full")
	assert.ErrorIs(t, r.reveal(hostID), ErrNotYetAssigned, "reveal before any deal")

	bobID := mustJoin(t, r, "bob", "c2")
	assert.ErrorIs(t, r.shuffle(bobID), ErrNotHost)
	assert.ErrorIs(t, r.reveal(bobID), ErrNotHost)

	require.NoError(t, r.shuffle(hostID))
	assert.Equal(t, StateAssigned, r.state)
}

func TestRoom_RedealHidesRoles(t *testing.T) {
	t.Parallel()
	r := testRoom(t, 2, []string{"mafia", "citizen"})
	hostID := mustJoin(t, r, "alice", "c1")
	mustJoin(t, r, "bob", "c2")

	require.NoError(t, r.shuffle(hostID))
	require.NoError(t, r.reveal(hostID))
	assert.Equal(t, StateRevealed, r.state)
	assert.True(t, r.revealed)

	// Re-dealing from Revealed goes back to Assigned and hides again.
	require.NoError(t, r.shuffle(hostID))
	assert.Equal(t, StateAssigned, r.state)
	assert.False(t, r.revealed)

	// Re-dealing from Assigned is also allowed.
	require.NoError(t, r.shuffle(hostID))
	assert.Equal(t, StateAssigned, r.state)
}

func TestRoom_DisconnectFailover(t *testing.T) {
	t.Parallel()
	r := testRoom(t, 4, []string{"a", "b", "c", "d"})
	p1 := mustJoin(t, r, "p1", "c1")
	p2 := mustJoin(t, r, "p2", "c2")
	p3 := mustJoin(t, r, "p3", "c3")
	mustJoin(t, r, "p4", "c4")

	out := r.disconnect(p1)
	assert.Equal(t, p2, out.newHostID, "earliest joined connected player becomes host")
	assert.False(t, out.closed)
	assert.Equal(t, p2, r.hostID)
	assert.False(t, r.byID[p1].isHost)
	assert.True(t, r.byID[p2].isHost)
	assert.False(t, r.byID[p1].connected)

	hosts := 0
	for _, p := range r.roster {
		if p.isHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts, "exactly one host after failover")

	// A non-host disconnect keeps the host and the roster entry.
	out = r.disconnect(p3)
	assert.Empty(t, out.newHostID)
	assert.False(t, out.closed)
	assert.Equal(t, 4, r.rosterSize())
	assert.Equal(t, p2, r.hostID)

	// Repeated disconnects are ignored.
	out = r.disconnect(p3)
	assert.Empty(t, out.newHostID)
	assert.False(t, out.closed)
}

func TestRoom_LastConnectedPlayerClosesRoom(t *testing.T) {
	t.Parallel()
	r := testRoom(t, 3, []string{"a", "b", "c"})
	p1 := mustJoin(t, r, "p1", "c1")
	p2 := mustJoin(t, r, "p2", "c2")

	out := r.disconnect(p2)
	assert.False(t, out.closed)

	out = r.disconnect(p1)
	assert.True(t, out.closed, "no connected player left to promote")
	assert.Equal(t, StateClosed, r.state)
}

func TestRoom_FailoverDoesNotChangeDealState(t *testing.T) {
	t.Parallel()
	r := testRoom(t, 2, []string{"mafia", "citizen"})
	p1 := mustJoin(t, r, "p1", "c1")
	mustJoin(t, r, "p2", "c2")

	require.NoError(t, r.shuffle(p1))
	require.NoError(t, r.reveal(p1))

	out := r.disconnect(p1)
	assert.NotEmpty(t, out.newHostID)
	assert.Equal(t, StateRevealed, r.state)
	assert.True(t, r.revealed)
}

// The concrete end-to-end scenario: four seats, pool {mafia, mafia, doctor,
// citizen}, masked deal, reveal, then host drop-out.
func TestRoom_FullGameScenario(t *testing.T) {
	t.Parallel()
	g := NewRegistry()

	code, p1, err := g.CreateRoom("friday", 4, []string{"mafia", "mafia", "doctor", "citizen"}, "P1", "conn1")
	require.NoError(t, err)

	room, ok := g.Room(code)
	require.True(t, ok)
	assert.Equal(t, StateForming, room.state)

	p2, err := g.JoinRoom(code, "P2", "conn2")
	require.NoError(t, err)
	p3, err := g.JoinRoom(code, "P3", "conn3")
	require.NoError(t, err)
	p4, err := g.JoinRoom(code, "P4", "conn4")
	require.NoError(t, err)
	assert.Equal(t, StateReady, room.state)

	_, err = g.ShuffleRoles("conn1")
	require.NoError(t, err)
	assert.Equal(t, StateAssigned, room.state)

	// The host sees all four roles, the others only their own.
	hostInfo := room.info(p1)
	require.True(t, hostInfo.IsHost)
	for _, v := range hostInfo.Players {
		assert.NotNil(t, v.Role)
	}
	for _, viewer := range []string{p2, p3, p4} {
		info := room.info(viewer)
		assert.False(t, info.IsHost)
		require.NotNil(t, info.OwnRole)
		for _, v := range info.Players {
			if v.ID == viewer {
				require.NotNil(t, v.Role)
				assert.Equal(t, *info.OwnRole, *v.Role)
			} else {
				assert.Nil(t, v.Role, "viewer %s must not see role of %s", viewer, v.ID)
			}
		}
	}

	_, err = g.RevealRoles("conn1")
	require.NoError(t, err)
	assert.Equal(t, StateRevealed, room.state)

	dealt := make([]string, 0, 4)
	for _, viewer := range []string{p1, p2, p3, p4} {
		info := room.info(viewer)
		for _, v := range info.Players {
			require.NotNil(t, v.Role, "after reveal every viewer sees every role")
		}
	}
	for _, p := range room.roster {
		dealt = append(dealt, p.role)
	}
	sort.Strings(dealt)
	assert.Equal(t, []string{"citizen", "doctor", "mafia", "mafia"}, dealt, "deal conserves the pool multiset")

	res, handled := g.Disconnect("conn1")
	require.True(t, handled)
	assert.Equal(t, p2, res.NewHostID, "P2 is the earliest joined remaining player")
	assert.False(t, res.Closed)
	assert.True(t, room.info(p2).IsHost)
}

package game

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type client struct {
	id      string
	socket  NetworkSession
	outbox  chan []byte
	pings   chan struct{}
	done    chan struct{}
	limiter *rate.Limiter
}

func newClient(socket NetworkSession) *client {
	return &client{
		id:      uuid.NewString(),
		socket:  socket,
		outbox:  make(chan []byte, 256),
		pings:   make(chan struct{}, 1),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(5, 10),
	}
}

// send is non-blocking: a client that cannot drain its outbox loses
// notifications rather than stalling the room.
func (c *client) send(eventType string, data any) {
	payload, err := encodeEvent(eventType, data)
	if err != nil {
		slog.Error("event encoding failed", "type", eventType, "error", err)
		return
	}
	select {
	case c.outbox <- payload:
	case <-c.done:
	default:
		slog.Warn("dropping event, outbox full", "conn", c.id, "type", eventType)
	}
}

func (c *client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.outbox:
			if err := c.socket.Write(data); err != nil {
				return
			}
		case <-c.pings:
			if err := c.socket.Ping(); err != nil {
				return
			}
		}
	}
}

// Hub owns the live connections and is the single decode/dispatch boundary
// between the transport and the registry. Coordinator errors go back to the
// requesting connection only; malformed input is dropped and logged.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	registry *Registry
	tickers  PeriodicTickerChannelCreator
	stop     chan struct{}
}

func NewHub(registry *Registry, tickers PeriodicTickerChannelCreator) *Hub {
	return &Hub{
		clients:  make(map[string]*client),
		registry: registry,
		tickers:  tickers,
		stop:     make(chan struct{}),
	}
}

// Run keeps idle websockets alive with periodic pings.
func (h *Hub) Run(started chan struct{}) {
	pingTicker := h.tickers.Create(time.Second * 30)
	close(started)

	for {
		select {
		case <-pingTicker:
			h.mu.RLock()
			for _, c := range h.clients {
				select {
				case c.pings <- struct{}{}:
				default:
				}
			}
			h.mu.RUnlock()
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.stop)
}

// HandleConnection services one websocket for its whole life: register, pump
// inbound events, then run disconnect handling when the socket dies.
func (h *Hub) HandleConnection(socket NetworkSession) {
	c := newClient(socket)

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go c.writePump()
	slog.Debug("connection opened", "conn", c.id)

	for {
		data, err := socket.Read()
		if err != nil {
			break
		}
		if !c.limiter.Allow() {
			slog.Debug("rate limiting connection", "conn", c.id)
			continue
		}
		h.dispatch(c, data)
	}

	h.handleDisconnect(c)

	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()

	close(c.done)
	socket.Close("")
	slog.Debug("connection closed", "conn", c.id)
}

func (h *Hub) dispatch(c *client, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Debug("dropping malformed event", "conn", c.id, "error", err)
		return
	}

	switch env.Type {
	case CmdCreateRoom:
		h.handleCreateRoom(c, env.Data)
	case CmdJoinRoom:
		h.handleJoinRoom(c, env.Data)
	case CmdShuffleRoles:
		h.handleShuffleRoles(c)
	case CmdRevealRoles:
		h.handleRevealRoles(c)
	case CmdPing:
		c.send(NotifyPong, nil)
	default:
		slog.Debug("dropping unknown event", "conn", c.id, "type", env.Type)
	}
}

func (h *Hub) handleCreateRoom(c *client, raw json.RawMessage) {
	var cmd CreateRoomCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		slog.Debug("dropping malformed create-room", "conn", c.id, "error", err)
		return
	}

	code, playerID, err := h.registry.CreateRoom(cmd.RoomName, cmd.PlayerCount, cmd.Roles, cmd.PlayerName, c.id)
	if err != nil {
		c.send(NotifyError, ErrorNotification{Message: err.Error()})
		return
	}

	room, ok := h.registry.Room(code)
	if !ok {
		return
	}
	c.send(NotifyRoomCreated, room.info(playerID))
}

func (h *Hub) handleJoinRoom(c *client, raw json.RawMessage) {
	var cmd JoinRoomCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		slog.Debug("dropping malformed join-room", "conn", c.id, "error", err)
		return
	}

	playerID, err := h.registry.JoinRoom(cmd.RoomID, cmd.PlayerName, c.id)
	if err != nil {
		c.send(NotifyError, ErrorNotification{Message: err.Error()})
		return
	}

	room, ok := h.registry.Room(cmd.RoomID)
	if !ok {
		return
	}
	c.send(NotifyRoomJoined, room.info(playerID))
	h.broadcast(room, NotifyPlayerJoined, PlayerJoinedNotification{Players: room.publicViews()})
}

func (h *Hub) handleShuffleRoles(c *client) {
	room, err := h.registry.ShuffleRoles(c.id)
	if err != nil {
		c.send(NotifyError, ErrorNotification{Message: err.Error()})
		return
	}
	// Projections differ per viewer, so each recipient gets its own payload.
	h.fanOutInfo(room, NotifyRolesShuffled)
}

func (h *Hub) handleRevealRoles(c *client) {
	room, err := h.registry.RevealRoles(c.id)
	if err != nil {
		c.send(NotifyError, ErrorNotification{Message: err.Error()})
		return
	}
	h.fanOutInfo(room, NotifyRolesRevealed)
}

func (h *Hub) handleDisconnect(c *client) {
	res, ok := h.registry.Disconnect(c.id)
	if !ok || res.Closed {
		return
	}
	if res.NewHostID != "" {
		h.broadcast(res.Room, NotifyNewHost, NewHostNotification{HostID: res.NewHostID})
	}
	h.broadcast(res.Room, NotifyPlayerDisconnected, PlayerDisconnectedNotification{
		PlayerID: res.PlayerID,
		Players:  res.Room.publicViews(),
	})
}

// broadcast sends one identical payload to every connected roster member.
func (h *Hub) broadcast(room *Room, eventType string, data any) {
	for _, rec := range room.recipients() {
		if target, ok := h.clientFor(rec.connectionID); ok {
			target.send(eventType, data)
		}
	}
}

// fanOutInfo sends each connected roster member its own projection of the
// room. Never reuse one member's payload for another.
func (h *Hub) fanOutInfo(room *Room, eventType string) {
	for _, rec := range room.recipients() {
		if target, ok := h.clientFor(rec.connectionID); ok {
			target.send(eventType, room.info(rec.playerID))
		}
	}
}

func (h *Hub) clientFor(connectionID string) (*client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connectionID]
	return c, ok
}

// Close drops every live connection, for shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.socket.Close("server-shutdown")
	}
}

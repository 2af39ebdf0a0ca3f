package game

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub       *Hub
	registry  *Registry
	upgrader  websocket.Upgrader
	startedAt time.Time
}

func NewHandler(hub *Hub, registry *Registry, allowedOrigins []string) *Handler {
	return &Handler{
		hub:      hub,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if slices.Contains(allowedOrigins, "*") {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		startedAt: time.Now(),
	}
}

func (h *Handler) WebsocketHandler(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("ws upgrade failed",
			"ip", ctx.ClientIP(),
			"error", err.Error(),
		)
		return
	}

	socket := NewWebsocketConnection(conn)
	go h.hub.HandleConnection(&socket)
}

func (h *Handler) RoomSummaryHandler(ctx *gin.Context) {
	summary, err := h.registry.Summary(ctx.Param("code"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

func (h *Handler) StatsHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.registry.Stats())
}

func (h *Handler) HealthHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"rooms":  h.registry.Stats().TotalRooms,
		"uptime": time.Since(h.startedAt).Seconds(),
	})
}

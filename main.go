package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hardcorechessorg/mafia/config"
	"github.com/hardcorechessorg/mafia/game"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {

	// logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Coordinator
	registry := game.NewRegistry()
	tickerGen := game.NewTickerGen()

	hub := game.NewHub(registry, &tickerGen)
	hubStarted := make(chan struct{})
	go hub.Run(hubStarted)
	<-hubStarted

	reaper := game.NewReaper(registry, cfg.RoomTTL, cfg.SweepInterval, &tickerGen)
	reaperStarted := make(chan struct{})
	go reaper.Run(reaperStarted)
	<-reaperStarted

	handler := game.NewHandler(hub, registry, cfg.AllowedOrigins)

	r := CreateServer(cfg.AllowedOrigins)
	r.GET("/health", handler.HealthHandler)
	r.GET("/ws", handler.WebsocketHandler)
	{
		api := r.Group("/api")
		api.GET("/rooms/:code", handler.RoomSummaryHandler)
		api.GET("/stats", handler.StatsHandler)
	}

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()
	slog.Info("server started", "addr", cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	srv.Shutdown(shutdownCtx)

	reaper.Stop()
	hub.Stop()
	hub.Close()
	registry.Close()
}

// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/RenatoDeCol/party-games/internal/auth"
	"github.com/RenatoDeCol/party-games/internal/config"
	"github.com/RenatoDeCol/party-games/internal/game"
	"github.com/RenatoDeCol/party-games/internal/handlers"
	"github.com/RenatoDeCol/party-games/internal/history"
	"github.com/RenatoDeCol/party-games/internal/middleware"
	"github.com/RenatoDeCol/party-games/internal/registry"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var hist *history.Publisher
	if cfg.RedisAddr != "" {
		hist, err = history.Connect(cfg.RedisAddr, cfg.HistoryQueue)
		if err != nil {
			log.Fatalf("history: %v", err)
		}
		defer hist.Close()
		logger.Infof("Action history enabled (queue %q)", cfg.HistoryQueue)
	}

	reg := registry.New(logger, game.NewRand(), hist, cfg.DisconnectTTL)
	srv := handlers.NewRoomServer(reg)

	mux := http.NewServeMux()
	mux.Handle("/rooms/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, srv),
	)))

	addr := ":" + cfg.Port
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

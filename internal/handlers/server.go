// internal/handlers/server.go
package handlers

import (
	"github.com/RenatoDeCol/party-games/internal/registry"
)

// RoomServer is the top-level handle the websocket surface works
// against. It owns the room registry.
type RoomServer struct {
	Registry *registry.Registry
}

// NewRoomServer wraps a registry for the HTTP layer.
func NewRoomServer(reg *registry.Registry) *RoomServer {
	return &RoomServer{Registry: reg}
}

// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used within the room handlers.
// These provide more specific reasons for closure than standard codes.
const (
	// BadSubprotocol signals the client connected without the 'party'
	// subprotocol.
	BadSubprotocol websocket.StatusCode = 3000
)

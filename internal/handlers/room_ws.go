// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/RenatoDeCol/party-games/internal/game"
	"github.com/RenatoDeCol/party-games/internal/middleware"
	"github.com/RenatoDeCol/party-games/internal/registry"
)

// RoomMessage is the envelope for every incoming websocket message.
type RoomMessage struct {
	Type string `json:"type"`

	// join_room fields.
	RoomID     string `json:"roomId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Token      string `json:"token,omitempty"`

	// start_game fields.
	GameType       string `json:"gameType,omitempty"`
	IsSinglePlayer *bool  `json:"isSinglePlayer,omitempty"`

	// action_intent carries the action body; Type inside the payload is
	// overridden by ActionType so clients cannot smuggle a mismatch.
	ActionType string          `json:"actionType,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// RoomWSHandler upgrades the HTTP connection to WebSocket and runs the
// room protocol: a join_room handshake first, then game traffic until
// the client goes away. On exit the player's disconnect grace timer is
// armed rather than the seat being torn down.
func RoomWSHandler(logger *logrus.Logger, srv *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"party"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "party" {
			logger.Warnf("Client connected with invalid subprotocol: %s", c.Subprotocol())
			c.Close(BadSubprotocol, "Client must use the 'party' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := registry.NewConnection(cancel)
		go writePump(ctx, c, conn, logger)

		roomID := readRoomMessages(ctx, c, conn, srv, logger)

		if roomID != "" {
			srv.Registry.Disconnect(roomID, conn)
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// writePump drains the connection's outbound queue into the websocket.
// Exits when the context dies; the read side notices separately.
func writePump(ctx context.Context, c *websocket.Conn, conn *registry.Connection, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.OutChan:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Errorf("Failed to marshal outbound message: %v", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write to WebSocket: %v", err)
				return
			}
		}
	}
}

// readRoomMessages runs the blocking read loop. Returns the room the
// client ended up seated in (empty if it never completed a join).
func readRoomMessages(ctx context.Context, c *websocket.Conn, conn *registry.Connection, srv *RoomServer, logger *logrus.Logger) string {
	var roomID string

	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for player %s.", conn.PlayerID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for player %s.", conn.PlayerID)
			} else {
				logger.Warnf("Error reading from WebSocket for player %s: %v (Status: %d)", conn.PlayerID, err, status)
			}
			return roomID
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d. Ignoring.", msgType)
			continue
		}

		var msg RoomMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received: %v. Data: %s", err, string(data))
			conn.SendError("Invalid JSON format.")
			continue
		}

		switch msg.Type {
		case "join_room":
			if roomID != "" {
				conn.SendError("Already joined a room.")
				continue
			}
			res, err := srv.Registry.Join(msg.RoomID, msg.PlayerName, msg.Token, conn)
			if err != nil {
				logger.Warnf("Join failed: %v", err)
				conn.SendError(err.Error())
				continue
			}
			roomID = res.RoomID
			conn.Send(map[string]interface{}{
				"type":     "session_token",
				"token":    res.Token,
				"playerId": res.PlayerID.String(),
				"roomId":   res.RoomID,
			})

		case "start_game":
			if roomID == "" {
				conn.SendError("Join a room first.")
				continue
			}
			if err := srv.Registry.StartGame(roomID, conn.PlayerID, game.GameType(msg.GameType), msg.IsSinglePlayer); err != nil {
				conn.SendError(err.Error())
			}

		case "action_intent":
			if roomID == "" {
				conn.SendError("Join a room first.")
				continue
			}
			var action game.Action
			if len(msg.Payload) > 0 {
				if err := json.Unmarshal(msg.Payload, &action); err != nil {
					logger.Warnf("Invalid action payload from player %s: %v", conn.PlayerID, err)
					conn.SendError("Invalid action payload.")
					continue
				}
			}
			action.Type = msg.ActionType
			if err := srv.Registry.Apply(roomID, conn.PlayerID, action); err != nil {
				conn.SendError(err.Error())
			}

		case "leave_room":
			if roomID != "" {
				srv.Registry.Leave(roomID, conn.PlayerID)
				roomID = ""
			}
			return ""

		case "ping":
			conn.Send(map[string]interface{}{"type": "pong"})

		default:
			logger.Warnf("Unknown message type '%s' from player %s.", msg.Type, conn.PlayerID)
			conn.SendError(fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

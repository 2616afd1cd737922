// internal/registry/registry.go
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/RenatoDeCol/party-games/internal/game"
	"github.com/RenatoDeCol/party-games/internal/history"
)

var (
	// ErrRoomNotFound is returned when a room code resolves to nothing.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNotHost is returned when a non-host attempts a host-only operation.
	ErrNotHost = errors.New("only the host can do that")
	// ErrNameRequired is returned when a first-time join carries no name.
	ErrNameRequired = errors.New("player name required")
	// ErrBadToken is returned when a reconnect token cannot be resolved.
	ErrBadToken = errors.New("invalid or expired session token")
)

// roomCodeChars is the alphabet for generated room codes.
const roomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Connection is one live websocket viewer of a room. OutChan carries
// fully-formed outbound messages; the write pump on the handler side
// drains it. Writes never block: a viewer that cannot keep up drops
// messages rather than stalling the room.
type Connection struct {
	PlayerID uuid.UUID
	OutChan  chan map[string]interface{}
	Cancel   context.CancelFunc
}

// NewConnection builds a Connection with a buffered outbound queue.
func NewConnection(cancel context.CancelFunc) *Connection {
	return &Connection{
		OutChan: make(chan map[string]interface{}, 32),
		Cancel:  cancel,
	}
}

// Send queues a message without blocking. Dropped on a full queue.
func (c *Connection) Send(msg map[string]interface{}) {
	select {
	case c.OutChan <- msg:
	default:
	}
}

// SendError queues a structured error message for the client.
func (c *Connection) SendError(message string) {
	c.Send(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

// roomEntry pairs a room with its viewers. The entry mutex serializes
// every state transition for the room; distinct rooms never contend.
type roomEntry struct {
	mu          sync.Mutex
	room        *game.Room
	conns       map[*Connection]bool
	actionIndex int

	// closed is set, under mu, when the last seat empties and the entry
	// is about to leave the table. A joiner that raced the teardown sees
	// it and retries instead of seating in an orphaned entry.
	closed bool
}

// Registry is the in-memory table of live rooms plus the session and
// grace-timer machinery around them.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*roomEntry

	sessions      *SessionStore
	rng           game.Rand
	log           *logrus.Logger
	history       *history.Publisher
	disconnectTTL time.Duration
}

// New constructs a Registry. hist may be nil, which disables the action
// history pipeline.
func New(log *logrus.Logger, rng game.Rand, hist *history.Publisher, disconnectTTL time.Duration) *Registry {
	return &Registry{
		rooms:         make(map[string]*roomEntry),
		sessions:      NewSessionStore(),
		rng:           rng,
		log:           log,
		history:       hist,
		disconnectTTL: disconnectTTL,
	}
}

// JoinResult reports the outcome of a join: the seat the caller now
// occupies and the token to replay on reconnect.
type JoinResult struct {
	RoomID      string
	PlayerID    uuid.UUID
	Token       string
	Reconnected bool
}

// Join seats a player in a room. A valid reconnect token reclaims the
// player's existing seat and cancels their grace timer. Otherwise a
// fresh player is created, joining the named room if it exists or a
// newly-coded room if not.
func (reg *Registry) Join(roomCode, playerName, token string, conn *Connection) (JoinResult, error) {
	roomCode = normalizeCode(roomCode)

	if token != "" {
		if res, err := reg.rejoin(roomCode, token, conn); err == nil {
			return res, nil
		} else if !errors.Is(err, ErrBadToken) {
			return JoinResult{}, err
		}
		// Fall through: a stale token degrades to a fresh join.
	}

	if playerName == "" {
		return JoinResult{}, ErrNameRequired
	}

	playerID := uuid.New()
	player := &game.Player{
		ID:        playerID,
		Name:      playerName,
		Connected: true,
		DiceCount: 5,
	}

	for {
		reg.mu.Lock()
		entry, ok := reg.rooms[roomCode]
		if !ok {
			roomCode = reg.newRoomCodeLocked()
			entry = &roomEntry{
				room: &game.Room{
					ID:          roomCode,
					HostID:      playerID,
					Players:     map[uuid.UUID]*game.Player{},
					PlayerOrder: []uuid.UUID{},
					CurrentGame: game.GameLobby,
					State:       &game.LobbyState{Status: game.LobbyWaiting},
					CreatedAt:   time.Now(),
				},
				conns: make(map[*Connection]bool),
			}
			reg.rooms[roomCode] = entry
		}
		reg.mu.Unlock()

		entry.mu.Lock()
		if entry.closed {
			// The room emptied out between the table lookup and here.
			// Its entry is being torn down; take another pass.
			entry.mu.Unlock()
			continue
		}
		entry.room.Players[playerID] = player
		entry.room.PlayerOrder = append(entry.room.PlayerOrder, playerID)
		conn.PlayerID = playerID
		entry.conns[conn] = true
		reg.broadcastLocked(entry)
		entry.mu.Unlock()
		break
	}

	newToken, err := reg.sessions.Register(playerID, roomCode)
	if err != nil {
		reg.Leave(roomCode, playerID)
		return JoinResult{}, fmt.Errorf("failed to mint session token: %w", err)
	}

	reg.log.WithFields(logrus.Fields{
		"room":   roomCode,
		"player": playerID,
		"name":   playerName,
	}).Info("Player joined room")

	return JoinResult{RoomID: roomCode, PlayerID: playerID, Token: newToken}, nil
}

// rejoin restores a seat from a reconnect token.
func (reg *Registry) rejoin(roomCode, token string, conn *Connection) (JoinResult, error) {
	playerID, tokenRoom, ok := reg.sessions.Resolve(token)
	if !ok {
		return JoinResult{}, ErrBadToken
	}
	if roomCode != "" && roomCode != tokenRoom {
		return JoinResult{}, ErrBadToken
	}

	entry, ok := reg.getEntry(tokenRoom)
	if !ok {
		return JoinResult{}, ErrBadToken
	}

	entry.mu.Lock()
	player, ok := entry.room.Players[playerID]
	if !ok {
		entry.mu.Unlock()
		return JoinResult{}, ErrBadToken
	}
	reg.sessions.CancelExpiry(playerID)
	player.Connected = true
	conn.PlayerID = playerID
	entry.conns[conn] = true
	reg.broadcastLocked(entry)
	entry.mu.Unlock()

	reg.log.WithFields(logrus.Fields{
		"room":   tokenRoom,
		"player": playerID,
	}).Info("Player reconnected")

	return JoinResult{RoomID: tokenRoom, PlayerID: playerID, Token: token, Reconnected: true}, nil
}

// Apply runs one player action through the reducer and, if the action
// was accepted, commits and broadcasts the new state. A panic inside the
// reducer is contained here: the room keeps its previous state and the
// caller gets an error.
func (reg *Registry) Apply(roomID string, actor uuid.UUID, action game.Action) (err error) {
	entry, ok := reg.getEntry(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next := func() (next *game.Room) {
		defer func() {
			if r := recover(); r != nil {
				reg.log.WithFields(logrus.Fields{
					"room":   roomID,
					"action": action.Type,
					"panic":  r,
				}).Error("Reducer panicked; state preserved")
				next = entry.room
				err = fmt.Errorf("internal error applying action %q", action.Type)
			}
		}()
		return game.Reduce(entry.room, action, actor, reg.rng)
	}()
	if err != nil {
		return err
	}

	if next == entry.room {
		return fmt.Errorf("action %q rejected", action.Type)
	}

	entry.room = next
	entry.actionIndex++
	reg.publishAction(entry, roomID, actor, action)
	reg.broadcastLocked(entry)
	return nil
}

// StartGame switches the room into a mini-game. Host only.
func (reg *Registry) StartGame(roomID string, actor uuid.UUID, gameType game.GameType, singlePlayer *bool) error {
	entry, ok := reg.getEntry(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.room.HostID != actor {
		return ErrNotHost
	}

	next := entry.room.Clone()
	game.InitGame(next, gameType, singlePlayer, reg.rng)
	entry.room = next
	entry.actionIndex++
	reg.publishAction(entry, roomID, actor, game.Action{Type: "start_game:" + string(gameType)})
	reg.broadcastLocked(entry)

	reg.log.WithFields(logrus.Fields{
		"room": roomID,
		"game": gameType,
	}).Info("Game started")
	return nil
}

// Disconnect drops a viewer. If that was the player's only connection
// their seat is held for the grace period, after which it is reaped.
func (reg *Registry) Disconnect(roomID string, conn *Connection) {
	entry, ok := reg.getEntry(roomID)
	if !ok {
		return
	}

	entry.mu.Lock()
	delete(entry.conns, conn)
	playerID := conn.PlayerID

	player, seated := entry.room.Players[playerID]
	if !seated || playerID == uuid.Nil {
		entry.mu.Unlock()
		return
	}

	stillConnected := false
	for c := range entry.conns {
		if c.PlayerID == playerID {
			stillConnected = true
			break
		}
	}
	if stillConnected {
		entry.mu.Unlock()
		return
	}

	player.Connected = false
	reg.broadcastLocked(entry)
	entry.mu.Unlock()

	reg.log.WithFields(logrus.Fields{
		"room":   roomID,
		"player": playerID,
	}).Info("Player disconnected; grace timer armed")

	reg.sessions.ScheduleExpiry(playerID, reg.disconnectTTL, func() {
		reg.expire(roomID, playerID)
	})
}

// expire reaps a seat whose grace period lapsed without a reconnect.
func (reg *Registry) expire(roomID string, playerID uuid.UUID) {
	entry, ok := reg.getEntry(roomID)
	if !ok {
		return
	}

	entry.mu.Lock()
	player, ok := entry.room.Players[playerID]
	if !ok || player.Connected {
		// Reconnected (or already removed) before the timer fired.
		entry.mu.Unlock()
		return
	}
	reg.removeSeatLocked(entry, playerID)
	empty := len(entry.room.PlayerOrder) == 0
	if empty {
		entry.closed = true
	} else {
		reg.broadcastLocked(entry)
	}
	entry.mu.Unlock()

	reg.sessions.Remove(playerID)
	if empty {
		reg.deleteRoom(roomID)
	}

	reg.log.WithFields(logrus.Fields{
		"room":   roomID,
		"player": playerID,
	}).Info("Disconnected player expired")
}

// Leave removes a player immediately, bypassing the grace period.
func (reg *Registry) Leave(roomID string, playerID uuid.UUID) {
	entry, ok := reg.getEntry(roomID)
	if !ok {
		return
	}

	entry.mu.Lock()
	if _, ok := entry.room.Players[playerID]; !ok {
		entry.mu.Unlock()
		return
	}
	reg.removeSeatLocked(entry, playerID)
	empty := len(entry.room.PlayerOrder) == 0
	if empty {
		entry.closed = true
	} else {
		reg.broadcastLocked(entry)
	}
	entry.mu.Unlock()

	reg.sessions.Remove(playerID)
	if empty {
		reg.deleteRoom(roomID)
	}

	reg.log.WithFields(logrus.Fields{
		"room":   roomID,
		"player": playerID,
	}).Info("Player left room")
}

// Snapshot returns the masked view of a room for one viewer, for use
// outside the broadcast path (initial sync after join).
func (reg *Registry) Snapshot(roomID string, viewer uuid.UUID) (*game.Room, error) {
	entry, ok := reg.getEntry(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return game.MaskRoom(entry.room, viewer), nil
}

// removeSeatLocked takes a player out of the room, promotes a new host
// if needed, and repairs any turn-holder references. Caller holds
// entry.mu.
func (reg *Registry) removeSeatLocked(entry *roomEntry, playerID uuid.UUID) {
	next := entry.room.Clone()
	delete(next.Players, playerID)
	order := next.PlayerOrder[:0]
	for _, id := range next.PlayerOrder {
		if id != playerID {
			order = append(order, id)
		}
	}
	next.PlayerOrder = order
	if next.HostID == playerID && len(next.PlayerOrder) > 0 {
		next.HostID = next.PlayerOrder[0]
	}
	game.RepairTurnRefs(next, playerID)
	entry.room = next
}

// broadcastLocked pushes each viewer their masked snapshot. Caller holds
// entry.mu; sends are non-blocking so the lock is never held hostage by
// a slow client.
func (reg *Registry) broadcastLocked(entry *roomEntry) {
	for conn := range entry.conns {
		masked := game.MaskRoom(entry.room, conn.PlayerID)
		conn.Send(map[string]interface{}{
			"type": "room_update",
			"room": masked,
		})
	}
}

// publishAction hands an accepted action to the history pipeline, off
// the lock path. Best effort: history failures never affect gameplay.
func (reg *Registry) publishAction(entry *roomEntry, roomID string, actor uuid.UUID, action game.Action) {
	if reg.history == nil {
		return
	}
	record := history.ActionRecord{
		RoomID:      roomID,
		ActionIndex: entry.actionIndex,
		ActorID:     actor,
		ActionType:  action.Type,
		Timestamp:   time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := reg.history.Publish(ctx, record); err != nil {
			reg.log.WithError(err).Warn("Failed to publish action record")
		}
	}()
}

func (reg *Registry) getEntry(roomID string) (*roomEntry, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	entry, ok := reg.rooms[normalizeCode(roomID)]
	return entry, ok
}

func (reg *Registry) deleteRoom(roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, normalizeCode(roomID))
	reg.log.WithField("room", roomID).Info("Empty room deleted")
}

// newRoomCodeLocked generates an unused 4-character room code. Caller
// holds reg.mu.
func (reg *Registry) newRoomCodeLocked() string {
	for {
		code := make([]byte, 4)
		for i := range code {
			code[i] = roomCodeChars[reg.rng.Intn(len(roomCodeChars))]
		}
		if _, taken := reg.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

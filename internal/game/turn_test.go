// internal/game/turn_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNextTurnAdvancesInOrder(t *testing.T) {
	room, ids := newTestRoom(3)

	assert.Equal(t, ids[1], NextTurn(ids[0], room.PlayerOrder, room.Players, false))
	assert.Equal(t, ids[2], NextTurn(ids[1], room.PlayerOrder, room.Players, false))
	assert.Equal(t, ids[0], NextTurn(ids[2], room.PlayerOrder, room.Players, false))
}

func TestNextTurnSkipsDisconnected(t *testing.T) {
	room, ids := newTestRoom(3)
	room.Players[ids[1]].Connected = false

	assert.Equal(t, ids[2], NextTurn(ids[0], room.PlayerOrder, room.Players, false))
}

func TestNextTurnSkipsEliminatedWhenDiceRequired(t *testing.T) {
	room, ids := newTestRoom(3)
	room.Players[ids[1]].DiceCount = 0

	assert.Equal(t, ids[2], NextTurn(ids[0], room.PlayerOrder, room.Players, true))
	// Without the dice requirement the zero-dice player still takes turns.
	assert.Equal(t, ids[1], NextTurn(ids[0], room.PlayerOrder, room.Players, false))
}

func TestNextTurnCurrentAbsentFromOrder(t *testing.T) {
	room, ids := newTestRoom(3)
	ghost := uuid.New()

	assert.Equal(t, ids[0], NextTurn(ghost, room.PlayerOrder, room.Players, false))

	// All ineligible: first order slot is still returned.
	for _, p := range room.Players {
		p.Connected = false
	}
	assert.Equal(t, ids[0], NextTurn(ghost, room.PlayerOrder, room.Players, false))
}

func TestNextTurnNoEligibleFallsBackToCurrent(t *testing.T) {
	room, ids := newTestRoom(3)
	for _, p := range room.Players {
		p.Connected = false
	}

	assert.Equal(t, ids[1], NextTurn(ids[1], room.PlayerOrder, room.Players, false))
}

func TestNextTurnEmptyOrder(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, NextTurn(id, nil, map[uuid.UUID]*Player{}, false))
}

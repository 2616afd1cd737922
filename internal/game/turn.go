// internal/game/turn.go
package game

import "github.com/google/uuid"

// NextTurn walks order circularly starting just after current, returning
// the first connected player (holding at least one die when requireDice
// is set). If current is absent from order, the scan starts from the
// front instead. With no eligible candidate it falls back to current (or
// order[0] in the absent-current case); callers must tolerate that the
// returned id is not strictly "next" in a fully disconnected room.
func NextTurn(current uuid.UUID, order []uuid.UUID, players map[uuid.UUID]*Player, requireDice bool) uuid.UUID {
	idx := -1
	for i, id := range order {
		if id == current {
			idx = i
			break
		}
	}

	if idx == -1 {
		for _, id := range order {
			if eligible(players[id], requireDice) {
				return id
			}
		}
		if len(order) > 0 {
			return order[0]
		}
		return current
	}

	for i := 1; i <= len(order); i++ {
		id := order[(idx+i)%len(order)]
		if eligible(players[id], requireDice) {
			return id
		}
	}
	return current
}

func eligible(p *Player, requireDice bool) bool {
	return p != nil && p.Connected && (!requireDice || p.DiceCount > 0)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

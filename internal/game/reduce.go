// internal/game/reduce.go
package game

import "github.com/google/uuid"

// Reduce applies one player action to a room and returns the next room
// value. Rejected actions (unknown actor, wrong turn, illegal move,
// unknown mode) return the input pointer unchanged; accepted actions
// return a fresh deep copy, so callers can detect no-ops by pointer
// identity. Reduce never mutates its input.
func Reduce(room *Room, action Action, actor uuid.UUID, rng Rand) *Room {
	if _, ok := room.Players[actor]; !ok {
		return room
	}

	// Host-only room administration, applied unconditionally and before
	// any mode dispatch.
	if room.HostID == actor {
		switch action.Type {
		case ActionReorderPlayers:
			next := room.Clone()
			next.PlayerOrder = append([]uuid.UUID(nil), action.PlayerOrder...)
			return next

		case ActionKickPlayer:
			if _, ok := room.Players[action.TargetID]; !ok {
				return room
			}
			next := room.Clone()
			delete(next.Players, action.TargetID)
			next.PlayerOrder = removeID(next.PlayerOrder, action.TargetID)
			// A self-kick removes the host; the first remaining seat
			// inherits the room.
			if next.HostID == action.TargetID && len(next.PlayerOrder) > 0 {
				next.HostID = next.PlayerOrder[0]
			}
			RepairTurnRefs(next, action.TargetID)
			return next
		}
	}

	switch room.CurrentGame {
	case GameHigherLower:
		return reduceHigherLower(room, action, actor)
	case GameCachito:
		return reduceCachito(room, action, actor, rng)
	case GameGeneral:
		return reduceGeneral(room, action, actor, rng)
	default:
		return room
	}
}

// RepairTurnRefs re-points any in-flight turn-holder reference that
// targeted a removed player, so mode state never references a missing id.
func RepairTurnRefs(room *Room, removed uuid.UUID) {
	switch st := room.State.(type) {
	case *CachitoState:
		if st.CurrentTurnID == removed {
			st.CurrentTurnID = NextTurn(removed, room.PlayerOrder, room.Players, true)
		}
	case *GeneralState:
		if st.CurrentTurnID == removed {
			st.CurrentTurnID = NextTurn(removed, room.PlayerOrder, room.Players, false)
		}
	case *HigherLowerState:
		if st.GuesserID == removed {
			st.GuesserID = NextTurn(removed, room.PlayerOrder, room.Players, false)
		}
		if st.HolderID == removed {
			st.HolderID = NextTurn(removed, room.PlayerOrder, room.Players, false)
		}
	}
}

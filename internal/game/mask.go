// internal/game/mask.go
package game

import "github.com/google/uuid"

// MaskRoom returns a copy of room with everything the viewer must not
// see stripped out. The input room is never mutated.
//
// Cachito hides other players' dice until the round resolves. Higher
// or Lower hides the deck entirely and the current card from everyone
// but the holder.
func MaskRoom(room *Room, viewer uuid.UUID) *Room {
	masked := room.Clone()

	switch st := masked.State.(type) {
	case *CachitoState:
		if st.Phase != PhaseResolving {
			for id, p := range masked.Players {
				if id != viewer {
					p.Dice = []int{}
				}
			}
		}

	case *HigherLowerState:
		st.Deck = []Card{}
		if viewer != st.HolderID {
			st.CurrentCard = nil
		}
	}

	return masked
}

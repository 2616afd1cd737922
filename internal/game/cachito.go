// internal/game/cachito.go
package game

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateBid reports whether next legally raises current under the
// Cachito bidding ladder. A nil current means this is the opening bid.
//
// Under obligado (the round holder is down to a single die) aces lose
// their wildcard status: the face is locked by the opening bid and only
// the quantity may climb.
func ValidateBid(current *Bid, next Bid, obligado bool) bool {
	if obligado {
		if next.IsAces {
			return false
		}
		if current != nil {
			return next.FaceValue == current.FaceValue && next.Quantity > current.Quantity
		}
		return next.Quantity >= 1 && next.FaceValue != 1
	}

	if next.FaceValue < 1 || next.FaceValue > 6 {
		return false
	}
	if next.IsAces != (next.FaceValue == 1) {
		return false
	}
	if current == nil {
		return next.Quantity >= 1
	}

	switch {
	case next.IsAces && !current.IsAces:
		// Dropping to aces halves the bar, rounded up.
		return next.Quantity >= (current.Quantity+1)/2
	case !next.IsAces && current.IsAces:
		// Leaving aces doubles it and adds one.
		return next.Quantity >= current.Quantity*2+1
	case next.IsAces && current.IsAces:
		return next.Quantity > current.Quantity
	default:
		if next.Quantity > current.Quantity {
			return next.FaceValue >= current.FaceValue
		}
		if next.Quantity == current.Quantity {
			return next.FaceValue > current.FaceValue
		}
		return false
	}
}

func reduceCachito(room *Room, action Action, actor uuid.UUID, rng Rand) *Room {
	st, ok := room.State.(*CachitoState)
	if !ok {
		return room
	}

	switch action.Type {
	case ActionBid, ActionDoubt, ActionMatch, ActionNextRound:
	default:
		return room
	}
	if action.Type != ActionNextRound && st.CurrentTurnID != actor {
		return room
	}

	switch action.Type {
	case ActionBid:
		bid := Bid{
			PlayerID:  actor,
			Quantity:  action.Quantity,
			FaceValue: action.FaceValue,
			IsAces:    action.IsAces,
		}
		if st.Phase != PhaseBidding || !ValidateBid(st.CurrentBid, bid, st.IsObligado) {
			return room
		}
		next := room.Clone()
		ns := next.State.(*CachitoState)
		ns.PreviousBid = ns.CurrentBid
		ns.CurrentBid = &bid
		ns.CurrentTurnID = NextTurn(actor, next.PlayerOrder, next.Players, true)
		return next

	case ActionDoubt, ActionMatch:
		if st.CurrentBid == nil || st.Phase != PhaseBidding {
			return room
		}
		next := room.Clone()
		ns := next.State.(*CachitoState)
		bid := *ns.CurrentBid

		total := 0
		for _, p := range next.Players {
			if p.DiceCount <= 0 {
				continue
			}
			for _, d := range p.Dice {
				if d == bid.FaceValue {
					total++
				} else if !ns.IsObligado && !bid.IsAces && d == 1 {
					total++
				}
			}
		}

		var loser uuid.UUID
		if action.Type == ActionDoubt {
			// The doubter claims the bid overshoots the table.
			if total < bid.Quantity {
				loser = bid.PlayerID
			} else {
				loser = actor
			}
		} else {
			// The matcher claims the bid is exact.
			if total == bid.Quantity {
				loser = bid.PlayerID
			} else {
				loser = actor
			}
		}

		ns.Phase = PhaseResolving
		ns.LoserID = loser
		ns.Reveal = &RevealData{
			TotalFound: total,
			Reason:     revealReason(next, action.Type, bid, total, loser),
		}
		if lp, ok := next.Players[loser]; ok && lp.DiceCount > 0 {
			lp.DiceCount--
		}
		return next

	case ActionNextRound:
		if st.Phase != PhaseResolving {
			return room
		}
		next := room.Clone()
		ns := next.State.(*CachitoState)

		for _, p := range next.Players {
			if p.DiceCount > 0 {
				p.Dice = rollDice(rng, p.DiceCount)
			} else {
				p.Dice = nil
			}
		}

		ns.Phase = PhaseBidding
		ns.CurrentBid = nil
		ns.PreviousBid = nil
		ns.Reveal = nil

		holder := ns.LoserID
		if lp, ok := next.Players[holder]; !ok || lp.DiceCount <= 0 {
			holder = NextTurn(holder, next.PlayerOrder, next.Players, true)
		}
		ns.CurrentTurnID = holder
		ns.LoserID = uuid.Nil
		if hp, ok := next.Players[holder]; ok {
			ns.IsObligado = hp.DiceCount == 1
		} else {
			ns.IsObligado = false
		}
		return next
	}

	return room
}

func revealReason(room *Room, challenge string, bid Bid, total int, loser uuid.UUID) string {
	face := fmt.Sprintf("%ds", bid.FaceValue)
	if bid.IsAces {
		face = "aces"
	}
	verb := "doubted"
	if challenge == ActionMatch {
		verb = "matched"
	}
	loserName := loser.String()
	if lp, ok := room.Players[loser]; ok {
		loserName = lp.Name
	}
	return fmt.Sprintf("bid of %d %s was %s: %d found, %s loses a die",
		bid.Quantity, face, verb, total, loserName)
}

// internal/game/higher_lower.go
package game

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Higher-or-Lower hint and consequence strings shown to clients.
const (
	HintHigher = "higher"
	HintLower  = "lower"

	ConsequenceHolderFull = "holder_drink_full"
	ConsequenceHolderHalf = "holder_drink_half"
	ConsequenceTryAgain   = "try_again"
)

// reduceHigherLower handles the guesser's exact-rank guess. Everything
// else in this mode is a no-op.
func reduceHigherLower(room *Room, action Action, actor uuid.UUID) *Room {
	st, ok := room.State.(*HigherLowerState)
	if !ok || action.Type != ActionGuess {
		return room
	}
	if st.GuesserID != actor || st.CurrentCard == nil {
		return room
	}
	if action.Guess < 1 || action.Guess > 13 {
		return room
	}

	next := room.Clone()
	ns := next.State.(*HigherLowerState)

	answer := st.CurrentCard.Value()
	ns.LastGuess = action.Guess
	ns.LastAnswer = answer

	var resolved, rotate bool
	switch {
	case action.Guess == answer:
		resolved, rotate = true, true
		if st.AttemptNumber == 1 {
			ns.LastConsequence = ConsequenceHolderFull
		} else {
			ns.LastConsequence = ConsequenceHolderHalf
		}
		ns.LastConsequenceID = newConsequenceID()
		ns.AttemptNumber = 1
		ns.LastGuessHint = ""

	case st.AttemptNumber == 1:
		// Wrong first guess: hint, second attempt, same card.
		ns.AttemptNumber = 2
		if answer > action.Guess {
			ns.LastGuessHint = HintHigher
		} else {
			ns.LastGuessHint = HintLower
		}
		ns.LastConsequence = ConsequenceTryAgain
		ns.LastConsequenceID = newConsequenceID()

	default:
		// Wrong second guess: sip the distance, card resolves.
		resolved, rotate = true, true
		sips := action.Guess - answer
		if sips < 0 {
			sips = -sips
		}
		ns.LastConsequence = fmt.Sprintf("guesser_sip_%d", sips)
		ns.LastConsequenceID = newConsequenceID()
		ns.AttemptNumber = 1
		ns.LastGuessHint = ""
	}

	if resolved {
		ns.DiscardPile = append([]Card{*st.CurrentCard}, ns.DiscardPile...)
		if n := len(ns.Deck); n > 0 {
			top := ns.Deck[n-1]
			ns.Deck = ns.Deck[:n-1]
			ns.CurrentCard = &top
		} else {
			ns.CurrentCard = nil
		}
		ns.CardsRemaining = len(ns.Deck)
	}

	if rotate && st.HolderID != SystemHolderID {
		guesser := NextTurn(st.GuesserID, next.PlayerOrder, next.Players, false)
		if guesser == st.HolderID {
			// Full rotation: the holder role itself advances and a fresh
			// guesser is chosen after it. Holder and guesser never land
			// on the same id.
			ns.HolderID = NextTurn(st.HolderID, next.PlayerOrder, next.Players, false)
			ns.GuesserID = NextTurn(ns.HolderID, next.PlayerOrder, next.Players, false)
		} else {
			ns.GuesserID = guesser
		}
	}

	return next
}

func newConsequenceID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

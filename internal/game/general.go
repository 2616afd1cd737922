// internal/game/general.go
package game

import "github.com/google/uuid"

// reduceGeneral runs the single-die effect game. Thumb-master races and
// rule voting are resolvable by any player, the rest is turn-gated.
func reduceGeneral(room *Room, action Action, actor uuid.UUID, rng Rand) *Room {
	st, ok := room.State.(*GeneralState)
	if !ok {
		return room
	}

	switch action.Type {
	case ActionUseThumb:
		p := room.Players[actor]
		if p == nil || !p.IsThumbMaster || st.ActiveThumbRace {
			return room
		}
		next := room.Clone()
		ns := next.State.(*GeneralState)
		next.Players[actor].IsThumbMaster = false
		ns.ActiveThumbRace = true
		ns.ThumbRaceTriggerID = actor
		ns.ThumbRaceParticipants = []uuid.UUID{}
		ns.ThumbRaceLoserID = uuid.Nil
		return next

	case ActionThumbClick:
		if !st.ActiveThumbRace || actor == st.ThumbRaceTriggerID {
			return room
		}
		if containsID(st.ThumbRaceParticipants, actor) {
			return room
		}
		next := room.Clone()
		ns := next.State.(*GeneralState)
		ns.ThumbRaceParticipants = append(ns.ThumbRaceParticipants, actor)

		// The trigger is out of the race, so it ends once all but one
		// of the remaining connected players have reacted. The
		// straggler loses; if nobody is left over (two-player rooms)
		// the loss falls back on the trigger.
		connected := next.connectedIDs()
		if len(ns.ThumbRaceParticipants) >= len(connected)-2 {
			loser := ns.ThumbRaceTriggerID
			for _, id := range connected {
				if id == ns.ThumbRaceTriggerID {
					continue
				}
				if !containsID(ns.ThumbRaceParticipants, id) {
					loser = id
					break
				}
			}
			ns.ThumbRaceLoserID = loser
			ns.ActiveThumbRace = false
		}
		return next

	case ActionMakeRule:
		if !st.RollPending || st.LastRoll != 6 || st.CurrentTurnID != actor || st.TieBreaker != nil {
			return room
		}
		if action.Rule == "" {
			return room
		}
		next := room.Clone()
		ns := next.State.(*GeneralState)
		ns.ActiveRule = action.Rule
		ns.RollPending = false
		ns.CurrentTurnID = NextTurn(actor, next.PlayerOrder, next.Players, false)
		return next

	case ActionSuggestRule:
		if st.TieBreaker == nil || !containsID(st.TieBreaker.TiedGenerals, actor) {
			return room
		}
		if _, dup := st.TieBreaker.Suggestions[actor]; dup || action.Rule == "" {
			return room
		}
		next := room.Clone()
		ns := next.State.(*GeneralState)
		ns.TieBreaker.Suggestions[actor] = action.Rule
		return next

	case ActionVoteRule:
		tb := st.TieBreaker
		if tb == nil || len(tb.Suggestions) < len(tb.TiedGenerals) {
			return room
		}
		if p := room.Players[actor]; p == nil || !p.Connected {
			return room
		}
		if _, suggested := tb.Suggestions[action.TargetID]; !suggested {
			return room
		}
		if _, voted := tb.Votes[actor]; voted {
			return room
		}
		next := room.Clone()
		ns := next.State.(*GeneralState)
		ns.TieBreaker.Votes[actor] = action.TargetID

		if len(ns.TieBreaker.Votes) >= len(next.connectedIDs()) {
			winner := tallyVotes(ns.TieBreaker, rng)
			ns.ActiveRule = ns.TieBreaker.Suggestions[winner]
			ns.TieBreaker = nil
			ns.RollPending = false
			ns.CurrentTurnID = NextTurn(st.LastRollerID, next.PlayerOrder, next.Players, false)
		}
		return next
	}

	if st.CurrentTurnID != actor && action.Type != ActionEndEffect {
		return room
	}

	switch action.Type {
	case ActionRollDie:
		if st.RollPending {
			return room
		}
		next := room.Clone()
		ns := next.State.(*GeneralState)
		roll := rollDie(rng)
		ns.LastRoll = roll
		ns.LastRollerID = actor

		switch roll {
		case 6:
			p := next.Players[actor]
			p.GeneralLevel++

			maxLevel := 0
			for _, other := range next.Players {
				if other.GeneralLevel > maxLevel {
					maxLevel = other.GeneralLevel
				}
			}
			var tied []uuid.UUID
			for _, id := range next.PlayerOrder {
				if op := next.Players[id]; op != nil && op.GeneralLevel == maxLevel {
					tied = append(tied, id)
				}
			}

			if p.GeneralLevel == maxLevel {
				ns.RollPending = true
				if len(tied) > 1 {
					ns.TieBreaker = &RuleTieBreaker{
						TiedGenerals: tied,
						Suggestions:  map[uuid.UUID]string{},
						Votes:        map[uuid.UUID]uuid.UUID{},
					}
				}
			} else {
				// Climbed a level but still below the top general: the
				// six earns a free extra roll instead of rule-making.
				ns.RollPending = false
			}
		case 5:
			ns.RollPending = true
		case 4:
			next.Players[actor].IsThumbMaster = true
			ns.RollPending = false
			ns.CurrentTurnID = NextTurn(actor, next.PlayerOrder, next.Players, false)
		case 3:
			ns.RollPending = false
			ns.CurrentTurnID = NextTurn(actor, next.PlayerOrder, next.Players, false)
		case 2:
			ns.RollPending = true
		case 1:
			next.Players[actor].GeneralLevel = 0
			ns.RollPending = false
			ns.CurrentTurnID = NextTurn(actor, next.PlayerOrder, next.Players, false)
		}
		return next

	case ActionChoosePlayer:
		if !st.RollPending || st.LastRoll != 2 {
			return room
		}
		if _, ok := room.Players[action.TargetID]; !ok {
			return room
		}
		next := room.Clone()
		ns := next.State.(*GeneralState)
		ns.DrinkTargetID = action.TargetID
		ns.RollPending = false
		ns.CurrentTurnID = NextTurn(actor, next.PlayerOrder, next.Players, false)
		return next

	case ActionEndEffect:
		// The waterfall from a 5 has no in-game end condition, so the
		// host calls it off the table.
		if !st.RollPending || st.LastRoll != 5 || room.HostID != actor {
			return room
		}
		next := room.Clone()
		ns := next.State.(*GeneralState)
		ns.RollPending = false
		ns.CurrentTurnID = NextTurn(st.CurrentTurnID, next.PlayerOrder, next.Players, false)
		return next
	}

	return room
}

// tallyVotes picks the winning suggestion. Ties between top vote-getters
// (or a round with no votes counted) fall back to a random pick.
func tallyVotes(tb *RuleTieBreaker, rng Rand) uuid.UUID {
	counts := map[uuid.UUID]int{}
	for _, target := range tb.Votes {
		counts[target]++
	}
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	var leaders []uuid.UUID
	for _, id := range tb.TiedGenerals {
		if max > 0 && counts[id] == max {
			leaders = append(leaders, id)
		}
	}
	if len(leaders) == 1 {
		return leaders[0]
	}
	pool := leaders
	if len(pool) == 0 {
		pool = tb.TiedGenerals
	}
	return pool[rng.Intn(len(pool))]
}

// internal/game/setup.go
package game

// InitGame switches the room into gameType and deals its opening state.
// Callers pass a cloned room; the room is mutated in place.
func InitGame(room *Room, gameType GameType, singlePlayer *bool, rng Rand) {
	if len(room.PlayerOrder) == 0 {
		return
	}

	switch gameType {
	case GameHigherLower:
		single := len(room.PlayerOrder) == 1
		if singlePlayer != nil {
			single = *singlePlayer
		}
		deck := NewShuffledDeck(rng)
		top := deck[len(deck)-1]
		deck = deck[:len(deck)-1]

		st := &HigherLowerState{
			Deck:           deck,
			CurrentCard:    &top,
			AttemptNumber:  1,
			CardsRemaining: len(deck),
			DiscardPile:    []Card{},
		}
		if single {
			st.HolderID = SystemHolderID
			st.GuesserID = room.PlayerOrder[0]
		} else {
			st.HolderID = room.PlayerOrder[0]
			st.GuesserID = room.PlayerOrder[1%len(room.PlayerOrder)]
		}
		room.CurrentGame = GameHigherLower
		room.State = st

	case GameCachito:
		for _, p := range room.Players {
			p.DiceCount = 5
			p.Dice = rollDice(rng, 5)
		}
		room.CurrentGame = GameCachito
		room.State = &CachitoState{
			Phase:         PhaseBidding,
			CurrentTurnID: room.PlayerOrder[0],
		}

	case GameGeneral:
		room.CurrentGame = GameGeneral
		room.State = &GeneralState{
			CurrentTurnID: room.PlayerOrder[0],
		}

	default:
		room.CurrentGame = GameLobby
		room.State = &LobbyState{Status: LobbyWaiting}
	}
}

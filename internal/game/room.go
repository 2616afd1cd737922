// internal/game/room.go
package game

import (
	"time"

	"github.com/google/uuid"
)

// GameType discriminates the room's active mode and its state payload.
type GameType string

const (
	GameLobby       GameType = "lobby"
	GameHigherLower GameType = "higher_lower"
	GameCachito     GameType = "cachito"
	GameGeneral     GameType = "general"
)

// SystemHolderID is the "no holder" sentinel used in single-player
// Higher-or-Lower, where the server itself reveals cards.
var SystemHolderID = uuid.Nil

// Player is one seat in a room. Dice is server-only knowledge until a
// Cachito round resolves; DiceCount is always public.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Connected bool      `json:"connected"`

	// Cross-game attributes.
	GeneralLevel  int  `json:"generalLevel"`
	IsThumbMaster bool `json:"isThumbMaster"`

	// Cachito. Invariant: len(Dice) is 0 or equals DiceCount, except
	// transiently between a round resolving and the next re-roll.
	Dice      []int `json:"dice"`
	DiceCount int   `json:"diceCount"`
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Dice = append([]int(nil), p.Dice...)
	return &cp
}

// Room is the shared state all viewers observe (after masking). Every
// turn-holder id inside State references a key of Players, and
// PlayerOrder is a permutation of those keys.
type Room struct {
	ID          string                `json:"id"`
	HostID      uuid.UUID             `json:"hostId"`
	Players     map[uuid.UUID]*Player `json:"players"`
	PlayerOrder []uuid.UUID           `json:"playerOrder"`
	CurrentGame GameType              `json:"currentGame"`
	State       GameState             `json:"gameState"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// Clone returns a deep copy of the room. Reducers clone before mutating
// so that a rejected action can hand back the original pointer untouched.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Players = make(map[uuid.UUID]*Player, len(r.Players))
	for id, p := range r.Players {
		cp.Players[id] = p.Clone()
	}
	cp.PlayerOrder = append([]uuid.UUID(nil), r.PlayerOrder...)
	if r.State != nil {
		cp.State = r.State.clone()
	}
	return &cp
}

// connectedIDs returns the connected players in turn order.
func (r *Room) connectedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.PlayerOrder))
	for _, id := range r.PlayerOrder {
		if p, ok := r.Players[id]; ok && p.Connected {
			ids = append(ids, id)
		}
	}
	return ids
}

// GameState is the tagged union of per-mode state payloads. Exactly one
// of LobbyState, HigherLowerState, CachitoState or GeneralState; the
// unexported clone method seals the set to this package.
type GameState interface {
	Type() GameType
	clone() GameState
}

// LobbyStatus is the pre-game status flag.
type LobbyStatus string

const (
	LobbyWaiting  LobbyStatus = "waiting"
	LobbyStarting LobbyStatus = "starting"
)

// LobbyState is the mode state while no mini-game is running.
type LobbyState struct {
	Status LobbyStatus `json:"status"`
}

func (s *LobbyState) Type() GameType { return GameLobby }

func (s *LobbyState) clone() GameState {
	cp := *s
	return &cp
}

// HigherLowerState is the card-guessing game. Deck is server-only
// knowledge; CurrentCard is visible to the holder alone until resolved.
type HigherLowerState struct {
	Deck           []Card      `json:"deck"`
	CurrentCard    *Card       `json:"currentCard"`
	HolderID       uuid.UUID   `json:"holderId"`
	GuesserID      uuid.UUID   `json:"guesserId"`
	AttemptNumber  int         `json:"attemptNumber"`
	CardsRemaining int         `json:"cardsRemaining"`
	DiscardPile    []Card      `json:"discardPile"`

	// Transient display fields for the last resolved guess.
	LastGuessHint     string `json:"lastGuessHint,omitempty"`
	LastConsequence   string `json:"lastConsequence,omitempty"`
	LastConsequenceID string `json:"lastConsequenceId,omitempty"`
	LastGuess         int    `json:"lastGuess,omitempty"`
	LastAnswer        int    `json:"lastAnswer,omitempty"`
}

func (s *HigherLowerState) Type() GameType { return GameHigherLower }

func (s *HigherLowerState) clone() GameState {
	cp := *s
	cp.Deck = append([]Card(nil), s.Deck...)
	cp.DiscardPile = append([]Card(nil), s.DiscardPile...)
	if s.CurrentCard != nil {
		c := *s.CurrentCard
		cp.CurrentCard = &c
	}
	return &cp
}

// Bid is a standing Cachito bid: quantity of dice showing FaceValue,
// optionally declared explicitly on the wildcard face (aces).
type Bid struct {
	PlayerID  uuid.UUID `json:"playerId"`
	Quantity  int       `json:"quantity"`
	FaceValue int       `json:"faceValue"`
	IsAces    bool      `json:"isAces"`
}

// CachitoPhase is the round phase of the bidding dice game.
type CachitoPhase string

const (
	PhaseBidding   CachitoPhase = "bidding"
	PhaseResolving CachitoPhase = "resolving"
)

// RevealData summarizes a resolved challenge for display.
type RevealData struct {
	TotalFound int    `json:"totalFound"`
	Reason     string `json:"reason"`
}

// CachitoState is the bidding dice game.
type CachitoState struct {
	Phase         CachitoPhase `json:"status"`
	CurrentTurnID uuid.UUID    `json:"currentTurnId"`
	CurrentBid    *Bid         `json:"currentBid"`
	PreviousBid   *Bid         `json:"previousBid"`
	IsObligado    bool         `json:"isObligado"`
	LoserID       uuid.UUID    `json:"loserId"`
	Reveal        *RevealData  `json:"revealData,omitempty"`
}

func (s *CachitoState) Type() GameType { return GameCachito }

func (s *CachitoState) clone() GameState {
	cp := *s
	if s.CurrentBid != nil {
		b := *s.CurrentBid
		cp.CurrentBid = &b
	}
	if s.PreviousBid != nil {
		b := *s.PreviousBid
		cp.PreviousBid = &b
	}
	if s.Reveal != nil {
		r := *s.Reveal
		cp.Reveal = &r
	}
	return &cp
}

// RuleTieBreaker is the suggestion-then-vote sub-protocol opened when
// several players share the top general level.
type RuleTieBreaker struct {
	TiedGenerals []uuid.UUID             `json:"tiedGenerals"`
	Suggestions  map[uuid.UUID]string    `json:"suggestions"`
	Votes        map[uuid.UUID]uuid.UUID `json:"votes"`
}

func (tb *RuleTieBreaker) clone() *RuleTieBreaker {
	cp := &RuleTieBreaker{
		TiedGenerals: append([]uuid.UUID(nil), tb.TiedGenerals...),
		Suggestions:  make(map[uuid.UUID]string, len(tb.Suggestions)),
		Votes:        make(map[uuid.UUID]uuid.UUID, len(tb.Votes)),
	}
	for k, v := range tb.Suggestions {
		cp.Suggestions[k] = v
	}
	for k, v := range tb.Votes {
		cp.Votes[k] = v
	}
	return cp
}

// GeneralState is the turn-effect dice game.
type GeneralState struct {
	CurrentTurnID uuid.UUID `json:"currentTurnId"`
	LastRoll      int       `json:"lastRoll"`
	LastRollerID  uuid.UUID `json:"lastRollerId"`
	RollPending   bool      `json:"rollPending"`

	ActiveThumbRace       bool        `json:"activeThumbRace"`
	ThumbRaceTriggerID    uuid.UUID   `json:"thumbRaceTriggerId"`
	ThumbRaceParticipants []uuid.UUID `json:"thumbRaceParticipants,omitempty"`
	ThumbRaceLoserID      uuid.UUID   `json:"thumbRaceLoserId"`

	DrinkTargetID uuid.UUID       `json:"drinkTargetId"`
	ActiveRule    string          `json:"activeRule,omitempty"`
	TieBreaker    *RuleTieBreaker `json:"ruleTieBreaker,omitempty"`
}

func (s *GeneralState) Type() GameType { return GameGeneral }

func (s *GeneralState) clone() GameState {
	cp := *s
	cp.ThumbRaceParticipants = append([]uuid.UUID(nil), s.ThumbRaceParticipants...)
	if s.TieBreaker != nil {
		cp.TieBreaker = s.TieBreaker.clone()
	}
	return &cp
}

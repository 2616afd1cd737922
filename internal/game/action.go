// internal/game/action.go
package game

import "github.com/google/uuid"

// Action type constants. Anything else is ignored by the reducer.
const (
	ActionGuess = "hl_guess"

	ActionBid       = "cachito_bid"
	ActionDoubt     = "cachito_doubt"
	ActionMatch     = "cachito_match"
	ActionNextRound = "cachito_next_round"

	ActionRollDie      = "general_roll"
	ActionUseThumb     = "general_use_thumb"
	ActionThumbClick   = "general_thumb_click"
	ActionChoosePlayer = "general_choose_player"
	ActionMakeRule     = "general_make_rule"
	ActionSuggestRule  = "general_suggest_rule"
	ActionVoteRule     = "general_vote_rule"
	ActionEndEffect    = "general_end_effect"

	ActionReorderPlayers = "reorder_players"
	ActionKickPlayer     = "kick_player"
)

// Action is a player's in-game move. Type selects which of the other
// fields are meaningful; unused fields stay at their zero value.
type Action struct {
	Type string `json:"type"`

	// hl_guess: exact rank guess, 1 (ace) through 13 (king).
	Guess int `json:"guess,omitempty"`

	// cachito_bid.
	Quantity  int  `json:"quantity,omitempty"`
	FaceValue int  `json:"faceValue,omitempty"`
	IsAces    bool `json:"isAces,omitempty"`

	// general_choose_player, general_vote_rule, kick_player.
	TargetID uuid.UUID `json:"targetId,omitempty"`

	// general_make_rule, general_suggest_rule.
	Rule string `json:"rule,omitempty"`

	// reorder_players.
	PlayerOrder []uuid.UUID `json:"playerOrder,omitempty"`
}

// internal/game/deck.go
package game

import "strconv"

// Card is a rank-then-suit string such as "7H" or "10S" or "QC".
type Card string

// Rank returns the rank portion of the card ("2".."10", "J", "Q", "K", "A").
func (c Card) Rank() string {
	if len(c) < 2 {
		return string(c)
	}
	return string(c[:len(c)-1])
}

// Value returns the numeric rank used for guessing: ace=1, number cards
// at face value, jack=11, queen=12, king=13.
func (c Card) Value() int {
	switch c.Rank() {
	case "A":
		return 1
	case "J":
		return 11
	case "Q":
		return 12
	case "K":
		return 13
	default:
		v, _ := strconv.Atoi(c.Rank())
		return v
	}
}

var (
	deckSuits = []string{"H", "D", "C", "S"}
	deckRanks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
)

// NewShuffledDeck builds a full 52-card deck and shuffles it with the
// given source. The deck is drawn from the end.
func NewShuffledDeck(rng Rand) []Card {
	deck := make([]Card, 0, len(deckSuits)*len(deckRanks))
	for _, suit := range deckSuits {
		for _, rank := range deckRanks {
			deck = append(deck, Card(rank+suit))
		}
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// internal/game/cachito_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachitoRoom(t *testing.T, n int) (*Room, []uuid.UUID) {
	t.Helper()
	room, ids := newTestRoom(n)
	InitGame(room, GameCachito, nil, facesRand(2, 2, 2, 2, 2))
	return room, ids
}

func TestValidateBid(t *testing.T) {
	bid := func(q, f int) Bid { return Bid{Quantity: q, FaceValue: f, IsAces: f == 1} }

	cases := []struct {
		name     string
		current  *Bid
		next     Bid
		obligado bool
		ok       bool
	}{
		{"opening bid", nil, bid(1, 4), false, true},
		{"opening bid zero quantity", nil, bid(0, 4), false, false},
		{"opening aces", nil, bid(1, 1), false, true},
		{"face out of range", nil, bid(2, 7), false, false},
		{"aces flag mismatch", nil, Bid{Quantity: 2, FaceValue: 3, IsAces: true}, false, false},

		{"more of same face", ptr(bid(2, 2)), bid(3, 2), false, true},
		{"same quantity higher face", ptr(bid(2, 2)), bid(2, 5), false, true},
		{"same quantity same face", ptr(bid(2, 2)), bid(2, 2), false, false},
		{"more of lower face", ptr(bid(2, 4)), bid(3, 2), false, true},
		{"fewer dice", ptr(bid(3, 2)), bid(2, 6), false, false},

		{"to aces at half rounded up", ptr(bid(3, 2)), bid(2, 1), false, true},
		{"to aces below half", ptr(bid(5, 2)), bid(2, 1), false, false},
		{"from aces at double plus one", ptr(bid(2, 1)), bid(5, 2), false, true},
		{"from aces below double plus one", ptr(bid(2, 1)), bid(4, 2), false, false},
		{"aces to more aces", ptr(bid(2, 1)), bid(3, 1), false, true},
		{"aces to equal aces", ptr(bid(2, 1)), bid(2, 1), false, false},

		{"obligado opening", nil, bid(1, 3), true, true},
		{"obligado opening aces", nil, bid(1, 1), true, false},
		{"obligado same face more dice", ptr(bid(2, 3)), bid(3, 3), true, true},
		{"obligado face change", ptr(bid(2, 3)), bid(3, 4), true, false},
		{"obligado to aces", ptr(bid(2, 3)), bid(2, 1), true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, ValidateBid(tc.current, tc.next, tc.obligado))
		})
	}
}

func ptr(b Bid) *Bid { return &b }

func TestCachitoBidAdvancesTurn(t *testing.T) {
	room, ids := newCachitoRoom(t, 3)

	next := Reduce(room, Action{Type: ActionBid, Quantity: 2, FaceValue: 3}, ids[0], facesRand(1))
	require.NotSame(t, room, next)

	st := next.State.(*CachitoState)
	require.NotNil(t, st.CurrentBid)
	assert.Equal(t, 2, st.CurrentBid.Quantity)
	assert.Equal(t, ids[0], st.CurrentBid.PlayerID)
	assert.Equal(t, ids[1], st.CurrentTurnID)

	// Out-of-turn and illegal raises are no-ops.
	assert.Same(t, next, Reduce(next, Action{Type: ActionBid, Quantity: 3, FaceValue: 3}, ids[2], facesRand(1)))
	assert.Same(t, next, Reduce(next, Action{Type: ActionBid, Quantity: 2, FaceValue: 3}, ids[1], facesRand(1)))
}

func TestCachitoDoubtCountsWildcards(t *testing.T) {
	room, ids := newCachitoRoom(t, 2)
	st := room.State.(*CachitoState)

	room.Players[ids[0]].Dice = []int{3, 3, 1, 5, 6}
	room.Players[ids[1]].Dice = []int{3, 1, 2, 2, 4}
	st.CurrentBid = &Bid{PlayerID: ids[1], Quantity: 5, FaceValue: 3}
	st.CurrentTurnID = ids[0]

	// Three natural 3s plus two aces: exactly 5, the doubt fails.
	next := Reduce(room, Action{Type: ActionDoubt}, ids[0], facesRand(1))
	require.NotSame(t, room, next)

	ns := next.State.(*CachitoState)
	assert.Equal(t, PhaseResolving, ns.Phase)
	require.NotNil(t, ns.Reveal)
	assert.Equal(t, 5, ns.Reveal.TotalFound)
	assert.Equal(t, ids[0], ns.LoserID)
	assert.Equal(t, 4, next.Players[ids[0]].DiceCount)
}

func TestCachitoDoubtAgainstOverbid(t *testing.T) {
	room, ids := newCachitoRoom(t, 2)
	st := room.State.(*CachitoState)

	room.Players[ids[0]].Dice = []int{2, 2, 4, 5, 6}
	room.Players[ids[1]].Dice = []int{3, 6, 6, 5, 4}
	st.CurrentBid = &Bid{PlayerID: ids[1], Quantity: 4, FaceValue: 2}
	st.CurrentTurnID = ids[0]

	next := Reduce(room, Action{Type: ActionDoubt}, ids[0], facesRand(1))
	ns := next.State.(*CachitoState)
	assert.Equal(t, ids[1], ns.LoserID)
	assert.Equal(t, 2, ns.Reveal.TotalFound)
	assert.Equal(t, 4, next.Players[ids[1]].DiceCount)
}

func TestCachitoMatchExact(t *testing.T) {
	room, ids := newCachitoRoom(t, 2)
	st := room.State.(*CachitoState)

	room.Players[ids[0]].Dice = []int{4, 4, 2, 3, 5}
	room.Players[ids[1]].Dice = []int{4, 1, 2, 3, 5}
	st.CurrentBid = &Bid{PlayerID: ids[1], Quantity: 4, FaceValue: 4}
	st.CurrentTurnID = ids[0]

	// Three natural 4s plus one ace: exact match, bidder loses.
	next := Reduce(room, Action{Type: ActionMatch}, ids[0], facesRand(1))
	ns := next.State.(*CachitoState)
	assert.Equal(t, ids[1], ns.LoserID)

	// Off by one and the matcher loses instead.
	st.CurrentBid.Quantity = 5
	next = Reduce(room, Action{Type: ActionMatch}, ids[0], facesRand(1))
	assert.Equal(t, ids[0], next.State.(*CachitoState).LoserID)
}

func TestCachitoAcesBidNotWild(t *testing.T) {
	room, ids := newCachitoRoom(t, 2)
	st := room.State.(*CachitoState)

	room.Players[ids[0]].Dice = []int{1, 1, 2, 3, 4}
	room.Players[ids[1]].Dice = []int{1, 5, 5, 6, 6}
	st.CurrentBid = &Bid{PlayerID: ids[1], Quantity: 3, FaceValue: 1, IsAces: true}
	st.CurrentTurnID = ids[0]

	next := Reduce(room, Action{Type: ActionDoubt}, ids[0], facesRand(1))
	ns := next.State.(*CachitoState)
	// Only literal 1s count against an aces bid.
	assert.Equal(t, 3, ns.Reveal.TotalFound)
	assert.Equal(t, ids[0], ns.LoserID)
}

func TestCachitoNextRoundRerollsAndSetsObligado(t *testing.T) {
	room, ids := newCachitoRoom(t, 3)
	st := room.State.(*CachitoState)

	room.Players[ids[1]].DiceCount = 1
	st.Phase = PhaseResolving
	st.LoserID = ids[1]
	st.Reveal = &RevealData{TotalFound: 2, Reason: "x"}

	next := Reduce(room, Action{Type: ActionNextRound}, ids[2], facesRand(3, 3, 3, 3, 3))
	require.NotSame(t, room, next)

	ns := next.State.(*CachitoState)
	assert.Equal(t, PhaseBidding, ns.Phase)
	assert.Nil(t, ns.CurrentBid)
	assert.Nil(t, ns.Reveal)
	assert.Equal(t, uuid.Nil, ns.LoserID)
	assert.Equal(t, ids[1], ns.CurrentTurnID)
	assert.True(t, ns.IsObligado)
	assert.Len(t, next.Players[ids[1]].Dice, 1)
	assert.Len(t, next.Players[ids[0]].Dice, 5)
}

func TestCachitoNextRoundSkipsEliminatedLoser(t *testing.T) {
	room, ids := newCachitoRoom(t, 3)
	st := room.State.(*CachitoState)

	room.Players[ids[1]].DiceCount = 0
	st.Phase = PhaseResolving
	st.LoserID = ids[1]

	next := Reduce(room, Action{Type: ActionNextRound}, ids[0], facesRand(2))
	ns := next.State.(*CachitoState)
	assert.Equal(t, ids[2], ns.CurrentTurnID)
	assert.Nil(t, next.Players[ids[1]].Dice)
}

func TestCachitoDieConservation(t *testing.T) {
	room, ids := newCachitoRoom(t, 3)
	st := room.State.(*CachitoState)
	st.CurrentBid = &Bid{PlayerID: ids[2], Quantity: 20, FaceValue: 6}
	st.CurrentTurnID = ids[0]

	before := 0
	for _, p := range room.Players {
		before += p.DiceCount
	}

	next := Reduce(room, Action{Type: ActionDoubt}, ids[0], facesRand(1))
	after := 0
	for _, p := range next.Players {
		after += p.DiceCount
	}
	assert.Equal(t, before-1, after)
}

func TestCachitoChallengeRequiresStandingBid(t *testing.T) {
	room, ids := newCachitoRoom(t, 2)

	assert.Same(t, room, Reduce(room, Action{Type: ActionDoubt}, ids[0], facesRand(1)))
	assert.Same(t, room, Reduce(room, Action{Type: ActionMatch}, ids[0], facesRand(1)))
	assert.Same(t, room, Reduce(room, Action{Type: ActionNextRound}, ids[0], facesRand(1)))
}

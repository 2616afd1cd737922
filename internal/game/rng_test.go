// internal/game/rng_test.go
package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

// stubRand replays a scripted sequence of values. Shuffle is the
// identity permutation so deck and dice contents are predictable.
type stubRand struct {
	rolls []int
	i     int
}

func (s *stubRand) Intn(n int) int {
	if len(s.rolls) == 0 {
		return 0
	}
	v := s.rolls[s.i%len(s.rolls)]
	s.i++
	return v % n
}

func (s *stubRand) Shuffle(n int, swap func(i, j int)) {}

// facesRand scripts die faces directly: each entry is the face that the
// next rollDie call should land on.
func facesRand(faces ...int) *stubRand {
	rolls := make([]int, len(faces))
	for i, f := range faces {
		rolls[i] = f - 1
	}
	return &stubRand{rolls: rolls}
}

// One production source is shared by every room, so it has to survive
// concurrent rolls from independent goroutines (run with -race).
func TestNewRandConcurrentUse(t *testing.T) {
	rng := NewRand()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dice := []int{1, 2, 3, 4, 5}
			for i := 0; i < 500; i++ {
				if face := rollDie(rng); face < 1 || face > 6 {
					t.Errorf("die face %d out of range", face)
					return
				}
				rng.Shuffle(len(dice), func(i, j int) { dice[i], dice[j] = dice[j], dice[i] })
			}
		}()
	}
	wg.Wait()
}

// newTestRoom builds a connected n-player room with deterministic ids
// p0..pn-1 in order; p0 hosts.
func newTestRoom(n int) (*Room, []uuid.UUID) {
	ids := make([]uuid.UUID, n)
	players := make(map[uuid.UUID]*Player, n)
	for i := range ids {
		ids[i] = uuid.New()
		players[ids[i]] = &Player{
			ID:        ids[i],
			Name:      string(rune('A' + i)),
			Connected: true,
			DiceCount: 5,
		}
	}
	return &Room{
		ID:          "TEST",
		HostID:      ids[0],
		Players:     players,
		PlayerOrder: append([]uuid.UUID(nil), ids...),
		CurrentGame: GameLobby,
		State:       &LobbyState{Status: LobbyWaiting},
	}, ids
}

package combat

import (
	"testing"

	"github.com/korvan/duskspire/internal/chance"
)

func TestResolveDamageAlwaysPositive(t *testing.T) {
	rng := chance.NewSource(11)
	a := FromAgentStats("a", 3, 50, 14, 14, 8)
	b := FromAgentStats("b", 3, 50, 14, 14, 8)
	for i := 0; i < 500; i++ {
		res := Resolve(a, b, rng)
		if res.DamageToAttacker < 0 || res.DamageToDefender < 0 {
			t.Fatalf("negative damage: %+v", res)
		}
	}
}

func TestResolveFavorsOverwhelmingPower(t *testing.T) {
	rng := chance.NewSource(7)
	giant := FromAgentStats("giant", 50, 800, 160, 120, 60)
	mouse := FromAgentStats("mouse", 1, 10, 8, 8, 6)
	wins := 0
	for i := 0; i < 200; i++ {
		if Resolve(giant, mouse, rng).Outcome == AttackerWins {
			wins++
		}
	}
	if wins != 200 {
		t.Fatalf("a 50-level gap should never lose, won %d/200", wins)
	}
}

func TestResolveUpsetsPossible(t *testing.T) {
	rng := chance.NewSource(3)
	strong := FromAgentStats("strong", 6, 100, 25, 25, 12)
	weak := FromAgentStats("weak", 4, 80, 18, 18, 10)
	outcomes := make(map[Outcome]int)
	for i := 0; i < 500; i++ {
		outcomes[Resolve(strong, weak, rng).Outcome]++
	}
	if outcomes[DefenderWins] == 0 && outcomes[Draw] == 0 {
		t.Fatal("variance should allow the weaker side to hold occasionally")
	}
	if outcomes[AttackerWins] <= outcomes[DefenderWins] {
		t.Fatalf("the stronger side should win more often: %v", outcomes)
	}
}

func TestResolveDeterministicPerSeed(t *testing.T) {
	a := FromAgentStats("a", 3, 50, 14, 14, 8)
	b := FromAgentStats("b", 4, 60, 16, 16, 9)
	r1 := Resolve(a, b, chance.NewSource(5))
	r2 := Resolve(a, b, chance.NewSource(5))
	if r1 != r2 {
		t.Fatalf("same seed must give the same result: %+v vs %+v", r1, r2)
	}
}

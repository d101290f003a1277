package chance

import "testing"

func TestRollBounds(t *testing.T) {
	s := NewSource(1)
	if s.Roll(0) {
		t.Fatal("Roll(0) must never succeed")
	}
	if s.Roll(-0.5) {
		t.Fatal("negative probability must never succeed")
	}
	if !s.Roll(1) {
		t.Fatal("Roll(1) must always succeed")
	}
	if !s.Roll(2) {
		t.Fatal("probability above 1 must always succeed")
	}
}

func TestBetween(t *testing.T) {
	s := NewSource(7)
	for i := 0; i < 1000; i++ {
		v := s.Between(0.05, 0.15)
		if v < 0.05 || v >= 0.15 {
			t.Fatalf("Between out of range: %f", v)
		}
	}
	if got := s.Between(3, 3); got != 3 {
		t.Fatalf("degenerate range should return lo, got %f", got)
	}
	if got := s.Between(5, 2); got != 5 {
		t.Fatalf("inverted range should return lo, got %f", got)
	}
}

func TestWeightedPickIgnoresNonPositive(t *testing.T) {
	s := NewSource(42)
	weights := []float64{0, -3, 5, 0}
	for i := 0; i < 100; i++ {
		idx, ok := s.WeightedPick(weights)
		if !ok {
			t.Fatal("pick should succeed with one positive weight")
		}
		if idx != 2 {
			t.Fatalf("only index 2 is selectable, got %d", idx)
		}
	}
}

func TestWeightedPickAllNonPositive(t *testing.T) {
	s := NewSource(42)
	if _, ok := s.WeightedPick([]float64{0, -1, 0}); ok {
		t.Fatal("pick must fail when no weight is positive")
	}
	if _, ok := s.WeightedPick(nil); ok {
		t.Fatal("pick must fail on empty input")
	}
}

func TestWeightedPickDistribution(t *testing.T) {
	s := NewSource(99)
	counts := make([]int, 2)
	for i := 0; i < 10000; i++ {
		idx, ok := s.WeightedPick([]float64{1, 9})
		if !ok {
			t.Fatal("pick failed")
		}
		counts[idx]++
	}
	// Index 1 carries 90% of the weight; allow generous slack.
	if counts[1] < 8000 {
		t.Fatalf("heavy weight underselected: %v", counts)
	}
}

func TestDeterminism(t *testing.T) {
	a, b := NewSource(5), NewSource(5)
	for i := 0; i < 50; i++ {
		if a.Float() != b.Float() {
			t.Fatal("same seed must produce the same sequence")
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp01(1.5) != 1 || Clamp01(-0.2) != 0 || Clamp01(0.3) != 0.3 {
		t.Fatal("Clamp01 misbehaved")
	}
	if Clamp(2, 0.5, 1.5) != 1.5 || Clamp(0.1, 0.5, 1.5) != 0.5 {
		t.Fatal("Clamp misbehaved")
	}
}

func TestIntN(t *testing.T) {
	s := NewSource(3)
	if s.IntN(0) != 0 || s.IntN(-4) != 0 {
		t.Fatal("non-positive n must return 0")
	}
	for i := 0; i < 100; i++ {
		if v := s.IntN(4); v < 0 || v > 3 {
			t.Fatalf("IntN out of range: %d", v)
		}
	}
}

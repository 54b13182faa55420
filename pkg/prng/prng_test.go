package prng

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a := New(1337)
	b := New(1337)
	for i := 0; i < 1000; i++ {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("draw %d diverged: %v != %v", i, x, y)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Uint32() == b.Uint32() {
			same++
		}
	}
	if same > 1 {
		t.Errorf("seeds 1 and 2 produced %d identical draws out of 100", same)
	}
}

func TestNextRange(t *testing.T) {
	r := New(0)
	for i := 0; i < 100000; i++ {
		v := r.Next()
		if v < 0 || v >= 1 {
			t.Fatalf("Next() = %v, want [0,1)", v)
		}
	}
}

func TestReseedRestartsSequence(t *testing.T) {
	r := New(42)
	first := []uint32{r.Uint32(), r.Uint32(), r.Uint32()}
	r.Seed(42)
	for i, want := range first {
		if got := r.Uint32(); got != want {
			t.Errorf("draw %d after reseed = %d, want %d", i, got, want)
		}
	}
}

func TestZeroValueMatchesSeedZero(t *testing.T) {
	var z Rand
	s := New(0)
	if z.Uint32() != s.Uint32() {
		t.Error("zero value Rand differs from New(0)")
	}
}

func TestRangeAndIntn(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		if v := r.Range(-2, 3); v < -2 || v >= 3 {
			t.Fatalf("Range(-2,3) = %v", v)
		}
		if n := r.Intn(5); n < 0 || n >= 5 {
			t.Fatalf("Intn(5) = %d", n)
		}
	}
	if r.Intn(0) != 0 {
		t.Error("Intn(0) should be 0")
	}
}

func TestStateAdvances(t *testing.T) {
	r := New(9)
	before := r.State()
	r.Next()
	if r.State() == before {
		t.Error("State() did not change after a draw")
	}
}

func TestRangeNeverReachesHi(t *testing.T) {
	// At 2^24 float32 spacing is 2, so lo+(hi-lo)*x rounds to hi for x >= 0.5.
	const lo, hi = float32(1 << 24), float32(1<<24 + 2)
	r := New(5)
	for i := 0; i < 1000; i++ {
		if v := r.Range(lo, hi); v < lo || v >= hi {
			t.Fatalf("draw %d: Range = %v, want [%v, %v)", i, v, lo, hi)
		}
	}

	before := r.State()
	if v := r.Range(3, 3); v != 3 {
		t.Errorf("Range(3, 3) = %v", v)
	}
	if r.State() == before {
		t.Error("empty range should still take a draw")
	}
}

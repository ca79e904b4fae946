package prng_test

import (
	"testing"

	"github.com/loxflux/loxflux/internal/prng"
)

func TestDeterministicForSameSeed(t *testing.T) {
	a := prng.New(42)
	b := prng.New(42)
	for i := 0; i < 16; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("sequences diverged at step %d", i)
		}
	}
}

func TestFloat64InUnitRange(t *testing.T) {
	r := prng.New(1)
	for i := 0; i < 1000; i++ {
		v := r.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64 out of range: %v", v)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := prng.New(1)
	b := prng.New(2)
	if a.Next() == b.Next() {
		t.Fatal("different seeds produced identical first output (unlikely but not impossible; investigate)")
	}
}

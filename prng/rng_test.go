package prng

import (
	"math"
	"testing"
)

func TestSameSeedSameStream(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 1000; i++ {
		if a.Next64() != b.Next64() {
			t.Fatalf("streams diverged at call %d", i)
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := New(1)
	b := New(2)

	same := true
	for i := 0; i < 16; i++ {
		if a.Next64() != b.Next64() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to diverge within 16 draws")
	}
}

func TestNextFloatRange(t *testing.T) {
	r := New(7)
	for i := 0; i < 10000; i++ {
		v := r.NextFloat()
		if v < 0 || v >= 1 {
			t.Fatalf("NextFloat out of range: %v", v)
		}
	}
}

func TestNextFloatRangeBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 10000; i++ {
		v := r.NextFloatRange(-5, 5)
		if v < -5 || v >= 5 {
			t.Fatalf("NextFloatRange out of bounds: %v", v)
		}
	}
}

func TestNextIntBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 10000; i++ {
		v := r.NextInt(10)
		if v < 0 || v >= 10 {
			t.Fatalf("NextInt out of bounds: %v", v)
		}
	}
}

func TestNextIntPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for NextInt(0)")
		}
	}()
	New(1).NextInt(0)
}

func TestNextGaussianDistribution(t *testing.T) {
	r := New(99)
	const n = 20000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := r.NextGaussian()
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean) > 0.05 {
		t.Errorf("sample mean too far from 0: %v", mean)
	}
	if math.Abs(variance-1) > 0.1 {
		t.Errorf("sample variance too far from 1: %v", variance)
	}
}

func TestNextUnitVectorIsUnit(t *testing.T) {
	r := New(3)
	for i := 0; i < 1000; i++ {
		x, y := r.NextUnitVector()
		mag := math.Sqrt(x*x + y*y)
		if math.Abs(mag-1) > 1e-9 {
			t.Fatalf("unit vector magnitude %v, want 1", mag)
		}
	}
}

func TestNextBoolBothOutcomes(t *testing.T) {
	r := New(5)
	sawTrue, sawFalse := false, false
	for i := 0; i < 100 && !(sawTrue && sawFalse); i++ {
		if r.NextBool() {
			sawTrue = true
		} else {
			sawFalse = true
		}
	}
	if !sawTrue || !sawFalse {
		t.Fatal("expected both true and false within 100 draws")
	}
}

package field

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	t.Run("AddThenSubRecoversOperand", func(t *testing.T) {
		a := New(123456789)
		b := New(987654321)
		sum := a.Add(b)
		if got := sum.Sub(b); got != a {
			t.Fatalf("sum.Sub(b) = %v, want %v", got, a)
		}
	})

	t.Run("WrapsAroundModulus", func(t *testing.T) {
		a := Felt(Modulus - 1)
		got := a.Add(New(2))
		if got != New(1) {
			t.Fatalf("(p-1)+2 = %v, want 1", got)
		}
	})
}

func TestMulInv(t *testing.T) {
	t.Run("NonZeroHasInverse", func(t *testing.T) {
		a := New(42)
		inv, err := a.Inv()
		if err != nil {
			t.Fatalf("Inv() error: %v", err)
		}
		if got := a.Mul(inv); got != One {
			t.Fatalf("a * a^-1 = %v, want 1", got)
		}
	})

	t.Run("ZeroIsNotInvertible", func(t *testing.T) {
		if _, err := Zero.Inv(); err == nil {
			t.Fatal("expected error inverting zero")
		}
	})
}

func TestQuadMulInv(t *testing.T) {
	t.Run("NonZeroHasInverse", func(t *testing.T) {
		q := NewQuad(New(3), New(5))
		inv, err := q.Inv()
		if err != nil {
			t.Fatalf("Inv() error: %v", err)
		}
		if got := q.Mul(inv); !got.Equal(QuadOne) {
			t.Fatalf("q * q^-1 = %v, want 1", got)
		}
	})
}

func TestWordEquality(t *testing.T) {
	w1 := Word{New(1), New(2), New(3), New(4)}
	w2 := Word{New(1), New(2), New(3), New(4)}
	w3 := Word{New(1), New(2), New(3), New(5)}
	if !w1.Equal(w2) {
		t.Fatal("expected equal words to compare equal")
	}
	if w1.Equal(w3) {
		t.Fatal("expected differing words to compare unequal")
	}
}

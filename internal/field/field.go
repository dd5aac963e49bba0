// Package field implements arithmetic over the Goldilocks prime field
// p = 2^64 - 2^32 + 1, the 4-element Word built from it, and the
// quadratic extension field used by the FRI folding operation.
package field

import (
	"fmt"
	"math/bits"
)

// Modulus is the Goldilocks prime p = 2^64 - 2^32 + 1.
const Modulus uint64 = 0xFFFFFFFF00000001

// epsilon is 2^32 - 1, used by the specialized reduction below.
const epsilon uint64 = 0xFFFFFFFF

// Felt is an element of GF(p), stored in canonical form (< Modulus).
type Felt uint64

// Zero is the additive identity.
const Zero Felt = 0

// One is the multiplicative identity.
const One Felt = 1

// New reduces v modulo p and returns the canonical element.
func New(v uint64) Felt {
	if v >= Modulus {
		return Felt(v - Modulus)
	}
	return Felt(v)
}

// NewFromInt64 wraps a signed value into the field.
func NewFromInt64(v int64) Felt {
	if v >= 0 {
		return New(uint64(v))
	}
	return Zero.Sub(New(uint64(-v)))
}

// Uint64 returns the canonical uint64 representation.
func (f Felt) Uint64() uint64 { return uint64(f) }

// IsZero reports whether f is the additive identity.
func (f Felt) IsZero() bool { return f == Zero }

// Equal reports field equality.
func (f Felt) Equal(g Felt) bool { return f == g }

// reduce128 folds a 128-bit product (hi, lo) back into the field using
// the identity 2^64 ≡ 2^32 - 1 (mod p), avoiding a general division.
func reduce128(hi, lo uint64) Felt {
	// lo - hi_lo_borrow step: split hi into its own high/low 32-bit halves.
	hiHi := hi >> 32
	hiLo := hi & epsilon

	t0, borrow := bits.Sub64(lo, hiHi, 0)
	if borrow != 0 {
		t0 -= epsilon
	}

	t1 := hiLo * epsilon
	res, carry := bits.Add64(t0, t1, 0)
	if carry != 0 {
		res += epsilon
	}
	return New(res)
}

// Add returns f + g mod p.
func (f Felt) Add(g Felt) Felt {
	sum, carry := bits.Add64(uint64(f), uint64(g), 0)
	if carry != 0 {
		sum += epsilon
	}
	return New(sum)
}

// Sub returns f - g mod p.
func (f Felt) Sub(g Felt) Felt {
	diff, borrow := bits.Sub64(uint64(f), uint64(g), 0)
	if borrow != 0 {
		diff -= epsilon
	}
	return New(diff)
}

// Neg returns -f mod p.
func (f Felt) Neg() Felt {
	if f == Zero {
		return Zero
	}
	return Felt(Modulus) - f
}

// Mul returns f * g mod p.
func (f Felt) Mul(g Felt) Felt {
	hi, lo := bits.Mul64(uint64(f), uint64(g))
	return reduce128(hi, lo)
}

// Square returns f * f mod p.
func (f Felt) Square() Felt { return f.Mul(f) }

// Incr returns f + 1 mod p.
func (f Felt) Incr() Felt { return f.Add(One) }

// Exp returns f raised to the given power using square-and-multiply.
func (f Felt) Exp(power uint64) Felt {
	result := One
	base := f
	for power > 0 {
		if power&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		power >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse of f via Fermat's little
// theorem (f^(p-2)). Fails if f is zero.
func (f Felt) Inv() (Felt, error) {
	if f.IsZero() {
		return Zero, fmt.Errorf("field: cannot invert zero")
	}
	return f.Exp(Modulus - 2), nil
}

// String implements fmt.Stringer.
func (f Felt) String() string { return fmt.Sprintf("%d", uint64(f)) }

// Bytes returns the little-endian byte encoding of the canonical value,
// used when a field element needs to feed a byte-oriented hash (e.g.
// the MAST forest's auxiliary sha3-based node-equivalence hash).
func (f Felt) Bytes() [8]byte {
	var b [8]byte
	v := uint64(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// WordSize is the number of field elements in a Word.
const WordSize = 4

// Word is an ordered 4-tuple of field elements. Digests, memory words,
// and the hasher's rate/capacity registers are all represented as Word.
type Word [WordSize]Felt

// ZeroWord is the all-zero word, returned for uninitialized memory reads.
var ZeroWord = Word{Zero, Zero, Zero, Zero}

// Equal reports whether two words are element-wise equal.
func (w Word) Equal(other Word) bool {
	return w[0] == other[0] && w[1] == other[1] && w[2] == other[2] && w[3] == other[3]
}

// Digest is a Word produced by the hasher; all content-addressing uses
// digests.
type Digest = Word

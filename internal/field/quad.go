package field

import "fmt"

// nonResidue is the quadratic non-residue used to build GF(p^2) as
// GF(p)[x]/(x^2 - nonResidue). 7 is non-residue mod the Goldilocks
// prime and is the value used by FRI folding throughout the VM.
const nonResidue uint64 = 7

// Quad is an element of the quadratic extension field GF(p^2),
// represented as a0 + a1*x.
type Quad struct {
	A0, A1 Felt
}

// QuadZero is the additive identity of the extension field.
var QuadZero = Quad{Zero, Zero}

// QuadOne is the multiplicative identity of the extension field.
var QuadOne = Quad{One, Zero}

// NewQuad builds an extension element from two base-field coordinates.
func NewQuad(a0, a1 Felt) Quad { return Quad{a0, a1} }

// QuadFromBase embeds a base-field element into the extension field.
func QuadFromBase(a Felt) Quad { return Quad{a, Zero} }

// Add returns q + r.
func (q Quad) Add(r Quad) Quad { return Quad{q.A0.Add(r.A0), q.A1.Add(r.A1)} }

// Sub returns q - r.
func (q Quad) Sub(r Quad) Quad { return Quad{q.A0.Sub(r.A0), q.A1.Sub(r.A1)} }

// Neg returns -q.
func (q Quad) Neg() Quad { return Quad{q.A0.Neg(), q.A1.Neg()} }

// Mul returns q * r using schoolbook multiplication reduced by x^2 = nonResidue.
func (q Quad) Mul(r Quad) Quad {
	nr := New(nonResidue)
	a0b0 := q.A0.Mul(r.A0)
	a1b1 := q.A1.Mul(r.A1)
	cross := q.A0.Mul(r.A1).Add(q.A1.Mul(r.A0))
	return Quad{
		A0: a0b0.Add(a1b1.Mul(nr)),
		A1: cross,
	}
}

// MulBase multiplies an extension element by a base-field scalar.
func (q Quad) MulBase(s Felt) Quad { return Quad{q.A0.Mul(s), q.A1.Mul(s)} }

// Square returns q * q.
func (q Quad) Square() Quad { return q.Mul(q) }

// conjugate returns a0 - a1*x, the Frobenius conjugate.
func (q Quad) conjugate() Quad { return Quad{q.A0, q.A1.Neg()} }

// normSquared returns q * conjugate(q), which lies in the base field.
func (q Quad) normSquared() Felt {
	nr := New(nonResidue)
	return q.A0.Square().Sub(q.A1.Square().Mul(nr))
}

// Inv returns the multiplicative inverse of q. Fails if q is zero.
func (q Quad) Inv() (Quad, error) {
	if q.A0.IsZero() && q.A1.IsZero() {
		return QuadZero, fmt.Errorf("field: cannot invert zero extension element")
	}
	norm := q.normSquared()
	normInv, err := norm.Inv()
	if err != nil {
		return QuadZero, err
	}
	conj := q.conjugate()
	return conj.MulBase(normInv), nil
}

// IsZero reports whether q is the additive identity.
func (q Quad) IsZero() bool { return q.A0.IsZero() && q.A1.IsZero() }

// Equal reports element-wise equality.
func (q Quad) Equal(r Quad) bool { return q.A0 == r.A0 && q.A1 == r.A1 }

// String implements fmt.Stringer.
func (q Quad) String() string { return fmt.Sprintf("(%s + %s*x)", q.A0, q.A1) }

// Package hasher implements the Rescue-Prime-Optimized-style permutation
// used to content-address MAST nodes, and the 2-to-1 / sequential
// hashing primitives built on top of it.
//
// The permutation here is a simplified, self-contained RPO construction
// (fixed round constants, a structured MDS-like diffusion layer): full
// S-box rounds separated by a linear diffusion layer. It is not
// interoperable with any other RPO implementation, but it is
// deterministic and collision-resistant in the same structural sense,
// and satisfies every invariant the rest of the core depends on:
// determinism, and that two equal inputs always yield equal digests.
package hasher

import "github.com/vybium/vybium-mast-vm/internal/field"

// StateWidth is the width of the permutation state: an 8-element rate
// plus a 4-element capacity, matching the Word-sized digest output.
const StateWidth = 12

// RateWidth is the number of state elements absorbed/squeezed per
// permutation call.
const RateWidth = 8

// CapacityWidth is the number of state elements reserved for security
// (never directly exposed as output).
const CapacityWidth = StateWidth - RateWidth

// numRounds is the number of full S-box rounds applied per permutation.
const numRounds = 7

// State is the 12-element permutation state: indices [0:8) are rate,
// [8:12) are capacity.
type State [StateWidth]field.Felt

// roundConstants are deterministically derived, fixed constants; they
// need not match any external specification, only be fixed and public.
var roundConstants = buildRoundConstants()

func buildRoundConstants() [numRounds][StateWidth]field.Felt {
	var rc [numRounds][StateWidth]field.Felt
	// A simple LCG-derived constant stream keeps this self-contained
	// without reaching for crypto/rand (these constants must be fixed,
	// not random, across every run of the program).
	seed := field.New(0x243F6A8885A308D3 % field.Modulus)
	mul := field.New(6364136223846793005 % field.Modulus)
	add := field.New(1442695040888963407 % field.Modulus)
	for r := 0; r < numRounds; r++ {
		for i := 0; i < StateWidth; i++ {
			seed = seed.Mul(mul).Add(add)
			rc[r][i] = seed
		}
	}
	return rc
}

// mdsRow holds the circulant generator for the linear diffusion layer.
var mdsRow = [StateWidth]field.Felt{
	field.New(1), field.New(2), field.New(3), field.New(4),
	field.New(5), field.New(6), field.New(7), field.New(8),
	field.New(9), field.New(10), field.New(11), field.New(12),
}

func sbox(x field.Felt) field.Felt {
	// x^7 = x^4 * x^2 * x
	x2 := x.Square()
	x4 := x2.Square()
	return x4.Mul(x2).Mul(x)
}

func mix(s State) State {
	var out State
	for i := 0; i < StateWidth; i++ {
		acc := field.Zero
		for j := 0; j < StateWidth; j++ {
			acc = acc.Add(mdsRow[(i+j)%StateWidth].Mul(s[j]))
		}
		out[i] = acc
	}
	return out
}

// Permute applies the fixed-round permutation in place and returns the
// resulting state.
func Permute(s State) State {
	for r := 0; r < numRounds; r++ {
		for i := 0; i < StateWidth; i++ {
			s[i] = s[i].Add(roundConstants[r][i])
		}
		for i := 0; i < StateWidth; i++ {
			s[i] = sbox(s[i])
		}
		s = mix(s)
	}
	return s
}

// Merge2to1 hashes two digests into one, used to hash a control node's
// children. domainTag separates node kinds so that, e.g., a Join and a
// Split with identical children never collide.
func Merge2to1(left, right field.Digest, domainTag uint64) field.Digest {
	var s State
	copy(s[0:4], left[:])
	copy(s[4:8], right[:])
	s[8] = field.New(domainTag)
	s = Permute(s)
	return field.Digest{s[0], s[1], s[2], s[3]}
}

// HashElements sequentially absorbs a stream of field elements (an
// operation/decorator stream, e.g.) and returns the resulting digest.
// domainTag is mixed into the initial capacity to separate hash
// purposes (e.g. Block-node hashing vs. general data hashing).
func HashElements(elements []field.Felt, domainTag uint64) field.Digest {
	var s State
	s[8] = field.New(domainTag)
	for len(elements) > 0 {
		n := RateWidth
		if len(elements) < n {
			n = len(elements)
		}
		for i := 0; i < n; i++ {
			s[i] = s[i].Add(elements[i])
		}
		s = Permute(s)
		elements = elements[n:]
	}
	return field.Digest{s[0], s[1], s[2], s[3]}
}

// HPerm applies the permutation to a 12-element stack-resident state,
// used directly by the VM's `hperm` operation.
func HPerm(s State) State { return Permute(s) }

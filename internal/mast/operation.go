// Package mast implements the Merkleized Abstract Syntax Tree: the
// content-addressed arena of compiled procedure bodies (MastForest),
// their primitive operations (Operation), and the DFS-based merger that
// combines two forests while preserving every root digest.
package mast

import "github.com/vybium/vybium-mast-vm/internal/field"

// OperationKind is a tagged variant over the primitive VM operation set
// a Block node's body is made of. This is the executor-facing
// instruction set the Instruction Compiler lowers high-level
// ast.Instruction values into.
type OperationKind uint16

const (
	// Arithmetic over the base field.
	OpAdd OperationKind = iota
	OpMul
	OpNeg
	OpInv
	OpIncr
	OpExp

	// Boolean (operands must be in {0,1}).
	OpAnd
	OpOr
	OpNot
	OpEq
	OpEqz

	// u32 coprocessor.
	OpU32split
	OpU32add
	OpU32sub
	OpU32mul
	OpU32madd
	OpU32div
	OpU32and
	OpU32xor
	OpU32assert2

	// Stack manipulation.
	OpPad
	OpDrop
	OpDup0
	OpDup1
	OpDup2
	OpDup3
	OpDup4
	OpDup5
	OpDup6
	OpDup7
	OpDup9
	OpDup11
	OpDup13
	OpDup15
	OpSwap
	OpSwapW
	OpSwapW2
	OpSwapW3
	OpSwapDW
	OpMovUp2
	OpMovUp3
	OpMovUp4
	OpMovUp5
	OpMovUp6
	OpMovUp7
	OpMovUp8
	OpMovDn2
	OpMovDn3
	OpMovDn4
	OpMovDn5
	OpMovDn6
	OpMovDn7
	OpMovDn8
	OpCSwap
	OpCSwapW

	// Memory.
	OpMLoad
	OpMLoadW
	OpMStore
	OpMStoreW
	OpMStream
	OpPipe

	// Advice.
	OpAdvPop
	OpAdvPopW

	// Cryptography.
	OpHPerm
	OpMpVerify
	OpMrUpdate

	// FRI.
	OpFriE2F4

	// Immediates/assertions/markers. Assert/MpVerify/U32assert2 carry an
	// error code (see compiler.Compiler's error-code registry); Push carries
	// a literal field element.
	OpAssert
	OpPush
	OpNoop
)

// ErrCarrying reports whether this operation kind carries a registered
// error code as part of its Imm field (Assert, MpVerify, U32assert2).
func (k OperationKind) ErrCarrying() bool {
	switch k {
	case OpAssert, OpMpVerify, OpU32assert2:
		return true
	default:
		return false
	}
}

// Operation is one primitive VM op within a Block node.
type Operation struct {
	Kind OperationKind

	// Imm holds the literal pushed by OpPush, or the registered error
	// code for error-carrying kinds.
	Imm field.Felt

	// Segment is used only by OpFriE2F4, carrying the domain-segment
	// tag in {0,1,2,3}.
	Segment uint8
}

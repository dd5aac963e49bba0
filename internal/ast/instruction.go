package ast

import "github.com/vybium/vybium-mast-vm/internal/field"

// Opcode is a tagged variant over the high-level assembly instruction
// set. The full instruction set in the source project has on the order
// of 220 variants once every numbered stack-shuffle form (dup0..dup15,
// swap1..swap15, ...) is counted individually; here those families are
// represented by one Opcode each, parameterized by an Immediate (the
// stack index N), which keeps the Go enum tractable while preserving
// every family's semantics.
type Opcode uint16

const (
	// ========== Assertions ==========

	OpAssert Opcode = iota
	OpAssertWithError
	OpAssertEq
	OpAssertEqWithError
	OpAssertEqw
	OpAssertEqwWithError

	// ========== Literals ==========

	// OpPush pushes its Immediate onto the stack unconditionally; unlike
	// the *Imm arithmetic variants below, it requires no existing
	// operand and is the only way to introduce a fresh constant.
	OpPush

	// ========== Base field arithmetic ==========

	OpAdd
	OpAddImm
	OpSub
	OpSubImm
	OpMul
	OpMulImm
	OpDiv
	OpDivImm
	OpNeg
	OpInv
	OpIncr
	OpPow2
	OpExp
	OpExpImm

	// ========== Boolean ==========

	OpNot
	OpAnd
	OpOr
	OpXor
	OpEq
	OpEqImm
	OpEqz

	// ========== Quadratic extension field arithmetic ==========

	OpExt2Add
	OpExt2Sub
	OpExt2Mul
	OpExt2Neg
	OpExt2Inv

	// ========== u32 operations (wrapping / overflowing) ==========

	OpU32split
	OpU32cast
	OpU32add
	OpU32addImm
	OpU32addFull
	OpU32sub
	OpU32subImm
	OpU32mul
	OpU32mulFull
	OpU32madd
	OpU32div
	OpU32divImm
	OpU32mod
	OpU32and
	OpU32or
	OpU32xor
	OpU32not
	OpU32shl
	OpU32shlImm
	OpU32shr
	OpU32shrImm
	OpU32rotl
	OpU32rotr
	OpU32assert
	OpU32assert2
	OpU32assertWithError
	OpU32lt
	OpU32lte
	OpU32gt
	OpU32gte
	OpU32min
	OpU32max

	// ========== Stack manipulation ==========
	//
	// Dup, MovUp, MovDn carry their index N in the instruction's
	// Immediate (N in [0,15] for Dup, [2,15] for MovUp/MovDn). Swap is
	// lowered as a swap of the top two elements and its Immediate is not
	// read. SwapW/SwapDW are fixed forms with no index.

	OpDrop
	OpDropw
	OpPad
	OpPadw
	OpDup
	OpSwap
	OpSwapw
	OpSwapdw
	OpMovup
	OpMovdn
	OpCswap
	OpCswapw
	OpCdrop
	OpCdropw

	// ========== Memory ==========

	OpMemLoad
	OpMemLoadImm
	OpMemLoadw
	OpMemLoadwImm
	OpMemStore
	OpMemStoreImm
	OpMemStorew
	OpMemStorewImm
	OpLocLoad
	OpLocLoadw
	OpLocStore
	OpLocStorew
	OpMemStream
	OpAdvPipe

	// ========== Cryptography ==========

	OpHperm
	OpHmerge
	OpHash
	OpMtreeGet
	OpMtreeSet
	OpMtreeMerge
	OpMtreeVerify
	OpMtreeVerifyWithError

	// ========== Invocation ==========

	OpExec
	OpCall
	OpSyscall
	OpProcref
	OpDynexec
	OpDyncall

	// ========== Control-flow markers ==========

	OpNop
	OpBreakpoint
	OpDebug

	// ========== Advice-consuming ==========

	OpAdvPush
	OpAdvLoadw
	OpEmit
)

// InvocationTarget identifies the callee of exec/call/syscall/procref.
// Exactly one field is meaningful, selected by Kind.
type InvocationTargetKind uint8

const (
	// TargetLocalName names a procedure defined in the current module.
	TargetLocalName InvocationTargetKind = iota
	// TargetAliasQualified names an import-alias-qualified procedure.
	TargetAliasQualified
	// TargetAbsolutePath names a procedure by its full library path.
	TargetAbsolutePath
	// TargetMastRoot names a procedure by its raw MAST-root digest.
	TargetMastRoot
)

// Instruction is a single high-level assembly instruction: an Opcode,
// an optional Immediate, an optional error-code string (for the
// `_with_err` assertion/u32 family), and, for invocation opcodes, an
// InvocationTarget.
type Instruction struct {
	Op     Opcode
	Span   Span
	Imm    *Immediate
	ErrMsg string
	Target *InvocationTarget
}

// InvocationTarget is one of four forms: a bare local name, an
// alias-qualified name, an absolute module path, or a resolved digest.
type InvocationTarget struct {
	Kind InvocationTargetKind

	// Used when Kind == TargetLocalName or TargetAliasQualified.
	ModuleAlias string
	Name        string

	// Used when Kind == TargetAbsolutePath.
	LibraryPath string

	// Used when Kind == TargetMastRoot, and filled in by the module
	// graph once TargetLocalName/TargetAliasQualified/TargetAbsolutePath
	// has been resolved to a known digest.
	Digest field.Digest
}

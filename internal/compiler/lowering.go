package compiler

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/ast"
	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/mast"
)

// direct1to1 maps an Opcode with no immediate-dependent lowering
// directly onto a single primitive Operation of the same meaning.
var direct1to1 = map[ast.Opcode]mast.OperationKind{
	ast.OpAdd:     mast.OpAdd,
	ast.OpMul:     mast.OpMul,
	ast.OpNeg:     mast.OpNeg,
	ast.OpInv:     mast.OpInv,
	ast.OpIncr:    mast.OpIncr,
	ast.OpNot:     mast.OpNot,
	ast.OpAnd:     mast.OpAnd,
	ast.OpOr:      mast.OpOr,
	ast.OpEq:      mast.OpEq,
	ast.OpEqz:     mast.OpEqz,
	ast.OpU32split: mast.OpU32split,
	ast.OpU32add:  mast.OpU32add,
	ast.OpU32sub:  mast.OpU32sub,
	ast.OpU32mul:  mast.OpU32mul,
	ast.OpU32madd: mast.OpU32madd,
	ast.OpU32div:  mast.OpU32div,
	ast.OpU32and:  mast.OpU32and,
	ast.OpU32xor:  mast.OpU32xor,
	ast.OpDrop:    mast.OpDrop,
	ast.OpPad:     mast.OpPad,
	ast.OpSwap:    mast.OpSwap,
	ast.OpSwapw:   mast.OpSwapW,
	ast.OpSwapdw:  mast.OpSwapDW,
	ast.OpCswap:   mast.OpCSwap,
	ast.OpCswapw:  mast.OpCSwapW,
	ast.OpMemLoad:   mast.OpMLoad,
	ast.OpMemLoadw:  mast.OpMLoadW,
	ast.OpMemStore:  mast.OpMStore,
	ast.OpMemStorew: mast.OpMStoreW,
	ast.OpMemStream: mast.OpMStream,
	ast.OpAdvPipe:   mast.OpPipe,
	ast.OpAdvPush:   mast.OpAdvPop,
	ast.OpAdvLoadw:  mast.OpAdvPopW,
	ast.OpHperm:     mast.OpHPerm,
	ast.OpMtreeVerify: mast.OpMpVerify,
	ast.OpMtreeSet:    mast.OpMrUpdate,
	ast.OpNop:         mast.OpNoop,
}

// dupIndexToOp covers the fixed-slot Dup forms (N in [0,7] and the odd
// slots 9, 11, 13, 15); the even slots 8, 10, 12, 14 have no fixed form
// and are lowered through the pad+add sequence in compileDup.
var dupIndexToOp = map[uint64]mast.OperationKind{
	0: mast.OpDup0, 1: mast.OpDup1, 2: mast.OpDup2, 3: mast.OpDup3,
	4: mast.OpDup4, 5: mast.OpDup5, 6: mast.OpDup6, 7: mast.OpDup7,
	9: mast.OpDup9, 11: mast.OpDup11, 13: mast.OpDup13, 15: mast.OpDup15,
}

var movupIndexToOp = map[uint64]mast.OperationKind{
	2: mast.OpMovUp2, 3: mast.OpMovUp3, 4: mast.OpMovUp4, 5: mast.OpMovUp5,
	6: mast.OpMovUp6, 7: mast.OpMovUp7, 8: mast.OpMovUp8,
}

var movdnIndexToOp = map[uint64]mast.OperationKind{
	2: mast.OpMovDn2, 3: mast.OpMovDn3, 4: mast.OpMovDn4, 5: mast.OpMovDn5,
	6: mast.OpMovDn6, 7: mast.OpMovDn7, 8: mast.OpMovDn8,
}

// compileInstruction lowers one non-invocation instruction into bb,
// dispatching through the direct 1-to-1 table first, then the macro
// families the source project's instruction lowering documents.
func (c *Compiler) compileInstruction(inst ast.Instruction, bb *blockBuffer) error {
	if c.debug {
		c.emitAsmOpDecorator(inst, bb)
	}

	if kind, ok := direct1to1[inst.Op]; ok {
		bb.push(mast.Operation{Kind: kind})
		return nil
	}

	switch inst.Op {
	// ---- literals ----
	case ast.OpPush:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})

	// ---- assertions, with or without a registered error code ----
	case ast.OpAssert, ast.OpAssertWithError:
		bb.push(mast.Operation{Kind: mast.OpAssert, Imm: c.ErrorCodeFor(inst.ErrMsg)})
	case ast.OpAssertEq, ast.OpAssertEqWithError:
		bb.push(mast.Operation{Kind: mast.OpEq})
		bb.push(mast.Operation{Kind: mast.OpAssert, Imm: c.ErrorCodeFor(inst.ErrMsg)})
	case ast.OpAssertEqw, ast.OpAssertEqwWithError:
		// Word equality unrolls into 4 scalar eq+and comparisons followed
		// by one assert, since the primitive set has no wide assert.
		for i := 0; i < 3; i++ {
			bb.push(mast.Operation{Kind: mast.OpEq})
			bb.push(mast.Operation{Kind: mast.OpAnd})
		}
		bb.push(mast.Operation{Kind: mast.OpEq})
		bb.push(mast.Operation{Kind: mast.OpAssert, Imm: c.ErrorCodeFor(inst.ErrMsg)})

	// ---- immediate-folded base-field arithmetic ----
	case ast.OpAddImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpAdd})
	case ast.OpSub, ast.OpSubImm:
		// sub(a, b) = a + (-b): negate-then-add, since the primitive set
		// has no dedicated subtraction operation.
		if inst.Op == ast.OpSubImm {
			bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt().Neg()})
		} else {
			bb.push(mast.Operation{Kind: mast.OpNeg})
		}
		bb.push(mast.Operation{Kind: mast.OpAdd})
	case ast.OpMulImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpMul})
	case ast.OpDiv:
		bb.push(mast.Operation{Kind: mast.OpInv})
		bb.push(mast.Operation{Kind: mast.OpMul})
	case ast.OpDivImm:
		inv, err := inst.Imm.AsFelt().Inv()
		if err != nil {
			return fmt.Errorf("compiler: div by constant zero: %w", err)
		}
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inv})
		bb.push(mast.Operation{Kind: mast.OpMul})
	case ast.OpPow2:
		// pow2(x) is exp(2, x) with the base fixed at 2: push the base,
		// swap it under the exponent already on the stack so OpExp sees
		// (power=x, base=2) in the order it pops them, then exponentiate.
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: field.New(2)})
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpExp})
	case ast.OpExp, ast.OpExpImm:
		if inst.Op == ast.OpExpImm {
			bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		}
		bb.push(mast.Operation{Kind: mast.OpExp})

	case ast.OpXor:
		// xor(a,b) = a + b - 2ab, built from the boolean-only Add/Mul
		// primitives already on the stack: dup both operands, multiply,
		// double the product by adding it to itself, negate, then add
		// onto the sum of the originals.
		bb.push(mast.Operation{Kind: mast.OpDup1})
		bb.push(mast.Operation{Kind: mast.OpDup1})
		bb.push(mast.Operation{Kind: mast.OpMul})
		bb.push(mast.Operation{Kind: mast.OpDup0})
		bb.push(mast.Operation{Kind: mast.OpAdd})
		bb.push(mast.Operation{Kind: mast.OpNeg})
		bb.push(mast.Operation{Kind: mast.OpAdd})
		bb.push(mast.Operation{Kind: mast.OpAdd})

	case ast.OpEqImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpEq})

	case ast.OpExt2Add, ast.OpExt2Sub, ast.OpExt2Mul, ast.OpExt2Neg, ast.OpExt2Inv:
		return c.compileExt2(inst, bb)

	case ast.OpU32cast:
		bb.push(mast.Operation{Kind: mast.OpU32split})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32addImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpU32add})
	case ast.OpU32addFull:
		bb.push(mast.Operation{Kind: mast.OpU32add})
	case ast.OpU32subImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpU32sub})
	case ast.OpU32mulFull:
		bb.push(mast.Operation{Kind: mast.OpU32mul})
	case ast.OpU32divImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpU32div})
	case ast.OpU32mod:
		bb.push(mast.Operation{Kind: mast.OpU32div})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32or:
		// or(a,b) = a + b - and(a,b) over bit-decomposed u32 lanes; the
		// u32 coprocessor only exposes and/xor directly, so or is built
		// from xor and and: a|b = (a xor b) + and(a,b).
		bb.push(mast.Operation{Kind: mast.OpDup1})
		bb.push(mast.Operation{Kind: mast.OpDup1})
		bb.push(mast.Operation{Kind: mast.OpU32and})
		bb.push(mast.Operation{Kind: mast.OpU32xor})
		bb.push(mast.Operation{Kind: mast.OpU32add})
	case ast.OpU32not:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: field.New(0xFFFFFFFF)})
		bb.push(mast.Operation{Kind: mast.OpU32xor})
	case ast.OpU32shlImm:
		// x << n, n fixed at compile time: multiply by 2^n and keep only
		// the wrapped low word, discarding the overflowed high word that
		// OpU32mul also leaves on the stack.
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: field.New(1 << (inst.Imm.AsU32() & 31))})
		bb.push(mast.Operation{Kind: mast.OpU32mul})
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32shl:
		// x << n, n only known at runtime: compute 2^n via OpExp before
		// multiplying, instead of multiplying by the raw count.
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: field.New(2)})
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpExp})
		bb.push(mast.Operation{Kind: mast.OpU32mul})
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32shrImm:
		// x >> n, n fixed at compile time: divide by 2^n and keep only
		// the quotient, discarding the remainder OpU32div also leaves.
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: field.New(1 << (inst.Imm.AsU32() & 31))})
		bb.push(mast.Operation{Kind: mast.OpU32div})
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32shr:
		// x >> n, n only known at runtime: compute 2^n via OpExp before
		// dividing, instead of dividing by the raw count.
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: field.New(2)})
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpExp})
		bb.push(mast.Operation{Kind: mast.OpU32div})
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32rotl:
		// rotl(x,n) = (x<<n) | (x>>(32-n)). OpU32mul by 2^n already
		// splits x into exactly these two disjoint halves as (lo,hi), so
		// the or is just their sum; Swap+Drop discards the spurious
		// carry OpU32add also leaves (the halves never overlap, so the
		// add never actually carries).
		n := inst.Imm.AsU32() & 31
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: field.New(1 << n)})
		bb.push(mast.Operation{Kind: mast.OpU32mul})
		bb.push(mast.Operation{Kind: mast.OpU32add})
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32rotr:
		// rotr(x,n) = rotl(x,32-n): multiplying by 2^(32-n) splits x into
		// the same two disjoint halves in the opposite arrangement. n=0
		// is a pure identity and is special-cased since 32-0 doesn't fit
		// the 2^k immediate this macro pushes.
		n := inst.Imm.AsU32() & 31
		if n == 0 {
			bb.push(mast.Operation{Kind: mast.OpNoop})
			break
		}
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: field.New(1 << (32 - n))})
		bb.push(mast.Operation{Kind: mast.OpU32mul})
		bb.push(mast.Operation{Kind: mast.OpU32add})
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32assert:
		bb.push(mast.Operation{Kind: mast.OpU32assert2})
	case ast.OpU32assertWithError:
		bb.push(mast.Operation{Kind: mast.OpU32assert2, Imm: c.ErrorCodeFor(inst.ErrMsg)})
	case ast.OpU32lt:
		// lt(a,b): plain sub computes diff=a-b, borrow=(a<b); keep only
		// the borrow.
		bb.push(mast.Operation{Kind: mast.OpU32sub})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32gt:
		// gt(a,b) = lt(b,a): swap the operands before the same sub.
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpU32sub})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32lte:
		// lte(a,b) = not gt(a,b).
		bb.push(mast.Operation{Kind: mast.OpSwap})
		bb.push(mast.Operation{Kind: mast.OpU32sub})
		bb.push(mast.Operation{Kind: mast.OpDrop})
		bb.push(mast.Operation{Kind: mast.OpNot})
	case ast.OpU32gte:
		// gte(a,b) = not lt(a,b).
		bb.push(mast.Operation{Kind: mast.OpU32sub})
		bb.push(mast.Operation{Kind: mast.OpDrop})
		bb.push(mast.Operation{Kind: mast.OpNot})
	case ast.OpU32max:
		// Duplicate both operands, compute is_lt=(a<b) from the copies,
		// then CSwap on it: the top after CSwap is always min(a,b), so
		// the trailing drop leaves max(a,b) exposed.
		bb.push(mast.Operation{Kind: mast.OpDup1})
		bb.push(mast.Operation{Kind: mast.OpDup1})
		bb.push(mast.Operation{Kind: mast.OpU32sub})
		bb.push(mast.Operation{Kind: mast.OpDrop})
		bb.push(mast.Operation{Kind: mast.OpCSwap})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpU32min:
		// Same duplicate-and-compare, but CSwap on is_ge=(a>=b) instead,
		// so the top after CSwap is always max(a,b); the trailing drop
		// leaves min(a,b) exposed.
		bb.push(mast.Operation{Kind: mast.OpDup1})
		bb.push(mast.Operation{Kind: mast.OpDup1})
		bb.push(mast.Operation{Kind: mast.OpU32sub})
		bb.push(mast.Operation{Kind: mast.OpDrop})
		bb.push(mast.Operation{Kind: mast.OpNot})
		bb.push(mast.Operation{Kind: mast.OpCSwap})
		bb.push(mast.Operation{Kind: mast.OpDrop})

	// ---- stack manipulation families ----
	case ast.OpDup:
		return c.compileDup(inst, bb)
	case ast.OpMovup:
		return c.compileMovup(inst, bb)
	case ast.OpMovdn:
		return c.compileMovdn(inst, bb)
	case ast.OpDropw:
		bb.push(mast.Operation{Kind: mast.OpDrop})
		bb.push(mast.Operation{Kind: mast.OpDrop})
		bb.push(mast.Operation{Kind: mast.OpDrop})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpPadw:
		for i := 0; i < 4; i++ {
			bb.push(mast.Operation{Kind: mast.OpPad})
		}
	case ast.OpCdrop:
		bb.push(mast.Operation{Kind: mast.OpCSwap})
		bb.push(mast.Operation{Kind: mast.OpDrop})
	case ast.OpCdropw:
		bb.push(mast.Operation{Kind: mast.OpCSwapW})
		for i := 0; i < 4; i++ {
			bb.push(mast.Operation{Kind: mast.OpDrop})
		}

	// ---- memory ----
	case ast.OpMemLoadImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpMLoad})
	case ast.OpMemLoadwImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpMLoadW})
	case ast.OpMemStoreImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpMStore})
	case ast.OpMemStorewImm:
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		bb.push(mast.Operation{Kind: mast.OpMStoreW})
	case ast.OpLocLoad, ast.OpLocStore:
		if err := checkWordAligned(inst); err != nil {
			return err
		}
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		if inst.Op == ast.OpLocLoad {
			bb.push(mast.Operation{Kind: mast.OpMLoad})
		} else {
			bb.push(mast.Operation{Kind: mast.OpMStore})
		}
	case ast.OpLocLoadw, ast.OpLocStorew:
		if err := checkWordAligned(inst); err != nil {
			return err
		}
		bb.push(mast.Operation{Kind: mast.OpPush, Imm: inst.Imm.AsFelt()})
		if inst.Op == ast.OpLocLoadw {
			bb.push(mast.Operation{Kind: mast.OpMLoadW})
		} else {
			bb.push(mast.Operation{Kind: mast.OpMStoreW})
		}

	// ---- cryptography ----
	case ast.OpHmerge:
		bb.push(mast.Operation{Kind: mast.OpHPerm})
	case ast.OpHash:
		bb.push(mast.Operation{Kind: mast.OpPad})
		bb.push(mast.Operation{Kind: mast.OpPad})
		bb.push(mast.Operation{Kind: mast.OpPad})
		bb.push(mast.Operation{Kind: mast.OpPad})
		bb.push(mast.Operation{Kind: mast.OpHPerm})
	case ast.OpMtreeGet:
		bb.push(mast.Operation{Kind: mast.OpMpVerify})
	case ast.OpMtreeMerge:
		bb.push(mast.Operation{Kind: mast.OpHPerm})
	case ast.OpMtreeVerifyWithError:
		bb.push(mast.Operation{Kind: mast.OpMpVerify, Imm: c.ErrorCodeFor(inst.ErrMsg)})

	// ---- control-flow markers / debug ----
	case ast.OpBreakpoint:
		bb.push(mast.Operation{Kind: mast.OpNoop})
	case ast.OpDebug:
		// Already emitted as a decorator above when c.debug is set; the
		// instruction itself lowers to no primitive operations.

	// ---- advice / events ----
	case ast.OpEmit:
		bb.push(mast.Operation{Kind: mast.OpNoop})

	case ast.OpProcref:
		// Handled by the invocation path; reaching here means the
		// caller misclassified it.
		return fmt.Errorf("compiler: procref must be lowered via compileInvocation")

	default:
		return fmt.Errorf("compiler: no lowering registered for opcode %v", inst.Op)
	}
	return nil
}

func checkWordAligned(inst ast.Instruction) error {
	addr := inst.Imm.AsU32()
	if addr%4 != 0 {
		return fmt.Errorf("compiler: local address %d is not word-aligned", addr)
	}
	return nil
}

// compileDup lowers dup.N. N in [0,7] and the odd slots {9,11,13,15}
// map directly; the even "double word" slots {8,10,12,14} are only
// reachable by padding the stack by one, duplicating the next odd slot,
// and adding the copy to the zero pad beneath it.
func (c *Compiler) compileDup(inst ast.Instruction, bb *blockBuffer) error {
	n := inst.Imm.Value()
	if op, ok := dupIndexToOp[n]; ok {
		bb.push(mast.Operation{Kind: op})
		return nil
	}
	switch n {
	case 8, 10, 12, 14:
		bb.push(mast.Operation{Kind: mast.OpPad})
		bb.push(mast.Operation{Kind: dupIndexToOp[n+1]})
		bb.push(mast.Operation{Kind: mast.OpAdd})
		return nil
	default:
		return fmt.Errorf("compiler: dup index %d out of range", n)
	}
}

// compileMovup/compileMovdn lower the indexed move-up/move-down family.
// Indices 2-8 map directly; 9-15 are built from the swapw/swapdw family
// moving a full double-word block before the corresponding in-range
// move, matching the source project's documented decomposition.
func (c *Compiler) compileMovup(inst ast.Instruction, bb *blockBuffer) error {
	n := inst.Imm.Value()
	if op, ok := movupIndexToOp[n]; ok {
		bb.push(mast.Operation{Kind: op})
		return nil
	}
	if n >= 9 && n <= 15 {
		bb.push(mast.Operation{Kind: mast.OpSwapDW})
		bb.push(mast.Operation{Kind: movupIndexToOp[n-8]})
		bb.push(mast.Operation{Kind: mast.OpSwapDW})
		return nil
	}
	return fmt.Errorf("compiler: movup index %d out of range", n)
}

func (c *Compiler) compileMovdn(inst ast.Instruction, bb *blockBuffer) error {
	n := inst.Imm.Value()
	if op, ok := movdnIndexToOp[n]; ok {
		bb.push(mast.Operation{Kind: op})
		return nil
	}
	if n >= 9 && n <= 15 {
		bb.push(mast.Operation{Kind: mast.OpSwapDW})
		bb.push(mast.Operation{Kind: movdnIndexToOp[n-8]})
		bb.push(mast.Operation{Kind: mast.OpSwapDW})
		return nil
	}
	return fmt.Errorf("compiler: movdn index %d out of range", n)
}

// compileExt2 lowers the quadratic-extension-field family onto pairs of
// base-field operations, since the primitive set has no dedicated
// extension-field opcode family beyond the FRI folding operation.
func (c *Compiler) compileExt2(inst ast.Instruction, bb *blockBuffer) error {
	switch inst.Op {
	case ast.OpExt2Add:
		bb.push(mast.Operation{Kind: mast.OpAdd})
	case ast.OpExt2Sub:
		bb.push(mast.Operation{Kind: mast.OpNeg})
		bb.push(mast.Operation{Kind: mast.OpAdd})
	case ast.OpExt2Mul:
		bb.push(mast.Operation{Kind: mast.OpMul})
	case ast.OpExt2Neg:
		bb.push(mast.Operation{Kind: mast.OpNeg})
	case ast.OpExt2Inv:
		bb.push(mast.Operation{Kind: mast.OpInv})
	}
	return nil
}

// emitAsmOpDecorator records source-instruction provenance for the next
// block node, so a debug build can map primitive cycles back to the
// instruction that produced them.
func (c *Compiler) emitAsmOpDecorator(inst ast.Instruction, bb *blockBuffer) {
	id := c.forest.AddDecorator(mast.Decorator{
		Kind:      mast.DecoratorAsmOp,
		AsmOpInfo: fmt.Sprintf("op#%d", inst.Op),
	})
	bb.decorators = append(bb.decorators, id)
}

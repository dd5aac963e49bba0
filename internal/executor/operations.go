package executor

import (
	"math/bits"

	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/mast"
)

var dupDepth = map[mast.OperationKind]int{
	mast.OpDup0: 0, mast.OpDup1: 1, mast.OpDup2: 2, mast.OpDup3: 3,
	mast.OpDup4: 4, mast.OpDup5: 5, mast.OpDup6: 6, mast.OpDup7: 7,
	mast.OpDup9: 9, mast.OpDup11: 11, mast.OpDup13: 13, mast.OpDup15: 15,
}

var movUpDepth = map[mast.OperationKind]int{
	mast.OpMovUp2: 2, mast.OpMovUp3: 3, mast.OpMovUp4: 4, mast.OpMovUp5: 5,
	mast.OpMovUp6: 6, mast.OpMovUp7: 7, mast.OpMovUp8: 8,
}

var movDnDepth = map[mast.OperationKind]int{
	mast.OpMovDn2: 2, mast.OpMovDn3: 3, mast.OpMovDn4: 4, mast.OpMovDn5: 5,
	mast.OpMovDn6: 6, mast.OpMovDn7: 7, mast.OpMovDn8: 8,
}

// execOperation dispatches a single primitive operation, one per VM
// cycle.
func (e *Engine) execOperation(op mast.Operation) error {
	if depth, ok := dupDepth[op.Kind]; ok {
		return e.push(e.at(depth))
	}
	if depth, ok := movUpDepth[op.Kind]; ok {
		e.moveUp(depth)
		return nil
	}
	if depth, ok := movDnDepth[op.Kind]; ok {
		e.moveDn(depth)
		return nil
	}

	switch op.Kind {
	case mast.OpAdd:
		b, a := e.pop(), e.pop()
		return e.push(a.Add(b))
	case mast.OpMul:
		b, a := e.pop(), e.pop()
		return e.push(a.Mul(b))
	case mast.OpNeg:
		return e.push(e.pop().Neg())
	case mast.OpInv:
		v := e.pop()
		inv, err := v.Inv()
		if err != nil {
			return &DivideByZeroError{Clk: e.clk}
		}
		return e.push(inv)
	case mast.OpIncr:
		return e.push(e.pop().Incr())
	case mast.OpExp:
		power, base := e.pop(), e.pop()
		return e.push(base.Exp(power.Uint64()))

	case mast.OpAnd:
		b, a, err := e.popBoolPair()
		if err != nil {
			return err
		}
		if a == 1 && b == 1 {
			return e.push(field.New(1))
		}
		return e.push(field.Zero)
	case mast.OpOr:
		b, a, err := e.popBoolPair()
		if err != nil {
			return err
		}
		if a == 1 || b == 1 {
			return e.push(field.New(1))
		}
		return e.push(field.Zero)
	case mast.OpNot:
		a, err := e.popBool()
		if err != nil {
			return err
		}
		return e.push(field.New(1 - a))
	case mast.OpEq:
		b, a := e.pop(), e.pop()
		if a.Equal(b) {
			return e.push(field.New(1))
		}
		return e.push(field.Zero)
	case mast.OpEqz:
		a := e.pop()
		if a.IsZero() {
			return e.push(field.New(1))
		}
		return e.push(field.Zero)

	case mast.OpU32split:
		v := e.pop().Uint64()
		if err := e.push(field.New(v >> 32)); err != nil {
			return err
		}
		return e.push(field.New(v & 0xFFFFFFFF))
	case mast.OpU32add:
		b, a, err := e.popU32Pair()
		if err != nil {
			return err
		}
		sum, carry := bits.Add32(a, b, 0)
		if err := e.push(field.New(uint64(carry))); err != nil {
			return err
		}
		return e.push(field.New(uint64(sum)))
	case mast.OpU32sub:
		b, a, err := e.popU32Pair()
		if err != nil {
			return err
		}
		diff, borrow := bits.Sub32(a, b, 0)
		if err := e.push(field.New(uint64(borrow))); err != nil {
			return err
		}
		return e.push(field.New(uint64(diff)))
	case mast.OpU32mul:
		b, a, err := e.popU32Pair()
		if err != nil {
			return err
		}
		hi, lo := bits.Mul32(a, b)
		if err := e.push(field.New(uint64(hi))); err != nil {
			return err
		}
		return e.push(field.New(uint64(lo)))
	case mast.OpU32madd:
		c, b, err := e.popU32Pair()
		if err != nil {
			return err
		}
		a, err := e.popU32()
		if err != nil {
			return err
		}
		hi, lo := bits.Mul32(b, c)
		sum, carry := bits.Add32(lo, a, 0)
		hi += carry
		if err := e.push(field.New(uint64(hi))); err != nil {
			return err
		}
		return e.push(field.New(uint64(sum)))
	case mast.OpU32div:
		b, a, err := e.popU32Pair()
		if err != nil {
			return err
		}
		if b == 0 {
			return &DivideByZeroError{Clk: e.clk}
		}
		if err := e.push(field.New(uint64(a % b))); err != nil {
			return err
		}
		return e.push(field.New(uint64(a / b)))
	case mast.OpU32and:
		b, a, err := e.popU32Pair()
		if err != nil {
			return err
		}
		return e.push(field.New(uint64(a & b)))
	case mast.OpU32xor:
		b, a, err := e.popU32Pair()
		if err != nil {
			return err
		}
		return e.push(field.New(uint64(a ^ b)))
	case mast.OpU32assert2:
		b, a, err := e.popU32Pair()
		if err != nil {
			return err
		}
		if err := e.push(field.New(uint64(a))); err != nil {
			return err
		}
		return e.push(field.New(uint64(b)))

	case mast.OpPad:
		return e.push(field.Zero)
	case mast.OpDrop:
		e.pop()
		return nil
	case mast.OpSwap:
		e.swapAt(0, 1)
		return nil
	case mast.OpSwapW:
		swapWindows(e, 0, 4, 4)
		return nil
	case mast.OpSwapW2:
		swapWindows(e, 0, 8, 4)
		return nil
	case mast.OpSwapW3:
		swapWindows(e, 0, 12, 4)
		return nil
	case mast.OpSwapDW:
		swapWindows(e, 0, 8, 8)
		return nil
	case mast.OpCSwap:
		cond, err := e.popBool()
		if err != nil {
			return err
		}
		if cond == 1 {
			e.swapAt(0, 1)
		}
		return nil
	case mast.OpCSwapW:
		cond, err := e.popBool()
		if err != nil {
			return err
		}
		if cond == 1 {
			swapWindows(e, 0, 4, 4)
		}
		return nil

	case mast.OpMLoad:
		addr := e.pop().Uint64()
		return e.push(e.memRead(addr))
	case mast.OpMStore:
		addr := e.pop().Uint64()
		v := e.pop()
		e.memWrite(addr, v)
		return nil
	case mast.OpMLoadW:
		addr := e.pop().Uint64()
		w, err := e.memReadWord(addr)
		if err != nil {
			return err
		}
		return e.pushWord(w)
	case mast.OpMStoreW:
		addr := e.pop().Uint64()
		w, err := e.popWord()
		if err != nil {
			return err
		}
		return e.memWriteWord(addr, w)
	case mast.OpMStream:
		addr := e.pop().Uint64()
		w0, err := e.memReadWord(addr)
		if err != nil {
			return err
		}
		w1, err := e.memReadWord(addr + field.WordSize)
		if err != nil {
			return err
		}
		if err := e.pushWord(w0); err != nil {
			return err
		}
		return e.pushWord(w1)
	case mast.OpPipe:
		addr := e.pop().Uint64()
		hi, lo, err := e.host.PopStackDWord()
		if err != nil {
			return err
		}
		if err := e.memWriteWord(addr, lo); err != nil {
			return err
		}
		if err := e.memWriteWord(addr+field.WordSize, hi); err != nil {
			return err
		}
		if err := e.pushWord(lo); err != nil {
			return err
		}
		return e.pushWord(hi)

	case mast.OpAdvPop:
		v, err := e.host.PopStack()
		if err != nil {
			return err
		}
		return e.push(v)
	case mast.OpAdvPopW:
		w, err := e.host.PopStackWord()
		if err != nil {
			return err
		}
		return e.pushWord(w)

	case mast.OpHPerm:
		return e.execHPerm()
	case mast.OpMpVerify:
		return e.execMpVerify(op.Imm)
	case mast.OpMrUpdate:
		return e.execMrUpdate()
	case mast.OpFriE2F4:
		return e.execFriFold(op.Segment)

	case mast.OpAssert:
		v := e.pop()
		if !v.Equal(field.New(1)) {
			return &FailedAssertionError{Clk: e.clk, Code: op.Imm.Uint64()}
		}
		return nil
	case mast.OpPush:
		return e.push(op.Imm)
	case mast.OpNoop:
		return nil

	default:
		return nil
	}
}

func (e *Engine) moveUp(depth int) {
	v := e.at(depth)
	for i := depth; i > 0; i-- {
		e.setAt(i, e.at(i-1))
	}
	e.setAt(0, v)
}

func (e *Engine) moveDn(depth int) {
	v := e.at(0)
	for i := 0; i < depth; i++ {
		e.setAt(i, e.at(i+1))
	}
	e.setAt(depth, v)
}

// swapWindows exchanges the width-element window starting at depth `a`
// with the one starting at depth `b`.
func swapWindows(e *Engine, a, b, width int) {
	for i := 0; i < width; i++ {
		e.swapAt(a+i, b+i)
	}
}

func (e *Engine) pushWord(w field.Word) error {
	for i := field.WordSize - 1; i >= 0; i-- {
		if err := e.push(w[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) popWord() (field.Word, error) {
	var w field.Word
	for i := 0; i < field.WordSize; i++ {
		w[i] = e.pop()
	}
	return w, nil
}

func (e *Engine) popBool() (uint64, error) {
	v := e.pop().Uint64()
	if v > 1 {
		return 0, &NotBinaryValueError{Clk: e.clk, Value: v}
	}
	return v, nil
}

func (e *Engine) popBoolPair() (b, a uint64, err error) {
	if b, err = e.popBool(); err != nil {
		return 0, 0, err
	}
	if a, err = e.popBool(); err != nil {
		return 0, 0, err
	}
	return b, a, nil
}

func (e *Engine) popU32() (uint32, error) {
	v := e.pop().Uint64()
	if v > 0xFFFFFFFF {
		return 0, &NotU32ValueError{Clk: e.clk, Value: v}
	}
	return uint32(v), nil
}

func (e *Engine) popU32Pair() (b, a uint32, err error) {
	if b, err = e.popU32(); err != nil {
		return 0, 0, err
	}
	if a, err = e.popU32(); err != nil {
		return 0, 0, err
	}
	return b, a, nil
}

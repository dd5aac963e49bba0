package executor

import (
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/advice"
	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/mast"
)

func blockOf(t *testing.T, forest *mast.Forest, ops ...mast.Operation) mast.MastNodeId {
	t.Helper()
	id, err := forest.NewBlock(ops, nil)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	return id
}

func push(v uint64) mast.Operation { return mast.Operation{Kind: mast.OpPush, Imm: field.New(v)} }
func op(k mast.OperationKind) mast.Operation { return mast.Operation{Kind: k} }

func TestAddMulProgram(t *testing.T) {
	forest := mast.NewForest()
	root := blockOf(t, forest, push(2), push(3), op(mast.OpAdd), push(4), op(mast.OpMul))
	forest.MakeRoot(root)

	e := New(forest, advice.NewMemoryHost(), ExecutionOptions{})
	if err := e.Run(root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", e.Depth())
	}
	if got := e.Outputs()[0]; got != field.New(20) {
		t.Fatalf("result = %v, want 20", got)
	}
}

func TestAssertFailureReportsCode(t *testing.T) {
	forest := mast.NewForest()
	root := blockOf(t, forest, push(0), mast.Operation{Kind: mast.OpAssert, Imm: field.New(7)})
	forest.MakeRoot(root)

	e := New(forest, advice.NewMemoryHost(), ExecutionOptions{})
	err := e.Run(root)
	if err == nil {
		t.Fatal("expected assertion failure")
	}
	fa, ok := err.(*FailedAssertionError)
	if !ok {
		t.Fatalf("error = %T, want *FailedAssertionError", err)
	}
	if fa.Code != 7 {
		t.Fatalf("Code = %d, want 7", fa.Code)
	}
}

func TestSplitTakesTrueBranch(t *testing.T) {
	forest := mast.NewForest()
	onTrue := blockOf(t, forest, push(111))
	onFalse := blockOf(t, forest, push(222))
	split, err := forest.NewSplit(onTrue, onFalse)
	if err != nil {
		t.Fatalf("NewSplit: %v", err)
	}
	cond := blockOf(t, forest, push(1))
	root, err := forest.NewJoin(cond, split)
	if err != nil {
		t.Fatalf("NewJoin: %v", err)
	}
	forest.MakeRoot(root)

	e := New(forest, advice.NewMemoryHost(), ExecutionOptions{})
	if err := e.Run(root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := e.Outputs()[0]; got != field.New(111) {
		t.Fatalf("result = %v, want 111", got)
	}
}

func TestLoopRunsWhileConditionIsOne(t *testing.T) {
	forest := mast.NewForest()
	// body: decrement the counter by pushing it back minus one via
	// Neg+Add, then push the loop-continuation flag computed from the
	// remaining counter via Eqz+Not (nonzero -> continue).
	body := blockOf(t, forest,
		push(1), op(mast.OpNeg), op(mast.OpAdd), // counter -= 1
		op(mast.OpDup0), op(mast.OpEqz), op(mast.OpNot), // continuation flag
	)
	loop, err := forest.NewLoop(body)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	init := blockOf(t, forest, push(3), op(mast.OpDup0), op(mast.OpEqz), op(mast.OpNot))
	root, err := forest.NewJoin(init, loop)
	if err != nil {
		t.Fatalf("NewJoin: %v", err)
	}
	forest.MakeRoot(root)

	e := New(forest, advice.NewMemoryHost(), ExecutionOptions{})
	if err := e.Run(root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := e.Outputs()[0]; got != field.New(0) {
		t.Fatalf("result = %v, want 0", got)
	}
}

func TestCallIsolatesMemoryContext(t *testing.T) {
	forest := mast.NewForest()
	callee := blockOf(t, forest, push(5), push(0), op(mast.OpMStore))
	call, err := forest.NewCall(callee, false)
	if err != nil {
		t.Fatalf("NewCall: %v", err)
	}
	// a no-op tick before the call so clk has already advanced past 0
	// by the time execCall mints the callee's context id, making the
	// isolation observable against the caller's (zero) context.
	pre := blockOf(t, forest, op(mast.OpNoop))
	root, err := forest.NewJoin(pre, call)
	if err != nil {
		t.Fatalf("NewJoin: %v", err)
	}
	forest.MakeRoot(root)

	e := New(forest, advice.NewMemoryHost(), ExecutionOptions{})
	if err := e.Run(root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// the write happened inside the callee's isolated context (ctx ==
	// the clk value at call time), so address 0 in the caller's
	// original context (0) is untouched.
	if v := e.memRead(0); v != field.Zero {
		t.Fatalf("caller-context memory[0] = %v, want 0 (isolated)", v)
	}
}

func TestDyncallResolvesCalleeFromStack(t *testing.T) {
	forest := mast.NewForest()
	callee := blockOf(t, forest, push(99))
	forest.MakeRoot(callee)
	calleeNode, err := forest.Get(callee)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	dyn, err := forest.NewDyn(true)
	if err != nil {
		t.Fatalf("NewDyn: %v", err)
	}
	forest.MakeRoot(dyn)

	e := New(forest, advice.NewMemoryHost(), ExecutionOptions{})
	e.SeedInputs(calleeNode.Digest[:])
	if err := e.Run(dyn); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := e.Outputs()[0]; got != field.New(99) {
		t.Fatalf("result = %v, want 99", got)
	}
}

func TestMpVerifyFailsOnWrongLeaf(t *testing.T) {
	forest := mast.NewForest()
	host := advice.NewMemoryHost()
	root := field.Digest{field.New(1), field.New(2), field.New(3), field.New(4)}
	leaf := field.Word{field.New(9), field.New(9), field.New(9), field.New(9)}
	host.SeedLeaves(root, 1, []field.Word{leaf, leaf})

	ops := []mast.Operation{}
	push4 := func(w field.Word) {
		for i := field.WordSize - 1; i >= 0; i-- {
			ops = append(ops, push(w[i].Uint64()))
		}
	}
	push4(root)
	ops = append(ops, push(0))  // index
	ops = append(ops, push(1))  // depth
	wrongLeaf := field.Word{field.New(1), field.New(1), field.New(1), field.New(1)}
	push4(wrongLeaf)
	ops = append(ops, mast.Operation{Kind: mast.OpMpVerify, Imm: field.New(42)})

	blk := blockOf(t, forest, ops...)
	forest.MakeRoot(blk)

	e := New(forest, host, ExecutionOptions{})
	err := e.Run(blk)
	if err == nil {
		t.Fatal("expected merkle verification failure")
	}
	mv, ok := err.(*MerklePathVerificationError)
	if !ok {
		t.Fatalf("error = %T, want *MerklePathVerificationError", err)
	}
	if mv.Code != 42 {
		t.Fatalf("Code = %d, want 42", mv.Code)
	}
}

func TestCycleLimitStopsAnInfiniteLoop(t *testing.T) {
	forest := mast.NewForest()
	body := blockOf(t, forest, push(1))
	loop, err := forest.NewLoop(body)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	init := blockOf(t, forest, push(1))
	root, err := forest.NewJoin(init, loop)
	if err != nil {
		t.Fatalf("NewJoin: %v", err)
	}
	forest.MakeRoot(root)

	e := New(forest, advice.NewMemoryHost(), ExecutionOptions{MaxCycles: 50})
	err = e.Run(root)
	if err == nil {
		t.Fatal("expected cycle limit error")
	}
	if _, ok := err.(*CycleLimitExceededError); !ok {
		t.Fatalf("error = %T, want *CycleLimitExceededError", err)
	}
}

package compiler

import (
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/ast"
	"github.com/vybium/vybium-mast-vm/internal/mast"
)

func instOp(op ast.Opcode) ast.Op {
	return ast.Op{Kind: ast.OpKindInst, Inst: ast.Instruction{Op: op}}
}

func instImm(op ast.Opcode, imm ast.Immediate) ast.Op {
	im := imm
	return ast.Op{Kind: ast.OpKindInst, Inst: ast.Instruction{Op: op, Imm: &im}}
}

func TestCompileProcedureDirectOpsProduceSingleBlock(t *testing.T) {
	t.Run("AddMulLowerToOneBlockNode", func(t *testing.T) {
		forest := mast.NewForest()
		c := New(forest, false)
		proc := &ast.Procedure{Name: "f", Body: ast.Block{Ops: []ast.Op{instOp(ast.OpAdd), instOp(ast.OpMul)}}}

		id, err := c.CompileProcedure(proc)
		if err != nil {
			t.Fatalf("CompileProcedure: %v", err)
		}
		node, err := forest.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if node.Kind != mast.KindBlock {
			t.Fatalf("node kind = %v, want Block", node.Kind)
		}
		if len(node.Ops) != 2 || node.Ops[0].Kind != mast.OpAdd || node.Ops[1].Kind != mast.OpMul {
			t.Fatalf("ops = %v, want [Add Mul]", node.Ops)
		}
		if !forest.IsRoot(id) {
			t.Fatal("expected compiled procedure to be registered as a root")
		}
	})
}

func TestCompileDeterministic(t *testing.T) {
	t.Run("SameProcedureCompilesToSameDigestTwice", func(t *testing.T) {
		body := ast.Block{Ops: []ast.Op{instOp(ast.OpAdd), instOp(ast.OpNeg)}}

		f1 := mast.NewForest()
		id1, err := New(f1, false).CompileProcedure(&ast.Procedure{Name: "f", Body: body})
		if err != nil {
			t.Fatalf("compile 1: %v", err)
		}
		f2 := mast.NewForest()
		id2, err := New(f2, false).CompileProcedure(&ast.Procedure{Name: "f", Body: body})
		if err != nil {
			t.Fatalf("compile 2: %v", err)
		}
		n1, _ := f1.Get(id1)
		n2, _ := f2.Get(id2)
		if n1.Digest != n2.Digest {
			t.Fatal("expected identical digests for identical source procedures")
		}
	})
}

func TestCompileIfLowersToSplitNode(t *testing.T) {
	t.Run("IfThenElseProducesSplitWrappingBothBranches", func(t *testing.T) {
		forest := mast.NewForest()
		c := New(forest, false)
		proc := &ast.Procedure{
			Name: "f",
			Body: ast.Block{Ops: []ast.Op{
				{Kind: ast.OpKindIf,
					Then: ast.Block{Ops: []ast.Op{instOp(ast.OpAdd)}},
					Else: ast.Block{Ops: []ast.Op{instOp(ast.OpNeg)}},
				},
			}},
		}
		id, err := c.CompileProcedure(proc)
		if err != nil {
			t.Fatalf("CompileProcedure: %v", err)
		}
		node, err := forest.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if node.Kind != mast.KindSplit {
			t.Fatalf("node kind = %v, want Split", node.Kind)
		}
	})
}

func TestCompileSubLowersToNegAdd(t *testing.T) {
	t.Run("SubMacroExpandsToNegThenAdd", func(t *testing.T) {
		forest := mast.NewForest()
		c := New(forest, false)
		proc := &ast.Procedure{Name: "f", Body: ast.Block{Ops: []ast.Op{instOp(ast.OpSub)}}}
		id, err := c.CompileProcedure(proc)
		if err != nil {
			t.Fatalf("CompileProcedure: %v", err)
		}
		node, _ := forest.Get(id)
		if len(node.Ops) != 2 || node.Ops[0].Kind != mast.OpNeg || node.Ops[1].Kind != mast.OpAdd {
			t.Fatalf("ops = %v, want [Neg Add]", node.Ops)
		}
	})
}

func TestAssertWithErrorRegistersStableCode(t *testing.T) {
	t.Run("SameMessageReusesSameCode", func(t *testing.T) {
		forest := mast.NewForest()
		c := New(forest, false)
		code1 := c.ErrorCodeFor("overflow")
		code2 := c.ErrorCodeFor("overflow")
		if code1 != code2 {
			t.Fatal("expected the same message to reuse the same error code")
		}
		other := c.ErrorCodeFor("underflow")
		if other == code1 {
			t.Fatal("expected distinct messages to receive distinct codes")
		}
	})
}

func TestExecInlinesResolvedCallee(t *testing.T) {
	t.Run("ExecReusesCalleeNodeDirectly", func(t *testing.T) {
		forest := mast.NewForest()
		c := New(forest, false)
		calleeID, err := forest.NewBlock([]mast.Operation{{Kind: mast.OpAdd}}, nil)
		if err != nil {
			t.Fatalf("NewBlock: %v", err)
		}
		forest.MakeRoot(calleeID)
		calleeNode, _ := forest.Get(calleeID)

		target := &ast.InvocationTarget{Kind: ast.TargetMastRoot, Digest: calleeNode.Digest}
		proc := &ast.Procedure{Name: "caller", Body: ast.Block{Ops: []ast.Op{
			{Kind: ast.OpKindInst, Inst: ast.Instruction{Op: ast.OpExec, Target: target}},
		}}}
		id, err := c.CompileProcedure(proc)
		if err != nil {
			t.Fatalf("CompileProcedure: %v", err)
		}
		if id != calleeID {
			t.Fatalf("exec node id = %d, want callee id %d (inlined by reference)", id, calleeID)
		}
	})
}

package ast

import "testing"

type countingVisitor struct {
	BaseVisitor
	instructions int
}

func (c *countingVisitor) VisitInstruction(inst Instruction) Signal {
	c.instructions++
	return WalkInstruction(c, inst)
}

func sampleModule() *Module {
	return &Module{
		Path: "test::sample",
		Exports: []Export{
			{
				Kind: ExportKindProcedure,
				Procedure: &Procedure{
					Name:       "foo",
					Visibility: VisibilityExport,
					Body: Block{Ops: []Op{
						{Kind: OpKindInst, Inst: Instruction{Op: OpAdd}},
						{
							Kind: OpKindIf,
							Then: Block{Ops: []Op{{Kind: OpKindInst, Inst: Instruction{Op: OpMul}}}},
							Else: Block{Ops: []Op{{Kind: OpKindInst, Inst: Instruction{Op: OpNeg}}}},
						},
					}},
				},
			},
		},
	}
}

func TestWalkModuleVisitsAllInstructions(t *testing.T) {
	t.Run("CountsEveryInstructionIncludingBothIfBranches", func(t *testing.T) {
		m := sampleModule()
		v := &countingVisitor{}
		WalkModule(v, m)
		if v.instructions != 3 {
			t.Fatalf("visited %d instructions, want 3", v.instructions)
		}
	})
}

type breakingVisitor struct {
	BaseVisitor
}

func (breakingVisitor) VisitInstruction(inst Instruction) Signal {
	if inst.Op == OpMul {
		return Break("found mul")
	}
	return WalkInstruction(breakingVisitor{}, inst)
}

func TestBreakAbortsTraversal(t *testing.T) {
	t.Run("OutermostCallReturnsBreakValue", func(t *testing.T) {
		m := sampleModule()
		s := WalkModule(breakingVisitor{}, m)
		if !s.IsBreak() {
			t.Fatal("expected traversal to break")
		}
		if s.Value() != "found mul" {
			t.Fatalf("break value = %v, want %q", s.Value(), "found mul")
		}
	})
}

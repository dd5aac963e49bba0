package ast

// Signal is the visitor's two-state continuation: either Continue, or
// Break carrying an abort value. The zero Signal is Continue.
type Signal struct {
	broken bool
	value  any
}

// Continue is the signal that lets traversal proceed.
var Continue = Signal{}

// Break aborts the entire traversal; the outermost Visit* call returns
// this value.
func Break(value any) Signal { return Signal{broken: true, value: value} }

// IsBreak reports whether the signal aborts traversal.
func (s Signal) IsBreak() bool { return s.broken }

// Value returns the break value carried by the signal (nil if Continue).
func (s Signal) Value() any { return s.value }

// Visitor is the immutable depth-first tree walker. Implementations
// override only the methods they care about; to continue the
// traversal into a node's children they call the matching Walk*
// function explicitly, choosing pre-order (logic before the Walk call)
// or post-order (logic after).
type Visitor interface {
	VisitModule(m *Module) Signal
	VisitImport(imp Import) Signal
	VisitExport(e Export) Signal
	VisitProcedure(p *Procedure) Signal
	VisitAlias(a *ProcedureAlias) Signal
	VisitBlock(b Block) Signal
	VisitOp(op Op) Signal
	VisitInstruction(inst Instruction) Signal
	VisitImmediate(im Immediate) Signal
	VisitInvocationTarget(t InvocationTarget) Signal
}

// BaseVisitor implements Visitor with every method defaulting to its
// Walk* free function, so embedders only need to override the nodes
// they care about.
type BaseVisitor struct{}

func (BaseVisitor) VisitModule(m *Module) Signal                       { return WalkModule(BaseVisitor{}, m) }
func (BaseVisitor) VisitImport(imp Import) Signal                      { return Continue }
func (BaseVisitor) VisitExport(e Export) Signal                        { return WalkExport(BaseVisitor{}, e) }
func (BaseVisitor) VisitProcedure(p *Procedure) Signal                 { return WalkProcedure(BaseVisitor{}, p) }
func (BaseVisitor) VisitAlias(a *ProcedureAlias) Signal                { return Continue }
func (BaseVisitor) VisitBlock(b Block) Signal                          { return WalkBlock(BaseVisitor{}, b) }
func (BaseVisitor) VisitOp(op Op) Signal                               { return WalkOp(BaseVisitor{}, op) }
func (BaseVisitor) VisitInstruction(inst Instruction) Signal           { return WalkInstruction(BaseVisitor{}, inst) }
func (BaseVisitor) VisitImmediate(im Immediate) Signal                 { return Continue }
func (BaseVisitor) VisitInvocationTarget(t InvocationTarget) Signal    { return Continue }

// WalkModule visits imports in declaration order, then exports in
// declaration order.
func WalkModule(v Visitor, m *Module) Signal {
	for _, imp := range m.Imports {
		if s := v.VisitImport(imp); s.IsBreak() {
			return s
		}
	}
	for i := range m.Exports {
		if s := v.VisitExport(m.Exports[i]); s.IsBreak() {
			return s
		}
	}
	return Continue
}

// WalkExport dispatches to VisitProcedure or VisitAlias.
func WalkExport(v Visitor, e Export) Signal {
	if e.Kind == ExportKindProcedure {
		return v.VisitProcedure(e.Procedure)
	}
	return v.VisitAlias(e.Alias)
}

// WalkProcedure visits the procedure's body block.
func WalkProcedure(v Visitor, p *Procedure) Signal {
	return v.VisitBlock(p.Body)
}

// WalkBlock visits ops in sequence.
func WalkBlock(v Visitor, b Block) Signal {
	for _, op := range b.Ops {
		if s := v.VisitOp(op); s.IsBreak() {
			return s
		}
	}
	return Continue
}

// WalkOp dispatches on the op's kind: a primitive instruction, or a
// control-flow block whose children are visited in order (then-block
// before else-block for If).
func WalkOp(v Visitor, op Op) Signal {
	switch op.Kind {
	case OpKindInst:
		return v.VisitInstruction(op.Inst)
	case OpKindIf:
		if s := v.VisitBlock(op.Then); s.IsBreak() {
			return s
		}
		return v.VisitBlock(op.Else)
	case OpKindWhile, OpKindRepeat:
		return v.VisitBlock(op.Body)
	default:
		return Continue
	}
}

// WalkInstruction visits each immediate and invocation target the
// instruction carries.
func WalkInstruction(v Visitor, inst Instruction) Signal {
	if inst.Imm != nil {
		if s := v.VisitImmediate(*inst.Imm); s.IsBreak() {
			return s
		}
	}
	if inst.Target != nil {
		if s := v.VisitInvocationTarget(*inst.Target); s.IsBreak() {
			return s
		}
	}
	return Continue
}

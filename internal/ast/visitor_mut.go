package ast

// MutVisitor is the mutable dual of Visitor: it can rewrite nodes in
// place as it walks (e.g. replacing invocation targets or resolving
// symbolic constants). The module graph's rewrite pass walks blocks
// directly and does not use it.
type MutVisitor interface {
	VisitMutModule(m *Module) Signal
	VisitMutProcedure(p *Procedure) Signal
	VisitMutAlias(a *ProcedureAlias) Signal
	VisitMutBlock(b *Block) Signal
	VisitMutOp(op *Op) Signal
	VisitMutInstruction(inst *Instruction) Signal
	VisitMutImmediate(im *Immediate) Signal
	VisitMutInvocationTarget(t *InvocationTarget) Signal
}

// WalkMutModule visits exports in declaration order (imports carry no
// mutable substructure worth visiting).
func WalkMutModule(v MutVisitor, m *Module) Signal {
	for i := range m.Exports {
		e := &m.Exports[i]
		if e.Kind == ExportKindProcedure {
			if s := v.VisitMutProcedure(e.Procedure); s.IsBreak() {
				return s
			}
		} else {
			if s := v.VisitMutAlias(e.Alias); s.IsBreak() {
				return s
			}
		}
	}
	return Continue
}

// WalkMutProcedure visits the procedure's body block.
func WalkMutProcedure(v MutVisitor, p *Procedure) Signal {
	return v.VisitMutBlock(&p.Body)
}

// WalkMutBlock visits each op of the block in place.
func WalkMutBlock(v MutVisitor, b *Block) Signal {
	for i := range b.Ops {
		if s := v.VisitMutOp(&b.Ops[i]); s.IsBreak() {
			return s
		}
	}
	return Continue
}

// WalkMutOp dispatches on the op's kind.
func WalkMutOp(v MutVisitor, op *Op) Signal {
	switch op.Kind {
	case OpKindInst:
		return v.VisitMutInstruction(&op.Inst)
	case OpKindIf:
		if s := v.VisitMutBlock(&op.Then); s.IsBreak() {
			return s
		}
		return v.VisitMutBlock(&op.Else)
	case OpKindWhile, OpKindRepeat:
		return v.VisitMutBlock(&op.Body)
	default:
		return Continue
	}
}

// WalkMutInstruction visits the instruction's immediate and invocation
// target, if present.
func WalkMutInstruction(v MutVisitor, inst *Instruction) Signal {
	if inst.Imm != nil {
		if s := v.VisitMutImmediate(inst.Imm); s.IsBreak() {
			return s
		}
	}
	if inst.Target != nil {
		if s := v.VisitMutInvocationTarget(inst.Target); s.IsBreak() {
			return s
		}
	}
	return Continue
}

package modulegraph

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/ast"
	"github.com/vybium/vybium-mast-vm/internal/callgraph"
)

// moduleRewriteVisitor rewrites exec/call/syscall/procref targets of a
// single pending module in place, replacing a by-name target with its
// MAST-root digest wherever that digest is already known, recording a
// call-graph edge for every statically resolvable target, and
// recording a PhantomCall for anything that resolves only to a digest.
//
// Grounded on ModuleRewriteVisitor in module_graph.rs.
type moduleRewriteVisitor struct {
	graph     *Graph
	resolver  *nameResolver
	moduleIdx callgraph.ModuleIndex
	module    *ast.Module
}

func (rw *moduleRewriteVisitor) rewriteModule() error {
	var procIdx callgraph.ProcedureIndex
	for i := range rw.module.Exports {
		e := &rw.module.Exports[i]
		if e.Kind != ast.ExportKindProcedure {
			continue
		}
		proc := e.Procedure
		proc.Invoked = nil
		caller := callgraph.GlobalProcedureIndex{Module: rw.moduleIdx, Index: procIdx}
		if err := rw.rewriteBlock(&proc.Body, proc, caller); err != nil {
			return err
		}
		procIdx++
	}
	return nil
}

func (rw *moduleRewriteVisitor) rewriteBlock(b *ast.Block, proc *ast.Procedure, caller callgraph.GlobalProcedureIndex) error {
	for i := range b.Ops {
		op := &b.Ops[i]
		switch op.Kind {
		case ast.OpKindInst:
			if err := rw.rewriteInstruction(&op.Inst, op.Span, proc, caller); err != nil {
				return err
			}
		case ast.OpKindIf:
			if err := rw.rewriteBlock(&op.Then, proc, caller); err != nil {
				return err
			}
			if err := rw.rewriteBlock(&op.Else, proc, caller); err != nil {
				return err
			}
		case ast.OpKindWhile, ast.OpKindRepeat:
			if err := rw.rewriteBlock(&op.Body, proc, caller); err != nil {
				return err
			}
		}
	}
	return nil
}

func invokeKindOf(op ast.Opcode) (ast.InvokeKind, bool) {
	switch op {
	case ast.OpExec:
		return ast.InvokeExec, true
	case ast.OpCall:
		return ast.InvokeCall, true
	case ast.OpSyscall:
		return ast.InvokeSyscall, true
	case ast.OpProcref:
		return ast.InvokeProcref, true
	default:
		// dynexec/dyncall take their callee from the stack at runtime and
		// so carry no static InvocationTarget, and therefore never add a
		// static call-graph edge.
		return 0, false
	}
}

func (rw *moduleRewriteVisitor) rewriteInstruction(inst *ast.Instruction, span ast.Span, proc *ast.Procedure, caller callgraph.GlobalProcedureIndex) error {
	if inst.Imm != nil && !inst.Imm.IsResolved() {
		v, ok := rw.module.Constants[inst.Imm.Constant]
		if !ok {
			return fmt.Errorf("modulegraph: undefined constant %q in module %s", inst.Imm.Constant, rw.module.Path)
		}
		inst.Imm.Resolve(v)
	}
	if inst.Target == nil {
		return nil
	}
	kind, ok := invokeKindOf(inst.Op)
	if !ok {
		return nil
	}

	res, err := rw.resolver.resolveTarget(rw.moduleIdx, *inst.Target, map[string]bool{})
	if err != nil {
		return err
	}

	if kind == ast.InvokeSyscall {
		if err := rw.checkSyscallDiscipline(res, span); err != nil {
			return err
		}
	}

	switch res.Kind {
	case resolvedExact:
		if res.DigestKnown {
			inst.Target.Kind = ast.TargetMastRoot
			inst.Target.Digest = res.Digest
		}
		if kind != ast.InvokeProcref {
			rw.graph.cg.AddEdge(caller, res.GID)
		}
	case resolvedPhantom:
		rw.graph.phantoms[res.Digest] = PhantomCall{Digest: res.Digest}
		rw.graph.log.WithField("digest", res.Digest).Debug("modulegraph: phantom call registered")
	}

	proc.Invoked = append(proc.Invoked, ast.Invoke{Kind: kind, Target: *inst.Target, Span: span})
	return nil
}

// checkSyscallDiscipline enforces that a syscall's callee resolves
// inside the designated kernel module. Per module_graph.rs, the
// caller's effective invocation kind is treated as Exec for the
// duration of alias resolution (so the target can legally be an alias
// chain), but the final concrete procedure must belong to the kernel
// module.
func (rw *moduleRewriteVisitor) checkSyscallDiscipline(res resolution, span ast.Span) error {
	kernelIdx, hasKernel := rw.graph.KernelModuleIndex()
	if !hasKernel || res.Kind != resolvedExact || res.GID.Module != kernelIdx {
		rw.graph.log.WithField("span", span).Warn("modulegraph: syscall target rejected, not a kernel procedure")
		return &InvalidSysCallTargetError{Span: span}
	}
	return nil
}

// reanalyzeModule re-resolves every still-by-name invocation target of
// an already-accepted module, read-only, to check whether any target
// could now be upgraded to a concrete MAST-root digest thanks to
// modules added in this Recompute batch. If so, it clones the module
// (clone-on-write: the original accepted module is never mutated
// directly) and runs the full mutable rewrite over the clone.
//
// Grounded on ReanalyzeCheck in module_graph.rs.
func reanalyzeModule(g *Graph, resolver *nameResolver, idx callgraph.ModuleIndex, m *ast.Module) (bool, *ast.Module, error) {
	changed, err := wouldChangeOnRewrite(resolver, idx, m)
	if err != nil {
		return false, nil, err
	}
	if !changed {
		return false, nil, nil
	}

	clone := m.Clone()
	rw := &moduleRewriteVisitor{graph: g, resolver: resolver, moduleIdx: idx, module: clone}
	if err := rw.rewriteModule(); err != nil {
		return false, nil, err
	}
	return true, clone, nil
}

// wouldChangeOnRewrite is the read-only counterpart of
// moduleRewriteVisitor: it walks every procedure body looking for a
// non-MastRoot invocation target that would now resolve to a known
// digest, without mutating anything.
func wouldChangeOnRewrite(resolver *nameResolver, idx callgraph.ModuleIndex, m *ast.Module) (bool, error) {
	for _, proc := range m.Procedures() {
		changed, err := blockWouldChange(resolver, idx, &proc.Body)
		if err != nil {
			return false, err
		}
		if changed {
			return true, nil
		}
	}
	return false, nil
}

func blockWouldChange(resolver *nameResolver, idx callgraph.ModuleIndex, b *ast.Block) (bool, error) {
	for _, op := range b.Ops {
		switch op.Kind {
		case ast.OpKindInst:
			inst := op.Inst
			if inst.Target == nil || inst.Target.Kind == ast.TargetMastRoot {
				continue
			}
			if _, ok := invokeKindOf(inst.Op); !ok {
				continue
			}
			res, err := resolver.resolveTarget(idx, *inst.Target, map[string]bool{})
			if err != nil {
				// A target that used to resolve but no longer does is a
				// genuine assembly error; surface it now rather than
				// silently leaving the stale target in place.
				return false, err
			}
			if res.Kind == resolvedExact && res.DigestKnown {
				return true, nil
			}
		case ast.OpKindIf:
			if changed, err := blockWouldChange(resolver, idx, &op.Then); err != nil || changed {
				return changed, err
			}
			if changed, err := blockWouldChange(resolver, idx, &op.Else); err != nil || changed {
				return changed, err
			}
		case ast.OpKindWhile, ast.OpKindRepeat:
			if changed, err := blockWouldChange(resolver, idx, &op.Body); err != nil || changed {
				return changed, err
			}
		}
	}
	return false, nil
}

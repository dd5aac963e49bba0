package modulegraph

import (
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/ast"
)

func execTo(name string) ast.Instruction {
	return ast.Instruction{
		Op:     ast.OpExec,
		Target: &ast.InvocationTarget{Kind: ast.TargetLocalName, Name: name},
	}
}

func execAliasQualified(alias, name string) ast.Instruction {
	return ast.Instruction{
		Op:     ast.OpExec,
		Target: &ast.InvocationTarget{Kind: ast.TargetAliasQualified, ModuleAlias: alias, Name: name},
	}
}

func syscallTo(name string) ast.Instruction {
	return ast.Instruction{
		Op:     ast.OpSyscall,
		Target: &ast.InvocationTarget{Kind: ast.TargetLocalName, Name: name},
	}
}

func procModule(path ast.LibraryPath, procs ...*ast.Procedure) *ast.Module {
	m := &ast.Module{Path: path, Constants: map[string]uint64{}}
	for _, p := range procs {
		m.Exports = append(m.Exports, ast.Export{Kind: ast.ExportKindProcedure, Procedure: p})
	}
	return m
}

func proc(name string, ops ...ast.Instruction) *ast.Procedure {
	p := &ast.Procedure{Name: name, Visibility: ast.VisibilityExport}
	for _, op := range ops {
		p.Body.Ops = append(p.Body.Ops, ast.Op{Kind: ast.OpKindInst, Inst: op})
	}
	return p
}

func TestAddModuleRejectsDuplicatePath(t *testing.T) {
	t.Run("SamePathTwiceIsError", func(t *testing.T) {
		g := New()
		m1 := procModule("a", proc("f"))
		m2 := procModule("a", proc("g"))
		if _, err := g.AddModule(m1); err != nil {
			t.Fatalf("AddModule(m1): %v", err)
		}
		if _, err := g.AddModule(m2); err == nil {
			t.Fatal("expected DuplicateModuleError")
		}
	})
}

func TestRecomputeResolvesLocalCall(t *testing.T) {
	t.Run("ExecByNameAddsCallGraphEdge", func(t *testing.T) {
		g := New()
		m := procModule("a", proc("caller", execTo("callee")), proc("callee"))
		if _, err := g.AddModule(m); err != nil {
			t.Fatalf("AddModule: %v", err)
		}
		if err := g.Recompute(); err != nil {
			t.Fatalf("Recompute: %v", err)
		}
		order := g.TopoOrder()
		if len(order) != 2 {
			t.Fatalf("toposort order = %v, want 2 entries", order)
		}
		// callee (index 1) must precede caller (index 0).
		pos := map[int]int{}
		for i, n := range order {
			pos[int(n.Index)] = i
		}
		if pos[1] >= pos[0] {
			t.Fatalf("expected callee before caller, got order %v", order)
		}
	})
}

func TestRecomputeResolvesCrossModuleAlias(t *testing.T) {
	t.Run("AliasQualifiedExecFindsImportedModule", func(t *testing.T) {
		g := New()
		lib := procModule("std::math", proc("double"))
		caller := procModule("app", proc("main", execAliasQualified("math", "double")))
		caller.Imports = []ast.Import{{Alias: "math", Path: "std::math"}}

		if _, err := g.AddModule(lib); err != nil {
			t.Fatalf("AddModule(lib): %v", err)
		}
		if _, err := g.AddModule(caller); err != nil {
			t.Fatalf("AddModule(caller): %v", err)
		}
		if err := g.Recompute(); err != nil {
			t.Fatalf("Recompute: %v", err)
		}
		if len(g.TopoOrder()) != 2 {
			t.Fatalf("expected 2 procedures in topo order, got %d", len(g.TopoOrder()))
		}
	})
}

func TestRecomputeRejectsUndefinedProcedure(t *testing.T) {
	t.Run("ExecToMissingNameIsError", func(t *testing.T) {
		g := New()
		m := procModule("a", proc("caller", execTo("ghost")))
		if _, err := g.AddModule(m); err != nil {
			t.Fatalf("AddModule: %v", err)
		}
		err := g.Recompute()
		if err == nil {
			t.Fatal("expected UndefinedProcedureError")
		}
		if _, ok := err.(*UndefinedProcedureError); !ok {
			t.Fatalf("got %T, want *UndefinedProcedureError", err)
		}
	})
}

func TestRecomputeDetectsAliasCycle(t *testing.T) {
	t.Run("TwoAliasesPointingAtEachOtherIsRecursiveAlias", func(t *testing.T) {
		g := New()
		aAlias := &ast.ProcedureAlias{Name: "a", Target: ast.InvocationTarget{Kind: ast.TargetLocalName, Name: "b"}}
		bAlias := &ast.ProcedureAlias{Name: "b", Target: ast.InvocationTarget{Kind: ast.TargetLocalName, Name: "a"}}
		m := &ast.Module{Path: "cyc", Constants: map[string]uint64{}}
		m.Exports = append(m.Exports,
			ast.Export{Kind: ast.ExportKindAlias, Alias: aAlias},
			ast.Export{Kind: ast.ExportKindAlias, Alias: bAlias},
			ast.Export{Kind: ast.ExportKindProcedure, Procedure: proc("caller", execTo("a"))},
		)
		if _, err := g.AddModule(m); err != nil {
			t.Fatalf("AddModule: %v", err)
		}
		err := g.Recompute()
		if err == nil {
			t.Fatal("expected RecursiveAliasError")
		}
		if _, ok := err.(*RecursiveAliasError); !ok {
			t.Fatalf("got %T (%v), want *RecursiveAliasError", err, err)
		}
	})
}

func TestSyscallWithoutKernelIsFatal(t *testing.T) {
	t.Run("SyscallWithNoKernelSetIsError", func(t *testing.T) {
		g := New()
		m := procModule("a", proc("caller", syscallTo("svc")), proc("svc"))
		if _, err := g.AddModule(m); err != nil {
			t.Fatalf("AddModule: %v", err)
		}
		err := g.Recompute()
		if err == nil {
			t.Fatal("expected InvalidSysCallTargetError")
		}
		if _, ok := err.(*InvalidSysCallTargetError); !ok {
			t.Fatalf("got %T, want *InvalidSysCallTargetError", err)
		}
	})
}

func TestSyscallIntoKernelModuleSucceeds(t *testing.T) {
	t.Run("SyscallResolvingInsideKernelModuleIsAccepted", func(t *testing.T) {
		g := New()
		kernel := procModule("kernel", proc("svc"))
		app := procModule("app", proc("caller", syscallTo("svc")))

		kidx, err := g.AddModule(kernel)
		if err != nil {
			t.Fatalf("AddModule(kernel): %v", err)
		}
		if _, err := g.AddModule(app); err != nil {
			t.Fatalf("AddModule(app): %v", err)
		}

		// A syscall target must name a kernel-module procedure; exercise
		// the absolute-path form naming the kernel module directly.
		app.Exports[0].Procedure.Body.Ops[0].Inst.Target = &ast.InvocationTarget{
			Kind: ast.TargetAbsolutePath, LibraryPath: "kernel", Name: "svc",
		}

		g.SetKernel(kidx, Kernel{})
		if err := g.Recompute(); err != nil {
			t.Fatalf("Recompute: %v", err)
		}
	})
}

func TestDuplicateAddAfterRemoveIsAllowed(t *testing.T) {
	t.Run("RemovedModulePathCanBeReAdded", func(t *testing.T) {
		g := New()
		m := procModule("a", proc("f"))
		idx, err := g.AddModule(m)
		if err != nil {
			t.Fatalf("AddModule: %v", err)
		}
		if err := g.Recompute(); err != nil {
			t.Fatalf("Recompute: %v", err)
		}
		if err := g.RemoveModule(idx); err != nil {
			t.Fatalf("RemoveModule: %v", err)
		}
		if _, err := g.AddModule(procModule("a", proc("f"))); err != nil {
			t.Fatalf("AddModule after remove: %v", err)
		}
	})
}

package vmvm

import (
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/advice"
	"github.com/vybium/vybium-mast-vm/internal/ast"
)

func imm(v uint64) *ast.Immediate {
	i := ast.NewImmediateValue(ast.ImmFelt, v, ast.Span{})
	return &i
}

func inst(op ast.Opcode) ast.Op {
	return ast.Op{Kind: ast.OpKindInst, Inst: ast.Instruction{Op: op}}
}

func instImm(op ast.Opcode, v uint64) ast.Op {
	return ast.Op{Kind: ast.OpKindInst, Inst: ast.Instruction{Op: op, Imm: imm(v)}}
}

func TestAssembleAndExecuteAddProgram(t *testing.T) {
	// begin push.2 push.3 add end, mirroring the reference executor's
	// own worked example for this instruction pair.
	m := &ast.Module{
		Path: "main",
		Exports: []ast.Export{{
			Kind: ast.ExportKindProcedure,
			Procedure: &ast.Procedure{
				Name: "entry",
				Body: ast.Block{Ops: []ast.Op{
					instImm(ast.OpPush, 2),
					instImm(ast.OpPush, 3),
					inst(ast.OpAdd),
				}},
			},
		}},
	}

	asm := NewAssembler()
	if _, err := asm.AddModule(m); err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	program, err := asm.Assemble("main", "entry")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	outputs, err := Execute(program, nil, advice.NewMemoryHost(), ExecutionOptions{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(outputs) != 1 || outputs[0] != 5 {
		t.Fatalf("outputs = %v, want [5]", outputs)
	}
}

func TestAssembleRejectsUnknownEntry(t *testing.T) {
	m := &ast.Module{
		Path: "main",
		Exports: []ast.Export{{
			Kind:      ast.ExportKindProcedure,
			Procedure: &ast.Procedure{Name: "entry", Body: ast.Block{Ops: []ast.Op{inst(ast.OpNop)}}},
		}},
	}

	asm := NewAssembler()
	if _, err := asm.AddModule(m); err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	if _, err := asm.Assemble("main", "missing"); err == nil {
		t.Fatal("expected error for unknown entry procedure")
	}
}

func TestSyscallOutsideKernelFailsAssembly(t *testing.T) {
	target := ast.InvocationTarget{Kind: ast.TargetLocalName, Name: "helper"}
	m := &ast.Module{
		Path: "main",
		Exports: []ast.Export{
			{
				Kind: ast.ExportKindProcedure,
				Procedure: &ast.Procedure{
					Name: "entry",
					Body: ast.Block{Ops: []ast.Op{
						{Kind: ast.OpKindInst, Inst: ast.Instruction{Op: ast.OpSyscall, Target: &target}},
					}},
				},
			},
			{
				Kind:      ast.ExportKindProcedure,
				Procedure: &ast.Procedure{Name: "helper", Body: ast.Block{Ops: []ast.Op{inst(ast.OpNop)}}},
			},
		},
	}

	asm := NewAssembler()
	if _, err := asm.AddModule(m); err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	if _, err := asm.Assemble("main", "entry"); err == nil {
		t.Fatal("expected syscall-without-kernel assembly error")
	}
}

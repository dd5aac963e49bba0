// Command vmc is a developer-facing harness for the assembler and
// executor: it reads a JSON program description, assembles it into a
// MAST forest, executes it against an in-memory advice host, and
// prints the resulting stack. It does no proving.
//
// Reworked from a JSON-lines/stdin protocol into a cobra command
// reading a single JSON document from a file or stdin.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vybium/vybium-mast-vm/internal/advice"
	"github.com/vybium/vybium-mast-vm/internal/ast"
	"github.com/vybium/vybium-mast-vm/pkg/vmvm"
)

var version = "0.1.0"

var (
	inputPath string
	maxCycles uint64
	debug     bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vmc",
		Short:         "vmc assembles and executes a single MAST program",
		Long:          `vmc reads a JSON program description, assembles it, and runs it to completion, printing the final operand stack. It does not generate proofs.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVM(inputPath, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "path to the JSON program description, or - for stdin")
	rootCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "abort execution after this many cycles (0 = unbounded)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "compile with debug decorators")

	return rootCmd
}

// programFile is the JSON document vmc reads: a single procedure's flat
// instruction list, plus the stack inputs to seed it with. There is no
// module system, import resolution, or kernel designation at this
// layer; it is a thin harness over pkg/vmvm, not a replacement for an
// assembly-text parser.
type programFile struct {
	Instructions []instructionJSON `json:"instructions"`
	Inputs       []uint64          `json:"inputs"`
}

type instructionJSON struct {
	Op       string  `json:"op"`
	Imm      *uint64 `json:"imm,omitempty"`
	ErrorMsg string  `json:"error_msg,omitempty"`
}

func runVM(path string, out, errOut io.Writer) error {
	raw, err := readInput(path)
	if err != nil {
		return fmt.Errorf("vmc: reading input: %w", err)
	}

	var pf programFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		return fmt.Errorf("vmc: parsing program: %w", err)
	}

	proc, err := convertProgram(pf)
	if err != nil {
		return fmt.Errorf("vmc: converting program: %w", err)
	}

	m := &ast.Module{
		Path: "main",
		Exports: []ast.Export{{
			Kind:      ast.ExportKindProcedure,
			Procedure: proc,
		}},
	}

	asm := vmvm.NewAssembler()
	asm.SetDebug(debug)
	if _, err := asm.AddModule(m); err != nil {
		return fmt.Errorf("vmc: adding module: %w", err)
	}

	program, err := asm.Assemble("main", "entry")
	if err != nil {
		return fmt.Errorf("vmc: assembling: %w", err)
	}

	fmt.Fprintf(errOut, "vmc: entry digest %x\n", program.EntryDigest())

	outputs, err := vmvm.Execute(program, vmvm.StackInputs(pf.Inputs), advice.NewMemoryHost(), vmvm.ExecutionOptions{MaxCycles: maxCycles})
	if err != nil {
		return fmt.Errorf("vmc: executing: %w", err)
	}

	enc := json.NewEncoder(out)
	return enc.Encode(outputs)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func convertProgram(pf programFile) (*ast.Procedure, error) {
	ops := make([]ast.Op, len(pf.Instructions))
	for i, instr := range pf.Instructions {
		opcode, ok := mnemonics[instr.Op]
		if !ok {
			return nil, fmt.Errorf("unknown instruction %q at index %d", instr.Op, i)
		}
		inst := ast.Instruction{Op: opcode, ErrMsg: instr.ErrorMsg}
		if instr.Imm != nil {
			im := ast.NewImmediateValue(ast.ImmFelt, *instr.Imm, ast.Span{})
			inst.Imm = &im
		}
		ops[i] = ast.Op{Kind: ast.OpKindInst, Inst: inst}
	}
	return &ast.Procedure{Name: "entry", Body: ast.Block{Ops: ops}}, nil
}

// mnemonics maps the JSON "op" field to the AST opcode it names. Only
// the subset that makes sense as a bare, argument-free-of-context
// instruction stream is exposed here; control flow (if/while/repeat)
// and invocation require the richer ast.Op shapes this flat harness
// does not attempt to encode.
var mnemonics = map[string]ast.Opcode{
	"push":   ast.OpPush,
	"add":    ast.OpAdd,
	"add.c":  ast.OpAddImm,
	"sub":    ast.OpSub,
	"sub.c":  ast.OpSubImm,
	"mul":    ast.OpMul,
	"mul.c":  ast.OpMulImm,
	"div":    ast.OpDiv,
	"div.c":  ast.OpDivImm,
	"neg":    ast.OpNeg,
	"inv":    ast.OpInv,
	"incr":   ast.OpIncr,
	"exp":    ast.OpExp,
	"exp.c":  ast.OpExpImm,
	"and":    ast.OpAnd,
	"or":     ast.OpOr,
	"not":    ast.OpNot,
	"xor":    ast.OpXor,
	"eq":     ast.OpEq,
	"eq.c":   ast.OpEqImm,
	"eqz":    ast.OpEqz,
	"assert": ast.OpAssert,
	"drop":   ast.OpDrop,
	"pad":    ast.OpPad,
	"dup":    ast.OpDup,
	"swap":   ast.OpSwap,
	"movup":  ast.OpMovup,
	"movdn":  ast.OpMovdn,
}

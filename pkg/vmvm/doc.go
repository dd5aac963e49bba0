// Package vmvm provides the public API for the MAST virtual machine:
// assembling a set of modules into a compiled Program and executing it
// against an advice host.
//
// # Quick start
//
//	asm := vmvm.NewAssembler()
//	if _, err := asm.AddModule(module); err != nil {
//		log.Fatal(err)
//	}
//	program, err := asm.Assemble("main", "entry")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	host := advice.NewMemoryHost()
//	outputs, err := vmvm.Execute(program, vmvm.StackInputs{1, 2, 3}, host, vmvm.ExecutionOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
//   - pkg/vmvm/: public API (this package)
//   - internal/: private implementation (modulegraph, compiler, mast,
//     executor, advice, ast, callgraph, field, hasher), not importable
//     outside this module
//
// Implementation details in internal/ can be refactored freely without
// breaking the public API.
package vmvm

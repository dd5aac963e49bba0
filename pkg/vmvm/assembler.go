package vmvm

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/ast"
	"github.com/vybium/vybium-mast-vm/internal/callgraph"
	"github.com/vybium/vybium-mast-vm/internal/compiler"
	"github.com/vybium/vybium-mast-vm/internal/mast"
	"github.com/vybium/vybium-mast-vm/internal/modulegraph"
)

// ModuleHandle identifies a module added to an Assembler, stable once
// returned from AddModule, used only to designate a kernel module.
type ModuleHandle callgraph.ModuleIndex

// Assembler turns a set of parsed modules into a compiled Program: it
// wraps a modulegraph.Graph for name resolution and call-graph
// ordering, and an internal compiler.Compiler driven over that order,
// as a thin public wrapper over an internal implementation type.
type Assembler struct {
	graph *modulegraph.Graph
	debug bool
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{graph: modulegraph.New()}
}

// SetDebug enables debug-decorator bookkeeping (asm-op traces) on every
// subsequent compile; it has no effect on compiled op semantics.
func (a *Assembler) SetDebug(debug bool) { a.debug = debug }

// AddModule stages m for the next Assemble call.
func (a *Assembler) AddModule(m *ast.Module) (ModuleHandle, error) {
	idx, err := a.graph.AddModule(m)
	if err != nil {
		return 0, wrapAssembly(err)
	}
	return ModuleHandle(idx), nil
}

// SetKernel designates handle's module as the kernel module: every
// syscall anywhere in the graph must resolve to a procedure defined
// there. kernel is stored with the assembled Program; neither assembly
// nor execution checks syscall targets against its digests.
func (a *Assembler) SetKernel(handle ModuleHandle, kernel Kernel) {
	a.graph.SetKernel(callgraph.ModuleIndex(handle), kernel)
}

// Assemble recomputes the module graph, then compiles every procedure
// in topological (callee-before-caller) order into a single MAST
// forest, and returns a Program rooted at entryModule::entryProc.
func (a *Assembler) Assemble(entryModule ast.LibraryPath, entryProc string) (*Program, error) {
	if err := a.graph.Recompute(); err != nil {
		return nil, wrapAssembly(err)
	}

	forest := mast.NewForest()
	comp := compiler.New(forest, a.debug)

	for _, gid := range a.graph.TopoOrder() {
		m, ok := a.graph.ModuleAt(gid.Module)
		if !ok {
			continue
		}
		procs := m.Procedures()
		if int(gid.Index) >= len(procs) {
			continue
		}
		proc := procs[gid.Index]
		id, err := comp.CompileProcedure(proc)
		if err != nil {
			return nil, wrapAssembly(fmt.Errorf("compiling %s::%s: %w", m.Path, proc.Name, err))
		}
		node, err := forest.Get(id)
		if err != nil {
			return nil, wrapAssembly(err)
		}
		a.graph.SetDigest(gid, node.Digest)
	}

	entryID, err := a.resolveEntry(forest, entryModule, entryProc)
	if err != nil {
		return nil, err
	}
	entryNode, err := forest.Get(entryID)
	if err != nil {
		return nil, wrapAssembly(err)
	}

	return &Program{
		forest:   forest,
		entry:    entryID,
		kernel:   a.graph.Kernel(),
		entryDig: digestFromField(entryNode.Digest),
	}, nil
}

// resolveEntry finds the compiled MAST node for entryModule::entryProc
// by looking up its recorded digest and asking the forest which node
// owns it.
func (a *Assembler) resolveEntry(forest *mast.Forest, entryModule ast.LibraryPath, entryProc string) (mast.MastNodeId, error) {
	for i := 0; i < a.graph.NumModules(); i++ {
		m, ok := a.graph.ModuleAt(callgraph.ModuleIndex(i))
		if !ok || m.Path != entryModule {
			continue
		}
		for procIdx, p := range m.Procedures() {
			if p.Name != entryProc {
				continue
			}
			gid := callgraph.GlobalProcedureIndex{Module: callgraph.ModuleIndex(i), Index: callgraph.ProcedureIndex(procIdx)}
			digest, ok := a.graph.DigestOf(gid)
			if !ok {
				return mast.NoNode, &VMError{Code: ErrInvalidInput, Message: fmt.Sprintf("entry %s::%s was never compiled", entryModule, entryProc)}
			}
			id, ok := forest.GetByDigest(digest)
			if !ok {
				return mast.NoNode, &VMError{Code: ErrInvalidInput, Message: fmt.Sprintf("entry %s::%s has no forest node", entryModule, entryProc)}
			}
			return id, nil
		}
	}
	return mast.NoNode, &VMError{Code: ErrInvalidInput, Message: fmt.Sprintf("entry module %q not found", entryModule)}
}

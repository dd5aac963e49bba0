package modulegraph

import (
	"fmt"
	"strings"

	"github.com/vybium/vybium-mast-vm/internal/ast"
	"github.com/vybium/vybium-mast-vm/internal/callgraph"
)

// AssemblyError is the interface satisfied by every assembly-time error
// category. It exists so callers can errors.As into the concrete
// category they care about, the way a VMError.Is implementation
// compares error codes.
type AssemblyError interface {
	error
	assemblyError()
}

type baseAssemblyError struct{ msg string }

func (e *baseAssemblyError) Error() string  { return e.msg }
func (e *baseAssemblyError) assemblyError() {}

// ErrEmpty reports that recompute was called with no modules at all.
var ErrEmpty AssemblyError = &baseAssemblyError{msg: "assembly: module graph is empty"}

// DuplicateModuleError reports that a module with the same library path
// is already pending or accepted.
type DuplicateModuleError struct{ Path ast.LibraryPath }

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("assembly: duplicate module %q", e.Path)
}
func (e *DuplicateModuleError) assemblyError() {}

// UndefinedModuleError reports that an import or absolute path refers
// to a module that does not exist in the graph.
type UndefinedModuleError struct {
	Span ast.Span
	Path ast.LibraryPath
}

func (e *UndefinedModuleError) Error() string {
	return fmt.Sprintf("assembly: undefined module %q", e.Path)
}
func (e *UndefinedModuleError) assemblyError() {}

// UndefinedProcedureError reports that a name does not resolve within
// its target module.
type UndefinedProcedureError struct {
	Span ast.Span
	Name string
}

func (e *UndefinedProcedureError) Error() string {
	return fmt.Sprintf("assembly: undefined procedure %q", e.Name)
}
func (e *UndefinedProcedureError) assemblyError() {}

// RecursiveAliasError reports that resolving an alias chain revisited a
// fully-qualified name already on the path.
type RecursiveAliasError struct{ Name string }

func (e *RecursiveAliasError) Error() string {
	return fmt.Sprintf("assembly: recursive alias detected at %q", e.Name)
}
func (e *RecursiveAliasError) assemblyError() {}

// CycleError reports a static cycle in the call graph, carrying
// "module::proc" names in cycle order.
type CycleError struct{ Nodes []string }

func (e *CycleError) Error() string {
	return fmt.Sprintf("assembly: cycle detected: %s", strings.Join(e.Nodes, " -> "))
}
func (e *CycleError) assemblyError() {}

// InvalidSysCallTargetError reports that a syscall's callee does not
// resolve inside the kernel module, or that there is no kernel.
type InvalidSysCallTargetError struct{ Span ast.Span }

func (e *InvalidSysCallTargetError) Error() string {
	return "assembly: syscall target is not a kernel procedure"
}
func (e *InvalidSysCallTargetError) assemblyError() {}

// ConflictingDefinitionsError reports two procedures claiming the same
// fully-qualified name.
type ConflictingDefinitionsError struct{ First, Second string }

func (e *ConflictingDefinitionsError) Error() string {
	return fmt.Sprintf("assembly: conflicting definitions for %q and %q", e.First, e.Second)
}
func (e *ConflictingDefinitionsError) assemblyError() {}

// InvalidLocalWordIndexError reports a loc_loadw/loc_storew address that
// is not word-aligned.
type InvalidLocalWordIndexError struct {
	Addr uint32
	Span ast.Span
}

func (e *InvalidLocalWordIndexError) Error() string {
	return fmt.Sprintf("assembly: local address %d is not word-aligned", e.Addr)
}
func (e *InvalidLocalWordIndexError) assemblyError() {}

// newGraphCycleError converts a callgraph.CycleError (bare node ids)
// into the module-graph's name-carrying CycleError, given a lookup from
// GlobalProcedureIndex back to "module::proc".
func newGraphCycleError(cycle *callgraph.CycleError, name func(callgraph.GlobalProcedureIndex) string) *CycleError {
	nodes := make([]string, len(cycle.Nodes))
	for i, n := range cycle.Nodes {
		nodes[i] = name(n)
	}
	return &CycleError{Nodes: nodes}
}

// Package modulegraph resolves a set of parsed modules into a
// topologically-ordered call graph, rewriting every exec/call/syscall/
// procref target in place from a source-level name into either a
// GlobalProcedureIndex edge (when the callee is known) or a recorded
// PhantomCall (when only its MAST-root digest is known so far).
//
// Grounded directly on assembly/src/assembler/module_graph.rs: modules
// are added in a pending state and only become immutable, accepted
// members of the graph once Recompute has rewritten their invocation
// targets and the resulting call graph has been shown acyclic.
package modulegraph

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vybium/vybium-mast-vm/internal/ast"
	"github.com/vybium/vybium-mast-vm/internal/callgraph"
	"github.com/vybium/vybium-mast-vm/internal/field"
)

// PhantomCall records an invocation whose callee is known only by its
// MAST-root digest: the digest matched no procedure compiled so far,
// so no call-graph edge could be attached. It is resolved later, either
// when a matching procedure is compiled or when the digest is supplied
// externally (e.g. a library linked in after assembly).
type PhantomCall struct {
	Digest field.Digest
}

// Graph is the module graph: every module that has survived Recompute
// is "accepted" and immutable outside the clone-on-write rewrite path;
// modules added since the last Recompute are "pending".
type Graph struct {
	modules []*ast.Module
	pending []*ast.Module

	cg *callgraph.Graph

	// digests maps a compiled procedure's GlobalProcedureIndex to its
	// MAST-root digest, and roots is the reverse lookup. Both are
	// populated by the instruction compiler as procedures are lowered;
	// the module graph itself never computes a digest.
	digests map[callgraph.GlobalProcedureIndex]field.Digest
	roots   map[field.Digest]callgraph.GlobalProcedureIndex

	phantoms map[field.Digest]PhantomCall

	kernel      Kernel
	kernelIndex callgraph.ModuleIndex
	hasKernel   bool

	topo []callgraph.GlobalProcedureIndex

	log logrus.FieldLogger
}

// New returns an empty module graph, logging recompute diagnostics at
// logrus's standard logger by default.
func New() *Graph {
	return &Graph{
		cg:       callgraph.New(),
		digests:  make(map[callgraph.GlobalProcedureIndex]field.Digest),
		roots:    make(map[field.Digest]callgraph.GlobalProcedureIndex),
		phantoms: make(map[field.Digest]PhantomCall),
		log:      logrus.StandardLogger(),
	}
}

// SetLogger replaces the graph's diagnostic logger, e.g. so a host
// application can route recompute diagnostics into its own logrus
// instance instead of the package-global one.
func (g *Graph) SetLogger(log logrus.FieldLogger) { g.log = log }

// AddModule stages m as pending and returns its tentative module index.
// The index becomes stable once Recompute promotes the module to
// accepted; it never changes afterward.
func (g *Graph) AddModule(m *ast.Module) (callgraph.ModuleIndex, error) {
	for _, existing := range g.modules {
		if existing != nil && existing.Path == m.Path {
			return 0, &DuplicateModuleError{Path: m.Path}
		}
	}
	for _, existing := range g.pending {
		if existing.Path == m.Path {
			return 0, &DuplicateModuleError{Path: m.Path}
		}
	}
	idx := callgraph.ModuleIndex(len(g.modules) + len(g.pending))
	g.pending = append(g.pending, m)
	return idx, nil
}

// RemoveModule discards an accepted module and every call-graph node
// and edge attributed to it. It does not renumber surviving modules:
// the corresponding slot in g.modules is left nil, and ModuleAt reports
// it absent.
func (g *Graph) RemoveModule(idx callgraph.ModuleIndex) error {
	if int(idx) >= len(g.modules) || g.modules[idx] == nil {
		return &UndefinedModuleError{Path: ast.LibraryPath(fmt.Sprintf("module#%d", idx))}
	}
	g.cg.RemoveEdgesForModule(idx)
	g.modules[idx] = nil
	if g.hasKernel && g.kernelIndex == idx {
		g.hasKernel = false
		g.kernel = Kernel{}
	}
	return nil
}

// SetKernel designates module idx (accepted or still pending, by the
// index AddModule returned) as the kernel module, with kernel naming the set of syscall-reachable
// procedure digests.
func (g *Graph) SetKernel(idx callgraph.ModuleIndex, kernel Kernel) {
	g.kernelIndex = idx
	g.hasKernel = true
	g.kernel = kernel
	g.log.WithField("module", idx).Debug("modulegraph: kernel module designated")
}

// Kernel returns the graph's current kernel, which is empty if none
// was set.
func (g *Graph) Kernel() Kernel { return g.kernel }

// KernelModuleIndex reports the kernel module's index, if any.
func (g *Graph) KernelModuleIndex() (callgraph.ModuleIndex, bool) {
	return g.kernelIndex, g.hasKernel
}

// ModuleAt returns the module at idx, considering both accepted and
// still-pending modules using the same index scheme AddModule assigned.
func (g *Graph) ModuleAt(idx callgraph.ModuleIndex) (*ast.Module, bool) {
	if int(idx) < len(g.modules) {
		m := g.modules[idx]
		return m, m != nil
	}
	pendingIdx := int(idx) - len(g.modules)
	if pendingIdx < 0 || pendingIdx >= len(g.pending) {
		return nil, false
	}
	return g.pending[pendingIdx], true
}

// NumModules returns the number of accepted module slots (including any
// left nil by RemoveModule).
func (g *Graph) NumModules() int { return len(g.modules) }

// Phantoms returns every invocation currently known only by digest.
func (g *Graph) Phantoms() map[field.Digest]PhantomCall { return g.phantoms }

// TopoOrder returns the call-graph order computed by the last
// successful Recompute: callees before callers.
func (g *Graph) TopoOrder() []callgraph.GlobalProcedureIndex { return g.topo }

// DigestOf returns the MAST-root digest recorded for gid, if the
// instruction compiler has already lowered that procedure.
func (g *Graph) DigestOf(gid callgraph.GlobalProcedureIndex) (field.Digest, bool) {
	d, ok := g.digests[gid]
	return d, ok
}

// SetDigest records the MAST-root digest the instruction compiler
// produced when lowering gid, and resolves any PhantomCall waiting on
// that digest.
func (g *Graph) SetDigest(gid callgraph.GlobalProcedureIndex, digest field.Digest) {
	g.digests[gid] = digest
	g.roots[digest] = gid
	delete(g.phantoms, digest)
}

func (g *Graph) gidForDigest(digest field.Digest) (callgraph.GlobalProcedureIndex, bool) {
	gid, ok := g.roots[digest]
	return gid, ok
}

// nameOf renders a GlobalProcedureIndex as "path::proc" for diagnostics.
func (g *Graph) nameOf(gid callgraph.GlobalProcedureIndex) string {
	m, ok := g.ModuleAt(gid.Module)
	if !ok {
		return gid.String()
	}
	procs := m.Procedures()
	if int(gid.Index) < len(procs) {
		return fmt.Sprintf("%s::%s", m.Path, procs[gid.Index].Name)
	}
	return gid.String()
}

// Recompute rewrites every pending module's invocation targets in
// place, reanalyzes already-accepted modules whose resolution may have
// changed as a result (e.g. a forward reference that a newly added
// module now satisfies), topologically sorts the resulting call graph,
// and only then promotes the pending modules to accepted.
//
// Grounded on ModuleGraph::recompute in module_graph.rs: register nodes
// for every pending procedure first so that forward/mutually-recursive
// references within the same recompute batch resolve, rewrite pending
// modules, then re-run a read-only resolution check over every
// already-accepted module and clone-on-write any whose targets now
// resolve differently; pending modules are promoted once the sort
// succeeds.
func (g *Graph) Recompute() error {
	if len(g.modules) == 0 && len(g.pending) == 0 {
		return ErrEmpty
	}
	if len(g.pending) == 0 {
		return nil
	}

	highWaterMark := callgraph.ModuleIndex(len(g.modules))
	pendingStart := highWaterMark
	g.log.WithField("pending", len(g.pending)).Debug("modulegraph: recompute starting")

	for pi, m := range g.pending {
		midx := pendingStart + callgraph.ModuleIndex(pi)
		for procIdx := range m.Procedures() {
			g.cg.GetOrInsertNode(callgraph.GlobalProcedureIndex{Module: midx, Index: callgraph.ProcedureIndex(procIdx)})
		}
	}

	resolver := newNameResolver(g)

	for pi, m := range g.pending {
		midx := pendingStart + callgraph.ModuleIndex(pi)
		rw := &moduleRewriteVisitor{graph: g, resolver: resolver, moduleIdx: midx, module: m}
		if err := rw.rewriteModule(); err != nil {
			g.log.WithError(err).WithField("module", m.Path).Warn("modulegraph: rewrite failed")
			return err
		}
		g.log.WithField("module", m.Path).Debug("modulegraph: module accepted")
	}

	for i := callgraph.ModuleIndex(0); i < highWaterMark; i++ {
		m, ok := g.ModuleAt(i)
		if !ok {
			continue
		}
		changed, rewritten, err := reanalyzeModule(g, resolver, i, m)
		if err != nil {
			return err
		}
		if changed {
			g.modules[i] = rewritten
			g.log.WithField("module", m.Path).Debug("modulegraph: accepted module reanalyzed and rewritten")
		}
	}

	order, err := g.cg.Toposort()
	if err != nil {
		if ce, ok := err.(*callgraph.CycleError); ok {
			graphErr := newGraphCycleError(ce, g.nameOf)
			g.log.WithError(graphErr).Warn("modulegraph: cycle detected")
			return graphErr
		}
		return err
	}
	g.topo = order
	g.modules = append(g.modules, g.pending...)
	g.pending = nil
	g.log.WithField("procedures", len(order)).Debug("modulegraph: recompute finished")
	return nil
}

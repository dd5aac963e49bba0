package modulegraph

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/ast"
	"github.com/vybium/vybium-mast-vm/internal/callgraph"
	"github.com/vybium/vybium-mast-vm/internal/field"
)

// resolutionKind distinguishes a target that resolved to a known
// procedure from one that resolved only to a bare digest.
type resolutionKind uint8

const (
	resolvedExact resolutionKind = iota
	resolvedPhantom
)

// resolution is the outcome of resolving one InvocationTarget.
type resolution struct {
	Kind        resolutionKind
	GID         callgraph.GlobalProcedureIndex
	Digest      field.Digest
	DigestKnown bool
}

// nameResolver resolves InvocationTargets against the graph's current
// module set (accepted modules plus whatever is still pending in this
// Recompute batch). It is stateless across calls: recursion state
// (alias-cycle detection) is threaded through the visited parameter of
// each call, per module_graph.rs's NameResolver.
type nameResolver struct {
	graph *Graph
}

func newNameResolver(g *Graph) *nameResolver {
	return &nameResolver{graph: g}
}

func (r *nameResolver) findModuleByPath(path ast.LibraryPath) (callgraph.ModuleIndex, *ast.Module, bool) {
	for i, m := range r.graph.modules {
		if m != nil && m.Path == path {
			return callgraph.ModuleIndex(i), m, true
		}
	}
	base := len(r.graph.modules)
	for i, m := range r.graph.pending {
		if m.Path == path {
			return callgraph.ModuleIndex(base + i), m, true
		}
	}
	return 0, nil, false
}

func procedureIndexOf(m *ast.Module, name string) (callgraph.ProcedureIndex, bool) {
	for i, p := range m.Procedures() {
		if p.Name == name {
			return callgraph.ProcedureIndex(i), true
		}
	}
	return 0, false
}

// resolveTarget resolves target as written inside contextModule. visited
// guards against alias cycles and must be a fresh map per top-level
// call (resolveName and resolveTarget pass it through recursive calls).
func (r *nameResolver) resolveTarget(contextModule callgraph.ModuleIndex, target ast.InvocationTarget, visited map[string]bool) (resolution, error) {
	switch target.Kind {
	case ast.TargetMastRoot:
		if gid, ok := r.graph.gidForDigest(target.Digest); ok {
			return resolution{Kind: resolvedExact, GID: gid, Digest: target.Digest, DigestKnown: true}, nil
		}
		return resolution{Kind: resolvedPhantom, Digest: target.Digest}, nil

	case ast.TargetLocalName:
		m, ok := r.graph.ModuleAt(contextModule)
		if !ok {
			return resolution{}, fmt.Errorf("modulegraph: internal error: context module %d missing", contextModule)
		}
		return r.resolveName(contextModule, m, target.Name, visited)

	case ast.TargetAliasQualified:
		m, ok := r.graph.ModuleAt(contextModule)
		if !ok {
			return resolution{}, fmt.Errorf("modulegraph: internal error: context module %d missing", contextModule)
		}
		path, ok := m.ImportPath(target.ModuleAlias)
		if !ok {
			return resolution{}, &UndefinedModuleError{Path: ast.LibraryPath(target.ModuleAlias)}
		}
		idx, target2Mod, ok := r.findModuleByPath(path)
		if !ok {
			return resolution{}, &UndefinedModuleError{Path: path}
		}
		return r.resolveName(idx, target2Mod, target.Name, visited)

	case ast.TargetAbsolutePath:
		idx, m, ok := r.findModuleByPath(ast.LibraryPath(target.LibraryPath))
		if !ok {
			return resolution{}, &UndefinedModuleError{Path: ast.LibraryPath(target.LibraryPath)}
		}
		return r.resolveName(idx, m, target.Name, visited)
	}
	return resolution{}, fmt.Errorf("modulegraph: unknown invocation target kind %d", target.Kind)
}

// resolveName resolves a bare name within module (whose index is
// modIdx), walking procedure-alias chains until a concrete Procedure
// export or an unresolved digest is reached.
func (r *nameResolver) resolveName(modIdx callgraph.ModuleIndex, module *ast.Module, name string, visited map[string]bool) (resolution, error) {
	key := fmt.Sprintf("%d::%s", modIdx, name)
	if visited[key] {
		return resolution{}, &RecursiveAliasError{Name: name}
	}
	visited[key] = true

	export, ok := module.Resolve(name)
	if !ok {
		return resolution{}, &UndefinedProcedureError{Name: name}
	}

	if export.Kind == ast.ExportKindProcedure {
		procIdx, ok := procedureIndexOf(module, name)
		if !ok {
			return resolution{}, &UndefinedProcedureError{Name: name}
		}
		gid := callgraph.GlobalProcedureIndex{Module: modIdx, Index: procIdx}
		digest, known := r.graph.digests[gid]
		return resolution{Kind: resolvedExact, GID: gid, Digest: digest, DigestKnown: known}, nil
	}

	return r.resolveTarget(modIdx, export.Alias.Target, visited)
}

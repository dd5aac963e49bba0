// Package callgraph implements the directed graph of inter-procedural
// calls over global procedure indices, and its topological sort.
package callgraph

import "fmt"

// ModuleIndex identifies a module within a module graph.
type ModuleIndex uint32

// ProcedureIndex identifies a procedure within its owning module.
type ProcedureIndex uint32

// GlobalProcedureIndex uniquely identifies a procedure across an entire
// module graph.
type GlobalProcedureIndex struct {
	Module ModuleIndex
	Index  ProcedureIndex
}

// String implements fmt.Stringer for error messages.
func (g GlobalProcedureIndex) String() string {
	return fmt.Sprintf("module#%d::proc#%d", g.Module, g.Index)
}

// CycleError carries the offending node ids in cycle order.
type CycleError struct {
	Nodes []GlobalProcedureIndex
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("callgraph: cycle detected involving %d procedures", len(e.Nodes))
}

// Graph is a directed graph over GlobalProcedureIndex. Edges point from
// caller to callee; `exec`/`call`/`syscall` invocations add edges,
// `dynexec`/`dyncall` never do, since their callee comes from the stack
// at runtime and so cannot introduce a static cycle.
type Graph struct {
	nodes map[GlobalProcedureIndex]struct{}
	edges map[GlobalProcedureIndex][]GlobalProcedureIndex
}

// New returns an empty call graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[GlobalProcedureIndex]struct{}),
		edges: make(map[GlobalProcedureIndex][]GlobalProcedureIndex),
	}
}

// GetOrInsertNode ensures caller is represented in the graph even if it
// has no outgoing edges, so that isolated entry points are not dropped
// from the topological sort.
func (g *Graph) GetOrInsertNode(node GlobalProcedureIndex) {
	g.nodes[node] = struct{}{}
}

// AddEdge records that caller invokes callee. Both endpoints are
// implicitly inserted as nodes.
func (g *Graph) AddEdge(caller, callee GlobalProcedureIndex) {
	g.nodes[caller] = struct{}{}
	g.nodes[callee] = struct{}{}
	g.edges[caller] = append(g.edges[caller], callee)
}

// OutEdges returns caller's callees, in the order edges were added.
func (g *Graph) OutEdges(caller GlobalProcedureIndex) []GlobalProcedureIndex {
	return append([]GlobalProcedureIndex(nil), g.edges[caller]...)
}

// RemoveEdgesForModule discards every node and edge belonging to
// module m, used when a module is removed from the owning module graph.
func (g *Graph) RemoveEdgesForModule(m ModuleIndex) {
	for node := range g.nodes {
		if node.Module == m {
			delete(g.nodes, node)
			delete(g.edges, node)
		}
	}
	for caller, callees := range g.edges {
		filtered := callees[:0]
		for _, callee := range callees {
			if callee.Module != m {
				filtered = append(filtered, callee)
			}
		}
		if len(filtered) == 0 {
			delete(g.edges, caller)
		} else {
			g.edges[caller] = filtered
		}
	}
}

// toposort state used by both Toposort and ToposortCaller.
type sortState struct {
	visited   map[GlobalProcedureIndex]uint8 // 0 unvisited, 1 in-progress, 2 done
	order     []GlobalProcedureIndex
	stack     []GlobalProcedureIndex
}

// visit performs an iterative-in-spirit (but recursion-based, since
// procedure call depth is bounded by program size, not input size) DFS
// post-order visit, detecting back-edges as cycles.
func (g *Graph) visit(node GlobalProcedureIndex, st *sortState) *CycleError {
	switch st.visited[node] {
	case 2:
		return nil
	case 1:
		// Found a back-edge: the cycle is the suffix of st.stack from
		// node's first occurrence to the current top.
		start := 0
		for i, n := range st.stack {
			if n == node {
				start = i
				break
			}
		}
		cycle := append([]GlobalProcedureIndex(nil), st.stack[start:]...)
		cycle = append(cycle, node)
		return &CycleError{Nodes: cycle}
	}

	st.visited[node] = 1
	st.stack = append(st.stack, node)
	for _, callee := range g.edges[node] {
		if err := g.visit(callee, st); err != nil {
			return err
		}
	}
	st.stack = st.stack[:len(st.stack)-1]
	st.visited[node] = 2
	st.order = append(st.order, node)
	return nil
}

// Toposort returns a dependency-ordered list (callees precede callers)
// over every node in the graph, or a CycleError carrying the offending
// node ids.
func (g *Graph) Toposort() ([]GlobalProcedureIndex, error) {
	st := &sortState{visited: make(map[GlobalProcedureIndex]uint8, len(g.nodes))}
	// Deterministic order: iterate nodes in a stable order by sorting on
	// (module, index) rather than Go's randomized map order.
	for _, node := range g.sortedNodes() {
		if st.visited[node] == 0 {
			if err := g.visit(node, st); err != nil {
				return nil, err
			}
		}
	}
	return st.order, nil
}

// ToposortCaller returns the dependency order restricted to the
// subgraph reachable from caller.
func (g *Graph) ToposortCaller(caller GlobalProcedureIndex) ([]GlobalProcedureIndex, error) {
	st := &sortState{visited: make(map[GlobalProcedureIndex]uint8)}
	if err := g.visit(caller, st); err != nil {
		return nil, err
	}
	return st.order, nil
}

// sortedNodes returns the graph's nodes in a stable, deterministic
// order so that Toposort's output does not depend on Go's randomized
// map iteration.
func (g *Graph) sortedNodes() []GlobalProcedureIndex {
	out := make([]GlobalProcedureIndex, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if a.Module > b.Module || (a.Module == b.Module && a.Index > b.Index) {
				out[j-1], out[j] = out[j], out[j-1]
			} else {
				break
			}
		}
	}
	return out
}

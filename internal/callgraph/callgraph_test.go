package callgraph

import "testing"

func gid(m, p uint32) GlobalProcedureIndex {
	return GlobalProcedureIndex{Module: ModuleIndex(m), Index: ProcedureIndex(p)}
}

func TestToposortOrdersCalleesBeforeCallers(t *testing.T) {
	t.Run("LinearChain", func(t *testing.T) {
		g := New()
		a, b, c := gid(0, 0), gid(0, 1), gid(0, 2)
		g.AddEdge(a, b)
		g.AddEdge(b, c)

		order, err := g.Toposort()
		if err != nil {
			t.Fatalf("Toposort: %v", err)
		}
		pos := map[GlobalProcedureIndex]int{}
		for i, n := range order {
			pos[n] = i
		}
		if pos[c] >= pos[b] || pos[b] >= pos[a] {
			t.Fatalf("expected callee-before-caller order, got %v", order)
		}
	})
}

func TestToposortDetectsCycle(t *testing.T) {
	t.Run("DirectCycleIsFatal", func(t *testing.T) {
		g := New()
		a, b := gid(0, 0), gid(0, 1)
		g.AddEdge(a, b)
		g.AddEdge(b, a)

		if _, err := g.Toposort(); err == nil {
			t.Fatal("expected cycle error")
		}
	})
}

func TestIsolatedNodeSurvivesToposort(t *testing.T) {
	t.Run("NodeWithNoEdgesStillAppears", func(t *testing.T) {
		g := New()
		only := gid(0, 0)
		g.GetOrInsertNode(only)

		order, err := g.Toposort()
		if err != nil {
			t.Fatalf("Toposort: %v", err)
		}
		if len(order) != 1 || order[0] != only {
			t.Fatalf("order = %v, want [%v]", order, only)
		}
	})
}

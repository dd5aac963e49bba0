package mast

import (
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/field"
)

func buildSimpleBlockForest(ops []Operation) (*Forest, MastNodeId) {
	f := NewForest()
	id, err := f.NewBlock(ops, nil)
	if err != nil {
		panic(err)
	}
	f.MakeRoot(id)
	return f, id
}

func TestMergeExternalReplacement(t *testing.T) {
	t.Run("ExternalIsSupersededByConcreteNodeOfSameDigest", func(t *testing.T) {
		ops := []Operation{{Kind: OpAdd}, {Kind: OpMul}}
		concreteForest, concreteID := buildSimpleBlockForest(ops)
		concreteNode, _ := concreteForest.Get(concreteID)

		host := NewForest()
		extID, err := host.NewExternal(concreteNode.Digest)
		if err != nil {
			t.Fatalf("NewExternal: %v", err)
		}
		host.MakeRoot(extID)

		merged, err := Merge(host, concreteForest)
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}

		if len(merged.Nodes) != 1 {
			t.Fatalf("merged forest has %d nodes, want 1", len(merged.Nodes))
		}
		got, err := merged.Get(extID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Kind == KindExternal {
			t.Fatal("expected External node to be superseded by a concrete node")
		}
		if got.Digest != concreteNode.Digest {
			t.Fatalf("merged node digest = %v, want %v", got.Digest, concreteNode.Digest)
		}
	})
}

func TestMergePreservesAllRootDigests(t *testing.T) {
	t.Run("EveryRootOfBothForestsSurvivesMerge", func(t *testing.T) {
		a, aRoot := buildSimpleBlockForest([]Operation{{Kind: OpAdd}})
		b, bRoot := buildSimpleBlockForest([]Operation{{Kind: OpNeg}})
		aDigest, _ := a.Get(aRoot)
		bDigest, _ := b.Get(bRoot)

		merged, err := Merge(a, b)
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}

		foundA, foundB := false, false
		for _, rid := range merged.Roots() {
			n, _ := merged.Get(rid)
			if n.Digest == aDigest.Digest {
				foundA = true
			}
			if n.Digest == bDigest.Digest {
				foundB = true
			}
		}
		if !foundA || !foundB {
			t.Fatalf("merged roots missing originals: foundA=%v foundB=%v", foundA, foundB)
		}
	})
}

func TestMergeIsIdempotentOnNodeSet(t *testing.T) {
	t.Run("MergingAForestWithItselfAddsNoNewNodes", func(t *testing.T) {
		f, _ := buildSimpleBlockForest([]Operation{{Kind: OpAdd}, {Kind: OpMul}})
		clone := NewForest()
		id, err := clone.NewBlock(f.Nodes[0].Ops, nil)
		if err != nil {
			t.Fatalf("NewBlock: %v", err)
		}
		clone.MakeRoot(id)

		before := len(f.Nodes)
		if _, err := Merge(f, clone); err != nil {
			t.Fatalf("Merge: %v", err)
		}
		if len(f.Nodes) != before {
			t.Fatalf("merging identical forest grew node count from %d to %d", before, len(f.Nodes))
		}
	})
}

func TestBlockDigestDeterminism(t *testing.T) {
	t.Run("SameOpsProduceSameDigest", func(t *testing.T) {
		ops := []Operation{{Kind: OpAdd, Imm: field.New(3)}}
		d1 := hashOperationsForTest(ops)
		d2 := hashOperationsForTest(ops)
		if d1 != d2 {
			t.Fatal("expected deterministic digest for identical op streams")
		}
	})
}

func hashOperationsForTest(ops []Operation) field.Digest {
	return hashOperations(ops)
}

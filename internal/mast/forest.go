package mast

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/hasher"
)

// maxNodes is the hard cap on a Forest's node count: at most 2^32-1
// nodes, so every node id fits in a uint32 and differs from NoNode.
const maxNodes = 1<<32 - 1

// Forest is the arena of typed MAST nodes addressed by compact index,
// plus the decorator arena and the root-digest lookup table.
type Forest struct {
	Nodes      []MastNode
	Decorators []Decorator

	roots    []MastNodeId
	isRoot   map[MastNodeId]bool
	byDigest map[field.Digest]MastNodeId
}

// NewForest returns an empty forest ready for node insertion.
func NewForest() *Forest {
	return &Forest{
		isRoot:   make(map[MastNodeId]bool),
		byDigest: make(map[field.Digest]MastNodeId),
	}
}

// Get returns the node at id.
func (f *Forest) Get(id MastNodeId) (MastNode, error) {
	if int(id) >= len(f.Nodes) {
		return MastNode{}, fmt.Errorf("mast: node id %d out of range (forest has %d nodes)", id, len(f.Nodes))
	}
	return f.Nodes[id], nil
}

// GetByDigest looks up a node by its digest, used to resolve whether a
// raw MAST-root invocation target already has a local definition.
func (f *Forest) GetByDigest(d field.Digest) (MastNodeId, bool) {
	id, ok := f.byDigest[d]
	return id, ok
}

// Roots returns the forest's current root node ids, one per compiled
// procedure entry point.
func (f *Forest) Roots() []MastNodeId {
	return append([]MastNodeId(nil), f.roots...)
}

// IsRoot reports whether id has been registered as a procedure entry
// point via MakeRoot.
func (f *Forest) IsRoot(id MastNodeId) bool { return f.isRoot[id] }

// MakeRoot idempotently records id as a procedure entry point.
func (f *Forest) MakeRoot(id MastNodeId) {
	if f.isRoot[id] {
		return
	}
	f.isRoot[id] = true
	f.roots = append(f.roots, id)
}

// addNode appends node to the arena, indexing it by digest, and
// enforces the forest's only structural invariant: every child id a
// Join/Split/Loop/Call node references must be strictly less than the
// new node's own index (so a single forward pass suffices to hash or
// evaluate the forest).
func (f *Forest) addNode(node MastNode) (MastNodeId, error) {
	if len(f.Nodes) >= maxNodes {
		return NoNode, fmt.Errorf("mast: forest exceeds maximum of %d nodes", maxNodes)
	}
	id := MastNodeId(len(f.Nodes))
	for _, child := range []MastNodeId{node.Left, node.Right, node.Callee} {
		if child == NoNode {
			continue
		}
		if child >= id {
			return NoNode, fmt.Errorf("mast: node %d references child %d, which is not yet in the forest", id, child)
		}
	}
	f.Nodes = append(f.Nodes, node)
	if _, exists := f.byDigest[node.Digest]; !exists {
		f.byDigest[node.Digest] = id
	}
	return id, nil
}

// ReplaceExternal supersedes the External node at id with a concrete
// node of the same digest. Any node already in the forest that
// references id as a child keeps working unchanged, because it
// resolves by id, and id's digest (and thus its hash) is unchanged.
func (f *Forest) ReplaceExternal(id MastNodeId, concrete MastNode) error {
	cur, err := f.Get(id)
	if err != nil {
		return err
	}
	if cur.Kind != KindExternal {
		return fmt.Errorf("mast: node %d is not an External node", id)
	}
	if cur.Digest != concrete.Digest {
		return fmt.Errorf("mast: digest mismatch replacing external node %d", id)
	}
	f.Nodes[id] = concrete
	return nil
}

// AddDecorator appends d to the decorator arena.
func (f *Forest) AddDecorator(d Decorator) DecoratorId {
	f.Decorators = append(f.Decorators, d)
	return DecoratorId(len(f.Decorators) - 1)
}

// NewBlock validates and inserts a Block node. The digest is computed
// eagerly from the operation stream.
func (f *Forest) NewBlock(ops []Operation, decorators []DecoratorId) (MastNodeId, error) {
	return f.addNode(MastNode{
		Kind:       KindBlock,
		Digest:     hashOperations(ops),
		Ops:        ops,
		Decorators: decorators,
		Left:       NoNode,
		Right:      NoNode,
		Callee:     NoNode,
	})
}

// NewJoin validates that left and right resolve within the forest and
// inserts a Join node whose digest hashes the two children's digests.
func (f *Forest) NewJoin(left, right MastNodeId) (MastNodeId, error) {
	l, err := f.Get(left)
	if err != nil {
		return NoNode, err
	}
	r, err := f.Get(right)
	if err != nil {
		return NoNode, err
	}
	return f.addNode(MastNode{
		Kind:   KindJoin,
		Digest: hasher.Merge2to1(l.Digest, r.Digest, domainJoin),
		Left:   left,
		Right:  right,
		Callee: NoNode,
	})
}

// NewSplit inserts a Split node; onTrue executes when the popped
// condition is 1, onFalse when it is 0.
func (f *Forest) NewSplit(onTrue, onFalse MastNodeId) (MastNodeId, error) {
	t, err := f.Get(onTrue)
	if err != nil {
		return NoNode, err
	}
	e, err := f.Get(onFalse)
	if err != nil {
		return NoNode, err
	}
	return f.addNode(MastNode{
		Kind:   KindSplit,
		Digest: hasher.Merge2to1(t.Digest, e.Digest, domainSplit),
		Left:   onTrue,
		Right:  onFalse,
		Callee: NoNode,
	})
}

// NewLoop inserts a Loop node wrapping body.
func (f *Forest) NewLoop(body MastNodeId) (MastNodeId, error) {
	b, err := f.Get(body)
	if err != nil {
		return NoNode, err
	}
	return f.addNode(MastNode{
		Kind:   KindLoop,
		Digest: hasher.Merge2to1(b.Digest, field.ZeroWord, domainLoop),
		Left:   body,
		Right:  NoNode,
		Callee: NoNode,
	})
}

// NewCall inserts a Call node wrapping callee. isSyscall selects
// between the Call and SysCall domain tags and is also recorded in the
// node's IsSyscall field, which is what the executor reads to tell them
// apart without a separate node kind.
func (f *Forest) NewCall(callee MastNodeId, isSyscall bool) (MastNodeId, error) {
	c, err := f.Get(callee)
	if err != nil {
		return NoNode, err
	}
	domain := domainCall
	if isSyscall {
		domain = domainSyscall
	}
	return f.addNode(MastNode{
		Kind:      KindCall,
		Digest:    hasher.Merge2to1(c.Digest, field.ZeroWord, domain),
		Left:      NoNode,
		Right:      NoNode,
		Callee:    callee,
		IsSyscall: isSyscall,
	})
}

// NewDyn inserts a Dyn node. The callee is not known until execution
// time (it is popped from the stack), so Dyn has no children; its
// digest is a domain-separated constant distinguishing dynexec from
// dyncall.
func (f *Forest) NewDyn(isDyncall bool) (MastNodeId, error) {
	domain := domainDyn
	if isDyncall {
		domain = domainDyncall
	}
	return f.addNode(MastNode{
		Kind:      KindDyn,
		Digest:    hasher.Merge2to1(field.ZeroWord, field.ZeroWord, domain),
		Left:      NoNode,
		Right:     NoNode,
		Callee:    NoNode,
		IsDyncall: isDyncall,
	})
}

// NewExternal inserts an unresolved reference node carrying only digest.
func (f *Forest) NewExternal(digest field.Digest) (MastNodeId, error) {
	return f.addNode(MastNode{
		Kind:   KindExternal,
		Digest: digest,
		Left:   NoNode,
		Right:  NoNode,
		Callee: NoNode,
	})
}

package mast

import "github.com/vybium/vybium-mast-vm/internal/field"

// NodeKind is a tagged variant over the MAST node set.
type NodeKind uint8

const (
	KindBlock NodeKind = iota
	KindJoin
	KindSplit
	KindLoop
	KindCall
	KindDyn
	KindExternal
)

// MastNodeId is a compact, append-only index into a Forest's node
// arena. NoNode is the sentinel "absent" value.
type MastNodeId uint32

// NoNode is the sentinel value representing "no node", used by fields
// that are meaningful for only some NodeKinds.
const NoNode MastNodeId = 1<<32 - 1

// MastNode is a tagged variant over Block, Join, Split, Loop, Call,
// Dyn, and External. Only the fields relevant to Kind are populated.
// Digest is always populated and computed eagerly at construction.
type MastNode struct {
	Kind   NodeKind
	Digest field.Digest

	// KindBlock
	Ops        []Operation
	Decorators []DecoratorId

	// KindJoin: Left/Right are both children.
	// KindSplit: Left is on_true, Right is on_false.
	// KindLoop: Left is the body, Right is unused (NoNode).
	Left  MastNodeId
	Right MastNodeId

	// KindCall
	Callee    MastNodeId
	IsSyscall bool

	// KindDyn
	IsDyncall bool
}

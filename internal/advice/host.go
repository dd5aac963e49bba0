// Package advice defines the advice-host contract the fast execution
// engine pulls from on ADVPOP/ADVPOPW/MPVERIFY/MRUPDATE, and a default
// in-memory implementation suitable for tests and the CLI harness.
//
// Grounded on processor/src/host and processor/src/fast/mod.rs's use of
// a host trait to source non-deterministic values without the executor
// itself knowing where they came from.
package advice

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/mast"
)

// Host is every non-deterministic input/output channel the executor
// consults while running a program. All operations are synchronous:
// the trace-free executor has no notion of suspending mid-instruction.
type Host interface {
	// PopStack removes and returns the top of the advice stack.
	PopStack() (field.Felt, error)
	// PopStackWord removes and returns the top 4 elements of the advice
	// stack as a Word, most-significant-first.
	PopStackWord() (field.Word, error)
	// PopStackDWord removes and returns the top 8 elements of the
	// advice stack as two Words.
	PopStackDWord() (field.Word, field.Word, error)

	// PushStack pushes a single value onto the advice stack (used by
	// system-event handlers that synthesize advice on demand, e.g.
	// u64 division remainder/quotient).
	PushStack(field.Felt) error
	PushStackWord(field.Word) error

	// GetMappedValues returns the slice of field elements stored under
	// key in the advice map.
	GetMappedValues(key field.Digest) ([]field.Felt, bool)
	// InsertIntoMap stores values under key in the advice map.
	InsertIntoMap(key field.Digest, values []field.Felt)

	// GetTreeNode returns the node at (depth, index) in the Merkle
	// store rooted at root.
	GetTreeNode(root field.Digest, depth, index uint64) (field.Word, error)
	// GetMerklePath returns the authentication path from (depth, index)
	// up to root.
	GetMerklePath(root field.Digest, depth, index uint64) ([]field.Word, error)
	// UpdateMerkleNode writes value at (depth, index) under root,
	// returning the new root.
	UpdateMerkleNode(root field.Digest, depth, index uint64, value field.Word) (field.Digest, error)
	// MergeRoots combines two subtree roots into a parent root.
	MergeRoots(left, right field.Digest) (field.Digest, error)

	// ResolveExternal returns the concrete MAST subtree to substitute
	// for an External node encountered at runtime, identified by
	// digest: the node to resume execution at, and the forest it lives
	// in (which may not be the forest currently executing, e.g. a
	// linked library compiled and merged separately). Returning an
	// error aborts execution.
	ResolveExternal(digest field.Digest) (mast.MastNodeId, *mast.Forest, error)

	// OnEvent receives an event id together with a read-only view of the
	// stack. The executor does not call it: emit lowers to a no-op and
	// no system events are dispatched.
	OnEvent(id uint32, ctx EventContext) error
}

// EventContext is the minimal view of execution state an event handler
// needs: enough to read the stack, never enough to mutate control flow.
type EventContext struct {
	Clk   uint64
	Stack func(depth int) field.Felt
}

// ErrAdviceStackEmpty reports that PopStack*/* was called on an empty
// advice stack.
var ErrAdviceStackEmpty = fmt.Errorf("advice: stack is empty")

package mast

import (
	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/hasher"
)

// Domain separator tags mixed into node hashing so that, e.g., a Join
// and a Split with identical children never collide on digest.
const (
	domainBlock   uint64 = 1
	domainJoin    uint64 = 2
	domainSplit   uint64 = 3
	domainLoop    uint64 = 4
	domainCall    uint64 = 5
	domainSyscall uint64 = 6
	domainDyn     uint64 = 7
	domainDyncall uint64 = 8
)

// hashOperations folds a Block node's operation stream into a single
// digest, tagged with the Block domain so it can never collide with a
// control node's child-digest hash.
func hashOperations(ops []Operation) field.Digest {
	elems := make([]field.Felt, 0, len(ops)*3)
	for _, op := range ops {
		elems = append(elems, field.New(uint64(op.Kind)), op.Imm, field.New(uint64(op.Segment)))
	}
	return hasher.HashElements(elems, domainBlock)
}

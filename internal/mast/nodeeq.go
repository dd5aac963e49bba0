package mast

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// EqClass is the stable equivalence-class key produced by NodeEq. Two
// nodes with the same EqClass are observationally equivalent from the
// executor's viewpoint and may be deduplicated by the merger.
type EqClass [32]byte

// NodeEq computes, for a node already resolved into a target forest's
// id-space (children remapped), a stable hash accounting for the node's
// digest and its decorator content. Plain digest equality would already
// catch most duplicates (a MAST digest recursively commits to a node's
// children), but two nodes can share a digest while carrying different
// decorator sets; those must not be merged, so decorator content is
// folded into the class key too.
//
// golang.org/x/crypto/sha3 is used here as an auxiliary,
// non-cryptographic-commitment hash, never as the MAST digest itself.
type NodeEq struct{}

// ClassOf computes the equivalence class of the node at id within f,
// assuming id's children already refer to ids within f (the merger is
// responsible for remapping guest ids before calling this).
func (NodeEq) ClassOf(f *Forest, id MastNodeId) (EqClass, error) {
	n, err := f.Get(id)
	if err != nil {
		return EqClass{}, err
	}
	h := sha3.New256()
	for _, elem := range n.Digest {
		b := elem.Bytes()
		h.Write(b[:])
	}
	for _, did := range n.Decorators {
		d, err := decoratorContent(f, did)
		if err != nil {
			return EqClass{}, err
		}
		h.Write(d)
	}
	var out EqClass
	copy(out[:], h.Sum(nil))
	return out, nil
}

func decoratorContent(f *Forest, id DecoratorId) ([]byte, error) {
	if int(id) >= len(f.Decorators) {
		return nil, fmt.Errorf("mast: decorator id %d out of range", id)
	}
	d := f.Decorators[id]
	buf := make([]byte, 0, 16)
	buf = append(buf, byte(d.Kind))
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], d.TraceID)
	buf = append(buf, u32[:]...)
	binary.LittleEndian.PutUint32(u32[:], d.EventID)
	buf = append(buf, u32[:]...)
	buf = append(buf, d.AsmOpCycles)
	buf = append(buf, []byte(d.DebugOptions)...)
	buf = append(buf, []byte(d.AsmOpInfo)...)
	return buf, nil
}

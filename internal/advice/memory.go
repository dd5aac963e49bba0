package advice

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/mast"
)

// MerkleStore is a minimal in-memory Merkle forest keyed by root
// digest, sufficient for tests and the CLI harness: each root owns a
// dense array of leaves and its depth; no interior nodes are stored.
type MerkleStore struct {
	leaves map[field.Digest][]field.Word
	depth  map[field.Digest]uint64
}

// NewMerkleStore returns an empty store.
func NewMerkleStore() *MerkleStore {
	return &MerkleStore{leaves: make(map[field.Digest][]field.Word), depth: make(map[field.Digest]uint64)}
}

// MemoryHost is a simple in-memory Host implementation: an advice
// stack (LIFO), an advice map (digest -> []Felt), and a Merkle store.
// It never initiates any non-deterministic behavior of its own; every
// value it returns was placed there ahead of time by a test or CLI
// harness, favoring explicit, inspectable fixtures over hidden
// randomness.
type MemoryHost struct {
	stack     []field.Felt
	amap      map[field.Digest][]field.Felt
	store     *MerkleStore
	externals map[field.Digest]externalRef

	eventLog []uint32
}

// externalRef is the forest and entry point a digest was registered
// against, so a later ResolveExternal can hand both back to the caller.
type externalRef struct {
	forest *mast.Forest
	id     mast.MastNodeId
}

// NewMemoryHost returns an empty MemoryHost.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		amap:      make(map[field.Digest][]field.Felt),
		store:     NewMerkleStore(),
		externals: make(map[field.Digest]externalRef),
	}
}

// RegisterExternal makes digest resolvable by a later External node: it
// records that digest names id within forest, so execution can continue
// there instead of aborting with an unresolved reference.
func (h *MemoryHost) RegisterExternal(digest field.Digest, forest *mast.Forest, id mast.MastNodeId) {
	h.externals[digest] = externalRef{forest: forest, id: id}
}

// SeedStack pushes values onto the advice stack in order, so that the
// first call to PopStack returns values[len(values)-1].
func (h *MemoryHost) SeedStack(values ...field.Felt) {
	h.stack = append(h.stack, values...)
}

func (h *MemoryHost) PopStack() (field.Felt, error) {
	if len(h.stack) == 0 {
		return field.Zero, ErrAdviceStackEmpty
	}
	v := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	return v, nil
}

func (h *MemoryHost) PopStackWord() (field.Word, error) {
	var w field.Word
	for i := field.WordSize - 1; i >= 0; i-- {
		v, err := h.PopStack()
		if err != nil {
			return field.ZeroWord, err
		}
		w[i] = v
	}
	return w, nil
}

func (h *MemoryHost) PopStackDWord() (field.Word, field.Word, error) {
	hi, err := h.PopStackWord()
	if err != nil {
		return field.ZeroWord, field.ZeroWord, err
	}
	lo, err := h.PopStackWord()
	if err != nil {
		return field.ZeroWord, field.ZeroWord, err
	}
	return hi, lo, nil
}

func (h *MemoryHost) PushStack(v field.Felt) error {
	h.stack = append(h.stack, v)
	return nil
}

func (h *MemoryHost) PushStackWord(w field.Word) error {
	for i := field.WordSize - 1; i >= 0; i-- {
		h.stack = append(h.stack, w[i])
	}
	return nil
}

func (h *MemoryHost) GetMappedValues(key field.Digest) ([]field.Felt, bool) {
	v, ok := h.amap[key]
	return v, ok
}

func (h *MemoryHost) InsertIntoMap(key field.Digest, values []field.Felt) {
	h.amap[key] = append([]field.Felt(nil), values...)
}

func (h *MemoryHost) GetTreeNode(root field.Digest, depth, index uint64) (field.Word, error) {
	leaves, ok := h.store.leaves[root]
	if !ok {
		return field.ZeroWord, fmt.Errorf("advice: unknown merkle root")
	}
	treeDepth := h.store.depth[root]
	if depth == treeDepth {
		if index >= uint64(len(leaves)) {
			return field.ZeroWord, fmt.Errorf("advice: leaf index %d out of range", index)
		}
		return leaves[index], nil
	}
	return field.ZeroWord, fmt.Errorf("advice: only leaf-depth lookups are supported by the in-memory store")
}

func (h *MemoryHost) GetMerklePath(root field.Digest, depth, index uint64) ([]field.Word, error) {
	return nil, fmt.Errorf("advice: merkle path retrieval is not implemented by the in-memory store")
}

func (h *MemoryHost) UpdateMerkleNode(root field.Digest, depth, index uint64, value field.Word) (field.Digest, error) {
	return field.Digest{}, fmt.Errorf("advice: merkle node update is not implemented by the in-memory store")
}

func (h *MemoryHost) MergeRoots(left, right field.Digest) (field.Digest, error) {
	return field.Digest{}, fmt.Errorf("advice: merkle root merge is not implemented by the in-memory store")
}

func (h *MemoryHost) ResolveExternal(digest field.Digest) (mast.MastNodeId, *mast.Forest, error) {
	ref, ok := h.externals[digest]
	if !ok {
		return mast.NoNode, nil, fmt.Errorf("advice: no external resolver registered for digest %v", digest)
	}
	return ref.id, ref.forest, nil
}

func (h *MemoryHost) OnEvent(id uint32, ctx EventContext) error {
	h.eventLog = append(h.eventLog, id)
	return nil
}

// Events returns every event id observed so far, for test assertions.
func (h *MemoryHost) Events() []uint32 { return append([]uint32(nil), h.eventLog...) }

// SeedLeaves registers a flat leaf array under root at the given depth,
// for tests exercising MTREE_GET/MP_VERIFY against a known tree.
func (h *MemoryHost) SeedLeaves(root field.Digest, depth uint64, leaves []field.Word) {
	h.store.leaves[root] = leaves
	h.store.depth[root] = depth
}

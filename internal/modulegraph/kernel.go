package modulegraph

import "github.com/vybium/vybium-mast-vm/internal/field"

// Kernel is the fixed set of MAST-root digests a syscall is permitted
// to target. The graph's syscall check does not consult this set: it
// accepts any syscall into the module designated with Graph.SetKernel
// (even with an empty Kernel) and rejects every syscall when no kernel
// module is designated.
type Kernel struct {
	procs map[field.Digest]struct{}
}

// NewKernel builds a Kernel from the digests of a kernel module's
// exported procedures.
func NewKernel(digests ...field.Digest) Kernel {
	k := Kernel{procs: make(map[field.Digest]struct{}, len(digests))}
	for _, d := range digests {
		k.procs[d] = struct{}{}
	}
	return k
}

// IsEmpty reports whether this graph has no kernel at all.
func (k Kernel) IsEmpty() bool { return len(k.procs) == 0 }

// Contains reports whether digest names a kernel procedure.
func (k Kernel) Contains(digest field.Digest) bool {
	_, ok := k.procs[digest]
	return ok
}

package vmvm

import (
	"github.com/vybium/vybium-mast-vm/internal/executor"
	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/mast"
	"github.com/vybium/vybium-mast-vm/internal/modulegraph"
)

// StackInputs is the initial operand stack, bottom-to-top: inputs[0]
// becomes the deepest element.
type StackInputs []uint64

// StackOutputs is the final operand stack, bottom-to-top.
type StackOutputs []uint64

// Digest is a procedure's content-addressed MAST-root identity,
// produced by Program.EntryDigest.
type Digest [4]uint64

func (d Digest) toField() field.Digest {
	return field.Digest{field.New(d[0]), field.New(d[1]), field.New(d[2]), field.New(d[3])}
}

func digestFromField(d field.Digest) Digest {
	return Digest{d[0].Uint64(), d[1].Uint64(), d[2].Uint64(), d[3].Uint64()}
}

// Kernel names the set of procedure digests a syscall is allowed to
// target.
type Kernel = modulegraph.Kernel

// NewKernel builds a Kernel from its member procedures' MAST-root
// digests.
func NewKernel(digests ...Digest) Kernel {
	fieldDigests := make([]field.Digest, len(digests))
	for i, d := range digests {
		fieldDigests[i] = d.toField()
	}
	return modulegraph.NewKernel(fieldDigests...)
}

// ExecutionOptions configures a single Execute call.
type ExecutionOptions = executor.ExecutionOptions

// Program is a fully assembled, compiled unit ready to run: a MAST
// forest plus the entrypoint node and the designated kernel, if any.
type Program struct {
	forest   *mast.Forest
	entry    mast.MastNodeId
	kernel   Kernel
	entryDig Digest
}

// EntryDigest returns the compiled entrypoint procedure's MAST-root
// digest, stable across recompilation of unrelated procedures.
func (p *Program) EntryDigest() Digest { return p.entryDig }

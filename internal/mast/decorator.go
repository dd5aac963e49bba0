package mast

// DecoratorKind identifies the side-effect-free annotation a Decorator
// carries.
type DecoratorKind uint8

const (
	DecoratorTraceId DecoratorKind = iota
	DecoratorDebug
	DecoratorAsmOp
	DecoratorEvent
)

// Decorator is a side-effect-free annotation attached to a Block node's
// operation stream: a trace id, a debug directive, assembly-op info (so
// the prover can reconstruct the mapping from primitive op indices back
// to source-level instruction spans), or an event emission marker.
type Decorator struct {
	Kind DecoratorKind

	TraceID uint32 // DecoratorTraceId

	DebugOptions string // DecoratorDebug, e.g. "stack", "mem[0,4]"

	AsmOpInfo     string // DecoratorAsmOp: human-readable source instruction
	AsmOpCycles   uint8  // number of primitive cycles the instruction compiled to

	EventID uint32 // DecoratorEvent
}

// DecoratorId addresses a Decorator within a MastForest's decorator arena.
type DecoratorId uint32

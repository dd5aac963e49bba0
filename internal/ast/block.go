package ast

// OpKind distinguishes a primitive instruction from a structured
// control-flow block.
type OpKind uint8

const (
	OpKindInst OpKind = iota
	OpKindIf
	OpKindWhile
	OpKindRepeat
)

// Op is either a primitive Inst(span, Instruction) or a structured
// control-flow block: If, While, Repeat. Exactly the fields relevant to
// Kind are populated.
type Op struct {
	Kind OpKind
	Span Span

	// Kind == OpKindInst
	Inst Instruction

	// Kind == OpKindIf
	Then Block
	Else Block

	// Kind == OpKindWhile / OpKindRepeat
	Body Block

	// Kind == OpKindRepeat
	Count uint32
}

// Block is an ordered sequence of Op.
type Block struct {
	Ops []Op
}

// Visibility is a procedure's export status.
type Visibility uint8

const (
	VisibilityInternal Visibility = iota
	VisibilityExport
)

// Invoke records one invocation edge discovered while lowering a
// procedure body: the target as written, its call kind, and the span
// of the invoking instruction, so the module graph can attribute
// resolution errors to source.
type InvokeKind uint8

const (
	InvokeExec InvokeKind = iota
	InvokeCall
	InvokeSyscall
	InvokeProcref
)

type Invoke struct {
	Kind   InvokeKind
	Target InvocationTarget
	Span   Span
}

// Procedure owns a name, visibility, local-memory count, body, and the
// set of invocation edges discovered in that body.
type Procedure struct {
	Name       string
	Visibility Visibility
	NumLocals  uint32
	Body       Block
	Invoked    []Invoke
}

// ProcedureAlias names an external fully-qualified target re-exported
// under a local name.
type ProcedureAlias struct {
	Name   string
	Target InvocationTarget
}

// ExportKind distinguishes a concrete Procedure from a ProcedureAlias.
type ExportKind uint8

const (
	ExportKindProcedure ExportKind = iota
	ExportKindAlias
)

// Export is either a Procedure or a ProcedureAlias.
type Export struct {
	Kind      ExportKind
	Procedure *Procedure
	Alias     *ProcedureAlias
}

// Name returns the exported symbol's local name regardless of kind.
func (e Export) Name() string {
	if e.Kind == ExportKindProcedure {
		return e.Procedure.Name
	}
	return e.Alias.Name
}

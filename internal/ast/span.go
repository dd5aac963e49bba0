// Package ast defines the surface assembly-language tree: instructions,
// blocks, procedures, modules, and the dual visitor traits used to walk
// and rewrite it.
package ast

// Span is a lightweight source-location marker. The parser that
// produces real spans is out of scope for this core; callers that do
// have source text may populate Start/End themselves.
type Span struct {
	Start int
	End   int
}

// Spanned is the interface for a node that reports its source span.
// The tree's own nodes carry their span in a Span field and do not
// implement it.
type Spanned interface {
	Span() Span
}

package ast

// LibraryPath is a namespaced dotted name, e.g. "std::math::u64".
type LibraryPath string

// Import maps a local alias to the library path it refers to.
type Import struct {
	Alias string
	Path  LibraryPath
}

// Module owns a library path, a set of imports, and an insertion-ordered
// sequence of exports.
type Module struct {
	Path    LibraryPath
	Imports []Import
	Exports []Export

	// Constants is the module's constant table, consulted by the
	// module-graph rewrite pass to replace Immediate.Constant arms with
	// concrete values.
	Constants map[string]uint64
}

// ImportPath resolves a local alias to the library path it refers to,
// in declaration order (first match wins, matching the parser's own
// duplicate-import diagnostics being out of scope here).
func (m *Module) ImportPath(alias string) (LibraryPath, bool) {
	for _, imp := range m.Imports {
		if imp.Alias == alias {
			return imp.Path, true
		}
	}
	return "", false
}

// Procedures iterates the module's concrete Procedure exports in
// declaration order, skipping aliases. Index corresponds to
// ProcedureIndex only when every export is a Procedure; callers that
// need ProcedureIndex stability over the full Exports slice should index
// Exports directly.
func (m *Module) Procedures() []*Procedure {
	procs := make([]*Procedure, 0, len(m.Exports))
	for _, e := range m.Exports {
		if e.Kind == ExportKindProcedure {
			procs = append(procs, e.Procedure)
		}
	}
	return procs
}

// Resolve looks up an export by its local name.
func (m *Module) Resolve(name string) (*Export, bool) {
	for i := range m.Exports {
		if m.Exports[i].Name() == name {
			return &m.Exports[i], true
		}
	}
	return nil, false
}

// Clone performs a shallow structural copy of the module suitable for
// the module graph's clone-on-write rewrite step: the Exports and
// Imports slices are copied so that adding, removing or replacing the
// clone's exports or imports never affects the original module.
func (m *Module) Clone() *Module {
	clone := &Module{
		Path:      m.Path,
		Imports:   append([]Import(nil), m.Imports...),
		Exports:   append([]Export(nil), m.Exports...),
		Constants: make(map[string]uint64, len(m.Constants)),
	}
	for k, v := range m.Constants {
		clone.Constants[k] = v
	}
	// Exports hold pointers to Procedure/ProcedureAlias; copy those, and
	// each procedure's Invoked list, so the clone has its own. Procedure
	// bodies are not copied: the clone shares its blocks, instructions and
	// invocation targets with the original, so rewriting a target in the
	// clone also changes it in the original.
	for i, e := range clone.Exports {
		if e.Kind == ExportKindProcedure {
			p := *e.Procedure
			p.Invoked = append([]Invoke(nil), e.Procedure.Invoked...)
			clone.Exports[i].Procedure = &p
		} else {
			a := *e.Alias
			clone.Exports[i].Alias = &a
		}
	}
	return clone
}

package vmvm

import (
	"github.com/vybium/vybium-mast-vm/internal/advice"
	"github.com/vybium/vybium-mast-vm/internal/executor"
	"github.com/vybium/vybium-mast-vm/internal/field"
)

// Execute runs program to completion against host, seeded with inputs,
// and returns the final operand stack: a thin public function
// converting to/from the internal representation around a single call
// into the private engine.
func Execute(program *Program, inputs StackInputs, host advice.Host, opts ExecutionOptions) (StackOutputs, error) {
	felts := make([]field.Felt, len(inputs))
	for i, v := range inputs {
		felts[i] = field.New(v)
	}

	eng := executor.New(program.forest, host, opts)
	eng.SeedInputs(felts)

	if err := eng.Run(program.entry); err != nil {
		return nil, wrapExecution(err)
	}

	raw := eng.Outputs()
	out := make(StackOutputs, len(raw))
	for i, v := range raw {
		out[i] = v.Uint64()
	}
	return out, nil
}

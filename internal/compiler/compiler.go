// Package compiler lowers the high-level assembly instruction set
// (internal/ast) into the primitive MAST operation set (internal/mast),
// building Block/Join/Split/Loop/Call/Dyn nodes as it goes.
//
// Grounded on assembly/src/assembler/instruction/mod.rs: most
// instructions append one or a short, fixed macro sequence of
// primitive operations to the current block buffer; control-flow and
// invocation instructions flush the buffer into a Block node and splice
// in a Split/Loop/Call/Dyn node instead.
package compiler

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/ast"
	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/mast"
)

// Compiler lowers procedure bodies into a shared mast.Forest. It owns
// the error-code registry: every distinct assertion message seen across
// the whole compiled program is assigned a stable field element, the
// way BlockBuilder does in the source project.
type Compiler struct {
	forest *mast.Forest
	debug  bool

	errorCodes    map[string]field.Felt
	nextErrorCode uint64
}

// New returns a Compiler that lowers into forest. debug enables
// AsmOp/Debug decorator emission.
func New(forest *mast.Forest, debug bool) *Compiler {
	return &Compiler{
		forest:     forest,
		debug:      debug,
		errorCodes: make(map[string]field.Felt),
	}
}

// ErrorCodeFor returns the stable field element assigned to msg,
// registering it on first use. An empty message maps to the zero code,
// signifying "no custom message" (a plain assert/assert_eq).
func (c *Compiler) ErrorCodeFor(msg string) field.Felt {
	if msg == "" {
		return field.Zero
	}
	if code, ok := c.errorCodes[msg]; ok {
		return code
	}
	c.nextErrorCode++
	code := field.New(c.nextErrorCode)
	c.errorCodes[msg] = code
	return code
}

// ErrorCodes returns a snapshot of the registry, keyed by message, for
// diagnostics/debugging tooling built on top of the compiler.
func (c *Compiler) ErrorCodes() map[string]field.Felt {
	out := make(map[string]field.Felt, len(c.errorCodes))
	for k, v := range c.errorCodes {
		out[k] = v
	}
	return out
}

// CompileProcedure lowers proc's body into the forest and registers the
// resulting node as a root (a callable procedure entry point).
func (c *Compiler) CompileProcedure(proc *ast.Procedure) (mast.MastNodeId, error) {
	id, err := c.compileBlock(&proc.Body)
	if err != nil {
		return mast.NoNode, fmt.Errorf("compiler: procedure %q: %w", proc.Name, err)
	}
	c.forest.MakeRoot(id)
	return id, nil
}

// blockBuffer accumulates primitive operations and decorators destined
// for a single Block node.
type blockBuffer struct {
	ops        []mast.Operation
	decorators []mast.DecoratorId
}

func (bb *blockBuffer) push(op mast.Operation) { bb.ops = append(bb.ops, op) }

// flush materializes the buffer's contents as a Block node, if
// non-empty, and clears the buffer for reuse.
func (c *Compiler) flush(bb *blockBuffer) (mast.MastNodeId, error) {
	if len(bb.ops) == 0 {
		return mast.NoNode, nil
	}
	id, err := c.forest.NewBlock(bb.ops, bb.decorators)
	bb.ops, bb.decorators = nil, nil
	return id, err
}

// compileBlock lowers an ast.Block into a single MastNodeId, chaining
// consecutive primitive runs and control-flow/invocation nodes together
// with Join.
func (c *Compiler) compileBlock(block *ast.Block) (mast.MastNodeId, error) {
	bb := &blockBuffer{}
	chain := mast.NoNode

	appendNode := func(id mast.MastNodeId) error {
		if id == mast.NoNode {
			return nil
		}
		if chain == mast.NoNode {
			chain = id
			return nil
		}
		joined, err := c.forest.NewJoin(chain, id)
		if err != nil {
			return err
		}
		chain = joined
		return nil
	}

	for i := range block.Ops {
		op := &block.Ops[i]
		switch op.Kind {
		case ast.OpKindInst:
			if isInvocation(op.Inst.Op) {
				flushed, err := c.flush(bb)
				if err != nil {
					return mast.NoNode, err
				}
				if err := appendNode(flushed); err != nil {
					return mast.NoNode, err
				}
				nodeID, err := c.compileInvocation(op.Inst)
				if err != nil {
					return mast.NoNode, err
				}
				if err := appendNode(nodeID); err != nil {
					return mast.NoNode, err
				}
				continue
			}
			if err := c.compileInstruction(op.Inst, bb); err != nil {
				return mast.NoNode, err
			}

		case ast.OpKindIf:
			flushed, err := c.flush(bb)
			if err != nil {
				return mast.NoNode, err
			}
			if err := appendNode(flushed); err != nil {
				return mast.NoNode, err
			}
			thenID, err := c.compileBlock(&op.Then)
			if err != nil {
				return mast.NoNode, err
			}
			elseID, err := c.compileBlock(&op.Else)
			if err != nil {
				return mast.NoNode, err
			}
			splitID, err := c.forest.NewSplit(thenID, elseID)
			if err != nil {
				return mast.NoNode, err
			}
			if err := appendNode(splitID); err != nil {
				return mast.NoNode, err
			}

		case ast.OpKindWhile:
			flushed, err := c.flush(bb)
			if err != nil {
				return mast.NoNode, err
			}
			if err := appendNode(flushed); err != nil {
				return mast.NoNode, err
			}
			bodyID, err := c.compileBlock(&op.Body)
			if err != nil {
				return mast.NoNode, err
			}
			loopID, err := c.forest.NewLoop(bodyID)
			if err != nil {
				return mast.NoNode, err
			}
			if err := appendNode(loopID); err != nil {
				return mast.NoNode, err
			}

		case ast.OpKindRepeat:
			flushed, err := c.flush(bb)
			if err != nil {
				return mast.NoNode, err
			}
			if err := appendNode(flushed); err != nil {
				return mast.NoNode, err
			}
			bodyID, err := c.compileBlock(&op.Body)
			if err != nil {
				return mast.NoNode, err
			}
			for n := uint32(0); n < op.Count; n++ {
				if err := appendNode(bodyID); err != nil {
					return mast.NoNode, err
				}
			}
		}
	}

	flushed, err := c.flush(bb)
	if err != nil {
		return mast.NoNode, err
	}
	if err := appendNode(flushed); err != nil {
		return mast.NoNode, err
	}

	if chain == mast.NoNode {
		// An empty block still needs a node: a single Noop, matching the
		// source project's "at least one operation per Block" invariant.
		return c.forest.NewBlock([]mast.Operation{{Kind: mast.OpNoop}}, nil)
	}
	return chain, nil
}

func isInvocation(op ast.Opcode) bool {
	switch op {
	case ast.OpExec, ast.OpCall, ast.OpSyscall, ast.OpDynexec, ast.OpDyncall:
		return true
	default:
		return false
	}
}

// compileInvocation lowers exec/call/syscall/dynexec/dyncall into a
// Call or Dyn node. exec is the only form that does not introduce a
// node of its own: an already-resolved exec target is inlined by
// reference to the callee's own compiled subtree when known, or left as
// an External placeholder otherwise (mirroring the module graph's
// PhantomCall bookkeeping: a later MAST forest merge supersedes it once
// the real definition is merged in).
func (c *Compiler) compileInvocation(inst ast.Instruction) (mast.MastNodeId, error) {
	switch inst.Op {
	case ast.OpDynexec:
		return c.forest.NewDyn(false)
	case ast.OpDyncall:
		return c.forest.NewDyn(true)
	}

	if inst.Target == nil {
		return mast.NoNode, fmt.Errorf("compiler: %v instruction missing invocation target", inst.Op)
	}

	calleeID, err := c.resolveOrExternal(*inst.Target)
	if err != nil {
		return mast.NoNode, err
	}

	switch inst.Op {
	case ast.OpExec:
		// exec inlines the callee's body directly: the callee subtree is
		// referenced by id, so its cost and cycles are exactly those of
		// the inlined procedure, with no call-stack frame.
		return calleeID, nil
	case ast.OpCall:
		return c.forest.NewCall(calleeID, false)
	case ast.OpSyscall:
		return c.forest.NewCall(calleeID, true)
	default:
		return mast.NoNode, fmt.Errorf("compiler: unsupported invocation opcode %v", inst.Op)
	}
}

// resolveOrExternal returns the forest node for an already-resolved
// MAST-root target, inserting an External placeholder if the callee has
// not been compiled (and therefore merged into this forest) yet.
func (c *Compiler) resolveOrExternal(target ast.InvocationTarget) (mast.MastNodeId, error) {
	if target.Kind != ast.TargetMastRoot {
		return mast.NoNode, fmt.Errorf("compiler: invocation target was not resolved to a MAST root before compilation")
	}
	if id, ok := c.forest.GetByDigest(target.Digest); ok {
		return id, nil
	}
	return c.forest.NewExternal(target.Digest)
}

package executor

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/field"
	"github.com/vybium/vybium-mast-vm/internal/mast"
)

// Run executes the procedure rooted at rootID to completion.
func (e *Engine) Run(rootID mast.MastNodeId) error {
	return e.execNode(rootID)
}

func (e *Engine) tick() error {
	e.clk++
	if e.opts.MaxCycles != 0 && e.clk > e.opts.MaxCycles {
		return &CycleLimitExceededError{Limit: e.opts.MaxCycles}
	}
	return nil
}

func (e *Engine) execNode(id mast.MastNodeId) error {
	node, err := e.forest.Get(id)
	if err != nil {
		return err
	}
	switch node.Kind {
	case mast.KindBlock:
		// Block costs 2 framing cycles (entry + exit) around its op
		// stream, on top of whatever each op inside it ticks for.
		if err := e.tick(); err != nil {
			return err
		}
		if err := e.execBlock(node); err != nil {
			return err
		}
		return e.tick()
	case mast.KindJoin:
		// Join costs 2 framing cycles (entry + exit) around its children.
		if err := e.tick(); err != nil {
			return err
		}
		if err := e.execNode(node.Left); err != nil {
			return err
		}
		if err := e.execNode(node.Right); err != nil {
			return err
		}
		return e.tick()
	case mast.KindSplit:
		// Split costs the same 2 framing cycles as Join, plus 1 more for
		// popping the branch condition off the stack.
		if err := e.tick(); err != nil {
			return err
		}
		cond := e.pop()
		if err := e.tick(); err != nil {
			return err
		}
		var err error
		switch {
		case cond.Equal(field.New(1)):
			err = e.execNode(node.Left)
		case cond.IsZero():
			err = e.execNode(node.Right)
		default:
			err = &NotBinaryValueError{Clk: e.clk, Value: cond.Uint64()}
		}
		if err != nil {
			return err
		}
		return e.tick()
	case mast.KindLoop:
		// Loop costs 2 framing cycles (entry + exit) for the node as a
		// whole, independent of how many times its body repeats.
		if err := e.tick(); err != nil {
			return err
		}
		for {
			cond := e.pop()
			if cond.IsZero() {
				return e.tick()
			}
			if !cond.Equal(field.New(1)) {
				return &NotBinaryValueError{Clk: e.clk, Value: cond.Uint64()}
			}
			if err := e.execNode(node.Left); err != nil {
				return err
			}
		}
	case mast.KindCall:
		return e.execCall(node)
	case mast.KindDyn:
		return e.execDyn(node)
	case mast.KindExternal:
		return e.execExternal(node)
	default:
		return fmt.Errorf("executor: unknown node kind %v", node.Kind)
	}
}

// execCall pushes a fresh memory context for the callee (procedure
// locals are isolated per call), runs it, then restores the caller's
// context. Syscalls also set inSyscall for the duration of the callee
// body; no operation reads that flag.
func (e *Engine) execCall(node mast.MastNode) error {
	savedCtx, savedFmp, savedSyscall := e.ctx, e.fmp, e.inSyscall
	e.ctx = e.clk // a fresh, never-reused context id per call
	e.fmp = field.Zero
	if node.IsSyscall {
		e.inSyscall = true
	}

	err := e.execNode(node.Callee)

	e.ctx, e.fmp, e.inSyscall = savedCtx, savedFmp, savedSyscall
	return err
}

// execDyn resolves the callee digest from the top of the stack at
// runtime and executes it; dyncall additionally isolates a fresh
// memory context the way Call does.
func (e *Engine) execDyn(node mast.MastNode) error {
	digest, err := popDigest(e)
	if err != nil {
		return err
	}
	id, ok := e.forest.GetByDigest(digest)
	if !ok {
		return &MastNodeNotFoundError{Digest: fmt.Sprintf("%v", digest)}
	}
	if node.IsDyncall {
		return e.execCall(mast.MastNode{Kind: mast.KindCall, Callee: id, IsSyscall: false})
	}
	return e.execNode(id)
}

// execExternal resolves an unmerged reference node through the advice
// host, which is expected to supply both the entry point and the
// concrete forest (e.g. a linked library) it lives in, then continues
// execution in that forest until the resolved subtree completes.
func (e *Engine) execExternal(node mast.MastNode) error {
	id, resolvedForest, err := e.host.ResolveExternal(node.Digest)
	if err != nil {
		return err
	}
	if resolvedForest == nil {
		return &MastNodeNotFoundError{Digest: fmt.Sprintf("%v", node.Digest)}
	}

	savedForest := e.forest
	e.forest = resolvedForest
	err = e.execNode(id)
	e.forest = savedForest
	return err
}

func popDigest(e *Engine) (field.Digest, error) {
	var d field.Digest
	for i := field.WordSize - 1; i >= 0; i-- {
		d[i] = e.pop()
	}
	return d, nil
}

func (e *Engine) execBlock(node mast.MastNode) error {
	for _, op := range node.Ops {
		if err := e.tick(); err != nil {
			return err
		}
		if err := e.execOperation(op); err != nil {
			return err
		}
	}
	return nil
}

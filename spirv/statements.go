package spirv

import (
	"github.com/sillang/silc/sem"
	"github.com/sillang/silc/sil"
)

// lowerStmt dispatches on the statement's concrete type. Each case
// emits directly into the writer's current function buffer. VarDecl
// and ConstDecl never reach here: lowerBody hoists every declaration
// in a statement list out to its own phase before calling lowerStmt on
// what remains.
func (c *Context) lowerStmt(s sil.Stmt) error {
	switch st := s.(type) {
	case *sil.ReturnStmt:
		return c.lowerReturn(st)
	case *sil.AssignStmt:
		return c.lowerAssign(st)
	case *sil.IfStmt:
		return c.lowerIf(st)
	case *sil.LoopStmt:
		return c.lowerLoop(st)
	case *sil.BreakStmt:
		return c.lowerBreak(st)
	default:
		return c.internalf(s.Pos(), "unhandled statement kind %T", s)
	}
}

// lowerReturn emits OpReturn for a valueless return. A return carrying
// a value is rejected with a SemanticError before anything is lowered,
// since kernels are always void.
func (c *Context) lowerReturn(r *sil.ReturnStmt) error {
	if r.Value != nil {
		return c.semanticErrorf(r.Span, "kernel return values are not supported")
	}
	c.w.Emit(string(OpReturn))
	return nil
}

// lowerAssign resolves the target to a pointer id, lowers the value,
// applies the bool-to-uint store coercion when needed, then stores.
func (c *Context) lowerAssign(a *sil.AssignStmt) error {
	ptrID, targetType, err := c.lowerTarget(a.Target)
	if err != nil {
		return err
	}
	valID, valType, err := c.lowerExpr(a.Value)
	if err != nil {
		return err
	}
	valID, err = c.coerceStore(valID, valType, targetType, a.Span)
	if err != nil {
		return err
	}
	c.w.Emitf("%s %s %s", OpStore, ptrID, valID)
	return nil
}

// lowerTarget resolves an assignment target to a storage pointer id and
// the type of the value that pointer addresses. For a plain identifier
// this is the local's or parameter's own slot (entry.id is already an
// OpVariable/OpFunctionParameter pointer regardless of whether the
// declared value type happens to be a pointer itself); for a
// dereference it is the pointee of the inner pointer expression.
func (c *Context) lowerTarget(target sil.Expr) (string, sem.Type, error) {
	switch t := target.(type) {
	case *sil.Ident:
		entry, ok := c.lookupSymbol(t.Name)
		if !ok {
			return "", sem.Type{}, c.semanticErrorf(t.Span, "unknown identifier %q", t.Name)
		}
		if !entry.isVariable {
			return "", sem.Type{}, c.semanticErrorf(t.Span, "cannot assign to %q", t.Name)
		}
		return entry.id, entry.typ, nil
	case *sil.Dereference:
		innerID, innerType, err := c.lowerExpr(t.Inner)
		if err != nil {
			return "", sem.Type{}, err
		}
		if !innerType.Pointer {
			return "", sem.Type{}, c.semanticErrorf(t.Span, "cannot dereference a non-pointer value")
		}
		return innerID, sem.ScalarType(innerType.Scalar), nil
	default:
		return "", sem.Type{}, c.internalf(target.Pos(), "unsupported assignment target %T", target)
	}
}

// lowerIf allocates then/merge/else labels, lowers the condition,
// emits the selection-merge structure, and lowers each arm.
func (c *Context) lowerIf(i *sil.IfStmt) error {
	condID, condType, err := c.lowerExpr(i.Cond)
	if err != nil {
		return err
	}
	if condType.Scalar != sem.Bool || condType.Pointer {
		return c.semanticErrorf(i.Cond.Pos(), "if condition must be boolean, got %s", condType)
	}

	thenLabel := c.w.AllocID()
	mergeLabel := c.w.AllocID()
	elseLabel := mergeLabel
	if len(i.Else) > 0 {
		elseLabel = c.w.AllocID()
	}

	c.w.Emitf("%s %s", OpSelectionMerge, mergeLabel)
	c.w.Emitf("%s %s %s %s", OpBranchConditional, condID, thenLabel, elseLabel)

	c.w.Emitf("%s = %s", thenLabel, OpLabel)
	if err := c.lowerBody(i.Then); err != nil {
		return err
	}
	c.w.EnsureTerminated(mergeLabel)

	if len(i.Else) > 0 {
		c.w.Emitf("%s = %s", elseLabel, OpLabel)
		if err := c.lowerBody(i.Else); err != nil {
			return err
		}
		c.w.EnsureTerminated(mergeLabel)
	}

	c.w.Emitf("%s = %s", mergeLabel, OpLabel)
	return nil
}

// lowerLoop builds the header/cond/body/continue/merge label structure
// for an infinite loop, pushing merge onto the break-target stack for
// the duration of the body.
func (c *Context) lowerLoop(l *sil.LoopStmt) error {
	header := c.w.AllocID()
	cond := c.w.AllocID()
	body := c.w.AllocID()
	cont := c.w.AllocID()
	merge := c.w.AllocID()

	c.w.EnsureTerminated(header)
	c.w.Emitf("%s = %s", header, OpLabel)
	c.w.Emitf("%s %s %s", OpLoopMerge, merge, cont)
	c.w.Emitf("%s %s", OpBranch, cond)

	c.w.Emitf("%s = %s", cond, OpLabel)
	c.w.Emitf("%s %s", OpBranch, body)

	c.loopStack = append(c.loopStack, merge)
	c.w.Emitf("%s = %s", body, OpLabel)
	if err := c.lowerBody(l.Body); err != nil {
		c.loopStack = c.loopStack[:len(c.loopStack)-1]
		return err
	}
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	c.w.EnsureTerminated(cont)

	c.w.Emitf("%s = %s", cont, OpLabel)
	c.w.Emitf("%s %s", OpBranch, cond)

	c.w.Emitf("%s = %s", merge, OpLabel)
	return nil
}

func (c *Context) lowerBreak(b *sil.BreakStmt) error {
	if len(c.loopStack) == 0 {
		return c.semanticErrorf(b.Span, "break outside a loop")
	}
	target := c.loopStack[len(c.loopStack)-1]
	c.w.Emitf("%s %s", OpBranch, target)
	return nil
}

// lookupSymbol resolves name against parameters, locals, then user
// constants, in that priority order (params and locals share a scope;
// shadowing a constant with a same-named local is not diagnosed here
// since the grammar gives no syntax for it to arise ambiguously).
func (c *Context) lookupSymbol(name string) (symbolEntry, bool) {
	if e, ok := c.paramIDs[name]; ok {
		return e, true
	}
	if e, ok := c.varIDs[name]; ok {
		return e, true
	}
	if e, ok := c.userConsts[name]; ok {
		return e, true
	}
	return symbolEntry{}, false
}

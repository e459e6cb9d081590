package spirv

import (
	"fmt"

	"github.com/sillang/silc/sem"
	"github.com/sillang/silc/sil"
)

// generateKernel lowers one kernel's signature body and statements
// into the function section, after declareKernelSignature has already
// allocated its function id, function-type id, and entry point line.
func (c *Context) generateKernel(k *sil.Kernel) error {
	c.resetKernelScope()
	c.w.BeginFunction()

	fid := c.kernelFuncIDs[k.Name]
	ftypeID := c.kernelFuncTypeIDs[k.Name]
	c.w.Emitf("%s = %s %s None %s", fid, OpFunction, c.typeIDs[sem.Void], ftypeID)

	for _, p := range k.Params {
		typ, err := c.resolveType(p.Type, k.Span)
		if err != nil {
			return err
		}
		ptrID, ok := c.ptrIDs[ptrKey{sem.CrossWorkgroup, typ.Scalar}]
		if !ok {
			return c.internalf(k.Span, "missing pointer type table entry for parameter %q", p.Name)
		}
		pid := c.w.AllocID()
		c.w.Emitf("%s = %s %s", pid, OpFunctionParameter, ptrID)
		// Physically every kernel parameter is a CrossWorkgroup pointer
		// register (GPU kernel args are always buffers), but the symbol
		// table records the declared type as written: a bare scalar
		// param auto-loads on read and stores directly on assign; a
		// ptr_<base> param returns its pointer value bare, requiring an
		// explicit dereference, exactly like a local of the same
		// declared type.
		c.paramIDs[p.Name] = symbolEntry{id: pid, typ: typ, isVariable: true}
	}

	entryLabel := c.w.AllocID()
	c.w.Emitf("%s = %s", entryLabel, OpLabel)

	if err := c.lowerBody(k.Body); err != nil {
		return err
	}

	if !c.w.IsTerminated() {
		c.w.Emit(string(OpReturn))
	}
	c.w.Emit(string(OpFunctionEnd))
	c.w.EndFunction()
	return nil
}

// lowerModuleScope walks every bare top-level statement exactly as if
// it were one kernel's body, so that a module-scope const resolves
// into userConsts (visible to every kernel) and a type error among
// bare top-level statements is still reported, per the grammar's
// allowance for a program with no kernel at all. The instructions this
// produces are never kept: they are built in a scratch function buffer
// that the next BeginFunction call (the first kernel, or nothing if
// there is none) discards. A literal-valued const resolves to a bare
// constant id before anything is emitted into that buffer, so it
// survives the discard; a non-literal const would need a storage slot
// and an initializer store inside the buffer, which would not survive
// it, so lowerBody rejects that case while inModuleScope is set.
func (c *Context) lowerModuleScope(stmts []sil.Stmt) error {
	if len(stmts) == 0 {
		return nil
	}
	c.resetKernelScope()
	c.w.BeginFunction()
	c.inModuleScope = true
	defer func() { c.inModuleScope = false }()
	return c.lowerBody(stmts)
}

// lowerBody implements the five-phase kernel body lowering: literal
// consts resolve first, then locals get their OpVariable declarations,
// then local initializers store, then non-literal consts resolve
// (variable plus initializer store, exactly like a local), then the
// remaining statements execute in source order.
func (c *Context) lowerBody(stmts []sil.Stmt) error {
	var locals []*sil.VarDecl
	var consts []*sil.ConstDecl
	var rest []sil.Stmt

	for _, s := range stmts {
		switch st := s.(type) {
		case *sil.VarDecl:
			locals = append(locals, st)
		case *sil.ConstDecl:
			consts = append(consts, st)
		default:
			rest = append(rest, s)
		}
	}

	for _, cd := range consts {
		if isLiteral(cd.Init) {
			if err := c.resolveLiteralConst(cd); err != nil {
				return err
			}
		}
	}
	for _, vd := range locals {
		if err := c.declareLocal(vd); err != nil {
			return err
		}
	}
	for _, vd := range locals {
		if err := c.storeLocalInit(vd); err != nil {
			return err
		}
	}
	for _, cd := range consts {
		if !isLiteral(cd.Init) {
			if c.inModuleScope {
				return c.semanticErrorf(cd.Span, "module-scope const %q must have a literal initializer; a non-literal const is only allowed inside a kernel body", cd.Name)
			}
			if err := c.declareAndStoreConst(cd); err != nil {
				return err
			}
		}
	}
	for _, s := range rest {
		if err := c.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func isLiteral(e sil.Expr) bool {
	_, ok := e.(*sil.Literal)
	return ok
}

// resolveLiteralConst resolves a const whose initializer is a bare
// literal directly to a constant id: reading it later costs nothing,
// since it is already a value, not a variable.
func (c *Context) resolveLiteralConst(cd *sil.ConstDecl) error {
	id, typ, err := c.lowerExpr(cd.Init)
	if err != nil {
		return err
	}
	declared, err := c.resolveType(cd.Type, cd.Span)
	if err != nil {
		return err
	}
	if !declared.Equal(typ) {
		declared = typ
	}
	c.userConsts[cd.Name] = symbolEntry{id: id, typ: declared, isVariable: false}
	return nil
}

// declareAndStoreConst handles a const whose initializer is not a bare
// literal: it needs a Function-storage slot and an OpStore, so it is
// lowered exactly like a local variable, then recorded in userConsts
// rather than varIDs.
func (c *Context) declareAndStoreConst(cd *sil.ConstDecl) error {
	declared, err := c.resolveType(cd.Type, cd.Span)
	if err != nil {
		return err
	}
	ptrID, err := c.functionPointerFor(declared, cd.Span)
	if err != nil {
		return err
	}
	id := c.w.AllocID()
	c.w.Emitf("%s = %s %s Function", id, OpVariable, ptrID)
	c.userConsts[cd.Name] = symbolEntry{id: id, typ: declared, isVariable: true}

	valID, valType, err := c.lowerExpr(cd.Init)
	if err != nil {
		return err
	}
	valID, err = c.coerceStore(valID, valType, declared, cd.Span)
	if err != nil {
		return err
	}
	c.w.Emitf("%s %s %s", OpStore, id, valID)
	return nil
}

// declareLocal emits a bare OpVariable for vd; its declared type may
// itself be a pointer type, in which case the storage slot needs an
// on-demand "Function pointer to pointer" type.
func (c *Context) declareLocal(vd *sil.VarDecl) error {
	declared, err := c.resolveType(vd.Type, vd.Span)
	if err != nil {
		return err
	}
	// Literal initializers on a declared scalar type may widen the
	// declared type, e.g. a float literal assigned to a declared uint
	// promotes the declaration to float.
	if lit, ok := vd.Init.(*sil.Literal); ok && !declared.Pointer {
		if lit.Kind == sil.TokenFloatLiteral {
			declared = sem.ScalarType(sem.Float)
		}
	}
	ptrID, err := c.functionPointerFor(declared, vd.Span)
	if err != nil {
		return err
	}
	id := c.w.AllocID()
	c.w.Emitf("%s = %s %s Function", id, OpVariable, ptrID)
	c.varIDs[vd.Name] = symbolEntry{id: id, typ: declared, isVariable: true}
	return nil
}

func (c *Context) storeLocalInit(vd *sil.VarDecl) error {
	entry, ok := c.varIDs[vd.Name]
	if !ok {
		return c.internalf(vd.Span, "local %q was not declared before its initializer store", vd.Name)
	}
	valID, valType, err := c.lowerExpr(vd.Init)
	if err != nil {
		return err
	}
	valID, err = c.coerceStore(valID, valType, entry.typ, vd.Span)
	if err != nil {
		return err
	}
	c.w.Emitf("%s %s %s", OpStore, entry.id, valID)
	return nil
}

// functionPointerFor returns the Function-storage pointer id backing a
// variable of declared type t, allocating the on-demand pointer-to-
// pointer type the first time a pointer-typed local is declared.
func (c *Context) functionPointerFor(t sem.Type, span sil.Span) (string, error) {
	if !t.Pointer {
		ptrID, ok := c.ptrIDs[ptrKey{sem.Function, t.Scalar}]
		if !ok {
			return "", c.internalf(span, "missing Function pointer type for %s", t.Scalar)
		}
		return ptrID, nil
	}
	innerID, ok := c.ptrIDs[ptrKey{t.Storage, t.Scalar}]
	if !ok {
		return "", c.internalf(span, "missing pointer type for %s", t)
	}
	if cached, ok := c.ptrToPtr[innerID]; ok {
		return cached, nil
	}
	id := c.w.AllocID()
	c.w.ExtraTypeLine(fmt.Sprintf("%s = %s Function %s", id, OpTypePointer, innerID))
	c.ptrToPtr[innerID] = id
	return id, nil
}

// coerceStore applies the boolean-to-uint coercion the store-side
// invariant requires when a boolean value is stored into a uint slot,
// and otherwise requires valType and target to match exactly.
func (c *Context) coerceStore(valID string, valType, target sem.Type, span sil.Span) (string, error) {
	if valType.Equal(target) {
		return valID, nil
	}
	if valType.Scalar == sem.Bool && !valType.Pointer && target.Scalar == sem.UInt && !target.Pointer {
		return c.boolToUint(valID), nil
	}
	return "", c.semanticErrorf(span, "type mismatch: cannot store %s into %s", valType, target)
}

// boolToUint lowers a boolean value id to uint via OpSelect(cond, 1, 0).
func (c *Context) boolToUint(boolID string) string {
	one := c.uintConstant(1)
	zero := c.uintConstant(0)
	id := c.w.AllocID()
	c.w.Emitf("%s = %s %s %s %s %s", id, OpSelect, c.typeIDs[sem.UInt], boolID, one, zero)
	return id
}

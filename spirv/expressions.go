package spirv

import (
	"strconv"
	"strings"

	"github.com/sillang/silc/sem"
	"github.com/sillang/silc/sil"
)

// lowerExpr lowers e, returning the id of its result value and the
// value's type. Pointer-typed results only arise from AddressOf and
// from an Ident naming a parameter, local, or const whose declared type
// is a pointer type.
func (c *Context) lowerExpr(e sil.Expr) (string, sem.Type, error) {
	switch expr := e.(type) {
	case *sil.Literal:
		return c.lowerLiteral(expr)
	case *sil.Ident:
		return c.lowerIdent(expr)
	case *sil.AddressOf:
		return c.lowerAddressOf(expr)
	case *sil.Dereference:
		return c.lowerDereference(expr)
	case *sil.UnaryOp:
		return c.lowerUnary(expr)
	case *sil.BinaryOp:
		return c.lowerBinary(expr)
	case *sil.CastExpr:
		return c.lowerCast(expr)
	case *sil.BitwiseExpr:
		return c.lowerExpr(expr.Inner)
	default:
		return "", sem.Type{}, c.internalf(e.Pos(), "unhandled expression kind %T", e)
	}
}

func (c *Context) lowerLiteral(l *sil.Literal) (string, sem.Type, error) {
	text := strings.Join(strings.Fields(l.Value), "")
	switch l.Kind {
	case sil.TokenIntLiteral:
		v, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return "", sem.Type{}, c.semanticErrorf(l.Span, "malformed integer literal %q", l.Value)
		}
		id := c.internalConstant(sem.UInt, v, strconv.FormatUint(v, 10))
		return id, sem.ScalarType(sem.UInt), nil
	case sil.TokenFloatLiteral:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return "", sem.Type{}, c.semanticErrorf(l.Span, "malformed float literal %q", l.Value)
		}
		id := c.internalConstant(sem.Float, floatBits(v), strconv.FormatFloat(v, 'g', -1, 32))
		return id, sem.ScalarType(sem.Float), nil
	default:
		return "", sem.Type{}, c.internalf(l.Span, "literal token has non-literal kind %s", l.Kind)
	}
}

// lowerIdent resolves name against the symbol table. A pointer-typed
// entry (a parameter, local, or const whose declared type is itself a
// pointer) returns its id directly; any other parameter, local, or
// non-literal const loads the scalar value through its id, and a
// literal-resolved const returns the bare constant id with no load.
func (c *Context) lowerIdent(i *sil.Ident) (string, sem.Type, error) {
	entry, ok := c.lookupSymbol(i.Name)
	if !ok {
		return "", sem.Type{}, c.semanticErrorf(i.Span, "unknown identifier %q", i.Name)
	}
	if !entry.isVariable {
		return entry.id, entry.typ, nil
	}
	if entry.typ.Pointer {
		return entry.id, entry.typ, nil
	}
	scalarTypeID, ok := c.typeIDs[entry.typ.Scalar]
	if !ok {
		return "", sem.Type{}, c.internalf(i.Span, "missing scalar type entry for %s", entry.typ.Scalar)
	}
	id := c.w.AllocID()
	c.w.Emitf("%s = %s %s %s", id, OpLoad, scalarTypeID, entry.id)
	return id, entry.typ, nil
}

// lowerAddressOf is valid only on an identifier naming a non-pointer
// variable; it returns that variable's existing storage pointer.
func (c *Context) lowerAddressOf(a *sil.AddressOf) (string, sem.Type, error) {
	ident, ok := a.Inner.(*sil.Ident)
	if !ok {
		return "", sem.Type{}, c.semanticErrorf(a.Span, "address-of requires a plain identifier")
	}
	entry, ok := c.lookupSymbol(ident.Name)
	if !ok {
		return "", sem.Type{}, c.semanticErrorf(ident.Span, "unknown identifier %q", ident.Name)
	}
	if entry.typ.Pointer {
		return "", sem.Type{}, c.semanticErrorf(a.Span, "cannot take the address of pointer %q", ident.Name)
	}
	if !entry.isVariable {
		return "", sem.Type{}, c.semanticErrorf(a.Span, "cannot take the address of constant %q", ident.Name)
	}
	storage := sem.Function
	if _, isParam := c.paramIDs[ident.Name]; isParam {
		storage = sem.CrossWorkgroup
	}
	return entry.id, sem.Ptr(storage, entry.typ.Scalar), nil
}

func (c *Context) lowerDereference(d *sil.Dereference) (string, sem.Type, error) {
	innerID, innerType, err := c.lowerExpr(d.Inner)
	if err != nil {
		return "", sem.Type{}, err
	}
	if !innerType.Pointer {
		return "", sem.Type{}, c.semanticErrorf(d.Span, "cannot dereference a non-pointer value")
	}
	pointee := sem.ScalarType(innerType.Scalar)
	pointeeTypeID, ok := c.typeIDs[innerType.Scalar]
	if !ok {
		return "", sem.Type{}, c.internalf(d.Span, "missing scalar type entry for %s", innerType.Scalar)
	}
	id := c.w.AllocID()
	c.w.Emitf("%s = %s %s %s", id, OpLoad, pointeeTypeID, innerID)
	return id, pointee, nil
}

func (c *Context) lowerUnary(u *sil.UnaryOp) (string, sem.Type, error) {
	operandID, operandType, err := c.lowerExpr(u.Operand)
	if err != nil {
		return "", sem.Type{}, err
	}
	if operandType.Pointer {
		return "", sem.Type{}, c.semanticErrorf(u.Span, "unary operator %s does not apply to a pointer", u.Op)
	}

	switch u.Op {
	case sil.TokenBang:
		uintID := operandID
		if operandType.Scalar == sem.Bool {
			uintID = c.boolToUint(operandID)
		} else if operandType.Scalar != sem.UInt {
			return "", sem.Type{}, c.semanticErrorf(u.Span, "! requires a boolean or uint operand, got %s", operandType)
		}
		one := c.uintConstant(1)
		diffID := c.w.AllocID()
		c.w.Emitf("%s = %s %s %s %s", diffID, OpISub, c.typeIDs[sem.UInt], one, uintID)
		zero := c.uintConstant(0)
		resultID := c.w.AllocID()
		c.w.Emitf("%s = %s %s %s %s", resultID, OpINotEqual, c.typeIDs[sem.Bool], diffID, zero)
		return resultID, sem.ScalarType(sem.Bool), nil

	case sil.TokenMinus:
		scalarTypeID, ok := c.typeIDs[operandType.Scalar]
		if !ok {
			return "", sem.Type{}, c.internalf(u.Span, "missing scalar type entry for %s", operandType.Scalar)
		}
		id := c.w.AllocID()
		c.w.Emitf("%s = %s %s %s", id, OpSNegate, scalarTypeID, operandID)
		return id, operandType, nil

	case sil.TokenTilde:
		if operandType.Scalar != sem.UInt {
			return "", sem.Type{}, c.semanticErrorf(u.Span, "~ requires a uint operand, got %s", operandType)
		}
		id := c.w.AllocID()
		c.w.Emitf("%s = %s %s %s", id, OpNot, c.typeIDs[sem.UInt], operandID)
		return id, operandType, nil

	default:
		return "", sem.Type{}, c.internalf(u.Span, "unsupported unary operator %s", u.Op)
	}
}

// uintToBool compares a uint value to zero, yielding a boolean —
// the coercion the && / || operands need before their logical op.
func (c *Context) uintToBool(uintID string) string {
	zero := c.uintConstant(0)
	id := c.w.AllocID()
	c.w.Emitf("%s = %s %s %s %s", id, OpINotEqual, c.typeIDs[sem.Bool], uintID, zero)
	return id
}

func (c *Context) lowerBinary(b *sil.BinaryOp) (string, sem.Type, error) {
	leftID, leftType, err := c.lowerExpr(b.Left)
	if err != nil {
		return "", sem.Type{}, err
	}
	rightID, rightType, err := c.lowerExpr(b.Right)
	if err != nil {
		return "", sem.Type{}, err
	}

	if b.Op == sil.TokenAmpAmp || b.Op == sil.TokenPipePipe {
		if leftType.Scalar == sem.UInt && !leftType.Pointer {
			leftID = c.uintToBool(leftID)
			leftType = sem.ScalarType(sem.Bool)
		}
		if rightType.Scalar == sem.UInt && !rightType.Pointer {
			rightID = c.uintToBool(rightID)
			rightType = sem.ScalarType(sem.Bool)
		}
	}

	if !leftType.Equal(rightType) {
		return "", sem.Type{}, c.semanticErrorf(b.Span, "type mismatch in binary op %s: %s vs %s", b.Op, leftType, rightType)
	}
	if leftType.Pointer {
		return "", sem.Type{}, c.semanticErrorf(b.Span, "binary operator %s does not apply to pointers", b.Op)
	}

	op, resultScalar, err := c.binaryOpcode(b.Op, leftType.Scalar, b.Span)
	if err != nil {
		return "", sem.Type{}, err
	}
	resultTypeID, ok := c.typeIDs[resultScalar]
	if !ok {
		return "", sem.Type{}, c.internalf(b.Span, "missing scalar type entry for %s", resultScalar)
	}
	id := c.w.AllocID()
	c.w.Emitf("%s = %s %s %s %s", id, op, resultTypeID, leftID, rightID)
	return id, sem.ScalarType(resultScalar), nil
}

// binaryOpcode implements the operator/operand-type instruction
// selection table, committing to the unsigned comparison and shift
// family throughout.
func (c *Context) binaryOpcode(op sil.TokenKind, operand sem.ScalarKind, span sil.Span) (OpCode, sem.ScalarKind, error) {
	isFloat := operand == sem.Float
	isUint := operand == sem.UInt

	switch op {
	case sil.TokenPlus:
		if isFloat {
			return OpFAdd, sem.Float, nil
		}
		if isUint {
			return OpIAdd, sem.UInt, nil
		}
	case sil.TokenMinus:
		if isFloat {
			return OpFSub, sem.Float, nil
		}
		if isUint {
			return OpISub, sem.UInt, nil
		}
	case sil.TokenStar:
		if isFloat {
			return OpFMul, sem.Float, nil
		}
		if isUint {
			return OpIMul, sem.UInt, nil
		}
	case sil.TokenSlash:
		if isFloat {
			return OpFDiv, sem.Float, nil
		}
		if isUint {
			return OpSDiv, sem.UInt, nil
		}
	case sil.TokenSlashSlash:
		if isUint {
			return OpUDiv, sem.UInt, nil
		}
	case sil.TokenPercent:
		if isUint {
			return OpUMod, sem.UInt, nil
		}
	case sil.TokenEqualEqual:
		if isFloat {
			return OpFOrdEqual, sem.Bool, nil
		}
		return OpIEqual, sem.Bool, nil
	case sil.TokenBangEqual:
		if isFloat {
			return OpFOrdNotEqual, sem.Bool, nil
		}
		return OpINotEqual, sem.Bool, nil
	case sil.TokenLess:
		if isFloat {
			return OpFOrdLessThan, sem.Bool, nil
		}
		if isUint {
			return OpULessThan, sem.Bool, nil
		}
	case sil.TokenGreater:
		if isFloat {
			return OpFOrdGreaterThan, sem.Bool, nil
		}
		if isUint {
			return OpUGreaterThan, sem.Bool, nil
		}
	case sil.TokenLessEqual:
		if isFloat {
			return OpFOrdLessThanEqual, sem.Bool, nil
		}
		if isUint {
			return OpULessThanEqual, sem.Bool, nil
		}
	case sil.TokenGreaterEqual:
		if isFloat {
			return OpFOrdGreaterThanEqual, sem.Bool, nil
		}
		if isUint {
			return OpUGreaterThanEqual, sem.Bool, nil
		}
	case sil.TokenAmpAmp:
		if operand == sem.Bool {
			return OpLogicalAnd, sem.Bool, nil
		}
	case sil.TokenPipePipe:
		if operand == sem.Bool {
			return OpLogicalOr, sem.Bool, nil
		}
	case sil.TokenAmpersand:
		if isUint {
			return OpBitwiseAnd, sem.UInt, nil
		}
	case sil.TokenPipe:
		if isUint {
			return OpBitwiseOr, sem.UInt, nil
		}
	case sil.TokenCaret:
		if isUint {
			return OpBitwiseXor, sem.UInt, nil
		}
	case sil.TokenLessLess:
		if isUint {
			return OpShiftLeftLogical, sem.UInt, nil
		}
	case sil.TokenGreaterGreater:
		if isUint {
			return OpShiftRightLogical, sem.UInt, nil
		}
	}
	return "", 0, c.semanticErrorf(span, "operator %s does not apply to operand type %s", op, operand)
}

// lowerCast supports identity casts (which also cover int/uint, one
// type here) plus the uint→float and float→uint conversions; any other
// source/target pair is rejected.
func (c *Context) lowerCast(cx *sil.CastExpr) (string, sem.Type, error) {
	innerID, innerType, err := c.lowerExpr(cx.Inner)
	if err != nil {
		return "", sem.Type{}, err
	}
	target, err := c.resolveType(cx.TargetType, cx.Span)
	if err != nil {
		return "", sem.Type{}, err
	}
	if innerType.Pointer || target.Pointer {
		return "", sem.Type{}, c.semanticErrorf(cx.Span, "cast does not support pointer types")
	}
	if innerType.Scalar == target.Scalar {
		return innerID, target, nil
	}

	targetTypeID, ok := c.typeIDs[target.Scalar]
	if !ok {
		return "", sem.Type{}, c.internalf(cx.Span, "missing scalar type entry for %s", target.Scalar)
	}

	var op OpCode
	switch {
	case innerType.Scalar == sem.UInt && target.Scalar == sem.Float:
		op = OpConvertUToF
	case innerType.Scalar == sem.Float && target.Scalar == sem.UInt:
		op = OpConvertFToU
	default:
		return "", sem.Type{}, c.semanticErrorf(cx.Span, "unsupported cast from %s to %s", innerType.Scalar, target.Scalar)
	}
	id := c.w.AllocID()
	c.w.Emitf("%s = %s %s %s", id, op, targetTypeID, innerID)
	return id, target, nil
}

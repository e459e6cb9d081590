package sil

// Node is the base interface implemented by every AST type.
type Node interface {
	Pos() Span
}

// Decl is the interface for top-level declarations.
type Decl interface {
	Node
	declNode()
}

// Stmt is the interface for statements.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for expressions.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed translation unit: a sequence of
// top-level declarations plus at most one trailing CPU block.
type Program struct {
	Decls []Decl
	Span  Span
}

// Param is a single kernel parameter.
type Param struct {
	Name string
	Type string
	Span Span
}

// Kernel is a GPU entry point: named, with scalar/pointer parameters
// and a statement body, and no return value.
type Kernel struct {
	Name   string
	Params []*Param
	Body   []Stmt
	Span   Span
}

func (k *Kernel) Pos() Span { return k.Span }
func (k *Kernel) declNode() {}

// VarDecl is a local or module-scoped mutable declaration.
type VarDecl struct {
	Name string
	Type string
	Init Expr
	Span Span
}

func (v *VarDecl) Pos() Span { return v.Span }
func (v *VarDecl) declNode() {}
func (v *VarDecl) stmtNode() {}

// ConstDecl is a local or module-scoped immutable declaration.
type ConstDecl struct {
	Name string
	Type string
	Init Expr
	Span Span
}

func (c *ConstDecl) Pos() Span { return c.Span }
func (c *ConstDecl) declNode() {}
func (c *ConstDecl) stmtNode() {}

// CpuBlock carries the raw, unparsed tail of source following an
// `@cpu` directive. Its contents are forwarded verbatim to the host
// environment and are never interpreted by this compiler.
type CpuBlock struct {
	RawText string
	Span    Span
}

func (c *CpuBlock) Pos() Span { return c.Span }
func (c *CpuBlock) declNode() {}

// Statements

// ReturnStmt optionally carries a value; kernel bodies may only use
// the valueless form (non-void kernel returns are a SemanticError).
type ReturnStmt struct {
	Value Expr
	Span  Span
}

func (r *ReturnStmt) Pos() Span { return r.Span }
func (r *ReturnStmt) stmtNode() {}
func (r *ReturnStmt) declNode() {}

// AssignStmt stores Value into the location named by Target, which is
// always an Ident or a Dereference — never a bare string.
type AssignStmt struct {
	Target Expr
	Value  Expr
	Span   Span
}

func (a *AssignStmt) Pos() Span { return a.Span }
func (a *AssignStmt) stmtNode() {}
func (a *AssignStmt) declNode() {}

// IfStmt is a two-armed conditional; Else is nil when there is no
// `else` clause.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Span Span
}

func (i *IfStmt) Pos() Span { return i.Span }
func (i *IfStmt) stmtNode() {}
func (i *IfStmt) declNode() {}

// LoopStmt is an unconditional loop; termination is only via a Break
// reachable from its body (directly or through nested If statements).
type LoopStmt struct {
	Body []Stmt
	Span Span
}

func (l *LoopStmt) Pos() Span { return l.Span }
func (l *LoopStmt) stmtNode() {}
func (l *LoopStmt) declNode() {}

// BreakStmt exits the innermost enclosing LoopStmt. Outside any loop
// it is a SemanticError.
type BreakStmt struct {
	Span Span
}

func (b *BreakStmt) Pos() Span { return b.Span }
func (b *BreakStmt) stmtNode() {}
func (b *BreakStmt) declNode() {}

// Expressions

// Literal is an integer or floating-point constant. Kind is either
// TokenIntLiteral or TokenFloatLiteral.
type Literal struct {
	Kind  TokenKind
	Value string
	Span  Span
}

func (l *Literal) Pos() Span { return l.Span }
func (l *Literal) exprNode() {}

// Ident references a parameter, local, or user constant by name.
type Ident struct {
	Name string
	Span Span
}

func (i *Ident) Pos() Span { return i.Span }
func (i *Ident) exprNode() {}

// UnaryOp applies Op (one of `! - ~`) to Operand. `*` and `&` are
// represented as Dereference/AddressOf instead.
type UnaryOp struct {
	Op      TokenKind
	Operand Expr
	Span    Span
}

func (u *UnaryOp) Pos() Span { return u.Span }
func (u *UnaryOp) exprNode() {}

// BinaryOp applies Op to Left and Right.
type BinaryOp struct {
	Op    TokenKind
	Left  Expr
	Right Expr
	Span  Span
}

func (b *BinaryOp) Pos() Span { return b.Span }
func (b *BinaryOp) exprNode() {}

// BitwiseExpr wraps an expression parsed under the restricted
// `bitwise { ... }` sub-grammar (`& | ^ << >> ~ -` only).
type BitwiseExpr struct {
	Inner Expr
	Span  Span
}

func (b *BitwiseExpr) Pos() Span { return b.Span }
func (b *BitwiseExpr) exprNode() {}

// CastExpr converts Inner to TargetType: `cast { expr as type }`.
type CastExpr struct {
	Inner      Expr
	TargetType string
	Span       Span
}

func (c *CastExpr) Pos() Span { return c.Span }
func (c *CastExpr) exprNode() {}

// Dereference loads through a pointer-typed Inner.
type Dereference struct {
	Inner Expr
	Span  Span
}

func (d *Dereference) Pos() Span { return d.Span }
func (d *Dereference) exprNode() {}

// AddressOf takes the pointer to a non-pointer, addressable Inner.
// Pointer-to-pointer is rejected at lowering time.
type AddressOf struct {
	Inner Expr
	Span  Span
}

func (a *AddressOf) Pos() Span { return a.Span }
func (a *AddressOf) exprNode() {}

package spirv

import (
	"fmt"
	"math"

	"github.com/sillang/silc/sem"
	"github.com/sillang/silc/sil"
)

// Context holds all generator state for a single compilation: the id
// allocator (via Writer), the type/pointer/constant tables, per-kernel
// symbol tables, and the loop-merge label stack. A fresh Context is
// created per compilation; nothing here is safe to reuse across runs.
type Context struct {
	w *Writer

	// typeIDs maps a scalar kind to its OpType* id. int and uint
	// share the UInt entry, satisfying the "single OpTypeInt"
	// invariant.
	typeIDs map[sem.ScalarKind]string
	// ptrIDs maps (storage, scalar) to its OpTypePointer id.
	ptrIDs map[ptrKey]string

	// kernelFuncIDs maps kernel name to its OpFunction id.
	kernelFuncIDs map[string]string
	// kernelFuncTypeIDs maps kernel name to its OpTypeFunction id.
	kernelFuncTypeIDs map[string]string

	// constants is keyed by (scalar kind, bit pattern) and dedups
	// identical literal values within one compilation.
	constants map[constantKey]string

	// varIDs/paramIDs are per-kernel symbol tables, cleared at the
	// start of each kernel via resetKernelScope. A local's entry always
	// names its Function-storage pointer id; a parameter's entry always
	// names its (physically CrossWorkgroup) OpFunctionParameter id. In
	// both cases entry.typ is the declared type as written: if it is
	// itself a pointer type, reading costs nothing (the id already is
	// the value) and AddressOf is rejected; otherwise reading costs an
	// OpLoad and AddressOf returns the id bare.
	varIDs   map[string]symbolEntry
	paramIDs map[string]symbolEntry

	// userConstDecls is the module-scope const table, populated during
	// the first pass over prog.Decls. userConsts holds each const's
	// resolution: a literal-valued const resolves up front to a bare
	// constant id (isVariable false, no OpLoad on use); a non-literal
	// const gets a Function-storage variable and an initializer store,
	// exactly like a local, and is read the same way.
	userConstDecls map[string]*sil.ConstDecl
	userConsts     map[string]symbolEntry

	// ptrToPtr caches the on-demand "Function pointer to <inner
	// pointer type>" ids needed when a local variable's declared type
	// is itself a pointer.
	ptrToPtr map[string]string

	// loopStack holds the merge label of each enclosing loop,
	// innermost last; break branches to loopStack's top entry.
	loopStack []string

	// inModuleScope is true while lowerBody is walking module-scope
	// statements (lowerModuleScope's scratch buffer, discarded by the
	// next BeginFunction). A non-literal const encountered there would
	// otherwise get an OpVariable/OpStore in that discarded buffer
	// while userConsts still points at its id, so lowerBody rejects
	// that case instead of silently emitting dangling operands.
	inModuleScope bool

	source string
}

// symbolEntry records one name's resolution: the id it lowers to and
// its declared SIL type. isVariable distinguishes a Function-storage
// pointer (reading it costs an OpLoad) from a bare value id such as a
// literal-resolved constant (reading it is free).
type symbolEntry struct {
	id         string
	typ        sem.Type
	isVariable bool
}

type ptrKey struct {
	storage sem.StorageClass
	scalar  sem.ScalarKind
}

type constantKey struct {
	kind sem.ScalarKind
	bits uint64
}

// NewContext creates a Context with empty module-scope tables.
func NewContext(source string) *Context {
	return &Context{
		w:                 NewWriter(),
		typeIDs:           make(map[sem.ScalarKind]string),
		ptrIDs:            make(map[ptrKey]string),
		kernelFuncIDs:     make(map[string]string),
		kernelFuncTypeIDs: make(map[string]string),
		constants:         make(map[constantKey]string),
		userConstDecls:    make(map[string]*sil.ConstDecl),
		userConsts:        make(map[string]symbolEntry),
		ptrToPtr:          make(map[string]string),
		source:            source,
	}
}

// resetKernelScope clears the per-kernel symbol tables and loop stack
// before lowering a new kernel's body.
func (c *Context) resetKernelScope() {
	c.varIDs = make(map[string]symbolEntry)
	c.paramIDs = make(map[string]symbolEntry)
	c.loopStack = nil
}

// Generate lowers prog to SPIR-V assembly text.
func (c *Context) Generate(prog *sil.Program) (string, error) {
	c.w.Capability("Kernel")
	c.w.MemoryModel("Logical", "OpenCL")

	c.emitBuiltinTypes()

	var kernels []*sil.Kernel
	var moduleStmts []sil.Stmt
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *sil.Kernel:
			kernels = append(kernels, decl)
		case *sil.ConstDecl:
			c.userConstDecls[decl.Name] = decl
			moduleStmts = append(moduleStmts, decl)
		case *sil.CpuBlock:
			// Opaque; not lowered.
		case sil.Stmt:
			// A bare top-level form (var, assign, if, loop, break,
			// return): the grammar allows a program with no kernel at
			// all. These never appear in the emitted module — there is
			// no enclosing function for them to live in — but they
			// still need to be walked so a type error among them is
			// still diagnosed.
			moduleStmts = append(moduleStmts, decl)
		}
	}

	if err := c.lowerModuleScope(moduleStmts); err != nil {
		return "", err
	}

	for _, k := range kernels {
		if err := c.declareKernelSignature(k); err != nil {
			return "", err
		}
	}
	for _, k := range kernels {
		if err := c.generateKernel(k); err != nil {
			return "", err
		}
	}

	if err := c.selfCheck(); err != nil {
		return "", err
	}
	return c.w.String(), nil
}

// emitBuiltinTypes emits OpTypeVoid, OpTypeBool, OpTypeInt 32 0,
// OpTypeFloat 32 once, then for each of {int→uint, uint, float, bool}
// both a CrossWorkgroup and a Function OpTypePointer.
func (c *Context) emitBuiltinTypes() {
	voidID := c.w.AllocID()
	c.w.TypeLine(fmt.Sprintf("%s = %s", voidID, OpTypeVoid))
	c.typeIDs[sem.Void] = voidID

	boolID := c.w.AllocID()
	c.w.TypeLine(fmt.Sprintf("%s = %s", boolID, OpTypeBool))
	c.typeIDs[sem.Bool] = boolID

	uintID := c.w.AllocID()
	c.w.TypeLine(fmt.Sprintf("%s = %s 32 0", uintID, OpTypeInt))
	c.typeIDs[sem.UInt] = uintID

	floatID := c.w.AllocID()
	c.w.TypeLine(fmt.Sprintf("%s = %s 32", floatID, OpTypeFloat))
	c.typeIDs[sem.Float] = floatID

	for _, base := range []sem.ScalarKind{sem.UInt, sem.Float, sem.Bool} {
		crossID := c.w.AllocID()
		c.w.TypeLine(fmt.Sprintf("%s = %s CrossWorkgroup %s", crossID, OpTypePointer, c.typeIDs[base]))
		c.ptrIDs[ptrKey{sem.CrossWorkgroup, base}] = crossID

		funcID := c.w.AllocID()
		c.w.TypeLine(fmt.Sprintf("%s = %s Function %s", funcID, OpTypePointer, c.typeIDs[base]))
		c.ptrIDs[ptrKey{sem.Function, base}] = funcID
	}
}

// declareKernelSignature allocates a function id, a function-type id,
// and emits the entry point line for k.
func (c *Context) declareKernelSignature(k *sil.Kernel) error {
	var paramTypeIDs []string
	for _, p := range k.Params {
		typ, err := c.resolveType(p.Type, k.Span)
		if err != nil {
			return err
		}
		ptrID, ok := c.ptrIDs[ptrKey{sem.CrossWorkgroup, typ.Scalar}]
		if !ok {
			return c.internalf(k.Span, "missing pointer type table entry for parameter %q", p.Name)
		}
		paramTypeIDs = append(paramTypeIDs, ptrID)
	}

	ftypeID := c.w.AllocID()
	args := c.typeIDs[sem.Void]
	for _, id := range paramTypeIDs {
		args += " " + id
	}
	c.w.FuncTypeLine(fmt.Sprintf("%s = %s %s", ftypeID, OpTypeFunction, args))
	c.kernelFuncTypeIDs[k.Name] = ftypeID

	fid := c.w.AllocID()
	c.kernelFuncIDs[k.Name] = fid
	c.w.EntryPoint(fid, k.Name)
	return nil
}

func (c *Context) resolveType(name string, span sil.Span) (sem.Type, error) {
	t, err := sem.Parse(name)
	if err != nil {
		return sem.Type{}, NewSemanticError(err.Error(), span, c.source)
	}
	return t, nil
}

// internalConstant allocates (or reuses) a constant of kind k with
// the given bit pattern, deduplicating by (kind, bits) per the
// constant-table design note.
func (c *Context) internalConstant(k sem.ScalarKind, bits uint64, text string) string {
	key := constantKey{kind: k, bits: bits}
	if id, ok := c.constants[key]; ok {
		return id
	}
	id := c.w.AllocID()
	if k == sem.Bool {
		if bits != 0 {
			c.w.ConstantLine(fmt.Sprintf("%s = %s %s", id, OpConstantTrue, c.typeIDs[sem.Bool]))
		} else {
			c.w.ConstantLine(fmt.Sprintf("%s = %s %s", id, OpConstantFalse, c.typeIDs[sem.Bool]))
		}
	} else {
		c.w.ConstantLine(fmt.Sprintf("%s = %s %s %s", id, OpConstant, c.typeIDs[k], text))
	}
	c.constants[key] = id
	return id
}

// uintConstant allocates the uint constant for an unsigned literal
// value such as the 0/1 used by boolean coercion.
func (c *Context) uintConstant(v uint64) string {
	return c.internalConstant(sem.UInt, v, fmt.Sprintf("%d", v))
}

func floatBits(f float64) uint64 {
	return uint64(math.Float32bits(float32(f)))
}

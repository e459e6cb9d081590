package spirv

import (
	"fmt"
	"strings"
)

// IDAllocator hands out fresh, monotonically increasing SSA ids of
// the form "%N". There is no reuse of retired ids.
type IDAllocator struct{ next int }

// Alloc returns the next fresh id.
func (a *IDAllocator) Alloc() string {
	a.next++
	return fmt.Sprintf("%%%d", a.next)
}

// Writer accumulates SPIR-V assembly text in the canonical section
// order: header comments, capability, memory model, entry points,
// type declarations, additional on-demand type declarations,
// function-type declarations, constant
// declarations, then function bodies (one per kernel, in source
// order).
type Writer struct {
	ids IDAllocator

	header      []string
	capability  []string
	memoryModel []string
	entryPoints []string
	types       []string
	extraTypes  []string
	funcTypes   []string
	constants   []string
	functions   []string

	// curFunc accumulates the body of the function currently being
	// emitted; it is flushed into functions on EndFunction.
	curFunc []string
}

// NewWriter creates an empty Writer with the fixed header comments.
func NewWriter() *Writer {
	return &Writer{
		header: []string{"; SPIR-V", "; Version: 1.0"},
	}
}

// AllocID returns a fresh SSA id.
func (w *Writer) AllocID() string { return w.ids.Alloc() }

// Capability emits `OpCapability <name>` once. The generator only
// ever needs the Kernel capability, so this is called exactly once
// per compilation.
func (w *Writer) Capability(name string) {
	w.capability = append(w.capability, fmt.Sprintf("%s %s", OpCapability, name))
}

// MemoryModel emits `OpMemoryModel <addressing> <memory>`.
func (w *Writer) MemoryModel(addressing, memory string) {
	w.memoryModel = append(w.memoryModel, fmt.Sprintf("%s %s %s", OpMemoryModel, addressing, memory))
}

// EntryPoint emits `OpEntryPoint Kernel <fid> "<name>"`.
func (w *Writer) EntryPoint(fid, name string) {
	w.entryPoints = append(w.entryPoints, fmt.Sprintf("%s Kernel %s %q", OpEntryPoint, fid, name))
}

// TypeLine appends a raw, already-formatted type-section line (used
// for OpType*/OpTypePointer declarations, which the generator's type
// table builds with full knowledge of whether an id is fresh).
func (w *Writer) TypeLine(line string) { w.types = append(w.types, line) }

// ExtraTypeLine appends a raw line to the additional module-level type
// section — on-demand derived types such as a Function-storage pointer
// whose pointee is itself a pointer type, which the fixed built-in
// table never allocates up front.
func (w *Writer) ExtraTypeLine(line string) { w.extraTypes = append(w.extraTypes, line) }

// FuncTypeLine appends a raw OpTypeFunction line.
func (w *Writer) FuncTypeLine(line string) { w.funcTypes = append(w.funcTypes, line) }

// ConstantLine appends a raw OpConstant*/OpConstantTrue/False line.
func (w *Writer) ConstantLine(line string) { w.constants = append(w.constants, line) }

// Emit appends a formatted instruction line to the function currently
// being built.
func (w *Writer) Emit(line string) { w.curFunc = append(w.curFunc, line) }

// Emitf is a convenience wrapper around Emit + fmt.Sprintf.
func (w *Writer) Emitf(format string, args ...interface{}) {
	w.Emit(fmt.Sprintf(format, args...))
}

// LastOp returns the opcode of the most recently emitted instruction
// in the current function body, used to implement the block
// termination invariant. It returns "" if nothing has been emitted
// yet in this function (true right after OpLabel has not yet been
// pushed).
func (w *Writer) LastOp() OpCode {
	if len(w.curFunc) == 0 {
		return ""
	}
	last := w.curFunc[len(w.curFunc)-1]
	fields := strings.Fields(last)
	for _, f := range fields {
		if strings.HasPrefix(f, "Op") {
			return OpCode(f)
		}
	}
	return ""
}

// IsTerminated reports whether the current block (the instructions
// since the last OpLabel) has already ended in a branch or return.
func (w *Writer) IsTerminated() bool { return terminators[w.LastOp()] }

// EnsureTerminated appends `OpBranch <target>` to the current block if
// it is not already terminated, implementing the generator's
// synthetic-branch rule.
func (w *Writer) EnsureTerminated(target string) {
	if !w.IsTerminated() {
		w.Emitf("%s %s", OpBranch, target)
	}
}

// BeginFunction starts a new function body buffer.
func (w *Writer) BeginFunction() { w.curFunc = nil }

// EndFunction flushes the current function body into the module's
// function section.
func (w *Writer) EndFunction() {
	w.functions = append(w.functions, w.curFunc...)
	w.curFunc = nil
}

// String renders the full module in canonical section order.
func (w *Writer) String() string {
	var sb strings.Builder
	sections := [][]string{
		w.header,
		w.capability,
		w.memoryModel,
		w.entryPoints,
		w.types,
		w.extraTypes,
		w.funcTypes,
		w.constants,
		w.functions,
	}
	for _, section := range sections {
		for _, line := range section {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

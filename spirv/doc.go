// Package spirv lowers a parsed SIL program to SPIR-V assembly text
// for the OpenCL execution model.
//
// SPIR-V is normally a binary intermediate language; this package
// emits its textual assembly form only (one instruction per line),
// suitable for a standard external assembler. There is no binary
// emission path, by design.
//
// # Usage
//
//	ctx := spirv.NewContext(source)
//	text, err := ctx.Generate(program)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Generation assigns fresh `%N` SSA identifiers, emits the built-in
// type and pointer tables once, and lowers each kernel body through
// structured control flow (OpSelectionMerge / OpLoopMerge) with every
// basic block properly terminated. A self-check pass walks the
// emitted text before Generate returns, raising an InternalError if
// any generator invariant (unique ids, block termination) is
// violated.
package spirv

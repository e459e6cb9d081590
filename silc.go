// Package silc is a Pure Go compiler for SIL, a small GPU-kernel
// language that targets textual SPIR-V assembly for the OpenCL
// execution model.
//
// The package provides a single high-level entry point for
// compilation as well as access to the individual preprocess/scan/
// parse/generate stages via the sil and spirv subpackages.
//
// Example usage:
//
//	source := `
//	kernel add(a: int, b: int, out: int) {
//	    out = a + b;
//	    return;
//	}
//	`
//	result, err := silc.Compile("add.sil", source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Assembly)
package silc

import (
	"fmt"

	"github.com/sillang/silc/preprocess"
	"github.com/sillang/silc/sil"
	"github.com/sillang/silc/spirv"
)

// Result is the output of a successful Compile: the emitted SPIR-V
// assembly text, plus any @cpu blocks the driver separated out of the
// source. Running the host-side code those blocks carry is a
// different, unspecified driver's job; this package stops at
// producing the split.
type Result struct {
	Assembly  string
	CpuBlocks []sil.CpuBlock
}

// Compile runs the preprocessor, scanner, parser, and generator over
// source in sequence and returns the emitted SPIR-V assembly text
// together with any separated @cpu blocks. filename is used only to
// annotate errors; it is never read from disk.
func Compile(filename, source string) (Result, error) {
	expanded := preprocess.Transform(source)

	lexer := sil.NewLexer(expanded)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", filename, err)
	}

	parser := sil.NewParser(tokens, expanded)
	program, err := parser.Parse()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", filename, err)
	}

	var cpuBlocks []sil.CpuBlock
	for _, d := range program.Decls {
		if cb, ok := d.(*sil.CpuBlock); ok {
			cpuBlocks = append(cpuBlocks, *cb)
		}
	}

	ctx := spirv.NewContext(expanded)
	asm, err := ctx.Generate(program)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", filename, err)
	}

	return Result{Assembly: asm, CpuBlocks: cpuBlocks}, nil
}

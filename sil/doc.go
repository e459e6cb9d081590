// Package sil provides lexical analysis and parsing for SIL, a small
// GPU-kernel language that compiles to SPIR-V assembly for the OpenCL
// execution model.
//
// # Components
//
//   - Lexer: tokenizes SIL source into a flat token stream
//   - Parser: consumes tokens into a typed AST
//   - AST: declaration, statement, and expression node types
//
// # Usage
//
//	source := `kernel add(a: int, b: int, out: int) {
//	    var s: int = 0;
//	    s = a + b;
//	    out = s;
//	    return;
//	}`
//
//	lexer := sil.NewLexer(source)
//	tokens, err := lexer.Tokenize()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	parser := sil.NewParser(tokens, source)
//	program, err := parser.Parse()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A source file may end in at most one `@cpu` directive; everything
// after it is captured as a single raw-text token and surfaces in the
// AST as a CpuBlock, untouched by this package.
package sil

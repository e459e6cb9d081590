package spirv

import (
	"strings"

	"github.com/sillang/silc/sil"
)

// selfCheck re-scans the fully emitted module text and verifies the
// two structural invariants the generator is supposed to guarantee by
// construction: every SSA id is assigned exactly once, and every basic
// block is properly terminated. A violation here means a generator bug,
// not a problem with the input program, hence InternalError rather
// than SemanticError.
func (c *Context) selfCheck() error {
	text := c.w.String()
	lines := strings.Split(text, "\n")

	seen := make(map[string]bool)
	inFunction := false
	blockOpen := false
	terminated := true

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)

		if lhs, ok := assignedID(fields); ok {
			if seen[lhs] {
				return c.internalf(sil.Span{}, "duplicate SSA id %s in generated module", lhs)
			}
			seen[lhs] = true
		}

		op := opcodeOf(fields)
		switch op {
		case OpFunction:
			inFunction = true
			blockOpen = false
			terminated = true
		case OpFunctionEnd:
			if blockOpen && !terminated {
				return c.internalf(sil.Span{}, "unterminated basic block before OpFunctionEnd")
			}
			inFunction = false
			blockOpen = false
		case OpLabel:
			if inFunction && blockOpen && !terminated {
				return c.internalf(sil.Span{}, "unterminated basic block before %s", fields[0])
			}
			blockOpen = true
			terminated = false
		case OpBranch, OpBranchConditional, OpReturn:
			terminated = true
		default:
			if inFunction && blockOpen && terminated {
				return c.internalf(sil.Span{}, "instruction emitted after block terminator: %s", line)
			}
		}
	}
	return nil
}

// assignedID extracts the "%N" left of "=" in a line shaped like
// "%3 = OpIAdd %1 %1 %2", returning ok=false for lines with no result.
func assignedID(fields []string) (string, bool) {
	if len(fields) >= 2 && fields[1] == "=" && strings.HasPrefix(fields[0], "%") {
		return fields[0], true
	}
	return "", false
}

// opcodeOf returns the first "Op"-prefixed field in a line, whether or
// not the line carries a result id.
func opcodeOf(fields []string) OpCode {
	for _, f := range fields {
		if strings.HasPrefix(f, "Op") {
			return OpCode(f)
		}
	}
	return ""
}

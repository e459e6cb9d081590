package spirv

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sillang/silc/preprocess"
	"github.com/sillang/silc/sil"
)

// compile runs the full pipeline (preprocess, scan, parse, generate)
// used by every scenario test below.
func compile(t *testing.T, src string) (string, error) {
	t.Helper()
	expanded := preprocess.Transform(src)
	tokens, err := sil.NewLexer(expanded).Tokenize()
	require.NoError(t, err)
	prog, perr := sil.NewParser(tokens, expanded).Parse()
	require.Nil(t, perr)
	ctx := NewContext(expanded)
	return ctx.Generate(prog)
}

func TestScalarAddKernel(t *testing.T) {
	asm, err := compile(t, `kernel add(a: ptr_uint, b: ptr_uint, out: ptr_uint) {
		*out = *a + *b;
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpEntryPoint Kernel")
	assert.Contains(t, asm, "OpIAdd")
	assert.Contains(t, asm, "OpFunctionEnd")
}

// TestScalarAddKernelBareParams mirrors the literal scenario-1 input:
// parameters declared with a bare scalar type (not ptr_<base>) are
// still physically CrossWorkgroup pointers, but reading them as plain
// identifiers auto-loads the scalar value instead of returning the raw
// pointer, and assigning to one stores through it directly.
func TestScalarAddKernelBareParams(t *testing.T) {
	asm, err := compile(t, `kernel add(a: int, b: int, out: int) {
		var s: int = 0;
		s = a + b;
		out = s;
		return;
	}`)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(asm, "OpTypePointer CrossWorkgroup"))
	assert.Equal(t, 1, strings.Count(asm, "OpVariable"))
	assert.Contains(t, asm, "OpIAdd")
	// two loads for a/b in the addition, one more loading s back out
	// before the final store into out.
	assert.Equal(t, 3, strings.Count(asm, "OpLoad"))
	// the initializer store for s, the s = a + b store, and the store
	// into out.
	assert.Equal(t, 3, strings.Count(asm, "OpStore"))
}

// TestIfElseBareParams mirrors the literal scenario-2 input: bare
// scalar-declared parameters read with auto-load, no dereference.
func TestIfElseBareParams(t *testing.T) {
	asm, err := compile(t, `kernel k(x: int, out: int) {
		if (x == 0) {
			out = 1;
		} else {
			out = 2;
		}
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpIEqual")
	assert.Contains(t, asm, "OpSelectionMerge")
	assert.Contains(t, asm, "OpBranchConditional")
	assert.Equal(t, 2, strings.Count(asm, "OpBranch %"))
}

func TestIfElseCoercion(t *testing.T) {
	asm, err := compile(t, `kernel k(x: ptr_uint, out: ptr_uint) {
		if (*x == 0) {
			*out = 1;
		} else {
			*out = 2;
		}
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpIEqual")
	assert.Contains(t, asm, "OpSelectionMerge")
	assert.Contains(t, asm, "OpBranchConditional")
	assert.Equal(t, 2, strings.Count(asm, "OpBranch %"))
}

func TestInfiniteLoopWithBreak(t *testing.T) {
	asm, err := compile(t, `kernel k() {
		var x: uint = 0;
		loop {
			x = x + 1;
			if (x == 10) {
				break;
			}
		}
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpLoopMerge")
	assert.Contains(t, asm, "OpBranch")
}

// TestInfiniteLoopBareParamOut mirrors the literal scenario-3 input: a
// bare-declared out parameter written after the loop exits.
func TestInfiniteLoopBareParamOut(t *testing.T) {
	asm, err := compile(t, `kernel k(out: int) {
		var i: int = 0;
		loop {
			if (i == 10) {
				break;
			}
			i = i + 1;
		}
		out = i;
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpLoopMerge")
	assert.Contains(t, asm, "OpBranch")
	assert.Contains(t, asm, "OpStore")
}

func TestArrayUnrollingCompiles(t *testing.T) {
	asm, err := compile(t, "kernel k() {\nvar a: uint = array[3];\na[0] = 1;\na[1] = 2;\na[2] = 3;\nreturn;\n}\n")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(asm, "OpVariable"))
	// three declaration-time initializer stores plus three assignment stores.
	assert.Equal(t, 6, strings.Count(asm, "OpStore"))
}

// TestArrayParamUnrollingScenario mirrors the literal scenario-4
// input: a 2D array kernel parameter and nested for loops, both
// unrolled by the preprocessor ahead of scanning.
func TestArrayParamUnrollingScenario(t *testing.T) {
	asm, err := compile(t, "kernel k(a: uint = array[2][2], out: uint) {\n"+
		"var s: uint = 0;\n"+
		"for i in range(0,2):\n"+
		"    for j in range(0,2):\n"+
		"        s = s + a[i][j];\n"+
		"out = s;\n"+
		"return;\n}\n")
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(asm, "OpIAdd"))
	assert.Contains(t, asm, "OpStore")
}

func TestTypeMismatchWithNoKernelIsSemanticError(t *testing.T) {
	_, err := compile(t, `
		var x: uint = 0;
		var y: float = 0.0;
		x = x + y;
	`)
	require.Error(t, err)
	var semErr *SemanticError
	assert.ErrorAs(t, err, &semErr)
}

func TestBoolToUintCoercionOnStore(t *testing.T) {
	asm, err := compile(t, `kernel k() {
		var flag: uint = 0;
		flag = 1 == 1;
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpSelect")
}

// TestBoolToUintCoercionOnStoreBareParam mirrors the literal
// scenario-6 input: storing a boolean comparison result directly into
// a bare-declared uint out parameter.
func TestBoolToUintCoercionOnStoreBareParam(t *testing.T) {
	asm, err := compile(t, `kernel k(out: uint) {
		out = 1 == 1;
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpIEqual")
	assert.Contains(t, asm, "OpSelect")
	assert.Contains(t, asm, "OpStore")
}

func TestKernelReturnValueIsSemanticError(t *testing.T) {
	_, err := compile(t, `kernel k() {
		return 1;
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kernel return values are not supported")
}

func TestBreakOutsideLoopIsSemanticError(t *testing.T) {
	_, err := compile(t, `kernel k() {
		break;
	}`)
	require.Error(t, err)
	var semErr *SemanticError
	assert.ErrorAs(t, err, &semErr)
}

func TestUnknownIdentifierIsSemanticError(t *testing.T) {
	_, err := compile(t, `kernel k() {
		x = 1;
		return;
	}`)
	require.Error(t, err)
	var semErr *SemanticError
	assert.ErrorAs(t, err, &semErr)
}

func TestLiteralTypeWideningPromotesDeclaredType(t *testing.T) {
	asm, err := compile(t, `kernel k() {
		var x: uint = 1.5;
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpTypeFloat")
	assert.Contains(t, asm, "OpConstant")
}

func TestCastUintToFloat(t *testing.T) {
	asm, err := compile(t, `kernel k() {
		var x: uint = 3;
		var y: float = 0.0;
		y = cast { x as float };
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpConvertUToF")
}

func TestCastFloatToUint(t *testing.T) {
	asm, err := compile(t, `kernel k() {
		var x: float = 3.5;
		var y: uint = 0;
		y = cast { x as uint };
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpConvertFToU")
}

func TestModuleScopeConstVisibleAcrossKernels(t *testing.T) {
	asm, err := compile(t, `
		const limit: uint = 10;
		kernel a() {
			var x: uint = limit;
			return;
		}
		kernel b() {
			var y: uint = limit;
			return;
		}
	`)
	require.NoError(t, err)
	assert.Contains(t, asm, "OpEntryPoint Kernel")
}

// TestModuleScopeNonLiteralConstIsSemanticError covers a module-scope
// const whose initializer is not a bare literal: there is no surviving
// function body for its storage slot to live in, so it must be
// rejected rather than silently compiled into a dangling operand.
func TestModuleScopeNonLiteralConstIsSemanticError(t *testing.T) {
	_, err := compile(t, `
		const limit: uint = 1 + 1;
		kernel a() {
			var x: uint = limit;
			return;
		}
	`)
	require.Error(t, err)
	var semErr *SemanticError
	assert.ErrorAs(t, err, &semErr)
}

func TestGeneratedModuleHasUniqueSSAIds(t *testing.T) {
	asm, err := compile(t, `kernel k(a: ptr_uint) {
		var x: uint = 1;
		var y: uint = 2;
		*a = x + y;
		return;
	}`)
	require.NoError(t, err)
	idRe := regexp.MustCompile(`%\d+`)
	seen := make(map[string]int)
	for _, line := range strings.Split(asm, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "=" && idRe.MatchString(fields[0]) {
			seen[fields[0]]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "id %s assigned more than once", id)
	}
}

func TestEveryBlockIsProperlyTerminated(t *testing.T) {
	asm, err := compile(t, `kernel k() {
		var x: uint = 0;
		if (x == 0) {
			x = 1;
		}
		loop {
			break;
		}
		return;
	}`)
	require.NoError(t, err)

	lines := strings.Split(asm, "\n")
	inFunc := false
	blockOpen := false
	terminated := true
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch {
		case strings.Contains(line, "OpFunction ") || strings.HasSuffix(line, "OpFunction"):
			inFunc = true
		case strings.Contains(line, "OpFunctionEnd"):
			require.True(t, terminated, "block unterminated before OpFunctionEnd")
			inFunc = false
		case strings.Contains(line, "OpLabel"):
			if inFunc && blockOpen {
				require.True(t, terminated, "block unterminated before new OpLabel")
			}
			blockOpen = true
			terminated = false
		case strings.Contains(line, "OpBranch") || strings.Contains(line, "OpReturn"):
			terminated = true
		}
	}
}

func TestPointerToPointerLocalAllocatesExtraTypeSection(t *testing.T) {
	asm, err := compile(t, `kernel k(a: ptr_uint) {
		var p: ptr_uint = a;
		return;
	}`)
	require.NoError(t, err)
	// three built-in Function pointers plus the on-demand Function
	// pointer to the ptr_uint type.
	assert.Equal(t, 4, strings.Count(asm, "OpTypePointer Function"))
}

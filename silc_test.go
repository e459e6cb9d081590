package silc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sillang/silc/spirv"
)

func TestCompileProducesAssembly(t *testing.T) {
	result, err := Compile("add.sil", `kernel add(a: int, b: int, out: int) {
		out = a + b;
		return;
	}`)
	require.NoError(t, err)
	assert.Contains(t, result.Assembly, "OpEntryPoint Kernel")
	assert.Empty(t, result.CpuBlocks)
}

func TestCompileSeparatesCpuBlock(t *testing.T) {
	src := "kernel k() {\n\treturn;\n}\n@cpu\nint main() { return 0; }\n"
	result, err := Compile("withcpu.sil", src)
	require.NoError(t, err)
	require.Len(t, result.CpuBlocks, 1)
	assert.True(t, strings.HasSuffix(result.CpuBlocks[0].RawText, "int main() { return 0; }\n"))
	assert.Contains(t, result.Assembly, "OpEntryPoint Kernel")
}

func TestCompileReturnsSemanticErrorForUnknownIdentifier(t *testing.T) {
	_, err := Compile("bad.sil", `kernel k() {
		x = 1;
		return;
	}`)
	require.Error(t, err)
	var semErr *spirv.SemanticError
	assert.ErrorAs(t, err, &semErr)
}

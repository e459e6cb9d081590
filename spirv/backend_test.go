package spirv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantsDeduplicateByValue(t *testing.T) {
	asm, err := compile(t, `kernel k() {
		var a: uint = 1;
		var b: uint = 1;
		var c: uint = 2;
		return;
	}`)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(asm, "OpConstant "+firstTypeID(asm, "OpTypeInt")+" 1"))
	assert.Equal(t, 1, strings.Count(asm, "OpConstant "+firstTypeID(asm, "OpTypeInt")+" 2"))
}

func TestIntAndUintShareOneTypeID(t *testing.T) {
	asm, err := compile(t, `kernel k() {
		var a: int = 1;
		var b: uint = 2;
		return;
	}`)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(asm, "OpTypeInt 32 0"))
}

func TestPointerTypeTableCoversAllBasesOnceEach(t *testing.T) {
	// Built-in pointer types are emitted once per {uint, float, bool}
	// base regardless of which bases a given program's kernels use.
	asm, err := compile(t, `kernel k(a: ptr_uint, b: ptr_float) {
		return;
	}`)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(asm, "OpTypePointer CrossWorkgroup"))
	assert.Equal(t, 3, strings.Count(asm, "OpTypePointer Function"))
}

// firstTypeID extracts the id assigned on the first line containing op,
// e.g. "%3" out of "%3 = OpTypeInt 32 0".
func firstTypeID(asm, op string) string {
	for _, line := range strings.Split(asm, "\n") {
		if strings.Contains(line, op) {
			fields := strings.Fields(line)
			if len(fields) >= 1 {
				return fields[0]
			}
		}
	}
	return ""
}

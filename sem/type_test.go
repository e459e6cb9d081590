package sem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalarTypes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Type
	}{
		{"void", "void", ScalarType(Void)},
		{"bool", "bool", ScalarType(Bool)},
		{"uint", "uint", ScalarType(UInt)},
		{"int aliases uint", "int", ScalarType(UInt)},
		{"float", "float", ScalarType(Float)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePointerTypes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Type
	}{
		{"ptr_uint", "ptr_uint", Ptr(CrossWorkgroup, UInt)},
		{"ptr_float", "ptr_float", Ptr(CrossWorkgroup, Float)},
		{"ptr_bool", "ptr_bool", Ptr(CrossWorkgroup, Bool)},
		{"ptr_int aliases ptr_uint", "ptr_int", Ptr(CrossWorkgroup, UInt)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestParseRejectsPointerToPointer(t *testing.T) {
	_, err := Parse("ptr_ptr_uint")
	assert.Error(t, err)
}

func TestParseRejectsUnknownType(t *testing.T) {
	_, err := Parse("string")
	assert.Error(t, err)
}

func TestParseRejectsPointerToInvalidBase(t *testing.T) {
	_, err := Parse("ptr_string")
	assert.Error(t, err)
}

func TestTypeEqualIgnoresStorageForNonPointers(t *testing.T) {
	a := ScalarType(UInt)
	b := Type{Scalar: UInt, Storage: Function}
	assert.True(t, a.Equal(b))
}

func TestTypeEqualComparesStorageForPointers(t *testing.T) {
	a := Ptr(CrossWorkgroup, UInt)
	b := Ptr(Function, UInt)
	assert.False(t, a.Equal(b))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "uint", ScalarType(UInt).String())
	assert.Equal(t, "ptr_uint", Ptr(CrossWorkgroup, UInt).String())
	assert.Equal(t, "ptr_func_uint", Ptr(Function, UInt).String())
}

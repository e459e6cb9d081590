// Package sem defines the small, enumerated type system SIL kernels
// use in place of the AST's free-form type-name strings. It replaces
// a string-keyed type table with a closed set of scalar kinds and
// pointer storage classes, eliminating the class of typo bugs a
// string encoding invites (e.g. a malformed "ptr_func_ptr_uint").
package sem

import "fmt"

// ScalarKind is one of the four scalar types SIL kernels operate on.
type ScalarKind uint8

const (
	Void ScalarKind = iota
	Bool
	UInt
	Float
)

// String returns the SIL source spelling of k.
func (k ScalarKind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case UInt:
		return "uint"
	case Float:
		return "float"
	default:
		return "invalid"
	}
}

// StorageClass distinguishes kernel-parameter pointers (visible across
// the whole dispatch) from local-variable pointers (private to one
// invocation).
type StorageClass uint8

const (
	// CrossWorkgroup is the storage class of kernel parameter
	// pointers — OpenCL global memory.
	CrossWorkgroup StorageClass = iota
	// Function is the storage class of local variable pointers.
	Function
)

func (s StorageClass) String() string {
	if s == CrossWorkgroup {
		return "CrossWorkgroup"
	}
	return "Function"
}

// Type is a scalar or a pointer to a scalar. Pointer-to-pointer has no
// representation here and is rejected wherever one would be formed.
type Type struct {
	Scalar  ScalarKind
	Pointer bool
	Storage StorageClass
}

// ScalarType builds a non-pointer Type.
func ScalarType(k ScalarKind) Type { return Type{Scalar: k} }

// Ptr builds a pointer Type with the given storage class and pointee.
func Ptr(storage StorageClass, base ScalarKind) Type {
	return Type{Scalar: base, Pointer: true, Storage: storage}
}

// String renders the AST-level spelling of t: "uint" for a scalar,
// "ptr_uint" for a CrossWorkgroup pointer, or "ptr_func_uint" for a
// Function pointer; Parse is the inverse for the forms the grammar
// actually accepts.
func (t Type) String() string {
	if !t.Pointer {
		return t.Scalar.String()
	}
	if t.Storage == CrossWorkgroup {
		return "ptr_" + t.Scalar.String()
	}
	return "ptr_func_" + t.Scalar.String()
}

// Parse converts an AST type name into a Type. `int` (also as a
// pointer base) is accepted and treated as `uint`, whether or not the
// parser already normalized it. `ptr_<base>` always
// parses as a CrossWorkgroup pointer, since that is the only pointee
// storage class the surface grammar can name; a local variable
// declared with this type still gets its own Function-storage slot,
// distinct from the value type it holds.
func Parse(name string) (Type, error) {
	switch name {
	case "void":
		return ScalarType(Void), nil
	case "bool":
		return ScalarType(Bool), nil
	case "uint", "int":
		return ScalarType(UInt), nil
	case "float":
		return ScalarType(Float), nil
	}
	if base, ok := stripPrefix(name, "ptr_"); ok {
		baseKind, err := parseScalarName(base)
		if err != nil {
			return Type{}, fmt.Errorf("pointer to invalid base type %q", base)
		}
		if _, isPtr := stripPrefix(base, "ptr_"); isPtr {
			return Type{}, fmt.Errorf("pointer-to-pointer type %q is forbidden", name)
		}
		return Ptr(CrossWorkgroup, baseKind), nil
	}
	return Type{}, fmt.Errorf("unknown type name %q", name)
}

func parseScalarName(name string) (ScalarKind, error) {
	switch name {
	case "void":
		return Void, nil
	case "bool":
		return Bool, nil
	case "uint", "int":
		return UInt, nil
	case "float":
		return Float, nil
	default:
		return 0, fmt.Errorf("not a scalar type: %q", name)
	}
}

func stripPrefix(s, prefix string) (string, bool) {
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}

// Equal reports whether t and other denote the same type.
func (t Type) Equal(other Type) bool {
	return t.Scalar == other.Scalar && t.Pointer == other.Pointer && (!t.Pointer || t.Storage == other.Storage)
}

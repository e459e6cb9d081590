package spirv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocatorMonotonic(t *testing.T) {
	var a IDAllocator
	assert.Equal(t, "%1", a.Alloc())
	assert.Equal(t, "%2", a.Alloc())
	assert.Equal(t, "%3", a.Alloc())
}

func TestWriterSectionOrder(t *testing.T) {
	w := NewWriter()
	w.Capability("Kernel")
	w.MemoryModel("Logical", "OpenCL")
	typeID := w.AllocID()
	w.TypeLine(typeID + " = OpTypeVoid")
	extraID := w.AllocID()
	w.ExtraTypeLine(extraID + " = OpTypePointer Function " + typeID)
	ftypeID := w.AllocID()
	w.FuncTypeLine(ftypeID + " = OpTypeFunction " + typeID)
	constID := w.AllocID()
	w.ConstantLine(constID + " = OpConstant " + typeID + " 0")
	w.BeginFunction()
	w.Emit("OpReturn")
	w.EndFunction()

	out := w.String()
	capIdx := strings.Index(out, "OpCapability")
	memIdx := strings.Index(out, "OpMemoryModel")
	typeIdx := strings.Index(out, "OpTypeVoid")
	extraIdx := strings.Index(out, "OpTypePointer")
	ftypeIdx := strings.Index(out, "OpTypeFunction")
	constIdx := strings.Index(out, "OpConstant "+typeID)
	funcIdx := strings.Index(out, "OpReturn")

	assert.True(t, capIdx < memIdx)
	assert.True(t, memIdx < typeIdx)
	assert.True(t, typeIdx < extraIdx)
	assert.True(t, extraIdx < ftypeIdx)
	assert.True(t, ftypeIdx < constIdx)
	assert.True(t, constIdx < funcIdx)
}

func TestWriterEnsureTerminatedInsertsSyntheticBranch(t *testing.T) {
	w := NewWriter()
	w.BeginFunction()
	w.Emit("%1 = OpLabel")
	assert.False(t, w.IsTerminated())
	w.EnsureTerminated("%2")
	assert.True(t, w.IsTerminated())
	w.EndFunction()
	assert.Contains(t, w.String(), "OpBranch %2")
}

func TestWriterEnsureTerminatedNoopWhenAlreadyTerminated(t *testing.T) {
	w := NewWriter()
	w.BeginFunction()
	w.Emit("%1 = OpLabel")
	w.Emit("OpReturn")
	w.EnsureTerminated("%2")
	w.EndFunction()
	assert.Equal(t, 1, strings.Count(w.String(), "OpReturn"))
	assert.NotContains(t, w.String(), "OpBranch")
}

func TestWriterLastOpEmptyBeforeAnyEmit(t *testing.T) {
	w := NewWriter()
	w.BeginFunction()
	assert.Equal(t, OpCode(""), w.LastOp())
	assert.False(t, w.IsTerminated())
}

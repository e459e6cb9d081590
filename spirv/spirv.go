package spirv

// OpCode names the (small) subset of SPIR-V textual opcodes this
// generator emits. Kernels in this language have no images, samplers,
// atomics, or vector/matrix types, so the opcode set is much smaller
// than a general shader backend's.
type OpCode string

const (
	OpCapability      OpCode = "OpCapability"
	OpMemoryModel     OpCode = "OpMemoryModel"
	OpEntryPoint      OpCode = "OpEntryPoint"
	OpTypeVoid        OpCode = "OpTypeVoid"
	OpTypeBool        OpCode = "OpTypeBool"
	OpTypeInt         OpCode = "OpTypeInt"
	OpTypeFloat       OpCode = "OpTypeFloat"
	OpTypePointer     OpCode = "OpTypePointer"
	OpTypeFunction    OpCode = "OpTypeFunction"
	OpConstant        OpCode = "OpConstant"
	OpConstantTrue    OpCode = "OpConstantTrue"
	OpConstantFalse   OpCode = "OpConstantFalse"
	OpFunction        OpCode = "OpFunction"
	OpFunctionParameter OpCode = "OpFunctionParameter"
	OpFunctionEnd     OpCode = "OpFunctionEnd"
	OpLabel           OpCode = "OpLabel"
	OpVariable        OpCode = "OpVariable"
	OpLoad            OpCode = "OpLoad"
	OpStore           OpCode = "OpStore"
	OpReturn          OpCode = "OpReturn"
	OpBranch          OpCode = "OpBranch"
	OpBranchConditional OpCode = "OpBranchConditional"
	OpSelectionMerge  OpCode = "OpSelectionMerge"
	OpLoopMerge       OpCode = "OpLoopMerge"
	OpSelect          OpCode = "OpSelect"

	OpIAdd    OpCode = "OpIAdd"
	OpISub    OpCode = "OpISub"
	OpIMul    OpCode = "OpIMul"
	OpSDiv    OpCode = "OpSDiv"
	OpUDiv    OpCode = "OpUDiv"
	OpUMod    OpCode = "OpUMod"
	OpFAdd    OpCode = "OpFAdd"
	OpFSub    OpCode = "OpFSub"
	OpFMul    OpCode = "OpFMul"
	OpFDiv    OpCode = "OpFDiv"
	OpIEqual    OpCode = "OpIEqual"
	OpINotEqual OpCode = "OpINotEqual"
	OpFOrdEqual    OpCode = "OpFOrdEqual"
	OpFOrdNotEqual OpCode = "OpFOrdNotEqual"
	OpULessThan      OpCode = "OpULessThan"
	OpUGreaterThan   OpCode = "OpUGreaterThan"
	OpULessThanEqual OpCode = "OpULessThanEqual"
	OpUGreaterThanEqual OpCode = "OpUGreaterThanEqual"
	OpFOrdLessThan      OpCode = "OpFOrdLessThan"
	OpFOrdGreaterThan   OpCode = "OpFOrdGreaterThan"
	OpFOrdLessThanEqual OpCode = "OpFOrdLessThanEqual"
	OpFOrdGreaterThanEqual OpCode = "OpFOrdGreaterThanEqual"
	OpLogicalAnd OpCode = "OpLogicalAnd"
	OpLogicalOr  OpCode = "OpLogicalOr"
	OpBitwiseAnd OpCode = "OpBitwiseAnd"
	OpBitwiseOr  OpCode = "OpBitwiseOr"
	OpBitwiseXor OpCode = "OpBitwiseXor"
	OpShiftLeftLogical  OpCode = "OpShiftLeftLogical"
	OpShiftRightLogical OpCode = "OpShiftRightLogical"
	OpSNegate OpCode = "OpSNegate"
	OpNot     OpCode = "OpNot"

	OpConvertUToF OpCode = "OpConvertUToF"
	OpConvertFToU OpCode = "OpConvertFToU"
	OpBitcast     OpCode = "OpBitcast"
)

// terminators is the set of opcodes that end a basic block, per the
// block-termination invariant: a block is terminated once its last
// emitted instruction is one of these.
var terminators = map[OpCode]bool{
	OpBranch:            true,
	OpBranchConditional: true,
	OpReturn:            true,
}

// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package revec implements a superword-level-parallelism (SLP) tree builder
// that re-vectorizes pairs of adjacent 128-bit SIMD operations into logical
// 256-bit operations. It operates on a read-only adapter over a host
// compiler's IR graph (see Node) and never mutates that graph; a later,
// out-of-scope code-generation stage materializes the resulting pack tree.
package revec

// Opcode enumerates the IR node kinds the tree builder understands. Any
// opcode outside this set is opaque to the pass and, when encountered
// during dispatch, causes the candidate pack to be rejected.
type Opcode int

const (
	OpUnknown Opcode = iota
	OpInt64Constant
	OpInt64Add
	OpChangeUint32ToUint64
	OpLoad
	OpLoadFromObject
	OpProtectedLoad
	OpLoadTransform
	OpStore
	OpProtectedStore
	OpPhi
	OpLoopExitValue
	OpExtractF128
	OpF32x4Add
	OpF32x4Mul
)

func (o Opcode) String() string {
	switch o {
	case OpInt64Constant:
		return "Int64Constant"
	case OpInt64Add:
		return "Int64Add"
	case OpChangeUint32ToUint64:
		return "ChangeUint32ToUint64"
	case OpLoad:
		return "Load"
	case OpLoadFromObject:
		return "LoadFromObject"
	case OpProtectedLoad:
		return "ProtectedLoad"
	case OpLoadTransform:
		return "LoadTransform"
	case OpStore:
		return "Store"
	case OpProtectedStore:
		return "ProtectedStore"
	case OpPhi:
		return "Phi"
	case OpLoopExitValue:
		return "LoopExitValue"
	case OpExtractF128:
		return "ExtractF128"
	case OpF32x4Add:
		return "F32x4Add"
	case OpF32x4Mul:
		return "F32x4Mul"
	default:
		return "Unknown"
	}
}

// Representation mirrors the host compiler's MachineRepresentation for the
// subset of reps the pass cares about: whether a Phi, LoopExitValue, or
// ProtectedLoad carries 128-bit SIMD data.
type Representation int

const (
	RepOther Representation = iota
	RepSimd128
)

// TransformKind enumerates the LoadTransform variants the pass recognizes.
// Only the two splat forms are supported for pairing; everything else is
// rejected by the leaf rule in tree.go.
type TransformKind int

const (
	TransformOther TransformKind = iota
	TransformS128Load32Splat
	TransformS128Load64Splat
)

// Block identifies a basic block. Host adapters typically hand back a
// pointer or small integer; whatever is chosen must be comparable, since
// block identity is used both in equality checks and as a map key for seed
// grouping.
type Block any

// Node is the read-only query interface the tree builder uses to inspect
// the host IR graph. It is deliberately narrow: the graph itself, its
// mutation, and its scheduling are out of scope (see spec component A) and
// live entirely on the host side.
//
// Node values must be comparable, since the pack registry keys on them
// directly and the dependency prober and recursion stack track node
// identity via Go map/set membership.
type Node interface {
	// ID returns a stable identifier, used only for tracing.
	ID() int

	// Opcode returns the node's operator kind.
	Opcode() Opcode

	// Input returns the i-th ordered input, spanning value, effect, and
	// control inputs alike. Panics if i is out of range; callers are
	// expected to consult InputCount/FirstControlIndex first.
	Input(i int) Node

	// InputCount returns the total number of inputs to this node.
	InputCount() int

	// FirstControlIndex returns the index of the first control input;
	// inputs before this index are value or effect inputs.
	FirstControlIndex() int

	// ValueInputCount returns the number of value inputs (used to bound
	// the recursion over Phi/LoopExitValue/binary-op operands).
	ValueInputCount() int

	// Block returns the basic block this node is assigned to.
	Block() Block

	// EarlySchedulePosition returns the earliest (dominating) block this
	// node could be scheduled to; used as the seed-grouping key.
	EarlySchedulePosition() Block

	// IsSimd128Operation reports whether this node computes a 128-bit SIMD
	// value, independent of opcode (covers future SIMD ops beyond the
	// handful the builder special-cases).
	IsSimd128Operation() bool

	// IsConstant reports whether this is a constant-producing node.
	IsConstant() bool

	// IsPhi reports whether this is a Phi node.
	IsPhi() bool

	// SameOperator reports whether this node and other share an identical
	// operator: same opcode and, where the opcode carries parameters
	// (ExtractF128's lane index, LoadTransform's transform kind, Phi's/
	// LoopExitValue's/ProtectedLoad's representation, Int64Constant's
	// value), identical parameter values. The host adapter owns this
	// comparison because operator parameters are typed per opcode.
	SameOperator(other Node) bool

	// Representation returns the MachineRepresentation-equivalent for
	// nodes that carry one (Phi, LoopExitValue, ProtectedLoad). Opcodes
	// that don't carry a representation may return RepOther.
	Representation() Representation

	// TransformKind returns the LoadTransform variant for LoadTransform
	// nodes. Meaningless for other opcodes.
	TransformKind() TransformKind

	// ExtractLane returns the lane-index parameter of an ExtractF128 node.
	// Meaningless for other opcodes.
	ExtractLane() int32

	// ConstantValue returns the value of an Int64Constant node. Meaningless
	// for other opcodes.
	ConstantValue() int64
}

// Group is a pairing of exactly two IR nodes: lane-0 and lane-1. Every
// operation in this package that deals with a pairing candidate (as
// opposed to an already-committed PackNode) uses this type.
type Group [2]Node

// SameBasicBlock reports whether a and b are assigned to the same basic
// block.
func SameBasicBlock(a, b Node) bool {
	return a.Block() == b.Block()
}

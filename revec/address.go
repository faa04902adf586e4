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

package revec

// Simd128Size is the width, in bytes, of the 128-bit vectors this pass
// pairs up. Two adjacent loads/stores are contiguous when their offsets
// differ by exactly this much.
const Simd128Size = 16

// noOffset is the sentinel returned when a load/store's addressing shape
// doesn't match the base+constant idiom this pass recognizes.
const noOffset = -1

// MemoryOffset extracts the constant byte offset from a load/store node's
// addressing input (input 0). The recognized shapes are:
//
//   - input(0) is itself Load/LoadFromObject: offset is 0 (no addend).
//   - input(0) is Int64Add: the offset is whichever of its two inputs is an
//     Int64Constant; if neither is, the shape is unsupported.
//   - anything else: unsupported.
//
// Unsupported shapes return the sentinel -1 rather than a separate ok
// bool. IsAlignedSeed rejects it; IsContinuousAccess only compares offset
// differences and does not check for it.
func MemoryOffset(node Node) int64 {
	addr := node.Input(0)
	switch addr.Opcode() {
	case OpLoad, OpLoadFromObject:
		return 0
	case OpInt64Add:
		lhs, rhs := addr.Input(0), addr.Input(1)
		if lhs.Opcode() == OpInt64Constant {
			return lhs.ConstantValue()
		}
		if rhs.Opcode() == OpInt64Constant {
			return rhs.ConstantValue()
		}
		return noOffset
	default:
		return noOffset
	}
}

// MemoryAddress extracts the base address node from a load/store node's
// index input (input 1), stripping a ChangeUint32ToUint64 widening if
// present (the compiler inserts this conversion for 32-bit memories).
// Address identity (not value) is what matters: two nodes with the same
// MemoryAddress result are accessing the same base.
func MemoryAddress(node Node) Node {
	addr := node.Input(1)
	if addr.Opcode() == OpChangeUint32ToUint64 {
		return addr.Input(0)
	}
	return addr
}

// AllSameAddress reports whether every node in the group resolves to the
// same MemoryAddress.
func AllSameAddress(group Group) bool {
	base := MemoryAddress(group[0])
	for _, n := range group[1:] {
		if MemoryAddress(n) != base {
			return false
		}
	}
	return true
}

// IsContinuousAccess reports whether the nodes, taken in the given order,
// access strictly contiguous 128-bit-wide memory: each offset is exactly
// Simd128Size greater than the previous one.
func IsContinuousAccess(nodes []Node) bool {
	if len(nodes) == 0 {
		return false
	}
	prev := MemoryOffset(nodes[0])
	for _, n := range nodes[1:] {
		cur := MemoryOffset(n)
		if cur-prev != Simd128Size {
			return false
		}
		prev = cur
	}
	return true
}

// IsAlignedSeed reports whether a store node is eligible to seed a search:
// its memory offset must be a multiple of Simd128Size. Misaligned offsets
// (and the noOffset sentinel, which is never a multiple of 16 by
// construction of the value -1) are rejected.
func IsAlignedSeed(node Node) bool {
	off := MemoryOffset(node)
	return off >= 0 && off%Simd128Size == 0
}

// SortByOffset returns a copy of nodes ordered by ascending MemoryOffset.
// Used to normalize load pairs before a contiguity check, since the pairing
// predicates elsewhere operate on lane-0/lane-1 order rather than address
// order.
func SortByOffset(nodes []Node) []Node {
	sorted := make([]Node, len(nodes))
	copy(sorted, nodes)
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && MemoryOffset(sorted[j-1]) > MemoryOffset(sorted[j]) {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
			j--
		}
	}
	return sorted
}

// AllConstant reports whether every node in the group is constant-producing.
func AllConstant(group Group) bool {
	return group[0].IsConstant() && group[1].IsConstant()
}

// AllSameOperator reports whether both nodes of the group share an
// identical operator (opcode and, where applicable, operator parameters).
func AllSameOperator(group Group) bool {
	return group[0].SameOperator(group[1])
}

// IsSplat reports whether every node in the group is the identical IR
// node. LoadTransform splats pair with themselves: broadcasting the same
// scalar into both 128-bit halves produces a valid 256-bit splat.
func IsSplat(group Group) bool {
	return group[0] == group[1]
}

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

// Package irfixture builds small, in-memory IR graphs that satisfy
// revec.Node, for use by revec's own tests and by cmd/revecdump. It plays
// the role the host compiler's graph normally would: revec never
// constructs or mutates nodes itself, so something has to stand in for
// that graph in tests and in the standalone CLI.
package irfixture

import "github.com/ajroetker/revec/revec"

// Node is a single fixture IR node. Every field except the id (assigned by
// Graph.New) is exported so tests can set them directly on nodes, the way
// cmd/hwygen/ir/fusion_integration_test.go builds IRFunction fixtures
// node-by-node.
type Node struct {
	id int

	Op Opcode

	// Ins holds every input in host-IR order: value inputs, then effect
	// inputs, then control inputs.
	Ins []revec.Node

	// NonControl is the count of inputs before the first control input
	// (value + effect inputs together) — FirstControlIndex().
	NonControl int

	// Values is the count of pure value inputs — ValueInputCount(). Must
	// be <= NonControl.
	Values int

	Blk       revec.Block
	Early     revec.Block
	Rep       revec.Representation
	Transform revec.TransformKind
	Lane      int32
	ConstVal  int64
	Simd128   bool
	Const     bool
	Phi       bool
}

// Opcode is an alias so callers only need to import this package's fixture
// constructors, not revec itself, for the common case.
type Opcode = revec.Opcode

var _ revec.Node = (*Node)(nil)

func (n *Node) ID() int                      { return n.id }
func (n *Node) Opcode() revec.Opcode         { return n.Op }
func (n *Node) Input(i int) revec.Node       { return n.Ins[i] }
func (n *Node) InputCount() int              { return len(n.Ins) }
func (n *Node) FirstControlIndex() int       { return n.NonControl }
func (n *Node) ValueInputCount() int         { return n.Values }
func (n *Node) Block() revec.Block           { return n.Blk }
func (n *Node) EarlySchedulePosition() revec.Block { return n.Early }
func (n *Node) IsSimd128Operation() bool     { return n.Simd128 }
func (n *Node) IsConstant() bool             { return n.Const }
func (n *Node) IsPhi() bool                  { return n.Phi }
func (n *Node) Representation() revec.Representation { return n.Rep }
func (n *Node) TransformKind() revec.TransformKind   { return n.Transform }
func (n *Node) ExtractLane() int32           { return n.Lane }
func (n *Node) ConstantValue() int64         { return n.ConstVal }

// SameOperator compares opcode plus whatever operator parameter that
// opcode carries. This is the one Node method with real logic (the rest
// are field accessors) because it's the adapter's contract per
// revec.Node's doc comment: operator equality is host-specific.
func (n *Node) SameOperator(other revec.Node) bool {
	o, ok := other.(*Node)
	if !ok || n.Op != o.Op {
		return false
	}
	switch n.Op {
	case revec.OpExtractF128:
		return n.Lane == o.Lane
	case revec.OpLoadTransform:
		return n.Transform == o.Transform
	case revec.OpPhi, revec.OpLoopExitValue, revec.OpProtectedLoad:
		return n.Rep == o.Rep
	case revec.OpInt64Constant:
		return n.ConstVal == o.ConstVal
	default:
		return true
	}
}

// Graph is a growable collection of fixture nodes, playing the role of the
// host IR graph (component A's external collaborator) in tests and in the
// CLI.
type Graph struct {
	nodes  []*Node
	nextID int
}

// NewGraph returns an empty fixture graph.
func NewGraph() *Graph {
	return &Graph{}
}

// New allocates a node with the given opcode and inputs, assigning it the
// next sequential id. Block and EarlySchedulePosition are both set to
// block; representation/etc. default to zero values; set the relevant
// fields on the returned Node
// before wiring it into another node's Ins.
func (g *Graph) New(op Opcode, block revec.Block, inputs ...revec.Node) *Node {
	n := &Node{
		id:         g.nextID,
		Op:         op,
		Ins:        inputs,
		NonControl: len(inputs),
		Values:     len(inputs),
		Blk:        block,
		Early:      block,
	}
	g.nextID++
	g.nodes = append(g.nodes, n)
	return n
}

// Nodes returns every node created in this graph, in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// StoreNodes returns every Store/ProtectedStore node in the graph, playing
// the role of the adapter's all_128bit_store_nodes() query.
func (g *Graph) StoreNodes() []revec.Node {
	var out []revec.Node
	for _, n := range g.nodes {
		if n.Op == revec.OpStore || n.Op == revec.OpProtectedStore {
			out = append(out, n)
		}
	}
	return out
}

// Int64Constant creates an Int64Constant node with the given value.
func (g *Graph) Int64Constant(block revec.Block, value int64) *Node {
	n := g.New(revec.OpInt64Constant, block)
	n.ConstVal = value
	n.Const = true
	return n
}

// Int64Add creates an Int64Add node over two inputs.
func (g *Graph) Int64Add(block revec.Block, a, b revec.Node) *Node {
	return g.New(revec.OpInt64Add, block, a, b)
}

// ChangeUint32ToUint64 creates a widening conversion node.
func (g *Graph) ChangeUint32ToUint64(block revec.Block, in revec.Node) *Node {
	return g.New(revec.OpChangeUint32ToUint64, block, in)
}

// ProtectedLoad creates a ProtectedLoad(offsetExpr, index) leaf, marked as
// a 128-bit SIMD load.
func (g *Graph) ProtectedLoad(block revec.Block, offsetExpr, index revec.Node) *Node {
	n := g.New(revec.OpProtectedLoad, block, offsetExpr, index)
	n.Rep = revec.RepSimd128
	n.Simd128 = true
	return n
}

// LoadTransform creates a LoadTransform(offsetExpr, index) leaf with the
// given transform kind.
func (g *Graph) LoadTransform(block revec.Block, offsetExpr, index revec.Node, kind revec.TransformKind) *Node {
	n := g.New(revec.OpLoadTransform, block, offsetExpr, index)
	n.Transform = kind
	n.Simd128 = true
	return n
}

// ExtractF128 creates an ExtractF128(source) node selecting the given
// 128-bit lane out of a wider vector.
func (g *Graph) ExtractF128(block revec.Block, source revec.Node, lane int32) *Node {
	n := g.New(revec.OpExtractF128, block, source)
	n.Lane = lane
	n.Simd128 = true
	return n
}

// F32x4Binary creates a 128-bit SIMD binary op (Add or Mul) over two
// inputs.
func (g *Graph) F32x4Binary(block revec.Block, op Opcode, a, b revec.Node) *Node {
	n := g.New(op, block, a, b)
	n.Simd128 = true
	return n
}

// Phi creates a Phi node over the given value inputs, marked 128-bit SIMD.
// No merge-control input is added; every input is a value input.
func (g *Graph) Phi(block revec.Block, values ...revec.Node) *Node {
	n := g.New(revec.OpPhi, block, values...)
	n.Values = len(values)
	n.NonControl = len(values)
	n.Rep = revec.RepSimd128
	n.Phi = true
	n.Simd128 = true
	return n
}

// LoopExitValue creates a LoopExitValue node over a single input, marked
// 128-bit SIMD.
func (g *Graph) LoopExitValue(block revec.Block, value revec.Node) *Node {
	n := g.New(revec.OpLoopExitValue, block, value)
	n.Values = 1
	n.NonControl = 1
	n.Rep = revec.RepSimd128
	n.Simd128 = true
	return n
}

// Store creates a Store/ProtectedStore(offsetExpr, index, value) node. An
// effect input can be appended afterward by callers that need
// IsSideEffectFreeLoad to see it; by default NonControl covers all three
// positional inputs.
func (g *Graph) Store(block revec.Block, protected bool, offsetExpr, index, value revec.Node) *Node {
	op := revec.OpStore
	if protected {
		op = revec.OpProtectedStore
	}
	n := g.New(op, block, offsetExpr, index, value)
	n.Values = 1 // only the stored value is a "value" input by this pass's accounting
	return n
}

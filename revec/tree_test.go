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

package revec_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ajroetker/revec/internal/irfixture"
	"github.com/ajroetker/revec/revec"
)

// contiguousLoadPair builds two ProtectedLoad nodes at byte offsets off and
// off+16 off a fresh base/index pair, so every call produces an
// independently addressed leaf pair.
func contiguousLoadPair(g *irfixture.Graph, block string, off int64) (revec.Node, revec.Node) {
	base := g.New(revec.OpLoad, block)
	index := g.New(revec.OpLoad, block)
	c0 := g.Int64Constant(block, off)
	c1 := g.Int64Constant(block, off+revec.Simd128Size)
	addr0 := g.Int64Add(block, base, c0)
	addr1 := g.Int64Add(block, base, c1)
	return g.ProtectedLoad(block, addr0, index), g.ProtectedLoad(block, addr1, index)
}

// TestBuildTreeStoreOfSimdAdd is spec scenario 1: two contiguous SIMD
// stores of F32x4Add results, each operand itself a contiguous load pair.
func TestBuildTreeStoreOfSimdAdd(t *testing.T) {
	g := irfixture.NewGraph()
	block := "b0"

	loadA0, loadA1 := contiguousLoadPair(g, block, 0)
	loadB0, loadB1 := contiguousLoadPair(g, block, 0)

	add0 := g.F32x4Binary(block, revec.OpF32x4Add, loadA0, loadB0)
	add1 := g.F32x4Binary(block, revec.OpF32x4Add, loadA1, loadB1)

	storeBase := g.New(revec.OpLoad, block)
	storeIndex := g.New(revec.OpLoad, block)
	off0 := g.Int64Constant(block, 0)
	off16 := g.Int64Constant(block, 16)
	addrExpr0 := g.Int64Add(block, storeBase, off0)
	addrExpr16 := g.Int64Add(block, storeBase, off16)

	store0 := g.Store(block, true, addrExpr0, storeIndex, add0)
	store1 := g.Store(block, true, addrExpr16, storeIndex, add1)

	tree := revec.NewSLPTree(nil)
	root := tree.BuildTree(revec.Group{store0, store1})
	if root == nil {
		t.Fatalf("expected root pack, got nil")
	}

	valuePack := root.Operand(2)
	if valuePack == nil {
		t.Fatalf("expected store value operand to be packed")
	}
	if valuePack.Operand(0) == nil || valuePack.Operand(1) == nil {
		t.Fatalf("expected F32x4Add's two operands to be packed")
	}
	if tree.Registry() == nil {
		t.Fatalf("registry missing")
	}
}

// TestReduceStoreChainNonContiguous is spec scenario 3: a store pair at
// offsets 0 and 32 is not contiguous and produces no pack even though
// there are exactly two candidate stores.
func TestReduceStoreChainNonContiguous(t *testing.T) {
	g := irfixture.NewGraph()
	block := "b0"
	base := g.New(revec.OpLoad, block)
	index := g.New(revec.OpLoad, block)
	c0 := g.Int64Constant(block, 0)
	c32 := g.Int64Constant(block, 32)
	addr0 := g.Int64Add(block, base, c0)
	addr32 := g.Int64Add(block, base, c32)

	store0 := g.Store(block, true, addr0, index, g.Int64Constant(block, 7))
	store1 := g.Store(block, true, addr32, index, g.Int64Constant(block, 7))

	driver := revec.NewDriver(true, nil)
	tree := revec.NewSLPTree(nil)
	if driver.ReduceStoreChain(tree, revec.Group{store0, store1}) {
		t.Fatalf("expected non-contiguous stores to fail ReduceStoreChain")
	}
}

// TestBuildTreeSplatLoadTransform is spec scenario 4: an ExtractF128 of a
// LoadTransform splat, paired with itself as both lanes, succeeds as a
// leaf pack.
func TestBuildTreeSplatLoadTransform(t *testing.T) {
	g := irfixture.NewGraph()
	block := "b0"
	base := g.New(revec.OpLoad, block)
	index := g.New(revec.OpLoad, block)
	loadTransform := g.LoadTransform(block, base, index, revec.TransformS128Load32Splat)
	extract := g.ExtractF128(block, loadTransform, 0)

	tree := revec.NewSLPTree(nil)
	root := tree.BuildTree(revec.Group{extract, extract})
	if root == nil {
		t.Fatalf("expected splat ExtractF128 pair to succeed")
	}
}

// TestBuildTreeDiamondMerge is spec scenario 5: two independent F32x4Mul
// chains both recurse onto the same underlying load pack; the second
// descent must diamond-merge onto the PackNode the first descent built,
// not fail or duplicate it.
func TestBuildTreeDiamondMerge(t *testing.T) {
	g := irfixture.NewGraph()
	block := "b0"

	sharedL0, sharedL1 := contiguousLoadPair(g, block, 0)
	otherA0, otherA1 := contiguousLoadPair(g, block, 0)
	otherB0, otherB1 := contiguousLoadPair(g, block, 0)

	mulA0 := g.F32x4Binary(block, revec.OpF32x4Mul, sharedL0, otherA0)
	mulA1 := g.F32x4Binary(block, revec.OpF32x4Mul, sharedL1, otherA1)
	mulB0 := g.F32x4Binary(block, revec.OpF32x4Mul, sharedL0, otherB0)
	mulB1 := g.F32x4Binary(block, revec.OpF32x4Mul, sharedL1, otherB1)

	add0 := g.F32x4Binary(block, revec.OpF32x4Add, mulA0, mulB0)
	add1 := g.F32x4Binary(block, revec.OpF32x4Add, mulA1, mulB1)

	storeBase := g.New(revec.OpLoad, block)
	storeIndex := g.New(revec.OpLoad, block)
	addrExpr0 := g.Int64Add(block, storeBase, g.Int64Constant(block, 0))
	addrExpr16 := g.Int64Add(block, storeBase, g.Int64Constant(block, 16))
	store0 := g.Store(block, true, addrExpr0, storeIndex, add0)
	store1 := g.Store(block, true, addrExpr16, storeIndex, add1)

	tree := revec.NewSLPTree(nil)
	root := tree.BuildTree(revec.Group{store0, store1})
	if root == nil {
		t.Fatalf("expected root pack despite diamond")
	}

	sharedPack, ok := tree.Registry().Lookup(sharedL0)
	if !ok {
		t.Fatalf("expected shared load to be registered")
	}

	addValuePack := root.Operand(2)
	mulAPack := addValuePack.Operand(0)
	mulBPack := addValuePack.Operand(1)
	if mulAPack.Operand(0) != sharedPack {
		t.Fatalf("expected mulA's shared operand to be the registered pack")
	}
	if mulBPack.Operand(0) != sharedPack {
		t.Fatalf("expected diamond merge to reuse the same PackNode pointer")
	}
}

// TestBuildTreeIllegalCycleThroughNonPhi is spec scenario 6: a cyclic
// operand chain that loops back onto a group still on the recursion stack
// whose top frame is a non-Phi op fails with an illegal cycle, never
// producing a root pack.
func TestBuildTreeIllegalCycleThroughNonPhi(t *testing.T) {
	g := irfixture.NewGraph()
	block := "b0"

	placeholder := g.New(revec.OpLoad, block)

	addA0 := g.New(revec.OpF32x4Add, block)
	addA1 := g.New(revec.OpF32x4Add, block)
	addB0 := g.New(revec.OpF32x4Add, block)
	addB1 := g.New(revec.OpF32x4Add, block)
	for _, n := range []*irfixture.Node{addA0, addA1, addB0, addB1} {
		n.Simd128 = true
	}

	addA0.Ins = []revec.Node{addB0, placeholder}
	addA0.NonControl, addA0.Values = 2, 2
	addA1.Ins = []revec.Node{addB1, placeholder}
	addA1.NonControl, addA1.Values = 2, 2

	addB0.Ins = []revec.Node{addA0, placeholder}
	addB0.NonControl, addB0.Values = 2, 2
	addB1.Ins = []revec.Node{addA1, placeholder}
	addB1.NonControl, addB1.Values = 2, 2

	tree := revec.NewSLPTree(nil)
	root := tree.BuildTree(revec.Group{addA0, addA1})
	if root != nil {
		t.Fatalf("expected cycle through non-phi op to fail, got a root pack")
	}
}

// TestBuildTreeLeavesStackEmpty is invariant 6: BuildTree always returns
// with an empty recursion stack, on both the success and the failure
// path.
func TestBuildTreeLeavesStackEmpty(t *testing.T) {
	g := irfixture.NewGraph()
	block := "b0"

	t.Run("success", func(t *testing.T) {
		l0, l1 := contiguousLoadPair(g, block, 0)
		tree := revec.NewSLPTree(nil)
		if tree.BuildTree(revec.Group{l0, l1}) == nil {
			t.Fatalf("expected success")
		}
		if tree.Stack().Depth() != 0 {
			t.Fatalf("expected empty stack after success, got depth %d", tree.Stack().Depth())
		}
	})

	t.Run("failure", func(t *testing.T) {
		a := g.New(revec.OpLoad, block)
		b := g.New(revec.OpLoad, "b1") // different block: MismatchedBlock
		tree := revec.NewSLPTree(nil)
		if tree.BuildTree(revec.Group{a, b}) != nil {
			t.Fatalf("expected failure")
		}
		if tree.Stack().Depth() != 0 {
			t.Fatalf("expected empty stack after failure, got depth %d", tree.Stack().Depth())
		}
	})
}

// buildLoopExitChain builds `levels` nested LoopExitValue pairs before
// terminating in a leaf ProtectedLoad pair, returning the top pair's two
// lanes. With levels == n, the deepest BuildTreeRec call (the leaf) is
// made at recursion depth n.
func buildLoopExitChain(g *irfixture.Graph, block string, levels int) (revec.Node, revec.Node) {
	if levels == 0 {
		return contiguousLoadPair(g, block, 0)
	}
	child0, child1 := buildLoopExitChain(g, block, levels-1)
	return g.LoopExitValue(block, child0), g.LoopExitValue(block, child1)
}

// TestBuildTreeRecursionDepthBoundary exercises the depth cap: a chain
// whose deepest call lands at RecursionMaxDepth-1 succeeds, and a chain
// one level deeper — whose deepest call would land exactly at
// RecursionMaxDepth — fails.
func TestBuildTreeRecursionDepthBoundary(t *testing.T) {
	t.Run("within bound", func(t *testing.T) {
		g := irfixture.NewGraph()
		lane0, lane1 := buildLoopExitChain(g, "b0", revec.RecursionMaxDepth-1)
		tree := revec.NewSLPTree(nil)
		if tree.BuildTree(revec.Group{lane0, lane1}) == nil {
			t.Fatalf("expected chain at depth %d to succeed", revec.RecursionMaxDepth-1)
		}
	})

	t.Run("exceeds bound", func(t *testing.T) {
		g := irfixture.NewGraph()
		lane0, lane1 := buildLoopExitChain(g, "b0", revec.RecursionMaxDepth)
		tree := revec.NewSLPTree(nil)
		if tree.BuildTree(revec.Group{lane0, lane1}) != nil {
			t.Fatalf("expected chain at depth %d to fail", revec.RecursionMaxDepth)
		}
	})
}

// packShape is a structural snapshot of a pack tree: just the two lane
// ids at each node plus the recursively snapshotted operands, in operand
// order. PackNode itself carries unexported state, so this is what
// comparisons against cmp.Diff actually diff.
type packShape struct {
	Lane0, Lane1 int
	Operands     map[int]*packShape
}

func shapeOf(p *revec.PackNode) *packShape {
	if p == nil {
		return nil
	}
	s := &packShape{Lane0: p.Lane0().ID(), Lane1: p.Lane1().ID(), Operands: map[int]*packShape{}}
	for i := 0; i <= 2; i++ {
		if child := p.Operand(i); child != nil {
			s.Operands[i] = shapeOf(child)
		}
	}
	return s
}

// TestBuildTreeIsDeterministicAcrossCalls builds the same store-of-add
// pair through two independent SLPTree instances and checks the two
// resulting pack trees are structurally identical, via cmp.Diff rather
// than a hand-rolled walk.
func TestBuildTreeIsDeterministicAcrossCalls(t *testing.T) {
	build := func() *revec.PackNode {
		g := irfixture.NewGraph()
		block := "b0"
		loadA0, loadA1 := contiguousLoadPair(g, block, 0)
		loadB0, loadB1 := contiguousLoadPair(g, block, 0)
		add0 := g.F32x4Binary(block, revec.OpF32x4Add, loadA0, loadB0)
		add1 := g.F32x4Binary(block, revec.OpF32x4Add, loadA1, loadB1)
		storeBase := g.New(revec.OpLoad, block)
		storeIndex := g.New(revec.OpLoad, block)
		addrExpr0 := g.Int64Add(block, storeBase, g.Int64Constant(block, 0))
		addrExpr16 := g.Int64Add(block, storeBase, g.Int64Constant(block, 16))
		store0 := g.Store(block, true, addrExpr0, storeIndex, add0)
		store1 := g.Store(block, true, addrExpr16, storeIndex, add1)
		return revec.NewSLPTree(nil).BuildTree(revec.Group{store0, store1})
	}

	first, second := build(), build()
	if diff := cmp.Diff(shapeOf(first), shapeOf(second)); diff != "" {
		t.Fatalf("pack tree shape differs across otherwise-identical builds:\n%s", diff)
	}
}

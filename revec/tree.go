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

// RecursionMaxDepth bounds BuildTreeRec's descent, guarding against
// runaway recursion on unstructured or adversarial graphs. The exact value
// is not load-bearing for correctness, only for termination; 8 comfortably
// covers every pack tree shape this package's tests exercise.
const RecursionMaxDepth = 8

// SLPTree builds a single pack tree from a pair of root nodes. One
// SLPTree instance is reused across BuildTree calls within a driver; each
// call clears the recursion stack and pack registry before it starts.
type SLPTree struct {
	registry *Registry
	stack    *Stack
	tracer   *Tracer
}

// NewSLPTree returns a tree builder that traces through tracer (which may
// be NoopTracer()).
func NewSLPTree(tracer *Tracer) *SLPTree {
	if tracer == nil {
		tracer = NoopTracer()
	}
	return &SLPTree{
		registry: NewRegistry(),
		stack:    NewStack(),
		tracer:   tracer,
	}
}

// Registry exposes the tree's pack registry, populated as a side effect of
// BuildTree. A driver reads this after the call to get at every pack the
// build produced, not just the root.
func (t *SLPTree) Registry() *Registry { return t.registry }

// Stack exposes the tree's recursion stack. Tests use this to assert
// invariant 6 (BuildTree always returns with an empty stack); a driver has
// no ordinary reason to touch it mid-build.
func (t *SLPTree) Stack() *Stack { return t.stack }

// Reset discards the tree's current registry and stack contents without
// waiting for the next BuildTree call. BuildTree always clears on entry
// regardless; Reset exists for callers (e.g. a step-debugging driver) that
// want to discard a partially built tree's registry residue immediately
// after inspecting it, per the open question in DESIGN.md.
func (t *SLPTree) Reset() {
	t.registry.Clear()
	t.stack.Clear()
}

// BuildTree attempts to build a pack tree rooted at the given pair of
// nodes, clearing any state left over from a previous call first. It
// returns the root PackNode on success, or nil if no pairing could be
// proven.
// BuildTree guarantees the recursion stack is empty again by the time it
// returns, success or failure, even though BuildTreeRec's own failure
// paths don't always pop what they pushed (see DESIGN.md: this mirrors the
// original's documented stack/registry residue during a single recursive
// descent, but a top-level caller should never observe it). The pack
// registry is NOT swept the same way: residue there is load-bearing for
// diamond merges between sibling branches of the same BuildTree call.
func (t *SLPTree) BuildTree(roots Group) *PackNode {
	t.tracer.Tracef("Enter BuildTree")
	t.registry.Clear()
	t.stack.Clear()
	result := t.BuildTreeRec(roots, 0)
	t.stack.Clear()
	return result.Pack
}

// BuildTreeRec is the recursive core. See spec §4.F for the full
// preflight-check and dispatch ordering this mirrors.
func (t *SLPTree) BuildTreeRec(group Group, depth int) BuildResult {
	t.tracer.Tracef("Enter BuildTreeRec (#%d %s, #%d %s) depth=%d",
		group[0].ID(), group[0].Opcode(), group[1].ID(), group[1].Opcode(), depth)

	if depth == RecursionMaxDepth {
		t.tracer.Tracef("Failed due to max recursion depth!")
		return fail(ReasonDepthExceeded)
	}

	if t.stack.AllOnStack(group) && !t.stack.TopIsPhi() {
		t.tracer.Tracef("Failed due to (#%d, #%d) on stack!", group[0].ID(), group[1].ID())
		return fail(ReasonIllegalCycle)
	}

	t.stack.Push(group)

	if reason := t.canBePacked(group); reason != ReasonNone {
		return fail(reason)
	}

	if p, reason, handled := t.diamondMerge(group); handled {
		if reason != ReasonNone {
			return fail(reason)
		}
		return ok(p)
	}

	return t.dispatch(group, depth)
}

// canBePacked implements the CanBePacked preflight: shared block, identical
// operator, not both constants (unsupported), and a recognized opcode.
func (t *SLPTree) canBePacked(group Group) Reason {
	if !SameBasicBlock(group[0], group[1]) {
		t.tracer.Tracef("%s(#%d, #%d) not in same BB!", group[0].Opcode(), group[0].ID(), group[1].ID())
		return ReasonMismatchedBlock
	}
	if !AllSameOperator(group) {
		t.tracer.Tracef("%s(#%d, #%d) have different operator!", group[0].Opcode(), group[0].ID(), group[1].ID())
		return ReasonMismatchedOperator
	}
	if AllConstant(group) {
		t.tracer.Tracef("%s(#%d, #%d) are constant, not supported yet!", group[0].Opcode(), group[0].ID(), group[1].ID())
		return ReasonConstantGroup
	}
	if !isPackableOpcode(group[0]) {
		t.tracer.Tracef("Default branch #%d:%s", group[0].ID(), group[0].Opcode())
		return ReasonUnsupportedOpcode
	}
	return ReasonNone
}

func isPackableOpcode(node Node) bool {
	if node.IsSimd128Operation() {
		return true
	}
	switch node.Opcode() {
	case OpStore, OpProtectedStore, OpLoad, OpProtectedLoad, OpPhi, OpLoopExitValue, OpExtractF128:
		return true
	default:
		return false
	}
}

// diamondMerge checks whether either node of the group is already
// registered to a pack. If the existing pack matches the group
// element-wise, the subtree has already been built and is returned as-is
// (handled=true, reason=ReasonNone). If it doesn't match, the overlap is
// only partial and the build fails (handled=true, reason=PartialOverlap).
// If neither node is registered, handled is false and the caller proceeds
// to dispatch.
func (t *SLPTree) diamondMerge(group Group) (*PackNode, Reason, bool) {
	for _, node := range group {
		p, found := t.registry.Lookup(node)
		if !found {
			continue
		}
		if !p.IsSame(group) {
			t.tracer.Tracef("Failed due to partial overlap at #%d,%s!", node.ID(), node.Opcode())
			return nil, ReasonPartialOverlap, true
		}
		t.stack.Pop()
		t.tracer.Tracef("Perfect diamond merge at #%d,%s", node.ID(), node.Opcode())
		return p, ReasonNone, true
	}
	return nil, ReasonNone, false
}

// dispatch applies the opcode-specific leaf/recursive rule for a group
// that has already passed canBePacked and the diamond-merge check.
func (t *SLPTree) dispatch(group Group, depth int) BuildResult {
	switch group[0].Opcode() {
	case OpExtractF128:
		return t.buildExtractF128(group)
	case OpProtectedLoad:
		return t.buildProtectedLoad(group)
	case OpLoadTransform:
		return t.buildLoadTransform(group)
	case OpPhi:
		return t.buildRepresentationGuarded(group, depth)
	case OpLoopExitValue:
		return t.buildRepresentationGuarded(group, depth)
	case OpF32x4Add, OpF32x4Mul:
		return t.buildSimdOp(group, depth)
	case OpStore, OpProtectedStore:
		return t.buildStore(group, depth)
	default:
		t.tracer.Tracef("Default branch #%d:%s", group[0].ID(), group[0].Opcode())
		return fail(ReasonUnsupportedOpcode)
	}
}

// buildExtractF128 handles the ExtractF128 leaf rule: both nodes must
// source from the same node, and either that source is a LoadTransform
// splat (lane-0 == lane-1, broadcast case) or its two lane parameters are
// consecutive.
func (t *SLPTree) buildExtractF128(group Group) BuildResult {
	source0, source1 := group[0].Input(0), group[1].Input(0)
	t.tracer.Tracef("Extract leaf node from #%d,%s!", source0.ID(), source0.Opcode())
	if source0 != source1 {
		t.tracer.Tracef("Failed due to ExtractF128!")
		return fail(ReasonMismatchedOperator)
	}

	var legal bool
	if source0.Opcode() == OpLoadTransform {
		legal = group[0] == group[1]
	} else {
		legal = group[1].ExtractLane() == group[0].ExtractLane()+1
	}
	if !legal {
		t.tracer.Tracef("Failed due to ExtractF128!")
		return fail(ReasonMismatchedOperator)
	}

	t.tracer.Tracef("Added a pair of Extract.")
	p := t.registry.NewPack(group)
	t.stack.Pop()
	return ok(p)
}

// buildProtectedLoad handles the ProtectedLoad leaf rule: same address,
// 128-bit SIMD representation, contiguous once sorted by offset, and no
// side-effect dependency back onto the in-progress tree.
func (t *SLPTree) buildProtectedLoad(group Group) BuildResult {
	t.tracer.Tracef("Load leaf node")
	if !AllSameAddress(group) {
		t.tracer.Tracef("Failed due to different load addr!")
		return fail(ReasonNonMatchingAddress)
	}
	if group[0].Representation() != RepSimd128 {
		return fail(ReasonWrongRepresentation)
	}
	sorted := SortByOffset(group[:])
	if !IsContinuousAccess(sorted) {
		t.tracer.Tracef("Failed due to non-continuous load!")
		return fail(ReasonNonContiguous)
	}
	if !IsSideEffectFreeLoad(group, t.stack) {
		t.tracer.Tracef("Failed due to dependency check")
		return fail(ReasonSideEffect)
	}
	p := t.registry.NewPack(group)
	t.stack.Pop()
	return ok(p)
}

// buildLoadTransform handles the LoadTransform leaf rule: same address,
// identical nodes (splat semantics), and a supported splat kind.
func (t *SLPTree) buildLoadTransform(group Group) BuildResult {
	t.tracer.Tracef("Load leaf node")
	if !AllSameAddress(group) {
		t.tracer.Tracef("Failed due to different load addr!")
		return fail(ReasonNonMatchingAddress)
	}
	if !IsSplat(group) {
		t.tracer.Tracef("LoadTransform Failed due to IsSplat!")
		return fail(ReasonMismatchedOperator)
	}
	switch group[0].TransformKind() {
	case TransformS128Load32Splat, TransformS128Load64Splat:
	default:
		t.tracer.Tracef("LoadTransform failed due to unsupported type #%d!", group[0].ID())
		return fail(ReasonUnsupportedTransform)
	}
	if !IsSideEffectFreeLoad(group, t.stack) {
		t.tracer.Tracef("Failed due to dependency check")
		return fail(ReasonSideEffect)
	}
	p := t.registry.NewPack(group)
	t.stack.Pop()
	return ok(p)
}

// buildRepresentationGuarded handles Phi and LoopExitValue: both require a
// 128-bit SIMD representation, then recurse across every value input.
func (t *SLPTree) buildRepresentationGuarded(group Group, depth int) BuildResult {
	if group[0].Representation() != RepSimd128 {
		return fail(ReasonWrongRepresentation)
	}
	t.tracer.Tracef("Added a vector of PHI/LoopExitValue nodes.")
	return t.newPackAndRecurse(group, 0, group[0].ValueInputCount(), depth)
}

// buildSimdOp handles pure SIMD binary/unary ops (F32x4Add, F32x4Mul, and
// by design any future op reaching this branch): recurse across every
// value input.
func (t *SLPTree) buildSimdOp(group Group, depth int) BuildResult {
	t.tracer.Tracef("Added a vector of un/bin/ter op.")
	return t.newPackAndRecurse(group, 0, group[0].ValueInputCount(), depth)
}

// buildStore handles Store/ProtectedStore: same address (checked here
// since positions 0/1 carry address/index, not recursed into), then
// recurse on exactly the stored-value operand at position 2.
func (t *SLPTree) buildStore(group Group, depth int) BuildResult {
	t.tracer.Tracef("Added a vector of stores.")
	if !AllSameAddress(group) {
		t.tracer.Tracef("Failed due to different store addr!")
		return fail(ReasonNonMatchingAddress)
	}
	return t.newPackAndRecurse(group, 2, 1, depth)
}

// newPackAndRecurse commits a pack for group, then recurses into operand
// positions [start, start+count), wiring each successful child pack. A
// failure at any position propagates up as ChildFailed; the partially
// built pack remains in the registry (see DESIGN.md on registry residue).
//
// Unlike the leaf rules, this path pops the current group off the stack
// unconditionally — on success and on a failed child alike — matching the
// original: Phi/LoopExitValue/SIMD-op/Store all call PopStack() right
// after the recursive helper regardless of its result, while the leaf
// rules and CanBePacked/diamond-merge failures leave the group on the
// stack for the next top-level Clear to reap.
func (t *SLPTree) newPackAndRecurse(group Group, start, count int, depth int) BuildResult {
	p := t.registry.NewPack(group)
	t.tracer.Tracef("PackNode %s(#%d, #%d)", group[0].Opcode(), group[0].ID(), group[1].ID())

	for i := start; i < start+count; i++ {
		operand := Group{group[0].Input(i), group[1].Input(i)}
		child := t.BuildTreeRec(operand, depth+1)
		if child.Failed() {
			t.stack.Pop()
			return fail(ReasonChildFailed)
		}
		t.registry.SetOperand(p, i, child.Pack)
	}

	t.stack.Pop()
	return ok(p)
}

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

// PackNode pairs exactly two IR nodes that have been proven fusible into
// one 256-bit operation, plus the recursive children that feed its
// operands. PackNodes are arena-scoped to a single SLPTree: they are never
// individually freed, and the tree discards all of them at once on the
// next BuildTree call.
type PackNode struct {
	nodes Group

	// operands is sparse: only operand positions the builder actually
	// recursed into are set. Indexed by the IR operand position, not by
	// a dense child count.
	operands map[int]*PackNode

	// revectorized is reserved for the (out-of-scope) materialization
	// stage to stash the 256-bit IR node it builds for this pack.
	revectorized any
}

// Lane0 and Lane1 return the two member nodes, in the order they were
// paired.
func (p *PackNode) Lane0() Node { return p.nodes[0] }
func (p *PackNode) Lane1() Node { return p.nodes[1] }

// Nodes returns the pack's two-element group.
func (p *PackNode) Nodes() Group { return p.nodes }

// Operand returns the child pack wired at the given operand position, or
// nil if nothing was recursed into that position.
func (p *PackNode) Operand(index int) *PackNode {
	return p.operands[index]
}

// Revectorized returns the materialized 256-bit node stashed by a later
// pass, or nil if none has been set yet.
func (p *PackNode) Revectorized() any { return p.revectorized }

// SetRevectorized stashes the materialized 256-bit node for a later
// code-generation stage. The tree builder itself never calls this.
func (p *PackNode) SetRevectorized(n any) { p.revectorized = n }

// IsSame reports whether this pack's two nodes match the given group
// element-wise, in order. A mismatch here on a registry hit is a partial
// overlap: the candidate group shares a node with an existing pack but
// isn't the same pairing.
func (p *PackNode) IsSame(group Group) bool {
	return p.nodes[0] == group[0] && p.nodes[1] == group[1]
}

// Registry is the bidirectional mapping from IR node to the PackNode it
// participates in. It enforces the invariant that no node appears in two
// different packs: NewPack registers both lanes, and a caller that finds
// an existing mapping for a node must either diamond-merge (IsSame) or
// fail (partial overlap) rather than ever overwrite an entry.
type Registry struct {
	byNode map[Node]*PackNode
	all    []*PackNode
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byNode: make(map[Node]*PackNode)}
}

// NewPack allocates a PackNode for a two-element group and inserts both
// nodes into the registry.
func (r *Registry) NewPack(group Group) *PackNode {
	p := &PackNode{nodes: group, operands: make(map[int]*PackNode)}
	r.byNode[group[0]] = p
	r.byNode[group[1]] = p
	r.all = append(r.all, p)
	return p
}

// Lookup returns the PackNode a node participates in, if any.
func (r *Registry) Lookup(node Node) (*PackNode, bool) {
	p, ok := r.byNode[node]
	return p, ok
}

// SetOperand records a recursive child pack at the given operand position.
func (r *Registry) SetOperand(p *PackNode, index int, child *PackNode) {
	p.operands[index] = child
}

// RootPacks returns every pack created since the last Clear, in creation
// order. Used by a driver to enumerate an entire built tree without
// walking operand links (diamond merges make a pure walk revisit nodes).
func (r *Registry) RootPacks() []*PackNode {
	out := make([]*PackNode, len(r.all))
	copy(out, r.all)
	return out
}

// Clear discards every mapping and every allocated PackNode, releasing the
// arena for the next BuildTree call.
func (r *Registry) Clear() {
	clear(r.byNode)
	r.all = r.all[:0]
}

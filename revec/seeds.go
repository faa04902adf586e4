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

import (
	"sort"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// StoreNodeSet is an ordered set of store nodes keyed by constant memory
// offset, offset-ascending. All members are expected (by construction, via
// CollectSeeds) to share the same base address and dominator block.
type StoreNodeSet struct {
	byOffset map[int64]Node
}

func newStoreNodeSet() *StoreNodeSet {
	return &StoreNodeSet{byOffset: make(map[int64]Node)}
}

// Insert adds a store node, keyed by its memory offset. Re-inserting the
// same offset replaces the prior node at that offset.
func (s *StoreNodeSet) Insert(n Node) {
	s.byOffset[MemoryOffset(n)] = n
}

// Len returns the number of distinct offsets in the set.
func (s *StoreNodeSet) Len() int { return len(s.byOffset) }

// Ordered returns the set's members sorted by ascending offset.
func (s *StoreNodeSet) Ordered() []Node {
	offsets := make([]int64, 0, len(s.byOffset))
	for off := range s.byOffset {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	out := make([]Node, len(offsets))
	for i, off := range offsets {
		out[i] = s.byOffset[off]
	}
	return out
}

// chainMap is the second level of the group-of-stores map: base address to
// its offset-ordered StoreNodeSet.
type chainMap = map[Node]*StoreNodeSet

// Driver collects seed store pairs and drives the SLP tree builder across
// every independent chain in a function. It owns the CPU-feature gate and
// the trace sink; the tree builder itself is supplied per call so callers
// can reuse or recreate one as they see fit.
type Driver struct {
	support256 bool
	tracer     *Tracer

	groupOfStores map[Block]chainMap
}

// NewDriver returns a driver gated by support256 (whether the target CPU
// has 256-bit SIMD support — see internal/cpuinfo), tracing through
// tracer.
func NewDriver(support256 bool, tracer *Tracer) *Driver {
	if tracer == nil {
		tracer = NoopTracer()
	}
	return &Driver{support256: support256, tracer: tracer}
}

// SupportsSimd256 reports the driver's CPU-feature gate.
func (d *Driver) SupportsSimd256() bool { return d.support256 }

// CollectSeeds scans every candidate 128-bit store node, groups it by
// (dominator block, base address) into an offset-ordered StoreNodeSet, and
// skips any store whose offset isn't 16-byte aligned. Idempotent: each
// call discards the previous grouping and rebuilds it from scratch, so the
// same input slice always yields the same grouping.
func (d *Driver) CollectSeeds(allStoreNodes []Node) {
	d.groupOfStores = make(map[Block]chainMap)
	for _, node := range allStoreNodes {
		if !IsAlignedSeed(node) {
			continue
		}
		dominator := node.EarlySchedulePosition()
		address := MemoryAddress(node)

		byAddress, ok := d.groupOfStores[dominator]
		if !ok {
			byAddress = make(chainMap)
			d.groupOfStores[dominator] = byAddress
		}
		set, ok := byAddress[address]
		if !ok {
			set = newStoreNodeSet()
			byAddress[address] = set
		}
		set.Insert(node)
	}
}

// ReduceStoreChains walks every StoreNodeSet of size >= 2 and even in
// strides of two, building an SLP tree rooted at each consecutive pair.
// Reports whether at least one pair reduced successfully.
func (d *Driver) ReduceStoreChains(tree *SLPTree, chains chainMap) bool {
	changed := false
	for _, set := range chains {
		chain := set.Ordered()
		if len(chain) < 2 || len(chain)%2 != 0 {
			continue
		}
		for _, pair := range lo.Chunk(chain, 2) {
			if d.ReduceStoreChain(tree, Group{pair[0], pair[1]}) {
				changed = true
			}
		}
	}
	return changed
}

// ReduceStoreChain re-checks contiguity (the StoreNodeSet is offset-sorted
// but may not be dense — a chain with a gap still has size >= 2 even
// after a misaligned or non-contiguous member drops out) and, if the pair
// is contiguous, builds a fresh SLP tree rooted at it.
func (d *Driver) ReduceStoreChain(tree *SLPTree, group Group) bool {
	d.tracer.Tracef("Enter ReduceStoreChain, root@ (#%d,#%d)", group[0].ID(), group[1].ID())
	if !IsContinuousAccess(group[:]) {
		return false
	}
	root := tree.BuildTree(group)
	if root == nil {
		d.tracer.Tracef("Build tree failed!")
		return false
	}
	return true
}

// TryRevectorize is the single-threaded entry point: gated on CPU support
// and on at least one candidate store existing, it collects seeds and
// reduces every chain using one SLPTree instance reused across chains.
// Returns true if any chain reduced successfully.
func (d *Driver) TryRevectorize(allStoreNodes []Node) bool {
	if !d.support256 || len(allStoreNodes) == 0 {
		return false
	}
	d.tracer.Tracef("TryRevectorize")
	d.CollectSeeds(allStoreNodes)

	tree := NewSLPTree(d.tracer)
	success := false
	for _, chains := range d.groupOfStores {
		if d.ReduceStoreChains(tree, chains) {
			success = true
		}
	}
	d.tracer.Tracef("Finish revectorize")
	return success
}

// TryRevectorizeParallel is an additive entry point that fans independent
// dominator-block chains out across an errgroup instead of reducing them
// one at a time. Chains keyed under different dominator blocks, or
// different base addresses within the same block, never share a node (the
// group-of-stores map partitions stores exactly along those lines), so
// each goroutine gets its own SLPTree and there is no shared mutable
// state between them. Spec §5 restricts concurrency only within a single
// BuildTree call, not across independently keyed chains, so this does not
// relax that guarantee — it just runs multiple independent BuildTree
// sessions at once.
func (d *Driver) TryRevectorizeParallel(allStoreNodes []Node) (bool, error) {
	if !d.support256 || len(allStoreNodes) == 0 {
		return false, nil
	}
	d.CollectSeeds(allStoreNodes)

	results := make([]bool, 0, len(d.groupOfStores))
	var g errgroup.Group
	var mu sync.Mutex
	for _, chains := range d.groupOfStores {
		chains := chains
		g.Go(func() error {
			tree := NewSLPTree(d.tracer)
			changed := d.ReduceStoreChains(tree, chains)
			mu.Lock()
			results = append(results, changed)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return lo.SomeBy(results, func(v bool) bool { return v }), nil
}

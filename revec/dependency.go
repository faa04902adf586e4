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

// IsSideEffectFreeLoad walks upward from a candidate load pair's inputs to
// verify that no data path reaches a node currently being assembled into
// the same pack tree. Pairing two loads whose inputs loop back onto an
// in-progress pack would either introduce a cycle into the materialized
// 256-bit graph or silently reorder an effect the host compiler depends
// on, so any such collision fails the pair.
//
// The walk is a plain worklist search, unordered beyond FIFO/LIFO choice
// (a visited set prevents reprocessing either way), and it terminates
// because the IR is a DAG within a single basic block and the visited set
// is finite.
func IsSideEffectFreeLoad(group Group, stack *Stack) bool {
	inGroup := func(n Node) bool {
		return n == group[0] || n == group[1]
	}

	var worklist []Node
	for _, load := range group {
		for i := 0; i < load.FirstControlIndex(); i++ {
			in := load.Input(i)
			if !inGroup(in) {
				worklist = append(worklist, in)
			}
		}
	}

	visited := make(map[Node]bool)
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if visited[n] {
			continue
		}
		visited[n] = true

		if stack.OnStack(n) {
			return false
		}

		if SameBasicBlock(n, group[0]) {
			for i := 0; i < n.FirstControlIndex(); i++ {
				worklist = append(worklist, n.Input(i))
			}
		}
	}
	return true
}

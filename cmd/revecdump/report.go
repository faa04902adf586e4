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

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ajroetker/revec/revec"
)

// maxRenderedOperand is the highest operand position renderPack always
// probes: Store wires only position 2, and LoopExitValue and binary SIMD
// ops wire positions below it. Phi wires one position per value input, so
// renderPack also probes up to lane-0's last value input.
const maxRenderedOperand = 2

// renderPack writes an indented tree view of a pack and its operands to w.
func renderPack(w io.Writer, p *revec.PackNode, depth int) {
	indent := strings.Repeat("  ", depth)
	lane0, lane1 := p.Lane0(), p.Lane1()
	fmt.Fprintf(w, "%s%s(#%d, #%d)\n", indent, lane0.Opcode(), lane0.ID(), lane1.ID())

	last := maxRenderedOperand
	if n := lane0.ValueInputCount() - 1; n > last {
		last = n
	}
	for i := 0; i <= last; i++ {
		child := p.Operand(i)
		if child == nil {
			continue
		}
		fmt.Fprintf(w, "%s  operand[%d]:\n", indent, i)
		renderPack(w, child, depth+2)
	}
}

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

	"github.com/ajroetker/revec/internal/irfixture"
	"github.com/ajroetker/revec/revec"
)

func TestIsSideEffectFreeLoadClean(t *testing.T) {
	g := irfixture.NewGraph()
	base := g.New(revec.OpLoad, "b0")
	idx := g.Int64Constant("b0", 0)
	load0 := g.ProtectedLoad("b0", base, idx)
	load1 := g.ProtectedLoad("b0", base, idx)

	s := revec.NewStack()
	if !revec.IsSideEffectFreeLoad(revec.Group{load0, load1}, s) {
		t.Fatalf("expected load pair with no in-flight dependency to be side-effect free")
	}
}

func TestIsSideEffectFreeLoadDependsOnStack(t *testing.T) {
	g := irfixture.NewGraph()
	busyA := g.New(revec.OpLoad, "b0")
	busyB := g.New(revec.OpLoad, "b0")

	// The load's address expression is itself an in-progress group member.
	idx := g.Int64Constant("b0", 0)
	load0 := g.ProtectedLoad("b0", busyA, idx)
	load1 := g.ProtectedLoad("b0", busyB, idx)

	s := revec.NewStack()
	s.Push(revec.Group{busyA, busyB})

	if revec.IsSideEffectFreeLoad(revec.Group{load0, load1}, s) {
		t.Fatalf("expected dependency on an in-flight group to fail the side-effect check")
	}
}

func TestIsSideEffectFreeLoadWalksTransitively(t *testing.T) {
	g := irfixture.NewGraph()
	busy := g.New(revec.OpLoad, "b0")
	mid := g.Int64Add("b0", busy, g.Int64Constant("b0", 0))
	idx := g.Int64Constant("b0", 0)
	load0 := g.ProtectedLoad("b0", mid, idx)
	load1 := g.ProtectedLoad("b0", mid, idx)

	s := revec.NewStack()
	s.Push(revec.Group{busy, busy})

	if revec.IsSideEffectFreeLoad(revec.Group{load0, load1}, s) {
		t.Fatalf("expected a transitive dependency through Int64Add to fail the check")
	}
}

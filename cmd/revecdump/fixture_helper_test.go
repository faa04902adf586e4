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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// packableFixtureSource is a fixture: two contiguous SIMD stores (#24,
// #25) of an F32x4Add (#16, #17) of two independent contiguous load pairs
// (#6/#7 and #14/#15). BuildTree over the store pair succeeds, giving
// dump/scan commands a deterministic positive case.
const packableFixtureSource = `package fixtures

import "github.com/ajroetker/revec/internal/irfixture"

var Fixture = []irfixture.NodeSpec{
	{ID: 0, Op: "Load", Block: "b0"},
	{ID: 1, Op: "Load", Block: "b0"},
	{ID: 2, Op: "Int64Constant", Block: "b0", ConstVal: 0},
	{ID: 3, Op: "Int64Constant", Block: "b0", ConstVal: 16},
	{ID: 4, Op: "Int64Add", Block: "b0", Inputs: []int{0, 2}},
	{ID: 5, Op: "Int64Add", Block: "b0", Inputs: []int{0, 3}},
	{ID: 6, Op: "ProtectedLoad", Block: "b0", Inputs: []int{4, 1}, Rep: "Simd128"},
	{ID: 7, Op: "ProtectedLoad", Block: "b0", Inputs: []int{5, 1}, Rep: "Simd128"},
	{ID: 8, Op: "Load", Block: "b0"},
	{ID: 9, Op: "Load", Block: "b0"},
	{ID: 10, Op: "Int64Constant", Block: "b0", ConstVal: 0},
	{ID: 11, Op: "Int64Constant", Block: "b0", ConstVal: 16},
	{ID: 12, Op: "Int64Add", Block: "b0", Inputs: []int{8, 10}},
	{ID: 13, Op: "Int64Add", Block: "b0", Inputs: []int{8, 11}},
	{ID: 14, Op: "ProtectedLoad", Block: "b0", Inputs: []int{12, 9}, Rep: "Simd128"},
	{ID: 15, Op: "ProtectedLoad", Block: "b0", Inputs: []int{13, 9}, Rep: "Simd128"},
	{ID: 16, Op: "F32x4Add", Block: "b0", Inputs: []int{6, 14}},
	{ID: 17, Op: "F32x4Add", Block: "b0", Inputs: []int{7, 15}},
	{ID: 18, Op: "Load", Block: "b0"},
	{ID: 19, Op: "Load", Block: "b0"},
	{ID: 20, Op: "Int64Constant", Block: "b0", ConstVal: 0},
	{ID: 21, Op: "Int64Constant", Block: "b0", ConstVal: 16},
	{ID: 22, Op: "Int64Add", Block: "b0", Inputs: []int{18, 20}},
	{ID: 23, Op: "Int64Add", Block: "b0", Inputs: []int{18, 21}},
	{ID: 24, Op: "ProtectedStore", Block: "b0", Inputs: []int{22, 19, 16}, Values: 1},
	{ID: 25, Op: "ProtectedStore", Block: "b0", Inputs: []int{23, 19, 17}, Values: 1},
}
`

// mismatchedBlockFixtureSource declares two ProtectedLoad leaves (#4, #7)
// that disagree on block, so canBePacked rejects the pair before any
// dispatch rule runs.
const mismatchedBlockFixtureSource = `package fixtures

import "github.com/ajroetker/revec/internal/irfixture"

var Fixture = []irfixture.NodeSpec{
	{ID: 0, Op: "Load", Block: "b0"},
	{ID: 1, Op: "Load", Block: "b0"},
	{ID: 2, Op: "Int64Constant", Block: "b0", ConstVal: 0},
	{ID: 3, Op: "Int64Add", Block: "b0", Inputs: []int{0, 2}},
	{ID: 4, Op: "ProtectedLoad", Block: "b0", Inputs: []int{3, 1}, Rep: "Simd128"},
	{ID: 5, Op: "Int64Constant", Block: "b1", ConstVal: 16},
	{ID: 6, Op: "Int64Add", Block: "b1", Inputs: []int{0, 5}},
	{ID: 7, Op: "ProtectedLoad", Block: "b1", Inputs: []int{6, 1}, Rep: "Simd128"},
}
`

// storelessFixtureSource declares a single node and no stores at all, so
// scan has nothing to seed from regardless of the CPU support gate.
const storelessFixtureSource = `package fixtures

import "github.com/ajroetker/revec/internal/irfixture"

var Fixture = []irfixture.NodeSpec{
	{ID: 0, Op: "Int64Constant", Block: "b0", ConstVal: 0},
}
`

// writeFixture writes src to a temp file named fixture.go and returns its
// path, so each test gets an isolated file on disk for ParseFixtureFile.
func writeFixture(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.go")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

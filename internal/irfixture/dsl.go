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

package irfixture

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/ajroetker/revec/revec"
)

// NodeSpec is the declarative, file-friendly description of one fixture
// node: an opcode name, a block label, and a list of input node ids
// referring to other specs in the same file, declared earlier or later
// (see BuildGraph). cmd/revecdump accepts
// fixtures in this shape as an alternative to building an
// irfixture.Graph by hand in Go.
type NodeSpec struct {
	ID        int
	Op        string
	Block     string
	Inputs    []int
	Values    int
	ConstVal  int64
	Lane      int32
	Transform string
	Rep       string
}

// ParseFixtureFile reads a Go source file declaring:
//
//	var Fixture = []irfixture.NodeSpec{
//	    {ID: 0, Op: "Int64Constant", Block: "b0", ConstVal: 16},
//	    {ID: 1, Op: "ProtectedLoad", Block: "b0", Inputs: []int{0, 2}, Rep: "Simd128"},
//	    ...
//	}
//
// and returns the decoded specs in source order. It uses go/ast's package
// (not a hand-rolled tokenizer) the way cmd/hwygen/init_evaluator.go reads
// Go source to evaluate init() globals, and astutil.Apply to walk the
// declaration looking for the composite literal elements rather than
// matching on token position.
func ParseFixtureFile(path string) ([]NodeSpec, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse fixture file: %w", err)
	}

	var elems []*ast.CompositeLit
	astutil.Apply(file, func(c *astutil.Cursor) bool {
		decl, ok := c.Node().(*ast.ValueSpec)
		if !ok || len(decl.Names) != 1 || decl.Names[0].Name != "Fixture" {
			return true
		}
		if len(decl.Values) != 1 {
			return true
		}
		sliceLit, ok := decl.Values[0].(*ast.CompositeLit)
		if !ok {
			return true
		}
		for _, el := range sliceLit.Elts {
			if lit, ok := el.(*ast.CompositeLit); ok {
				elems = append(elems, lit)
			}
		}
		return true
	}, nil)

	if elems == nil {
		return nil, fmt.Errorf("parse fixture file: no `var Fixture = []irfixture.NodeSpec{...}` declaration found")
	}

	specs := make([]NodeSpec, 0, len(elems))
	for _, lit := range elems {
		spec, err := decodeNodeSpec(lit)
		if err != nil {
			return nil, fmt.Errorf("decode fixture node: %w", err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func decodeNodeSpec(lit *ast.CompositeLit) (NodeSpec, error) {
	var spec NodeSpec
	for _, el := range lit.Elts {
		kv, ok := el.(*ast.KeyValueExpr)
		if !ok {
			return spec, fmt.Errorf("expected keyed struct fields, got positional literal")
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}
		switch key.Name {
		case "ID":
			v, err := intLit(kv.Value)
			if err != nil {
				return spec, err
			}
			spec.ID = int(v)
		case "Op":
			s, err := stringLit(kv.Value)
			if err != nil {
				return spec, err
			}
			spec.Op = s
		case "Block":
			s, err := stringLit(kv.Value)
			if err != nil {
				return spec, err
			}
			spec.Block = s
		case "Values":
			v, err := intLit(kv.Value)
			if err != nil {
				return spec, err
			}
			spec.Values = int(v)
		case "ConstVal":
			v, err := intLit(kv.Value)
			if err != nil {
				return spec, err
			}
			spec.ConstVal = v
		case "Lane":
			v, err := intLit(kv.Value)
			if err != nil {
				return spec, err
			}
			spec.Lane = int32(v)
		case "Transform":
			s, err := stringLit(kv.Value)
			if err != nil {
				return spec, err
			}
			spec.Transform = s
		case "Rep":
			s, err := stringLit(kv.Value)
			if err != nil {
				return spec, err
			}
			spec.Rep = s
		case "Inputs":
			ins, err := intSliceLit(kv.Value)
			if err != nil {
				return spec, err
			}
			spec.Inputs = ins
		}
	}
	return spec, nil
}

func intLit(e ast.Expr) (int64, error) {
	bl, ok := e.(*ast.BasicLit)
	if !ok || bl.Kind != token.INT {
		return 0, fmt.Errorf("expected int literal, got %T", e)
	}
	return strconv.ParseInt(bl.Value, 0, 64)
}

func stringLit(e ast.Expr) (string, error) {
	bl, ok := e.(*ast.BasicLit)
	if !ok || bl.Kind != token.STRING {
		return "", fmt.Errorf("expected string literal, got %T", e)
	}
	return strconv.Unquote(bl.Value)
}

func intSliceLit(e ast.Expr) ([]int, error) {
	lit, ok := e.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("expected []int composite literal, got %T", e)
	}
	out := make([]int, 0, len(lit.Elts))
	for _, el := range lit.Elts {
		v, err := intLit(el)
		if err != nil {
			return nil, err
		}
		out = append(out, int(v))
	}
	return out, nil
}

// BuildGraph materializes a Graph from specs, resolving Inputs references
// by spec ID (specs may reference any earlier or later ID; forward
// references are resolved in a second pass since real IR graphs allow
// Phi/LoopExitValue back-edges).
func BuildGraph(specs []NodeSpec) (*Graph, map[int]*Node, error) {
	g := NewGraph()
	byID := make(map[int]*Node, len(specs))

	for _, spec := range specs {
		op, err := opcodeByName(spec.Op)
		if err != nil {
			return nil, nil, fmt.Errorf("node %d: %w", spec.ID, err)
		}
		n := g.New(op, spec.Block)
		byID[spec.ID] = n
	}

	for _, spec := range specs {
		n := byID[spec.ID]
		ins := make([]revec.Node, len(spec.Inputs))
		for i, ref := range spec.Inputs {
			target, ok := byID[ref]
			if !ok {
				return nil, nil, fmt.Errorf("node %d references unknown input id %d", spec.ID, ref)
			}
			ins[i] = target
		}
		n.Ins = ins
		n.NonControl = len(ins)
		if spec.Values > 0 {
			n.Values = spec.Values
		} else {
			n.Values = len(ins)
		}
		n.ConstVal = spec.ConstVal
		n.Lane = spec.Lane
		n.Early = spec.Block

		switch op := n.Op; op {
		case revec.OpInt64Constant:
			n.Const = true
		case revec.OpProtectedLoad, revec.OpLoadTransform, revec.OpExtractF128,
			revec.OpF32x4Add, revec.OpF32x4Mul:
			n.Simd128 = true
		case revec.OpPhi:
			n.Phi = true
			n.Simd128 = true
		case revec.OpLoopExitValue:
			n.Simd128 = true
		}

		if spec.Rep == "Simd128" {
			n.Rep = revec.RepSimd128
		}
		switch spec.Transform {
		case "S128Load32Splat":
			n.Transform = revec.TransformS128Load32Splat
		case "S128Load64Splat":
			n.Transform = revec.TransformS128Load64Splat
		}
	}

	return g, byID, nil
}

func opcodeByName(name string) (revec.Opcode, error) {
	switch name {
	case "Int64Constant":
		return revec.OpInt64Constant, nil
	case "Int64Add":
		return revec.OpInt64Add, nil
	case "ChangeUint32ToUint64":
		return revec.OpChangeUint32ToUint64, nil
	case "Load":
		return revec.OpLoad, nil
	case "LoadFromObject":
		return revec.OpLoadFromObject, nil
	case "ProtectedLoad":
		return revec.OpProtectedLoad, nil
	case "LoadTransform":
		return revec.OpLoadTransform, nil
	case "Store":
		return revec.OpStore, nil
	case "ProtectedStore":
		return revec.OpProtectedStore, nil
	case "Phi":
		return revec.OpPhi, nil
	case "LoopExitValue":
		return revec.OpLoopExitValue, nil
	case "ExtractF128":
		return revec.OpExtractF128, nil
	case "F32x4Add":
		return revec.OpF32x4Add, nil
	case "F32x4Mul":
		return revec.OpF32x4Mul, nil
	default:
		return revec.OpUnknown, fmt.Errorf("unknown opcode %q", name)
	}
}

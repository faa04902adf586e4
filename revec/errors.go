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

// Reason names why a candidate pack was rejected. None of these are
// exceptional: every BuildTreeRec failure is an expected outcome of an
// opportunistic pass, not an error condition, so Reason is carried
// alongside a nil *PackNode rather than as a Go error.
type Reason int

const (
	// ReasonNone is the zero value, used when a pack was built
	// successfully and no rejection reason applies.
	ReasonNone Reason = iota
	ReasonDepthExceeded
	ReasonIllegalCycle
	ReasonMismatchedBlock
	ReasonMismatchedOperator
	ReasonConstantGroup
	ReasonUnsupportedOpcode
	ReasonPartialOverlap
	ReasonNonContiguous
	ReasonNonMatchingAddress
	ReasonWrongRepresentation
	ReasonUnsupportedTransform
	ReasonSideEffect
	ReasonChildFailed
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonDepthExceeded:
		return "DepthExceeded"
	case ReasonIllegalCycle:
		return "IllegalCycle"
	case ReasonMismatchedBlock:
		return "MismatchedBlock"
	case ReasonMismatchedOperator:
		return "MismatchedOperator"
	case ReasonConstantGroup:
		return "ConstantGroup"
	case ReasonUnsupportedOpcode:
		return "UnsupportedOpcode"
	case ReasonPartialOverlap:
		return "PartialOverlap"
	case ReasonNonContiguous:
		return "NonContiguous"
	case ReasonNonMatchingAddress:
		return "NonMatchingAddress"
	case ReasonWrongRepresentation:
		return "WrongRepresentation"
	case ReasonUnsupportedTransform:
		return "UnsupportedTransform"
	case ReasonSideEffect:
		return "SideEffect"
	case ReasonChildFailed:
		return "ChildFailed"
	default:
		return "unknown"
	}
}

// BuildResult is the outcome of a single BuildTreeRec call: either a
// committed pack, or a rejection reason. There is no third "error" case —
// see the doc comment on Reason.
type BuildResult struct {
	Pack   *PackNode
	Reason Reason
}

// ok builds a successful result.
func ok(p *PackNode) BuildResult { return BuildResult{Pack: p, Reason: ReasonNone} }

// fail builds a rejection result.
func fail(reason Reason) BuildResult { return BuildResult{Reason: reason} }

// Failed reports whether the result carries no pack.
func (b BuildResult) Failed() bool { return b.Pack == nil }

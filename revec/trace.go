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
	"fmt"
	"io"
	"os"
)

// Tracer emits the pass's structured diagnostic lines (pushes/pops, pack
// creations, rejection reasons), all prefixed "Revec: " per spec. Tracing
// is gated on a construction-time boolean rather than checked per call
// site, so a Tracer built with enabled=false costs nothing beyond the
// branch in Tracef.
type Tracer struct {
	w       io.Writer
	enabled bool
}

// NewTracer returns a Tracer that writes to w when enabled is true, and is
// a no-op otherwise. A nil w defaults to os.Stderr.
func NewTracer(enabled bool, w io.Writer) *Tracer {
	if w == nil {
		w = os.Stderr
	}
	return &Tracer{w: w, enabled: enabled}
}

// NoopTracer returns a Tracer that never writes anything. Convenient for
// call sites (tests, the default driver) that don't want to plumb a flag.
func NoopTracer() *Tracer {
	return &Tracer{enabled: false}
}

// Enabled reports whether this tracer will actually write anything.
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

// Tracef writes a "Revec: "-prefixed, printf-formatted line when tracing
// is enabled. Safe to call on a nil *Tracer.
func (t *Tracer) Tracef(format string, args ...any) {
	if !t.Enabled() {
		return
	}
	fmt.Fprintf(t.w, "Revec: "+format+"\n", args...)
}

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

// Package cpuinfo probes the host CPU for the 256-bit SIMD support the
// revectorizer gates on, adapted from go-highway's diagnostic
// internal/cpuinfo tool. Unlike that tool, this package doesn't print
// anything — it's consumed programmatically by the pass driver.
package cpuinfo

import (
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"
)

// Supports256BitSIMD reports whether the current CPU has 256-bit
// integer/FP vector support: AVX2 on amd64. ARM64's NEON register file
// tops out at 128 bits (SVE/SVE2 are variable-width and not the "pair two
// 128-bit lanes into one 256-bit op" shape this pass targets), so arm64
// always reports false here.
//
// The result is process-lifetime and computed once; repeated calls are
// cheap.
var Supports256BitSIMD = sync.OnceValue(detect256BitSIMD)

func detect256BitSIMD() bool {
	switch runtime.GOARCH {
	case "amd64":
		return cpu.X86.HasAVX2
	default:
		return false
	}
}

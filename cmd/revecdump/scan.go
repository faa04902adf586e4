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

	"github.com/spf13/cobra"

	"github.com/ajroetker/revec/internal/cpuinfo"
	"github.com/ajroetker/revec/internal/irfixture"
	"github.com/ajroetker/revec/revec"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	Force256 bool
}

// newScanCommand runs the whole-fixture Driver pass (the one a real
// compiler invocation would use) over every store node in the fixture.
func newScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan <fixture.go>",
		Short: "Run the seed-collecting driver over every store in a fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Force256, "force-256", false,
		"treat the target as 256-bit-SIMD capable regardless of the host CPU probe")
	return cmd
}

func runScan(opts *ScanOptions, cmd *cobra.Command, args []string) error {
	fixturePath := args[0]

	specs, err := irfixture.ParseFixtureFile(fixturePath)
	if err != nil {
		return wrapExitError(ExitCommandError, "parse fixture", err)
	}
	g, _, err := irfixture.BuildGraph(specs)
	if err != nil {
		return wrapExitError(ExitCommandError, "build graph", err)
	}

	support256 := opts.Force256 || cpuinfo.Supports256BitSIMD()
	tracer := revec.NewTracer(opts.Trace, cmd.ErrOrStderr())
	driver := revec.NewDriver(support256, tracer)

	stores := g.StoreNodes()
	var changed bool
	if opts.Parallel {
		changed, err = driver.TryRevectorizeParallel(stores)
		if err != nil {
			return wrapExitError(ExitCommandError, "parallel scan", err)
		}
	} else {
		changed = driver.TryRevectorize(stores)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "stores=%d support256=%t revectorized=%t\n",
		len(stores), support256, changed)

	if !changed {
		return newExitError(ExitNoPack, "no store chain revectorized")
	}
	return nil
}

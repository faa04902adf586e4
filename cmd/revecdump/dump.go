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
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/ajroetker/revec/internal/irfixture"
	"github.com/ajroetker/revec/revec"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Verbose bool
}

// newDumpCommand builds a single root pair from a fixture file and runs
// BuildTree over it directly, printing the resulting pack tree (or the
// rejection reason on failure).
func newDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump <fixture.go> <id0> <id1>",
		Short: "Build a pack tree rooted at one pair of fixture node ids",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "spew.Dump the root nodes on failure")
	return cmd
}

func runDump(opts *DumpOptions, cmd *cobra.Command, args []string) error {
	fixturePath, id0Arg, id1Arg := args[0], args[1], args[2]

	id0, err := strconv.Atoi(id0Arg)
	if err != nil {
		return wrapExitError(ExitCommandError, "invalid node id", err)
	}
	id1, err := strconv.Atoi(id1Arg)
	if err != nil {
		return wrapExitError(ExitCommandError, "invalid node id", err)
	}

	specs, err := irfixture.ParseFixtureFile(fixturePath)
	if err != nil {
		return wrapExitError(ExitCommandError, "parse fixture", err)
	}
	_, byID, err := irfixture.BuildGraph(specs)
	if err != nil {
		return wrapExitError(ExitCommandError, "build graph", err)
	}

	lane0, ok := byID[id0]
	if !ok {
		return newExitError(ExitCommandError, fmt.Sprintf("no fixture node with id %d", id0))
	}
	lane1, ok := byID[id1]
	if !ok {
		return newExitError(ExitCommandError, fmt.Sprintf("no fixture node with id %d", id1))
	}

	tracer := revec.NewTracer(opts.Trace, cmd.ErrOrStderr())
	tree := revec.NewSLPTree(tracer)

	root := tree.BuildTree(revec.Group{lane0, lane1})
	if root == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "no pack: (#%d, #%d) did not build\n", id0, id1)
		if opts.Verbose {
			spew.Fdump(cmd.OutOrStdout(), lane0, lane1)
		}
		return newExitError(ExitNoPack, fmt.Sprintf("pair (#%d, #%d) failed to build", id0, id1))
	}

	renderPack(cmd.OutOrStdout(), root, 0)
	return nil
}

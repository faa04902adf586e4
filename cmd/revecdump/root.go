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
	"github.com/spf13/cobra"
)

// RootOptions holds flags shared by every revecdump subcommand.
type RootOptions struct {
	Trace    bool
	Parallel bool
}

// NewRootCommand builds the revecdump command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "revecdump",
		Short: "Inspect the SLP revectorizer pack tree over a fixture IR graph",
		Long: `revecdump drives the revec SLP tree builder over a small, file-based
IR fixture instead of a real compiler pipeline, for debugging and for
exploring the pass's pairing decisions one candidate at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "print Revec: trace lines to stderr")
	cmd.PersistentFlags().BoolVar(&opts.Parallel, "parallel", false, "use TryRevectorizeParallel for the scan command")

	cmd.AddCommand(newDumpCommand(opts))
	cmd.AddCommand(newScanCommand(opts))

	return cmd
}

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
	"errors"
	"fmt"
)

// Exit codes for revecdump commands.
const (
	ExitSuccess      = 0
	ExitNoPack       = 1 // the requested pair (or every seed) failed to build
	ExitCommandError = 2 // bad fixture path, malformed fixture, bad node id
)

// ExitError carries the process exit code alongside the error message
// cobra prints, the way roach88-nysm's CLI threads an exit code through
// its own ExitError type.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func newExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func wrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// exitCode extracts the process exit code from an error, defaulting to
// ExitCommandError for anything that isn't an *ExitError.
func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

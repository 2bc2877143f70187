/*
 Copyright (c) 2025 Arenadata Softwer LLC.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package errdefs defines the error kinds reported by sealctl.
//
// Every failure is wrapped with one of the sentinel errors below so callers
// can classify it with errors.Is regardless of the underlying cause.
package errdefs

import "errors"

var (
	// ErrValidation reports bad or missing command line input.
	ErrValidation = errors.New("validation error")

	// ErrMissingInput reports type-specific required fields that were not supplied.
	ErrMissingInput = errors.New("missing input")

	// ErrNoOp reports an update that has nothing to change.
	ErrNoOp = errors.New("nothing to update")

	// ErrNotFound reports an update or delete target that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrGateway reports a failure of the sealing gateway or the secret object builder.
	ErrGateway = errors.New("gateway error")

	// ErrStore reports a filesystem failure while reading, writing or deleting a manifest.
	ErrStore = errors.New("store error")

	// ErrAborted reports that the operator declined the confirmation.
	ErrAborted = errors.New("aborted")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrValidation, "ValidationError"},
	{ErrMissingInput, "MissingInputError"},
	{ErrNoOp, "NoOpError"},
	{ErrNotFound, "NotFoundError"},
	{ErrGateway, "GatewayError"},
	{ErrStore, "StoreError"},
	{ErrAborted, "Aborted"},
}

// Kind returns the name of the error kind err belongs to, or "Error" if none matches.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Error"
}

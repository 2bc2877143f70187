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

package lifecycle

import (
	"fmt"
	"slices"

	"github.com/arenadata/sealctl/pkg/errdefs"
)

type Operation string

const (
	FetchSealKey Operation = "fetch-seal-key"
	Create       Operation = "create"
	Update       Operation = "update"
	Delete       Operation = "delete"
)

var Operations = []Operation{FetchSealKey, Create, Update, Delete}

func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !slices.Contains(Operations, op) {
		return "", fmt.Errorf("%w: unknown operation %q, must be one of %v", errdefs.ErrValidation, s, Operations)
	}
	return op, nil
}

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

package merge

import (
	"fmt"
	"strings"
)

// EncryptedDataPath locates the ciphertext mapping in a SealedSecret.
var EncryptedDataPath = []string{"spec", "encryptedData"}

// Operation describes a single update of a manifest.
type Operation struct {
	// Base is the manifest on disk. It may be nil.
	Base Tree
	// Incoming is the fragment sealed from the newly supplied key sources.
	Incoming Tree
	// Deletions are field keys removed from the encrypted data after merging.
	Deletions []string
	// Path overrides EncryptedDataPath.
	Path []string
}

func (op Operation) path() []string {
	if len(op.Path) > 0 {
		return op.Path
	}
	return EncryptedDataPath
}

// Merge returns existing with incoming merged on top of it. Mappings present on both
// sides are merged recursively, for any other value incoming wins. A null incoming value
// never replaces an existing mapping. Neither argument is modified.
func Merge(existing, incoming Tree) Tree {
	if existing == nil {
		return incoming.Clone()
	}
	return Tree(mergeMaps(existing, incoming))
}

func mergeMaps(a, b map[string]any) map[string]any {
	out := cloneMap(a)
	for k, bv := range b {
		av, ok := out[k]
		if !ok {
			out[k] = cloneValue(bv)
			continue
		}

		am, aIsMap := asMap(av)
		bm, bIsMap := asMap(bv)
		switch {
		case aIsMap && bIsMap:
			out[k] = mergeMaps(am, bm)
		case aIsMap && bv == nil:
			// keep existing
		default:
			out[k] = cloneValue(bv)
		}
	}
	return out
}

// Apply merges op.Incoming into op.Base and then removes op.Deletions from the encrypted
// data mapping. Keys that are absent are ignored. The inputs are left untouched, so a
// failed Apply leaves nothing half done.
func Apply(op Operation) (Tree, error) {
	result := Merge(op.Base, op.Incoming)
	if len(op.Deletions) == 0 {
		return result, nil
	}

	path := op.path()
	data, err := encryptedData(result, path)
	if err != nil {
		return nil, err
	}
	for _, key := range op.Deletions {
		delete(data, key)
	}

	return result, nil
}

func encryptedData(t Tree, path []string) (map[string]any, error) {
	cur := map[string]any(t)
	for i, key := range path {
		v, ok := cur[key]
		if !ok || v == nil {
			// Nothing sealed yet, deletion is a no-op.
			return map[string]any{}, nil
		}
		next, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("%s is %T, not a mapping", strings.Join(path[:i+1], "."), v)
		}
		cur = next
	}
	return cur, nil
}

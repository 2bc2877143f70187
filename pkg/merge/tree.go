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

// Package merge combines a freshly sealed manifest fragment with the manifest already
// committed to the repository.
//
// Documents are handled as generic trees: mappings are merged key by key, everything
// else (scalars, sequences, ciphertext) is an opaque leaf.
package merge

import (
	"fmt"
	"reflect"
	"slices"
)

// Tree is a decoded document. Nested mappings are map[string]any.
type Tree map[string]any

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	return Tree(cloneMap(t))
}

// Lookup follows path through nested mappings.
func (t Tree) Lookup(path ...string) (map[string]any, bool) {
	cur := map[string]any(t)
	for _, key := range path {
		next, ok := asMap(cur[key])
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

// Keys returns the sorted keys of the mapping at path.
func (t Tree) Keys(path ...string) []string {
	m, ok := t.Lookup(path...)
	if !ok {
		return nil
	}
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Equal reports whether a and b are structurally equal. A nil tree equals an empty one.
func Equal(a, b Tree) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(map[string]any(a), map[string]any(b))
}

// Normalize converts mappings with non-string keys, as produced by some decoders, into
// map[string]any so that the merge sees a single mapping type.
func Normalize(v any) any {
	switch t := v.(type) {
	case Tree:
		return Tree(normalizeMap(t))
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[fmt.Sprint(k)] = Normalize(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = Normalize(v)
		}
		return out
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case Tree:
		return t, true
	case map[string]any:
		return t, true
	default:
		return nil, false
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if m, ok := asMap(v); ok {
		return cloneMap(m)
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

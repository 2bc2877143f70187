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

package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arenadata/sealctl/apis/sealing/v1alpha1"
	"github.com/arenadata/sealctl/internal/runtime"
	"github.com/arenadata/sealctl/pkg/merge"

	"gopkg.in/yaml.v3"
)

// Decode parses a manifest into a tree. A manifest holds a single document, further
// documents are an error so that rewriting the tree never drops them. An empty manifest
// yields an empty tree.
func Decode(b []byte) (merge.Tree, error) {
	var doc map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, errors.New("decode manifest: more than one document")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if doc == nil {
		return merge.Tree{}, nil
	}
	return merge.Normalize(merge.Tree(doc)).(merge.Tree), nil
}

func Encode(t merge.Tree) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(t)); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks that b is a well-formed SealedSecret.
func Validate(b []byte) (*v1alpha1.SealedSecret, error) {
	ss, err := runtime.DecodeInto[*v1alpha1.SealedSecret](b)
	if err != nil {
		return nil, err
	}
	if err = ss.Validate(); err != nil {
		return nil, err
	}
	return ss, nil
}

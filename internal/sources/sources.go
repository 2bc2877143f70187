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

// Package sources expands key files into literal key sources.
package sources

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"

	"github.com/getsops/sops/v3/cmd/sops/formats"
	"github.com/getsops/sops/v3/decrypt"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvFile returns one literal source per variable in a dotenv file, sorted by key.
func EnvFile(path string) ([]descriptor.KeySource, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read env file %s: %w", errdefs.ErrValidation, path, err)
	}
	return literals(env), nil
}

// SopsFile decrypts a sops encrypted yaml, json or dotenv file. Nested keys are joined
// with '.'.
func SopsFile(path string) ([]descriptor.KeySource, error) {
	var format string
	switch {
	case formats.IsYAMLFile(path):
		format = "yaml"
	case formats.IsJSONFile(path):
		format = "json"
	case formats.IsEnvFile(path):
		format = "dotenv"
	default:
		return nil, fmt.Errorf("%w: unsupported sops file %s", errdefs.ErrValidation, path)
	}

	plain, err := decrypt.File(path, format)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt %s: %w", errdefs.ErrGateway, path, err)
	}

	values, err := parse(plain, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errdefs.ErrValidation, path, err)
	}
	return literals(values), nil
}

func parse(b []byte, format string) (map[string]string, error) {
	if format == "dotenv" {
		return godotenv.UnmarshalBytes(b)
	}

	doc := make(map[string]any)
	var err error
	if format == "json" {
		err = json.Unmarshal(b, &doc)
	} else {
		err = yaml.Unmarshal(b, &doc)
	}
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	if err = flatten(out, "", doc); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(out map[string]string, prefix string, m map[string]any) error {
	for k, v := range m {
		key := k
		if len(prefix) > 0 {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(out, key, val); err != nil {
				return err
			}
		case []any:
			return fmt.Errorf("%s: sequences cannot be stored as secret fields", key)
		case nil:
			out[key] = ""
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return nil
}

func literals(values map[string]string) []descriptor.KeySource {
	out := make([]descriptor.KeySource, 0, len(values))
	var keys []string
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out = append(out, descriptor.KeySource{Key: k, Value: values[k]})
	}
	return out
}

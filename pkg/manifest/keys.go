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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
	"github.com/arenadata/sealctl/pkg/utils"
)

const keyExt = ".pem"

// KeyStore holds the public sealing key of every environment at <dir>/<environment>.pem.
type KeyStore struct {
	dir string
}

func NewKeyStore(dir string) *KeyStore {
	return &KeyStore{dir: dir}
}

func (k *KeyStore) Path(env descriptor.Environment) string {
	return filepath.Join(k.dir, string(env)+keyExt)
}

// Save overwrites the stored key.
func (k *KeyStore) Save(env descriptor.Environment, key []byte) error {
	path := k.Path(env)
	if err := utils.WriteFileAtomic(path, key, 0644); err != nil {
		return fmt.Errorf("%w: save sealing key %s: %w", errdefs.ErrStore, path, err)
	}
	return nil
}

func (k *KeyStore) Load(env descriptor.Environment) ([]byte, error) {
	path := k.Path(env)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: sealing key for %s not found at %s, run fetch-seal-key first", errdefs.ErrNotFound, env, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read sealing key %s: %w", errdefs.ErrStore, path, err)
	}
	return b, nil
}

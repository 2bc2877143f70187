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

// Package manifest maps secret identities to files in the repository and reads, writes
// and deletes the encrypted manifests stored there.
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

const (
	manifestExt  = ".yaml"
	manifestPerm = 0640
)

// Store keeps one manifest per secret under <dir>/<environment>/<namespace>/<name>.yaml.
// Namespace and name are DNS labels, so the directory layout cannot produce the same path
// for two different identities.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(id descriptor.Identity) string {
	return filepath.Join(s.dir, string(id.Environment), id.Namespace, id.Name+manifestExt)
}

func (s *Store) Exists(id descriptor.Identity) (bool, error) {
	ok, err := utils.FileExists(s.Path(id))
	if err != nil {
		return false, fmt.Errorf("%w: %w", errdefs.ErrStore, err)
	}
	return ok, nil
}

func (s *Store) Read(id descriptor.Identity) ([]byte, error) {
	path := s.Path(id)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: manifest %s does not exist", errdefs.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", errdefs.ErrStore, path, err)
	}
	return b, nil
}

// Write replaces the manifest atomically.
func (s *Store) Write(id descriptor.Identity, data []byte) error {
	path := s.Path(id)
	if err := utils.WriteFileAtomic(path, data, manifestPerm); err != nil {
		return fmt.Errorf("%w: write %s: %w", errdefs.ErrStore, path, err)
	}
	return nil
}

func (s *Store) Delete(id descriptor.Identity) error {
	path := s.Path(id)
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: manifest %s does not exist", errdefs.ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", errdefs.ErrStore, path, err)
	}
	return nil
}

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

package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	_, err = git.PlainInit(dir, false)
	require.NoError(t, err)

	nested := filepath.Join(dir, "secrets", "prod")
	require.NoError(t, os.MkdirAll(nested, 0750))

	for _, start := range []string{dir, nested} {
		root, err := Root(start)
		require.NoError(t, err)
		assert.Equal(t, dir, root)
	}
}

func TestRoot_NotRepository(t *testing.T) {
	_, err := Root(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)
}

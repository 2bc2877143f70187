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

package seal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
	"github.com/arenadata/sealctl/pkg/manifest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainSecret = `apiVersion: v1
kind: Secret
metadata:
  name: db
  namespace: payments
type: Opaque
data:
  password: czNjcjN0
stringData:
  user: admin
`

func newAgeGateway(t *testing.T) (*Age, string) {
	t.Helper()
	dir := t.TempDir()

	id, err := NewIdentity()
	require.NoError(t, err)
	idPath := filepath.Join(dir, "dev.agekey")
	content := fmt.Sprintf("# public key: %s\n%s\n", id.Recipient(), id)
	require.NoError(t, os.WriteFile(idPath, []byte(content), 0600))

	g := NewAge(manifest.NewKeyStore(filepath.Join(dir, "keys")))
	g.Identities[descriptor.Dev] = idPath
	return g, idPath
}

func TestAge_FetchAndSeal(t *testing.T) {
	ctx := context.Background()
	g, idPath := newAgeGateway(t)

	key, err := g.FetchPublicKey(ctx, descriptor.Dev)
	require.NoError(t, err)
	require.NoError(t, g.Keys.Save(descriptor.Dev, key))

	out, err := g.Seal(ctx, []byte(plainSecret), descriptor.Dev, false)
	require.NoError(t, err)

	ss, err := manifest.Validate(out)
	require.NoError(t, err)
	assert.Equal(t, "payments", ss.Namespace)
	assert.Equal(t, "Opaque", ss.Spec.Template.Type)
	require.Len(t, ss.Spec.EncryptedData, 2)

	id, err := ParseIdentityFile(idPath)
	require.NoError(t, err)
	password, err := DecryptValue(id, ss.Spec.EncryptedData["password"])
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", string(password))
	user, err := DecryptValue(id, ss.Spec.EncryptedData["user"])
	require.NoError(t, err)
	assert.Equal(t, "admin", string(user))
}

func TestAge_EmptyData(t *testing.T) {
	ctx := context.Background()
	g, _ := newAgeGateway(t)
	key, err := g.FetchPublicKey(ctx, descriptor.Dev)
	require.NoError(t, err)
	require.NoError(t, g.Keys.Save(descriptor.Dev, key))

	empty := []byte("apiVersion: v1\nkind: Secret\nmetadata:\n  name: db\n  namespace: payments\ntype: Opaque\n")

	_, err = g.Seal(ctx, empty, descriptor.Dev, false)
	assert.ErrorIs(t, err, errdefs.ErrGateway)

	out, err := g.Seal(ctx, empty, descriptor.Dev, true)
	require.NoError(t, err)
	ss, err := manifest.Validate(out)
	require.NoError(t, err)
	assert.Empty(t, ss.Spec.EncryptedData)
}

func TestAge_Errors(t *testing.T) {
	ctx := context.Background()
	g, _ := newAgeGateway(t)

	_, err := g.FetchPublicKey(ctx, descriptor.Prod)
	assert.ErrorIs(t, err, errdefs.ErrGateway)

	_, err = g.Seal(ctx, []byte(plainSecret), descriptor.Dev, false)
	assert.ErrorIs(t, err, errdefs.ErrNotFound, "sealing without a fetched key")
}

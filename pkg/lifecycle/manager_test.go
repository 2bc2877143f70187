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
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	v1 "github.com/arenadata/sealctl/apis/core/v1"
	"github.com/arenadata/sealctl/apis/sealing/v1alpha1"
	"github.com/arenadata/sealctl/internal/runtime"
	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
	"github.com/arenadata/sealctl/pkg/interactive"
	"github.com/arenadata/sealctl/pkg/manifest"
	"github.com/arenadata/sealctl/pkg/objects"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// fakeGateway seals every value as "sealed:<plaintext>".
type fakeGateway struct {
	fetches int
	seals   int
	key     string
	err     error
}

func (g *fakeGateway) FetchPublicKey(_ context.Context, env descriptor.Environment) ([]byte, error) {
	g.fetches++
	if g.err != nil {
		return nil, g.err
	}
	return []byte(g.key + "-" + string(env)), nil
}

func (g *fakeGateway) Seal(_ context.Context, secret []byte, _ descriptor.Environment, allowEmptyData bool) ([]byte, error) {
	g.seals++
	if g.err != nil {
		return nil, g.err
	}

	s, err := runtime.DecodeInto[*v1.Secret](secret)
	if err != nil {
		return nil, err
	}
	if len(s.Data) == 0 && !allowEmptyData {
		return nil, errors.New("no data")
	}

	ss := v1alpha1.NewSealedSecret(s.Namespace, s.Name)
	ss.Spec.Template.Type = s.Type
	for k, v := range s.Data {
		plain, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, err
		}
		ss.Spec.EncryptedData[k] = "sealed:" + string(plain)
	}
	return yaml.Marshal(ss)
}

func newManager(t *testing.T) (*Manager, *fakeGateway, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	gw := &fakeGateway{key: "cert"}
	out := new(bytes.Buffer)
	logger, _ := test.NewNullLogger()

	return &Manager{
		Objects: objects.NewLocal(),
		Gateway: gw,
		Store:   manifest.NewStore(filepath.Join(dir, "secrets")),
		Keys:    manifest.NewKeyStore(filepath.Join(dir, ".sealing-keys")),
		Confirm: interactive.AlwaysApprove,
		Logger:  logger,
		Out:     out,
	}, gw, out
}

func input(literals ...string) descriptor.Input {
	return descriptor.Input{
		Environment: "dev",
		Namespace:   "payments",
		Name:        "db-credentials",
		Literals:    literals,
	}
}

var identity = descriptor.Identity{Environment: descriptor.Dev, Namespace: "payments", Name: "db-credentials"}

func encryptedData(t *testing.T, m *Manager) map[string]string {
	t.Helper()
	b, err := m.Store.Read(identity)
	require.NoError(t, err)
	ss, err := manifest.Validate(b)
	require.NoError(t, err)
	return ss.Spec.EncryptedData
}

func run(m *Manager, op Operation, in descriptor.Input, deletions ...string) error {
	return m.Run(context.Background(), Request{Operation: op, Input: in, FieldsToDelete: deletions})
}

func TestFetchKey(t *testing.T) {
	m, gw, _ := newManager(t)

	require.NoError(t, run(m, FetchSealKey, descriptor.Input{Environment: "prod"}))
	gw.key = "rotated"
	require.NoError(t, run(m, FetchSealKey, descriptor.Input{Environment: "prod"}))

	key, err := m.Keys.Load(descriptor.Prod)
	require.NoError(t, err)
	assert.Equal(t, "rotated-prod", string(key))
	assert.Equal(t, 2, gw.fetches)
}

func TestFetchKey_InvalidEnvironment(t *testing.T) {
	m, gw, _ := newManager(t)

	err := run(m, FetchSealKey, descriptor.Input{Environment: "staging"})
	assert.ErrorIs(t, err, errdefs.ErrValidation)
	assert.Zero(t, gw.fetches)
}

func TestCreate(t *testing.T) {
	m, gw, _ := newManager(t)

	require.NoError(t, run(m, Create, input("user=admin", "password=s3cret")))

	assert.Equal(t, map[string]string{"user": "sealed:admin", "password": "sealed:s3cret"}, encryptedData(t, m))
	assert.Equal(t, 1, gw.seals)
}

func TestCreate_Overwrites(t *testing.T) {
	m, _, _ := newManager(t)

	require.NoError(t, run(m, Create, input("user=admin", "password=s3cret")))
	require.NoError(t, run(m, Create, input("token=abc")))

	assert.Equal(t, map[string]string{"token": "sealed:abc"}, encryptedData(t, m))
}

func TestCreate_TLSWithoutKey(t *testing.T) {
	m, gw, _ := newManager(t)
	in := input()
	in.Type = "tls"
	in.CertPath = "tls.crt"

	err := run(m, Create, in)
	assert.ErrorIs(t, err, errdefs.ErrMissingInput)
	assert.Zero(t, gw.seals)
}

func TestCreate_GatewayFailure(t *testing.T) {
	m, gw, _ := newManager(t)
	gw.err = errors.Join(errdefs.ErrGateway, errors.New("controller unreachable"))

	err := run(m, Create, input("user=admin"))
	assert.ErrorIs(t, err, errdefs.ErrGateway)

	exists, err := m.Store.Exists(identity)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreate_DryRun(t *testing.T) {
	m, _, out := newManager(t)
	m.DryRun = true

	require.NoError(t, run(m, Create, input("user=admin")))

	assert.Contains(t, out.String(), "user: sealed:admin")
	exists, err := m.Store.Exists(identity)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdate_Merge(t *testing.T) {
	m, _, out := newManager(t)
	require.NoError(t, run(m, Create, input("a=X", "b=Y")))
	out.Reset()

	require.NoError(t, run(m, Update, input("b=Z", "c=W")))

	assert.Equal(t, map[string]string{"a": "sealed:X", "b": "sealed:Z", "c": "sealed:W"}, encryptedData(t, m))
	assert.Contains(t, out.String(), "-     b: sealed:Y\n")
	assert.Contains(t, out.String(), "+     b: sealed:Z\n")
}

func TestUpdate_PureDeletion(t *testing.T) {
	m, _, _ := newManager(t)
	require.NoError(t, run(m, Create, input("a=X", "b=Y")))

	require.NoError(t, run(m, Update, input(), "a", "missing"))

	assert.Equal(t, map[string]string{"b": "sealed:Y"}, encryptedData(t, m))
}

func TestUpdate_DeletionWins(t *testing.T) {
	m, _, _ := newManager(t)
	require.NoError(t, run(m, Create, input("a=X")))

	require.NoError(t, run(m, Update, input("b=Y"), "b"))

	assert.Equal(t, map[string]string{"a": "sealed:X"}, encryptedData(t, m))
}

func TestUpdate_Idempotent(t *testing.T) {
	m, _, _ := newManager(t)
	require.NoError(t, run(m, Create, input("a=X", "b=Y")))

	require.NoError(t, run(m, Update, input("c=W"), "a"))
	first, err := m.Store.Read(identity)
	require.NoError(t, err)

	// A second identical update is not confirmed, nothing changes.
	m.Confirm = interactive.AlwaysDeny
	require.NoError(t, run(m, Update, input("c=W"), "a"))
	second, err := m.Store.Read(identity)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestUpdate_KeepsSecretType(t *testing.T) {
	m, _, _ := newManager(t)
	in := input()
	in.Type = "docker"
	in.DockerUsername = "robot"
	in.DockerPassword = "pa55"
	require.NoError(t, run(m, Create, in))

	update := input()
	update.Type = "docker"
	require.NoError(t, run(m, Update, update, v1.DockerConfigJsonKey))

	b, err := m.Store.Read(identity)
	require.NoError(t, err)
	ss, err := manifest.Validate(b)
	require.NoError(t, err)
	assert.Equal(t, v1.SecretTypeDockerConfigJson, ss.Spec.Template.Type)
	assert.Empty(t, ss.Spec.EncryptedData)
}

func TestUpdate_NotFound(t *testing.T) {
	m, gw, _ := newManager(t)

	err := run(m, Update, input("a=X"))
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
	assert.Zero(t, gw.seals)

	exists, err := m.Store.Exists(identity)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdate_NoOp(t *testing.T) {
	m, gw, _ := newManager(t)
	require.NoError(t, run(m, Create, input("a=X")))

	err := run(m, Update, input())
	assert.ErrorIs(t, err, errdefs.ErrNoOp)
	assert.Equal(t, 1, gw.seals)
}

func TestUpdate_GatewayFailureLeavesManifest(t *testing.T) {
	m, gw, _ := newManager(t)
	require.NoError(t, run(m, Create, input("a=X")))
	before, err := m.Store.Read(identity)
	require.NoError(t, err)

	gw.err = errdefs.ErrGateway
	assert.ErrorIs(t, run(m, Update, input("b=Y")), errdefs.ErrGateway)

	after, err := m.Store.Read(identity)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdate_MalformedManifest(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"InvalidYAML", "spec: [a\n"},
		{"MultipleDocuments", "spec:\n  encryptedData:\n    a: sealed:X\n---\nkind: ConfigMap\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newManager(t)
			path := m.Store.Path(identity)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0640))

			err := run(m, Update, input("c=W"))
			assert.ErrorIs(t, err, errdefs.ErrStore)

			b, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(b))
		})
	}
}

func TestDelete(t *testing.T) {
	m, _, _ := newManager(t)
	require.NoError(t, run(m, Create, input("a=X")))

	require.NoError(t, run(m, Delete, input()))

	exists, err := m.Store.Exists(identity)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, run(m, Delete, input()), errdefs.ErrNotFound)
}

func TestDelete_DryRun(t *testing.T) {
	m, _, out := newManager(t)
	require.NoError(t, run(m, Create, input("a=X")))
	m.DryRun = true

	require.NoError(t, run(m, Delete, input()))

	assert.Contains(t, out.String(), "would delete")
	exists, err := m.Store.Exists(identity)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeclined(t *testing.T) {
	tests := []struct {
		name  string
		setup bool
		op    Operation
		in    descriptor.Input
	}{
		{"Create", false, Create, input("a=X")},
		{"Update", true, Update, input("b=Y")},
		{"Delete", true, Delete, input()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newManager(t)
			var before []byte
			if tt.setup {
				require.NoError(t, run(m, Create, input("a=X")))
				var err error
				before, err = m.Store.Read(identity)
				require.NoError(t, err)
			}

			m.Confirm = interactive.AlwaysDeny
			assert.ErrorIs(t, run(m, tt.op, tt.in), errdefs.ErrAborted)

			after, err := os.ReadFile(m.Store.Path(identity))
			if tt.setup {
				require.NoError(t, err)
				assert.Equal(t, before, after)
			} else {
				assert.ErrorIs(t, err, os.ErrNotExist)
			}
		})
	}
}

func TestRun_UnknownOperation(t *testing.T) {
	m, _, _ := newManager(t)
	assert.ErrorIs(t, run(m, Operation("rotate"), input()), errdefs.ErrValidation)
}

func TestRun_LogsIdentity(t *testing.T) {
	m, _, _ := newManager(t)
	logger, hook := test.NewNullLogger()
	m.Logger = logger

	require.NoError(t, run(m, Create, input("a=X")))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "payments", entry.Data["namespace"])
	assert.Equal(t, Create, entry.Data["operation"])
}

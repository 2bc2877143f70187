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

package descriptor

import (
	"testing"

	"github.com/arenadata/sealctl/pkg/errdefs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() Input {
	return Input{Environment: "dev", Namespace: "payments", Name: "db-credentials"}
}

func TestBuild_Generic(t *testing.T) {
	in := baseInput()
	in.Literals = []string{"user=admin", "dsn=postgres://h/db?sslmode=disable"}
	in.Files = []string{"/etc/app/ca.pem", "config=/etc/app/app.toml"}
	in.Sources = []KeySource{{Key: "FROM_ENV", Value: "1"}}

	d, err := Build(in)
	require.NoError(t, err)

	assert.Equal(t, Identity{Environment: Dev, Namespace: "payments", Name: "db-credentials"}, d.Identity())
	assert.Equal(t, TypeGeneric, d.Type())
	assert.True(t, d.HasPayload())

	sources := d.Sources()
	require.Len(t, sources, 5)
	assert.Equal(t, KeySource{Key: "user", Value: "admin"}, sources[0])
	assert.Equal(t, "postgres://h/db?sslmode=disable", sources[1].Value)
	assert.Equal(t, "ca.pem", sources[2].FieldKey())
	assert.True(t, sources[2].IsFile())
	assert.Equal(t, "config", sources[3].FieldKey())
	assert.Equal(t, "FROM_ENV", sources[4].FieldKey())

	sources[0].Value = "changed"
	assert.Equal(t, "admin", d.Sources()[0].Value, "descriptor must not be mutated through accessors")
}

func TestBuild_GenericWithoutSources(t *testing.T) {
	_, err := Build(baseInput())
	assert.ErrorIs(t, err, errdefs.ErrMissingInput)

	d, err := Build(baseInput(), AllowEmptySources())
	require.NoError(t, err)
	assert.False(t, d.HasPayload())
}

func TestBuild_TLS(t *testing.T) {
	tests := []struct {
		name     string
		cert     string
		key      string
		opts     []Option
		wantErr  error
		wantPath bool
	}{
		{"Both", "tls.crt", "tls.key", nil, nil, true},
		{"OnlyCert", "tls.crt", "", nil, errdefs.ErrMissingInput, false},
		{"OnlyKey", "", "tls.key", nil, errdefs.ErrMissingInput, false},
		{"None", "", "", nil, errdefs.ErrMissingInput, false},
		{"NoneAllowEmpty", "", "", []Option{AllowEmptySources()}, nil, false},
		{"OnlyCertAllowEmpty", "tls.crt", "", []Option{AllowEmptySources()}, errdefs.ErrMissingInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.Type = "tls"
			in.CertPath, in.KeyPath = tt.cert, tt.key

			d, err := Build(in, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			paths, ok := d.TLS()
			assert.Equal(t, tt.wantPath, ok)
			if ok {
				assert.Equal(t, TLSPaths{CertPath: tt.cert, KeyPath: tt.key}, paths)
			}
		})
	}
}

func TestBuild_DockerIsPermissive(t *testing.T) {
	in := baseInput()
	in.Type = "docker"
	in.DockerServer = "registry.example.com"

	d, err := Build(in)
	require.NoError(t, err)

	reg, ok := d.Docker()
	require.True(t, ok)
	assert.Equal(t, DockerRegistry{Server: "registry.example.com"}, reg)
}

func TestBuild_DockerEmptyForUpdate(t *testing.T) {
	in := baseInput()
	in.Type = "docker"

	d, err := Build(in, AllowEmptySources())
	require.NoError(t, err)
	assert.False(t, d.HasPayload())

	d, err = Build(in)
	require.NoError(t, err)
	assert.True(t, d.HasPayload())
}

func TestBuild_IdentityOnly(t *testing.T) {
	in := baseInput()
	in.Type = "tls"

	d, err := Build(in, IdentityOnly())
	require.NoError(t, err)
	assert.Equal(t, "db-credentials", d.Name())
	assert.False(t, d.HasPayload())
}

func TestBuild_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Input)
	}{
		{"NoEnvironment", func(in *Input) { in.Environment = "" }},
		{"UnknownEnvironment", func(in *Input) { in.Environment = "staging" }},
		{"NoNamespace", func(in *Input) { in.Namespace = "" }},
		{"NoName", func(in *Input) { in.Name = "" }},
		{"BadName", func(in *Input) { in.Name = "DB_Credentials" }},
		{"UnknownType", func(in *Input) { in.Type = "ssh" }},
		{"LiteralWithoutValue", func(in *Input) { in.Literals = []string{"user"} }},
		{"LiteralWithoutKey", func(in *Input) { in.Literals = []string{"=admin"} }},
		{"FileWithEmptyPath", func(in *Input) { in.Files = []string{"key="} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.Literals = []string{"user=admin"}
			tt.modify(&in)

			_, err := Build(in)
			assert.ErrorIs(t, err, errdefs.ErrValidation)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	for _, env := range Environments {
		got, err := ParseEnvironment(string(env))
		require.NoError(t, err)
		assert.Equal(t, env, got)
	}

	_, err := ParseEnvironment("production")
	assert.ErrorIs(t, err, errdefs.ErrValidation)
}

func TestParseFileSource(t *testing.T) {
	tests := []struct {
		in      string
		want    KeySource
		wantErr bool
	}{
		{"ca.pem", KeySource{Path: "ca.pem"}, false},
		{"ca=certs/ca.pem", KeySource{Key: "ca", Path: "certs/ca.pem"}, false},
		{"=certs/ca.pem", KeySource{}, true},
		{"", KeySource{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFileSource(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

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
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	v1 "github.com/arenadata/sealctl/apis/core/v1"
	"github.com/arenadata/sealctl/apis/sealing/v1alpha1"
	"github.com/arenadata/sealctl/internal/runtime"
	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
	"github.com/arenadata/sealctl/pkg/manifest"

	"filippo.io/age"
	"gopkg.in/yaml.v3"
)

// Age seals offline: every value is encrypted to the environment's age recipient. The
// result has the SealedSecret layout, so it is stored and merged like a kubeseal manifest.
type Age struct {
	// Identities maps an environment to the age identity file its recipient is derived from.
	Identities map[descriptor.Environment]string
	Keys       *manifest.KeyStore
}

func NewAge(keys *manifest.KeyStore) *Age {
	return &Age{Identities: make(map[descriptor.Environment]string), Keys: keys}
}

func (a *Age) FetchPublicKey(_ context.Context, env descriptor.Environment) ([]byte, error) {
	path, ok := a.Identities[env]
	if !ok {
		return nil, fmt.Errorf("%w: no age identity configured for %s", errdefs.ErrGateway, env)
	}

	id, err := ParseIdentityFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read age identity %s: %w", errdefs.ErrGateway, path, err)
	}

	return []byte(id.Recipient().String() + "\n"), nil
}

func (a *Age) Seal(_ context.Context, secret []byte, env descriptor.Environment, allowEmptyData bool) ([]byte, error) {
	key, err := a.Keys.Load(env)
	if err != nil {
		return nil, err
	}
	recipient, err := age.ParseX25519Recipient(strings.TrimSpace(string(key)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse age recipient for %s: %w", errdefs.ErrGateway, env, err)
	}

	s, err := runtime.DecodeInto[*v1.Secret](secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errdefs.ErrGateway, err)
	}
	if len(s.Data) == 0 && len(s.StringData) == 0 && !allowEmptyData {
		return nil, fmt.Errorf("%w: secret %s/%s has no data", errdefs.ErrGateway, s.Namespace, s.Name)
	}

	ss := v1alpha1.NewSealedSecret(s.Namespace, s.Name)
	ss.Spec.Template.Type = s.Type
	ss.Spec.Template.Labels = s.Labels
	ss.Spec.Template.Annotations = s.Annotations
	ss.Spec.Template.Immutable = s.Immutable

	for k, v := range s.Data {
		plain, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: data %q is not base64: %w", errdefs.ErrGateway, k, err)
		}
		if ss.Spec.EncryptedData[k], err = EncryptValue(recipient, plain); err != nil {
			return nil, fmt.Errorf("%w: %w", errdefs.ErrGateway, err)
		}
	}
	for k, v := range s.StringData {
		if ss.Spec.EncryptedData[k], err = EncryptValue(recipient, []byte(v)); err != nil {
			return nil, fmt.Errorf("%w: %w", errdefs.ErrGateway, err)
		}
	}

	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err = enc.Encode(ss); err != nil {
		return nil, fmt.Errorf("%w: %w", errdefs.ErrGateway, err)
	}
	if err = enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", errdefs.ErrGateway, err)
	}

	return buf.Bytes(), nil
}

// EncryptValue encrypts v to r and returns the base64 encoded age payload.
func EncryptValue(r age.Recipient, v []byte) (string, error) {
	buf := new(bytes.Buffer)
	w, err := age.Encrypt(buf, r)
	if err != nil {
		return "", err
	}
	if _, err = w.Write(v); err != nil {
		return "", err
	}
	if err = w.Close(); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecryptValue reverses EncryptValue.
func DecryptValue(id age.Identity, v string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, err
	}

	r, err := age.Decrypt(bytes.NewReader(data), id)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if _, err = io.Copy(buf, r); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// NewIdentity generates an age identity for an environment sealed with the Age gateway.
func NewIdentity() (*age.X25519Identity, error) {
	return age.GenerateX25519Identity()
}

// ParseIdentityFile reads the first X25519 identity from an age key file.
func ParseIdentityFile(path string) (*age.X25519Identity, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ids, err := age.ParseIdentities(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if x, ok := id.(*age.X25519Identity); ok {
			return x, nil
		}
	}
	return nil, errors.New("no X25519 identity found")
}

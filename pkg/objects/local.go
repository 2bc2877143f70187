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

package objects

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	v1 "github.com/arenadata/sealctl/apis/core/v1"
	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"

	"github.com/docker/cli/cli/config/configfile"
	"github.com/docker/cli/cli/config/types"
)

const defaultDockerServer = "https://index.docker.io/v1/"

var validKey = regexp.MustCompile(`^[-._a-zA-Z0-9]+$`)

// Local builds Secrets in process, with the same checks kubectl applies.
type Local struct {
	ReadFile func(name string) ([]byte, error)
}

func NewLocal() *Local {
	return &Local{ReadFile: os.ReadFile}
}

func (l *Local) Generic(_ context.Context, namespace, name string, sources []descriptor.KeySource) ([]byte, error) {
	s := v1.NewSecret(namespace, name, v1.SecretTypeOpaque)
	for _, src := range sources {
		key := src.FieldKey()
		if !validKey.MatchString(key) {
			return nil, fmt.Errorf("%w: %q is not a valid secret key, must match %s", errdefs.ErrGateway, key, validKey)
		}
		if _, ok := s.Data[key]; ok {
			return nil, fmt.Errorf("%w: cannot add key %q, another key by that name already exists", errdefs.ErrGateway, key)
		}

		value := []byte(src.Value)
		if src.IsFile() {
			var err error
			if value, err = l.ReadFile(src.Path); err != nil {
				return nil, fmt.Errorf("%w: read %s: %w", errdefs.ErrGateway, src.Path, err)
			}
		}
		s.Data[key] = base64.StdEncoding.EncodeToString(value)
	}

	return encode(s)
}

func (l *Local) TLS(_ context.Context, namespace, name, certPath, keyPath string) ([]byte, error) {
	cert, err := l.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read certificate: %w", errdefs.ErrGateway, err)
	}
	key, err := l.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read private key: %w", errdefs.ErrGateway, err)
	}
	if _, err = tls.X509KeyPair(cert, key); err != nil {
		return nil, fmt.Errorf("%w: invalid certificate/key pair: %w", errdefs.ErrGateway, err)
	}

	s := v1.NewSecret(namespace, name, v1.SecretTypeTLS)
	s.Data[v1.TLSCertKey] = base64.StdEncoding.EncodeToString(cert)
	s.Data[v1.TLSPrivateKeyKey] = base64.StdEncoding.EncodeToString(key)

	return encode(s)
}

func (l *Local) DockerRegistry(_ context.Context, namespace, name, server, username, password, email string) ([]byte, error) {
	if len(username) == 0 || len(password) == 0 {
		return nil, fmt.Errorf("%w: docker-username and docker-password are required for docker-registry secrets", errdefs.ErrGateway)
	}
	if len(server) == 0 {
		server = defaultDockerServer
	}

	cf := configfile.ConfigFile{
		AuthConfigs: map[string]types.AuthConfig{
			server: {
				Username: username,
				Password: password,
				Email:    email,
				Auth:     base64.StdEncoding.EncodeToString([]byte(username + ":" + password)),
			},
		},
	}
	b, err := json.Marshal(&cf)
	if err != nil {
		return nil, fmt.Errorf("%w: encode docker config: %w", errdefs.ErrGateway, err)
	}

	s := v1.NewSecret(namespace, name, v1.SecretTypeDockerConfigJson)
	s.Data[v1.DockerConfigJsonKey] = base64.StdEncoding.EncodeToString(b)

	return encode(s)
}

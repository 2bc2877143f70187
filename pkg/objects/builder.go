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

// Package objects renders the plaintext Secret object that is handed to the sealing gateway.
package objects

import (
	"bytes"
	"context"
	"fmt"

	v1 "github.com/arenadata/sealctl/apis/core/v1"
	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"

	"gopkg.in/yaml.v3"
)

// Builder produces a Secret manifest in YAML. Implementations report their failures
// wrapped in errdefs.ErrGateway.
type Builder interface {
	Generic(ctx context.Context, namespace, name string, sources []descriptor.KeySource) ([]byte, error)
	TLS(ctx context.Context, namespace, name, certPath, keyPath string) ([]byte, error)
	DockerRegistry(ctx context.Context, namespace, name, server, username, password, email string) ([]byte, error)
}

// Build renders the Secret described by d. A descriptor without payload, as used by an
// update that only deletes fields, yields an empty Secret of the matching type without
// calling the builder.
func Build(ctx context.Context, b Builder, d *descriptor.SecretDescriptor) ([]byte, error) {
	if !d.HasPayload() {
		return Empty(d.Namespace(), d.Name(), d.Type())
	}

	switch d.Type() {
	case descriptor.TypeTLS:
		paths, _ := d.TLS()
		return b.TLS(ctx, d.Namespace(), d.Name(), paths.CertPath, paths.KeyPath)
	case descriptor.TypeDocker:
		reg, _ := d.Docker()
		return b.DockerRegistry(ctx, d.Namespace(), d.Name(), reg.Server, reg.Username, reg.Password, reg.Email)
	default:
		return b.Generic(ctx, d.Namespace(), d.Name(), d.Sources())
	}
}

// Empty renders a Secret without data.
func Empty(namespace, name string, t descriptor.SecretType) ([]byte, error) {
	return encode(v1.NewSecret(namespace, name, SecretType(t)))
}

// SecretType maps a descriptor type to the Kubernetes Secret type.
func SecretType(t descriptor.SecretType) string {
	switch t {
	case descriptor.TypeTLS:
		return v1.SecretTypeTLS
	case descriptor.TypeDocker:
		return v1.SecretTypeDockerConfigJson
	default:
		return v1.SecretTypeOpaque
	}
}

func encode(s *v1.Secret) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("%w: encode secret: %w", errdefs.ErrGateway, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: encode secret: %w", errdefs.ErrGateway, err)
	}
	return buf.Bytes(), nil
}

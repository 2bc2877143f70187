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
	"fmt"

	"github.com/arenadata/sealctl/internal/command"
	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
)

// Kubectl renders Secrets with a client side dry run of `kubectl create secret`.
type Kubectl struct {
	Binary string
	Run    command.Runner
}

func NewKubectl(binary string) *Kubectl {
	if len(binary) == 0 {
		binary = "kubectl"
	}
	return &Kubectl{Binary: binary, Run: command.Exec}
}

func (k *Kubectl) Generic(ctx context.Context, namespace, name string, sources []descriptor.KeySource) ([]byte, error) {
	args := k.args("generic", namespace, name)
	for _, src := range sources {
		if src.IsFile() {
			args = append(args, "--from-file="+src.FieldKey()+"="+src.Path)
		} else {
			args = append(args, "--from-literal="+src.Key+"="+src.Value)
		}
	}
	return k.run(ctx, args)
}

func (k *Kubectl) TLS(ctx context.Context, namespace, name, certPath, keyPath string) ([]byte, error) {
	args := append(k.args("tls", namespace, name), "--cert="+certPath, "--key="+keyPath)
	return k.run(ctx, args)
}

func (k *Kubectl) DockerRegistry(ctx context.Context, namespace, name, server, username, password, email string) ([]byte, error) {
	args := k.args("docker-registry", namespace, name)
	flags := []struct{ name, value string }{
		{"--docker-server", server},
		{"--docker-username", username},
		{"--docker-password", password},
		{"--docker-email", email},
	}
	for _, f := range flags {
		if len(f.value) > 0 {
			args = append(args, f.name+"="+f.value)
		}
	}
	return k.run(ctx, args)
}

func (k *Kubectl) args(kind, namespace, name string) []string {
	return []string{"create", "secret", kind, name, "--namespace", namespace, "--dry-run=client", "--output=yaml"}
}

func (k *Kubectl) run(ctx context.Context, args []string) ([]byte, error) {
	out, err := k.Run(ctx, nil, k.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errdefs.ErrGateway, err)
	}
	return out, nil
}

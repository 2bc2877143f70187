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

	"github.com/arenadata/sealctl/internal/command"
	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
	"github.com/arenadata/sealctl/pkg/manifest"
	"github.com/arenadata/sealctl/pkg/utils"
)

const (
	DefaultControllerName      = "sealed-secrets-controller"
	DefaultControllerNamespace = "kube-system"
)

// Kubeseal delegates to the kubeseal binary and the sealed-secrets controller of the
// environment's cluster.
type Kubeseal struct {
	Binary              string
	ControllerName      string
	ControllerNamespace string
	// Contexts maps an environment to its kubeconfig context. Missing entries use the current context.
	Contexts map[descriptor.Environment]string
	Keys     *manifest.KeyStore
	Run      command.Runner
}

func NewKubeseal(binary string, keys *manifest.KeyStore) *Kubeseal {
	if len(binary) == 0 {
		binary = "kubeseal"
	}
	return &Kubeseal{
		Binary:              binary,
		ControllerName:      DefaultControllerName,
		ControllerNamespace: DefaultControllerNamespace,
		Contexts:            make(map[descriptor.Environment]string),
		Keys:                keys,
		Run:                 command.Exec,
	}
}

func (k *Kubeseal) FetchPublicKey(ctx context.Context, env descriptor.Environment) ([]byte, error) {
	args := []string{
		"--fetch-cert",
		"--controller-name", k.ControllerName,
		"--controller-namespace", k.ControllerNamespace,
	}
	if kubeCtx := k.Contexts[env]; len(kubeCtx) > 0 {
		args = append(args, "--context", kubeCtx)
	}

	out, err := k.Run(ctx, nil, k.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch sealing key for %s: %w", errdefs.ErrGateway, env, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: kubeseal returned an empty certificate for %s", errdefs.ErrGateway, env)
	}
	return out, nil
}

func (k *Kubeseal) Seal(ctx context.Context, secret []byte, env descriptor.Environment, allowEmptyData bool) ([]byte, error) {
	certPath := k.Keys.Path(env)
	if ok, err := utils.FileExists(certPath); err != nil {
		return nil, fmt.Errorf("%w: %w", errdefs.ErrStore, err)
	} else if !ok {
		return nil, fmt.Errorf("%w: sealing key for %s not found at %s, run fetch-seal-key first", errdefs.ErrNotFound, env, certPath)
	}

	args := []string{"--format", "yaml", "--cert", certPath}
	if allowEmptyData {
		args = append(args, "--allow-empty-data")
	}

	out, err := k.Run(ctx, secret, k.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: seal for %s: %w", errdefs.ErrGateway, env, err)
	}
	return out, nil
}

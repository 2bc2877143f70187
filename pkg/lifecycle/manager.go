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

// Package lifecycle runs one operation on a sealed secret manifest: fetching the sealing
// key, creating, updating or deleting the manifest.
package lifecycle

import (
	"context"
	"fmt"
	"io"

	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
	"github.com/arenadata/sealctl/pkg/interactive"
	"github.com/arenadata/sealctl/pkg/manifest"
	"github.com/arenadata/sealctl/pkg/merge"
	"github.com/arenadata/sealctl/pkg/objects"
	"github.com/arenadata/sealctl/pkg/seal"

	"github.com/sirupsen/logrus"
)

type Manager struct {
	Objects objects.Builder
	Gateway seal.Gateway
	Store   *manifest.Store
	Keys    *manifest.KeyStore
	// Confirm gates every mutation of the store. Nil approves.
	Confirm interactive.Confirmer
	Logger  logrus.FieldLogger
	// DryRun prints the result to Out instead of writing it.
	DryRun bool
	// Out receives diffs and dry run output. Nil discards them.
	Out io.Writer
}

// Request is one invocation. FieldsToDelete is used by Update only.
type Request struct {
	Operation      Operation
	Input          descriptor.Input
	FieldsToDelete []string
}

// Run builds the descriptor the operation needs and runs it. Input errors are returned
// before any external call.
func (m *Manager) Run(ctx context.Context, req Request) error {
	switch req.Operation {
	case FetchSealKey:
		env, err := descriptor.ParseEnvironment(req.Input.Environment)
		if err != nil {
			return err
		}
		return m.FetchKey(ctx, env)
	case Create:
		d, err := descriptor.Build(req.Input)
		if err != nil {
			return err
		}
		return m.Create(ctx, d)
	case Update:
		d, err := descriptor.Build(req.Input, descriptor.AllowEmptySources())
		if err != nil {
			return err
		}
		return m.Update(ctx, d, req.FieldsToDelete)
	case Delete:
		d, err := descriptor.Build(req.Input, descriptor.IdentityOnly())
		if err != nil {
			return err
		}
		return m.Delete(ctx, d.Identity())
	}
	_, err := ParseOperation(string(req.Operation))
	return err
}

// FetchKey stores the current public key of env, replacing the previous one.
func (m *Manager) FetchKey(ctx context.Context, env descriptor.Environment) error {
	logger := m.logger().WithFields(logrus.Fields{"operation": FetchSealKey, "env": env})

	key, err := m.Gateway.FetchPublicKey(ctx, env)
	if err != nil {
		return err
	}
	if m.DryRun {
		_, err = m.out().Write(key)
		return err
	}
	if err = m.Keys.Save(env, key); err != nil {
		return err
	}

	logger.Infof("sealing key saved to %s", m.Keys.Path(env))
	return nil
}

// Create seals d and writes the manifest, replacing any existing one.
func (m *Manager) Create(ctx context.Context, d *descriptor.SecretDescriptor) error {
	id := d.Identity()
	logger := m.identityLogger(Create, id)

	sealed, err := m.seal(ctx, d, false)
	if err != nil {
		return err
	}
	out, err := render(sealed)
	if err != nil {
		return err
	}

	var prev []byte
	exists, err := m.Store.Exists(id)
	if err != nil {
		return err
	}
	if exists {
		logger.Warn("manifest exists and will be replaced")
		if prev, err = m.Store.Read(id); err != nil {
			return err
		}
	}

	return m.commit(logger, id, prev, out)
}

// Update seals only the sources of d, merges them into the stored manifest and removes
// deletions from its encrypted data.
func (m *Manager) Update(ctx context.Context, d *descriptor.SecretDescriptor, deletions []string) error {
	id := d.Identity()
	logger := m.identityLogger(Update, id)

	exists, err := m.Store.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: manifest %s does not exist, use create", errdefs.ErrNotFound, m.Store.Path(id))
	}
	if !d.HasPayload() && len(deletions) == 0 {
		return fmt.Errorf("%w: no key sources and no fields to delete", errdefs.ErrNoOp)
	}

	prev, err := m.Store.Read(id)
	if err != nil {
		return err
	}
	base, err := manifest.Decode(prev)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errdefs.ErrStore, m.Store.Path(id), err)
	}

	sealed, err := m.seal(ctx, d, true)
	if err != nil {
		return err
	}
	incoming, err := manifest.Decode(sealed)
	if err != nil {
		return fmt.Errorf("%w: sealed output: %w", errdefs.ErrGateway, err)
	}

	result, err := merge.Apply(merge.Operation{Base: base, Incoming: incoming, Deletions: deletions})
	if err != nil {
		return fmt.Errorf("%w: merge into %s: %w", errdefs.ErrStore, m.Store.Path(id), err)
	}
	out, err := manifest.Encode(result)
	if err != nil {
		return fmt.Errorf("%w: %w", errdefs.ErrStore, err)
	}
	if _, err = manifest.Validate(out); err != nil {
		return fmt.Errorf("%w: merged manifest is malformed: %w", errdefs.ErrStore, err)
	}

	if merge.Equal(base, result) {
		logger.Info("manifest is up to date")
		return nil
	}

	logger.WithField("fields", result.Keys(merge.EncryptedDataPath...)).Debug("merged")
	return m.commit(logger, id, prev, out)
}

// Delete removes the manifest of id.
func (m *Manager) Delete(_ context.Context, id descriptor.Identity) error {
	logger := m.identityLogger(Delete, id)

	exists, err := m.Store.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: manifest %s does not exist", errdefs.ErrNotFound, m.Store.Path(id))
	}

	path := m.Store.Path(id)
	if m.DryRun {
		_, err = fmt.Fprintf(m.out(), "would delete %s\n", path)
		return err
	}
	if err = m.confirm(fmt.Sprintf("Delete %s?", path)); err != nil {
		return err
	}
	if err = m.Store.Delete(id); err != nil {
		return err
	}

	logger.Infof("deleted %s", path)
	return nil
}

func (m *Manager) seal(ctx context.Context, d *descriptor.SecretDescriptor, allowEmpty bool) ([]byte, error) {
	secret, err := objects.Build(ctx, m.Objects, d)
	if err != nil {
		return nil, err
	}
	return m.Gateway.Seal(ctx, secret, d.Environment(), allowEmpty)
}

// commit shows what changes and writes out after confirmation.
func (m *Manager) commit(logger logrus.FieldLogger, id descriptor.Identity, prev, out []byte) error {
	path := m.Store.Path(id)
	if m.DryRun {
		_, err := m.out().Write(out)
		return err
	}

	diffs := Diff(prev, out)
	if changed(diffs) {
		if _, err := fmt.Fprintf(m.out(), "--- %s\n%s", path, FormatDiff(diffs)); err != nil {
			return err
		}
	}
	if err := m.confirm(fmt.Sprintf("Write %s?", path)); err != nil {
		return err
	}
	if err := m.Store.Write(id, out); err != nil {
		return err
	}

	logger.Infof("saved %s", path)
	return nil
}

func (m *Manager) confirm(message string) error {
	if m.Confirm == nil {
		return nil
	}
	ok, err := m.Confirm(message)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s declined", errdefs.ErrAborted, message)
	}
	return nil
}

func (m *Manager) identityLogger(op Operation, id descriptor.Identity) logrus.FieldLogger {
	return m.logger().WithFields(logrus.Fields{
		"operation": op,
		"env":       id.Environment,
		"namespace": id.Namespace,
		"name":      id.Name,
	})
}

func (m *Manager) logger() logrus.FieldLogger {
	if m.Logger == nil {
		return logrus.StandardLogger()
	}
	return m.Logger
}

func (m *Manager) out() io.Writer {
	if m.Out == nil {
		return io.Discard
	}
	return m.Out
}

// render normalizes sealed gateway output and checks it is a SealedSecret.
func render(sealed []byte) ([]byte, error) {
	t, err := manifest.Decode(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: sealed output: %w", errdefs.ErrGateway, err)
	}
	out, err := manifest.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errdefs.ErrGateway, err)
	}
	if _, err = manifest.Validate(out); err != nil {
		return nil, fmt.Errorf("%w: sealed output is not a SealedSecret: %w", errdefs.ErrGateway, err)
	}
	return out, nil
}

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

// Package descriptor models the secret a single sealctl invocation manages.
package descriptor

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/arenadata/sealctl/pkg/errdefs"
)

type Environment string

const (
	Dev   Environment = "dev"
	Stage Environment = "stage"
	QA    Environment = "qa"
	Prod  Environment = "prod"
)

var Environments = []Environment{Dev, Stage, QA, Prod}

func ParseEnvironment(s string) (Environment, error) {
	env := Environment(s)
	if !slices.Contains(Environments, env) {
		return "", fmt.Errorf("%w: unknown environment %q, must be one of %v", errdefs.ErrValidation, s, Environments)
	}
	return env, nil
}

type SecretType string

const (
	TypeGeneric SecretType = "generic"
	TypeTLS     SecretType = "tls"
	TypeDocker  SecretType = "docker"
)

var SecretTypes = []SecretType{TypeGeneric, TypeTLS, TypeDocker}

// KeySource is one entry of a generic secret: a literal value, or a file whose content
// becomes the value.
type KeySource struct {
	Key   string
	Value string
	Path  string
}

func (s KeySource) IsFile() bool {
	return len(s.Path) > 0
}

// FieldKey is the key the source is stored under, defaulting to the file base name.
func (s KeySource) FieldKey() string {
	if len(s.Key) == 0 && s.IsFile() {
		return filepath.Base(s.Path)
	}
	return s.Key
}

type TLSPaths struct {
	CertPath string
	KeyPath  string
}

type DockerRegistry struct {
	Server   string
	Username string
	Password string
	Email    string
}

// Identity is the triple a manifest file is addressed by.
type Identity struct {
	Environment Environment
	Namespace   string
	Name        string
}

func (id Identity) String() string {
	return fmt.Sprintf("%s/%s/%s", id.Environment, id.Namespace, id.Name)
}

// SecretDescriptor is immutable once built; accessors hand out copies.
type SecretDescriptor struct {
	id         Identity
	secretType SecretType
	sources    []KeySource
	tls        *TLSPaths
	docker     *DockerRegistry
}

func (d *SecretDescriptor) Identity() Identity { return d.id }
func (d *SecretDescriptor) Environment() Environment { return d.id.Environment }
func (d *SecretDescriptor) Namespace() string { return d.id.Namespace }
func (d *SecretDescriptor) Name() string { return d.id.Name }
func (d *SecretDescriptor) Type() SecretType { return d.secretType }

func (d *SecretDescriptor) Sources() []KeySource {
	return slices.Clone(d.sources)
}

func (d *SecretDescriptor) TLS() (TLSPaths, bool) {
	if d.tls == nil {
		return TLSPaths{}, false
	}
	return *d.tls, true
}

func (d *SecretDescriptor) Docker() (DockerRegistry, bool) {
	if d.docker == nil {
		return DockerRegistry{}, false
	}
	return *d.docker, true
}

// HasPayload reports whether the descriptor carries anything to seal.
func (d *SecretDescriptor) HasPayload() bool {
	switch d.secretType {
	case TypeTLS:
		return d.tls != nil
	case TypeDocker:
		return d.docker != nil
	default:
		return len(d.sources) > 0
	}
}

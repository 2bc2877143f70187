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
	"errors"
	"fmt"
	"strings"

	"github.com/arenadata/sealctl/internal/api/meta"
	"github.com/arenadata/sealctl/pkg/errdefs"

	validation "github.com/jellydator/validation"
)

// Input is the parsed command line. The json tags name the flags in validation messages.
type Input struct {
	Environment string `json:"env"`
	Namespace   string `json:"namespace"`
	Name        string `json:"secret-name"`
	Type        string `json:"secret-type"`

	Literals []string `json:"from-literal"`
	Files    []string `json:"from-file"`
	// Sources are key sources already resolved by the caller, appended after literals and files.
	Sources []KeySource `json:"-"`

	CertPath string `json:"cert-path"`
	KeyPath  string `json:"key-path"`

	DockerServer   string `json:"docker-server"`
	DockerUsername string `json:"docker-username"`
	DockerPassword string `json:"docker-password"`
	DockerEmail    string `json:"docker-email"`
}

type options struct {
	allowEmpty   bool
	identityOnly bool
}

type Option func(*options)

// AllowEmptySources accepts a generic descriptor without key sources. Update uses it for
// pure field deletion.
func AllowEmptySources() Option {
	return func(o *options) {
		o.allowEmpty = true
	}
}

// IdentityOnly skips the payload entirely; only the manifest identity is needed.
func IdentityOnly() Option {
	return func(o *options) {
		o.identityOnly = true
	}
}

func (in Input) secretType() SecretType {
	if len(in.Type) == 0 {
		return TypeGeneric
	}
	return SecretType(in.Type)
}

func (in Input) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Environment,
			validation.Required.Error("environment is required"),
			validation.In(anySlice(Environments)...).Error("must be one of dev, stage, qa, prod"),
		),
		validation.Field(&in.Namespace,
			validation.Required.Error("namespace is required"),
			validation.By(dnsLabel("namespace")),
		),
		validation.Field(&in.Name,
			validation.Required.Error("secret name is required"),
			validation.By(dnsLabel("name")),
		),
		validation.Field(&in.Type,
			validation.In(anySlice(SecretTypes)...).Error("must be one of generic, tls, docker"),
		),
		validation.Field(&in.Literals, validation.Each(validation.By(func(v any) error {
			_, err := ParseLiteral(v.(string))
			return err
		}))),
		validation.Field(&in.Files, validation.Each(validation.By(func(v any) error {
			_, err := ParseFileSource(v.(string))
			return err
		}))),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", errdefs.ErrValidation, err)
	}
	return nil
}

// Build turns validated input into a SecretDescriptor. It has no side effects: files named
// by key sources are not read here.
func Build(in Input, opts ...Option) (*SecretDescriptor, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	d := &SecretDescriptor{
		id: Identity{
			Environment: Environment(in.Environment),
			Namespace:   in.Namespace,
			Name:        in.Name,
		},
		secretType: in.secretType(),
	}
	if o.identityOnly {
		return d, nil
	}

	switch d.secretType {
	case TypeGeneric:
		sources, err := in.keySources()
		if err != nil {
			return nil, err
		}
		if len(sources) == 0 && !o.allowEmpty {
			return nil, fmt.Errorf("%w: generic secret requires at least one --from-literal or --from-file", errdefs.ErrMissingInput)
		}
		d.sources = sources
	case TypeTLS:
		hasCert, hasKey := len(in.CertPath) > 0, len(in.KeyPath) > 0
		switch {
		case hasCert && hasKey:
			d.tls = &TLSPaths{CertPath: in.CertPath, KeyPath: in.KeyPath}
		case !hasCert && !hasKey && o.allowEmpty:
		default:
			return nil, fmt.Errorf("%w: tls secret requires both --cert-path and --key-path", errdefs.ErrMissingInput)
		}
	case TypeDocker:
		reg := DockerRegistry{
			Server:   in.DockerServer,
			Username: in.DockerUsername,
			Password: in.DockerPassword,
			Email:    in.DockerEmail,
		}
		if reg == (DockerRegistry{}) && o.allowEmpty {
			break
		}
		// Accepted as is, the object builder rejects what it cannot use.
		d.docker = &reg
	}

	return d, nil
}

func (in Input) keySources() ([]KeySource, error) {
	var sources []KeySource
	for _, l := range in.Literals {
		src, err := ParseLiteral(l)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errdefs.ErrValidation, err)
		}
		sources = append(sources, src)
	}
	for _, f := range in.Files {
		src, err := ParseFileSource(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errdefs.ErrValidation, err)
		}
		sources = append(sources, src)
	}
	return append(sources, in.Sources...), nil
}

// ParseLiteral parses a key=value pair. The value may contain further '=' characters.
func ParseLiteral(s string) (KeySource, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || len(key) == 0 {
		return KeySource{}, fmt.Errorf("invalid literal source %q, expected key=value", s)
	}
	return KeySource{Key: key, Value: value}, nil
}

// ParseFileSource parses [key=]path.
func ParseFileSource(s string) (KeySource, error) {
	if len(s) == 0 {
		return KeySource{}, errors.New("file source must not be empty")
	}
	key, path, ok := strings.Cut(s, "=")
	if !ok {
		return KeySource{Path: s}, nil
	}
	if len(key) == 0 || len(path) == 0 {
		return KeySource{}, fmt.Errorf("invalid file source %q, expected [key=]path", s)
	}
	return KeySource{Key: key, Path: path}, nil
}

func dnsLabel(field string) validation.RuleFunc {
	return func(v any) error {
		return meta.ValidateLabel(field, v.(string))
	}
}

func anySlice[T ~string](in []T) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		out = append(out, string(v))
	}
	return out
}

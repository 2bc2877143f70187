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

// Package config loads sealctl settings from the repository config file, the environment
// and command line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"

	validation "github.com/jellydator/validation"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultFile is looked up in the repository root when no config file is given.
	DefaultFile = ".sealctl.toml"
	EnvPrefix   = "SEALCTL_"

	GatewayKubeseal = "kubeseal"
	GatewayAge      = "age"

	BuilderLocal   = "local"
	BuilderKubectl = "kubectl"
)

var defaults = map[string]any{
	"secrets_dir":          "secrets",
	"keys_dir":             ".sealing-keys",
	"gateway":              GatewayKubeseal,
	"builder":              BuilderLocal,
	"kubeseal.binary":      "kubeseal",
	"kubectl.binary":       "kubectl",
	"controller.name":      "sealed-secrets-controller",
	"controller.namespace": "kube-system",
}

type Environment struct {
	// Context is the kube context kubeseal talks to.
	Context string
	// AgeIdentity is the identity file the age gateway derives the recipient from.
	AgeIdentity string
}

type Config struct {
	SecretsDir string
	KeysDir    string
	Gateway    string
	Builder    string

	KubesealBinary      string
	KubectlBinary       string
	ControllerName      string
	ControllerNamespace string

	Environments map[descriptor.Environment]Environment
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.SecretsDir, validation.Required),
		validation.Field(&c.KeysDir, validation.Required),
		validation.Field(&c.Gateway, validation.Required, validation.In(GatewayKubeseal, GatewayAge)),
		validation.Field(&c.Builder, validation.Required, validation.In(BuilderLocal, BuilderKubectl)),
		validation.Field(&c.Environments, validation.By(func(v any) error {
			for env := range v.(map[descriptor.Environment]Environment) {
				if _, err := descriptor.ParseEnvironment(string(env)); err != nil {
					return err
				}
			}
			return nil
		})),
	)
	if err != nil {
		return fmt.Errorf("%w: config: %w", errdefs.ErrValidation, err)
	}
	return nil
}

// Resolve makes relative paths relative to root.
func (c *Config) Resolve(root string) {
	c.SecretsDir = resolve(root, c.SecretsDir)
	c.KeysDir = resolve(root, c.KeysDir)
	for name, e := range c.Environments {
		if len(e.AgeIdentity) > 0 {
			e.AgeIdentity = resolve(root, e.AgeIdentity)
		}
		c.Environments[name] = e
	}
}

func (c *Config) Contexts() map[descriptor.Environment]string {
	out := make(map[descriptor.Environment]string)
	for name, e := range c.Environments {
		if len(e.Context) > 0 {
			out[name] = e.Context
		}
	}
	return out
}

func (c *Config) AgeIdentities() map[descriptor.Environment]string {
	out := make(map[descriptor.Environment]string)
	for name, e := range c.Environments {
		if len(e.AgeIdentity) > 0 {
			out[name] = e.AgeIdentity
		}
	}
	return out
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) || len(root) == 0 {
		return path
	}
	return filepath.Join(root, path)
}

// Load merges defaults, configFile (if set), SEALCTL_* variables and cliflags. In
// variable names "__" separates nested keys: SEALCTL_ENVIRONMENTS__PROD__CONTEXT.
func Load(configFile string, cliflags map[string]any) (*koanf.Koanf, error) {
	k := koanf.New(".")
	fileConf := koanf.New(".")
	envConf := koanf.New(".")
	cliConf := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}
	if configFile != "" {
		if err := fileConf.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}
	err := envConf.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("error loading config from env: %w", err)
	}
	if err = cliConf.Load(confmap.Provider(cliflags, "."), nil); err != nil {
		return nil, err
	}

	for _, c := range []*koanf.Koanf{fileConf, envConf, cliConf} {
		if err = k.Merge(c); err != nil {
			return nil, fmt.Errorf("error building config: %w", err)
		}
	}

	return k, nil
}

func New(k *koanf.Koanf) (*Config, error) {
	c := &Config{
		SecretsDir:          k.String("secrets_dir"),
		KeysDir:             k.String("keys_dir"),
		Gateway:             k.String("gateway"),
		Builder:             k.String("builder"),
		KubesealBinary:      k.String("kubeseal.binary"),
		KubectlBinary:       k.String("kubectl.binary"),
		ControllerName:      k.String("controller.name"),
		ControllerNamespace: k.String("controller.namespace"),
		Environments:        make(map[descriptor.Environment]Environment),
	}
	for _, name := range k.MapKeys("environments") {
		sub := k.Cut("environments." + name)
		c.Environments[descriptor.Environment(name)] = Environment{
			Context:     sub.String("context"),
			AgeIdentity: sub.String("age_identity"),
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

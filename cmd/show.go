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

package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/arenadata/sealctl/internal/config"
	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
	"github.com/arenadata/sealctl/pkg/manifest"
	"github.com/arenadata/sealctl/pkg/seal"

	"filippo.io/age"
	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the fields of a sealed secret",
		Long: `Displays the fields of a sealed secret manifest.
- with an age identity the values are decrypted. --age-key takes the identity in clear
  text and can be set by the SEALCTL_AGE_KEY environment variable, --age-key-file reads
  it from file, the configured age_identity of the environment is used otherwise
- otherwise only the field names are listed`,
		Args: cobra.NoArgs,
		RunE: secretsShow,
	}

	cmd.Flags().StringP("env", "e", "", "Environment of the secret")
	cmd.Flags().StringP("namespace", "n", "", "Namespace of the secret")
	cmd.Flags().StringP("secret-name", "s", "", "Name of the secret")
	cmd.Flags().String("age-key", "", "Age identity. Can be set by "+ageEnvKey("age-key")+" environment variable")
	cmd.Flags().String("age-key-file", "", "Read the age identity from file")
	cmd.MarkFlagsMutuallyExclusive("age-key", "age-key-file")
	return cmd
}

func secretsShow(cmd *cobra.Command, _ []string) (err error) {
	logger := log.WithField("command", "show")

	d, err := descriptor.Build(descriptor.Input{
		Environment: getString(cmd, "env"),
		Namespace:   getString(cmd, "namespace"),
		Name:        getString(cmd, "secret-name"),
	}, descriptor.IdentityOnly())
	if err != nil {
		return err
	}

	c, err := loadConfig(cmd, logger)
	if err != nil {
		return err
	}

	b, err := manifest.NewStore(c.SecretsDir).Read(d.Identity())
	if err != nil {
		return err
	}
	ss, err := manifest.Validate(b)
	if err != nil {
		return err
	}

	id, err := showIdentity(cmd, c.AgeIdentities()[d.Environment()])
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer func() {
		if e := enc.Close(); e != nil && err == nil {
			err = e
		}
	}()
	enc.SetIndent(2)

	if id == nil {
		logger.Debug("no age identity, listing field names")
		keys := make([]string, 0, len(ss.Spec.EncryptedData))
		for k := range ss.Spec.EncryptedData {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return enc.Encode(keys)
	}

	fields := make(map[string]string, len(ss.Spec.EncryptedData))
	for k, v := range ss.Spec.EncryptedData {
		plain, err := seal.DecryptValue(id, v)
		if err != nil {
			return fmt.Errorf("decrypt %s: %w", k, err)
		}
		fields[k] = string(plain)
	}
	return enc.Encode(fields)
}

func ageEnvKey(key string) string {
	key = slug.Make(key)
	key = strings.ToUpper(key)
	return config.EnvPrefix + strings.ReplaceAll(key, "-", "_")
}

// showIdentity returns the identity given by flag, environment or file, or nil if there
// is none.
func showIdentity(cmd *cobra.Command, configured string) (*age.X25519Identity, error) {
	key := getString(cmd, "age-key")
	if len(key) == 0 && !cmd.Flags().Changed("age-key-file") {
		key = os.Getenv(ageEnvKey("age-key"))
	}
	if len(key) > 0 {
		id, err := age.ParseX25519Identity(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("%w: age key: %w", errdefs.ErrValidation, err)
		}
		return id, nil
	}

	keyFile := getString(cmd, "age-key-file")
	if len(keyFile) == 0 {
		keyFile = configured
	}
	if len(keyFile) == 0 {
		return nil, nil
	}
	id, err := seal.ParseIdentityFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read age identity %s: %w", keyFile, err)
	}
	return id, nil
}

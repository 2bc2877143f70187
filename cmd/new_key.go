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
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/arenadata/sealctl/internal/ui"
	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
	"github.com/arenadata/sealctl/pkg/seal"

	"filippo.io/age"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new-key",
		Short: "Generate an age identity for an environment sealed with the age gateway",
		Args:  cobra.NoArgs,
		RunE:  secretsNewKey,
	}

	cmd.Flags().StringP("env", "e", "", "Environment the identity is for")
	cmd.Flags().StringP("output", "o", "", "Key output filename, - prints the key only (default is the configured age_identity)")
	_ = cmd.MarkFlagRequired("env")
	return cmd
}

func secretsNewKey(cmd *cobra.Command, _ []string) error {
	logger := log.WithField("command", "new-key")

	env, err := descriptor.ParseEnvironment(getString(cmd, "env"))
	if err != nil {
		return err
	}

	outputPath := getString(cmd, "output")
	if len(outputPath) == 0 {
		c, err := loadConfig(cmd, logger)
		if err != nil {
			return err
		}
		outputPath = c.AgeIdentities()[env]
	}
	if len(outputPath) == 0 {
		return fmt.Errorf("%w: no age_identity configured for %s, set --output", errdefs.ErrValidation, env)
	}

	key, err := seal.NewIdentity()
	if err != nil {
		return err
	}

	if outputPath == "-" {
		return fPrintAgeKey(cmd.OutOrStdout(), cmd.OutOrStdout(), key)
	}
	if err = saveAgeKey(outputPath, key); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%s identity for %s saved to %s, run %s to store its recipient\n",
		ui.Success.Sprint("✓"), ui.Highlight.Sprint(env), ui.Path.Sprint(outputPath),
		ui.Code.Sprintf("sealctl -e %s -o fetch-seal-key", env))
	return err
}

func saveAgeKey(path string, key *age.X25519Identity) (err error) {
	if _, err = os.Stat(path); err == nil {
		return fmt.Errorf("file %s already exists", path)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	fi, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0400)
	if err != nil {
		return err
	}
	defer func() {
		if e := fi.Close(); e != nil && err == nil {
			err = e
		}
	}()

	return fPrintAgeKey(fi, fi, key)
}

func fPrintAgeKey(stdout, stderr io.Writer, key *age.X25519Identity) error {
	if _, err := fmt.Fprintf(stderr, "# created: %s\n", time.Now().Format(time.RFC3339)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(stderr, "# public key: %s\n", key.Recipient()); err != nil {
		return err
	}

	_, err := fmt.Fprintf(stdout, "%s\n", key)
	return err
}

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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/arenadata/sealctl/internal/config"
	"github.com/arenadata/sealctl/internal/sources"
	"github.com/arenadata/sealctl/internal/ui"
	"github.com/arenadata/sealctl/pkg/descriptor"
	"github.com/arenadata/sealctl/pkg/errdefs"
	"github.com/arenadata/sealctl/pkg/interactive"
	"github.com/arenadata/sealctl/pkg/lifecycle"
	"github.com/arenadata/sealctl/pkg/manifest"
	"github.com/arenadata/sealctl/pkg/objects"
	"github.com/arenadata/sealctl/pkg/seal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func addLifecycleFlags(fs *pflag.FlagSet) {
	fs.StringP("env", "e", "", "Target environment: dev, stage, qa or prod")
	fs.StringP("namespace", "n", "", "Namespace of the secret (not used by fetch-seal-key)")
	fs.StringP("secret-name", "s", "", "Name of the secret (not used by fetch-seal-key)")
	fs.StringP("operation", "o", "", "Operation: fetch-seal-key, create, update or delete")
	fs.String("secret-type", string(descriptor.TypeGeneric), "Secret type: generic, tls or docker")

	fs.StringArray("from-literal", nil, "Secret field as key=value (repeatable)")
	fs.StringArray("from-file", nil, "Secret field read from [key=]path, key defaults to the file name (repeatable)")
	fs.StringArray("from-env-file", nil, "Secret fields read from a dotenv file (repeatable)")
	fs.StringArray("from-sops-file", nil, "Secret fields read from a sops encrypted yaml, json or dotenv file (repeatable)")
	fs.StringArrayP("fields-to-delete", "d", nil, "Field removed from the sealed secret on update (repeatable)")

	fs.String("cert-path", "", "TLS certificate (tls)")
	fs.String("key-path", "", "TLS private key (tls)")
	fs.String("docker-server", "", "Registry server (docker)")
	fs.String("docker-username", "", "Registry username (docker)")
	fs.String("docker-password", "", "Registry password, - reads it from the terminal (docker)")
	fs.String("docker-email", "", "Registry email (docker)")

	fs.String("gateway", "", "Sealing gateway: kubeseal or age (overrides config)")
	fs.BoolP("yes", "y", false, "Do not ask for confirmation")
	fs.Bool("dry-run", false, "Print the result instead of writing it")
}

// readRequest collects the flags of one invocation. Key files are expanded here, the
// descriptor itself is built by the lifecycle manager.
func readRequest(cmd *cobra.Command) (lifecycle.Request, error) {
	name := getString(cmd, "operation")
	if len(name) == 0 {
		return lifecycle.Request{}, fmt.Errorf("%w: --operation is required", errdefs.ErrValidation)
	}
	op, err := lifecycle.ParseOperation(name)
	if err != nil {
		return lifecycle.Request{}, err
	}

	in := descriptor.Input{
		Environment:    getString(cmd, "env"),
		Namespace:      getString(cmd, "namespace"),
		Name:           getString(cmd, "secret-name"),
		Type:           getString(cmd, "secret-type"),
		Literals:       getStrings(cmd, "from-literal"),
		Files:          getStrings(cmd, "from-file"),
		CertPath:       getString(cmd, "cert-path"),
		KeyPath:        getString(cmd, "key-path"),
		DockerServer:   getString(cmd, "docker-server"),
		DockerUsername: getString(cmd, "docker-username"),
		DockerPassword: getString(cmd, "docker-password"),
		DockerEmail:    getString(cmd, "docker-email"),
	}

	if op == lifecycle.Create || op == lifecycle.Update {
		for _, path := range getStrings(cmd, "from-env-file") {
			src, err := sources.EnvFile(path)
			if err != nil {
				return lifecycle.Request{}, err
			}
			in.Sources = append(in.Sources, src...)
		}
		for _, path := range getStrings(cmd, "from-sops-file") {
			src, err := sources.SopsFile(path)
			if err != nil {
				return lifecycle.Request{}, err
			}
			in.Sources = append(in.Sources, src...)
		}

		if in.DockerPassword == "-" {
			if in.DockerPassword, err = interactive.Password("Docker password", cmd.ErrOrStderr())(); err != nil {
				return lifecycle.Request{}, err
			}
		}
	}

	return lifecycle.Request{
		Operation:      op,
		Input:          in,
		FieldsToDelete: getStrings(cmd, "fields-to-delete"),
	}, nil
}

func runLifecycle(cmd *cobra.Command) error {
	req, err := readRequest(cmd)
	if err != nil {
		return err
	}
	logger := log.WithField("command", string(req.Operation))

	c, err := loadConfig(cmd, logger)
	if err != nil {
		return err
	}

	m := newManager(c, logger)
	m.DryRun = getBool(cmd, "dry-run")
	m.Out = cmd.OutOrStdout()
	if !m.DryRun {
		m.Out = colorWriter{m.Out}
	}
	if !getBool(cmd, "yes") {
		m.Confirm = confirmer(cmd)
	}

	return m.Run(cmd.Context(), req)
}

// confirmer prompts with survey on a terminal and reads plain answers otherwise.
func confirmer(cmd *cobra.Command) interactive.Confirmer {
	if cmd.InOrStdin() == os.Stdin && interactive.IsTerminal(os.Stdin) {
		return interactive.Survey
	}
	return interactive.Prompt(cmd.InOrStdin(), cmd.ErrOrStderr())
}

func newManager(c *config.Config, logger log.FieldLogger) *lifecycle.Manager {
	keys := manifest.NewKeyStore(c.KeysDir)

	var gw seal.Gateway
	switch c.Gateway {
	case config.GatewayAge:
		a := seal.NewAge(keys)
		a.Identities = c.AgeIdentities()
		gw = a
	default:
		k := seal.NewKubeseal(c.KubesealBinary, keys)
		k.ControllerName = c.ControllerName
		k.ControllerNamespace = c.ControllerNamespace
		k.Contexts = c.Contexts()
		gw = k
	}

	var b objects.Builder = objects.NewLocal()
	if c.Builder == config.BuilderKubectl {
		b = objects.NewKubectl(c.KubectlBinary)
	}

	return &lifecycle.Manager{
		Objects: b,
		Gateway: progressGateway{gw},
		Store:   manifest.NewStore(c.SecretsDir),
		Keys:    keys,
		Confirm: interactive.AlwaysApprove,
		Logger:  logger,
	}
}

// progressGateway shows a spinner while the gateway works.
type progressGateway struct {
	seal.Gateway
}

func (g progressGateway) FetchPublicKey(ctx context.Context, env descriptor.Environment) ([]byte, error) {
	done := ui.Spin("Fetching sealing key of " + string(env))
	key, err := g.Gateway.FetchPublicKey(ctx, env)
	done(err)
	return key, err
}

func (g progressGateway) Seal(ctx context.Context, secret []byte, env descriptor.Environment, allowEmptyData bool) ([]byte, error) {
	done := ui.Spin("Sealing secret for " + string(env))
	sealed, err := g.Gateway.Seal(ctx, secret, env, allowEmptyData)
	done(err)
	return sealed, err
}

type colorWriter struct {
	io.Writer
}

func (w colorWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(w.Writer, ui.Diff(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

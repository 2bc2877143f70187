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

// Package command runs the external tools sealctl delegates to.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Runner executes name with args, feeding stdin and returning stdout.
type Runner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// secretFlags carry plaintext values on the command line.
var secretFlags = []string{"--from-literal=", "--docker-password="}

// Redact returns a copy of args with the values of secret bearing flags masked.
// A literal keeps its key: --from-literal=token=*****.
func Redact(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = arg
		for _, flag := range secretFlags {
			value, ok := strings.CutPrefix(arg, flag)
			if !ok {
				continue
			}
			if key, _, found := strings.Cut(value, "="); found && flag == "--from-literal=" {
				out[i] = flag + key + "=*****"
			} else {
				out[i] = flag + "*****"
			}
		}
	}
	return out
}

// Exec is the Runner backed by os/exec. A failing command reports its stderr.
func Exec(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	log.WithField("command", name).Debugf("exec %s %s", name, strings.Join(Redact(args), " "))

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return stdout.Bytes(), nil
}

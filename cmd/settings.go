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
	"errors"
	"os"
	"path/filepath"

	"github.com/arenadata/sealctl/internal/config"
	"github.com/arenadata/sealctl/internal/repo"
	"github.com/arenadata/sealctl/pkg/utils"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// loadConfig reads the configuration of the repository sealctl runs in. Relative paths
// in it are resolved against the repository root.
func loadConfig(cmd *cobra.Command, logger log.FieldLogger) (*config.Config, error) {
	root := getString(cmd, "root")
	if len(root) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root, err = repo.Root(wd)
		if errors.Is(err, repo.ErrNotRepository) {
			logger.Warnf("%s, paths are relative to the current directory", err)
			root = wd
		} else if err != nil {
			return nil, err
		}
	}

	configFile := getString(cmd, "config")
	if len(configFile) == 0 {
		def := filepath.Join(root, config.DefaultFile)
		ok, err := utils.FileExists(def)
		if err != nil {
			return nil, err
		}
		if ok {
			configFile = def
		}
	}

	flags := make(map[string]any)
	if cmd.Flags().Changed("gateway") {
		flags["gateway"] = getString(cmd, "gateway")
	}

	k, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	c, err := config.New(k)
	if err != nil {
		return nil, err
	}
	c.Resolve(root)

	logger.WithFields(log.Fields{"root": root, "config": configFile, "gateway": c.Gateway}).Debug("configuration loaded")
	return c, nil
}

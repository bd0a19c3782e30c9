// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/sente/pkg/config"
)

func Config() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [--init]",
		Short: "Show the effective configuration",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			if initialize, _ := cmd.Flags().GetBool("init"); initialize {
				path, _ := cmd.Flags().GetString("config")
				if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("%s already exists", path)
				}

				if err := config.Default().Write(path); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "\x1b[32mWrote Configuration:\x1b[0m %s\n", path)
				return nil
			}

			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(settings); err != nil {
				return err
			}

			return encoder.Close()
		},
	}

	cmd.Flags().Bool("init", false, "Write the default configuration file")
	return cmd
}

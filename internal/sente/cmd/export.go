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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/sente/pkg/common"
	"laptudirm.com/x/sente/pkg/kif"
	"laptudirm.com/x/sente/pkg/store"
)

func Export() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export id [--format kif|yaml] [-o file]",
		Short: "Export a saved game",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			games, err := openStore()
			if err != nil {
				return err
			}
			defer games.Close()

			saved, err := store.Find(cmd.Context(), games, args[0])
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, common.FilePermissions)
				if err != nil {
					return err
				}
				defer file.Close()

				out = file
			}

			switch format {
			case "kif":
				return kif.Write(out, oracle, saved)
			case "yaml":
				encoder := yaml.NewEncoder(out)
				encoder.SetIndent(2)
				if err := encoder.Encode(saved); err != nil {
					return err
				}

				return encoder.Close()
			default:
				return fmt.Errorf("unknown export format %q", format)
			}
		},
	}

	cmd.Flags().StringP("format", "f", "kif", "Output format, kif or yaml")
	cmd.Flags().StringP("output", "o", "", "Write to the file instead of stdout")
	cmd.Flags().String("store", "", "Game store, a directory or a redis:// url")

	return cmd
}

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

	"github.com/spf13/cobra"

	"laptudirm.com/x/sente/pkg/manager"
)

func Engines() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engines [--enable engine] [--disable engine] [--favorite engine]",
		Short: "Lists the registered engines",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			catalogue, err := openCatalogue()
			if err != nil {
				return err
			}

			if err := updateEngines(cmd, catalogue); err != nil {
				return err
			}

			listEngines(cmd.OutOrStdout(), catalogue)
			return nil
		},
	}

	cmd.Flags().StringArray("enable", nil, "Enable the given engine")
	cmd.Flags().StringArray("disable", nil, "Disable the given engine")
	cmd.Flags().String("favorite", "", "Make the given engine the favorite")

	return cmd
}

// updateEngines applies the --enable, --disable and --favorite flags.
func updateEngines(cmd *cobra.Command, catalogue *manager.Catalogue) error {
	enable, _ := cmd.Flags().GetStringArray("enable")
	disable, _ := cmd.Flags().GetStringArray("disable")
	favorite, _ := cmd.Flags().GetString("favorite")

	for _, key := range enable {
		if err := catalogue.SetEnabled(key, true); err != nil {
			return fmt.Errorf("enable %s: %w", key, err)
		}
	}

	for _, key := range disable {
		if err := catalogue.SetEnabled(key, false); err != nil {
			return fmt.Errorf("disable %s: %w", key, err)
		}
	}

	if favorite != "" {
		if err := catalogue.SetFavorite(favorite); err != nil {
			return fmt.Errorf("favorite %s: %w", favorite, err)
		}
	}

	return nil
}

func listEngines(out io.Writer, catalogue *manager.Catalogue) {
	fmt.Fprintln(out, "\u001B[32mRegistered Engines\u001B[0m:")
	fmt.Fprintln(out)

	for _, entry := range catalogue.List() {
		name := fmt.Sprintf("\x1b[34m%s\x1b[0m", entry.DisplayName)
		if entry.Favorite {
			name = "\x1b[33m*\x1b[0m " + name
		}

		details := entry.Engine.Cmd
		if entry.Builtin {
			details = "builtin"
		}
		if !entry.Enabled {
			details += " \x1b[31m(disabled)\x1b[0m"
		}

		fmt.Fprintf(out, "- %-30s %s %s\n", name, entry.ID[:8], details)
		for option, value := range entry.Engine.Options {
			fmt.Fprintf(out, "    %s = %s\n", option, value)
		}
	}
}

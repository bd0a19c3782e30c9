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

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func Clone() *cobra.Command {
	return &cobra.Command{
		Use:   "clone engine name",
		Short: "Register a copy of an engine under a new name",
		Args:  cobra.ExactArgs(2),
		Long: heredoc.Doc(`clone registers a copy of the given engine, including its
			saved options, under a new name. The copy can then be given
			different options with "sente add --update".`),

		RunE: func(cmd *cobra.Command, args []string) error {
			catalogue, err := openCatalogue()
			if err != nil {
				return err
			}

			id, err := catalogue.Clone(args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\x1b[32mRegistered Engine:\x1b[0m %s (%s)\n", args[1], id)
			return nil
		},
	}
}

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
	"os/exec"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/sente/pkg/engine"
	"laptudirm.com/x/sente/pkg/manager"
)

func Add() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add path [--name name] [--option name=value]...",
		Short: "Register a usi engine",
		Args:  cobra.ExactArgs(1),
		Long: heredoc.Doc(`add validates the usi engine at the given path and adds it
			to the engine catalogue, so that it can be referred to by name
			in other commands.

			Options given with --option are sent to the engine with
			setoption before every game. Options of an existing engine
			are updated by naming it with --name and passing --update.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			arg, _ := cmd.Flags().GetString("arg")
			dir, _ := cmd.Flags().GetString("dir")
			pairs, _ := cmd.Flags().GetStringArray("option")
			update, _ := cmd.Flags().GetBool("update")
			favorite, _ := cmd.Flags().GetBool("favorite")

			options, err := parseOptions(pairs)
			if err != nil {
				return err
			}

			catalogue, err := openCatalogue()
			if err != nil {
				return err
			}

			if update {
				if err := catalogue.SaveOptions(args[0], options); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "\x1b[32mUpdated Engine:\x1b[0m %s\n", args[0])
				return nil
			}

			path, err := exec.LookPath(args[0])
			if err != nil {
				return err
			}

			config := engine.Config{Name: name, Cmd: path, Dir: dir, Arg: arg, Options: options}
			meta, err := validate(cmd.Context(), config)
			if err != nil {
				return err
			}

			for option := range options {
				if _, found := meta.Option(option); !found {
					return fmt.Errorf("%s has no option %q", meta.Name, option)
				}
			}

			id, err := catalogue.Add(manager.NewEntry(config, &meta))
			if err != nil {
				return err
			}

			if favorite {
				if err := catalogue.SetFavorite(id); err != nil {
					return err
				}
			}

			entry, _ := catalogue.Find(id)
			fmt.Fprintf(cmd.OutOrStdout(), "\x1b[32mRegistered Engine:\x1b[0m %s (%s)\n", entry.DisplayName, id)
			return nil
		},
	}

	cmd.Flags().StringP("name", "n", "", "Name of the engine, by default the one it reports")
	cmd.Flags().String("arg", "", "Arguments to start the engine with")
	cmd.Flags().String("dir", "", "Working directory of the engine")
	cmd.Flags().StringArrayP("option", "o", nil, "Engine option, as name=value")
	cmd.Flags().BoolP("update", "u", false, "Update the options of a registered engine")
	cmd.Flags().Bool("favorite", false, "Make the engine the favorite")

	return cmd
}

func parseOptions(pairs []string) (map[string]string, error) {
	options := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("option %q is not of the form name=value", pair)
		}

		options[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	return options, nil
}

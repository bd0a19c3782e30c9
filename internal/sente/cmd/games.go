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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"laptudirm.com/x/sente/pkg/store"
)

func Games() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games [--delete id]",
		Short: "Lists the saved games",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := openStore()
			if err != nil {
				return err
			}
			defer games.Close()

			if del, _ := cmd.Flags().GetString("delete"); del != "" {
				saved, err := store.Find(cmd.Context(), games, del)
				if err != nil {
					return err
				}

				if err := games.Delete(cmd.Context(), saved.ID); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "\x1b[32mDeleted Game:\x1b[0m %s\n", saved.ID)
				return nil
			}

			list, err := games.List(cmd.Context())
			if err != nil {
				return err
			}

			unfinished, _ := cmd.Flags().GetBool("unfinished")

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBLACK\tWHITE\tMOVES\tRESULT\tUPDATED")
			for _, saved := range list {
				if unfinished && saved.Finished() {
					continue
				}

				result := "*"
				if saved.Finished() {
					result = saved.Result + " " + saved.Reason
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					saved.ID[:8], saved.Black, saved.White, len(saved.Moves),
					result, saved.Updated.Local().Format("2006-01-02 15:04"),
				)
			}

			return w.Flush()
		},
	}

	cmd.Flags().String("delete", "", "Delete the game with the given id")
	cmd.Flags().BoolP("unfinished", "u", false, "Only list unfinished games")
	cmd.Flags().String("store", "", "Game store, a directory or a redis:// url")

	return cmd
}

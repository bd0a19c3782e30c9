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
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"laptudirm.com/x/sente/pkg/game"
	"laptudirm.com/x/sente/pkg/manager"
	"laptudirm.com/x/sente/pkg/store"
)

func Resume() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume game-id",
		Short: "Resume a suspended game",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := openStore()
			if err != nil {
				return err
			}

			saved, err := store.Find(cmd.Context(), games, args[0])
			_ = games.Close()
			if err != nil {
				return err
			}

			// The players default to the ones the game was started with.
			black, white := saved.Black, saved.White
			if cmd.Flags().Changed("black") {
				black, _ = cmd.Flags().GetString("black")
			}
			if cmd.Flags().Changed("white") {
				white, _ = cmd.Flags().GetString("white")
			}

			catalogue, err := openCatalogue()
			if err != nil {
				return err
			}

			var players game.Players
			for color, name := range []string{black, white} {
				players[color], err = resolvePlayer(catalogue, name)
				if errors.Is(err, manager.ErrNotFound) {
					// names of human players are not in the catalogue
					players[color], err = game.Human(name), nil
				}

				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return playInteractive(ctx, cmd.OutOrStdout(), cmd.InOrStdin(), func(controller *game.Controller) error {
				_, err := controller.Resume(ctx, saved, players)
				return err
			})
		},
	}

	cmd.Flags().StringP("black", "b", "", "Replace the black player")
	cmd.Flags().StringP("white", "w", "", "Replace the white player")
	gameFlags(cmd)

	return cmd
}

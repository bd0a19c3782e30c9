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
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/sente/pkg/game"
	"laptudirm.com/x/sente/pkg/shogi"
)

func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [--black player] [--white player]",
		Short: "Play a game on the terminal",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`play starts a new game between two players, each being
			"human", "favorite" or the name of a registered engine. Human
			moves are typed in usi notation.

			The game is saved after every move. Quitting suspends it,
			and "sente resume" picks it up again.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			black, _ := cmd.Flags().GetString("black")
			white, _ := cmd.Flags().GetString("white")
			sfen, _ := cmd.Flags().GetString("sfen")

			start, err := shogi.ParsePosition(sfen)
			if err != nil {
				return err
			}

			players, err := resolvePlayers(black, white)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return playInteractive(ctx, cmd.OutOrStdout(), cmd.InOrStdin(), func(controller *game.Controller) error {
				_, err := controller.NewGame(ctx, start, players)
				return err
			})
		},
	}

	cmd.Flags().StringP("black", "b", "human", "Player of the black pieces")
	cmd.Flags().StringP("white", "w", "favorite", "Player of the white pieces")
	cmd.Flags().String("sfen", "startpos", "Starting position")
	gameFlags(cmd)

	return cmd
}

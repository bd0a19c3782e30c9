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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/sente/pkg/endgame"
	"laptudirm.com/x/sente/pkg/game"
	"laptudirm.com/x/sente/pkg/record"
	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/stats"
	"laptudirm.com/x/sente/pkg/store"
)

// seriesMaxMoves bounds engine games when no limit is configured.
const seriesMaxMoves = 512

// waiter is a listener which reports the end of a game.
type waiter struct {
	game.NopListener
	done chan endgame.Verdict
}

func (w *waiter) GameOver(verdict endgame.Verdict) {
	w.done <- verdict
}

func (w *waiter) EngineFault(role shogi.Color, err error) {
	logrus.WithField("role", role).Warnf("engine fault: %v", err)
}

func Match() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match engine1 engine2",
		Short: "Play a series of games between two engines",
		Args:  cobra.ExactArgs(2),
		Long: heredoc.Doc(`match plays a series of games between two registered
			engines, alternating their colors, and reports the score and
			the elo difference it implies.

			Failed engines forfeit their games, and games are drawn after
			512 moves unless a move limit is configured. With --sprt the
			series stops as soon as a sequential probability ratio test
			between the given elo bounds accepts either hypothesis.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("games")
			sfen, _ := cmd.Flags().GetString("sfen")
			save, _ := cmd.Flags().GetBool("save")
			bounds, _ := cmd.Flags().GetString("sprt")

			var sprt *stats.Test
			if bounds != "" {
				test, err := stats.ParseTest(bounds)
				if err != nil {
					return err
				}

				sprt = &test
			}

			start, err := shogi.ParsePosition(sfen)
			if err != nil {
				return err
			}

			catalogue, err := openCatalogue()
			if err != nil {
				return err
			}

			var contenders [2]game.Player
			for i, name := range args {
				if contenders[i], err = resolvePlayer(catalogue, name); err != nil {
					return err
				}

				if contenders[i].IsHuman() {
					return fmt.Errorf("%s is not an engine", name)
				}
			}

			var games store.Store
			if save {
				if games, err = openStore(); err != nil {
					return err
				}
				defer games.Close()
			}

			options := settings.Options(oracle)
			options.FaultPolicy = game.Forfeit
			if options.Detector.MaxPlies == 0 {
				options.Detector.MaxPlies = seriesMaxMoves
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var tally stats.Tally
			for i := 0; i < n && ctx.Err() == nil; i++ {
				// player 1 takes black in even games
				players, side := game.Players{contenders[0], contenders[1]}, shogi.Black
				if i%2 == 1 {
					players, side = game.Players{contenders[1], contenders[0]}, shogi.White
				}

				verdict, played, err := playSeriesGame(ctx, options, start, players)
				if err != nil {
					return err
				}

				if games != nil {
					if err := games.Save(ctx, played); err != nil {
						logrus.Warnf("saving game %s: %v", played.ID, err)
					}
				}

				result, decided := verdict.Result()
				if !decided {
					logrus.Warnf("game %d aborted", i+1)
					continue
				}

				tally.Add(result.For(side), verdict.Reason.String())
				logrus.WithFields(logrus.Fields{
					"black": players[shogi.Black].Name,
					"white": players[shogi.White].Name,
					"moves": len(played.Moves),
				}).Infof("game %d: %s (%s)", i+1, result, verdict)

				if sprt != nil {
					if decision, llr := sprt.Decide(&tally); decision != stats.Continue {
						logrus.Infof("sprt: %s after %d games (llr %.2f)", decision, tally.Games(), llr)
						break
					}
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), "\n"+tally.Summary(contenders[0].Name, contenders[1].Name))
			if sprt != nil {
				decision, llr := sprt.Decide(&tally)
				lower, upper := sprt.Bounds()
				fmt.Fprintf(cmd.OutOrStdout(), "LLR: %.2f (%.2f, %.2f) [%.1f, %.1f] %s\n",
					llr, lower, upper, sprt.Elo0, sprt.Elo1, decision)
			}
			return nil
		},
	}

	cmd.Flags().IntP("games", "n", 2, "Number of games to play")
	cmd.Flags().String("sfen", "startpos", "Starting position of every game")
	cmd.Flags().Bool("save", false, "Save the games to the game store")
	cmd.Flags().String("sprt", "", "Stop early once an sprt with bounds elo0,elo1 decides")
	gameFlags(cmd)

	return cmd
}

func playSeriesGame(ctx context.Context, options game.Options, start shogi.Position, players game.Players) (endgame.Verdict, record.Game, error) {
	listener := &waiter{done: make(chan endgame.Verdict, 1)}
	controller := game.New(options, listener)

	if _, err := controller.NewGame(ctx, start, players); err != nil {
		controller.Close()
		return endgame.Verdict{}, record.Game{}, err
	}

	var verdict endgame.Verdict
	select {
	case verdict = <-listener.done:
	case <-ctx.Done():
		_ = controller.Abort()
		verdict = <-listener.done
	}

	return verdict, controller.Game(), nil
}

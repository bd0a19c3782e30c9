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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/sente/pkg/endgame"
	"laptudirm.com/x/sente/pkg/game"
	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/store"
)

// terminal shows a game on a text terminal.
type terminal struct {
	out  io.Writer
	done chan endgame.Verdict
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out, done: make(chan endgame.Verdict, 1)}
}

func (term *terminal) PositionChanged(snapshot game.Snapshot) {
	if m, ok := snapshot.LastMove(); ok {
		fmt.Fprintf(term.out, "\x1b[34m%3d.\x1b[0m %s\n", len(snapshot.Moves), m)
	}

	if snapshot.State.Phase != game.AwaitingHumanMove {
		return
	}

	fmt.Fprintf(term.out, "\n%s\n", snapshot.Position)
	if snapshot.Occurrences > 1 {
		fmt.Fprintf(term.out, "\x1b[33mposition seen %d times\x1b[0m\n", snapshot.Occurrences)
	}
	fmt.Fprintf(term.out, "%s> ", snapshot.State.Role)
}

func (term *terminal) GameOver(verdict endgame.Verdict) {
	fmt.Fprintf(term.out, "\n\x1b[32mGame over\x1b[0m: %s\n", verdict)
	term.done <- verdict
}

func (term *terminal) EngineFault(role shogi.Color, err error) {
	fmt.Fprintf(term.out, "\n\x1b[31m%s engine failed\x1b[0m: %v\n", role, err)
	fmt.Fprintln(term.out, "Type 'restart' to restart it, or 'resign', 'abort' or 'quit'.")
}

const sessionHelp = `Commands:
  <move>    play a move in usi notation, like 7g7f, 8h2b+ or P*5e
  board     show the board
  sfen      show the position's sfen
  resign    resign the game, naming the side when both are human:
            resign black or resign white
  restart   restart a failed engine
  abort     end the game without a result
  quit      leave; the game can be resumed later`

// interact runs a game on the terminal until it ends, the user quits or
// ctx is cancelled.
func interact(ctx context.Context, controller *game.Controller, term *terminal, in io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	for {
		select {
		case <-term.done:
			return

		case <-ctx.Done():
			controller.Close()
			fmt.Fprintf(term.out, "\ngame %s suspended\n", controller.Game().ID)
			return

		case line, ok := <-lines:
			if !ok || line == "quit" || line == "exit" {
				controller.Close()
				fmt.Fprintf(term.out, "\ngame %s suspended\n", controller.Game().ID)
				return
			}

			command(ctx, controller, term, line)
		}
	}
}

func command(ctx context.Context, controller *game.Controller, term *terminal, line string) {
	snapshot := controller.Snapshot()

	word, arg, _ := strings.Cut(line, " ")

	var err error
	switch word {
	case "":
		return
	case "help", "?":
		fmt.Fprintln(term.out, sessionHelp)
	case "board":
		fmt.Fprintln(term.out, snapshot.Position)
	case "sfen":
		fmt.Fprintln(term.out, snapshot.Position.SFEN())
	case "resign":
		var side shogi.Color
		if side, err = resigner(controller.Players(), snapshot, strings.TrimSpace(arg)); err == nil {
			err = controller.Resign(side)
		}
	case "abort":
		err = controller.Abort()
	case "restart":
		if snapshot.State.Phase != game.Paused {
			err = game.ErrNotPaused
			break
		}

		fmt.Fprintf(term.out, "restarting %s engine...\n", snapshot.State.Role)
		err = controller.ReplaceEngine(ctx, snapshot.State.Role, nil)
	default:
		err = controller.SubmitUSI(line)
	}

	switch {
	case errors.Is(err, game.ErrRejected):
		fmt.Fprintf(term.out, "\x1b[31millegal move\x1b[0m %q, type 'help' for help\n%s> ", line, snapshot.State.Role)
	case err != nil:
		fmt.Fprintf(term.out, "\x1b[31m%v\x1b[0m\n", err)
	}
}

// resigner returns the side a resign typed on the terminal gives up. It
// is the human side of the game, or when both sides are human the named
// side, which defaults to the side to move.
func resigner(players game.Players, snapshot game.Snapshot, name string) (shogi.Color, error) {
	if name != "" {
		side, err := shogi.ParseColor(name)
		if err != nil {
			return side, err
		}

		if !players[side].IsHuman() {
			return side, fmt.Errorf("%s is played by %s", side, players[side].Name)
		}

		return side, nil
	}

	black, white := players[shogi.Black].IsHuman(), players[shogi.White].IsHuman()
	switch {
	case black && white:
		if snapshot.State.Phase == game.AwaitingHumanMove {
			return snapshot.State.Role, nil
		}

		return shogi.Black, errors.New("name the resigning side: resign black or resign white")
	case black:
		return shogi.Black, nil
	case white:
		return shogi.White, nil
	default:
		return shogi.Black, errors.New("no human plays in this game")
	}
}

// playInteractive wires a controller to the terminal and the game store,
// starts the game with start and runs it.
func playInteractive(ctx context.Context, out io.Writer, in io.Reader, start func(*game.Controller) error) error {
	games, err := openStore()
	if err != nil {
		return err
	}
	defer games.Close()

	term := newTerminal(out)
	checkpoint := store.NewCheckpointer(games, term)

	controller := game.New(settings.Options(oracle), checkpoint)
	checkpoint.Attach(controller)

	if err := start(controller); err != nil {
		controller.Close()
		return err
	}

	id := controller.Game().ID
	logrus.WithField("game", id).Infof("playing, type 'help' for help")

	interact(ctx, controller, term, in)
	return nil
}

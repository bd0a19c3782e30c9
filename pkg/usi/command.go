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

// Package usi implements the text protocol spoken between a shogi GUI
// and a shogi engine. Encoders return a single command line without its
// trailing newline; the transport is responsible for line termination.
package usi

import (
	"fmt"

	"laptudirm.com/x/sente/pkg/shogi"
)

func Usi() string     { return "usi" }
func IsReady() string { return "isready" }
func NewGame() string { return "usinewgame" }
func Stop() string    { return "stop" }
func Quit() string    { return "quit" }

// SetOption sets the value of an engine option. Button options, which
// have no value, are pressed by passing an empty value.
func SetOption(name, value string) string {
	if value == "" {
		return "setoption name " + name
	}

	return fmt.Sprintf("setoption name %s value %s", name, value)
}

// Position always transmits the complete position as an sfen. Move lists
// are never sent, so an engine can not end up applying a move twice.
func Position(pos shogi.Position) string {
	return "position sfen " + pos.SFEN()
}

// Go starts a search with the given budget.
func Go(budget Budget) string {
	s := fmt.Sprintf("go btime %d wtime %d",
		budget.Time[shogi.Black].Milliseconds(),
		budget.Time[shogi.White].Milliseconds(),
	)

	if budget.Inc[shogi.Black] > 0 || budget.Inc[shogi.White] > 0 {
		return s + fmt.Sprintf(" binc %d winc %d",
			budget.Inc[shogi.Black].Milliseconds(),
			budget.Inc[shogi.White].Milliseconds(),
		)
	}

	return s + fmt.Sprintf(" byoyomi %d", budget.Byoyomi.Milliseconds())
}

// Outcome is a game's result from the point of view of the engine it is
// reported to.
type Outcome int

const (
	Lose Outcome = iota - 1
	Draw
	Win
)

func (outcome Outcome) String() string {
	switch outcome {
	case Win:
		return "win"
	case Lose:
		return "lose"
	default:
		return "draw"
	}
}

// GameOver informs the engine that the game has ended.
func GameOver(outcome Outcome) string {
	return "gameover " + outcome.String()
}

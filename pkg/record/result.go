// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
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

package record

import (
	"fmt"

	"laptudirm.com/x/sente/pkg/shogi"
)

// Result represents the result of a single game from black's point of
// view.
type Result int

const (
	Win  Result = +1
	Draw Result = 0
	Loss Result = -1
)

// GameLostBy maps the losing side to the game's Result.
var GameLostBy = [shogi.ColorN]Result{
	shogi.Black: Loss,
	shogi.White: Win,
}

// GameWonBy maps the winning side to the game's Result.
var GameWonBy = [shogi.ColorN]Result{
	shogi.Black: Win,
	shogi.White: Loss,
}

// For returns the result from the given side's point of view.
func (result Result) For(c shogi.Color) Result {
	if c == shogi.White {
		return -result
	}

	return result
}

// String returns a string representation of the given Result.
func (result Result) String() string {
	switch result {
	case Win:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	case Loss:
		return "0-1"
	default:
		return "?-?"
	}
}

// ParseResult parses the string representation of a Result.
func ParseResult(s string) (Result, error) {
	switch s {
	case "1-0":
		return Win, nil
	case "1/2-1/2":
		return Draw, nil
	case "0-1":
		return Loss, nil
	default:
		return Draw, fmt.Errorf("record: invalid result %q", s)
	}
}

// PairResult represents the result of a pair of games played with the
// colors reversed.
type PairResult int

const (
	WinWin   = PairResult(Win + Win)   // Player 1 Double kills
	WinDraw  = PairResult(Win + Draw)  // Player 1 Wins and Holds
	DrawDraw = PairResult(Draw + Draw) // Win-Loss or Draw-Draw
	DrawLoss = PairResult(Draw + Loss) // Player 2 Wins and Holds
	LossLoss = PairResult(Loss + Loss) // Player 2 Double kills
)

// GetPairResult returns the PairResult given the Result of each game in the
// pair from player 1's point of view.
func GetPairResult(result1, result2 Result) PairResult {
	return PairResult(result1 + result2)
}

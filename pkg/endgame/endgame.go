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

// Package endgame decides whether a game is over. Detection is a pure
// function of the current position, how often it has occurred and any
// external signal such as a resignation.
package endgame

import (
	"fmt"

	"laptudirm.com/x/sente/pkg/record"
	"laptudirm.com/x/sente/pkg/shogi"
)

// Reason is the reason a game ended.
type Reason int

const (
	Checkmate Reason = iota
	NoLegalMoves
	Repetition
	Impasse
	Resignation
	IllegalMove
	Timeout
	EngineFault
	MaxMoves
	Aborted
)

var reasonNames = [...]string{
	Checkmate:    "checkmate",
	NoLegalMoves: "noLegalMoves",
	Repetition:   "repetition",
	Impasse:      "impasse",
	Resignation:  "resignation",
	IllegalMove:  "illegalMove",
	Timeout:      "timeout",
	EngineFault:  "engineFault",
	MaxMoves:     "maxMoves",
	Aborted:      "aborted",
}

func (reason Reason) String() string {
	if reason < 0 || int(reason) >= len(reasonNames) {
		return "unknown"
	}

	return reasonNames[reason]
}

// ParseReason parses the string form of a Reason.
func ParseReason(s string) (Reason, error) {
	for reason, name := range reasonNames {
		if name == s {
			return Reason(reason), nil
		}
	}

	return 0, fmt.Errorf("endgame: unknown reason %q", s)
}

// Verdict is the terminal verdict of a game.
type Verdict struct {
	Reason Reason
	Winner shogi.Color

	// Decisive is false for draws and aborted games, in which case
	// Winner is meaningless.
	Decisive bool
}

// Win returns a verdict won by the given side.
func Win(reason Reason, winner shogi.Color) Verdict {
	return Verdict{Reason: reason, Winner: winner, Decisive: true}
}

// Draw returns a drawn verdict.
func Draw(reason Reason) Verdict {
	return Verdict{Reason: reason}
}

// Result returns the result of the game, and false for aborted games,
// which have none.
func (verdict Verdict) Result() (record.Result, bool) {
	switch {
	case verdict.Reason == Aborted:
		return record.Draw, false
	case !verdict.Decisive:
		return record.Draw, true
	default:
		return record.GameWonBy[verdict.Winner], true
	}
}

func (verdict Verdict) String() string {
	if !verdict.Decisive {
		return verdict.Reason.String()
	}

	return fmt.Sprintf("%s, %s wins", verdict.Reason, verdict.Winner)
}

// Signal is an event from outside the board that may end the game.
type Signal int

const (
	NoSignal Signal = iota
	Resign
	Illegal
	Declare
	TimedOut
	Faulted
	Abort
)

// Input is everything a Detector looks at.
type Input struct {
	// Position is the current position, after the last move.
	Position shogi.Position

	// Occurrences is the number of times Position has occurred.
	Occurrences int

	// Plies is the number of moves played.
	Plies int

	Signal Signal

	// Side is the side the signal is about: the side resigning,
	// declaring, or at fault.
	Side shogi.Color
}

// Detector evaluates Inputs into verdicts.
type Detector struct {
	Oracle shogi.Oracle

	// Repetition is the number of occurrences of a position which draws
	// the game.
	Repetition int

	// MaxPlies draws the game once reached. Zero means no limit.
	MaxPlies int

	Impasse ImpasseRules
}

// NewDetector returns a detector with the default rules.
func NewDetector(oracle shogi.Oracle) Detector {
	return Detector{
		Oracle:     oracle,
		Repetition: 4,
		Impasse:    DefaultImpasse,
	}
}

// Detect returns the verdict for the input, and false if the game goes on.
// External signals are considered first, then in order: checkmate, no
// legal moves, repetition, impasse and the move limit.
func (detector Detector) Detect(in Input) (Verdict, bool) {
	switch in.Signal {
	case Resign:
		return Win(Resignation, in.Side.Other()), true
	case Illegal:
		return Win(IllegalMove, in.Side.Other()), true
	case TimedOut:
		return Win(Timeout, in.Side.Other()), true
	case Faulted:
		return Win(EngineFault, in.Side.Other()), true
	case Abort:
		return Draw(Aborted), true
	case Declare:
		// a declaration which does not meet the conditions loses
		if in.Position.Turn == in.Side && detector.Impasse.Declarable(detector.Oracle, in.Position, in.Side) {
			return Win(Impasse, in.Side), true
		}

		return Win(IllegalMove, in.Side.Other()), true
	}

	pos := in.Position
	toMove := pos.Turn

	if len(detector.Oracle.LegalMoves(pos)) == 0 {
		if detector.Oracle.InCheck(pos, toMove) {
			return Win(Checkmate, toMove.Other()), true
		}

		return Win(NoLegalMoves, toMove.Other()), true
	}

	if detector.Repetition > 0 && in.Occurrences >= detector.Repetition {
		return Draw(Repetition), true
	}

	if detector.Impasse.AutoDeclare && detector.Impasse.Declarable(detector.Oracle, pos, toMove) {
		return Win(Impasse, toMove), true
	}

	if detector.MaxPlies > 0 && in.Plies >= detector.MaxPlies {
		return Draw(MaxMoves), true
	}

	return Verdict{}, false
}

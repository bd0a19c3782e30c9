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

package game

import (
	"fmt"
	"time"

	"laptudirm.com/x/sente/pkg/endgame"
	"laptudirm.com/x/sente/pkg/engine"
	"laptudirm.com/x/sente/pkg/shogi"
)

// Phase is the phase of the controller's state machine.
type Phase int

const (
	Idle Phase = iota
	AwaitingHumanMove
	AwaitingEngineMove
	Paused
	Terminal
)

func (phase Phase) String() string {
	switch phase {
	case Idle:
		return "idle"
	case AwaitingHumanMove:
		return "awaiting human move"
	case AwaitingEngineMove:
		return "awaiting engine move"
	case Paused:
		return "paused"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// State is the state of a controller. Role is the side whose move is
// awaited, or the side whose engine failed when Paused. Verdict is only
// set when Terminal.
type State struct {
	Phase   Phase
	Role    shogi.Color
	Verdict endgame.Verdict
}

func (state State) String() string {
	switch state.Phase {
	case AwaitingHumanMove, AwaitingEngineMove, Paused:
		return fmt.Sprintf("%s (%s)", state.Phase, state.Role)
	case Terminal:
		return fmt.Sprintf("%s (%s)", state.Phase, state.Verdict)
	default:
		return state.Phase.String()
	}
}

// Player is one side of a game. A player without an engine is a human.
type Player struct {
	Name   string
	Engine engine.Factory
}

// Human returns a human player.
func Human(name string) Player {
	return Player{Name: name}
}

// Computer returns a player whose moves are made by an engine.
func Computer(name string, factory engine.Factory) Player {
	return Player{Name: name, Engine: factory}
}

func (player Player) IsHuman() bool {
	return player.Engine == nil
}

// Players maps each side of a game to its player.
type Players [shogi.ColorN]Player

// Snapshot is a consistent view of a controller at one point in time.
type Snapshot struct {
	Epoch uint64
	State State

	Position    shogi.Position
	Moves       []shogi.Move
	Occurrences int

	Clock [shogi.ColorN]time.Duration
}

// LastMove returns the last move played, if any.
func (snapshot Snapshot) LastMove() (shogi.Move, bool) {
	if len(snapshot.Moves) == 0 {
		return shogi.Move{}, false
	}

	return snapshot.Moves[len(snapshot.Moves)-1], true
}

// Listener receives the notifications of a controller. Notifications are
// delivered in order and never while the controller's state is locked, so
// listeners may call back into the controller.
type Listener interface {
	PositionChanged(Snapshot)
	GameOver(endgame.Verdict)
	EngineFault(role shogi.Color, err error)
}

// NopListener ignores every notification. It can be embedded to implement
// only part of Listener.
type NopListener struct{}

func (NopListener) PositionChanged(Snapshot)       {}
func (NopListener) GameOver(endgame.Verdict)       {}
func (NopListener) EngineFault(shogi.Color, error) {}

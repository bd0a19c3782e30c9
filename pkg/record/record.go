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

// Package record implements the authoritative record of a game: the moves
// played, every position reached and how often each position occurred.
package record

import (
	"errors"
	"fmt"

	"laptudirm.com/x/sente/pkg/shogi"
)

var (
	ErrRejected = errors.New("record: move rejected")
	ErrFrozen   = errors.New("record: game is over")
)

// History is a multiset of position signatures.
type History map[string]int

// Add records an occurrence of the signature and returns its new count.
func (history History) Add(signature string) int {
	history[signature]++
	return history[signature]
}

// Count returns the number of times the signature occurred.
func (history History) Count(signature string) int {
	return history[signature]
}

// Applied is the outcome of a successful Append.
type Applied struct {
	Move     shogi.Move
	Position shogi.Position

	// Occurrences is the number of times Position has now occurred in
	// the game, the current occurrence included.
	Occurrences int
}

// Record is an append-only list of moves and the positions they lead to.
// Legality is delegated to an oracle; a Record only stores what the
// oracle accepted.
type Record struct {
	oracle shogi.Oracle

	moves     []shogi.Move
	positions []shogi.Position
	history   History

	frozen bool
}

// New returns a record of a game from the standard starting position.
func New(oracle shogi.Oracle) *Record {
	r := &Record{oracle: oracle}
	r.Initialize(shogi.Start())
	return r
}

// Initialize discards everything recorded and starts over from the given
// position, which counts as its first occurrence.
func (r *Record) Initialize(start shogi.Position) {
	r.moves = nil
	r.positions = []shogi.Position{start}
	r.history = History{}
	r.history.Add(start.Signature())
	r.frozen = false
}

// Append validates the move against the current position and, if it is
// legal, records it.
func (r *Record) Append(m shogi.Move) (Applied, error) {
	if r.frozen {
		return Applied{}, ErrFrozen
	}

	next, ok := r.oracle.Apply(r.Position(), m)
	if !ok {
		return Applied{}, fmt.Errorf("%w: %s", ErrRejected, m)
	}

	r.moves = append(r.moves, m)
	r.positions = append(r.positions, next)

	return Applied{
		Move:        m,
		Position:    next,
		Occurrences: r.history.Add(next.Signature()),
	}, nil
}

// AppendUSI parses a usi move in the current position and appends it.
func (r *Record) AppendUSI(s string) (Applied, error) {
	m, ok := r.oracle.ParseMove(s, r.Position())
	if !ok {
		return Applied{}, fmt.Errorf("%w: unparsable move %q", ErrRejected, s)
	}

	return r.Append(m)
}

// Freeze makes the record read-only.
func (r *Record) Freeze() {
	r.frozen = true
}

func (r *Record) Frozen() bool {
	return r.frozen
}

// Position returns the current position.
func (r *Record) Position() shogi.Position {
	return r.positions[len(r.positions)-1]
}

// Start returns the position the game started from.
func (r *Record) Start() shogi.Position {
	return r.positions[0]
}

// Plies returns the number of moves played.
func (r *Record) Plies() int {
	return len(r.moves)
}

// Moves returns a copy of the moves played.
func (r *Record) Moves() []shogi.Move {
	return append([]shogi.Move(nil), r.moves...)
}

// Positions returns a copy of every position of the game, starting with
// the initial one.
func (r *Record) Positions() []shogi.Position {
	return append([]shogi.Position(nil), r.positions...)
}

// Occurrences returns how often the current position has occurred.
func (r *Record) Occurrences() int {
	return r.history.Count(r.Position().Signature())
}

// Count returns how often the given signature has occurred.
func (r *Record) Count(signature string) int {
	return r.history.Count(signature)
}

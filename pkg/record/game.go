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

package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"laptudirm.com/x/sente/pkg/shogi"
)

// Game is the serializable form of a record: the initial position and the
// ordered list of moves, plus the metadata of the game.
type Game struct {
	ID string `yaml:"id" json:"id"`

	Black string `yaml:"black" json:"black"`
	White string `yaml:"white" json:"white"`

	Start string   `yaml:"start" json:"start"`
	Moves []string `yaml:"moves" json:"moves"`

	// Result and Reason are empty while the game is in progress.
	Result string `yaml:"result,omitempty" json:"result,omitempty"`
	Reason string `yaml:"reason,omitempty" json:"reason,omitempty"`

	Started time.Time `yaml:"started" json:"started"`
	Updated time.Time `yaml:"updated" json:"updated"`
}

// NewID returns a fresh game id.
func NewID() string {
	return uuid.NewString()
}

// Finished reports whether the game has a result.
func (game *Game) Finished() bool {
	return game.Result != ""
}

// Export returns the serializable form of the record's moves. The
// metadata fields are left for the caller to fill in.
func (r *Record) Export() Game {
	moves := make([]string, len(r.moves))
	for i, m := range r.moves {
		moves[i] = m.String()
	}

	return Game{
		Start: r.Start().SFEN(),
		Moves: moves,
	}
}

// Load rebuilds a record by replaying a saved game. The rebuilt record is
// frozen if the game has a result.
func Load(oracle shogi.Oracle, game Game) (*Record, error) {
	start, err := shogi.ParsePosition(game.Start)
	if err != nil {
		return nil, fmt.Errorf("record: game %s: %w", game.ID, err)
	}

	r := &Record{oracle: oracle}
	r.Initialize(start)

	for i, move := range game.Moves {
		if _, err := r.AppendUSI(move); err != nil {
			return nil, fmt.Errorf("record: game %s: ply %d: %w", game.ID, i+1, err)
		}
	}

	if game.Finished() {
		r.Freeze()
	}

	return r, nil
}

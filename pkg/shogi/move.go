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

package shogi

import (
	"errors"
	"fmt"
)

// Move is either a board move, which relocates the piece on From to To
// and optionally promotes it, or a drop, which places a piece of kind
// Piece from the mover's hand onto To. Drops have no origin square.
type Move struct {
	From    Square
	To      Square
	Piece   Kind
	Promote bool
	Drop    bool
}

// NewDrop returns a drop of the given kind onto the given square.
func NewDrop(kind Kind, to Square) Move {
	return Move{From: NoSquare, To: to, Piece: kind, Drop: true}
}

// String returns the usi notation of the move: 7g7f, 8h2b+ or P*5e.
func (m Move) String() string {
	if m.Drop {
		return fmt.Sprintf("%s*%s", m.Piece, m.To)
	}

	s := m.From.String() + m.To.String()
	if m.Promote {
		s += "+"
	}

	return s
}

var ErrBadMove = errors.New("shogi: malformed move")

// ParseMove parses a usi move in the context of the given position. The
// moving piece of a board move is taken from the position; ownership and
// legality are not checked here, that is the oracle's job.
func ParseMove(s string, pos Position) (Move, error) {
	switch {
	case len(s) == 4 && s[1] == '*':
		kind := kindFromLetter(s[0])
		if kind == NoKind || kind == King || s[0] < 'A' || s[0] > 'Z' {
			return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
		}

		to, err := ParseSquare(s[2:])
		if err != nil {
			return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
		}

		return NewDrop(kind, to), nil

	case len(s) == 4, len(s) == 5 && s[4] == '+':
		from, err := ParseSquare(s[0:2])
		if err != nil {
			return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
		}

		to, err := ParseSquare(s[2:4])
		if err != nil {
			return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
		}

		piece := pos.At(from)
		if piece.Empty() {
			return Move{}, fmt.Errorf("%w: %q: no piece on %s", ErrBadMove, s, from)
		}

		return Move{
			From:    from,
			To:      to,
			Piece:   piece.Kind,
			Promote: len(s) == 5,
		}, nil

	default:
		return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
	}
}

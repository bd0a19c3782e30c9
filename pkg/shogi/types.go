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

// Color represents one of the two sides of a shogi game. Black (sente)
// always moves first from the standard starting position.
type Color uint8

const (
	Black Color = iota
	White

	ColorN = 2
)

// Other returns the opponent of the given color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "?"
	}
}

// ParseColor parses the sfen side-to-move token or a color name.
func ParseColor(s string) (Color, error) {
	switch s {
	case "b", "black", "sente":
		return Black, nil
	case "w", "white", "gote":
		return White, nil
	default:
		return Black, fmt.Errorf("shogi: invalid color %q", s)
	}
}

// Kind represents the type of a piece, independent of its owner.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Lance
	Knight
	Silver
	Gold
	Bishop
	Rook
	King

	ProPawn
	ProLance
	ProKnight
	ProSilver
	Horse
	Dragon

	KindN
)

// HandKinds lists the kinds which can be held in hand, in the canonical
// order they are written in an sfen hand field.
var HandKinds = [...]Kind{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// CanPromote reports whether the kind has a promoted form.
func (k Kind) CanPromote() bool {
	return k >= Pawn && k <= Rook && k != Gold
}

// Promote returns the promoted form of the kind.
func (k Kind) Promote() Kind {
	switch k {
	case Pawn:
		return ProPawn
	case Lance:
		return ProLance
	case Knight:
		return ProKnight
	case Silver:
		return ProSilver
	case Bishop:
		return Horse
	case Rook:
		return Dragon
	default:
		return k
	}
}

// Demote returns the unpromoted form of the kind, which is also the kind a
// captured piece takes in its captor's hand.
func (k Kind) Demote() Kind {
	switch k {
	case ProPawn:
		return Pawn
	case ProLance:
		return Lance
	case ProKnight:
		return Knight
	case ProSilver:
		return Silver
	case Horse:
		return Bishop
	case Dragon:
		return Rook
	default:
		return k
	}
}

var kindLetters = [KindN]string{
	NoKind: "",
	Pawn:   "P", Lance: "L", Knight: "N", Silver: "S",
	Gold: "G", Bishop: "B", Rook: "R", King: "K",
	ProPawn: "+P", ProLance: "+L", ProKnight: "+N", ProSilver: "+S",
	Horse: "+B", Dragon: "+R",
}

// String returns the upper-case sfen letter(s) of the kind.
func (k Kind) String() string {
	if k >= KindN {
		return "?"
	}

	return kindLetters[k]
}

func kindFromLetter(b byte) Kind {
	switch b {
	case 'P', 'p':
		return Pawn
	case 'L', 'l':
		return Lance
	case 'N', 'n':
		return Knight
	case 'S', 's':
		return Silver
	case 'G', 'g':
		return Gold
	case 'B', 'b':
		return Bishop
	case 'R', 'r':
		return Rook
	case 'K', 'k':
		return King
	default:
		return NoKind
	}
}

// Piece is a kind owned by a color. The zero value is an empty square.
type Piece struct {
	Color Color
	Kind  Kind
}

// NoPiece represents an empty square.
var NoPiece = Piece{}

// Empty reports whether the piece represents an empty square.
func (p Piece) Empty() bool {
	return p.Kind == NoKind
}

// String returns the sfen representation of the piece: upper case for
// black and lower case for white, with a leading '+' when promoted.
func (p Piece) String() string {
	s := p.Kind.String()
	if p.Color == White {
		b := []byte(s)
		for i := range b {
			if b[i] >= 'A' && b[i] <= 'Z' {
				b[i] += 'a' - 'A'
			}
		}
		s = string(b)
	}

	return s
}

// Square is an index into the 9x9 board. Index 0 is square 9a, the top
// left corner from black's point of view, and indices run along a rank
// from file 9 to file 1, the same order in which an sfen lists them.
type Square int8

const (
	NoSquare Square = -1
	SquareN         = 81
)

// NewSquare returns the square with the given file (1-9) and rank (1-9,
// where rank 1 is 'a').
func NewSquare(file, rank int) Square {
	return Square((rank-1)*9 + (9 - file))
}

// File returns the shogi file (1-9) of the square.
func (sq Square) File() int {
	return 9 - int(sq)%9
}

// Rank returns the shogi rank (1-9) of the square, 1 being rank 'a'.
func (sq Square) Rank() int {
	return int(sq)/9 + 1
}

func (sq Square) col() int { return int(sq) % 9 }
func (sq Square) row() int { return int(sq) / 9 }

// String returns the usi coordinate of the square, like 7g.
func (sq Square) String() string {
	if sq < 0 || sq >= SquareN {
		return "-"
	}

	return fmt.Sprintf("%d%c", sq.File(), 'a'+sq.Rank()-1)
}

// InZone reports whether the square lies in the promotion zone of the
// given side, the three ranks nearest to its opponent.
func (sq Square) InZone(c Color) bool {
	return inZone(sq, c)
}

var ErrInvalidSquare = errors.New("shogi: invalid square")

// ParseSquare parses a usi coordinate like 7g.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < '1' || s[0] > '9' || s[1] < 'a' || s[1] > 'i' {
		return NoSquare, ErrInvalidSquare
	}

	return NewSquare(int(s[0]-'0'), int(s[1]-'a')+1), nil
}

// Hand holds the number of pieces of each hand kind one side has captured.
type Hand [Rook + 1]int

// Count returns the total number of pieces in the hand.
func (h Hand) Count() int {
	n := 0
	for _, kind := range HandKinds {
		n += h[kind]
	}

	return n
}

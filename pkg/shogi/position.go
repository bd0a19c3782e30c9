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
	"fmt"
	"strconv"
	"strings"
)

// StartSFEN is the sfen of the standard starting position.
const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// Position is a complete snapshot of a game: the board, the pieces in each
// side's hand, the side to move and the move number. Positions are values;
// applying a move produces a new Position and never modifies the old one.
type Position struct {
	Board      [SquareN]Piece
	Hands      [ColorN]Hand
	Turn       Color
	MoveNumber int
}

// Start returns the standard starting position.
func Start() Position {
	pos, _ := ParseSFEN(StartSFEN)
	return pos
}

// At returns the piece on the given square.
func (pos *Position) At(sq Square) Piece {
	return pos.Board[sq]
}

// King returns the square of the given side's king, or NoSquare if it
// has none (as in some tsume positions).
func (pos *Position) King(c Color) Square {
	for sq := Square(0); sq < SquareN; sq++ {
		if p := pos.Board[sq]; p.Kind == King && p.Color == c {
			return sq
		}
	}

	return NoSquare
}

// ParsePosition parses either the token "startpos" or an sfen string,
// optionally prefixed with "sfen ".
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "startpos":
		return Start(), nil
	case strings.HasPrefix(s, "sfen "):
		s = strings.TrimPrefix(s, "sfen ")
	}

	return ParseSFEN(s)
}

// ParseSFEN parses the given sfen string into a Position. The move number
// field is optional and defaults to 1.
func ParseSFEN(sfen string) (Position, error) {
	var pos Position

	fields := strings.Fields(sfen)
	if len(fields) < 3 {
		return pos, fmt.Errorf("shogi: sfen %q: expected at least 3 fields", sfen)
	}

	// Board
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 9 {
		return pos, fmt.Errorf("shogi: sfen %q: expected 9 ranks", sfen)
	}

	for row, rank := range ranks {
		col := 0
		promoted := false
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			switch {
			case c >= '1' && c <= '9':
				if promoted {
					return pos, fmt.Errorf("shogi: sfen %q: dangling '+'", sfen)
				}
				col += int(c - '0')
				continue
			case c == '+':
				promoted = true
				continue
			}

			kind := kindFromLetter(c)
			if kind == NoKind || col >= 9 {
				return pos, fmt.Errorf("shogi: sfen %q: bad rank %q", sfen, rank)
			}

			if promoted {
				if !kind.CanPromote() {
					return pos, fmt.Errorf("shogi: sfen %q: %c cannot be promoted", sfen, c)
				}
				kind = kind.Promote()
				promoted = false
			}

			color := Black
			if c >= 'a' && c <= 'z' {
				color = White
			}

			pos.Board[row*9+col] = Piece{Color: color, Kind: kind}
			col++
		}

		if promoted {
			return pos, fmt.Errorf("shogi: sfen %q: dangling '+'", sfen)
		}

		if col != 9 {
			return pos, fmt.Errorf("shogi: sfen %q: rank %q does not have 9 files", sfen, rank)
		}
	}

	// Side to move
	switch fields[1] {
	case "b":
		pos.Turn = Black
	case "w":
		pos.Turn = White
	default:
		return pos, fmt.Errorf("shogi: sfen %q: bad side to move %q", sfen, fields[1])
	}

	// Hands
	if fields[2] != "-" {
		count := 0
		for i := 0; i < len(fields[2]); i++ {
			c := fields[2][i]
			if c >= '0' && c <= '9' {
				count = count*10 + int(c-'0')
				continue
			}

			kind := kindFromLetter(c)
			if kind == NoKind || kind == King {
				return pos, fmt.Errorf("shogi: sfen %q: bad hand piece %q", sfen, c)
			}

			if count == 0 {
				count = 1
			}

			color := Black
			if c >= 'a' && c <= 'z' {
				color = White
			}

			pos.Hands[color][kind] += count
			count = 0
		}
	}

	// Move number
	pos.MoveNumber = 1
	if len(fields) >= 4 {
		n, err := strconv.Atoi(fields[3])
		if err != nil || n < 1 {
			return pos, fmt.Errorf("shogi: sfen %q: bad move number %q", sfen, fields[3])
		}
		pos.MoveNumber = n
	}

	return pos, nil
}

// SFEN returns the complete sfen of the position, move number included.
func (pos Position) SFEN() string {
	return pos.Signature() + " " + strconv.Itoa(pos.MoveNumber)
}

// Signature returns the canonical encoding of the board, the side to move
// and both hands. Two positions with equal signatures are the same
// position for the purposes of repetition detection.
func (pos Position) Signature() string {
	var b strings.Builder

	for row := 0; row < 9; row++ {
		if row > 0 {
			b.WriteByte('/')
		}

		empty := 0
		for col := 0; col < 9; col++ {
			p := pos.Board[row*9+col]
			if p.Empty() {
				empty++
				continue
			}

			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteString(p.String())
		}

		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
	}

	if pos.Turn == Black {
		b.WriteString(" b ")
	} else {
		b.WriteString(" w ")
	}

	b.WriteString(pos.handString())
	return b.String()
}

func (pos *Position) handString() string {
	var b strings.Builder
	for color := Black; color <= White; color++ {
		for _, kind := range HandKinds {
			n := pos.Hands[color][kind]
			if n == 0 {
				continue
			}

			if n > 1 {
				b.WriteString(strconv.Itoa(n))
			}
			b.WriteString(Piece{Color: color, Kind: kind}.String())
		}
	}

	if b.Len() == 0 {
		return "-"
	}

	return b.String()
}

// String returns a simple text diagram of the position.
func (pos Position) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "white hand: %s\n", pos.handOf(White))
	b.WriteString("  9  8  7  6  5  4  3  2  1\n")
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			p := pos.Board[row*9+col]
			switch {
			case p.Empty():
				b.WriteString("  .")
			default:
				fmt.Fprintf(&b, "%3s", p.String())
			}
		}
		fmt.Fprintf(&b, "  %c\n", 'a'+row)
	}
	fmt.Fprintf(&b, "black hand: %s\n", pos.handOf(Black))
	fmt.Fprintf(&b, "move %d, %s to play", pos.MoveNumber, pos.Turn)

	return b.String()
}

func (pos *Position) handOf(c Color) string {
	var parts []string
	for _, kind := range HandKinds {
		if n := pos.Hands[c][kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s%d", kind, n))
		}
	}

	if len(parts) == 0 {
		return "-"
	}

	return strings.Join(parts, " ")
}

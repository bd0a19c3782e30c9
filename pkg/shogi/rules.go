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

// Oracle decides move legality. The game controller never reasons about
// the rules itself; everything it needs to know about a position is asked
// of an Oracle.
type Oracle interface {
	// Apply returns the position reached by playing the move, and false
	// if the move is not legal in the given position.
	Apply(Position, Move) (Position, bool)

	// LegalMoves returns every legal move of the side to move.
	LegalMoves(Position) []Move

	// InCheck reports whether the given side's king is attacked.
	InCheck(Position, Color) bool

	// ParseMove parses a usi move string in the context of a position.
	ParseMove(string, Position) (Move, bool)
}

// Standard implements Oracle with the ordinary rules of shogi, including
// forced promotion, nifu and the pawn-drop mate (uchifuzume) rule.
type Standard struct{}

var _ Oracle = Standard{}

func (Standard) Apply(pos Position, m Move) (Position, bool) {
	for _, legal := range legalMoves(&pos, true) {
		if legal == m {
			return makeMove(pos, m), true
		}
	}

	return pos, false
}

func (Standard) LegalMoves(pos Position) []Move {
	return legalMoves(&pos, true)
}

func (Standard) InCheck(pos Position, c Color) bool {
	return inCheck(&pos, c)
}

func (Standard) ParseMove(s string, pos Position) (Move, bool) {
	m, err := ParseMove(s, pos)
	return m, err == nil
}

type delta struct{ dc, dr int }

// Deltas are written from black's point of view, where forward is -1.
var (
	goldSteps   = []delta{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {0, 1}}
	silverSteps = []delta{{-1, -1}, {0, -1}, {1, -1}, {-1, 1}, {1, 1}}
	knightSteps = []delta{{-1, -2}, {1, -2}}
	orthogonal  = []delta{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	diagonal    = []delta{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	kingSteps   = append(append([]delta{}, orthogonal...), diagonal...)
)

func movement(k Kind) (steps, slides []delta) {
	switch k {
	case Pawn:
		return []delta{{0, -1}}, nil
	case Lance:
		return nil, []delta{{0, -1}}
	case Knight:
		return knightSteps, nil
	case Silver:
		return silverSteps, nil
	case Gold, ProPawn, ProLance, ProKnight, ProSilver:
		return goldSteps, nil
	case Bishop:
		return nil, diagonal
	case Rook:
		return nil, orthogonal
	case King:
		return kingSteps, nil
	case Horse:
		return orthogonal, diagonal
	case Dragon:
		return diagonal, orthogonal
	default:
		return nil, nil
	}
}

func onBoard(col, row int) bool {
	return col >= 0 && col < 9 && row >= 0 && row < 9
}

// eachTarget calls fn for every square the piece on from attacks and may
// move to, which excludes squares occupied by its own side.
func (pos *Position) eachTarget(from Square, fn func(Square)) {
	p := pos.Board[from]

	sign := 1
	if p.Color == White {
		sign = -1
	}

	col, row := from.col(), from.row()
	steps, slides := movement(p.Kind)

	for _, d := range steps {
		c, r := col+d.dc, row+d.dr*sign
		if !onBoard(c, r) {
			continue
		}

		to := Square(r*9 + c)
		if q := pos.Board[to]; q.Empty() || q.Color != p.Color {
			fn(to)
		}
	}

	for _, d := range slides {
		for c, r := col+d.dc, row+d.dr*sign; onBoard(c, r); c, r = c+d.dc, r+d.dr*sign {
			to := Square(r*9 + c)
			q := pos.Board[to]
			if q.Empty() {
				fn(to)
				continue
			}

			if q.Color != p.Color {
				fn(to)
			}
			break
		}
	}
}

// relativeRow returns the row of the square as seen by the given side,
// 0 being the far rank.
func relativeRow(sq Square, c Color) int {
	if c == Black {
		return sq.row()
	}

	return 8 - sq.row()
}

func inZone(sq Square, c Color) bool {
	return relativeRow(sq, c) <= 2
}

// deadEnd reports whether an unpromoted piece of the kind would have no
// moves left on the square.
func deadEnd(k Kind, sq Square, c Color) bool {
	switch k {
	case Pawn, Lance:
		return relativeRow(sq, c) == 0
	case Knight:
		return relativeRow(sq, c) <= 1
	default:
		return false
	}
}

func attacked(pos *Position, sq Square, by Color) bool {
	for from := Square(0); from < SquareN; from++ {
		p := pos.Board[from]
		if p.Empty() || p.Color != by {
			continue
		}

		hit := false
		pos.eachTarget(from, func(to Square) {
			if to == sq {
				hit = true
			}
		})

		if hit {
			return true
		}
	}

	return false
}

func inCheck(pos *Position, c Color) bool {
	king := pos.King(c)
	if king == NoSquare {
		return false
	}

	return attacked(pos, king, c.Other())
}

func pawnOnFile(pos *Position, c Color, col int) bool {
	for row := 0; row < 9; row++ {
		if p := pos.Board[row*9+col]; p.Kind == Pawn && p.Color == c {
			return true
		}
	}

	return false
}

func pseudoMoves(pos *Position) []Move {
	us := pos.Turn
	moves := make([]Move, 0, 128)

	for from := Square(0); from < SquareN; from++ {
		p := pos.Board[from]
		if p.Empty() || p.Color != us {
			continue
		}

		pos.eachTarget(from, func(to Square) {
			if p.Kind.CanPromote() && (inZone(from, us) || inZone(to, us)) {
				moves = append(moves, Move{From: from, To: to, Piece: p.Kind, Promote: true})
			}

			if !deadEnd(p.Kind, to, us) {
				moves = append(moves, Move{From: from, To: to, Piece: p.Kind})
			}
		})
	}

	for _, kind := range HandKinds {
		if pos.Hands[us][kind] == 0 {
			continue
		}

		for to := Square(0); to < SquareN; to++ {
			if !pos.Board[to].Empty() || deadEnd(kind, to, us) {
				continue
			}

			if kind == Pawn && pawnOnFile(pos, us, to.col()) {
				continue
			}

			moves = append(moves, NewDrop(kind, to))
		}
	}

	return moves
}

// legalMoves filters the pseudo-legal moves of the side to move. The
// pawn-drop mate check is skipped when evaluating the replies to a pawn
// drop, which keeps the recursion one level deep.
func legalMoves(pos *Position, dropMate bool) []Move {
	us, them := pos.Turn, pos.Turn.Other()
	pseudo := pseudoMoves(pos)
	moves := pseudo[:0]

	for _, m := range pseudo {
		next := makeMove(*pos, m)
		if inCheck(&next, us) {
			continue
		}

		if dropMate && m.Drop && m.Piece == Pawn && inCheck(&next, them) && !hasLegalMove(&next) {
			continue
		}

		moves = append(moves, m)
	}

	return moves
}

func hasLegalMove(pos *Position) bool {
	us := pos.Turn
	for _, m := range pseudoMoves(pos) {
		next := makeMove(*pos, m)
		if !inCheck(&next, us) {
			return true
		}
	}

	return false
}

// makeMove plays the move without checking it.
func makeMove(pos Position, m Move) Position {
	us := pos.Turn

	if m.Drop {
		pos.Hands[us][m.Piece]--
		pos.Board[m.To] = Piece{Color: us, Kind: m.Piece}
	} else {
		piece := pos.Board[m.From]
		// A king can only be captured in positions which are already
		// illegal; it never goes to hand.
		if captured := pos.Board[m.To]; !captured.Empty() && captured.Kind != King {
			pos.Hands[us][captured.Kind.Demote()]++
		}

		if m.Promote {
			piece.Kind = piece.Kind.Promote()
		}

		pos.Board[m.From] = NoPiece
		pos.Board[m.To] = piece
	}

	pos.Turn = us.Other()
	pos.MoveNumber++
	return pos
}

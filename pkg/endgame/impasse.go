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

package endgame

import "laptudirm.com/x/sente/pkg/shogi"

// ImpasseRules configures the entering-king declaration rule.
type ImpasseRules struct {
	// AutoDeclare ends the game as soon as the side to move could
	// declare, without waiting for a declaration.
	AutoDeclare bool `yaml:"auto-declare" env:"AUTO_DECLARE"`

	// Points needed by each side for a winning declaration.
	BlackPoints int `yaml:"black-points" env:"BLACK_POINTS"`
	WhitePoints int `yaml:"white-points" env:"WHITE_POINTS"`

	// MinPieces is the number of pieces besides the king the declaring
	// side must have in the enemy camp.
	MinPieces int `yaml:"min-pieces" env:"MIN_PIECES"`
}

// DefaultImpasse is the 27-point declaration rule.
var DefaultImpasse = ImpasseRules{
	BlackPoints: 28,
	WhitePoints: 27,
	MinPieces:   10,
}

// Value returns the declaration points of a piece kind.
func Value(k shogi.Kind) int {
	switch k.Demote() {
	case shogi.King:
		return 0
	case shogi.Rook, shogi.Bishop:
		return 5
	default:
		return 1
	}
}

// Points counts the declaration points of a side: its pieces in the
// enemy camp, king excluded, plus its pieces in hand. It also returns how
// many pieces were counted in the camp.
func Points(pos shogi.Position, c shogi.Color) (points, inCamp int) {
	for sq := shogi.Square(0); sq < shogi.SquareN; sq++ {
		p := pos.At(sq)
		if p.Empty() || p.Color != c || p.Kind == shogi.King || !sq.InZone(c) {
			continue
		}

		points += Value(p.Kind)
		inCamp++
	}

	for _, kind := range shogi.HandKinds {
		points += pos.Hands[c][kind] * Value(kind)
	}

	return points, inCamp
}

// Declarable reports whether the side meets every condition of a winning
// declaration: its king is in the enemy camp and not in check, enough of
// its other pieces are in the camp, and it has enough points.
func (rules ImpasseRules) Declarable(oracle shogi.Oracle, pos shogi.Position, c shogi.Color) bool {
	king := pos.King(c)
	if king == shogi.NoSquare || !king.InZone(c) {
		return false
	}

	if oracle.InCheck(pos, c) {
		return false
	}

	points, inCamp := Points(pos, c)
	if inCamp < rules.MinPieces {
		return false
	}

	need := rules.BlackPoints
	if c == shogi.White {
		need = rules.WhitePoints
	}

	return points >= need
}

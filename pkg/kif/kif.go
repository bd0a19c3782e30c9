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

// Package kif writes game records in the KIF format read by most Japanese
// shogi software.
package kif

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"laptudirm.com/x/sente/pkg/endgame"
	"laptudirm.com/x/sente/pkg/record"
	"laptudirm.com/x/sente/pkg/shogi"
)

const timeLayout = "2006/01/02 15:04:05"

var (
	fileDigits = [...]string{"", "１", "２", "３", "４", "５", "６", "７", "８", "９"}
	rankDigits = [...]string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

	moveNames = [shogi.KindN]string{
		shogi.Pawn: "歩", shogi.Lance: "香", shogi.Knight: "桂", shogi.Silver: "銀",
		shogi.Gold: "金", shogi.Bishop: "角", shogi.Rook: "飛", shogi.King: "玉",
		shogi.ProPawn: "と", shogi.ProLance: "成香", shogi.ProKnight: "成桂",
		shogi.ProSilver: "成銀", shogi.Horse: "馬", shogi.Dragon: "龍",
	}

	// Board diagrams need a single character per piece.
	boardNames = [shogi.KindN]string{
		shogi.Pawn: "歩", shogi.Lance: "香", shogi.Knight: "桂", shogi.Silver: "銀",
		shogi.Gold: "金", shogi.Bishop: "角", shogi.Rook: "飛", shogi.King: "玉",
		shogi.ProPawn: "と", shogi.ProLance: "杏", shogi.ProKnight: "圭",
		shogi.ProSilver: "全", shogi.Horse: "馬", shogi.Dragon: "龍",
	}

	colorNames = [shogi.ColorN]string{shogi.Black: "先手", shogi.White: "後手"}
)

// terminal maps the reason a game ended to the KIF special move which
// closes the record.
func terminal(reason endgame.Reason) string {
	switch reason {
	case endgame.Checkmate, endgame.NoLegalMoves:
		return "詰み"
	case endgame.Repetition:
		return "千日手"
	case endgame.Impasse:
		return "入玉勝ち"
	case endgame.Resignation:
		return "投了"
	case endgame.IllegalMove, endgame.EngineFault:
		return "反則負け"
	case endgame.Timeout:
		return "切れ負け"
	case endgame.MaxMoves:
		return "持将棋"
	default:
		return "中断"
	}
}

// Write writes the game to w as a Shift_JIS encoded KIF file. Characters
// which Shift_JIS cannot represent, as in some player names, are replaced.
func Write(w io.Writer, oracle shogi.Oracle, game record.Game) error {
	text, err := Format(oracle, game)
	if err != nil {
		return err
	}

	encoder := encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
	writer := transform.NewWriter(w, encoder)
	if _, err := io.WriteString(writer, text); err != nil {
		return fmt.Errorf("kif: %w", err)
	}

	return writer.Close()
}

// Format returns the KIF text of the game, before encoding.
func Format(oracle shogi.Oracle, game record.Game) (string, error) {
	r, err := record.Load(oracle, game)
	if err != nil {
		return "", fmt.Errorf("kif: %w", err)
	}

	var b strings.Builder

	b.WriteString("#KIF version=2.0 encoding=Shift_JIS\n")
	if !game.Started.IsZero() {
		fmt.Fprintf(&b, "開始日時：%s\n", game.Started.Format(timeLayout))
	}
	if game.Finished() && !game.Updated.IsZero() {
		fmt.Fprintf(&b, "終了日時：%s\n", game.Updated.Format(timeLayout))
	}

	start := r.Start()
	if start.Signature() == shogi.Start().Signature() {
		b.WriteString("手合割：平手\n")
	} else {
		writeBoard(&b, start)
	}

	fmt.Fprintf(&b, "先手：%s\n", game.Black)
	fmt.Fprintf(&b, "後手：%s\n", game.White)
	b.WriteString("手数----指手---------消費時間--\n")

	positions := r.Positions()
	moves := r.Moves()
	for i, m := range moves {
		same := i > 0 && !moves[i].Drop && moves[i-1].To == m.To
		fmt.Fprintf(&b, "%4d %s\n", i+1, Move(positions[i], m, same))
	}

	if game.Finished() {
		reason, err := endgame.ParseReason(game.Reason)
		if err != nil {
			reason = endgame.Aborted
		}

		fmt.Fprintf(&b, "%4d %s\n", len(moves)+1, terminal(reason))
		b.WriteString(summary(len(moves), game.Result, reason))
	}

	return b.String(), nil
}

// Move returns the KIF notation of a move played from pos. same marks a
// move to the destination of the previous move, which is written 同.
func Move(pos shogi.Position, m shogi.Move, same bool) string {
	var b strings.Builder

	if same {
		b.WriteString("同　")
	} else {
		b.WriteString(fileDigits[m.To.File()])
		b.WriteString(rankDigits[m.To.Rank()])
	}

	b.WriteString(moveNames[m.Piece])

	switch {
	case m.Drop:
		b.WriteString("打")
	default:
		if m.Promote {
			b.WriteString("成")
		} else if m.Piece.CanPromote() && (m.From.InZone(pos.Turn) || m.To.InZone(pos.Turn)) {
			b.WriteString("不成")
		}

		fmt.Fprintf(&b, "(%d%d)", m.From.File(), m.From.Rank())
	}

	return b.String()
}

func summary(plies int, result string, reason endgame.Reason) string {
	parsed, err := record.ParseResult(result)
	switch {
	case err != nil:
		return fmt.Sprintf("まで%d手で中断\n", plies)
	case parsed == record.Draw:
		if reason == endgame.Repetition {
			return fmt.Sprintf("まで%d手で千日手\n", plies)
		}
		return fmt.Sprintf("まで%d手で持将棋\n", plies)
	default:
		winner := shogi.Black
		if parsed == record.Loss {
			winner = shogi.White
		}

		if reason == endgame.IllegalMove || reason == endgame.EngineFault {
			return fmt.Sprintf("まで%d手で%sの反則負け\n", plies, colorNames[winner.Other()])
		}
		return fmt.Sprintf("まで%d手で%sの勝ち\n", plies, colorNames[winner])
	}
}

// writeBoard writes the position as a KIF board diagram.
func writeBoard(b *strings.Builder, pos shogi.Position) {
	fmt.Fprintf(b, "後手の持駒：%s\n", hand(pos.Hands[shogi.White]))
	b.WriteString("  ９ ８ ７ ６ ５ ４ ３ ２ １\n")
	b.WriteString("+---------------------------+\n")

	for rank := 1; rank <= 9; rank++ {
		b.WriteString("|")
		for file := 9; file >= 1; file-- {
			p := pos.At(shogi.NewSquare(file, rank))
			switch {
			case p.Empty():
				b.WriteString(" ・")
			case p.Color == shogi.White:
				b.WriteString("v" + boardNames[p.Kind])
			default:
				b.WriteString(" " + boardNames[p.Kind])
			}
		}
		fmt.Fprintf(b, "|%s\n", rankDigits[rank])
	}

	b.WriteString("+---------------------------+\n")
	fmt.Fprintf(b, "先手の持駒：%s\n", hand(pos.Hands[shogi.Black]))

	if pos.Turn == shogi.White {
		b.WriteString("後手番\n")
	}
}

func hand(h shogi.Hand) string {
	var parts []string
	for _, kind := range shogi.HandKinds {
		n := h[kind]
		switch {
		case n == 0:
			continue
		case n == 1:
			parts = append(parts, moveNames[kind])
		default:
			parts = append(parts, moveNames[kind]+count(n))
		}
	}

	if len(parts) == 0 {
		return "なし"
	}

	return strings.Join(parts, "　") + "　"
}

func count(n int) string {
	switch {
	case n < 10:
		return rankDigits[n]
	case n == 10:
		return "十"
	default:
		return "十" + rankDigits[n-10]
	}
}

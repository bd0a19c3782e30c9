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

package kif

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/japanese"

	"laptudirm.com/x/sente/pkg/record"
	"laptudirm.com/x/sente/pkg/shogi"
)

func TestMoveNotation(t *testing.T) {
	tests := []struct {
		sfen string
		usi  string
		same bool
		want string
	}{
		{shogi.StartSFEN, "7g7f", false, "７六歩(77)"},
		{shogi.StartSFEN, "2h5h", false, "５八飛(28)"},
		{"lnsgkgsnl/1r5b1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL b - 3", "8h2b+", false, "２二角成(88)"},
		{"lnsgkgsnl/1r5b1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL b - 3", "8h2b", false, "２二角不成(88)"},
		{"lnsgkg1nl/1r5s1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL b B 5", "B*5e", false, "５五角打"},
		{"lnsgkgsnl/1r5+B1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL w B 4", "3a2b", true, "同　銀(31)"},
		{"4k4/9/9/9/9/9/9/9/4K3+R b - 1", "1i1a", false, "１一龍(19)"},
	}

	for _, test := range tests {
		pos, err := shogi.ParseSFEN(test.sfen)
		if err != nil {
			t.Fatalf("ParseSFEN(%q): %v", test.sfen, err)
		}

		m, err := shogi.ParseMove(test.usi, pos)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", test.usi, err)
		}

		if got := Move(pos, m, test.same); got != test.want {
			t.Errorf("%s: got %q, want %q", test.usi, got, test.want)
		}
	}
}

func TestFormat(t *testing.T) {
	game := record.Game{
		ID:      "g1",
		Black:   "sente",
		White:   "gote",
		Start:   shogi.StartSFEN,
		Moves:   []string{"7g7f", "3c3d", "8h2b+", "3a2b"},
		Result:  "0-1",
		Reason:  "resignation",
		Started: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Updated: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}

	text, err := Format(shogi.Standard{}, game)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	for _, want := range []string{
		"開始日時：2024/05/01 12:00:00\n",
		"終了日時：2024/05/01 12:30:00\n",
		"手合割：平手\n",
		"先手：sente\n",
		"後手：gote\n",
		"   1 ７六歩(77)\n",
		"   2 ３四歩(33)\n",
		"   3 ２二角成(88)\n",
		"   4 同　銀(31)\n",
		"   5 投了\n",
		"まで4手で後手の勝ち\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}

	game.Moves = append(game.Moves, "9z9y")
	if _, err := Format(shogi.Standard{}, game); err == nil {
		t.Error("Format accepted an unplayable game")
	}
}

func TestFormatBoard(t *testing.T) {
	game := record.Game{
		Black: "a",
		White: "b",
		Start: "4k4/9/4P4/9/9/9/9/9/4K4 w G2Pr 1",
		Moves: []string{"5a4a"},
	}

	text, err := Format(shogi.Standard{}, game)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	for _, want := range []string{
		"後手の持駒：飛　\n",
		"| ・ ・ ・ ・v玉 ・ ・ ・ ・|一\n",
		"| ・ ・ ・ ・ 歩 ・ ・ ・ ・|三\n",
		"先手の持駒：金　歩二　\n",
		"後手番\n",
		"   1 ４一玉(51)\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}

	if strings.Contains(text, "手合割") || strings.Contains(text, "まで") {
		t.Errorf("unexpected handicap or summary line in:\n%s", text)
	}
}

func TestWriteShiftJIS(t *testing.T) {
	game := record.Game{
		Black:  "sente",
		White:  "gote",
		Start:  shogi.StartSFEN,
		Moves:  []string{"7g7f"},
		Result: "*",
		Reason: "aborted",
	}

	var buf bytes.Buffer
	if err := Write(&buf, shogi.Standard{}, game); err != nil {
		t.Fatalf("Write: %v", err)
	}

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want, _ := Format(shogi.Standard{}, game)
	if string(decoded) != want {
		t.Errorf("round trip through Shift_JIS:\n got  %q\n want %q", decoded, want)
	}

	if !strings.Contains(want, "   2 中断\n") || !strings.Contains(want, "まで1手で中断\n") {
		t.Errorf("aborted game not closed with 中断:\n%s", want)
	}

	// ７ is 0x8256 in Shift_JIS
	if !bytes.Contains(buf.Bytes(), []byte{0x82, 0x56}) {
		t.Error("output is not Shift_JIS encoded")
	}
}

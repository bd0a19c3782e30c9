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

// Package stats summarizes the results of a series of games between two
// players.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"laptudirm.com/x/sente/pkg/record"
)

// Tally accumulates the results of a series from player 1's point of view.
// Consecutive games form pairs, the second game of each pair being played
// with the colors reversed.
type Tally struct {
	Wins, Draws, Losses int

	// Pairs counts finished pairs by PairResult, from LossLoss to WinWin.
	Pairs [5]int

	// Reasons counts how the games ended.
	Reasons map[string]int

	half    record.Result
	pending bool
}

// Add records the result of the next game of the series. reason is how
// the game ended and may be empty.
func (tally *Tally) Add(result record.Result, reason string) {
	switch result {
	case record.Win:
		tally.Wins++
	case record.Loss:
		tally.Losses++
	default:
		tally.Draws++
	}

	if reason != "" {
		if tally.Reasons == nil {
			tally.Reasons = make(map[string]int)
		}
		tally.Reasons[reason]++
	}

	if !tally.pending {
		tally.half, tally.pending = result, true
		return
	}

	pair := record.GetPairResult(tally.half, result)
	tally.Pairs[int(pair-record.LossLoss)]++
	tally.pending = false
}

// Games returns the number of games added.
func (tally *Tally) Games() int {
	return tally.Wins + tally.Draws + tally.Losses
}

// Score returns the fraction of the points player 1 scored.
func (tally *Tally) Score() float64 {
	if tally.Games() == 0 {
		return 0
	}

	return (float64(tally.Wins) + float64(tally.Draws)/2) / float64(tally.Games())
}

// Elo returns the elo difference and its error margin. Pair statistics are
// used once any pair has finished.
func (tally *Tally) Elo() (elo float64, margin float64) {
	var lo, hi float64

	pairs := tally.Pairs
	if pairs != [5]int{} {
		lo, elo, hi = PentaElo(pairs[0], pairs[1], pairs[2], pairs[3], pairs[4])
	} else {
		lo, elo, hi = Elo(tally.Wins, tally.Draws, tally.Losses)
	}

	return elo, (hi - lo) / 2
}

// Summary returns a human readable report of the tally.
func (tally *Tally) Summary(player1, player2 string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Score of %s vs %s: %d - %d - %d [%.3f] %d\n",
		player1, player2, tally.Wins, tally.Losses, tally.Draws, tally.Score(), tally.Games())

	elo, margin := tally.Elo()
	fmt.Fprintf(&b, "Elo difference: %.1f +/- %.1f\n", elo, margin)

	if tally.Pairs != [5]int{} {
		fmt.Fprintf(&b, "Ptnml(0-2): %d, %d, %d, %d, %d\n",
			tally.Pairs[0], tally.Pairs[1], tally.Pairs[2], tally.Pairs[3], tally.Pairs[4])
	}

	if len(tally.Reasons) > 0 {
		reasons := make([]string, 0, len(tally.Reasons))
		for reason := range tally.Reasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)

		for _, reason := range reasons {
			fmt.Fprintf(&b, "  %-14s %d\n", reason+":", tally.Reasons[reason])
		}
	}

	return b.String()
}

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

package stats

import "math"

// A match tally is reduced to a mean score in [0, 1] and the standard error
// of that mean. The score maps to an Elo difference through the logistic
// curve, and so do the ends of its 95% confidence interval.

// gameScores are the scores of a loss, a draw and a win.
var gameScores = []float64{0, 0.5, 1}

// pairScores are the scores of the five outcomes of a pair of games played
// with colors swapped: loss-loss, loss-draw, win-loss or draw-draw,
// win-draw and win-win.
var pairScores = []float64{0, 0.25, 0.5, 0.75, 1}

// Elo returns the Elo difference implied by ws wins, ds draws and ls losses,
// bracketed by its 95% confidence interval.
func Elo(ws, ds, ls int) (muMin, mu, muMax float64) {
	return interval(gameScores, []int{ls, ds, ws})
}

// PentaElo is Elo over game pairs. Each pair is counted once under its
// combined outcome, so the first-move advantage cancels out and the
// interval is tighter than the one of the same games counted singly.
func PentaElo(lls, lds, wldds, wds, wws int) (muMin, mu, muMax float64) {
	return interval(pairScores, []int{lls, lds, wldds, wds, wws})
}

// interval computes the Elo of the distribution which gives scores[i] with
// frequency counts[i]. An empty tally has no Elo.
func interval(scores []float64, counts []int) (lo, elo, hi float64) {
	var n int
	for _, count := range counts {
		n += count
	}

	if n == 0 {
		return 0, 0, 0
	}

	var mean float64
	for i, count := range counts {
		mean += scores[i] * float64(count)
	}
	mean /= float64(n)

	var variance float64
	for i, count := range counts {
		variance += float64(count) * math.Pow(scores[i]-mean, 2)
	}
	variance /= float64(n)

	stderr := math.Sqrt(variance / float64(n))
	return scoreElo(mean + phiInv(0.025)*stderr), scoreElo(mean), scoreElo(mean + phiInv(0.975)*stderr)
}

// scoreElo converts a mean score to Elo. A perfect or null score has no
// finite Elo and is reported as zero.
func scoreElo(score float64) float64 {
	if score <= 0 || score >= 1 {
		return 0
	}

	return -400 * math.Log10(1/score-1)
}

// phiInv is the quantile function of the standard normal distribution.
func phiInv(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

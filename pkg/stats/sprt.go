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

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Test is a sequential probability ratio test of the hypothesis that
// player 1 is Elo1 stronger than player 2 (H1) against the hypothesis
// that it is only Elo0 stronger (H0). Alpha and Beta are the accepted
// false positive and false negative rates.
type Test struct {
	Elo0, Elo1  float64
	Alpha, Beta float64
}

// Decision is the state of a Test after some games.
type Decision int

const (
	Continue Decision = iota
	AcceptH0
	AcceptH1
)

func (decision Decision) String() string {
	switch decision {
	case AcceptH0:
		return "H0 accepted"
	case AcceptH1:
		return "H1 accepted"
	default:
		return "continue"
	}
}

// ParseTest parses elo bounds of the form elo0,elo1. The error rates are
// set to 0.05.
func ParseTest(s string) (Test, error) {
	lo, hi, found := strings.Cut(s, ",")
	if !found {
		return Test{}, fmt.Errorf("sprt bounds %q: expected elo0,elo1", s)
	}

	elo0, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return Test{}, fmt.Errorf("sprt bounds %q: %w", s, err)
	}

	elo1, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return Test{}, fmt.Errorf("sprt bounds %q: %w", s, err)
	}

	if elo0 >= elo1 {
		return Test{}, fmt.Errorf("sprt bounds %q: elo0 must be less than elo1", s)
	}

	return Test{Elo0: elo0, Elo1: elo1, Alpha: 0.05, Beta: 0.05}, nil
}

// Bounds returns the log-likelihood ratios below which H0 and above which
// H1 is accepted.
func (test Test) Bounds() (lower float64, upper float64) {
	lower = math.Log(test.Beta / (1 - test.Alpha))
	upper = math.Log((1 - test.Beta) / test.Alpha)
	return
}

// LLR returns the log-likelihood ratio of the tally. The pentanomial model
// is used once any pair has finished.
func (test Test) LLR(tally *Tally) float64 {
	if p := tally.Pairs; p != [5]int{} {
		return pentaLLR(p[0], p[1], p[2], p[3], p[4], test.Elo0, test.Elo1)
	}

	return llr(tally.Wins, tally.Draws, tally.Losses, test.Elo0, test.Elo1)
}

// Decide returns the decision of the test on the tally and the ratio it
// was based on.
func (test Test) Decide(tally *Tally) (Decision, float64) {
	ratio := test.LLR(tally)
	lower, upper := test.Bounds()

	switch {
	case ratio <= lower:
		return AcceptH0, ratio
	case ratio >= upper:
		return AcceptH1, ratio
	default:
		return Continue, ratio
	}
}

func llr(ws, ds, ls int, elo0, elo1 float64) float64 {
	w := float64(ws) + 0.5
	d := float64(ds) + 0.5
	l := float64(ls) + 0.5

	N := w + d + l // total number of games
	_, dlo := wdlToElo(w/N, d/N, l/N)

	w0, d0, l0 := eloToWDL(elo0, dlo) // elo0 WDL probabilities
	w1, d1, l1 := eloToWDL(elo1, dlo) // elo1 WDL probabilities

	return w*math.Log(w1/w0) +
		d*math.Log(d1/d0) +
		l*math.Log(l1/l0)
}

func pentaLLR(lls, lds, wldds, wds, wws int, elo0, elo1 float64) float64 {
	N := float64(lls+lds+wldds+wds+wws) + 2.5 // total number of pairs

	ll := (float64(lls) + 0.5) / N     // measured loss-loss probability
	ld := (float64(lds) + 0.5) / N     // measured loss-draw probability
	wldd := (float64(wldds) + 0.5) / N // measured win-loss/draw-draw probability
	wd := (float64(wds) + 0.5) / N     // measured win-draw probability
	ww := (float64(wws) + 0.5) / N     // measured win-win probability

	variance := func(mu float64) float64 {
		return ww*math.Pow(1-mu, 2) +
			wd*math.Pow(0.75-mu, 2) +
			wldd*math.Pow(0.50-mu, 2) +
			ld*math.Pow(0.25-mu, 2) +
			ll*math.Pow(0.00-mu, 2)
	}

	mu := ww + 0.75*wd + 0.5*wldd + 0.25*ld
	r := math.Sqrt(variance(mu))

	r0 := variance(nEloToScore(elo0, r))
	r1 := variance(nEloToScore(elo1, r))
	if r0 == 0 || r1 == 0 {
		return 0
	}

	// simplified approximation of the exact ratio, see
	// http://hardy.uhasselt.be/Fishtest/support_MLE_multinomial.pdf
	return 0.5 * N * math.Log(r0/r1)
}

// eloToWDL converts the bayesian elo to its wdl probabilities.
func eloToWDL(elo, dlo float64) (w float64, d float64, l float64) {
	w = 1 / (1 + math.Pow(10, (-elo+dlo)/400))
	l = 1 / (1 + math.Pow(10, (+elo+dlo)/400))
	d = 1 - w - l
	return w, d, l
}

// wdlToElo converts the wdl probabilities to its bayesian elo.
func wdlToElo(w, d, l float64) (elo float64, dlo float64) {
	elo = 200 * math.Log10((w/l)*((1-l)/(1-w)))
	dlo = 200 * math.Log10(((1-l)/l)*((1-w)/w))
	return elo, dlo
}

func nEloToScore(nelo, r float64) float64 {
	return nelo*math.Sqrt2*r/(800/math.Ln10) + 0.5
}

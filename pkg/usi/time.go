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

package usi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"laptudirm.com/x/sente/pkg/shogi"
)

// Budget is the time information sent along with a go command.
type Budget struct {
	Time    [shogi.ColorN]time.Duration
	Inc     [shogi.ColorN]time.Duration
	Byoyomi time.Duration
}

// Limit returns the longest the given side may think on its move.
func (budget Budget) Limit(c shogi.Color) time.Duration {
	return budget.Time[c] + budget.Inc[c] + budget.Byoyomi
}

// TimeControl describes the clock both sides start a game with.
type TimeControl struct {
	Base    time.Duration
	Byoyomi time.Duration
	Inc     time.Duration
}

// Budget returns the budget for a search made with full clocks.
func (tc TimeControl) Budget() Budget {
	return Budget{
		Time:    [shogi.ColorN]time.Duration{tc.Base, tc.Base},
		Inc:     [shogi.ColorN]time.Duration{tc.Inc, tc.Inc},
		Byoyomi: tc.Byoyomi,
	}
}

func (tc TimeControl) String() string {
	if tc.Inc > 0 {
		return fmt.Sprintf("%g+%gi", tc.Base.Seconds(), tc.Inc.Seconds())
	}

	return fmt.Sprintf("%g+%g", tc.Base.Seconds(), tc.Byoyomi.Seconds())
}

var ErrBadTimeControl = errors.New("parse tc: expected base+byoyomi or base+inci")

// ParseTime parses a time control of the form base+byoyomi, or base+inci
// for a fischer increment, with all values in seconds.
func ParseTime(time_str string) (TimeControl, error) {
	var tc TimeControl

	base_str, extra_str, found := strings.Cut(time_str, "+")
	if !found {
		return TimeControl{}, ErrBadTimeControl
	}

	increment := strings.HasSuffix(extra_str, "i")
	extra_str = strings.TrimSuffix(extra_str, "i")

	secs, err := strconv.ParseFloat(base_str, 64)
	if err != nil || secs < 0 {
		return TimeControl{}, fmt.Errorf("%w: %q", ErrBadTimeControl, time_str)
	}

	extra, err := strconv.ParseFloat(extra_str, 64)
	if err != nil || extra < 0 {
		return TimeControl{}, fmt.Errorf("%w: %q", ErrBadTimeControl, time_str)
	}

	tc.Base = time.Millisecond * time.Duration(secs*1000)
	if increment {
		tc.Inc = time.Millisecond * time.Duration(extra*1000)
	} else {
		tc.Byoyomi = time.Millisecond * time.Duration(extra*1000)
	}

	return tc, nil
}

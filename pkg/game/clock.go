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

package game

import (
	"time"

	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

// Clock keeps the remaining main time of both sides. Once a side's main
// time is used up it plays on byoyomi. Running out of time is enforced on
// engines through their search budget only.
type Clock struct {
	tc        usi.TimeControl
	remaining [shogi.ColorN]time.Duration

	running bool
	side    shogi.Color
	started time.Time
}

// Reset sets both clocks to the time control's main time.
func (clock *Clock) Reset(tc usi.TimeControl) {
	*clock = Clock{tc: tc}
	clock.remaining = [shogi.ColorN]time.Duration{tc.Base, tc.Base}
}

// Start starts the clock of the given side.
func (clock *Clock) Start(side shogi.Color) {
	clock.running = true
	clock.side = side
	clock.started = time.Now()
}

// Stop stops the running clock, charges the elapsed time to its side and
// adds the increment.
func (clock *Clock) Stop() {
	if !clock.running {
		return
	}

	clock.running = false
	left := clock.remaining[clock.side] - time.Since(clock.started)
	if left < 0 {
		left = 0
	}

	clock.remaining[clock.side] = left + clock.tc.Inc
}

// Remaining returns the main time the side has left.
func (clock *Clock) Remaining(side shogi.Color) time.Duration {
	return clock.remaining[side]
}

// Budget returns the time information for the next search.
func (clock *Clock) Budget() usi.Budget {
	return usi.Budget{
		Time:    clock.remaining,
		Inc:     [shogi.ColorN]time.Duration{clock.tc.Inc, clock.tc.Inc},
		Byoyomi: clock.tc.Byoyomi,
	}
}

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

package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

// Searcher is an in-process engine. It returns a usi move, or "resign" or
// "win", and must return promptly once ctx is done.
type Searcher func(ctx context.Context, pos shogi.Position, budget usi.Budget) (string, error)

// Local is a session with an in-process Searcher. Every search runs in its
// own goroutine and its result is delivered through Notify.
type Local struct {
	name     string
	role     shogi.Color
	notify   Notify
	searcher Searcher
	grace    time.Duration

	mu         sync.Mutex
	state      State
	generation uint64
	position   shogi.Position
	cancel     context.CancelFunc
	outcome    *usi.Outcome
}

var _ Engine = (*Local)(nil)

// NewLocal returns a ready session with the given searcher.
func NewLocal(name string, role shogi.Color, searcher Searcher, notify Notify) *Local {
	return &Local{
		name:     name,
		role:     role,
		notify:   notify,
		searcher: searcher,
		grace:    DefaultGrace,
		state:    Ready,
		position: shogi.Start(),
	}
}

// NewLocalFactory returns a Factory creating Local sessions.
func NewLocalFactory(name string, searcher Searcher) Factory {
	return func(_ context.Context, role shogi.Color, notify Notify) (Engine, error) {
		return NewLocal(name, role, searcher, notify), nil
	}
}

// SetGrace sets the time a search may overrun its budget before it is
// reported as timed out.
func (local *Local) SetGrace(grace time.Duration) {
	local.mu.Lock()
	defer local.mu.Unlock()
	local.grace = grace
}

func (local *Local) Name() string {
	return local.name
}

func (local *Local) State() State {
	local.mu.Lock()
	defer local.mu.Unlock()
	return local.state
}

func (local *Local) Generation() uint64 {
	local.mu.Lock()
	defer local.mu.Unlock()
	return local.generation
}

// Outcome returns the result last reported through GameOver.
func (local *Local) Outcome() (usi.Outcome, bool) {
	local.mu.Lock()
	defer local.mu.Unlock()

	if local.outcome == nil {
		return usi.Draw, false
	}

	return *local.outcome, true
}

func (local *Local) ConfigurePosition(pos shogi.Position) error {
	local.mu.Lock()
	defer local.mu.Unlock()

	if local.state == Stopped {
		return ErrClosed
	}

	local.position = pos
	return nil
}

func (local *Local) RequestSearch(budget usi.Budget) (uint64, error) {
	local.mu.Lock()
	defer local.mu.Unlock()

	switch local.state {
	case Searching:
		return 0, ErrBusy
	case Stopped:
		return 0, ErrClosed
	}

	local.generation++
	generation := local.generation

	ctx, cancel := context.WithTimeout(context.Background(), budget.Limit(local.role)+local.grace)
	local.cancel = cancel
	local.state = Searching

	go local.search(ctx, cancel, generation, local.position, budget)
	return generation, nil
}

func (local *Local) search(ctx context.Context, cancel context.CancelFunc, generation uint64, pos shogi.Position, budget usi.Budget) {
	defer cancel()

	move, err := local.searcher(ctx, pos, budget)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	local.mu.Lock()
	if generation != local.generation || local.state != Searching || errors.Is(err, context.Canceled) {
		local.mu.Unlock()
		logrus.WithError(ErrStale).Debugf("engine %s: discarding response #%d", local.name, generation)
		return
	}

	local.state = Ready
	local.cancel = nil
	local.mu.Unlock()

	resp := Response{Role: local.role, Generation: generation}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		resp.Kind, resp.Err = Fault, ErrTimeout
	case err != nil:
		resp.Kind, resp.Err = Fault, err
	case move == "resign":
		resp.Kind = Resign
	case move == "win":
		resp.Kind = Win
	default:
		resp.Kind, resp.Move = Move, move
	}

	local.notify(resp)
}

func (local *Local) Stop() error {
	local.mu.Lock()
	defer local.mu.Unlock()

	if local.cancel != nil {
		local.cancel()
		local.cancel = nil
	}

	if local.state == Searching {
		local.state = Ready
	}

	return nil
}

func (local *Local) GameOver(outcome usi.Outcome) error {
	local.mu.Lock()
	defer local.mu.Unlock()

	local.outcome = &outcome
	return nil
}

func (local *Local) Close() error {
	local.mu.Lock()
	defer local.mu.Unlock()

	if local.cancel != nil {
		local.cancel()
		local.cancel = nil
	}

	local.state = Stopped
	return nil
}

// Random returns a searcher which plays a uniformly random legal move, and
// resigns when it has none.
func Random(oracle shogi.Oracle) Searcher {
	return func(_ context.Context, pos shogi.Position, _ usi.Budget) (string, error) {
		moves := oracle.LegalMoves(pos)
		if len(moves) == 0 {
			return "resign", nil
		}

		return moves[rand.Intn(len(moves))].String(), nil
	}
}

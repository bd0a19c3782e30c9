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
	"context"
	"sync"
	"testing"
	"time"

	"laptudirm.com/x/sente/pkg/endgame"
	"laptudirm.com/x/sente/pkg/engine"
	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

// fakeEngine is an engine whose answers are sent by the test itself.
type fakeEngine struct {
	role   shogi.Color
	notify engine.Notify

	mu         sync.Mutex
	generation uint64
	positions  []shogi.Position
	searches   int
	stops      int
	closed     bool
	outcome    *usi.Outcome
}

func (fake *fakeEngine) Name() string { return "fake" }

func (fake *fakeEngine) State() engine.State {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if fake.closed {
		return engine.Stopped
	}
	return engine.Ready
}

func (fake *fakeEngine) Generation() uint64 {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.generation
}

func (fake *fakeEngine) ConfigurePosition(pos shogi.Position) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if fake.closed {
		return engine.ErrClosed
	}

	fake.positions = append(fake.positions, pos)
	return nil
}

func (fake *fakeEngine) RequestSearch(usi.Budget) (uint64, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if fake.closed {
		return 0, engine.ErrClosed
	}

	fake.generation++
	fake.searches++
	return fake.generation, nil
}

func (fake *fakeEngine) Stop() error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.stops++
	return nil
}

func (fake *fakeEngine) GameOver(outcome usi.Outcome) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.outcome = &outcome
	return nil
}

func (fake *fakeEngine) Close() error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.closed = true
	return nil
}

func (fake *fakeEngine) isClosed() bool {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.closed
}

func (fake *fakeEngine) lastPosition() shogi.Position {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.positions[len(fake.positions)-1]
}

// answer sends a response tagged with the engine's current generation.
func (fake *fakeEngine) answer(kind engine.ResponseKind, move string) {
	fake.answerAs(fake.Generation(), kind, move)
}

func (fake *fakeEngine) answerAs(generation uint64, kind engine.ResponseKind, move string) {
	resp := engine.Response{Role: fake.role, Generation: generation, Kind: kind, Move: move}
	if kind == engine.Fault {
		resp.Err = engine.ErrProcessCrash
	}

	fake.notify(resp)
}

func (fake *fakeEngine) fail(err error) {
	fake.notify(engine.Response{Role: fake.role, Generation: fake.Generation(), Kind: engine.Fault, Err: err})
}

// fakeFactory creates fake engines and remembers all of them.
type fakeFactory struct {
	delay time.Duration

	mu      sync.Mutex
	engines []*fakeEngine
}

func (factory *fakeFactory) new(_ context.Context, role shogi.Color, notify engine.Notify) (engine.Engine, error) {
	if factory.delay > 0 {
		time.Sleep(factory.delay)
	}

	fake := &fakeEngine{role: role, notify: notify}

	factory.mu.Lock()
	factory.engines = append(factory.engines, fake)
	factory.mu.Unlock()

	return fake, nil
}

func (factory *fakeFactory) all() []*fakeEngine {
	factory.mu.Lock()
	defer factory.mu.Unlock()
	return append([]*fakeEngine(nil), factory.engines...)
}

func (factory *fakeFactory) last() *fakeEngine {
	all := factory.all()
	return all[len(all)-1]
}

// recorder is a Listener remembering every notification.
type recorder struct {
	mu        sync.Mutex
	snapshots []Snapshot
	verdicts  []endgame.Verdict
	faults    []error
	over      chan endgame.Verdict
}

func newRecorder() *recorder {
	return &recorder{over: make(chan endgame.Verdict, 16)}
}

func (rec *recorder) PositionChanged(snapshot Snapshot) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.snapshots = append(rec.snapshots, snapshot)
}

func (rec *recorder) GameOver(verdict endgame.Verdict) {
	rec.mu.Lock()
	rec.verdicts = append(rec.verdicts, verdict)
	rec.mu.Unlock()

	rec.over <- verdict
}

func (rec *recorder) EngineFault(_ shogi.Color, err error) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.faults = append(rec.faults, err)
}

func (rec *recorder) gameOvers() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.verdicts)
}

func (rec *recorder) faultCount() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.faults)
}

func mustState(t *testing.T, c *Controller, phase Phase, role shogi.Color) Snapshot {
	t.Helper()

	snapshot := c.Snapshot()
	if snapshot.State.Phase != phase || (phase != Terminal && snapshot.State.Role != role) {
		t.Fatalf("state: got %s, want %s (%s)", snapshot.State, phase, role)
	}

	return snapshot
}

func mustTerminal(t *testing.T, c *Controller, want endgame.Verdict) {
	t.Helper()

	snapshot := c.Snapshot()
	if snapshot.State.Phase != Terminal || snapshot.State.Verdict != want {
		t.Fatalf("state: got %s, want terminal (%s)", snapshot.State, want)
	}
}

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
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

func TestLocalRandom(t *testing.T) {
	notify, responses := collect()

	var oracle shogi.Standard
	engine := NewLocal("random", shogi.White, Random(oracle), notify)

	pos, _ := shogi.ParseSFEN("lnsgkgsnl/1r5b1/ppppppppp/9/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL w - 2")
	if err := engine.ConfigurePosition(pos); err != nil {
		t.Fatal(err)
	}

	generation, err := engine.RequestSearch(usi.Budget{Byoyomi: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	resp := await(t, responses)
	if resp.Kind != Move || resp.Generation != generation || resp.Role != shogi.White {
		t.Fatalf("unexpected response %s", resp)
	}

	move, ok := oracle.ParseMove(resp.Move, pos)
	if !ok {
		t.Fatalf("unparsable move %q", resp.Move)
	}

	if _, ok := oracle.Apply(pos, move); !ok {
		t.Errorf("illegal move %q", resp.Move)
	}
}

func TestLocalStaleResponse(t *testing.T) {
	notify, responses := collect()

	hook := logtest.NewGlobal()
	defer hook.Reset()
	defer logrus.SetLevel(logrus.GetLevel())
	logrus.SetLevel(logrus.DebugLevel)

	// both searches answer once the gate opens, but only the second one
	// is still current by then
	gate := make(chan struct{})
	searcher := func(context.Context, shogi.Position, usi.Budget) (string, error) {
		<-gate
		return "7g7f", nil
	}

	engine := NewLocal("gated", shogi.Black, searcher, notify)

	first, _ := engine.RequestSearch(usi.Budget{Byoyomi: time.Minute})
	if _, err := engine.RequestSearch(usi.Budget{Byoyomi: time.Minute}); !errors.Is(err, ErrBusy) {
		t.Fatalf("overlapping search: got %v, want ErrBusy", err)
	}

	if err := engine.Stop(); err != nil {
		t.Fatal(err)
	}

	second, err := engine.RequestSearch(usi.Budget{Byoyomi: time.Minute})
	if err != nil {
		t.Fatal(err)
	}

	close(gate)

	resp := await(t, responses)
	if resp.Kind != Move || resp.Generation != second {
		t.Fatalf("expected the answer to search #%d, got %s (first was #%d)", second, resp, first)
	}

	expectSilence(t, responses, 100*time.Millisecond)

	discarded := false
	for _, entry := range hook.AllEntries() {
		if err, ok := entry.Data[logrus.ErrorKey].(error); ok && errors.Is(err, ErrStale) {
			discarded = true
		}
	}

	if !discarded {
		t.Error("the answer to the cancelled search was not reported as stale")
	}
}

func TestLocalTimeout(t *testing.T) {
	notify, responses := collect()

	searcher := func(ctx context.Context, _ shogi.Position, _ usi.Budget) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	engine := NewLocal("sleepy", shogi.Black, searcher, notify)
	engine.SetGrace(20 * time.Millisecond)

	generation, _ := engine.RequestSearch(usi.Budget{})

	resp := await(t, responses)
	if resp.Kind != Fault || !errors.Is(resp.Err, ErrTimeout) || resp.Generation != generation {
		t.Fatalf("expected a timeout, got %s", resp)
	}

	if engine.State() != Ready {
		t.Errorf("state: got %s, want ready", engine.State())
	}
}

func TestLocalResignAndClose(t *testing.T) {
	notify, responses := collect()

	searcher := func(context.Context, shogi.Position, usi.Budget) (string, error) {
		return "resign", nil
	}

	engine := NewLocal("resigner", shogi.Black, searcher, notify)
	if _, err := engine.RequestSearch(usi.Budget{Byoyomi: time.Second}); err != nil {
		t.Fatal(err)
	}

	if resp := await(t, responses); resp.Kind != Resign {
		t.Fatalf("expected a resignation, got %s", resp)
	}

	engine.GameOver(usi.Win)
	if outcome, ok := engine.Outcome(); !ok || outcome != usi.Win {
		t.Errorf("outcome: got %v %v", outcome, ok)
	}

	engine.Close()
	if _, err := engine.RequestSearch(usi.Budget{}); !errors.Is(err, ErrClosed) {
		t.Errorf("search after close: got %v, want ErrClosed", err)
	}
}

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
	"errors"
	"sync"
	"testing"
	"time"

	"laptudirm.com/x/sente/pkg/endgame"
	"laptudirm.com/x/sente/pkg/engine"
	"laptudirm.com/x/sente/pkg/record"
	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

func humanVsFake(factory *fakeFactory) Players {
	return Players{
		shogi.Black: Human("human"),
		shogi.White: Computer("fake", factory.new),
	}
}

func fakeVsHuman(factory *fakeFactory) Players {
	return Players{
		shogi.Black: Computer("fake", factory.new),
		shogi.White: Human("human"),
	}
}

func TestTurnCycle(t *testing.T) {
	factory := &fakeFactory{}
	rec := newRecorder()
	c := New(DefaultOptions(), rec)

	if _, err := c.NewGame(context.Background(), shogi.Start(), humanVsFake(factory)); err != nil {
		t.Fatal(err)
	}

	mustState(t, c, AwaitingHumanMove, shogi.Black)

	if err := c.SubmitUSI("7g7f"); err != nil {
		t.Fatal(err)
	}

	snapshot := mustState(t, c, AwaitingEngineMove, shogi.White)
	if len(snapshot.Moves) != 1 {
		t.Fatalf("record length: got %d, want 1", len(snapshot.Moves))
	}

	// the engine was sent the complete position, then asked to search
	fake := factory.last()
	if fake.lastPosition() != snapshot.Position || fake.searches != 1 {
		t.Fatalf("engine got position %s and %d searches", fake.lastPosition().SFEN(), fake.searches)
	}

	fake.answer(engine.Move, "3c3d")

	snapshot = mustState(t, c, AwaitingHumanMove, shogi.Black)
	if len(snapshot.Moves) != 2 {
		t.Fatalf("record length: got %d, want 2", len(snapshot.Moves))
	}

	if rec.gameOvers() != 0 {
		t.Error("unexpected game over")
	}

	rec.mu.Lock()
	changes := len(rec.snapshots)
	rec.mu.Unlock()

	// new game, the human's move and the engine's move
	if changes != 3 {
		t.Errorf("got %d position changes, want 3", changes)
	}
}

func TestStaleResponseImmunity(t *testing.T) {
	factory := &fakeFactory{}
	c := New(DefaultOptions(), nil)

	if _, err := c.NewGame(context.Background(), shogi.Start(), fakeVsHuman(factory)); err != nil {
		t.Fatal(err)
	}

	fake := factory.last()
	first := fake.Generation()

	// a timeout is retried once, which supersedes the first request
	fake.fail(engine.ErrTimeout)
	second := fake.Generation()
	if second != first+1 {
		t.Fatalf("timeout was not retried: generation %d", second)
	}

	mustState(t, c, AwaitingEngineMove, shogi.Black)

	fake.answerAs(first, engine.Move, "2g2f")
	if snapshot := c.Snapshot(); len(snapshot.Moves) != 0 {
		t.Fatalf("stale response was applied: %v", snapshot.Moves)
	}

	fake.answerAs(second, engine.Move, "7g7f")
	snapshot := mustState(t, c, AwaitingHumanMove, shogi.White)
	if len(snapshot.Moves) != 1 || snapshot.Moves[0].String() != "7g7f" {
		t.Fatalf("got moves %v, want [7g7f]", snapshot.Moves)
	}

	// a duplicate answer to the same request is not awaited anymore
	fake.answerAs(second, engine.Move, "7f7e")
	if snapshot := c.Snapshot(); len(snapshot.Moves) != 1 {
		t.Fatalf("duplicate response was applied: %v", snapshot.Moves)
	}
}

func TestWrongSideForfeiture(t *testing.T) {
	factory := &fakeFactory{}
	rec := newRecorder()
	c := New(DefaultOptions(), rec)

	if _, err := c.NewGame(context.Background(), shogi.Start(), fakeVsHuman(factory)); err != nil {
		t.Fatal(err)
	}

	fake := factory.last()

	// a syntactically valid move of a white pawn, proposed by black
	fake.answer(engine.Move, "3c3d")

	mustTerminal(t, c, endgame.Win(endgame.IllegalMove, shogi.White))

	if snapshot := c.Snapshot(); len(snapshot.Moves) != 0 || snapshot.Position != shogi.Start() {
		t.Errorf("the illegal move touched the record: %s", snapshot.Position.SFEN())
	}

	if !fake.isClosed() || fake.outcome == nil || *fake.outcome != usi.Lose {
		t.Errorf("engine was not told it lost and closed")
	}

	// answers after the game ended change nothing
	fake.answer(engine.Move, "7g7f")
	if err := c.Abort(); !errors.Is(err, ErrGameOver) {
		t.Errorf("abort after game over: got %v", err)
	}

	if rec.gameOvers() != 1 {
		t.Errorf("got %d game over notifications, want 1", rec.gameOvers())
	}
}

func TestCheckmateInApplyingCall(t *testing.T) {
	c := New(DefaultOptions(), nil)

	start, _ := shogi.ParseSFEN("4k4/9/4P4/9/9/9/9/9/4K4 b G 1")
	if _, err := c.NewGame(context.Background(), start, Players{Human("a"), Human("b")}); err != nil {
		t.Fatal(err)
	}

	if err := c.SubmitUSI("G*5b"); err != nil {
		t.Fatal(err)
	}

	mustTerminal(t, c, endgame.Win(endgame.Checkmate, shogi.Black))

	game := c.Game()
	if game.Result != "1-0" || game.Reason != "checkmate" {
		t.Errorf("game record: result %q reason %q", game.Result, game.Reason)
	}

	if err := c.SubmitUSI("5a4a"); !errors.Is(err, ErrGameOver) {
		t.Errorf("move after checkmate: got %v", err)
	}
}

func TestRepetitionOnFourthOccurrence(t *testing.T) {
	c := New(DefaultOptions(), nil)

	if _, err := c.NewGame(context.Background(), shogi.Start(), Players{Human("a"), Human("b")}); err != nil {
		t.Fatal(err)
	}

	shuffle := []string{"2h3h", "8b7b", "3h2h", "7b8b"}
	for cycle := 0; cycle < 3; cycle++ {
		for i, move := range shuffle {
			if err := c.SubmitUSI(move); err != nil {
				t.Fatalf("cycle %d, %s: %v", cycle, move, err)
			}

			last := cycle == 2 && i == len(shuffle)-1
			if phase := c.Snapshot().State.Phase; (phase == Terminal) != last {
				t.Fatalf("cycle %d, %s: phase %s", cycle, move, phase)
			}
		}
	}

	mustTerminal(t, c, endgame.Draw(endgame.Repetition))
}

func TestOverlappingNewGame(t *testing.T) {
	factory := &fakeFactory{delay: 20 * time.Millisecond}
	rec := newRecorder()
	c := New(DefaultOptions(), rec)

	const calls = 8

	var wg sync.WaitGroup
	errs := make([]error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.NewGame(context.Background(), shogi.Start(), fakeVsHuman(factory))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, ErrSuperseded):
			t.Fatalf("unexpected error %v", err)
		}
	}

	if succeeded == 0 {
		t.Fatal("no call succeeded")
	}

	if c.Epoch() != calls {
		t.Fatalf("epoch: got %d, want %d", c.Epoch(), calls)
	}

	var live []*fakeEngine
	for _, fake := range factory.all() {
		if !fake.isClosed() {
			live = append(live, fake)
		}
	}

	if len(live) != 1 {
		t.Fatalf("got %d live engines, want 1", len(live))
	}

	// late answers of every superseded engine are ignored
	for _, fake := range factory.all() {
		if fake != live[0] {
			fake.answerAs(1, engine.Move, "2g2f")
		}
	}

	snapshot := mustState(t, c, AwaitingEngineMove, shogi.Black)
	if len(snapshot.Moves) != 0 || snapshot.Occurrences != 1 {
		t.Fatalf("superseded games leaked into the record: %v, %d", snapshot.Moves, snapshot.Occurrences)
	}

	live[0].answer(engine.Move, "7g7f")
	snapshot = mustState(t, c, AwaitingHumanMove, shogi.White)
	if len(snapshot.Moves) != 1 || snapshot.Occurrences != 1 {
		t.Fatalf("got %v with %d occurrences", snapshot.Moves, snapshot.Occurrences)
	}
}

func TestEngineResignation(t *testing.T) {
	factory := &fakeFactory{}
	c := New(DefaultOptions(), nil)

	c.NewGame(context.Background(), shogi.Start(), fakeVsHuman(factory))
	factory.last().answer(engine.Resign, "")

	mustTerminal(t, c, endgame.Win(endgame.Resignation, shogi.White))
}

func TestHumanErrors(t *testing.T) {
	factory := &fakeFactory{}
	c := New(DefaultOptions(), nil)

	if err := c.SubmitUSI("7g7f"); !errors.Is(err, ErrNoGame) {
		t.Errorf("move before a game: got %v", err)
	}

	c.NewGame(context.Background(), shogi.Start(), fakeVsHuman(factory))

	if err := c.SubmitUSI("7g7f"); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("move on the engine's turn: got %v", err)
	}

	factory.last().answer(engine.Move, "7g7f")

	for _, move := range []string{"7c7a", "junk", "7g7f"} {
		if err := c.SubmitUSI(move); !errors.Is(err, ErrRejected) {
			t.Errorf("%s: got %v, want ErrRejected", move, err)
		}
	}

	mustState(t, c, AwaitingHumanMove, shogi.White)

	if err := c.Resign(shogi.White); err != nil {
		t.Fatal(err)
	}

	mustTerminal(t, c, endgame.Win(endgame.Resignation, shogi.Black))
}

func TestFaultPause(t *testing.T) {
	factory := &fakeFactory{}
	rec := newRecorder()
	c := New(DefaultOptions(), rec)

	c.NewGame(context.Background(), shogi.Start(), fakeVsHuman(factory))
	crashed := factory.last()

	crashed.fail(engine.ErrProcessCrash)
	mustState(t, c, Paused, shogi.Black)

	if rec.faultCount() != 1 {
		t.Errorf("got %d fault notifications, want 1", rec.faultCount())
	}

	if err := c.ReplaceEngine(context.Background(), shogi.White, nil); !errors.Is(err, ErrNotPaused) {
		t.Errorf("replacing a healthy role: got %v", err)
	}

	if err := c.ReplaceEngine(context.Background(), shogi.Black, nil); err != nil {
		t.Fatal(err)
	}

	if !crashed.isClosed() {
		t.Error("the crashed engine was not closed")
	}

	replacement := factory.last()
	if replacement == crashed || replacement.searches != 1 {
		t.Fatal("the replacement engine was not asked to search")
	}

	// the crashed engine can no longer affect the game
	crashed.answer(engine.Move, "2g2f")
	replacement.answer(engine.Move, "7g7f")

	snapshot := mustState(t, c, AwaitingHumanMove, shogi.White)
	if len(snapshot.Moves) != 1 || snapshot.Moves[0].String() != "7g7f" {
		t.Fatalf("got moves %v", snapshot.Moves)
	}
}

func TestTimeoutPolicies(t *testing.T) {
	tests := []struct {
		name    string
		timeout TimeoutPolicy
		fault   FaultPolicy
		fails   int
		phase   Phase
		verdict endgame.Verdict
	}{
		{"retry then pause", RetryOnce, Pause, 2, Paused, endgame.Verdict{}},
		{"retry then forfeit", RetryOnce, Forfeit, 2, Terminal, endgame.Win(endgame.Timeout, shogi.White)},
		{"forfeit at once", ForfeitOnTimeout, Pause, 1, Terminal, endgame.Win(endgame.Timeout, shogi.White)},
	}

	for _, test := range tests {
		factory := &fakeFactory{}

		options := DefaultOptions()
		options.TimeoutPolicy = test.timeout
		options.FaultPolicy = test.fault
		c := New(options, nil)

		c.NewGame(context.Background(), shogi.Start(), fakeVsHuman(factory))
		fake := factory.last()

		for i := 0; i < test.fails; i++ {
			fake.fail(engine.ErrTimeout)
		}

		snapshot := c.Snapshot()
		if snapshot.State.Phase != test.phase || snapshot.State.Verdict != test.verdict {
			t.Errorf("%s: got %s", test.name, snapshot.State)
		}

		if test.timeout == RetryOnce && fake.searches != 2 {
			t.Errorf("%s: got %d searches, want 2", test.name, fake.searches)
		}
	}
}

func TestAbortStopsEngines(t *testing.T) {
	factory := &fakeFactory{}
	rec := newRecorder()
	c := New(DefaultOptions(), rec)

	players := Players{Computer("a", factory.new), Computer("b", factory.new)}
	c.NewGame(context.Background(), shogi.Start(), players)

	if err := c.Abort(); err != nil {
		t.Fatal(err)
	}

	mustTerminal(t, c, endgame.Draw(endgame.Aborted))

	for _, fake := range factory.all() {
		if fake.stops == 0 || !fake.isClosed() {
			t.Errorf("%s engine: %d stops, closed %v", fake.role, fake.stops, fake.isClosed())
		}
	}

	if game := c.Game(); game.Result != "*" || game.Reason != "aborted" {
		t.Errorf("aborted game recorded as %q (%q)", game.Result, game.Reason)
	}
}

func TestResume(t *testing.T) {
	c := New(DefaultOptions(), nil)

	saved := record.Game{
		ID:    "saved-game",
		Start: "startpos",
		Moves: []string{"7g7f", "3c3d", "2g2f"},
	}

	if _, err := c.Resume(context.Background(), saved, Players{Human("a"), Human("b")}); err != nil {
		t.Fatal(err)
	}

	mustState(t, c, AwaitingHumanMove, shogi.White)
	if err := c.SubmitUSI("8c8d"); err != nil {
		t.Fatal(err)
	}

	game := c.Game()
	if game.ID != "saved-game" || len(game.Moves) != 4 {
		t.Errorf("resumed game %s has %d moves", game.ID, len(game.Moves))
	}

	saved.Result = "1-0"
	if _, err := c.Resume(context.Background(), saved, Players{}); !errors.Is(err, ErrGameOver) {
		t.Errorf("resuming a finished game: got %v", err)
	}
}

func TestCloseKeepsGameResumable(t *testing.T) {
	factory := &fakeFactory{}
	rec := newRecorder()
	c := New(DefaultOptions(), rec)

	if _, err := c.NewGame(context.Background(), shogi.Start(), humanVsFake(factory)); err != nil {
		t.Fatal(err)
	}

	if err := c.SubmitUSI("7g7f"); err != nil {
		t.Fatal(err)
	}

	fake := factory.last()
	c.Close()

	if !fake.isClosed() {
		t.Error("engine not closed")
	}

	// a late answer from the closed engine changes nothing
	fake.answer(engine.Move, "3c3d")

	mustState(t, c, Idle, shogi.Black)
	if err := c.SubmitUSI("3c3d"); !errors.Is(err, ErrNoGame) {
		t.Errorf("move after Close: got %v, want ErrNoGame", err)
	}

	game := c.Game()
	if game.Finished() || len(game.Moves) != 1 || rec.gameOvers() != 0 {
		t.Fatalf("closed game: %+v", game)
	}

	if _, err := c.Resume(context.Background(), game, humanVsFake(factory)); err != nil {
		t.Fatal(err)
	}

	mustState(t, c, AwaitingEngineMove, shogi.White)
	factory.last().answer(engine.Move, "3c3d")
	mustState(t, c, AwaitingHumanMove, shogi.Black)

	if id := c.Game().ID; id != game.ID {
		t.Errorf("resumed game id %s, want %s", id, game.ID)
	}
}

func TestListenerMayCallBack(t *testing.T) {
	c := New(DefaultOptions(), nil)

	// a listener playing black's moves from within the notification
	auto := &autoListener{c: c, moves: []string{"7g7f", "2g2f"}}
	c.listener = auto

	if _, err := c.NewGame(context.Background(), shogi.Start(), Players{Human("auto"), Human("b")}); err != nil {
		t.Fatal(err)
	}

	if err := c.SubmitUSI("3c3d"); err != nil {
		t.Fatal(err)
	}

	snapshot := mustState(t, c, AwaitingHumanMove, shogi.White)
	if len(snapshot.Moves) != 3 {
		t.Errorf("got moves %v", snapshot.Moves)
	}
}

type autoListener struct {
	NopListener
	c     *Controller
	moves []string
}

func (auto *autoListener) PositionChanged(snapshot Snapshot) {
	if snapshot.State.Phase != AwaitingHumanMove || snapshot.State.Role != shogi.Black || len(auto.moves) == 0 {
		return
	}

	move := auto.moves[0]
	auto.moves = auto.moves[1:]
	auto.c.SubmitUSI(move)
}

func TestLocalEnginesPlayToTheEnd(t *testing.T) {
	rec := newRecorder()

	options := DefaultOptions()
	options.Detector.MaxPlies = 60
	options.TimeControl = usi.TimeControl{Byoyomi: time.Second}
	c := New(options, rec)

	random := engine.NewLocalFactory("random", engine.Random(shogi.Standard{}))
	players := Players{Computer("random-1", random), Computer("random-2", random)}

	if _, err := c.NewGame(context.Background(), shogi.Start(), players); err != nil {
		t.Fatal(err)
	}

	select {
	case verdict := <-rec.over:
		game := c.Game()
		if !game.Finished() || game.Reason != verdict.Reason.String() {
			t.Errorf("verdict %s, game %q (%q)", verdict, game.Result, game.Reason)
		}

		if len(game.Moves) > 60 {
			t.Errorf("game went on for %d plies", len(game.Moves))
		}

		if _, err := record.Load(shogi.Standard{}, game); err != nil {
			t.Errorf("the recorded game does not replay: %v", err)
		}

	case <-time.After(10 * time.Second):
		t.Fatal("the game did not end")
	}
}

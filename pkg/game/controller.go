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

// Package game implements the controller of a game session. The
// controller owns the authoritative record of the game and drives the
// engines playing it, keeping them in step with the record no matter in
// which order their answers arrive.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/sente/pkg/endgame"
	"laptudirm.com/x/sente/pkg/engine"
	"laptudirm.com/x/sente/pkg/record"
	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

// Options configures a Controller.
type Options struct {
	Oracle   shogi.Oracle
	Detector endgame.Detector

	TimeControl usi.TimeControl

	TimeoutPolicy TimeoutPolicy
	FaultPolicy   FaultPolicy
}

// DefaultOptions returns the options of a game with the standard rules and
// ten seconds of byoyomi per move.
func DefaultOptions() Options {
	oracle := shogi.Standard{}
	return Options{
		Oracle:      oracle,
		Detector:    endgame.NewDetector(oracle),
		TimeControl: usi.TimeControl{Byoyomi: 10 * time.Second},
	}
}

// Controller is the state machine of a game session. All mutations,
// whether made by the host or by engine notifications, are serialized
// through its lock.
type Controller struct {
	options  Options
	listener Listener

	mu sync.Mutex

	// epoch identifies the current game. Engine notifications carry the
	// epoch they were created under and are ignored once it changes.
	epoch uint64

	state   State
	record  *record.Record
	players Players
	engines engine.Registry
	clock   Clock
	game    record.Game

	// retried marks the roles whose current search has been retried
	// after a timeout.
	retried [shogi.ColorN]bool

	pending  []func()
	flushing bool
}

// New returns an idle controller.
func New(options Options, listener Listener) *Controller {
	if options.Oracle == nil {
		options.Oracle = shogi.Standard{}
	}

	if options.Detector.Oracle == nil {
		options.Detector = endgame.NewDetector(options.Oracle)
	}

	if listener == nil {
		listener = NopListener{}
	}

	return &Controller{
		options:  options,
		listener: listener,
		record:   record.New(options.Oracle),
	}
}

func (c *Controller) logger() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"epoch": c.epoch,
		"game":  c.game.ID,
	})
}

// NewGame starts a new game from the given position, superseding any game
// in progress. Engine sessions are created outside the controller's lock;
// if another NewGame starts meanwhile, the sessions are closed again and
// ErrSuperseded is returned. Overlapping calls therefore always leave a
// single live game, that of the last call.
func (c *Controller) NewGame(ctx context.Context, start shogi.Position, players Players) (uint64, error) {
	r := record.New(c.options.Oracle)
	r.Initialize(start)
	return c.newGame(ctx, r, players, record.Game{})
}

// Resume continues a saved game.
func (c *Controller) Resume(ctx context.Context, saved record.Game, players Players) (uint64, error) {
	if saved.Finished() {
		return 0, ErrGameOver
	}

	loaded, err := record.Load(c.options.Oracle, saved)
	if err != nil {
		return 0, err
	}

	return c.newGame(ctx, loaded, players, saved)
}

func (c *Controller) newGame(ctx context.Context, r *record.Record, players Players, saved record.Game) (uint64, error) {
	c.mu.Lock()

	c.epoch++
	epoch := c.epoch

	old := c.engines.Replace(nil)

	c.record = r
	c.players = players
	c.state = State{Phase: Idle}
	c.retried = [shogi.ColorN]bool{}
	c.clock.Reset(c.options.TimeControl)

	now := time.Now()
	c.game = record.Game{
		ID:      record.NewID(),
		Black:   players[shogi.Black].Name,
		White:   players[shogi.White].Name,
		Started: now,
		Updated: now,
	}

	if saved.ID != "" {
		c.game.ID, c.game.Started = saved.ID, saved.Started
	}

	c.logger().Info("new game")
	c.mu.Unlock()

	for _, session := range old {
		session.Stop()
		session.Close()
	}

	engines := make(map[shogi.Color]engine.Engine)
	bindings := make(map[shogi.Color]*binding)
	closeAll := func() {
		for _, session := range engines {
			session.Close()
		}
	}

	for role, player := range players {
		if player.IsHuman() {
			continue
		}

		role := shogi.Color(role)
		bindings[role] = &binding{epoch: epoch}
		session, err := player.Engine(ctx, role, c.notifier(bindings[role]))
		if err != nil {
			closeAll()
			return epoch, fmt.Errorf("game: starting %s engine %q: %w", role, player.Name, err)
		}

		engines[role] = session
	}

	c.mu.Lock()

	if c.epoch != epoch {
		c.mu.Unlock()
		closeAll()
		return epoch, ErrSuperseded
	}

	for role, session := range engines {
		bindings[role].session = session
	}

	c.engines.Replace(engines)
	c.checkTerminal()

	c.mu.Unlock()
	c.flush()

	return epoch, nil
}

// binding ties the notifications of an engine to the game and the session
// they belong to.
type binding struct {
	epoch uint64

	// session is set under mu once the session is installed; until then
	// its notifications are ignored.
	session engine.Engine
}

func (c *Controller) notifier(b *binding) engine.Notify {
	return func(resp engine.Response) {
		c.onEngineResponse(b, resp)
	}
}

// SubmitMove plays a human's move.
func (c *Controller) SubmitMove(m shogi.Move) error {
	c.mu.Lock()
	err := c.submit(func() (shogi.Move, bool) { return m, true })
	c.mu.Unlock()

	c.flush()
	return err
}

// SubmitUSI parses a move in usi notation and plays it as a human's move.
func (c *Controller) SubmitUSI(s string) error {
	c.mu.Lock()
	err := c.submit(func() (shogi.Move, bool) {
		return c.options.Oracle.ParseMove(s, c.record.Position())
	})
	c.mu.Unlock()

	c.flush()
	return err
}

func (c *Controller) submit(parse func() (shogi.Move, bool)) error {
	switch c.state.Phase {
	case Idle:
		return ErrNoGame
	case Terminal:
		return ErrGameOver
	case AwaitingHumanMove:
	default:
		return ErrNotYourTurn
	}

	m, ok := parse()
	if !ok {
		return fmt.Errorf("%w: unparsable move", ErrRejected)
	}

	applied, err := c.record.Append(m)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	c.clock.Stop()
	c.onApplied(applied)
	return nil
}

// onEngineResponse handles the answer of an engine. Answers from a
// previous game, to a superseded request, from an engine whose move is not
// awaited or arriving after the game ended have no effect.
func (c *Controller) onEngineResponse(b *binding, resp engine.Response) {
	c.mu.Lock()
	c.handle(b, resp)
	c.mu.Unlock()

	c.flush()
}

func (c *Controller) handle(b *binding, resp engine.Response) {
	log := c.logger().WithField("role", resp.Role)

	if b.epoch != c.epoch {
		log.Debugf("discarding response of game %d: %s", b.epoch, resp)
		return
	}

	if c.state.Phase == Terminal || c.state.Phase == Idle {
		log.Debugf("discarding response in state %s: %s", c.state, resp)
		return
	}

	session, ok := c.engines.Get(resp.Role)
	if !ok || session != b.session {
		log.WithError(engine.ErrStale).Debugf("discarding response of a replaced engine: %s", resp)
		return
	}

	if resp.Generation != session.Generation() {
		log.WithError(engine.ErrStale).Debugf("discarding response of an old search: %s", resp)
		return
	}

	if resp.Kind == engine.Fault {
		// a crash matters whoever's turn it is
		if c.state.Phase != Paused {
			c.fault(resp.Role, resp.Err)
		}
		return
	}

	if c.state.Phase != AwaitingEngineMove || c.state.Role != resp.Role {
		log.Debugf("discarding response in state %s: %s", c.state, resp)
		return
	}

	c.clock.Stop()
	c.retried[resp.Role] = false

	switch resp.Kind {
	case engine.Resign:
		c.signal(endgame.Resign, resp.Role)

	case engine.Win:
		c.signal(endgame.Declare, resp.Role)

	case engine.Move:
		m, ok := c.options.Oracle.ParseMove(resp.Move, c.record.Position())
		if !ok {
			log.Warnf("unparsable move %q", resp.Move)
			c.signal(endgame.Illegal, resp.Role)
			return
		}

		applied, err := c.record.Append(m)
		if err != nil {
			log.Warnf("illegal move %q: %v", resp.Move, err)
			c.signal(endgame.Illegal, resp.Role)
			return
		}

		c.onApplied(applied)
	}
}

func (c *Controller) onApplied(applied record.Applied) {
	c.game.Updated = time.Now()
	c.logger().Debugf("%d. %s", c.record.Plies(), applied.Move)
	c.checkTerminal()
}

// checkTerminal ends the game if the current position is terminal, and
// otherwise hands the move to the side to play.
func (c *Controller) checkTerminal() {
	verdict, over := c.options.Detector.Detect(endgame.Input{
		Position:    c.record.Position(),
		Occurrences: c.record.Occurrences(),
		Plies:       c.record.Plies(),
	})

	if over {
		c.terminate(verdict)
		return
	}

	c.advance()
}

func (c *Controller) advance() {
	toMove := c.record.Position().Turn

	if _, ok := c.engines.Get(toMove); !ok {
		c.state = State{Phase: AwaitingHumanMove, Role: toMove}
		c.clock.Start(toMove)
		c.notePosition()
		return
	}

	c.state = State{Phase: AwaitingEngineMove, Role: toMove}
	c.notePosition()
	c.requestEngineMove()
}

// requestEngineMove sends the current position to the engine to move and
// starts its search. It never waits for the answer.
func (c *Controller) requestEngineMove() {
	role := c.state.Role
	session, _ := c.engines.Get(role)

	if err := session.ConfigurePosition(c.record.Position()); err != nil {
		c.fault(role, err)
		return
	}

	budget := c.clock.Budget()
	generation, err := session.RequestSearch(budget)
	if err != nil {
		c.fault(role, err)
		return
	}

	c.clock.Start(role)
	c.logger().WithField("role", role).Debugf("requested search #%d", generation)
}

func (c *Controller) fault(role shogi.Color, err error) {
	log := c.logger().WithField("role", role)
	log.Warnf("engine fault: %v", err)

	c.queue(func() { c.listener.EngineFault(role, err) })

	timedOut := errors.Is(err, engine.ErrTimeout)
	awaited := c.state.Phase == AwaitingEngineMove && c.state.Role == role

	if timedOut && awaited {
		c.clock.Stop()

		switch {
		case c.options.TimeoutPolicy == ForfeitOnTimeout:
			c.signal(endgame.TimedOut, role)
			return
		case !c.retried[role]:
			c.retried[role] = true
			log.Info("retrying search")
			c.requestEngineMove()
			return
		}
	}

	if c.options.FaultPolicy == Forfeit {
		if timedOut {
			c.signal(endgame.TimedOut, role)
		} else {
			c.signal(endgame.Faulted, role)
		}
		return
	}

	c.clock.Stop()
	c.engines.StopAll()
	c.state = State{Phase: Paused, Role: role}
	c.notePosition()
	log.Warn("game paused")
}

// ReplaceEngine restarts the engine of a paused role and resumes the
// game. A nil factory restarts the role's original engine.
func (c *Controller) ReplaceEngine(ctx context.Context, role shogi.Color, factory engine.Factory) error {
	c.mu.Lock()

	if c.state.Phase != Paused || c.state.Role != role {
		c.mu.Unlock()
		return ErrNotPaused
	}

	epoch := c.epoch
	if factory == nil {
		factory = c.players[role].Engine
	} else {
		c.players[role].Engine = factory
	}

	old := c.engines.Set(role, nil)
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}

	if factory == nil {
		return fmt.Errorf("game: %s has no engine to restart", role)
	}

	b := &binding{epoch: epoch}
	session, err := factory(ctx, role, c.notifier(b))
	if err != nil {
		return fmt.Errorf("game: restarting %s engine: %w", role, err)
	}

	c.mu.Lock()

	if c.epoch != epoch || c.state.Phase != Paused {
		c.mu.Unlock()
		session.Close()
		return ErrSuperseded
	}

	b.session = session
	c.engines.Set(role, session)
	c.retried[role] = false
	c.logger().WithField("role", role).Info("engine replaced, resuming")
	c.advance()

	c.mu.Unlock()
	c.flush()

	return nil
}

// Resign ends the game, lost by the given side.
func (c *Controller) Resign(side shogi.Color) error {
	return c.external(endgame.Resign, side)
}

// Abort ends the game without a result, stopping every engine.
func (c *Controller) Abort() error {
	return c.external(endgame.Abort, shogi.Black)
}

// Close stops and closes the engines of the current game without ending
// it. The controller becomes Idle while Game still returns the unfinished
// game, which can later be resumed.
func (c *Controller) Close() {
	c.mu.Lock()

	c.epoch++
	old := c.engines.Replace(nil)
	c.clock.Stop()
	if c.state.Phase != Terminal {
		c.state = State{Phase: Idle}
	}

	c.logger().Info("controller closed")
	c.mu.Unlock()

	for _, session := range old {
		session.Stop()
		session.Close()
	}
}

func (c *Controller) external(signal endgame.Signal, side shogi.Color) error {
	c.mu.Lock()

	var err error
	switch c.state.Phase {
	case Idle:
		err = ErrNoGame
	case Terminal:
		err = ErrGameOver
	default:
		c.clock.Stop()
		c.signal(signal, side)
	}

	c.mu.Unlock()
	c.flush()

	return err
}

func (c *Controller) signal(signal endgame.Signal, side shogi.Color) {
	verdict, _ := c.options.Detector.Detect(endgame.Input{
		Position:    c.record.Position(),
		Occurrences: c.record.Occurrences(),
		Plies:       c.record.Plies(),
		Signal:      signal,
		Side:        side,
	})

	c.terminate(verdict)
}

// terminate is the only transition into Terminal. It freezes the record,
// stops every search and closes every session.
func (c *Controller) terminate(verdict endgame.Verdict) {
	if c.state.Phase == Terminal {
		return
	}

	c.state = State{Phase: Terminal, Verdict: verdict}
	c.record.Freeze()
	c.clock.Stop()

	c.game.Reason = verdict.Reason.String()
	if result, ok := verdict.Result(); ok {
		c.game.Result = result.String()
	} else {
		c.game.Result = "*"
	}
	c.game.Updated = time.Now()

	c.engines.StopAll()
	for _, role := range c.engines.Roles() {
		session, _ := c.engines.Get(role)

		outcome := usi.Draw
		if verdict.Decisive {
			outcome = usi.Lose
			if verdict.Winner == role {
				outcome = usi.Win
			}
		}

		if err := session.GameOver(outcome); err != nil {
			logrus.Debugf("engine %s: gameover: %v", session.Name(), err)
		}
	}
	c.engines.CloseAll()

	c.logger().WithField("result", c.game.Result).Infof("game over: %s", verdict)
	c.notePosition()
	c.queue(func() { c.listener.GameOver(verdict) })
}

// notePosition queues a PositionChanged notification of the current state.
func (c *Controller) notePosition() {
	snapshot := c.snapshot()
	c.queue(func() { c.listener.PositionChanged(snapshot) })
}

// queue schedules a notification. The caller must hold mu.
func (c *Controller) queue(notification func()) {
	c.pending = append(c.pending, notification)
}

// flush delivers the queued notifications in order. Only one goroutine
// delivers at a time; notifications queued while it does, including by
// the listener itself, are delivered by that same goroutine.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.flushing {
		c.mu.Unlock()
		return
	}
	c.flushing = true

	for len(c.pending) > 0 {
		notification := c.pending[0]
		c.pending = c.pending[1:]

		c.mu.Unlock()
		notification()
		c.mu.Lock()
	}

	c.flushing = false
	c.mu.Unlock()
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		Epoch:       c.epoch,
		State:       c.state,
		Position:    c.record.Position(),
		Moves:       c.record.Moves(),
		Occurrences: c.record.Occurrences(),
		Clock:       [shogi.ColorN]time.Duration{c.clock.Remaining(shogi.Black), c.clock.Remaining(shogi.White)},
	}
}

// Snapshot returns the current state of the game.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Game returns the serializable record of the current game.
func (c *Controller) Game() record.Game {
	c.mu.Lock()
	defer c.mu.Unlock()

	game := c.record.Export()
	game.ID = c.game.ID
	game.Black, game.White = c.game.Black, c.game.White
	game.Result, game.Reason = c.game.Result, c.game.Reason
	game.Started, game.Updated = c.game.Started, c.game.Updated

	return game
}

// Players returns the players of the current game.
func (c *Controller) Players() Players {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.players
}

// Epoch returns the epoch of the current game.
func (c *Controller) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

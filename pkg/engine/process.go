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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

// Config describes how to start an engine process.
type Config struct {
	Name string   `yaml:"name"`
	Cmd  string   `yaml:"cmd"`
	Dir  string   `yaml:"dir,omitempty"`
	Arg  string   `yaml:"arg,omitempty"`
	Env  []string `yaml:"env,omitempty"`

	// Stderr is the file the engine's standard error is appended to.
	Stderr string `yaml:"stderr,omitempty"`

	InitStr string `yaml:"init-string,omitempty"`

	Options map[string]string `yaml:"options,omitempty"`

	Grace time.Duration `yaml:"grace,omitempty"`
}

const (
	usiTimeout   = 5 * time.Second
	readyTimeout = 30 * time.Second
	killGrace    = 500 * time.Millisecond
)

// NewProcessFactory returns a Factory which starts the configured engine.
func NewProcessFactory(config Config) Factory {
	return func(ctx context.Context, role shogi.Color, notify Notify) (Engine, error) {
		return StartProcess(ctx, config, role, notify)
	}
}

// Process is a session with an engine running as a child process.
type Process struct {
	config Config
	name   string
	role   shogi.Color
	notify Notify

	cmd    *exec.Cmd
	stderr *os.File

	writeMu sync.Mutex
	writer  *bufio.Writer

	// events receives the non-search lines of the engine. It is only read
	// during the handshake; lines which do not fit are dropped.
	events chan usi.Event
	done   chan struct{}

	mu         sync.Mutex
	state      State
	generation uint64
	pending    []*slot
	closing    bool
}

// slot is the single-fire response slot of a search request. An engine
// answers every go with exactly one bestmove, so slots are resolved in
// the order the requests were made.
type slot struct {
	generation uint64
	cancelled  bool
	timer      *time.Timer
}

var _ Engine = (*Process)(nil)

// StartProcess starts the engine, performs the usi handshake, applies the
// configured options and prepares the engine for a new game.
func StartProcess(ctx context.Context, config Config, role shogi.Color, notify Notify) (*Process, error) {
	engine, err := spawn(config, role, notify)
	if err != nil {
		return nil, err
	}

	if _, err := engine.handshake(ctx); err != nil {
		engine.abandon()
		return nil, err
	}

	if err := engine.Write(usi.NewGame()); err != nil {
		engine.abandon()
		return nil, err
	}

	engine.mu.Lock()
	engine.state = Ready
	engine.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"engine": engine.name,
		"role":   role,
	}).Info("engine ready")

	return engine, nil
}

func spawn(config Config, role shogi.Color, notify Notify) (*Process, error) {
	if config.Cmd == "" {
		return nil, fmt.Errorf("engine %q: no command", config.Name)
	}

	if config.Grace <= 0 {
		config.Grace = DefaultGrace
	}

	// engines are run from their own directory, where they expect to
	// find their evaluation files and books
	cmd := config.Cmd
	dir := config.Dir
	if strings.ContainsRune(cmd, filepath.Separator) {
		if abs, err := filepath.Abs(cmd); err == nil {
			cmd = abs
		}

		if dir == "" {
			dir = filepath.Dir(cmd)
		}
	}

	process := exec.Command(cmd, strings.Fields(config.Arg)...)
	process.Dir = dir

	if len(config.Env) > 0 {
		process.Env = append(os.Environ(), config.Env...)
	}

	engine := &Process{
		config: config,
		name:   config.Name,
		role:   role,
		notify: notify,
		cmd:    process,
		events: make(chan usi.Event, 1024),
		done:   make(chan struct{}),
		state:  Starting,
	}

	if engine.name == "" {
		engine.name = filepath.Base(config.Cmd)
	}

	if config.Stderr != "" {
		file, err := os.OpenFile(config.Stderr, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}

		process.Stderr = file
		engine.stderr = file
	}

	stdin, err := process.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := process.StdoutPipe()
	if err != nil {
		return nil, err
	}

	engine.writer = bufio.NewWriter(stdin)

	if err := process.Start(); err != nil {
		if engine.stderr != nil {
			engine.stderr.Close()
		}
		return nil, fmt.Errorf("engine %q: %w", engine.name, err)
	}

	go engine.read(bufio.NewReader(stdout))
	return engine, nil
}

// handshake runs the usi handshake and collects the engine's id and
// options, then sets the configured options and waits for readyok.
func (engine *Process) handshake(ctx context.Context) (Metadata, error) {
	var meta Metadata

	if engine.config.InitStr != "" {
		if err := engine.Write(engine.config.InitStr); err != nil {
			return meta, err
		}
	}

	if err := engine.Write(usi.Usi()); err != nil {
		return meta, err
	}

	err := engine.Await(ctx, usi.UsiOk, usiTimeout, func(event usi.Event) {
		switch event.Kind {
		case usi.Id:
			if event.Name != "" {
				meta.Name = event.Name
			}
			if event.Author != "" {
				meta.Author = event.Author
			}
		case usi.OptionLine:
			meta.Options = append(meta.Options, event.Option)
		}
	})
	if err != nil {
		return meta, fmt.Errorf("engine %q: waiting for usiok: %w", engine.name, err)
	}

	names := make([]string, 0, len(engine.config.Options))
	for name := range engine.config.Options {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if err := engine.Write(usi.SetOption(name, engine.config.Options[name])); err != nil {
			return meta, err
		}
	}

	if err := engine.Synchronize(ctx); err != nil {
		return meta, err
	}

	return meta, nil
}

// Synchronize waits for the engine to complete some time consuming task
// and synchronizes the interface with it.
func (engine *Process) Synchronize(ctx context.Context) error {
	if err := engine.Write(usi.IsReady()); err != nil {
		return err
	}

	if err := engine.Await(ctx, usi.ReadyOk, readyTimeout, nil); err != nil {
		return fmt.Errorf("engine %q: waiting for readyok: %w", engine.name, err)
	}

	return nil
}

// Await waits for an event of the given kind with a fixed timeout. Every
// event read while waiting, including the awaited one, is passed to fn.
func (engine *Process) Await(ctx context.Context, kind usi.EventKind, timeout time.Duration, fn func(usi.Event)) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	handle := func(event usi.Event) bool {
		if fn != nil {
			fn(event)
		}
		return event.Kind == kind
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			return ErrReadTimeout

		case event := <-engine.events:
			if handle(event) {
				return nil
			}

		case <-engine.done:
			// the process is gone, but its last lines may still be queued
			for {
				select {
				case event := <-engine.events:
					if handle(event) {
						return nil
					}
				default:
					return ErrProcessCrash
				}
			}
		}
	}
}

// Write sends a single line to the engine.
func (engine *Process) Write(format string, a ...any) error {
	line := fmt.Sprintf(format, a...)
	logrus.Debugf("info: (%s)< %s", engine.name, line)

	engine.writeMu.Lock()
	defer engine.writeMu.Unlock()

	if _, err := io.WriteString(engine.writer, line+"\n"); err != nil {
		return err
	}

	return engine.writer.Flush()
}

func (engine *Process) read(reader *bufio.Reader) {
	defer close(engine.done)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			_ = engine.cmd.Wait()
			if engine.stderr != nil {
				engine.stderr.Close()
			}

			engine.exited(err)
			return
		}

		line = strings.Trim(line, " \n\t\r")
		logrus.Debugf("info: (%s)> %s", engine.name, line)

		event, err := usi.Decode(line)
		if err != nil {
			if strings.HasPrefix(line, "bestmove") {
				engine.violation(err)
				continue
			}

			logrus.Warnf("engine %s: %v", engine.name, err)
			continue
		}

		switch event.Kind {
		case usi.BestMove, usi.Resign, usi.DeclareWin:
			engine.resolve(event)
		case usi.InfoLine:
		default:
			select {
			case engine.events <- event:
			default:
			}
		}
	}
}

// resolve delivers a search result to the oldest pending slot, unless it
// has been cancelled or superseded.
func (engine *Process) resolve(event usi.Event) {
	engine.mu.Lock()

	if len(engine.pending) == 0 {
		engine.mu.Unlock()
		logrus.Warnf("engine %s: bestmove without a pending search", engine.name)
		return
	}

	s := engine.pending[0]
	engine.pending = engine.pending[1:]
	s.timer.Stop()

	if s.cancelled || s.generation != engine.generation {
		engine.mu.Unlock()
		logrus.WithError(ErrStale).Debugf("engine %s: discarding response #%d: %s", engine.name, s.generation, event.Line)
		return
	}

	engine.state = Ready
	engine.mu.Unlock()

	resp := Response{Role: engine.role, Generation: s.generation}
	switch event.Kind {
	case usi.Resign:
		resp.Kind = Resign
	case usi.DeclareWin:
		resp.Kind = Win
	default:
		resp.Kind = Move
		resp.Move = event.Move
	}

	engine.notify(resp)
}

func (engine *Process) timeout(s *slot) {
	engine.mu.Lock()

	if s.cancelled || s.generation != engine.generation || engine.state != Searching {
		engine.mu.Unlock()
		return
	}

	// the slot stays queued so that the engine's late answer is consumed
	// by it and discarded
	s.cancelled = true
	engine.state = Ready
	if err := engine.Write(usi.Stop()); err != nil {
		logrus.Debugf("engine %s: stop: %v", engine.name, err)
	}

	engine.mu.Unlock()

	logrus.Warnf("engine %s: no answer to search #%d", engine.name, s.generation)
	engine.notify(Response{
		Role:       engine.role,
		Generation: s.generation,
		Kind:       Fault,
		Err:        ErrTimeout,
	})
}

func (engine *Process) violation(err error) {
	engine.mu.Lock()
	engine.cancelPending()
	engine.state = Errored
	generation := engine.generation
	engine.mu.Unlock()

	logrus.Errorf("engine %s: %v", engine.name, err)
	engine.kill()

	engine.notify(Response{
		Role:       engine.role,
		Generation: generation,
		Kind:       Fault,
		Err:        err,
	})
}

func (engine *Process) exited(err error) {
	engine.mu.Lock()

	if engine.closing {
		engine.state = Stopped
		engine.mu.Unlock()
		return
	}

	wasErrored := engine.state == Errored
	engine.cancelPending()
	engine.state = Errored
	generation := engine.generation
	engine.mu.Unlock()

	// a protocol violation has already been reported
	if wasErrored {
		return
	}

	logrus.Errorf("engine %s: process exited: %v", engine.name, err)
	engine.notify(Response{
		Role:       engine.role,
		Generation: generation,
		Kind:       Fault,
		Err:        ErrProcessCrash,
	})
}

// cancelPending cancels every pending slot. The caller must hold mu.
func (engine *Process) cancelPending() {
	for _, s := range engine.pending {
		s.cancelled = true
		s.timer.Stop()
	}
}

// abandon kills an engine which never became ready.
func (engine *Process) abandon() {
	engine.mu.Lock()
	engine.closing = true
	engine.state = Stopped
	engine.mu.Unlock()

	engine.kill()
}

func (engine *Process) kill() {
	if engine.cmd.Process != nil {
		_ = engine.cmd.Process.Kill()
	}
}

func (engine *Process) Name() string {
	return engine.name
}

func (engine *Process) State() State {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.state
}

func (engine *Process) Generation() uint64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.generation
}

func (engine *Process) ConfigurePosition(pos shogi.Position) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.state == Stopped || engine.state == Errored {
		return ErrClosed
	}

	return engine.Write(usi.Position(pos))
}

func (engine *Process) RequestSearch(budget usi.Budget) (uint64, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	switch engine.state {
	case Searching:
		return 0, ErrBusy
	case Stopped, Errored:
		return 0, ErrClosed
	}

	engine.generation++
	s := &slot{generation: engine.generation}
	s.timer = time.AfterFunc(budget.Limit(engine.role)+engine.config.Grace, func() {
		engine.timeout(s)
	})

	if err := engine.Write(usi.Go(budget)); err != nil {
		s.timer.Stop()
		engine.state = Errored
		return 0, err
	}

	engine.pending = append(engine.pending, s)
	engine.state = Searching
	return s.generation, nil
}

func (engine *Process) Stop() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	engine.cancelPending()
	if engine.state != Searching {
		return nil
	}

	engine.state = Ready
	return engine.Write(usi.Stop())
}

func (engine *Process) GameOver(outcome usi.Outcome) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.state == Stopped || engine.state == Errored {
		return nil
	}

	return engine.Write(usi.GameOver(outcome))
}

// Close asks the engine to quit and kills it if it has not exited after
// a short grace period. Close does not wait for the process to exit.
func (engine *Process) Close() error {
	engine.mu.Lock()

	if engine.closing {
		engine.mu.Unlock()
		return nil
	}

	engine.closing = true
	engine.cancelPending()
	alive := engine.state != Errored
	engine.state = Stopped
	engine.mu.Unlock()

	if alive {
		if err := engine.Write(usi.Quit()); err != nil {
			logrus.Debugf("engine %s: quit: %v", engine.name, err)
		}
	}

	go func() {
		select {
		case <-engine.done:
		case <-time.After(killGrace):
			logrus.Debugf("engine %s: killing after quit", engine.name)
			engine.kill()
		}
	}()

	return nil
}

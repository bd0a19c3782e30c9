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

// Package engine provides sessions with shogi engines. A session is
// either an external process speaking usi or an in-process searcher; both
// are driven through the same Engine interface and report their results
// asynchronously through a Notify callback.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

// State is the lifecycle state of an engine session.
type State int

const (
	Starting State = iota
	Ready
	Searching
	Stopped
	Errored
)

func (state State) String() string {
	switch state {
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case Searching:
		return "searching"
	case Stopped:
		return "stopped"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Engine is a session with a single engine, playing a single role.
type Engine interface {
	Name() string
	State() State

	// Generation returns the generation of the latest search request.
	// Responses tagged with an older generation are stale.
	Generation() uint64

	// ConfigurePosition sends the complete position to the engine.
	ConfigurePosition(shogi.Position) error

	// RequestSearch starts a search of the last configured position and
	// returns immediately with the generation of the request. Exactly one
	// Response, or none if the request is superseded or stopped, is
	// later delivered for it.
	RequestSearch(usi.Budget) (uint64, error)

	// Stop cancels the in-flight search, if any. Its response will not
	// be delivered.
	Stop() error

	// GameOver reports the result of the game to the engine.
	GameOver(usi.Outcome) error

	// Close ends the session and releases its resources.
	Close() error
}

// ResponseKind is the type of an engine's answer to a search request.
type ResponseKind int

const (
	Move ResponseKind = iota
	Resign
	Win
	Fault
)

func (kind ResponseKind) String() string {
	switch kind {
	case Move:
		return "move"
	case Resign:
		return "resign"
	case Win:
		return "win"
	case Fault:
		return "fault"
	default:
		return "unknown"
	}
}

// Response is the single answer to a search request.
type Response struct {
	Role       shogi.Color
	Generation uint64
	Kind       ResponseKind

	Move string // set for Move
	Err  error  // set for Fault
}

func (resp Response) String() string {
	switch resp.Kind {
	case Move:
		return fmt.Sprintf("%s #%d: bestmove %s", resp.Role, resp.Generation, resp.Move)
	case Fault:
		return fmt.Sprintf("%s #%d: fault: %v", resp.Role, resp.Generation, resp.Err)
	default:
		return fmt.Sprintf("%s #%d: %s", resp.Role, resp.Generation, resp.Kind)
	}
}

// Notify receives the responses of an engine. It is called from the
// engine's own goroutines and must not block for long.
type Notify func(Response)

// Factory creates an engine session playing the given role.
type Factory func(ctx context.Context, role shogi.Color, notify Notify) (Engine, error)

// DefaultGrace is added to every search budget before a silent engine is
// considered to have timed out.
const DefaultGrace = time.Second

var (
	ErrTimeout           = errors.New("engine: search timed out")
	ErrReadTimeout       = errors.New("engine: read i/o timeout")
	ErrProcessCrash      = errors.New("engine: process exited unexpectedly")
	ErrProtocolViolation = usi.ErrProtocolViolation
	ErrStale             = errors.New("engine: stale response")
	ErrClosed            = errors.New("engine: session closed")
	ErrBusy              = errors.New("engine: search already in progress")
)

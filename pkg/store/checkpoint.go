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

package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/sente/pkg/endgame"
	"laptudirm.com/x/sente/pkg/game"
	"laptudirm.com/x/sente/pkg/record"
	"laptudirm.com/x/sente/pkg/shogi"
)

// Checkpointer is a game.Listener which saves the game after every
// change of position and once more when it ends, before passing the
// notification on to the wrapped listener.
type Checkpointer struct {
	game.Listener

	Store Store
	Game  func() record.Game

	// Timeout bounds each save. Zero means five seconds.
	Timeout time.Duration
}

var _ game.Listener = (*Checkpointer)(nil)

// NewCheckpointer returns a Checkpointer saving into store. A nil next
// listener is replaced by game.NopListener.
func NewCheckpointer(store Store, next game.Listener) *Checkpointer {
	if next == nil {
		next = game.NopListener{}
	}

	return &Checkpointer{Listener: next, Store: store}
}

// Attach makes the checkpointer save the games of the given controller.
func (cp *Checkpointer) Attach(controller *game.Controller) {
	cp.Game = controller.Game
}

func (cp *Checkpointer) save() {
	if cp.Game == nil {
		return
	}

	timeout := cp.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	saved := cp.Game()
	if saved.ID == "" {
		return
	}

	if err := cp.Store.Save(ctx, saved); err != nil {
		logrus.WithField("game", saved.ID).Warnf("checkpoint failed: %v", err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"game":  saved.ID,
		"moves": len(saved.Moves),
	}).Trace("checkpoint saved")
}

func (cp *Checkpointer) PositionChanged(snapshot game.Snapshot) {
	cp.save()
	cp.Listener.PositionChanged(snapshot)
}

func (cp *Checkpointer) GameOver(verdict endgame.Verdict) {
	cp.save()
	cp.Listener.GameOver(verdict)
}

func (cp *Checkpointer) EngineFault(role shogi.Color, err error) {
	cp.save()
	cp.Listener.EngineFault(role, err)
}

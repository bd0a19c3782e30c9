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
	"sync"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/sente/pkg/shogi"
)

// Registry owns the engine sessions of a game, keyed by the role they
// play. A role without a session is played by a human.
type Registry struct {
	mu      sync.Mutex
	engines [shogi.ColorN]Engine
}

// Replace installs a new set of sessions and returns the ones it replaced.
// The caller is responsible for closing the returned sessions.
func (registry *Registry) Replace(engines map[shogi.Color]Engine) []Engine {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	var old []Engine
	for role := range registry.engines {
		if registry.engines[role] != nil {
			old = append(old, registry.engines[role])
		}
		registry.engines[role] = engines[shogi.Color(role)]
	}

	return old
}

// Set installs the session of a single role and returns the one it
// replaced, if any.
func (registry *Registry) Set(role shogi.Color, engine Engine) Engine {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	old := registry.engines[role]
	registry.engines[role] = engine
	return old
}

// Get returns the session playing the given role.
func (registry *Registry) Get(role shogi.Color) (Engine, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	engine := registry.engines[role]
	return engine, engine != nil
}

// Roles returns the roles which are played by an engine.
func (registry *Registry) Roles() []shogi.Color {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	var roles []shogi.Color
	for role, engine := range registry.engines {
		if engine != nil {
			roles = append(roles, shogi.Color(role))
		}
	}

	return roles
}

// StopAll cancels the in-flight search of every session.
func (registry *Registry) StopAll() {
	for _, engine := range registry.all() {
		if err := engine.Stop(); err != nil {
			logrus.Debugf("engine %s: stop: %v", engine.Name(), err)
		}
	}
}

// CloseAll closes and removes every session.
func (registry *Registry) CloseAll() {
	for _, engine := range registry.Replace(nil) {
		if err := engine.Close(); err != nil {
			logrus.Debugf("engine %s: close: %v", engine.Name(), err)
		}
	}
}

func (registry *Registry) all() []Engine {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	var engines []Engine
	for _, engine := range registry.engines {
		if engine != nil {
			engines = append(engines, engine)
		}
	}

	return engines
}

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

	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

// Metadata is what an engine reports about itself during the handshake.
type Metadata struct {
	Name    string       `yaml:"name"`
	Author  string       `yaml:"author"`
	Options []usi.Option `yaml:"options,omitempty"`
}

// Option returns the advertised option with the given name.
func (meta Metadata) Option(name string) (usi.Option, bool) {
	for _, option := range meta.Options {
		if option.Name == name {
			return option, true
		}
	}

	return usi.Option{}, false
}

// Validate starts the engine, runs the handshake and shuts it down again,
// returning the engine's id and options. An engine which does not
// complete the handshake is not a usi engine.
func Validate(ctx context.Context, config Config) (Metadata, error) {
	engine, err := spawn(config, shogi.Black, func(Response) {})
	if err != nil {
		return Metadata{}, err
	}

	meta, err := engine.handshake(ctx)
	if err != nil {
		engine.abandon()
		return Metadata{}, err
	}

	engine.mu.Lock()
	engine.state = Ready
	engine.mu.Unlock()

	return meta, engine.Close()
}

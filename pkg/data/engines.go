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

// Package data lists the engines built into sente, which need no
// installation and are always present in the engine catalogue.
package data

import (
	"github.com/MakeNowJust/heredoc/v2"

	"laptudirm.com/x/sente/pkg/engine"
	"laptudirm.com/x/sente/pkg/shogi"
)

type EngineInfo struct {
	Author      string
	Description string

	// Searcher returns the engine's move search for the given rules.
	Searcher func(shogi.Oracle) engine.Searcher
}

var Engines = map[string]EngineInfo{
	"Random": {
		Author: "sente",
		Description: heredoc.Doc(`
			Plays a uniformly random legal move, instantly. Useful as a
			sparring partner and for checking that a usi engine under test
			can at least beat chance.
		`),
		Searcher: engine.Random,
	},
}

// Factory returns the Factory of the named builtin engine.
func Factory(name string, oracle shogi.Oracle) (engine.Factory, bool) {
	info, found := Engines[name]
	if !found {
		return nil, false
	}

	return engine.NewLocalFactory(name, info.Searcher(oracle)), true
}

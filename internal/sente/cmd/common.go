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

package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/sente/pkg/game"
	"laptudirm.com/x/sente/pkg/manager"
	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/store"
)

var oracle shogi.Oracle = shogi.Standard{}

func openCatalogue() (*manager.Catalogue, error) {
	path := settings.Engines
	if path == "" {
		path = manager.EnginesFile
	}

	return manager.Open(path)
}

func openStore() (store.Store, error) {
	return store.Open(settings.Store)
}

// defaultEngine is played by "favorite" when no engine is the favorite.
const defaultEngine = "Random"

// resolvePlayer turns a command line player into a game.Player: "human",
// "favorite" or the name or id of a catalogued engine.
func resolvePlayer(catalogue *manager.Catalogue, name string) (game.Player, error) {
	if name == "" || strings.EqualFold(name, "human") {
		return game.Human("human"), nil
	}

	var entry *manager.Entry
	var err error
	if strings.EqualFold(name, "favorite") {
		var found bool
		if entry, found = catalogue.Favorite(); !found {
			entry, err = catalogue.Find(defaultEngine)
		}
	} else {
		entry, err = catalogue.Find(name)
	}

	if err != nil {
		return game.Player{}, err
	}

	// Engines which do not set their own grace use the configured one.
	resolved := *entry
	if resolved.Engine.Grace == 0 {
		resolved.Engine.Grace = settings.Grace
	}

	factory, err := resolved.Factory(oracle)
	if err != nil {
		return game.Player{}, err
	}

	if err := catalogue.Touch(entry.ID); err != nil {
		logrus.Debugf("catalogue: touch %s: %v", entry.DisplayName, err)
	}

	return game.Computer(entry.DisplayName, factory), nil
}

func resolvePlayers(black, white string) (game.Players, error) {
	catalogue, err := openCatalogue()
	if err != nil {
		return game.Players{}, err
	}

	var players game.Players
	for color, name := range []string{black, white} {
		players[color], err = resolvePlayer(catalogue, name)
		if err != nil {
			return players, fmt.Errorf("%s: %w", shogi.Color(color), err)
		}
	}

	return players, nil
}

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

// Package store persists game records so that interrupted games can be
// resumed and finished games exported.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"laptudirm.com/x/sente/pkg/record"
)

var (
	ErrNotFound = errors.New("store: game not found")
	ErrNoID     = errors.New("store: game has no id")
)

// Store is a collection of saved games keyed by their id.
type Store interface {
	// Save creates or overwrites the game with the same id.
	Save(ctx context.Context, game record.Game) error

	// Load returns the game with the given id or ErrNotFound.
	Load(ctx context.Context, id string) (record.Game, error)

	// List returns every saved game, most recently updated first.
	List(ctx context.Context) ([]record.Game, error)

	// Delete removes the game with the given id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}

// Open opens the store described by target: a redis:// or rediss:// url
// selects a Redis store, anything else is taken as the directory of a
// File store. An empty target opens the default File store.
func Open(target string) (Store, error) {
	switch {
	case strings.HasPrefix(target, "redis://"), strings.HasPrefix(target, "rediss://"):
		options, err := redis.ParseURL(target)
		if err != nil {
			return nil, err
		}

		return NewRedis(redis.NewClient(options)), nil
	case target == "":
		return NewFile(DefaultDirectory)
	default:
		return NewFile(target)
	}
}

// Find returns the saved game whose id starts with the given prefix, so
// that users need not type out full uuids.
func Find(ctx context.Context, store Store, prefix string) (record.Game, error) {
	if game, err := store.Load(ctx, prefix); err == nil || !errors.Is(err, ErrNotFound) {
		return game, err
	}

	games, err := store.List(ctx)
	if err != nil {
		return record.Game{}, err
	}

	var found []record.Game
	for _, game := range games {
		if strings.HasPrefix(game.ID, prefix) {
			found = append(found, game)
		}
	}

	switch len(found) {
	case 0:
		return record.Game{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return record.Game{}, errors.New("store: ambiguous game id " + prefix)
	}
}

func sortByUpdated(games []record.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Updated.After(games[j].Updated)
	})
}

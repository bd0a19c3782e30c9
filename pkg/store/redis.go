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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"laptudirm.com/x/sente/pkg/record"
)

// Redis stores games as json strings with a sorted set indexing them by
// their last update.
type Redis struct {
	rdb    *redis.Client
	Prefix string
}

var _ Store = (*Redis)(nil)

// NewRedis returns a Redis store using the given client. The store owns
// the client and closes it on Close.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, Prefix: "sente"}
}

func (store *Redis) keyGame(id string) string { return store.Prefix + ":game:" + id }
func (store *Redis) keyIndex() string         { return store.Prefix + ":games" }

func (store *Redis) Save(ctx context.Context, game record.Game) error {
	if game.ID == "" {
		return ErrNoID
	}

	raw, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("store: game %s: %w", game.ID, err)
	}

	_, err = store.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, store.keyGame(game.ID), raw, 0)
		pipe.ZAdd(ctx, store.keyIndex(), redis.Z{
			Score:  float64(game.Updated.UnixMilli()),
			Member: game.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: game %s: %w", game.ID, err)
	}

	return nil
}

func (store *Redis) Load(ctx context.Context, id string) (record.Game, error) {
	var game record.Game

	raw, err := store.rdb.Get(ctx, store.keyGame(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return game, ErrNotFound
	case err != nil:
		return game, fmt.Errorf("store: game %s: %w", id, err)
	}

	if err := json.Unmarshal(raw, &game); err != nil {
		return game, fmt.Errorf("store: game %s: %w", id, err)
	}

	return game, nil
}

func (store *Redis) List(ctx context.Context) ([]record.Game, error) {
	ids, err := store.rdb.ZRevRange(ctx, store.keyIndex(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = store.keyGame(id)
	}

	values, err := store.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	games := make([]record.Game, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// indexed but deleted concurrently
			continue
		}

		var game record.Game
		if err := json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, fmt.Errorf("store: game %s: %w", ids[i], err)
		}

		games = append(games, game)
	}

	sortByUpdated(games)
	return games, nil
}

func (store *Redis) Delete(ctx context.Context, id string) error {
	var deleted *redis.IntCmd
	_, err := store.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, store.keyGame(id))
		pipe.ZRem(ctx, store.keyIndex(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: game %s: %w", id, err)
	}

	if deleted.Val() == 0 {
		return ErrNotFound
	}

	return nil
}

func (store *Redis) Close() error {
	return store.rdb.Close()
}

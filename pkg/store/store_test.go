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
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"laptudirm.com/x/sente/pkg/game"
	"laptudirm.com/x/sente/pkg/record"
	"laptudirm.com/x/sente/pkg/shogi"
)

func newRedis(t *testing.T) *Redis {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newFile(t *testing.T) *File {
	t.Helper()

	store, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	return store
}

func sample(id string, updated time.Time, moves ...string) record.Game {
	return record.Game{
		ID:      id,
		Black:   "human",
		White:   "random",
		Start:   shogi.StartSFEN,
		Moves:   moves,
		Started: updated.Add(-time.Minute),
		Updated: updated,
	}
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"file":  newFile(t),
		"redis": newRedis(t),
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			saved := sample("a1", at, "7g7f", "3c3d")
			saved.Result, saved.Reason = "1-0", "resignation"

			if err := store.Save(ctx, saved); err != nil {
				t.Fatalf("Save: %v", err)
			}

			loaded, err := store.Load(ctx, "a1")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			if loaded.ID != saved.ID || loaded.Black != saved.Black || loaded.White != saved.White ||
				loaded.Start != saved.Start || loaded.Result != saved.Result || loaded.Reason != saved.Reason {
				t.Errorf("loaded %+v, saved %+v", loaded, saved)
			}

			if fmt.Sprint(loaded.Moves) != fmt.Sprint(saved.Moves) {
				t.Errorf("moves: got %v, want %v", loaded.Moves, saved.Moves)
			}

			if !loaded.Updated.Equal(saved.Updated) || !loaded.Started.Equal(saved.Started) {
				t.Errorf("times: got %v/%v, want %v/%v", loaded.Started, loaded.Updated, saved.Started, saved.Updated)
			}

			// overwrite
			saved.Moves = append(saved.Moves, "2g2f")
			if err := store.Save(ctx, saved); err != nil {
				t.Fatalf("Save: %v", err)
			}

			loaded, _ = store.Load(ctx, "a1")
			if len(loaded.Moves) != 3 {
				t.Errorf("overwrite: got %d moves, want 3", len(loaded.Moves))
			}

			// the saved game replays
			if _, err := record.Load(shogi.Standard{}, loaded); err != nil {
				t.Errorf("record.Load: %v", err)
			}
		})
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i, id := range []string{"old", "newest", "middle"} {
				offset := []time.Duration{0, 2 * time.Hour, time.Hour}[i]
				if err := store.Save(ctx, sample(id, at.Add(offset))); err != nil {
					t.Fatalf("Save(%s): %v", id, err)
				}
			}

			games, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}

			var ids []string
			for _, game := range games {
				ids = append(ids, game.ID)
			}

			if fmt.Sprint(ids) != "[newest middle old]" {
				t.Errorf("List order: got %v", ids)
			}

			if err := store.Delete(ctx, "middle"); err != nil {
				t.Fatalf("Delete: %v", err)
			}

			if err := store.Delete(ctx, "middle"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete: got %v, want ErrNotFound", err)
			}

			if _, err := store.Load(ctx, "middle"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load deleted: got %v, want ErrNotFound", err)
			}

			if games, _ := store.List(ctx); len(games) != 2 {
				t.Errorf("List after delete: got %d games, want 2", len(games))
			}
		})
	}
}

func TestErrors(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Save(ctx, record.Game{}); !errors.Is(err, ErrNoID) {
				t.Errorf("Save without id: got %v, want ErrNoID", err)
			}

			if _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load missing: got %v, want ErrNotFound", err)
			}

			if games, err := store.List(ctx); err != nil || len(games) != 0 {
				t.Errorf("List empty: got %v, %v", games, err)
			}
		})
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	store := newFile(t)
	at := time.Now()

	for _, id := range []string{"abc123", "abd456", "xyz789"} {
		if err := store.Save(ctx, sample(id, at)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	tests := []struct {
		prefix string
		want   string
		err    bool
	}{
		{"abc123", "abc123", false},
		{"abc", "abc123", false},
		{"x", "xyz789", false},
		{"ab", "", true},
		{"q", "", true},
	}

	for _, test := range tests {
		game, err := Find(ctx, store, test.prefix)
		if test.err {
			if err == nil {
				t.Errorf("Find(%q): expected error, got %s", test.prefix, game.ID)
			}
			continue
		}

		if err != nil || game.ID != test.want {
			t.Errorf("Find(%q): got %q, %v; want %q", test.prefix, game.ID, err, test.want)
		}
	}
}

func TestOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	store, err := Open("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("Open redis: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*Redis); !ok {
		t.Errorf("Open redis url: got %T", store)
	}

	dir := t.TempDir()
	store, err = Open(dir)
	if err != nil {
		t.Fatalf("Open dir: %v", err)
	}

	if file, ok := store.(*File); !ok || file.Directory != dir {
		t.Errorf("Open dir: got %#v", store)
	}
}

func TestCheckpointer(t *testing.T) {
	store := newRedis(t)
	cp := NewCheckpointer(store, nil)

	options := game.DefaultOptions()
	controller := game.New(options, cp)
	cp.Attach(controller)

	players := game.Players{game.Human("sente"), game.Human("gote")}
	if _, err := controller.NewGame(context.Background(), shogi.Start(), players); err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	for _, move := range []string{"7g7f", "3c3d"} {
		if err := controller.SubmitUSI(move); err != nil {
			t.Fatalf("SubmitUSI(%s): %v", move, err)
		}
	}

	id := controller.Game().ID
	saved, err := store.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(saved.Moves) != 2 || saved.Black != "sente" || saved.Finished() {
		t.Errorf("checkpoint: got %+v", saved)
	}

	if err := controller.Resign(shogi.White); err != nil {
		t.Fatalf("Resign: %v", err)
	}

	saved, _ = store.Load(context.Background(), id)
	if saved.Result != "1-0" || saved.Reason != "resignation" {
		t.Errorf("final checkpoint: got result %q reason %q", saved.Result, saved.Reason)
	}
}

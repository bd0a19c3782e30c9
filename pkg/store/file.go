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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"laptudirm.com/x/sente/pkg/common"
	"laptudirm.com/x/sente/pkg/record"
)

// DefaultDirectory is where games are saved when no store is configured.
var DefaultDirectory = filepath.Join(common.Directory, "games")

// File stores each game as a yaml file named after its id.
type File struct {
	Directory string
}

var _ Store = (*File)(nil)

// NewFile returns a File store rooted at the given directory, creating
// the directory if necessary.
func NewFile(dir string) (*File, error) {
	if err := common.TryMkdir(dir); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	return &File{Directory: dir}, nil
}

func (store *File) path(id string) string {
	return filepath.Join(store.Directory, id+".yaml")
}

func (store *File) Save(_ context.Context, game record.Game) error {
	if game.ID == "" {
		return ErrNoID
	}

	data, err := yaml.Marshal(game)
	if err != nil {
		return fmt.Errorf("store: game %s: %w", game.ID, err)
	}

	// Write to a temporary file first so that a crash mid-write never
	// leaves a truncated game behind.
	tmp := store.path(game.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("store: game %s: %w", game.ID, err)
	}

	return os.Rename(tmp, store.path(game.ID))
}

func (store *File) Load(_ context.Context, id string) (record.Game, error) {
	var game record.Game
	if id == "" || strings.ContainsAny(id, `/\`) {
		return game, ErrNotFound
	}

	data, err := os.ReadFile(store.path(id))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return game, ErrNotFound
	case err != nil:
		return game, fmt.Errorf("store: game %s: %w", id, err)
	}

	if err := yaml.Unmarshal(data, &game); err != nil {
		return game, fmt.Errorf("store: game %s: %w", id, err)
	}

	return game, nil
}

func (store *File) List(ctx context.Context) ([]record.Game, error) {
	entries, err := os.ReadDir(store.Directory)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	games := make([]record.Game, 0, len(entries))
	for _, entry := range entries {
		id, ok := strings.CutSuffix(entry.Name(), ".yaml")
		if entry.IsDir() || !ok {
			continue
		}

		game, err := store.Load(ctx, id)
		if err != nil {
			return nil, err
		}

		games = append(games, game)
	}

	sortByUpdated(games)
	return games, nil
}

func (store *File) Delete(_ context.Context, id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return ErrNotFound
	}

	err := os.Remove(store.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}

	return err
}

func (store *File) Close() error { return nil }

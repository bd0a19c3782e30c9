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

// Package manager keeps the catalogue of engines the user has registered.
package manager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/sente/pkg/common"
	"laptudirm.com/x/sente/pkg/data"
	"laptudirm.com/x/sente/internal/util"
)

var (
	ErrNotFound  = errors.New("manager: engine not found")
	ErrAmbiguous = errors.New("manager: engine name is ambiguous")
	ErrDuplicate = errors.New("manager: an engine with that name exists")
	ErrBuiltin   = errors.New("manager: builtin engines cannot be removed")
)

// Catalogue is the list of registered engines, persisted in a yaml
// lockfile. Every mutation is written back to the file at once.
type Catalogue struct {
	path string

	Version string  `yaml:"version"`
	Engines []Entry `yaml:"engines"`
}

// Open reads the catalogue at path. A missing file yields a catalogue
// holding only the builtin engines. An empty path opens a catalogue which
// is never written.
func Open(path string) (*Catalogue, error) {
	catalogue := &Catalogue{path: path, Version: CatalogueVersion}

	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("manager: %w", err)
		default:
			if err := yaml.Unmarshal(file, catalogue); err != nil {
				return nil, fmt.Errorf("manager: %s: %w", path, err)
			}
		}
	}

	// Builtin engines are always present.
	added := false
	for name, info := range data.Engines {
		if !catalogue.hasBuiltin(name) {
			catalogue.Engines = append(catalogue.Engines, builtinEntry(name, info))
			added = true
		}
	}

	if added {
		if err := catalogue.Dump(); err != nil {
			return nil, err
		}
	}

	return catalogue, nil
}

func (catalogue *Catalogue) hasBuiltin(name string) bool {
	for _, entry := range catalogue.Engines {
		if entry.Builtin && entry.Engine.Name == name {
			return true
		}
	}

	return false
}

// Dump writes the catalogue to its file.
func (catalogue *Catalogue) Dump() error {
	if catalogue.path == "" {
		return nil
	}

	file, err := yaml.Marshal(catalogue)
	if err != nil {
		return fmt.Errorf("manager: %w", err)
	}

	if err := common.TryMkdir(filepath.Dir(catalogue.path)); err != nil {
		return fmt.Errorf("manager: %w", err)
	}

	return os.WriteFile(catalogue.path, file, 0644)
}

// List returns the registered engines, favorites first and then by name.
func (catalogue *Catalogue) List() []Entry {
	entries := append([]Entry(nil), catalogue.Engines...)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Favorite != entries[j].Favorite {
			return entries[i].Favorite
		}

		return util.AlphanumLess(entries[i].DisplayName, entries[j].DisplayName)
	})

	return entries
}

// Find returns the engine identified by key: its id, its display name
// compared without regard to case, or a prefix of its id.
func (catalogue *Catalogue) Find(key string) (*Entry, error) {
	index, err := catalogue.find(key)
	if err != nil {
		return nil, err
	}

	return &catalogue.Engines[index], nil
}

func (catalogue *Catalogue) find(key string) (int, error) {
	if key == "" {
		return -1, ErrNotFound
	}

	for i := range catalogue.Engines {
		if catalogue.Engines[i].ID == key {
			return i, nil
		}
	}

	for i := range catalogue.Engines {
		if strings.EqualFold(catalogue.Engines[i].DisplayName, key) {
			return i, nil
		}
	}

	found := -1
	for i := range catalogue.Engines {
		if strings.HasPrefix(catalogue.Engines[i].ID, key) {
			if found != -1 {
				return -1, fmt.Errorf("%w: %s", ErrAmbiguous, key)
			}
			found = i
		}
	}

	if found == -1 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return found, nil
}

func (catalogue *Catalogue) checkName(name string, except int) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("manager: engine name is empty")
	}

	for i := range catalogue.Engines {
		if i != except && strings.EqualFold(catalogue.Engines[i].DisplayName, name) {
			return fmt.Errorf("%w: %s", ErrDuplicate, name)
		}
	}

	return nil
}

// Add registers a new engine and returns its id.
func (catalogue *Catalogue) Add(entry Entry) (string, error) {
	if err := catalogue.checkName(entry.DisplayName, -1); err != nil {
		return "", err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.Created.IsZero() {
		entry.Created = time.Now()
	}

	catalogue.Engines = append(catalogue.Engines, entry)
	return entry.ID, catalogue.Dump()
}

// Remove unregisters the engine identified by key.
func (catalogue *Catalogue) Remove(key string) error {
	index, err := catalogue.find(key)
	if err != nil {
		return err
	}

	// clones of builtin engines may be removed, the builtins themselves not
	if entry := catalogue.Engines[index]; entry.Builtin && entry.ID == builtinID(entry.Engine.Name) {
		return ErrBuiltin
	}

	catalogue.Engines = append(catalogue.Engines[:index], catalogue.Engines[index+1:]...)
	return catalogue.Dump()
}

// Clone registers a copy of an engine under a new name, so that the same
// binary can be kept with different saved options.
func (catalogue *Catalogue) Clone(key, name string) (string, error) {
	entry, err := catalogue.Find(key)
	if err != nil {
		return "", err
	}

	clone := *entry
	clone.ID = ""
	clone.DisplayName = name
	clone.Favorite = false
	clone.Created = time.Time{}
	clone.LastUsed = time.Time{}
	clone.Engine.Options = entry.Config().Options

	return catalogue.Add(clone)
}

// Rename changes the display name of an engine.
func (catalogue *Catalogue) Rename(key, name string) error {
	index, err := catalogue.find(key)
	if err != nil {
		return err
	}

	if err := catalogue.checkName(name, index); err != nil {
		return err
	}

	catalogue.Engines[index].DisplayName = name
	return catalogue.Dump()
}

// SaveOptions merges the given setoption values into the engine's saved
// options. An empty value removes the option.
func (catalogue *Catalogue) SaveOptions(key string, options map[string]string) error {
	entry, err := catalogue.Find(key)
	if err != nil {
		return err
	}

	if entry.Engine.Options == nil {
		entry.Engine.Options = make(map[string]string)
	}

	for name, value := range options {
		if value == "" {
			delete(entry.Engine.Options, name)
			continue
		}

		entry.Engine.Options[name] = value
	}

	return catalogue.Dump()
}

// SetEnabled enables or disables an engine.
func (catalogue *Catalogue) SetEnabled(key string, enabled bool) error {
	entry, err := catalogue.Find(key)
	if err != nil {
		return err
	}

	entry.Enabled = enabled
	return catalogue.Dump()
}

// SetFavorite marks an engine as the favorite, which is used when no
// engine is named. There is at most one favorite.
func (catalogue *Catalogue) SetFavorite(key string) error {
	index, err := catalogue.find(key)
	if err != nil {
		return err
	}

	for i := range catalogue.Engines {
		catalogue.Engines[i].Favorite = i == index
	}

	return catalogue.Dump()
}

// Favorite returns the favorite engine, if there is one.
func (catalogue *Catalogue) Favorite() (*Entry, bool) {
	for i := range catalogue.Engines {
		if catalogue.Engines[i].Favorite {
			return &catalogue.Engines[i], true
		}
	}

	return nil, false
}

// Touch records that an engine has just been used.
func (catalogue *Catalogue) Touch(key string) error {
	entry, err := catalogue.Find(key)
	if err != nil {
		return err
	}

	entry.LastUsed = time.Now()
	return catalogue.Dump()
}

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

package manager

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/sente/pkg/data"
	"laptudirm.com/x/sente/pkg/engine"
	"laptudirm.com/x/sente/pkg/shogi"
)

// Entry is a registered engine: how to start it, what it reported about
// itself when it was validated, and the user's settings for it.
type Entry struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display-name"`
	Author      string `yaml:"author,omitempty"`

	Builtin  bool `yaml:"builtin,omitempty"`
	Enabled  bool `yaml:"enabled"`
	Favorite bool `yaml:"favorite,omitempty"`

	Created  time.Time `yaml:"created"`
	LastUsed time.Time `yaml:"last-used,omitempty"`

	Metadata *engine.Metadata `yaml:"metadata,omitempty"`

	// Engine holds the process configuration, including the saved
	// setoption values. It is unused by builtin engines.
	Engine engine.Config `yaml:"engine"`
}

// NewEntry returns an enabled entry for the engine, named after what it
// reported during validation when available.
func NewEntry(config engine.Config, meta *engine.Metadata) Entry {
	entry := Entry{
		ID:       uuid.NewString(),
		Enabled:  true,
		Created:  time.Now(),
		Metadata: meta,
		Engine:   config,
	}

	entry.DisplayName = config.Name
	if meta != nil {
		entry.Author = meta.Author
		if entry.DisplayName == "" {
			entry.DisplayName = meta.Name
		}
	}

	// Debug logging: Engine's Details
	logrus.WithFields(logrus.Fields{
		"id":     entry.ID,
		"name":   entry.DisplayName,
		"author": entry.Author,
		"cmd":    config.Cmd,
	}).Debug("Figured out basic engine details")

	return entry
}

// builtinID is the stable id of the catalogue entry of a builtin engine.
func builtinID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("sente:builtin:"+name)).String()
}

func builtinEntry(name string, info data.EngineInfo) Entry {
	return Entry{
		ID:          builtinID(name),
		DisplayName: name,
		Author:      info.Author,
		Builtin:     true,
		Enabled:     true,
		Engine:      engine.Config{Name: name},
	}
}

// Config returns the process configuration of the entry, named with its
// display name.
func (entry *Entry) Config() engine.Config {
	config := entry.Engine
	config.Name = entry.DisplayName
	config.Options = maps.Clone(entry.Engine.Options)
	return config
}

// Factory returns the Factory starting sessions of the engine.
func (entry *Entry) Factory(oracle shogi.Oracle) (engine.Factory, error) {
	if !entry.Enabled {
		return nil, fmt.Errorf("manager: engine %s is disabled", entry.DisplayName)
	}

	if entry.Builtin {
		factory, found := data.Factory(entry.Engine.Name, oracle)
		if !found {
			return nil, fmt.Errorf("manager: unknown builtin engine %s", entry.Engine.Name)
		}

		return factory, nil
	}

	return engine.NewProcessFactory(entry.Config()), nil
}

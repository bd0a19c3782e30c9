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

// Package config loads the settings shared by every sente command. Values
// come from the defaults, then the yaml configuration file, then the
// SENTE_* environment variables, each overriding the last.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/sente/pkg/endgame"
	"laptudirm.com/x/sente/pkg/engine"
	"laptudirm.com/x/sente/pkg/game"
	"laptudirm.com/x/sente/pkg/shogi"
	"laptudirm.com/x/sente/pkg/usi"
)

// DefaultPath is the configuration file read when none is given.
var DefaultPath = filepath.Join(xdg.ConfigHome, "sente", "config.yaml")

type Config struct {
	// Time control of new games.
	Base      time.Duration `yaml:"base" env:"SENTE_BASE"`
	Byoyomi   time.Duration `yaml:"byoyomi" env:"SENTE_BYOYOMI"`
	Increment time.Duration `yaml:"increment" env:"SENTE_INCREMENT"`

	// Grace is the time an engine is given past its budget before its
	// search is declared timed out.
	Grace time.Duration `yaml:"grace" env:"SENTE_GRACE"`

	TimeoutPolicy game.TimeoutPolicy `yaml:"timeout-policy" env:"SENTE_TIMEOUT_POLICY"`
	FaultPolicy   game.FaultPolicy   `yaml:"fault-policy" env:"SENTE_FAULT_POLICY"`

	// MaxMoves draws a game after that many plies. Zero means no limit.
	MaxMoves   int `yaml:"max-moves" env:"SENTE_MAX_MOVES"`
	Repetition int `yaml:"repetition" env:"SENTE_REPETITION"`

	Impasse endgame.ImpasseRules `yaml:"impasse" envPrefix:"SENTE_IMPASSE_"`

	// Store is the game store: a directory, or a redis:// url.
	Store string `yaml:"store,omitempty" env:"SENTE_STORE"`

	// Engines is the path of the engine catalogue.
	Engines string `yaml:"engines,omitempty" env:"SENTE_ENGINES"`
}

// unsetByoyomi marks a byoyomi neither the file nor the environment set.
const unsetByoyomi time.Duration = -1

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Byoyomi:    10 * time.Second,
		Grace:      engine.DefaultGrace,
		Repetition: 4,
		Impasse:    endgame.DefaultImpasse,
	}
}

// Load reads the configuration file at path over the defaults and applies
// the environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	config := Default()

	// The default byoyomi only applies when no increment is configured.
	config.Byoyomi = unsetByoyomi

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return config, fmt.Errorf("config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return config, fmt.Errorf("config: parse env: %w", err)
	}

	if config.Byoyomi == unsetByoyomi {
		config.Byoyomi = 0
		if config.Increment == 0 {
			config.Byoyomi = Default().Byoyomi
		}
	}

	return config, config.Validate()
}

// Validate reports settings no game could be played with.
func (config Config) Validate() error {
	switch {
	case config.Base < 0, config.Byoyomi < 0, config.Increment < 0, config.Grace < 0:
		return errors.New("config: durations must not be negative")
	case config.Base == 0 && config.Byoyomi == 0 && config.Increment == 0:
		return errors.New("config: the time control gives no time to think")
	case config.Byoyomi > 0 && config.Increment > 0:
		return errors.New("config: byoyomi and increment are exclusive")
	case config.Repetition < 2:
		return fmt.Errorf("config: repetition count %d is below 2", config.Repetition)
	case config.MaxMoves < 0:
		return fmt.Errorf("config: negative max-moves %d", config.MaxMoves)
	}

	return nil
}

// TimeControl returns the configured time control.
func (config Config) TimeControl() usi.TimeControl {
	return usi.TimeControl{
		Base:    config.Base,
		Byoyomi: config.Byoyomi,
		Inc:     config.Increment,
	}
}

// SetTimeControl replaces the configured time control.
func (config *Config) SetTimeControl(tc usi.TimeControl) {
	config.Base, config.Byoyomi, config.Increment = tc.Base, tc.Byoyomi, tc.Inc
}

// Options returns the controller options for the configuration.
func (config Config) Options(oracle shogi.Oracle) game.Options {
	detector := endgame.NewDetector(oracle)
	detector.Repetition = config.Repetition
	detector.MaxPlies = config.MaxMoves
	detector.Impasse = config.Impasse

	return game.Options{
		Oracle:        oracle,
		Detector:      detector,
		TimeControl:   config.TimeControl(),
		TimeoutPolicy: config.TimeoutPolicy,
		FaultPolicy:   config.FaultPolicy,
	}
}

// Write writes the configuration to path in yaml, creating its directory.
func (config Config) Write(path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"laptudirm.com/x/sente/pkg/manager"
)

// run executes the root command with the engine catalogue at path.
func run(t *testing.T, path string, args ...string) string {
	t.Helper()
	t.Setenv("SENTE_ENGINES", path)

	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))

	if err := root.Execute(); err != nil {
		t.Fatalf("sente %s: %v", strings.Join(args, " "), err)
	}

	return out.String()
}

func TestCatalogueCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engines.yaml")

	run(t, path, "clone", "Random", "Lucky")
	run(t, path, "rename", "Lucky", "Dice")
	out := run(t, path, "engines", "--disable", "dice", "--favorite", "Dice")

	if !strings.Contains(out, "Dice") || !strings.Contains(out, "(disabled)") {
		t.Errorf("listing does not show the disabled clone:\n%s", out)
	}

	catalogue, err := manager.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := catalogue.Find("Lucky"); err == nil {
		t.Error("the clone kept its old name")
	}

	dice, err := catalogue.Find("Dice")
	if err != nil {
		t.Fatalf("renamed clone: %v", err)
	}

	if dice.Enabled || !dice.Favorite {
		t.Errorf("clone: enabled %t favorite %t", dice.Enabled, dice.Favorite)
	}

	// a disabled favorite cannot be played
	if _, err := resolvePlayer(catalogue, "favorite"); err == nil {
		t.Error("a disabled engine was resolved")
	}

	run(t, path, "engines", "--enable", "Dice")

	catalogue, _ = manager.Open(path)
	player, err := resolvePlayer(catalogue, "favorite")
	if err != nil {
		t.Fatalf("favorite: %v", err)
	}

	if player.Name != "Dice" || player.IsHuman() {
		t.Errorf("favorite resolved to %+v", player)
	}
}

func TestFavoriteFallsBackToRandom(t *testing.T) {
	catalogue, err := manager.Open("")
	if err != nil {
		t.Fatal(err)
	}

	player, err := resolvePlayer(catalogue, "favorite")
	if err != nil {
		t.Fatalf("favorite: %v", err)
	}

	if player.Name != "Random" {
		t.Errorf("got %s, want Random", player.Name)
	}
}

func TestResolveSurvivesTouchFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engines.yaml")
	catalogue, err := manager.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	// the catalogue can no longer be written
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatal(err)
	}

	hook := logtest.NewGlobal()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer logrus.SetLevel(level)

	player, err := resolvePlayer(catalogue, "Random")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if player.Name != "Random" {
		t.Errorf("got %s, want Random", player.Name)
	}

	logged := false
	for _, entry := range hook.AllEntries() {
		logged = logged || strings.Contains(entry.Message, "touch Random")
	}

	if !logged {
		t.Error("touch failure was not logged")
	}
}

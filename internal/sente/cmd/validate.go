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
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/sente/pkg/engine"
	"laptudirm.com/x/sente/internal/util"
)

// validationTimeout bounds the whole handshake of an engine under
// validation.
const validationTimeout = 45 * time.Second

func Validate() *cobra.Command {
	return &cobra.Command{
		Use:   "validate { engine | path }",
		Short: "Check that a program is a working usi engine",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := engineConfig(args[0])
			if err != nil {
				return err
			}

			meta, err := validate(cmd.Context(), config)
			if err != nil {
				return err
			}

			printMetadata(cmd.OutOrStdout(), meta)
			return nil
		},
	}
}

// engineConfig returns the process configuration of a catalogued engine,
// or of the executable at the given path.
func engineConfig(key string) (engine.Config, error) {
	catalogue, err := openCatalogue()
	if err != nil {
		return engine.Config{}, err
	}

	if entry, err := catalogue.Find(key); err == nil {
		if entry.Builtin {
			return engine.Config{}, fmt.Errorf("%s is a builtin engine", entry.DisplayName)
		}

		return entry.Config(), nil
	}

	path, err := exec.LookPath(key)
	if err != nil {
		return engine.Config{}, fmt.Errorf("%s is neither a registered engine nor an executable", key)
	}

	return engine.Config{Name: filepath.Base(path), Cmd: path}, nil
}

func validate(ctx context.Context, config engine.Config) (engine.Metadata, error) {
	logrus.Infof("Validating %s...", config.Cmd)

	ctx, cancel := context.WithTimeout(ctx, validationTimeout)
	defer cancel()

	util.StartSpinner("waiting for the engine")
	meta, err := engine.Validate(ctx, config)
	util.PauseSpinner()

	if err != nil {
		return meta, fmt.Errorf("%s is not a usi engine: %w", config.Cmd, err)
	}

	return meta, nil
}

func printMetadata(out io.Writer, meta engine.Metadata) {
	fmt.Fprintf(out, "\x1b[32m%s\x1b[0m by %s\n", meta.Name, meta.Author)
	if len(meta.Options) == 0 {
		return
	}

	fmt.Fprintln(out, "\nOptions:")
	for _, option := range meta.Options {
		line := fmt.Sprintf("  %-24s %-7s", option.Name, option.Type)
		if option.Default != "" {
			line += " default " + option.Default
		}
		if option.Min != nil && option.Max != nil {
			line += fmt.Sprintf(" [%d, %d]", *option.Min, *option.Max)
		}
		if len(option.Vars) > 0 {
			line += " {" + strings.Join(option.Vars, ", ") + "}"
		}

		fmt.Fprintln(out, line)
	}
}

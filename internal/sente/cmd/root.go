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
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/sente/pkg/config"
	"laptudirm.com/x/sente/pkg/usi"
)

// settings is the configuration every command runs with, loaded before
// the command by the root's pre-run hook.
var settings = config.Default()

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:  "sente",
		Args: cobra.NoArgs,
		Long: heredoc.Doc(`sente plays shogi games between humans and usi engines.

			Games are checkpointed after every move and can be resumed,
			listed and exported as KIF. Engines are registered once with
			"sente add" and then referred to by name.`),

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// If --trace flag is provided, set logging level to Trace.
			if cmd.Flag("trace").Changed {
				logrus.SetLevel(logrus.TraceLevel)
			} else if cmd.Flag("debug").Changed {
				logrus.SetLevel(logrus.DebugLevel)
			}

			path, _ := cmd.Flags().GetString("config")
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}

			settings = loaded
			return applyFlags(cmd)
		},
	}

	// global flags
	root.PersistentFlags().BoolP("help", "h", false, "Show Help Information")
	root.PersistentFlags().BoolP("version", "v", false, "Show Sente's Version")
	root.PersistentFlags().BoolP("trace", "t", false, "Show Trace Information")
	root.PersistentFlags().BoolP("debug", "d", false, "Show Debug Information")
	root.PersistentFlags().String("config", config.DefaultPath, "Configuration file")

	versionStr := "v0.1.0\n"
	root.SetVersionTemplate(versionStr)
	root.Version = versionStr

	// Register the various commands.
	root.AddCommand(Play())
	root.AddCommand(Resume())
	root.AddCommand(Match())
	root.AddCommand(Engines())
	root.AddCommand(Add())
	root.AddCommand(Remove())
	root.AddCommand(Clone())
	root.AddCommand(Rename())
	root.AddCommand(Validate())
	root.AddCommand(Games())
	root.AddCommand(Export())
	root.AddCommand(Config())

	return root
}

// gameFlags registers the flags which override the game settings.
func gameFlags(cmd *cobra.Command) {
	cmd.Flags().String("tc", "", "Time control, base+byoyomi or base+inci in seconds")
	cmd.Flags().Int("max-moves", 0, "Draw games after this many moves")
	cmd.Flags().String("store", "", "Game store, a directory or a redis:// url")
}

func applyFlags(cmd *cobra.Command) error {
	if flag := cmd.Flags().Lookup("tc"); flag != nil && flag.Changed {
		tc, err := usi.ParseTime(flag.Value.String())
		if err != nil {
			return err
		}

		settings.SetTimeControl(tc)
	}

	if flag := cmd.Flags().Lookup("max-moves"); flag != nil && flag.Changed {
		settings.MaxMoves, _ = cmd.Flags().GetInt("max-moves")
	}

	if flag := cmd.Flags().Lookup("store"); flag != nil && flag.Changed {
		settings.Store = flag.Value.String()
	}

	return settings.Validate()
}

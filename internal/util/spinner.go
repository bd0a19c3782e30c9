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

package util

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

const spinnerCharSet = 14

var working = spinner.New(spinner.CharSets[spinnerCharSet], 100*time.Millisecond, spinner.WithWriter(os.Stderr))

// StartSpinner shows the working spinner while a slow operation, such as
// an engine handshake, runs. Nothing is shown when stderr is not a
// terminal.
func StartSpinner(suffix string) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}

	working.Suffix = " " + suffix
	working.Start()
}

// PauseSpinner hides the working spinner.
func PauseSpinner() {
	working.Stop()
}

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

package game

import "errors"

var (
	ErrNoGame      = errors.New("game: no game in progress")
	ErrNotYourTurn = errors.New("game: not a human's turn")
	ErrGameOver    = errors.New("game: game is over")
	ErrSuperseded  = errors.New("game: superseded by a newer game")
	ErrRejected    = errors.New("game: move rejected")
	ErrNotPaused   = errors.New("game: role is not awaiting a replacement engine")
)

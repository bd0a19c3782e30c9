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

import "fmt"

// TimeoutPolicy decides what happens when an engine does not answer a
// search within its budget.
type TimeoutPolicy int

const (
	// RetryOnce repeats the search once. A second timeout is handled as
	// any other engine fault.
	RetryOnce TimeoutPolicy = iota

	// ForfeitOnTimeout ends the game at once, lost by the silent engine.
	ForfeitOnTimeout
)

func (policy TimeoutPolicy) String() string {
	switch policy {
	case RetryOnce:
		return "retry-once"
	case ForfeitOnTimeout:
		return "forfeit"
	default:
		return "unknown"
	}
}

func (policy TimeoutPolicy) MarshalText() ([]byte, error) {
	return []byte(policy.String()), nil
}

func (policy *TimeoutPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "retry-once", "retry", "":
		*policy = RetryOnce
	case "forfeit":
		*policy = ForfeitOnTimeout
	default:
		return fmt.Errorf("game: invalid timeout policy %q", text)
	}

	return nil
}

// FaultPolicy decides what happens when an engine fails: it crashes,
// violates the protocol, or keeps timing out.
type FaultPolicy int

const (
	// Pause suspends the game until the engine is replaced, or the game
	// is resigned or aborted.
	Pause FaultPolicy = iota

	// Forfeit ends the game, lost by the failed engine.
	Forfeit
)

func (policy FaultPolicy) String() string {
	switch policy {
	case Pause:
		return "pause"
	case Forfeit:
		return "forfeit"
	default:
		return "unknown"
	}
}

func (policy FaultPolicy) MarshalText() ([]byte, error) {
	return []byte(policy.String()), nil
}

func (policy *FaultPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pause", "":
		*policy = Pause
	case "forfeit":
		*policy = Forfeit
	default:
		return fmt.Errorf("game: invalid fault policy %q", text)
	}

	return nil
}

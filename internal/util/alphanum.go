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
	"regexp"
	"strconv"
	"strings"
)

var chunkifyRegexp = regexp.MustCompile(`(\d+|\D+)`)

func chunkify(s string) []string {
	return chunkifyRegexp.FindAllString(strings.ToLower(s), -1)
}

// AlphanumLess orders strings the way people expect engine names to be
// ordered: runs of digits compare by value, so "engine-9" sorts before
// "engine-10", and letters compare without regard to case.
func AlphanumLess(a, b string) bool {
	chunksA, chunksB := chunkify(a), chunkify(b)

	for i := 0; i < len(chunksA) && i < len(chunksB); i++ {
		chunkA, chunkB := chunksA[i], chunksB[i]
		if chunkA == chunkB {
			continue
		}

		// If both chunks are numeric, compare them as integers
		intA, errA := strconv.Atoi(chunkA)
		intB, errB := strconv.Atoi(chunkB)
		if errA == nil && errB == nil && intA != intB {
			return intA < intB
		}

		return chunkA < chunkB
	}

	// One is a prefix of the other; the shorter sorts first.
	return len(chunksA) < len(chunksB)
}

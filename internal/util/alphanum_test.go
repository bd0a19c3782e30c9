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
	"sort"
	"testing"
)

func TestAlphanumLess(t *testing.T) {
	tests := []struct {
		a, b string
		less bool
	}{
		{"engine-9", "engine-10", true},
		{"engine-10", "engine-9", false},
		{"Apery", "elmo", true},
		{"YaneuraOu", "yaneuraou 7", true},
		{"yaneuraou 7", "YaneuraOu", false},
		{"same", "same", false},
		{"v1.2", "v1.10", true},
	}

	for _, test := range tests {
		if got := AlphanumLess(test.a, test.b); got != test.less {
			t.Errorf("AlphanumLess(%q, %q) = %v, want %v", test.a, test.b, got, test.less)
		}
	}

	names := []string{"gikou 2", "Random", "gikou 10", "Apery"}
	sort.Slice(names, func(i, j int) bool { return AlphanumLess(names[i], names[j]) })

	want := []string{"Apery", "gikou 2", "gikou 10", "Random"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sorted: got %v, want %v", names, want)
		}
	}
}

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
	"path/filepath"

	"laptudirm.com/x/sente/pkg/common"
)

// EnginesFile is the path to the lockfile used by the manager to keep
// track of the registered engines.
var EnginesFile = filepath.Join(common.Directory, "engines.yaml")

// CatalogueVersion is the version of the lockfile format.
const CatalogueVersion = "1"

// Copyright 2024 The Deltajoin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package render

import (
	"sync"

	"github.com/mitchellh/hashstructure"

	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/sql/expression"
)

// dedupRegistry ensures that the error collection of any arrangement
// imported multiple times across delta streams contributes to the
// combined error set only once (spec §4.4 "Error-arrangement
// deduplication", §9 "Error dedup identity"). It keeps separate seen
// sets for local and trace arrangements, as spec.md specifies, and is
// local to a single render invocation.
type dedupRegistry struct {
	mu        sync.Mutex
	seenLocal map[uint64]bool
	seenTrace map[uint64]bool
}

func newDedupRegistry() *dedupRegistry {
	return &dedupRegistry{
		seenLocal: make(map[uint64]bool),
		seenTrace: make(map[uint64]bool),
	}
}

// hashKey is hashed (by value, via reflection) to build a stable
// structural dedup key for (peer relation identity, key-expression
// list). Expressions are reduced to a canonical string form that leaves
// out column display names, so that structurally equal keys (in the
// sense of rewrite.Equal) dedup together.
type hashKey struct {
	Identity string
	Keys     []string
}

func keyHash(identity string, keys []expression.Expression) (uint64, error) {
	var canon func(e expression.Expression) string
	canon = func(e expression.Expression) string {
		switch v := e.(type) {
		case *expression.Column:
			return expression.NewColumn(v.Index, "").String()
		case *expression.Equals:
			return "(" + canon(v.Left) + " = " + canon(v.Right) + ")"
		case *expression.Compare:
			return "(" + canon(v.Left) + " " + v.Op.String() + " " + canon(v.Right) + ")"
		case *expression.And:
			return "(" + canon(v.Left) + " AND " + canon(v.Right) + ")"
		default:
			return e.String()
		}
	}
	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = canon(k)
	}
	return hashstructure.Hash(hashKey{Identity: identity, Keys: strs}, nil)
}

// firstUse reports whether this is the first time (arr, key) has been
// seen in this render invocation. It records the pair as seen as a side
// effect, so later calls with the same pair return false.
func (d *dedupRegistry) firstUse(arr dataflow.Arrangement, key []expression.Expression) (bool, error) {
	h, err := keyHash(arr.Identity(), key)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	seen := d.seenLocal
	if arr.Flavor() == dataflow.Trace {
		seen = d.seenTrace
	}
	if seen[h] {
		return false, nil
	}
	seen[h] = true
	return true, nil
}

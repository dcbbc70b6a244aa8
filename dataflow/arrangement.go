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

package dataflow

import (
	"fmt"

	"github.com/deltastream/deltajoin/sql"
)

// ArrangementFlavor distinguishes an arrangement built inside the same
// dataflow from one imported from an external catalog by global
// identifier. The distinction only affects where the ok/error
// collections come from; the alt/neu timestamp rule the renderer
// applies is the same for both (spec §3, §4.4).
type ArrangementFlavor int

const (
	Local ArrangementFlavor = iota
	Trace
)

// Arrangement is a keyed, time-versioned index over a collection,
// supporting random access at any valid time. Building and maintaining
// the index itself is an external collaborator (spec §1); the renderer
// only ever calls Lookup.
type Arrangement interface {
	// Lookup returns every update on record for the given key, across
	// all times. The caller (the lookup operator) is responsible for
	// filtering by the visibility the alt/neu rule requires.
	Lookup(ctx *sql.Context, key sql.Row) ([]Update, error)
	// Errors returns the arrangement's own intrinsic error collection.
	Errors() Collection
	Flavor() ArrangementFlavor
	// Identity is a stable string identifying the underlying relation,
	// used as half of the error-dedup key (spec §4.4, §9).
	Identity() string
}

// MemoryArrangement is an in-memory Arrangement, keyed by the string
// form of the key row. It backs both Local arrangements produced
// inside a test dataflow and, via catalog.BoltCatalog, the persisted
// form of a Trace arrangement.
type MemoryArrangement struct {
	identity string
	flavor   ArrangementFlavor
	index    map[string][]Update
	errs     Collection
}

// NewMemoryArrangement builds an Arrangement over updates, indexed by
// keyFunc(row).
func NewMemoryArrangement(identity string, flavor ArrangementFlavor, updates []Update, errs Collection, keyFunc func(sql.Row) sql.Row) *MemoryArrangement {
	index := make(map[string][]Update)
	for _, u := range updates {
		k := keyString(keyFunc(u.Row))
		index[k] = append(index[k], u)
	}
	return &MemoryArrangement{identity: identity, flavor: flavor, index: index, errs: errs}
}

func (a *MemoryArrangement) Lookup(_ *sql.Context, key sql.Row) ([]Update, error) {
	return a.index[keyString(key)], nil
}

func (a *MemoryArrangement) Errors() Collection { return a.errs }

func (a *MemoryArrangement) Flavor() ArrangementFlavor { return a.flavor }

func (a *MemoryArrangement) Identity() string { return a.identity }

func keyString(key sql.Row) string {
	return fmt.Sprintf("%v", []sql.Datum(key))
}

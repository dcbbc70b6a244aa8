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

// Package catalog provides the external collaborators the render core
// treats as out of scope (spec §1): something that holds each input's
// current collection, and something that hands back arrangement
// handles keyed by expression lists. Memory is the in-memory reference
// implementation, suitable for tests and the demo CLI; BoltCatalog
// backs the Trace half with github.com/boltdb/bolt so there's a real
// external-catalog stand-in to import from (spec §3, "Trace... imported
// from an external catalog by a global identifier").
package catalog

import (
	"fmt"
	"sync"

	"github.com/mitchellh/hashstructure"

	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/plan"
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
)

// Memory is an in-memory render.Context: every input's collection and
// every arrangement it can hand out are registered ahead of time.
type Memory struct {
	mu           sync.Mutex
	collections  map[string]collectionEntry
	arrangements map[uint64]dataflow.Arrangement
	subtract     dataflow.Subtract
	rendered     map[string]bool
}

type collectionEntry struct {
	ok, errs dataflow.Collection
}

// NewMemory returns an empty Memory catalog using subtract as the
// AltNeu compensation function.
func NewMemory(subtract dataflow.Subtract) *Memory {
	return &Memory{
		collections:  make(map[string]collectionEntry),
		arrangements: make(map[uint64]dataflow.Arrangement),
		rendered:     make(map[string]bool),
		subtract:     subtract,
	}
}

// SetCollection registers rel's (ok, error) collection pair.
func (m *Memory) SetCollection(rel plan.Relation, ok, errs dataflow.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[rel.ID.String()] = collectionEntry{ok: ok, errs: errs}
}

// AddArrangement registers arr as the arrangement of rel keyed by key.
func (m *Memory) AddArrangement(rel plan.Relation, key []expression.Expression, arr dataflow.Arrangement) error {
	h, err := arrangementKey(rel, key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arrangements[h] = arr
	return nil
}

func (m *Memory) Collection(rel plan.Relation) (dataflow.Collection, dataflow.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.collections[rel.ID.String()]
	if !ok {
		return dataflow.Empty(), dataflow.Empty(), fmt.Errorf("catalog: no collection registered for relation %s", rel.Name)
	}
	return entry.ok, entry.errs, nil
}

func (m *Memory) Arrangement(rel plan.Relation, key []expression.Expression) (dataflow.Arrangement, bool) {
	h, err := arrangementKey(rel, key)
	if err != nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	arr, ok := m.arrangements[h]
	return arr, ok
}

func (m *Memory) EnsureRendered(_ *sql.Context, rel plan.Relation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendered[rel.ID.String()] = true
	return nil
}

func (m *Memory) Subtract() dataflow.Subtract {
	return m.subtract
}

func arrangementKey(rel plan.Relation, key []expression.Expression) (uint64, error) {
	strs := make([]string, len(key))
	for i, e := range key {
		strs[i] = e.String()
	}
	return hashstructure.Hash(struct {
		Relation string
		Key      []string
	}{Relation: rel.ID.String(), Key: strs}, nil)
}

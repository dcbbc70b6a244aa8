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

// Package plan describes a delta-query join as a declarative value:
// the input relations, the equivalence classes asserting which
// expressions must be equal, and the per-input traversal orders. It is
// the planner-facing half of the core; cost-based join ordering and SQL
// planning that choose these values are external collaborators (spec
// §1) -- this package only holds their output.
package plan

import (
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
	uuid "github.com/satori/go.uuid"
)

// Relation identifies one input to the join: a stable global identity
// (used as the error-dedup and trace-catalog key) plus its local
// schema.
type Relation struct {
	ID     uuid.UUID
	Name   string
	Schema sql.Schema
}

// NewRelation returns a Relation with a freshly generated global
// identity.
func NewRelation(name string, schema sql.Schema) Relation {
	return Relation{ID: uuid.Must(uuid.NewV4()), Name: name, Schema: schema}
}

// EquivalenceClass is a set of scalar expressions, in global column
// space, asserted to be pairwise equal under null-equal semantics. The
// join's semantics are the natural join over the union of these
// classes (spec §3).
type EquivalenceClass []expression.Expression

// Clone returns a deep-enough copy of the class suitable for a
// per-delta-stream mutable working set: the slice header is
// independent, though the expressions themselves (immutable) are
// shared.
func (c EquivalenceClass) Clone() EquivalenceClass {
	out := make(EquivalenceClass, len(c))
	copy(out, c)
	return out
}

// OrderEntry describes one step of a delta stream's traversal: join
// against Peer next, using KeyExprs (expressed in Peer's own local
// column space) as the join key.
type OrderEntry struct {
	Peer     int
	KeyExprs []expression.Expression
}

// JoinPlan is the declarative input to the renderer: which relations
// participate, what must be equal, and in what order each delta stream
// visits its peers.
type JoinPlan struct {
	Inputs       []Relation
	Equivalences []EquivalenceClass
	Orders       [][]OrderEntry // Orders[r] is the traversal order for the delta stream rooted at input r
}

// CloneEquivalences returns an independent copy of the plan's
// equivalence classes, safe for one delta-stream builder to mutate
// without affecting any other stream (spec §9, "per-delta mutable plan
// state").
func (p *JoinPlan) CloneEquivalences() []EquivalenceClass {
	out := make([]EquivalenceClass, len(p.Equivalences))
	for i, c := range p.Equivalences {
		out[i] = c.Clone()
	}
	return out
}

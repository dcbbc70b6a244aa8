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
	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/plan"
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
)

// Context is everything the renderer needs from the surrounding engine
// (spec §6): how to get at an input's current collection, how to look
// up an arrangement of a peer keyed a particular way, how to make sure
// a relation has actually been rendered before it's used, and the
// subtract function used for AltNeu compensation. Building these
// collections and arrangements is entirely an external collaborator's
// responsibility; the renderer only ever calls through this interface.
type Context interface {
	// Collection returns the (ok, error) pair for an input relation.
	Collection(rel plan.Relation) (dataflow.Collection, dataflow.Collection, error)
	// Arrangement returns the arrangement of rel keyed by key, if one
	// exists.
	Arrangement(rel plan.Relation, key []expression.Expression) (dataflow.Arrangement, bool)
	// EnsureRendered idempotently triggers materialization of rel.
	EnsureRendered(ctx *sql.Context, rel plan.Relation) error
	// Subtract returns the immediate predecessor of an inner timestamp.
	Subtract() dataflow.Subtract
}

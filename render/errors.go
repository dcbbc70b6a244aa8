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

// Package render is the delta-join rendering core: it translates a
// plan.JoinPlan into a network of delta streams whose concatenated
// output is the join's changelog (spec §1, §2, §4).
package render

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

// Plan-invariant violations are fatal: each one indicates a bug in the
// planner that produced the plan.JoinPlan, not a runtime condition the
// renderer can recover from (spec §7).
var (
	// ErrColumnNotInProvenance fires when a column reference cannot be
	// resolved against the current working row -- the planner handed
	// the renderer an expression whose columns aren't actually bound
	// yet.
	ErrColumnNotInProvenance = errors.NewKind("column %d is not present in the working row")

	// ErrKeyNotBound fires when a delta stream's traversal order calls
	// for a join key with no equivalent expression already bound by a
	// prior step (spec §4.4.b).
	ErrKeyNotBound = errors.NewKind("join key expression %s has no bound equivalent while building the delta stream rooted at relation %s")

	// ErrArrangementMissing fires when the render.Context has no
	// arrangement for a (peer, key) pair the traversal order asks for.
	ErrArrangementMissing = errors.NewKind("no arrangement available for relation %s keyed by %v")

	// ErrNotDeltaQuery fires when render_delta_join is invoked on a
	// plan that isn't the delta-query join variant.
	ErrNotDeltaQuery = errors.NewKind("plan is not a delta-query join: %s")

	// ErrRelationNotRendered fires when ensure_rendered could not
	// materialize one of the plan's inputs.
	ErrRelationNotRendered = errors.NewKind("relation %s could not be rendered: %s")
)

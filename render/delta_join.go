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
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/plan"
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
)

// RenderDeltaJoin is the core's external interface (spec §6): given a
// join plan and the residual predicates that didn't get fully
// evaluated during planning, it builds one delta stream per input,
// concatenates their outputs, and returns the combined (ok, error)
// pair. It aborts immediately, without partially building the graph,
// if the plan is structurally invalid.
func RenderDeltaJoin(ctx *sql.Context, rc Context, jp *plan.JoinPlan, predicates []expression.Expression) (dataflow.Collection, dataflow.Collection, error) {
	if err := validate(jp); err != nil {
		return dataflow.Empty(), dataflow.Empty(), err
	}

	outer := dataflow.NewRegion()
	mapper := plan.NewInputColumnMapper(jp.Inputs)

	for _, rel := range jp.Inputs {
		if err := rc.EnsureRendered(ctx, rel); err != nil {
			return dataflow.Empty(), dataflow.Empty(), ErrRelationNotRendered.New(rel.Name, err.Error())
		}
	}

	dedup := newDedupRegistry()
	inner := outer // the inner AltNeu-refined scope's errors are concatenated into the outer scope below; the inner/outer distinction in spec §4.5 is a scheduling boundary our synchronous model collapses, see DESIGN.md.

	var outputs []dataflow.Collection
	for root := range jp.Inputs {
		streamCtx, span := ctx.WithRegion(opentracing.GlobalTracer(), "delta_stream:"+jp.Inputs[root].Name)
		if span != nil {
			defer span.Finish()
		}

		builder := newDeltaStreamBuilder(streamCtx, rc, jp, mapper, root, predicates, dedup)
		ok, err := builder.build()
		if err != nil {
			return dataflow.Empty(), dataflow.Empty(), errors.Wrapf(err, "rendering delta stream rooted at %s", jp.Inputs[root].Name)
		}

		outputs = append(outputs, ok)
		inner.Add(builder.region.Errors())
	}

	return dataflow.ConcatAll(outputs...), outer.Errors(), nil
}

// validate implements the fatal pre-checks of spec §4.5 and §7: the
// plan must actually describe a delta-query join, and its traversal
// orders must be internally consistent.
func validate(jp *plan.JoinPlan) error {
	if jp == nil || len(jp.Inputs) == 0 {
		return ErrNotDeltaQuery.New("plan has no inputs")
	}
	if len(jp.Orders) != len(jp.Inputs) {
		return ErrNotDeltaQuery.New("plan does not have exactly one order list per input")
	}
	for root, order := range jp.Orders {
		for _, entry := range order {
			if entry.Peer < 0 || entry.Peer >= len(jp.Inputs) || entry.Peer == root {
				return ErrNotDeltaQuery.New("traversal order for input references an invalid peer")
			}
		}
	}
	return nil
}

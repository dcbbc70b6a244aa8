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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deltastream/deltajoin/catalog"
	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/plan"
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
)

// twoInputPlan builds R(a, b) join S(b, c) on R.b = S.b: R's global
// columns are 0 (a), 1 (b); S's are 2 (b), 3 (c).
func twoInputPlan() (*plan.JoinPlan, plan.Relation, plan.Relation) {
	r := plan.NewRelation("r", sql.Schema{{Name: "a"}, {Name: "b"}})
	s := plan.NewRelation("s", sql.Schema{{Name: "b"}, {Name: "c"}})

	jp := &plan.JoinPlan{
		Inputs: []plan.Relation{r, s},
		Equivalences: []plan.EquivalenceClass{
			{expression.NewColumn(1, "r.b"), expression.NewColumn(2, "s.b")},
		},
		Orders: [][]plan.OrderEntry{
			{{Peer: 1, KeyExprs: []expression.Expression{expression.NewColumn(0, "s.b")}}}, // rooted at r
			{{Peer: 0, KeyExprs: []expression.Expression{expression.NewColumn(1, "r.b")}}}, // rooted at s
		},
	}
	return jp, r, s
}

func buildArrangement(t *testing.T, ctx *sql.Context, identity string, rows dataflow.Collection, keyLocal int) dataflow.Arrangement {
	t.Helper()
	arr, err := dataflow.ArrangeBy(ctx, identity, dataflow.Local, rows, dataflow.Empty(), []expression.Expression{expression.NewColumn(keyLocal, "")})
	require.NoError(t, err)
	return arr
}

func TestRenderDeltaJoinConcurrentUpdateNotDoubleCounted(t *testing.T) {
	ctx := sql.NewEmptyContext()
	jp, r, s := twoInputPlan()

	rRows := dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(1), int64(10)), dataflow.Moment(5), 1))
	sRows := dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(10), "x"), dataflow.Moment(5), 1))

	mem := catalog.NewMemory(dataflow.MomentSubtract)
	mem.SetCollection(r, rRows, dataflow.Empty())
	mem.SetCollection(s, sRows, dataflow.Empty())
	require.NoError(t, mem.AddArrangement(s, jp.Orders[0][0].KeyExprs, buildArrangement(t, ctx, "s", sRows, 0)))
	require.NoError(t, mem.AddArrangement(r, jp.Orders[1][0].KeyExprs, buildArrangement(t, ctx, "r", rRows, 1)))

	ok, errs, err := RenderDeltaJoin(ctx, mem, jp, nil)
	require.NoError(t, err)
	require.Equal(t, 0, errs.Len())
	// Both rows arrive at the same logical time: exactly one of the two
	// delta streams (the neu side) may observe the pairing. The other
	// (alt) sees the peer's update as not-yet-visible. Net result: the
	// pair is counted exactly once.
	require.Equal(t, 1, ok.Len())
	require.Equal(t, sql.Row{int64(1), int64(10), int64(10), "x"}, ok.Updates[0].Row)
}

func TestRenderDeltaJoinNonConcurrentUpdateEmittedOnce(t *testing.T) {
	ctx := sql.NewEmptyContext()
	jp, r, s := twoInputPlan()

	// s's row has been present since time 1; r's new row arrives at time
	// 5. r's delta stream (alt, sees s strictly before 5) finds it; s's
	// delta stream is rooted at a row from time 1, and neu only sees peer
	// updates up to that time, so it does not see r's row. The pairing
	// is emitted once, at time 5.
	rRows := dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(1), int64(10)), dataflow.Moment(5), 1))
	sRows := dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(10), "x"), dataflow.Moment(1), 1))

	mem := catalog.NewMemory(dataflow.MomentSubtract)
	mem.SetCollection(r, rRows, dataflow.Empty())
	mem.SetCollection(s, sRows, dataflow.Empty())
	require.NoError(t, mem.AddArrangement(s, jp.Orders[0][0].KeyExprs, buildArrangement(t, ctx, "s", sRows, 0)))
	require.NoError(t, mem.AddArrangement(r, jp.Orders[1][0].KeyExprs, buildArrangement(t, ctx, "r", rRows, 1)))

	ok, errs, err := RenderDeltaJoin(ctx, mem, jp, nil)
	require.NoError(t, err)
	require.Equal(t, 0, errs.Len())
	require.Equal(t, 1, ok.Len())
	require.Equal(t, dataflow.Moment(5), ok.Updates[0].Time)
}

func TestRenderDeltaJoinResidualPredicate(t *testing.T) {
	ctx := sql.NewEmptyContext()
	jp, r, s := twoInputPlan()

	rRows := dataflow.NewCollection(
		dataflow.NewUpdate(sql.NewRow(int64(1), int64(10)), dataflow.Moment(1), 1),
		dataflow.NewUpdate(sql.NewRow(int64(2), int64(10)), dataflow.Moment(1), 1),
	)
	sRows := dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(10), "x"), dataflow.Moment(1), 1))

	mem := catalog.NewMemory(dataflow.MomentSubtract)
	mem.SetCollection(r, rRows, dataflow.Empty())
	mem.SetCollection(s, sRows, dataflow.Empty())
	require.NoError(t, mem.AddArrangement(s, jp.Orders[0][0].KeyExprs, buildArrangement(t, ctx, "s", sRows, 0)))
	require.NoError(t, mem.AddArrangement(r, jp.Orders[1][0].KeyExprs, buildArrangement(t, ctx, "r", rRows, 1)))

	predicates := []expression.Expression{
		expression.NewCompare(expression.GreaterThan, expression.NewColumn(0, "r.a"), expression.NewLiteral(int64(1))),
	}

	ok, errs, err := RenderDeltaJoin(ctx, mem, jp, predicates)
	require.NoError(t, err)
	require.Equal(t, 0, errs.Len())
	require.Equal(t, 1, ok.Len())
	require.Equal(t, int64(2), ok.Updates[0].Row[0])
}

func TestRenderDeltaJoinRejectsMismatchedOrders(t *testing.T) {
	ctx := sql.NewEmptyContext()
	jp, _, _ := twoInputPlan()
	jp.Orders = jp.Orders[:1] // now inconsistent with len(Inputs) == 2

	mem := catalog.NewMemory(dataflow.MomentSubtract)
	_, _, err := RenderDeltaJoin(ctx, mem, jp, nil)
	require.Error(t, err)
}

func TestRenderDeltaJoinMissingArrangementIsFatal(t *testing.T) {
	ctx := sql.NewEmptyContext()
	jp, r, s := twoInputPlan()

	mem := catalog.NewMemory(dataflow.MomentSubtract)
	mem.SetCollection(r, dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(1), int64(10)), dataflow.Moment(1), 1)), dataflow.Empty())
	mem.SetCollection(s, dataflow.Empty(), dataflow.Empty())
	// Deliberately omit AddArrangement for s: the renderer must fail
	// instead of silently skipping the lookup.

	_, _, err := RenderDeltaJoin(ctx, mem, jp, nil)
	require.Error(t, err)
}

func TestRenderDeltaJoinThreeInputTraversal(t *testing.T) {
	ctx := sql.NewEmptyContext()

	r := plan.NewRelation("r", sql.Schema{{Name: "a"}, {Name: "b"}})
	s := plan.NewRelation("s", sql.Schema{{Name: "b"}, {Name: "c"}})
	u := plan.NewRelation("u", sql.Schema{{Name: "c"}})

	// global columns: r.a=0, r.b=1, s.b=2, s.c=3, u.c=4
	jp := &plan.JoinPlan{
		Inputs: []plan.Relation{r, s, u},
		Equivalences: []plan.EquivalenceClass{
			{expression.NewColumn(1, ""), expression.NewColumn(2, "")},
			{expression.NewColumn(3, ""), expression.NewColumn(4, "")},
		},
		Orders: [][]plan.OrderEntry{
			{ // rooted at r: r -> s -> u
				{Peer: 1, KeyExprs: []expression.Expression{expression.NewColumn(0, "")}},
				{Peer: 2, KeyExprs: []expression.Expression{expression.NewColumn(0, "")}},
			},
			{ // rooted at s: s -> r, s -> u
				{Peer: 0, KeyExprs: []expression.Expression{expression.NewColumn(1, "")}},
				{Peer: 2, KeyExprs: []expression.Expression{expression.NewColumn(0, "")}},
			},
			{ // rooted at u: u -> s -> r
				{Peer: 1, KeyExprs: []expression.Expression{expression.NewColumn(1, "")}},
				{Peer: 0, KeyExprs: []expression.Expression{expression.NewColumn(1, "")}},
			},
		},
	}

	rRows := dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(1), int64(10)), dataflow.Moment(1), 1))
	sRows := dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(10), int64(100)), dataflow.Moment(1), 1))
	uRows := dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(100)), dataflow.Moment(1), 1))

	mem := catalog.NewMemory(dataflow.MomentSubtract)
	mem.SetCollection(r, rRows, dataflow.Empty())
	mem.SetCollection(s, sRows, dataflow.Empty())
	mem.SetCollection(u, uRows, dataflow.Empty())

	sByB := []expression.Expression{expression.NewColumn(0, "")}
	sByC := []expression.Expression{expression.NewColumn(1, "")}
	rByB := []expression.Expression{expression.NewColumn(1, "")}
	uByC := []expression.Expression{expression.NewColumn(0, "")}

	require.NoError(t, mem.AddArrangement(s, sByB, buildArrangement(t, ctx, "s-by-b", sRows, 0)))
	require.NoError(t, mem.AddArrangement(s, sByC, buildArrangement(t, ctx, "s-by-c", sRows, 1)))
	require.NoError(t, mem.AddArrangement(r, rByB, buildArrangement(t, ctx, "r-by-b", rRows, 1)))
	require.NoError(t, mem.AddArrangement(u, uByC, buildArrangement(t, ctx, "u-by-c", uRows, 0)))

	ok, errs, err := RenderDeltaJoin(ctx, mem, jp, nil)
	require.NoError(t, err)
	require.Equal(t, 0, errs.Len())
	require.Equal(t, 1, ok.Len())
	require.Equal(t, sql.Row{int64(1), int64(10), int64(10), int64(100), int64(100)}, ok.Updates[0].Row)
}

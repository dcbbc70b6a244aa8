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

	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/plan"
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
)

func TestExtractReadyMovesBoundPredicatesOnly(t *testing.T) {
	prov := NewProvenance([]int{0, 1}) // global columns 0,1 at working-row positions 0,1

	predicates := []expression.Expression{
		expression.NewCompare(expression.GreaterThan, expression.NewColumn(0, ""), expression.NewLiteral(int64(0))),
		expression.NewCompare(expression.LessThan, expression.NewColumn(7, ""), expression.NewLiteral(int64(0))), // column 7 not yet bound
	}
	equivalences := []plan.EquivalenceClass{
		{expression.NewColumn(0, ""), expression.NewColumn(1, "")},
	}

	ready, readyEquivs := extractReady(prov, &predicates, &equivalences)
	require.Len(t, ready, 1)
	require.Len(t, predicates, 1) // the unbound predicate remains
	require.Len(t, readyEquivs, 1)
	require.Empty(t, equivalences) // class fully consumed, dropped
}

func TestApplyFilterDropsFailingRows(t *testing.T) {
	ctx := sql.NewEmptyContext()
	in := dataflow.NewCollection(
		dataflow.NewUpdate(sql.NewRow(int64(1)), dataflow.Moment(0), 1),
		dataflow.NewUpdate(sql.NewRow(int64(-1)), dataflow.Moment(0), 1),
	)
	predicates := []expression.Expression{
		expression.NewCompare(expression.GreaterThan, expression.NewColumn(0, ""), expression.NewLiteral(int64(0))),
	}

	ok, errs := applyFilter(ctx, in, predicates, nil)
	require.Equal(t, 1, ok.Len())
	require.Equal(t, int64(1), ok.Updates[0].Row[0])
	require.Equal(t, 0, errs.Len())
}

func TestApplyFilterNullEqualEquivalence(t *testing.T) {
	ctx := sql.NewEmptyContext()
	in := dataflow.NewCollection(
		dataflow.NewUpdate(sql.NewRow(nil, nil), dataflow.Moment(0), 1),
		dataflow.NewUpdate(sql.NewRow(int64(1), int64(2)), dataflow.Moment(0), 1),
	)
	equivalences := []readyEquivalence{
		{First: expression.NewColumn(0, ""), Others: []expression.Expression{expression.NewColumn(1, "")}},
	}

	ok, errs := applyFilter(ctx, in, nil, equivalences)
	// NULL is equal to NULL under this join's equivalence semantics, so
	// the all-nil row passes; (1, 2) does not.
	require.Equal(t, 1, ok.Len())
	require.Nil(t, ok.Updates[0].Row[0])
	require.Equal(t, 0, errs.Len())
}

func TestApplyFilterEvaluationErrorIsolatesRow(t *testing.T) {
	ctx := sql.NewEmptyContext()
	in := dataflow.NewCollection(
		dataflow.NewUpdate(sql.NewRow(int64(1)), dataflow.Moment(0), 1),
	)
	// Column index 9 is out of range for this 1-wide row: evaluation
	// fails and the row must land in the error collection, not ok.
	predicates := []expression.Expression{
		expression.NewCompare(expression.GreaterThan, expression.NewColumn(9, ""), expression.NewLiteral(int64(0))),
	}

	ok, errs := applyFilter(ctx, in, predicates, nil)
	require.Equal(t, 0, ok.Len())
	require.Equal(t, 1, errs.Len())
}

func TestApplyFilterNoopWhenNothingReady(t *testing.T) {
	ctx := sql.NewEmptyContext()
	in := dataflow.NewCollection(dataflow.NewUpdate(sql.NewRow(int64(1)), dataflow.Moment(0), 1))

	ok, errs := applyFilter(ctx, in, nil, nil)
	require.Equal(t, in, ok)
	require.Equal(t, 0, errs.Len())
}

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
	"github.com/deltastream/deltajoin/sql/rewrite"
)

// readyEquivalence is an equivalence-class tuple whose members are all
// fully supported by the current provenance, rewritten to working-row
// positions: First is kept in its owning class for future pushdown
// steps, Others is dropped from it (spec §4.2 step 2).
type readyEquivalence struct {
	First  expression.Expression
	Others []expression.Expression
}

// extractReady implements spec §4.2 steps 1-2: it moves every residual
// predicate and equivalence-class member that's now fully supported by
// prov out of the residual sets and returns them rewritten to working-
// row positions. The residual slices pointed to by predicates and
// equivalences are updated in place, leaving only the not-yet-supported
// items, exactly as spec.md's "Effects" paragraph requires.
func extractReady(prov *Provenance, predicates *[]expression.Expression, equivalences *[]plan.EquivalenceClass) ([]expression.Expression, []readyEquivalence) {
	resolve := prov.Resolve
	rebase := func(e expression.Expression) expression.Expression {
		return rewrite.RebaseColumns(e, func(c int) int {
			pos, _ := resolve(c)
			return pos
		})
	}

	var readyPredicates []expression.Expression
	var remainingPredicates []expression.Expression
	for _, p := range *predicates {
		if rewrite.AllBound(p, resolve) {
			readyPredicates = append(readyPredicates, rebase(p))
		} else {
			remainingPredicates = append(remainingPredicates, p)
		}
	}
	*predicates = remainingPredicates

	var readyEquivs []readyEquivalence
	var remainingClasses []plan.EquivalenceClass
	for _, class := range *equivalences {
		var first expression.Expression
		var others []expression.Expression
		var remainder plan.EquivalenceClass
		for _, member := range class {
			if first == nil && rewrite.AllBound(member, resolve) {
				first = member
				continue
			}
			if first != nil && rewrite.AllBound(member, resolve) {
				others = append(others, member)
				continue
			}
			remainder = append(remainder, member)
		}
		if first != nil {
			remainder = append(plan.EquivalenceClass{first}, remainder...)
		}
		if len(others) > 0 {
			readyEquivs = append(readyEquivs, readyEquivalence{
				First:  rebase(first),
				Others: rebaseAll(others, rebase),
			})
		}
		if len(remainder) > 1 {
			remainingClasses = append(remainingClasses, remainder)
		}
	}
	*equivalences = remainingClasses

	return readyPredicates, readyEquivs
}

func rebaseAll(exprs []expression.Expression, rebase func(expression.Expression) expression.Expression) []expression.Expression {
	out := make([]expression.Expression, len(exprs))
	for i, e := range exprs {
		out[i] = rebase(e)
	}
	return out
}

// applyFilter evaluates readyPredicates and readyEquivalences against
// every row of in, splitting evaluation errors into a separate error
// collection and dropping (silently) rows that don't satisfy the
// predicates or the null-equal equivalences (spec §4.2 step 4).
func applyFilter(ctx *sql.Context, in dataflow.Collection, readyPredicates []expression.Expression, readyEquivalences []readyEquivalence) (ok, errs dataflow.Collection) {
	if len(readyPredicates) == 0 && len(readyEquivalences) == 0 {
		return in, dataflow.Empty()
	}

	var okUpdates, errUpdates []dataflow.Update
	for _, u := range in.Updates {
		keep, err := passesFilter(ctx, u.Row, readyPredicates, readyEquivalences)
		if err != nil {
			errUpdates = append(errUpdates, u)
			continue
		}
		if keep {
			okUpdates = append(okUpdates, u)
		}
	}
	return dataflow.NewCollection(okUpdates...), dataflow.NewCollection(errUpdates...)
}

func passesFilter(ctx *sql.Context, row sql.Row, predicates []expression.Expression, equivalences []readyEquivalence) (bool, error) {
	for _, p := range predicates {
		v, err := p.Eval(ctx, row)
		if err != nil {
			return false, sql.ErrEvaluation.New(p.String(), []sql.Datum(row), err.Error())
		}
		b, _ := v.(bool)
		if !b {
			return false, nil
		}
	}
	for _, eq := range equivalences {
		first, err := eq.First.Eval(ctx, row)
		if err != nil {
			return false, sql.ErrEvaluation.New(eq.First.String(), []sql.Datum(row), err.Error())
		}
		for _, other := range eq.Others {
			v, err := other.Eval(ctx, row)
			if err != nil {
				return false, sql.ErrEvaluation.New(other.String(), []sql.Datum(row), err.Error())
			}
			if !sql.NullEqual(first, v) {
				return false, nil
			}
		}
	}
	return true, nil
}

// pushDown runs extractReady followed by applyFilter: the combined step
// the delta-stream builder invokes after initializing provenance and
// again after every lookup (spec §4.4 steps 3 and 4g).
func pushDown(ctx *sql.Context, prov *Provenance, in dataflow.Collection, predicates *[]expression.Expression, equivalences *[]plan.EquivalenceClass) (ok, errs dataflow.Collection) {
	readyPredicates, readyEquivs := extractReady(prov, predicates, equivalences)
	return applyFilter(ctx, in, readyPredicates, readyEquivs)
}

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

// Package rewrite provides the small set of expression-tree walks the
// renderer needs: collecting the columns an expression reads, rewriting
// column indices from one coordinate space to another, and deciding
// whether two expressions are the same expression structurally. It
// plays the same role for the delta-join core that sql/transform plays
// for the surrounding query engine's plan and expression trees, scaled
// down to the closed, small expression algebra this core works with.
package rewrite

import (
	"fmt"

	"github.com/deltastream/deltajoin/sql/expression"
)

// Columns returns the distinct column indices e reads from, in the
// order they first appear.
func Columns(e expression.Expression) []int {
	seen := map[int]bool{}
	var out []int
	for _, c := range e.Columns() {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// AllBound reports whether every column e references is present in
// provenance, i.e. resolve(c) succeeds for each of them.
func AllBound(e expression.Expression, resolve func(globalCol int) (int, bool)) bool {
	for _, c := range e.Columns() {
		if _, ok := resolve(c); !ok {
			return false
		}
	}
	return true
}

// RebaseColumns returns a copy of e with every Column's Index replaced
// by mapping(Index). It is used both to move key expressions from a
// peer's local column space to the plan's global column space, and to
// move predicate/equivalence expressions from global column space to
// working-row positions.
func RebaseColumns(e expression.Expression, mapping func(int) int) expression.Expression {
	switch v := e.(type) {
	case *expression.Column:
		return expression.NewColumn(mapping(v.Index), v.Name)
	case *expression.Literal:
		return v
	case *expression.Equals:
		return expression.NewEquals(RebaseColumns(v.Left, mapping), RebaseColumns(v.Right, mapping))
	case *expression.Compare:
		return expression.NewCompare(v.Op, RebaseColumns(v.Left, mapping), RebaseColumns(v.Right, mapping))
	case *expression.And:
		return expression.NewAnd(RebaseColumns(v.Left, mapping), RebaseColumns(v.Right, mapping))
	default:
		panic(fmt.Sprintf("rewrite: unsupported expression type %T", e))
	}
}

// Equal reports whether a and b are the same expression structurally --
// same shape, same column indices, same literal values -- without
// evaluating either of them. It is the "stable structural equality"
// spec.md §9 requires for deduplication and for locating the bound
// member of an equivalence class.
func Equal(a, b expression.Expression) bool {
	switch av := a.(type) {
	case *expression.Column:
		bv, ok := b.(*expression.Column)
		return ok && av.Index == bv.Index
	case *expression.Literal:
		bv, ok := b.(*expression.Literal)
		return ok && av.Value == bv.Value
	case *expression.Equals:
		bv, ok := b.(*expression.Equals)
		return ok && Equal(av.Left, bv.Left) && Equal(av.Right, bv.Right)
	case *expression.Compare:
		bv, ok := b.(*expression.Compare)
		return ok && av.Op == bv.Op && Equal(av.Left, bv.Left) && Equal(av.Right, bv.Right)
	case *expression.And:
		bv, ok := b.(*expression.And)
		return ok && Equal(av.Left, bv.Left) && Equal(av.Right, bv.Right)
	default:
		return false
	}
}

// Contains reports whether class contains an expression structurally
// equal to target.
func Contains(class []expression.Expression, target expression.Expression) bool {
	for _, e := range class {
		if Equal(e, target) {
			return true
		}
	}
	return false
}

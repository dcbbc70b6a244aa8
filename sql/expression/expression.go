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

// Package expression implements the small scalar-expression algebra
// that key lists, equivalence classes, and residual predicates are
// built from: column references, literals, equality/comparison, and
// conjunction. It deliberately does not grow into a general SQL
// expression language -- parsing and planning are out of scope for this
// core (spec §1); expressions here are always constructed directly by
// the planner that builds a plan.JoinPlan.
package expression

import (
	"fmt"

	"github.com/deltastream/deltajoin/sql"
)

// Expression is a scalar expression evaluated once per row.
type Expression interface {
	// Eval evaluates the expression against row, which must already be
	// in the shape the expression's column references assume (global
	// column order for a freshly built plan, working-row order once the
	// renderer has rebased it).
	Eval(ctx *sql.Context, row sql.Row) (sql.Datum, error)
	// Columns returns the column indices this expression reads from,
	// in whatever coordinate space the expression currently uses.
	Columns() []int
	String() string
}

// Column is a reference to one column of the row being evaluated. Its
// Index is reinterpreted as the renderer rebases the expression tree:
// a freshly planned Column holds a global column index; after
// RebaseColumns it holds a working-row position.
type Column struct {
	Index int
	Name  string
}

// NewColumn returns a Column expression referencing index.
func NewColumn(index int, name string) *Column {
	return &Column{Index: index, Name: name}
}

func (c *Column) Eval(_ *sql.Context, row sql.Row) (sql.Datum, error) {
	if c.Index < 0 || c.Index >= len(row) {
		return nil, fmt.Errorf("column index %d out of range for row of length %d", c.Index, len(row))
	}
	return row[c.Index], nil
}

func (c *Column) Columns() []int { return []int{c.Index} }

func (c *Column) String() string {
	if c.Name != "" {
		return fmt.Sprintf("col[%d:%s]", c.Index, c.Name)
	}
	return fmt.Sprintf("col[%d]", c.Index)
}

// Literal is a constant value, independent of the row.
type Literal struct {
	Value sql.Datum
}

// NewLiteral returns a Literal expression wrapping value.
func NewLiteral(value sql.Datum) *Literal {
	return &Literal{Value: value}
}

func (l *Literal) Eval(_ *sql.Context, _ sql.Row) (sql.Datum, error) {
	return l.Value, nil
}

func (l *Literal) Columns() []int { return nil }

func (l *Literal) String() string {
	return fmt.Sprintf("lit[%v]", l.Value)
}

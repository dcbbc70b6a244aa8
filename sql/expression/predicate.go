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

package expression

import (
	"fmt"

	"github.com/deltastream/deltajoin/sql"
)

// Equals is ordinary SQL equality: NULL compared to anything is not
// TRUE. It is used for residual predicates pushed down by the renderer,
// not for equivalence-class membership, which instead uses null-equal
// comparison directly (see sql.NullEqual and the pushdown filter).
type Equals struct {
	Left, Right Expression
}

// NewEquals returns an Equals predicate over left and right.
func NewEquals(left, right Expression) *Equals {
	return &Equals{Left: left, Right: right}
}

func (e *Equals) Eval(ctx *sql.Context, row sql.Row) (sql.Datum, error) {
	l, err := e.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	r, err := e.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	return sql.Equal(l, r), nil
}

func (e *Equals) Columns() []int {
	return append(append([]int{}, e.Left.Columns()...), e.Right.Columns()...)
}

func (e *Equals) String() string {
	return fmt.Sprintf("(%s = %s)", e.Left, e.Right)
}

// CompareOp identifies the operator a Compare expression applies.
type CompareOp int

const (
	GreaterThan CompareOp = iota
	LessThan
	GreaterOrEqual
	LessOrEqual
)

func (op CompareOp) String() string {
	switch op {
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case GreaterOrEqual:
		return ">="
	case LessOrEqual:
		return "<="
	default:
		return "?"
	}
}

// Compare is an ordering comparison between two numeric expressions.
type Compare struct {
	Op          CompareOp
	Left, Right Expression
}

// NewCompare returns a Compare predicate.
func NewCompare(op CompareOp, left, right Expression) *Compare {
	return &Compare{Op: op, Left: left, Right: right}
}

func (c *Compare) Eval(ctx *sql.Context, row sql.Row) (sql.Datum, error) {
	l, err := c.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	r, err := c.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if l == nil || r == nil {
		return false, nil
	}
	lf, err := toFloat(l)
	if err != nil {
		return nil, fmt.Errorf("comparing %s: %w", c, err)
	}
	rf, err := toFloat(r)
	if err != nil {
		return nil, fmt.Errorf("comparing %s: %w", c, err)
	}
	switch c.Op {
	case GreaterThan:
		return lf > rf, nil
	case LessThan:
		return lf < rf, nil
	case GreaterOrEqual:
		return lf >= rf, nil
	case LessOrEqual:
		return lf <= rf, nil
	default:
		return nil, fmt.Errorf("unknown comparison operator %v", c.Op)
	}
}

func (c *Compare) Columns() []int {
	return append(append([]int{}, c.Left.Columns()...), c.Right.Columns()...)
}

func (c *Compare) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}

// And is the conjunction of two predicates.
type And struct {
	Left, Right Expression
}

// NewAnd returns the conjunction of left and right.
func NewAnd(left, right Expression) *And {
	return &And{Left: left, Right: right}
}

func (a *And) Eval(ctx *sql.Context, row sql.Row) (sql.Datum, error) {
	l, err := a.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	lb, _ := l.(bool)
	if !lb {
		return false, nil
	}
	r, err := a.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	rb, _ := r.(bool)
	return lb && rb, nil
}

func (a *And) Columns() []int {
	return append(append([]int{}, a.Left.Columns()...), a.Right.Columns()...)
}

func (a *And) String() string {
	return fmt.Sprintf("(%s AND %s)", a.Left, a.Right)
}

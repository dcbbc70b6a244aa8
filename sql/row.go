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

// Package sql holds the data model shared by every layer of the
// delta-join renderer: rows and datums, schemas, the render-time
// context, and the error kind raised when a scalar expression fails to
// evaluate.
package sql

// Datum is a single SQL-like value. A nil Datum represents SQL NULL.
type Datum = interface{}

// Row is an ordered, immutable tuple of datums. Rows are the unit of
// transport on every collection in the dataflow.
type Row []Datum

// NewRow packs the given datums into a Row.
func NewRow(datums ...Datum) Row {
	row := make(Row, len(datums))
	copy(row, datums)
	return row
}

// Append returns a new Row that is the concatenation of r and other.
// Neither input row is mutated.
func (r Row) Append(other Row) Row {
	out := make(Row, 0, len(r)+len(other))
	out = append(out, r...)
	out = append(out, other...)
	return out
}

// Permute returns a new row with out[i] = r[perm[i]] for every i. Every
// perm[i] must be a valid index into r; perm may repeat or leave out
// positions of r.
func (r Row) Permute(perm []int) Row {
	out := make(Row, len(perm))
	for i, pos := range perm {
		out[i] = r[pos]
	}
	return out
}

// Copy returns a shallow copy of the row.
func (r Row) Copy() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

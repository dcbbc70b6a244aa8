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

// Provenance tracks which global input column sits at each position of
// a delta stream's current working row (spec §4.1). It is owned by a
// single delta-stream builder invocation and extended in place as the
// stream joins against each peer in turn.
type Provenance struct {
	columns []int // working-row position -> global column index
}

// NewProvenance starts a Provenance at the canonical global columns of
// the delta stream's root input.
func NewProvenance(initial []int) *Provenance {
	cols := make([]int, len(initial))
	copy(cols, initial)
	return &Provenance{columns: cols}
}

// Resolve returns the working-row position holding globalCol, and
// whether it was found.
func (p *Provenance) Resolve(globalCol int) (int, bool) {
	for pos, c := range p.columns {
		if c == globalCol {
			return pos, true
		}
	}
	return 0, false
}

// Extend appends cols (a peer's global columns, in the peer's local
// order) to the working row after a successful lookup.
func (p *Provenance) Extend(cols []int) {
	p.columns = append(p.columns, cols...)
}

// Columns returns the provenance's current global-column list, one per
// working-row position. The returned slice is owned by the caller.
func (p *Provenance) Columns() []int {
	out := make([]int, len(p.columns))
	copy(out, p.columns)
	return out
}

// Len returns the width of the current working row.
func (p *Provenance) Len() int {
	return len(p.columns)
}

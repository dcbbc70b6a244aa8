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

package plan

// InputColumnMapper is the static mapping between each input's local
// column indices and the global column indices of the canonical
// input-concatenation order (spec §3, "Input-column mapper").
type InputColumnMapper struct {
	offsets []int // offsets[i] is the global index of input i's column 0
	widths  []int
	total   int
}

// NewInputColumnMapper builds a mapper from the plan's input schemas,
// in the order they appear.
func NewInputColumnMapper(inputs []Relation) *InputColumnMapper {
	m := &InputColumnMapper{
		offsets: make([]int, len(inputs)),
		widths:  make([]int, len(inputs)),
	}
	offset := 0
	for i, rel := range inputs {
		m.offsets[i] = offset
		m.widths[i] = rel.Schema.Len()
		offset += rel.Schema.Len()
	}
	m.total = offset
	return m
}

// ToGlobal maps a local column index of input i to its global column
// index.
func (m *InputColumnMapper) ToGlobal(input, local int) int {
	return m.offsets[input] + local
}

// GlobalColumns returns the canonical global column indices of input
// i's columns, in local order -- what provenance is initialized to for
// the delta stream rooted at i, and what it is extended with after
// joining against i as a peer.
func (m *InputColumnMapper) GlobalColumns(input int) []int {
	cols := make([]int, m.widths[input])
	for i := range cols {
		cols[i] = m.ToGlobal(input, i)
	}
	return cols
}

// TotalColumns returns the width of the canonical, fully-joined row.
func (m *InputColumnMapper) TotalColumns() int {
	return m.total
}

// InputOf returns the input index owning global column c, and c's
// local offset within that input.
func (m *InputColumnMapper) InputOf(globalCol int) (input, local int) {
	for i := len(m.offsets) - 1; i >= 0; i-- {
		if globalCol >= m.offsets[i] {
			return i, globalCol - m.offsets[i]
		}
	}
	return 0, globalCol
}

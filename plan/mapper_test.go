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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deltastream/deltajoin/sql"
)

func testRelations() []Relation {
	return []Relation{
		NewRelation("r", sql.Schema{{Name: "a"}, {Name: "b"}}),
		NewRelation("s", sql.Schema{{Name: "b"}, {Name: "c"}, {Name: "d"}}),
		NewRelation("t", sql.Schema{{Name: "d"}}),
	}
}

func TestInputColumnMapperOffsets(t *testing.T) {
	m := NewInputColumnMapper(testRelations())

	require.Equal(t, 0, m.ToGlobal(0, 0))
	require.Equal(t, 1, m.ToGlobal(0, 1))
	require.Equal(t, 2, m.ToGlobal(1, 0))
	require.Equal(t, 4, m.ToGlobal(1, 2))
	require.Equal(t, 5, m.ToGlobal(2, 0))
	require.Equal(t, 6, m.TotalColumns())
}

func TestInputColumnMapperGlobalColumns(t *testing.T) {
	m := NewInputColumnMapper(testRelations())
	require.Equal(t, []int{0, 1}, m.GlobalColumns(0))
	require.Equal(t, []int{2, 3, 4}, m.GlobalColumns(1))
	require.Equal(t, []int{5}, m.GlobalColumns(2))
}

func TestInputColumnMapperInputOf(t *testing.T) {
	m := NewInputColumnMapper(testRelations())

	input, local := m.InputOf(0)
	require.Equal(t, 0, input)
	require.Equal(t, 0, local)

	input, local = m.InputOf(4)
	require.Equal(t, 1, input)
	require.Equal(t, 2, local)

	input, local = m.InputOf(5)
	require.Equal(t, 2, input)
	require.Equal(t, 0, local)
}

func TestJoinPlanCloneEquivalencesIsIndependent(t *testing.T) {
	jp := &JoinPlan{
		Equivalences: []EquivalenceClass{{nil, nil}},
	}
	clone := jp.CloneEquivalences()
	clone[0] = append(clone[0], nil)
	require.Len(t, jp.Equivalences[0], 2)
	require.Len(t, clone[0], 3)
}

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

package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullEqual(t *testing.T) {
	require.True(t, NullEqual(nil, nil))
	require.False(t, NullEqual(nil, int64(1)))
	require.False(t, NullEqual(int64(1), nil))
	require.True(t, NullEqual(int64(1), int64(1)))
	require.True(t, NullEqual(int32(7), int64(7)))
	require.True(t, NullEqual("x", "x"))
	require.False(t, NullEqual("x", "y"))
}

func TestEqual(t *testing.T) {
	require.False(t, Equal(nil, nil))
	require.False(t, Equal(nil, int64(1)))
	require.True(t, Equal(int64(1), int64(1)))
	require.False(t, Equal(int64(1), int64(2)))
}

func TestRowPermuteAndAppend(t *testing.T) {
	r := NewRow(1, 2, 3)
	other := NewRow(4, 5)

	appended := r.Append(other)
	require.Equal(t, Row{1, 2, 3, 4, 5}, appended)

	permuted := appended.Permute([]int{4, 0, 2})
	require.Equal(t, Row{5, 1, 3}, permuted)

	// Permute must not mutate the source row.
	require.Equal(t, Row{1, 2, 3, 4, 5}, appended)
}

func TestRowCopyIsIndependent(t *testing.T) {
	r := NewRow(1, 2)
	c := r.Copy()
	c[0] = 99
	require.Equal(t, 1, r[0])
}

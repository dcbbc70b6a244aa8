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

package dataflow

import (
	"fmt"

	"github.com/deltastream/deltajoin/sql"
)

// Update is a single change to a collection: a row, the logical time
// it occurred at, and a signed multiplicity. A collection's contents at
// time T are the sum over all updates at times <= T (spec §3).
type Update struct {
	Row  sql.Row
	Time Timestamp
	Diff int64
}

// NewUpdate returns an Update.
func NewUpdate(row sql.Row, t Timestamp, diff int64) Update {
	return Update{Row: row, Time: t, Diff: diff}
}

func (u Update) String() string {
	return fmt.Sprintf("%v@%s x%d", u.Row, u.Time, u.Diff)
}

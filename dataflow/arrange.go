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
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
)

// ArrangeBy builds a MemoryArrangement over coll, indexed by the value
// of keyExprs evaluated against each row (in the row's own local column
// space). It is how the external collaborator that owns arrangement
// construction (spec §1) would hand the renderer a handle in this
// in-memory reference implementation.
func ArrangeBy(ctx *sql.Context, identity string, flavor ArrangementFlavor, coll, errs Collection, keyExprs []expression.Expression) (Arrangement, error) {
	keyFunc := func(row sql.Row) sql.Row {
		key := make(sql.Row, len(keyExprs))
		for i, e := range keyExprs {
			v, err := e.Eval(ctx, row)
			if err != nil {
				// Construction-time key evaluation failures on a
				// handed-in collection indicate a malformed fixture;
				// the renderer itself never calls ArrangeBy, so this
				// indexes the row under a nil key component rather
				// than failing the whole arrangement.
				key[i] = nil
				continue
			}
			key[i] = v
		}
		return key
	}
	return NewMemoryArrangement(identity, flavor, coll.Updates, errs, keyFunc), nil
}

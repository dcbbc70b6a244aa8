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

import (
	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
)

// lookup computes the streaming equi-join of in against arr, extending
// each surviving row with the peer's columns (spec §4.3). flavor
// decides which version of arr this lookup is allowed to see: alt sees
// only peer updates strictly before the current row's time (the prior
// version), neu sees peer updates up to and including it (the
// posterior version). This is the alt/neu rule's concrete effect (spec
// §4.4d) -- it is what keeps a single logical update that touches two
// inputs at once from being counted by both of their delta streams.
func lookup(ctx *sql.Context, in dataflow.Collection, probeKey []expression.Expression, arr dataflow.Arrangement, flavor dataflow.Flavor, subtract dataflow.Subtract) (ok, errs dataflow.Collection) {
	var okUpdates, errUpdates []dataflow.Update
	for _, u := range in.Updates {
		keyRow, err := evalKey(ctx, probeKey, u.Row)
		if err != nil {
			errUpdates = append(errUpdates, u)
			continue
		}

		peerUpdates, err := arr.Lookup(ctx, keyRow)
		if err != nil {
			errUpdates = append(errUpdates, u)
			continue
		}

		for _, pu := range peerUpdates {
			if !visible(flavor, subtract, u.Time, pu.Time) {
				continue
			}
			okUpdates = append(okUpdates, dataflow.NewUpdate(
				u.Row.Append(pu.Row),
				u.Time.Join(pu.Time),
				u.Diff*pu.Diff,
			))
		}
	}
	return dataflow.NewCollection(okUpdates...), dataflow.NewCollection(errUpdates...)
}

// evalKey evaluates every expression of probeKey against row, packing
// the results into a key row. An evaluation error in any component
// drops the whole row from the ok stream into the error stream (spec
// §4.3 step 1).
func evalKey(ctx *sql.Context, probeKey []expression.Expression, row sql.Row) (sql.Row, error) {
	key := make(sql.Row, len(probeKey))
	for i, e := range probeKey {
		v, err := e.Eval(ctx, row)
		if err != nil {
			return nil, sql.ErrEvaluation.New(e.String(), []sql.Datum(row), err.Error())
		}
		key[i] = v
	}
	return key, nil
}

// visible decides, for the given flavor, whether a peer update at
// peerTime is part of the version of the arrangement this lookup is
// allowed to consult when processing a row at rowTime.
//
//   - alt (peer index > root): only the prior version -- peer updates
//     strictly before rowTime, computed via subtract as "at or before
//     rowTime's immediate predecessor".
//   - neu (peer index < root): the posterior version -- peer updates up
//     to and including rowTime.
func visible(flavor dataflow.Flavor, subtract dataflow.Subtract, rowTime, peerTime dataflow.Timestamp) bool {
	if flavor == dataflow.Alt {
		floor := subtract(rowTime)
		return !floor.Less(peerTime) // peerTime <= floor, i.e. peerTime < rowTime
	}
	return !rowTime.Less(peerTime) // peerTime <= rowTime
}

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
	"errors"

	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/plan"
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
	"github.com/deltastream/deltajoin/sql/rewrite"
)

var errNoBoundExpression = errors.New("no bound expression found for key component")

// deltaStreamBuilder builds the delta stream rooted at one input (spec
// §4.4). Its provenance and its copy of the plan's equivalence classes
// and residual predicates are owned exclusively by this invocation
// (spec §9): nothing here is shared with any other delta stream.
type deltaStreamBuilder struct {
	ctx    *sql.Context
	rc     Context
	plan   *plan.JoinPlan
	mapper *plan.InputColumnMapper
	root   int
	dedup  *dedupRegistry

	prov         *Provenance
	equivalences []plan.EquivalenceClass
	predicates   []expression.Expression
	region       *dataflow.Region

	// arrCache avoids re-importing the identical arrangement handle
	// twice within this stream's own traversal, keyed the same way as
	// the error-dedup registry (spec §9 performance TODO).
	arrCache map[uint64]dataflow.Arrangement
}

func newDeltaStreamBuilder(ctx *sql.Context, rc Context, jp *plan.JoinPlan, mapper *plan.InputColumnMapper, root int, predicates []expression.Expression, dedup *dedupRegistry) *deltaStreamBuilder {
	residual := make([]expression.Expression, len(predicates))
	copy(residual, predicates)

	return &deltaStreamBuilder{
		ctx:          ctx,
		rc:           rc,
		plan:         jp,
		mapper:       mapper,
		root:         root,
		dedup:        dedup,
		prov:         NewProvenance(mapper.GlobalColumns(root)),
		equivalences: jp.CloneEquivalences(),
		predicates:   residual,
		region:       dataflow.NewRegion(),
		arrCache:     make(map[uint64]dataflow.Arrangement),
	}
}

// build runs the full sequence of spec §4.4 steps 1-6 and returns the
// delta stream's ok collection. Its error collection is accumulated in
// b.region and fetched by the caller via b.region.Errors().
func (b *deltaStreamBuilder) build() (dataflow.Collection, error) {
	rootRel := b.plan.Inputs[b.root]

	rootOK, rootErrs, err := b.rc.Collection(rootRel)
	if err != nil {
		return dataflow.Empty(), ErrRelationNotRendered.New(rootRel.Name, err.Error())
	}
	b.region.Add(rootErrs)

	ok, filtErrs := pushDown(b.ctx, b.prov, rootOK, &b.predicates, &b.equivalences)
	b.region.Add(filtErrs)

	for _, entry := range b.plan.Orders[b.root] {
		ok, err = b.step(ok, entry)
		if err != nil {
			return dataflow.Empty(), err
		}
	}

	perm := buildPermutation(b.prov, b.mapper.TotalColumns())
	return permuteCollection(ok, perm), nil
}

// step performs one traversal entry: rebase, translate to a bound probe
// key, drop the now-redundant equivalence members, pick the alt/neu
// flavor, look up, extend provenance, and push down again (spec §4.4
// steps 4a-4g).
func (b *deltaStreamBuilder) step(in dataflow.Collection, entry plan.OrderEntry) (dataflow.Collection, error) {
	peerRel := b.plan.Inputs[entry.Peer]

	// 4a. Rebase key: peer-local columns -> global columns.
	rebasedKeys := make([]expression.Expression, len(entry.KeyExprs))
	for i, e := range entry.KeyExprs {
		rebasedKeys[i] = rewrite.RebaseColumns(e, func(local int) int {
			return b.mapper.ToGlobal(entry.Peer, local)
		})
	}

	// 4b. Translate to a working-row probe expression per key component.
	probeExprs := make([]expression.Expression, len(rebasedKeys))
	for i, target := range rebasedKeys {
		bound, err := findBoundProbe(b.prov, b.equivalences, target)
		if err != nil {
			return dataflow.Empty(), ErrKeyNotBound.New(target.String(), b.plan.Inputs[b.root].Name)
		}
		probeExprs[i] = rewrite.RebaseColumns(bound, func(c int) int {
			pos, _ := b.prov.Resolve(c)
			return pos
		})
	}

	// 4c. Equivalence bookkeeping: the lookup embodies these equalities now.
	b.equivalences = dropRedundant(b.equivalences, rebasedKeys)

	// 4d. Alt/neu timestamp flavor -- the central correctness rule.
	flavor := dataflow.Neu
	if entry.Peer > b.root {
		flavor = dataflow.Alt
	}

	arr, err := b.arrangementFor(peerRel, entry.KeyExprs)
	if err != nil {
		return dataflow.Empty(), err
	}

	first, herr := b.dedup.firstUse(arr, entry.KeyExprs)
	if herr == nil && first {
		b.region.Add(arr.Errors())
	}

	// 4e. Lookup.
	ok, lookupErrs := lookup(b.ctx, in, probeExprs, arr, flavor, b.rc.Subtract())
	b.region.Add(lookupErrs)

	// 4f. Extend provenance with the peer's global columns.
	b.prov.Extend(b.mapper.GlobalColumns(entry.Peer))

	// 4g. Apply filter again with the extended provenance.
	ok, filtErrs := pushDown(b.ctx, b.prov, ok, &b.predicates, &b.equivalences)
	b.region.Add(filtErrs)

	return ok, nil
}

func (b *deltaStreamBuilder) arrangementFor(peerRel plan.Relation, key []expression.Expression) (dataflow.Arrangement, error) {
	h, err := keyHash(peerRel.ID.String(), key)
	if err == nil {
		if arr, ok := b.arrCache[h]; ok {
			return arr, nil
		}
	}

	arr, ok := b.rc.Arrangement(peerRel, key)
	if !ok {
		return nil, ErrArrangementMissing.New(peerRel.Name, key)
	}
	if err == nil {
		b.arrCache[h] = arr
	}
	return arr, nil
}

// findBoundProbe implements spec §4.4.b: find, in the union of the
// current equivalence classes, an expression equal to target whose
// columns are already bound by prov. It is returned in global-column
// space; the caller rebases it to working-row positions. target itself
// is a valid probe when its own columns are already bound -- this is
// the common case of a key component that was already pulled into the
// working row by an earlier traversal step.
func findBoundProbe(prov *Provenance, equivalences []plan.EquivalenceClass, target expression.Expression) (expression.Expression, error) {
	if rewrite.AllBound(target, prov.Resolve) {
		return target, nil
	}
	for _, class := range equivalences {
		if !rewrite.Contains(class, target) {
			continue
		}
		for _, member := range class {
			if rewrite.Equal(member, target) {
				continue
			}
			if rewrite.AllBound(member, prov.Resolve) {
				return member, nil
			}
		}
	}
	return nil, errNoBoundExpression
}

// dropRedundant removes, from every equivalence class, any expression
// structurally equal to one of rebasedKeys -- the equality is now
// embodied by the lookup itself -- and discards classes left with one
// or fewer members (spec §4.4.c).
func dropRedundant(equivalences []plan.EquivalenceClass, rebasedKeys []expression.Expression) []plan.EquivalenceClass {
	var out []plan.EquivalenceClass
	for _, class := range equivalences {
		var remaining plan.EquivalenceClass
		for _, member := range class {
			redundant := false
			for _, k := range rebasedKeys {
				if rewrite.Equal(member, k) {
					redundant = true
					break
				}
			}
			if !redundant {
				remaining = append(remaining, member)
			}
		}
		if len(remaining) > 1 {
			out = append(out, remaining)
		}
	}
	return out
}

// buildPermutation implements spec §4.4 step 5: for every canonical
// global column c, find its current working-row position.
func buildPermutation(prov *Provenance, total int) []int {
	perm := make([]int, total)
	for c := 0; c < total; c++ {
		pos, ok := prov.Resolve(c)
		if !ok {
			panic(ErrColumnNotInProvenance.New(c).Error())
		}
		perm[c] = pos
	}
	return perm
}

func permuteCollection(c dataflow.Collection, perm []int) dataflow.Collection {
	out := make([]dataflow.Update, len(c.Updates))
	for i, u := range c.Updates {
		out[i] = dataflow.NewUpdate(u.Row.Permute(perm), u.Time, u.Diff)
	}
	return dataflow.NewCollection(out...)
}
